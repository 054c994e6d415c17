package memory

import (
	"sync"

	"trivia-quiz/internal/app"
)

// BoardStore is an in-memory implementation of app.BoardRepository.
type BoardStore struct {
	mu     sync.RWMutex
	boards map[string]*app.Board
}

func NewBoardStore() *BoardStore {
	return &BoardStore{
		boards: make(map[string]*app.Board),
	}
}

func (s *BoardStore) GetOrCreate(categoryID string) *app.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	if board, ok := s.boards[categoryID]; ok {
		return board
	}
	board := app.NewBoard(categoryID)
	s.boards[categoryID] = board
	return board
}

func (s *BoardStore) Get(categoryID string) (*app.Board, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	board, ok := s.boards[categoryID]
	return board, ok
}
