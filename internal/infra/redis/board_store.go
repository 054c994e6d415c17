package redis

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-quiz/internal/app"
)

// BoardStore is a Redis-aware implementation of app.BoardRepository.
// Notes:
//   - Boards live in process so the in-process broadcast logic is reused.
//   - Redis holds a liveness marker per category, refreshed whenever a player
//     starts a quiz or gets a verdict there. Once the marker lapses an
//     unwatched board is dropped and reads report it as not found.
//   - If Redis cannot be reached the local board is served as is.
type BoardStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	boards map[string]*app.Board
}

func NewBoardStore(client *redis.Client, ttl time.Duration) *BoardStore {
	return &BoardStore{
		client: client,
		ttl:    ttl,
		boards: make(map[string]*app.Board),
	}
}

func (s *BoardStore) GetOrCreate(categoryID string) *app.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.client.Set(context.Background(), s.key(categoryID), "1", s.ttl).Err(); err != nil {
		log.Printf("mark board %s live: %v", categoryID, err)
	}
	if board, ok := s.boards[categoryID]; ok {
		return board
	}
	board := app.NewBoard(categoryID)
	s.boards[categoryID] = board
	return board
}

func (s *BoardStore) Get(categoryID string) (*app.Board, bool) {
	s.mu.RLock()
	board, ok := s.boards[categoryID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	live, err := s.client.Exists(context.Background(), s.key(categoryID)).Result()
	if err != nil || live > 0 || board.Watched() {
		return board, true
	}

	s.mu.Lock()
	if s.boards[categoryID] == board {
		delete(s.boards, categoryID)
	}
	s.mu.Unlock()
	return nil, false
}

func (s *BoardStore) key(categoryID string) string {
	return "board:live:" + categoryID
}
