package app

import (
	"sort"
	"sync"
	"time"

	"trivia-quiz/internal/domain"
)

// Board is the in-memory leaderboard of one category with live subscribers.
type Board struct {
	categoryID string
	now        func() time.Time

	mu           sync.RWMutex
	participants map[string]*domain.Participant
	subscribers  map[int]chan domain.Leaderboard
	nextSub      int
}

// NewBoard is exported for infrastructure layers that need to seed boards.
func NewBoard(categoryID string) *Board {
	return NewBoardWithClock(categoryID, time.Now)
}

// NewBoardWithClock uses now for every timestamp on the board.
func NewBoardWithClock(categoryID string, now func() time.Time) *Board {
	return &Board{
		categoryID:   categoryID,
		now:          now,
		participants: make(map[string]*domain.Participant),
		subscribers:  make(map[int]chan domain.Leaderboard),
	}
}

// join registers a player or refreshes their display name.
// Points, answer counts and an earlier completion survive a restart.
func (b *Board) join(userID, displayName string) domain.Leaderboard {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.participants[userID]
	if !ok {
		p = &domain.Participant{UserID: userID}
		b.participants[userID] = p
	}
	if displayName != "" {
		p.DisplayName = displayName
	}
	return b.publishLocked()
}

// record applies a final verdict, re-adding the player if the board was
// recreated mid-attempt. completed marks the attempt as fully answered.
func (b *Board) record(userID, displayName string, res domain.SubmitResult, completed bool) domain.Leaderboard {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.participants[userID]
	if !ok {
		p = &domain.Participant{UserID: userID, DisplayName: displayName}
		b.participants[userID] = p
	}
	p.Answered++
	if res.IsCorrect {
		p.Correct++
	}
	p.Score += res.PointsAwarded
	if completed && p.CompletedAt.IsZero() {
		p.CompletedAt = b.now()
	}
	return b.publishLocked()
}

// Snapshot returns the current ordered leaderboard.
func (b *Board) Snapshot() domain.Leaderboard {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked()
}

// Len reports how many players are on the board.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.participants)
}

// Watched reports whether any live stream is subscribed to the board.
func (b *Board) Watched() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers) > 0
}

// subscribe returns a feed primed with the current standings. The feed keeps
// only the newest pending snapshot; cancel closes it.
func (b *Board) subscribe() (<-chan domain.Leaderboard, func()) {
	feed := make(chan domain.Leaderboard, 1)

	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subscribers[id] = feed
	feed <- b.snapshotLocked()
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, id)
			close(feed)
			b.mu.Unlock()
		})
	}
	return feed, cancel
}

func (b *Board) publishLocked() domain.Leaderboard {
	lb := b.snapshotLocked()
	for _, feed := range b.subscribers {
		replaceLatest(feed, lb)
	}
	return lb
}

// replaceLatest drops a stale unread snapshot so readers never lag behind.
func replaceLatest(feed chan domain.Leaderboard, lb domain.Leaderboard) {
	select {
	case <-feed:
	default:
	}
	feed <- lb
}

func (b *Board) snapshotLocked() domain.Leaderboard {
	ranked := make([]*domain.Participant, 0, len(b.participants))
	for _, p := range b.participants {
		ranked = append(ranked, p)
	}
	sort.Slice(ranked, func(i, j int) bool { return ranksAbove(ranked[i], ranked[j]) })

	entries := make([]domain.LeaderboardEntry, 0, len(ranked))
	for _, p := range ranked {
		entries = append(entries, domain.LeaderboardEntry{
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			Score:       p.Score,
			Correct:     p.Correct,
			Answered:    p.Answered,
			Completed:   !p.CompletedAt.IsZero(),
		})
	}
	return domain.Leaderboard{
		CategoryID: b.categoryID,
		Entries:    entries,
		UpdatedAt:  b.now(),
	}
}

// ranksAbove orders by points, then finished attempts ahead of unfinished ones
// with the earlier finish first, then correct answers, then name.
func ranksAbove(a, b *domain.Participant) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	aDone, bDone := !a.CompletedAt.IsZero(), !b.CompletedAt.IsZero()
	if aDone != bDone {
		return aDone
	}
	if aDone && !a.CompletedAt.Equal(b.CompletedAt) {
		return a.CompletedAt.Before(b.CompletedAt)
	}
	if a.Correct != b.Correct {
		return a.Correct > b.Correct
	}
	if a.DisplayName != b.DisplayName {
		return a.DisplayName < b.DisplayName
	}
	return a.UserID < b.UserID
}
