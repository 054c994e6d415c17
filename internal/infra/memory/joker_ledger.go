package memory

import (
	"context"
	"sync"
	"time"

	"trivia-quiz/internal/domain"
)

// JokerLedger is an in-memory app.JokerLedger. Spent jokers become available
// again once ttl has passed; a zero ttl never expires.
type JokerLedger struct {
	ttl   time.Duration
	clock func() time.Time

	mu    sync.Mutex
	spent map[string]time.Time
}

func NewJokerLedger(ttl time.Duration) *JokerLedger {
	return &JokerLedger{ttl: ttl, clock: time.Now, spent: make(map[string]time.Time)}
}

func (l *JokerLedger) Consume(_ context.Context, userID, categoryID string, kind domain.JokerKind) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ledgerKey(userID, categoryID, kind)
	if l.usedLocked(key) {
		return domain.ErrJokerUsed
	}
	l.spent[key] = l.clock()
	return nil
}

func (l *JokerLedger) Status(_ context.Context, userID, categoryID string) (domain.JokerStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return domain.JokerStatus{
		EliminationUsed:  l.usedLocked(ledgerKey(userID, categoryID, domain.JokerElimination)),
		SecondChanceUsed: l.usedLocked(ledgerKey(userID, categoryID, domain.JokerSecondChance)),
	}, nil
}

func (l *JokerLedger) usedLocked(key string) bool {
	at, ok := l.spent[key]
	if !ok {
		return false
	}
	if l.ttl > 0 && !l.clock().Before(at.Add(l.ttl)) {
		delete(l.spent, key)
		return false
	}
	return true
}

func ledgerKey(userID, categoryID string, kind domain.JokerKind) string {
	return userID + "|" + categoryID + "|" + string(kind)
}
