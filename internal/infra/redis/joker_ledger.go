package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-quiz/internal/domain"
)

// JokerLedger records spent jokers as SETNX keys so concurrent requests
// cannot spend the same joker twice:
//
//	SET joker:{userID}:{categoryID}:{kind} 1 NX EX ttl
type JokerLedger struct {
	client *redis.Client
	ttl    time.Duration
}

func NewJokerLedger(client *redis.Client, ttl time.Duration) *JokerLedger {
	return &JokerLedger{client: client, ttl: ttl}
}

func (l *JokerLedger) Consume(ctx context.Context, userID, categoryID string, kind domain.JokerKind) error {
	ok, err := l.client.SetNX(ctx, l.key(userID, categoryID, kind), time.Now().Unix(), l.ttl).Result()
	if err != nil {
		return fmt.Errorf("consume joker: %w", err)
	}
	if !ok {
		return domain.ErrJokerUsed
	}
	return nil
}

func (l *JokerLedger) Status(ctx context.Context, userID, categoryID string) (domain.JokerStatus, error) {
	n, err := l.client.Exists(ctx, l.key(userID, categoryID, domain.JokerElimination)).Result()
	if err != nil {
		return domain.JokerStatus{}, fmt.Errorf("joker status: %w", err)
	}
	m, err := l.client.Exists(ctx, l.key(userID, categoryID, domain.JokerSecondChance)).Result()
	if err != nil {
		return domain.JokerStatus{}, fmt.Errorf("joker status: %w", err)
	}
	return domain.JokerStatus{EliminationUsed: n > 0, SecondChanceUsed: m > 0}, nil
}

func (l *JokerLedger) key(userID, categoryID string, kind domain.JokerKind) string {
	return "joker:" + userID + ":" + categoryID + ":" + string(kind)
}
