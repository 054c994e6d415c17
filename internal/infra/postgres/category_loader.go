package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-quiz/internal/domain"
)

// CategoryLoader loads category question banks stored as JSONB.
type CategoryLoader struct {
	pool *pgxpool.Pool
}

func NewCategoryLoader(pool *pgxpool.Pool) *CategoryLoader {
	return &CategoryLoader{pool: pool}
}

func (l *CategoryLoader) LoadCategory(ctx context.Context, categoryID string) (domain.CategoryBank, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM categories WHERE id=$1`, categoryID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CategoryBank{}, domain.ErrCategoryNotFound
	}
	if err != nil {
		return domain.CategoryBank{}, fmt.Errorf("load category: %w", err)
	}
	var bank domain.CategoryBank
	if err := json.Unmarshal(raw, &bank); err != nil {
		return domain.CategoryBank{}, fmt.Errorf("unmarshal category: %w", err)
	}
	if bank.ID == "" {
		bank.ID = categoryID
	}
	return bank, nil
}
