package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"trivia-quiz/internal/domain"
)

// CategoryLoader fetches category content from a backing store (e.g., Postgres).
type CategoryLoader interface {
	LoadCategory(ctx context.Context, categoryID string) (domain.CategoryBank, error)
}

// CategoryRepository keeps validated question pools in process for a TTL.
// Concurrent misses on one category share a single load.
type CategoryRepository struct {
	loader CategoryLoader
	ttl    time.Duration
	clock  func() time.Time
	loads  singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	banks map[string]cachedBank
}

type cachedBank struct {
	bank      domain.CategoryBank
	expiresAt time.Time
}

func NewCategoryRepository(loader CategoryLoader, ttl time.Duration) *CategoryRepository {
	return &CategoryRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		banks:  make(map[string]cachedBank),
	}
}

// GetCategory returns the question pool of a category. Content that fails
// validation is reported as domain.ErrInvalidCategory and never cached.
func (r *CategoryRepository) GetCategory(ctx context.Context, categoryID string) (domain.CategoryBank, error) {
	if bank, ok := r.fresh(categoryID); ok {
		return bank, nil
	}

	v, err, _ := r.loads.Do(categoryID, func() (interface{}, error) {
		if bank, ok := r.fresh(categoryID); ok {
			return bank, nil
		}
		bank, err := r.loader.LoadCategory(ctx, categoryID)
		if err != nil {
			return domain.CategoryBank{}, err
		}
		if err := bank.Validate(); err != nil {
			return domain.CategoryBank{}, fmt.Errorf("category %s: %w", categoryID, err)
		}
		r.store(categoryID, bank)
		return bank, nil
	})
	if err != nil {
		return domain.CategoryBank{}, err
	}
	return v.(domain.CategoryBank), nil
}

func (r *CategoryRepository) fresh(categoryID string) (domain.CategoryBank, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.banks[categoryID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.CategoryBank{}, false
	}
	return entry.bank, true
}

func (r *CategoryRepository) store(categoryID string, bank domain.CategoryBank) {
	expiresAt := r.clock().Add(r.ttlWithJitter())
	r.mu.Lock()
	r.banks[categoryID] = cachedBank{bank: bank, expiresAt: expiresAt}
	r.mu.Unlock()
}

// ttlWithJitter adds up to 10% so categories loaded together expire apart.
func (r *CategoryRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	jitter := r.rnd.Int63n(int64(r.ttl)/10 + 1)
	r.mu.Unlock()
	return r.ttl + time.Duration(jitter)
}

// StaticCategoryLoader serves fixed question pools (sample data and tests).
type StaticCategoryLoader struct {
	banks map[string]domain.CategoryBank
}

func NewStaticCategoryLoader(banks map[string]domain.CategoryBank) *StaticCategoryLoader {
	return &StaticCategoryLoader{banks: banks}
}

func (l *StaticCategoryLoader) LoadCategory(_ context.Context, categoryID string) (domain.CategoryBank, error) {
	if bank, ok := l.banks[categoryID]; ok {
		return bank, nil
	}
	return domain.CategoryBank{}, domain.ErrCategoryNotFound
}
