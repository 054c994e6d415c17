package redis

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-quiz/internal/domain"
)

// CategoryLoader fetches category content from a backing store (e.g., Postgres).
type CategoryLoader interface {
	LoadCategory(ctx context.Context, categoryID string) (domain.CategoryBank, error)
}

// CategoryRepository caches whole category banks in Redis and falls back to a loader on cache miss.
// Banks are stored as JSON: SET category:{categoryID} {json} EX ttl
type CategoryRepository struct {
	client *redis.Client
	loader CategoryLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewCategoryRepository(client *redis.Client, loader CategoryLoader, ttl time.Duration) *CategoryRepository {
	return &CategoryRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CategoryRepository) GetCategory(ctx context.Context, categoryID string) (domain.CategoryBank, error) {
	if bank, ok := r.cached(ctx, categoryID); ok {
		return bank, nil
	}

	result, err, _ := r.sf.Do(categoryID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if bank, ok := r.cached(ctx, categoryID); ok {
			return bank, nil
		}

		bank, err := r.loader.LoadCategory(ctx, categoryID)
		if err != nil {
			return domain.CategoryBank{}, err
		}

		data, err := json.Marshal(bank)
		if err != nil {
			return domain.CategoryBank{}, err
		}
		if err := r.client.Set(ctx, r.key(categoryID), data, r.ttlWithJitter()).Err(); err != nil {
			log.Printf("cache category %s: %v", categoryID, err)
		}
		return bank, nil
	})
	if err != nil {
		return domain.CategoryBank{}, err
	}
	return result.(domain.CategoryBank), nil
}

func (r *CategoryRepository) cached(ctx context.Context, categoryID string) (domain.CategoryBank, bool) {
	data, err := r.client.Get(ctx, r.key(categoryID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("read cached category %s: %v", categoryID, err)
		}
		return domain.CategoryBank{}, false
	}
	var bank domain.CategoryBank
	if err := json.Unmarshal(data, &bank); err != nil {
		log.Printf("decode cached category %s: %v", categoryID, err)
		return domain.CategoryBank{}, false
	}
	return bank, true
}

func (r *CategoryRepository) key(categoryID string) string {
	return "category:" + categoryID
}

func (r *CategoryRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
