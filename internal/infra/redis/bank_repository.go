package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/germain250/quizly/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// BankLoader fetches a category's question bank from a backing store.
type BankLoader interface {
	LoadCategory(ctx context.Context, categoryID string) (domain.Category, error)
}

// BankRepository caches full category banks in Redis and falls back to a
// loader on cache miss. The whole bank is stored as a JSON blob under
// bank:{categoryID} because the progression engine needs prompts and option
// lists, not just answers.
type BankRepository struct {
	client *redis.Client
	loader BankLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewBankRepository(client *redis.Client, loader BankLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *BankRepository) GetCategory(ctx context.Context, categoryID string) (domain.Category, error) {
	key := r.bankKey(categoryID)

	if category, ok := r.fromCache(ctx, key); ok {
		return category, nil
	}

	result, err, _ := r.sf.Do(categoryID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if category, ok := r.fromCache(ctx, key); ok {
			return category, nil
		}

		category, err := r.loader.LoadCategory(ctx, categoryID)
		if err != nil {
			return domain.Category{}, err
		}

		data, err := json.Marshal(category)
		if err != nil {
			return domain.Category{}, fmt.Errorf("marshal category: %w", err)
		}
		// best-effort cache fill
		_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()

		return category, nil
	})
	if err != nil {
		return domain.Category{}, err
	}
	return result.(domain.Category), nil
}

func (r *BankRepository) fromCache(ctx context.Context, key string) (domain.Category, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Category{}, false
	}
	var category domain.Category
	if err := json.Unmarshal(raw, &category); err != nil {
		return domain.Category{}, false
	}
	return category, true
}

func (r *BankRepository) bankKey(categoryID string) string {
	return "bank:" + categoryID
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
