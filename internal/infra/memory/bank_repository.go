package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/germain250/quizly/internal/domain"
	"golang.org/x/sync/singleflight"
)

// BankLoader fetches a category's question bank from a backing store.
type BankLoader interface {
	LoadCategory(ctx context.Context, categoryID string) (domain.Category, error)
}

// BankRepository caches category banks with TTL to avoid repeated DB hits.
type BankRepository struct {
	loader BankLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedCategory
}

type cachedCategory struct {
	category  domain.Category
	expiresAt time.Time
}

func NewBankRepository(loader BankLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCategory),
	}
}

func (r *BankRepository) GetCategory(ctx context.Context, categoryID string) (domain.Category, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[categoryID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.category, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(categoryID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[categoryID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.category, nil
		}
		r.mu.RUnlock()

		category, err := r.loader.LoadCategory(ctx, categoryID)
		if err != nil {
			return domain.Category{}, err
		}

		r.mu.Lock()
		r.cache[categoryID] = cachedCategory{
			category:  category,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return category, nil
	})
	if err != nil {
		return domain.Category{}, err
	}
	return result.(domain.Category), nil
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticBankLoader is a simple loader backed by an in-memory map (useful
// for tests/demos).
type StaticBankLoader struct {
	categories map[string]domain.Category
}

func NewStaticBankLoader(categories map[string]domain.Category) *StaticBankLoader {
	return &StaticBankLoader{categories: categories}
}

func (l *StaticBankLoader) LoadCategory(_ context.Context, categoryID string) (domain.Category, error) {
	if category, ok := l.categories[categoryID]; ok {
		return category, nil
	}
	return domain.Category{}, domain.ErrCategoryNotFound
}
