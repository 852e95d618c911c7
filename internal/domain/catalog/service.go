package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/sync/singleflight"

	"github.com/pescastur/storefront/internal/domain/product"
)

// Service serves catalog reads for the listing UI. Listings are fetched
// repeatedly on navigation, so List keeps a short-lived in-memory copy and
// collapses concurrent misses with singleflight to avoid stampeding the
// repository.
type Service struct {
	repo product.Repository
	ttl  time.Duration
	sfg  singleflight.Group

	mu        sync.RWMutex
	cached    []product.Product
	fetchedAt time.Time

	now func() time.Time
}

// NewService creates a Service over the given repository. Cached listings
// are served for up to ttl before the repository is consulted again.
func NewService(repo product.Repository, ttl time.Duration) *Service {
	return &Service{
		repo: repo,
		ttl:  ttl,
		now:  time.Now,
	}
}

// List returns the full catalog, serving the cached copy while it is
// fresh.
func (s *Service) List(ctx context.Context) ([]product.Product, error) {
	s.mu.RLock()
	if s.cached != nil && s.now().Sub(s.fetchedAt) < s.ttl {
		out := make([]product.Product, len(s.cached))
		copy(out, s.cached)
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()

	v, err, _ := s.sfg.Do("list", func() (interface{}, error) {
		products, err := s.repo.List(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "list products")
		}
		s.mu.Lock()
		s.cached = products
		s.fetchedAt = s.now()
		s.mu.Unlock()
		return products, nil
	})
	if err != nil {
		return nil, err
	}

	products := v.([]product.Product)
	out := make([]product.Product, len(products))
	copy(out, products)
	return out, nil
}

// GetByUID returns a single product, bypassing the listing cache.
func (s *Service) GetByUID(ctx context.Context, uid string) (*product.Product, error) {
	return s.repo.GetByUID(ctx, uid)
}

// Invalidate drops the cached listing so the next List hits the
// repository.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}
