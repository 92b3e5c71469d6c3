package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/honeycarbs/idmapping/internal/domain"
	"github.com/honeycarbs/idmapping/internal/domain/endpoint"
	"github.com/honeycarbs/idmapping/internal/domain/mapping"
	"github.com/honeycarbs/idmapping/internal/repository"
)

// CacheFactory opens the cache dedicated to one (from, to) pair
type CacheFactory func(ctx context.Context, from, to endpoint.Endpoint) (repository.IDCache, error)

type pairKey struct {
	from string
	to   string
}

// pairService is published before its cache is open; ready is closed once
// svc or err is set.
type pairService struct {
	ready chan struct{}
	err   error

	mu  sync.Mutex
	svc *Service
}

// Registry hands out one Service per (from, to) pair, each with its own cache,
// and serialises calls on the same pair. Different pairs run independently.
type Registry struct {
	newCache CacheFactory
	opts     []Option

	mu    sync.Mutex
	pairs map[pairKey]*pairService
}

var _ mapping.Mapper = (*Registry)(nil)

// NewRegistry creates a Registry. opts apply to every Service it builds and
// must include WithRunner.
func NewRegistry(newCache CacheFactory, opts ...Option) (*Registry, error) {
	if newCache == nil {
		return nil, fmt.Errorf("batch.Registry: cache factory is required")
	}

	// fail early on invalid options instead of on the first call
	if _, err := NewService(opts...); err != nil {
		return nil, err
	}

	return &Registry{
		newCache: newCache,
		opts:     opts,
		pairs:    make(map[pairKey]*pairService),
	}, nil
}

// MapIDs maps ids with the Service of the (from, to) pair
func (r *Registry) MapIDs(ctx context.Context, from, to endpoint.Endpoint, ids []string) (domain.Mapping, error) {
	ps, err := r.service(ctx, from, to)
	if err != nil {
		return nil, err
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	return ps.svc.MapIDs(ctx, from, to, ids)
}

// Pairs returns the number of pairs used so far
func (r *Registry) Pairs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pairs)
}

func (r *Registry) service(ctx context.Context, from, to endpoint.Endpoint) (*pairService, error) {
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("batch.Registry: endpoints are required")
	}

	k := pairKey{from: from.Name(), to: to.Name()}

	r.mu.Lock()
	ps, ok := r.pairs[k]
	if !ok {
		ps = &pairService{ready: make(chan struct{})}
		r.pairs[k] = ps
	}
	r.mu.Unlock()

	if ok {
		select {
		case <-ps.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if ps.err != nil {
			return nil, ps.err
		}
		return ps, nil
	}

	ps.svc, ps.err = r.open(ctx, from, to)
	if ps.err != nil {
		r.mu.Lock()
		delete(r.pairs, k)
		r.mu.Unlock()
	}
	close(ps.ready)

	if ps.err != nil {
		return nil, ps.err
	}
	return ps, nil
}

func (r *Registry) open(ctx context.Context, from, to endpoint.Endpoint) (*Service, error) {
	cache, err := r.newCache(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("batch.Registry: open cache for %s -> %s: %w", from, to, err)
	}

	opts := append(append([]Option(nil), r.opts...), WithCache(cache))
	return NewService(opts...)
}
