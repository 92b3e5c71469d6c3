package batch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/idmapping/internal/domain"
	"github.com/honeycarbs/idmapping/internal/domain/endpoint"
	"github.com/honeycarbs/idmapping/internal/repository"
	"github.com/honeycarbs/idmapping/internal/storage/memory"
)

// pairRunner answers per target database
type pairRunner struct {
	mu     sync.Mutex
	byTo   map[string]map[string][]string
	called int
}

func (r *pairRunner) RunJob(_ context.Context, _, to endpoint.Endpoint, ids []string) (domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.called++

	job := domain.Job{ID: "job", Status: domain.JobStatusFinished, Results: domain.Mapping{}}
	for _, id := range ids {
		if targets, ok := r.byTo[to.Name()][id]; ok {
			job.Results[id] = targets
		}
	}
	return job, nil
}

func TestRegistryKeepsOneCachePerPair(t *testing.T) {
	cat := endpoint.Default()
	from, geneID, err := cat.Pair("UniProtKB_AC-ID", "GeneID")
	require.NoError(t, err)
	_, flybase, err := cat.Pair("UniProtKB_AC-ID", "FlyBase")
	require.NoError(t, err)

	runner := &pairRunner{byTo: map[string]map[string][]string{
		"GeneID":  {"P32234": {"36288"}},
		"FlyBase": {"P32234": {"FBgn0010339"}},
	}}

	opened := map[string]int{}
	factory := func(_ context.Context, from, to endpoint.Endpoint) (repository.IDCache, error) {
		opened[from.Name()+"->"+to.Name()]++
		return memory.NewCache(), nil
	}

	reg, err := NewRegistry(factory, WithRunner(runner), WithPause(0))
	require.NoError(t, err)

	ctx := context.Background()
	got, err := reg.MapIDs(ctx, from, geneID, []string{"P32234"})
	require.NoError(t, err)
	assert.Equal(t, domain.Mapping{"P32234": {"36288"}}, got)

	got, err = reg.MapIDs(ctx, from, flybase, []string{"P32234"})
	require.NoError(t, err)
	assert.Equal(t, domain.Mapping{"P32234": {"FBgn0010339"}}, got)

	_, err = reg.MapIDs(ctx, from, geneID, []string{"P32234"})
	require.NoError(t, err)

	assert.Equal(t, 2, runner.called, "third call is served from the GeneID cache")
	assert.Equal(t, map[string]int{"UniProtKB_AC-ID->GeneID": 1, "UniProtKB_AC-ID->FlyBase": 1}, opened)
	assert.Equal(t, 2, reg.Pairs())
}

func TestRegistryConcurrentCallsOnOnePair(t *testing.T) {
	from, to, err := endpoint.Default().Pair("UniProtKB_AC-ID", "GeneID")
	require.NoError(t, err)

	runner := &pairRunner{byTo: map[string]map[string][]string{"GeneID": {"P1": {"g1"}}}}
	reg, err := NewRegistry(func(context.Context, endpoint.Endpoint, endpoint.Endpoint) (repository.IDCache, error) {
		return memory.NewCache(), nil
	}, WithRunner(runner), WithPause(0))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := reg.MapIDs(context.Background(), from, to, []string{"P1"})
			assert.NoError(t, err)
			assert.Equal(t, domain.Mapping{"P1": {"g1"}}, got)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, runner.called)
}

func TestRegistryErrors(t *testing.T) {
	_, err := NewRegistry(nil, WithRunner(&pairRunner{}))
	assert.Error(t, err)

	_, err = NewRegistry(func(context.Context, endpoint.Endpoint, endpoint.Endpoint) (repository.IDCache, error) {
		return memory.NewCache(), nil
	})
	assert.Error(t, err, "runner is required")

	reg, err := NewRegistry(func(context.Context, endpoint.Endpoint, endpoint.Endpoint) (repository.IDCache, error) {
		return nil, errors.New("no disk")
	}, WithRunner(&pairRunner{}))
	require.NoError(t, err)

	from, to, err := endpoint.Default().Pair("UniProtKB_AC-ID", "GeneID")
	require.NoError(t, err)

	_, err = reg.MapIDs(context.Background(), from, to, []string{"P1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no disk")
	assert.Zero(t, reg.Pairs(), "failed pairs are retried on the next call")

	_, err = reg.MapIDs(context.Background(), endpoint.Endpoint{}, to, []string{"P1"})
	assert.Error(t, err)
}

func TestRegistrySlowCacheDoesNotBlockOtherPairs(t *testing.T) {
	cat := endpoint.Default()
	from, geneID, err := cat.Pair("UniProtKB_AC-ID", "GeneID")
	require.NoError(t, err)
	_, flybase, err := cat.Pair("UniProtKB_AC-ID", "FlyBase")
	require.NoError(t, err)

	release := make(chan struct{})
	var mu sync.Mutex
	opened := map[string]int{}
	factory := func(_ context.Context, _, to endpoint.Endpoint) (repository.IDCache, error) {
		mu.Lock()
		opened[to.Name()]++
		mu.Unlock()
		if to.Name() == "GeneID" {
			<-release
		}
		return memory.NewCache(), nil
	}

	runner := &pairRunner{byTo: map[string]map[string][]string{
		"GeneID":  {"P1": {"g1"}},
		"FlyBase": {"P1": {"FBgn1"}},
	}}
	reg, err := NewRegistry(factory, WithRunner(runner), WithPause(0))
	require.NoError(t, err)

	slow := make(chan error, 2)
	for range 2 {
		go func() {
			_, err := reg.MapIDs(context.Background(), from, geneID, []string{"P1"})
			slow <- err
		}()
	}

	got, err := reg.MapIDs(context.Background(), from, flybase, []string{"P1"})
	require.NoError(t, err)
	assert.Equal(t, domain.Mapping{"P1": {"FBgn1"}}, got)

	close(release)
	require.NoError(t, <-slow)
	require.NoError(t, <-slow)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, map[string]int{"GeneID": 1, "FlyBase": 1}, opened)
}

func TestRegistryWaitHonoursContext(t *testing.T) {
	from, to, err := endpoint.Default().Pair("UniProtKB_AC-ID", "GeneID")
	require.NoError(t, err)

	release := make(chan struct{})
	started := make(chan struct{})
	reg, err := NewRegistry(func(context.Context, endpoint.Endpoint, endpoint.Endpoint) (repository.IDCache, error) {
		close(started)
		<-release
		return memory.NewCache(), nil
	}, WithRunner(&pairRunner{}), WithPause(0))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := reg.MapIDs(context.Background(), from, to, []string{"P1"})
		done <- err
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = reg.MapIDs(ctx, from, to, []string{"P1"})
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	require.NoError(t, <-done)
}
