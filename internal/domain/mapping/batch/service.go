package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/honeycarbs/idmapping/internal/domain"
	"github.com/honeycarbs/idmapping/internal/domain/endpoint"
	"github.com/honeycarbs/idmapping/internal/domain/mapping"
	"github.com/honeycarbs/idmapping/internal/repository"
	"github.com/honeycarbs/idmapping/internal/storage/memory"
	"github.com/honeycarbs/idmapping/pkg/idlist"
	"github.com/honeycarbs/idmapping/pkg/logging"
	"github.com/honeycarbs/idmapping/pkg/wait"
)

const (
	DefaultBatchSize = 100
	DefaultPause     = time.Second
)

// ErrJobNotFinished is returned in strict mode when a job ends in a non-success status
var ErrJobNotFinished = errors.New("batch: mapping job did not finish")

// JobRunner runs one mapping job to a terminal status
type JobRunner interface {
	RunJob(ctx context.Context, from, to endpoint.Endpoint, ids []string) (domain.Job, error)
}

// Option configures Service
type Option func(*config)

type config struct {
	runner    JobRunner
	cache     repository.IDCache
	batchSize int
	pause     time.Duration
	sleep     wait.SleepFunc
	logger    *logging.Logger
	strict    bool
	runID     func() string
}

// WithRunner sets the job runner
func WithRunner(r JobRunner) Option {
	return func(c *config) {
		c.runner = r
	}
}

// WithCache sets the identifier cache. The cache must not be shared with
// another (from, to) pair since it is keyed by identifier only.
func WithCache(cache repository.IDCache) Option {
	return func(c *config) {
		c.cache = cache
	}
}

// WithBatchSize sets the maximum number of identifiers per job
func WithBatchSize(n int) Option {
	return func(c *config) {
		c.batchSize = n
	}
}

// WithPause sets the pause observed after each finished job
func WithPause(d time.Duration) Option {
	return func(c *config) {
		c.pause = d
	}
}

// WithSleep sets a custom sleeper
func WithSleep(fn wait.SleepFunc) Option {
	return func(c *config) {
		c.sleep = fn
	}
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithStrictStatus makes a job ending in a non-success status fail the call
// with ErrJobNotFinished instead of producing no results for its batch
func WithStrictStatus() Option {
	return func(c *config) {
		c.strict = true
	}
}

// Service is the cache-aside batch orchestrator.
//
// It is not safe for concurrent use: the cache read and the following write are
// not atomic, so concurrent callers must serialise access.
type Service struct {
	runner    JobRunner
	cache     repository.IDCache
	batchSize int
	pause     time.Duration
	sleep     wait.SleepFunc
	logger    *logging.Logger
	strict    bool
	runID     func() string
}

var _ mapping.Mapper = (*Service)(nil)

// NewService builds Service from options
func NewService(opts ...Option) (*Service, error) {
	cfg := &config{
		batchSize: DefaultBatchSize,
		pause:     DefaultPause,
		sleep:     wait.Sleep,
		runID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.runner == nil {
		return nil, fmt.Errorf("batch.Service: job runner is required")
	}
	if cfg.batchSize <= 0 {
		return nil, fmt.Errorf("batch.Service: batch size must be positive, got %d", cfg.batchSize)
	}
	if cfg.pause < 0 {
		return nil, fmt.Errorf("batch.Service: pause must not be negative")
	}
	if cfg.cache == nil {
		cfg.cache = memory.NewCache()
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}

	return &Service{
		runner:    cfg.runner,
		cache:     cfg.cache,
		batchSize: cfg.batchSize,
		pause:     cfg.pause,
		sleep:     cfg.sleep,
		logger:    cfg.logger,
		strict:    cfg.strict,
		runID:     cfg.runID,
	}, nil
}

// MapIDs resolves ids, serving cache hits directly and sending misses to the
// remote service in sequential batches. Any runner or cache error aborts the
// call; batches finished before the failure remain cached.
func (s *Service) MapIDs(ctx context.Context, from, to endpoint.Endpoint, ids []string) (domain.Mapping, error) {
	log := s.logger.With("run_id", s.runID(), "from", from.Name(), "to", to.Name())

	result := make(domain.Mapping)
	pending := make([]string, 0, min(len(ids), s.batchSize))
	batches, hits := 0, 0

	flush := func() error {
		batches++
		log.Debug("processing batch", "batch", batches, "ids", len(pending))
		if err := s.processBatch(ctx, log, from, to, pending, result); err != nil {
			return fmt.Errorf("batch %d: %w", batches, err)
		}
		pending = pending[:0]
		return nil
	}

	for _, id := range ids {
		targets, ok, err := s.cache.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("batch: read cache for %q: %w", id, err)
		}
		if ok {
			hits++
			if len(targets) > 0 {
				result[id] = targets
			}
			continue
		}

		pending = append(pending, id)
		if len(pending) == s.batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}

	if len(pending) > 0 {
		if err := flush(); err != nil {
			return nil, err
		}
	}

	log.Info("identifiers mapped", "ids", len(ids), "cache_hits", hits, "batches", batches, "mapped", len(result))
	return result, nil
}

func (s *Service) processBatch(
	ctx context.Context,
	log *logging.Logger,
	from, to endpoint.Endpoint,
	batch []string,
	result domain.Mapping,
) error {
	unique := idlist.Dedupe(batch)

	job, err := s.runner.RunJob(ctx, from, to, unique)
	if err != nil {
		return err
	}

	if !job.Status.Finished() {
		log.Warn("mapping job ended without results", "job_id", job.ID, "status", job.Status, "ids", len(unique))
		if s.strict {
			return fmt.Errorf("%w: job %s ended with status %s", ErrJobNotFinished, job.ID, job.Status)
		}
		return nil
	}

	mapped := 0
	for _, id := range unique {
		targets := job.Results[id]
		if len(targets) == 0 {
			continue
		}
		if err := s.cache.Put(ctx, id, targets); err != nil {
			return fmt.Errorf("write cache for %q: %w", id, err)
		}
		result[id] = targets
		mapped++
	}

	if extra := len(job.Results) - mapped; extra > 0 {
		log.Debug("ignoring results for identifiers outside the batch", "job_id", job.ID, "count", extra)
	}

	if s.pause > 0 {
		if err := s.sleep(ctx, s.pause); err != nil {
			return fmt.Errorf("pause after job %s: %w", job.ID, err)
		}
	}

	return nil
}
