package mcp

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/honeycarbs/idmapping/internal/config"
	"github.com/honeycarbs/idmapping/internal/domain/endpoint"
	"github.com/honeycarbs/idmapping/internal/domain/mapping/batch"
	"github.com/honeycarbs/idmapping/internal/domain/mapping/local"
	uniprotProvider "github.com/honeycarbs/idmapping/internal/domain/mapping/providers/uniprot"
	"github.com/honeycarbs/idmapping/internal/mcp/tools"
	"github.com/honeycarbs/idmapping/internal/repository"
	"github.com/honeycarbs/idmapping/internal/storage/file"
	"github.com/honeycarbs/idmapping/internal/storage/memory"
	storage "github.com/honeycarbs/idmapping/internal/storage/neo4j"
	"github.com/honeycarbs/idmapping/pkg/logging"
	n4j "github.com/honeycarbs/idmapping/pkg/neo4j"
	sheetsclient "github.com/honeycarbs/idmapping/pkg/sheets"
	"github.com/honeycarbs/idmapping/pkg/uniprot"
)

// provideUniProtConfig extracts UniProt config from main config
func provideUniProtConfig(cfg config.Config, logger *logging.Logger) uniprot.Config {
	return uniprot.Config{
		BaseURL:      cfg.UniProt.BaseURL,
		PollInterval: cfg.UniProt.PollInterval,
		Logger:       logger,
	}
}

// provideJobRunner creates a UniProt provider from client
func provideJobRunner(client *uniprot.Client) (*uniprotProvider.Provider, error) {
	return uniprotProvider.NewProvider(client)
}

// provideNeo4jClient connects to Neo4j when it backs the cache.
// The client is nil for the other backends.
func provideNeo4jClient(ctx context.Context, cfg config.Config, logger *logging.Logger) (*n4j.Client, func(), error) {
	if cfg.Cache.Backend != config.CacheNeo4j {
		return nil, func() {}, nil
	}

	client, err := n4j.NewClient(neo4jConfig(cfg))
	if err != nil {
		return nil, nil, err
	}

	if err := storage.EnsureSchema(ctx, client); err != nil {
		_ = client.Close(ctx)
		return nil, nil, err
	}

	logger.Info("Neo4j client initialized", "uri", cfg.Neo4j.URI, "database", cfg.Neo4j.Database)

	cleanup := func() {
		if err := client.Close(context.Background()); err != nil {
			logger.Warn("failed to close Neo4j client", "err", err)
		}
	}
	return client, cleanup, nil
}

func neo4jConfig(cfg config.Config) n4j.Config {
	return n4j.Config{
		URI:           cfg.Neo4j.URI,
		Username:      cfg.Neo4j.Username,
		Password:      cfg.Neo4j.Password,
		Database:      cfg.Neo4j.Database,
		VerifyTimeout: cfg.Neo4j.VerifyTimeout,
	}
}

// provideCacheFactory selects the per-pair cache backend
func provideCacheFactory(cfg config.Config, client *n4j.Client, logger *logging.Logger) (batch.CacheFactory, error) {
	switch cfg.Cache.Backend {
	case config.CacheMemory:
		return func(context.Context, endpoint.Endpoint, endpoint.Endpoint) (repository.IDCache, error) {
			return memory.NewCache(), nil
		}, nil

	case config.CacheFile:
		fs := afero.NewOsFs()
		return func(_ context.Context, from, to endpoint.Endpoint) (repository.IDCache, error) {
			return file.NewCache(fs, CacheFilePath(cfg.Cache.Dir, from, to), file.WithLogger(logger))
		}, nil

	case config.CacheNeo4j:
		if client == nil {
			return nil, fmt.Errorf("neo4j cache backend selected without a client")
		}
		return func(_ context.Context, from, to endpoint.Endpoint) (repository.IDCache, error) {
			return storage.NewCache(client, CacheName(from, to))
		}, nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// CacheName names the cache of one (from, to) pair
func CacheName(from, to endpoint.Endpoint) string {
	return from.Name() + "->" + to.Name()
}

// CacheFilePath places the cache file of one (from, to) pair under dir
func CacheFilePath(dir string, from, to endpoint.Endpoint) string {
	return filepath.Join(dir, from.Name()+"__"+to.Name()+".cache")
}

// provideBatchOptions collects the orchestrator settings shared by every pair
func provideBatchOptions(cfg config.Config, runner batch.JobRunner, logger *logging.Logger) []batch.Option {
	opts := []batch.Option{
		batch.WithRunner(runner),
		batch.WithBatchSize(cfg.UniProt.BatchSize),
		batch.WithPause(cfg.UniProt.BatchPause),
		batch.WithLogger(logger.Named("batch")),
	}
	if cfg.UniProt.StrictStatus {
		opts = append(opts, batch.WithStrictStatus())
	}
	return opts
}

// provideRegistry creates the per-pair orchestrator registry
func provideRegistry(newCache batch.CacheFactory, opts []batch.Option) (*batch.Registry, error) {
	return batch.NewRegistry(newCache, opts...)
}

// provideLocalIndex loads the configured dump; nil when no dump is configured
func provideLocalIndex(ctx context.Context, cfg config.Config, catalogs endpoint.Catalogs, logger *logging.Logger) (*local.Index, error) {
	if cfg.Dump.Path == "" {
		return nil, nil
	}

	opts := []local.Option{
		local.WithCatalogs(catalogs),
		local.WithLogger(logger.Named("local")),
	}
	if cfg.Dump.Workers > 0 {
		opts = append(opts, local.WithWorkers(cfg.Dump.Workers))
	}
	if cfg.Dump.Deversion {
		opts = append(opts, local.WithDeversioning())
	}

	idx, _, err := local.Open(ctx, cfg.Dump.Path, opts...)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// provideSheetsClient creates the Sheets exporter. Without credentials the
// exporter reports that Sheets is not configured.
func provideSheetsClient(ctx context.Context, cfg config.Config, logger *logging.Logger) tools.SheetsClient {
	adapter := &sheetsClientAdapter{}
	if cfg.Sheets.CredentialsPath == "" {
		return adapter
	}

	client, err := sheetsclient.NewClient(ctx, sheetsclient.Config{CredentialsPath: cfg.Sheets.CredentialsPath})
	if err != nil {
		logger.Warn("failed to initialize Google Sheets client", "err", err)
		return adapter
	}

	adapter.client = client
	logger.Info("Google Sheets client initialized")
	return adapter
}

// provideCacheInspector exposes cache sizes when the cache lives in Neo4j
func provideCacheInspector(client *n4j.Client) tools.CacheInspector {
	if client == nil {
		return nil
	}
	return neo4jInspector{client: client}
}

type neo4jInspector struct {
	client *n4j.Client
}

func (i neo4jInspector) CacheSizes(ctx context.Context) (map[string]int64, error) {
	return storage.CacheSizes(ctx, i.client)
}

// newResources creates Resources struct
func newResources(
	catalogs endpoint.Catalogs,
	remote *batch.Registry,
	index *local.Index,
	sheets tools.SheetsClient,
	inspector tools.CacheInspector,
) *Resources {
	return &Resources{
		Catalogs:  catalogs,
		Remote:    remote,
		Local:     index,
		Sheets:    sheets,
		Inspector: inspector,
	}
}
