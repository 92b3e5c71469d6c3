package mcp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/idmapping/internal/config"
	"github.com/honeycarbs/idmapping/internal/domain/endpoint"
	"github.com/honeycarbs/idmapping/internal/storage/file"
	"github.com/honeycarbs/idmapping/pkg/logging"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()

	var cfg config.Config
	cfg.Host = "127.0.0.1"
	cfg.Port = "0"
	cfg.UniProt.BaseURL = "http://127.0.0.1:1"
	cfg.UniProt.PollInterval = time.Second
	cfg.UniProt.BatchSize = 100
	cfg.Cache.Backend = config.CacheMemory
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestInitializeResourcesMemoryBackend(t *testing.T) {
	res, cleanup, err := InitializeResources(context.Background(), testConfig(t), logging.NewNop())
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, res.Remote)
	assert.Nil(t, res.Local)
	assert.Nil(t, res.Inspector)
	assert.NotNil(t, res.Sheets)
}

func TestInitializeResourcesLoadsDump(t *testing.T) {
	dir := t.TempDir()
	dump := filepath.Join(dir, "subset.dat")
	require.NoError(t, os.WriteFile(dump, []byte("P32234\tGeneID\t36288\n"), 0o644))

	cfg := testConfig(t)
	cfg.Dump.Path = dump

	res, cleanup, err := InitializeResources(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer cleanup()

	require.NotNil(t, res.Local)
	assert.Equal(t, 2, res.Local.Len())
}

func TestInitializeResourcesMissingDump(t *testing.T) {
	cfg := testConfig(t)
	cfg.Dump.Path = filepath.Join(t.TempDir(), "missing.dat")

	_, _, err := InitializeResources(context.Background(), cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestFileCacheFactoryUsesOneFilePerPair(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Backend = config.CacheFile
	cfg.Cache.Dir = t.TempDir()

	factory, err := provideCacheFactory(cfg, nil, logging.NewNop())
	require.NoError(t, err)

	from, to, err := endpoint.Default().Pair("UniProtKB_AC-ID", "GeneID")
	require.NoError(t, err)

	cache, err := factory(context.Background(), from, to)
	require.NoError(t, err)
	require.NoError(t, cache.Put(context.Background(), "P32234", []string{"36288"}))

	path := filepath.Join(cfg.Cache.Dir, "UniProtKB_AC-ID__GeneID.cache")
	assert.Equal(t, path, cache.(*file.Cache).Path())
	assert.FileExists(t, path)

	cfg.Cache.Backend = config.CacheNeo4j
	_, err = provideCacheFactory(cfg, nil, logging.NewNop())
	assert.Error(t, err)
}

func TestNeo4jConfigFromSettings(t *testing.T) {
	cfg := testConfig(t)
	cfg.Neo4j.URI = "neo4j://db:7687"
	cfg.Neo4j.Username = "neo4j"
	cfg.Neo4j.Password = "secret"
	cfg.Neo4j.Database = "idmapping"
	cfg.Neo4j.VerifyTimeout = 30 * time.Second

	got := neo4jConfig(cfg)
	assert.Equal(t, "neo4j://db:7687", got.URI)
	assert.Equal(t, "idmapping", got.Database)
	assert.Equal(t, 30*time.Second, got.VerifyTimeout)
}

func TestHealthz(t *testing.T) {
	res, cleanup, err := InitializeResources(context.Background(), testConfig(t), logging.NewNop())
	require.NoError(t, err)

	srv := newServer(logging.NewNop(), testConfig(t), res, cleanup)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	require.NoError(t, srv.Shutdown(context.Background()))
}
