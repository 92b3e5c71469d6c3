package mcp

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/idmapping/internal/domain/endpoint"
	"github.com/honeycarbs/idmapping/internal/domain/mapping/batch"
	"github.com/honeycarbs/idmapping/internal/domain/mapping/local"
	"github.com/honeycarbs/idmapping/internal/mcp/tools"
	"github.com/honeycarbs/idmapping/pkg/logging"
)

type ToolRegistry struct {
	logger *logging.Logger
}

// Resources are the services tools run against. Local and Inspector are nil
// when no dump is loaded or the cache backend cannot be inspected.
type Resources struct {
	Catalogs  endpoint.Catalogs
	Remote    *batch.Registry
	Local     *local.Index
	Sheets    tools.SheetsClient
	Inspector tools.CacheInspector
}

func NewToolRegistry(logger *logging.Logger) *ToolRegistry {
	return &ToolRegistry{logger: logger}
}

func (r *ToolRegistry) RegisterAll(server *sdkmcp.Server, res *Resources) {
	opts := []tools.Option{
		tools.WithMapIDs(res.Remote),
		tools.WithLocalMapIDs(res.Local),
		tools.WithListEndpoints(),
		tools.WithSheetsExport(res.Sheets, res.Remote, res.Local),
	}
	if res.Inspector != nil {
		opts = append(opts, tools.WithCacheStats(res.Inspector))
	}

	tools.Register(server, res.Catalogs, r.logger.Named("tools"), opts...)
}
