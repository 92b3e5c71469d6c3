package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/idmapping/internal/domain/endpoint"
	"github.com/honeycarbs/idmapping/pkg/logging"
)

// Option configures which tools are registered
type Option func(*registry)

type registry struct {
	server   *sdkmcp.Server
	catalogs endpoint.Catalogs
	logger   *logging.Logger
}

// Register applies the provided tool options. Endpoint names given to tools
// are resolved with catalogs.
func Register(server *sdkmcp.Server, catalogs endpoint.Catalogs, logger *logging.Logger, opts ...Option) {
	if logger == nil {
		logger = logging.NewNop()
	}

	reg := &registry{server: server, catalogs: catalogs, logger: logger}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(reg)
	}
}

// textResult returns a text-only ToolResult
func textResult(msg string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: msg},
		},
	}
}
