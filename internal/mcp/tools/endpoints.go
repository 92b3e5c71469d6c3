package tools

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/idmapping/internal/domain/endpoint"
)

// ListEndpointsParams defines the arguments for the list_endpoints tool
type ListEndpointsParams struct {
	Filter string `json:"filter,omitempty" jsonschema:"Optional case-insensitive substring filter"`
}

// ListEndpointsResult enumerates the databases accepted on each side of a mapping
type ListEndpointsResult struct {
	Sources []string `json:"sources"`
	Targets []string `json:"targets"`
}

type listEndpointsTool struct {
	catalogs endpoint.Catalogs
}

// WithListEndpoints registers the list_endpoints tool
func WithListEndpoints() Option {
	return func(reg *registry) {
		handler := listEndpointsTool{catalogs: reg.catalogs}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "list_endpoints",
			Description: "List database names accepted as mapping sources and targets",
		}, handler.handle)
	}
}

func (t listEndpointsTool) handle(_ context.Context, _ *sdkmcp.CallToolRequest, params ListEndpointsParams) (*sdkmcp.CallToolResult, any, error) {
	result := ListEndpointsResult{
		Sources: names(t.catalogs.Sources, params.Filter),
		Targets: names(t.catalogs.Targets, params.Filter),
	}

	msg := fmt.Sprintf("sources (%d): %s\ntargets (%d): %s",
		len(result.Sources), strings.Join(result.Sources, ", "),
		len(result.Targets), strings.Join(result.Targets, ", "),
	)
	return textResult(msg), result, nil
}

func names(c *endpoint.Catalog, filter string) []string {
	filter = strings.ToLower(strings.TrimSpace(filter))

	out := []string{}
	if c == nil {
		return out
	}
	for _, e := range c.Endpoints() {
		if filter == "" || strings.Contains(strings.ToLower(e.Name()), filter) {
			out = append(out, e.Name())
		}
	}
	return out
}
