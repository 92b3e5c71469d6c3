package tools

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// CacheInspector reports cached identifier counts per cache name
type CacheInspector interface {
	CacheSizes(ctx context.Context) (map[string]int64, error)
}

// CacheStatsParams defines the arguments for the cache_stats tool
type CacheStatsParams struct {
	Pair string `json:"pair,omitempty" jsonschema:"Optional cache name filter such as UniProtKB_AC-ID->GeneID"`
}

// CacheStatsResult lists cache sizes
type CacheStatsResult struct {
	Caches map[string]int64 `json:"caches"`
}

type cacheStatsTool struct {
	inspector CacheInspector
}

// WithCacheStats registers the cache_stats developer tool
func WithCacheStats(inspector CacheInspector) Option {
	return func(reg *registry) {
		handler := cacheStatsTool{inspector: inspector}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "cache_stats",
			Description: "Developer tool listing how many identifiers each per-pair mapping cache holds",
		}, handler.handle)
	}
}

func (h cacheStatsTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params CacheStatsParams) (*sdkmcp.CallToolResult, any, error) {
	if h.inspector == nil {
		return textResult("cache_stats unavailable: cache backend does not support inspection"), nil, fmt.Errorf("cache inspection not configured")
	}

	sizes, err := h.inspector.CacheSizes(ctx)
	if err != nil {
		return textResult(fmt.Sprintf("cache_stats error: %v", err)), nil, err
	}

	result := CacheStatsResult{Caches: make(map[string]int64, len(sizes))}
	for name, n := range sizes {
		if params.Pair == "" || strings.EqualFold(name, params.Pair) {
			result.Caches[name] = n
		}
	}

	if len(result.Caches) == 0 {
		return textResult("no cached mappings"), result, nil
	}

	var sb strings.Builder
	sb.WriteString("Caches:\n")
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	for _, name := range slices.Sorted(maps.Keys(result.Caches)) {
		fmt.Fprintf(&sb, "  %s: %d\n", name, result.Caches[name])
	}

	return textResult(sb.String()), result, nil
}
