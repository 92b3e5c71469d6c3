package tools

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/idmapping/internal/domain"
	"github.com/honeycarbs/idmapping/internal/domain/endpoint"
	"github.com/honeycarbs/idmapping/internal/domain/mapping"
	"github.com/honeycarbs/idmapping/internal/domain/mapping/local"
	"github.com/honeycarbs/idmapping/pkg/idlist"
	"github.com/honeycarbs/idmapping/pkg/logging"
)

// MapIDsParams defines the arguments for the map_ids and map_ids_local tools
type MapIDsParams struct {
	From string   `json:"from" jsonschema:"Source database name, e.g. UniProtKB_AC-ID, FlyBase, Ensembl"`
	To   string   `json:"to" jsonschema:"Target database name, e.g. GeneID, UniProtKB"`
	IDs  []string `json:"ids" jsonschema:"Identifiers to map"`
}

// MapIDsResult is the structured output of a mapping call
type MapIDsResult struct {
	From     string              `json:"from"`
	To       string              `json:"to"`
	Mapping  map[string][]string `json:"mapping" jsonschema:"Mapped identifiers and their targets"`
	Unmapped []string            `json:"unmapped,omitempty" jsonschema:"Requested identifiers without a mapping"`
}

type mapIDsTool struct {
	name     string
	mapper   mapping.Mapper
	catalogs endpoint.Catalogs
	logger   *logging.Logger
}

// WithMapIDs registers the map_ids tool backed by the remote mapping service
func WithMapIDs(mapper mapping.Mapper) Option {
	return func(reg *registry) {
		handler := mapIDsTool{name: "map_ids", mapper: mapper, catalogs: reg.catalogs, logger: reg.logger}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        handler.name,
			Description: "Map identifiers between databases with the UniProt ID mapping service. Results are cached per database pair.",
		}, handler.handle)
	}
}

// WithLocalMapIDs registers the map_ids_local tool backed by an in-memory dump
// index. Nothing is registered when index is nil.
func WithLocalMapIDs(index *local.Index) Option {
	return func(reg *registry) {
		if index == nil {
			reg.logger.Info("map_ids_local disabled: no dump loaded")
			return
		}
		handler := mapIDsTool{name: "map_ids_local", mapper: index, catalogs: reg.catalogs, logger: reg.logger}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        handler.name,
			Description: "Map identifiers between databases with the locally loaded idmapping.dat index",
		}, handler.handle)
	}
}

func (t mapIDsTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params MapIDsParams) (*sdkmcp.CallToolResult, any, error) {
	result, err := t.run(ctx, params)
	if err != nil {
		t.logger.Error(t.name+" failed", "from", params.From, "to", params.To, "err", err)
		return nil, nil, err
	}

	return textResult(formatMapping(result)), result, nil
}

func (t mapIDsTool) run(ctx context.Context, params MapIDsParams) (MapIDsResult, error) {
	if t.mapper == nil {
		return MapIDsResult{}, fmt.Errorf("%s: mapper not configured", t.name)
	}

	from, to, err := t.catalogs.Pair(params.From, params.To)
	if err != nil {
		return MapIDsResult{}, err
	}

	ids := cleanIDs(params.IDs)
	if len(ids) == 0 {
		return MapIDsResult{}, fmt.Errorf("%s: no identifiers provided", t.name)
	}

	t.logger.Info(t.name+" request", "from", from.Name(), "to", to.Name(), "ids", len(ids))

	mapped, err := t.mapper.MapIDs(ctx, from, to, ids)
	if err != nil {
		return MapIDsResult{}, fmt.Errorf("%s: %w", t.name, err)
	}

	return newMapIDsResult(from, to, ids, mapped), nil
}

func newMapIDsResult(from, to endpoint.Endpoint, ids []string, mapped domain.Mapping) MapIDsResult {
	result := MapIDsResult{
		From:    from.Name(),
		To:      to.Name(),
		Mapping: map[string][]string(mapped),
	}
	if result.Mapping == nil {
		result.Mapping = map[string][]string{}
	}
	for _, id := range ids {
		if _, ok := mapped[id]; !ok {
			result.Unmapped = append(result.Unmapped, id)
		}
	}
	return result
}

// cleanIDs trims ids, drops blanks and repeats
func cleanIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return idlist.Dedupe(out)
}

func formatMapping(r MapIDsResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s -> %s: %d mapped, %d unmapped\n", r.From, r.To, len(r.Mapping), len(r.Unmapped))
	for _, id := range slices.Sorted(maps.Keys(r.Mapping)) {
		fmt.Fprintf(&sb, "%s\t%s\n", id, strings.Join(r.Mapping[id], ","))
	}
	if len(r.Unmapped) > 0 {
		fmt.Fprintf(&sb, "unmapped: %s\n", strings.Join(r.Unmapped, ","))
	}
	return sb.String()
}
