package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/idmapping/internal/domain"
	"github.com/honeycarbs/idmapping/internal/domain/endpoint"
	"github.com/honeycarbs/idmapping/internal/domain/mapping/local"
	"github.com/honeycarbs/idmapping/pkg/logging"
)

type stubMapper struct {
	table map[string][]string
	err   error
	calls [][]string
}

func (m *stubMapper) MapIDs(_ context.Context, _, _ endpoint.Endpoint, ids []string) (domain.Mapping, error) {
	m.calls = append(m.calls, ids)
	if m.err != nil {
		return nil, m.err
	}
	out := domain.Mapping{}
	for _, id := range ids {
		if targets, ok := m.table[id]; ok {
			out[id] = targets
		}
	}
	return out, nil
}

type stubSheets struct {
	exports []SheetsExport
	err     error
}

func (s *stubSheets) Export(_ context.Context, export SheetsExport) (int, error) {
	s.exports = append(s.exports, export)
	return len(export.Rows), s.err
}

type stubInspector map[string]int64

func (s stubInspector) CacheSizes(context.Context) (map[string]int64, error) {
	return s, nil
}

func newMapTool(m *stubMapper) mapIDsTool {
	return mapIDsTool{name: "map_ids", mapper: m, catalogs: endpoint.Default(), logger: logging.NewNop()}
}

func TestMapIDsTool(t *testing.T) {
	m := &stubMapper{table: map[string][]string{"P32234": {"36288"}}}
	tool := newMapTool(m)

	res, out, err := tool.handle(context.Background(), nil, MapIDsParams{
		From: "uniprotkb ac-id",
		To:   "geneid",
		IDs:  []string{" P32234 ", "Q00000", "", "P32234"},
	})
	require.NoError(t, err)

	result := out.(MapIDsResult)
	assert.Equal(t, "UniProtKB_AC-ID", result.From)
	assert.Equal(t, "GeneID", result.To)
	assert.Equal(t, map[string][]string{"P32234": {"36288"}}, result.Mapping)
	assert.Equal(t, []string{"Q00000"}, result.Unmapped)
	assert.Equal(t, [][]string{{"P32234", "Q00000"}}, m.calls)

	text := res.Content[0].(*sdkmcp.TextContent).Text
	assert.Contains(t, text, "1 mapped, 1 unmapped")
	assert.Contains(t, text, "P32234\t36288")
}

func TestMapIDsToolErrors(t *testing.T) {
	tool := newMapTool(&stubMapper{})

	_, _, err := tool.handle(context.Background(), nil, MapIDsParams{From: "Nope", To: "GeneID", IDs: []string{"P1"}})
	assert.ErrorIs(t, err, endpoint.ErrUnknown)

	_, _, err = tool.handle(context.Background(), nil, MapIDsParams{From: "UniProtKB_AC-ID", To: "GeneID"})
	assert.Error(t, err)

	failing := newMapTool(&stubMapper{err: errors.New("remote down")})
	_, _, err = failing.handle(context.Background(), nil, MapIDsParams{From: "UniProtKB_AC-ID", To: "GeneID", IDs: []string{"P1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote down")

	unconfigured := mapIDsTool{name: "map_ids_local", catalogs: endpoint.Default(), logger: logging.NewNop()}
	_, _, err = unconfigured.handle(context.Background(), nil, MapIDsParams{From: "FlyBase", To: "UniProtKB", IDs: []string{"F1"}})
	assert.Error(t, err)
}

func TestListEndpointsTool(t *testing.T) {
	tool := listEndpointsTool{catalogs: endpoint.Default()}

	_, out, err := tool.handle(context.Background(), nil, ListEndpointsParams{Filter: "uniprot"})
	require.NoError(t, err)

	result := out.(ListEndpointsResult)
	assert.Contains(t, result.Sources, "UniProtKB_AC-ID")
	assert.NotContains(t, result.Sources, "UniProtKB")
	assert.Contains(t, result.Targets, "UniProtKB")
	assert.NotContains(t, result.Targets, "FlyBase")
}

func TestSheetsExportTool(t *testing.T) {
	sheets := &stubSheets{}
	m := &stubMapper{table: map[string][]string{"P1": {"g1", "g2"}, "P2": {"g3"}}}
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tool := sheetsExportTool{
		client: sheets,
		remote: newMapTool(m),
		local:  mapIDsTool{name: "sheets_export", catalogs: endpoint.Default(), logger: logging.NewNop()},
		now:    func() time.Time { return fixed },
	}

	_, out, err := tool.handle(context.Background(), nil, SheetsExportParams{
		From:      "UniProtKB_AC-ID",
		To:        "GeneID",
		IDs:       []string{"P2", "P1", "P9"},
		Header:    true,
		Overwrite: true,
		Sheet:     SheetTarget{SpreadsheetID: "sheet-1", Tab: "Mappings"},
	})
	require.NoError(t, err)

	result := out.(SheetsExportResult)
	assert.Equal(t, 4, result.WrittenRows)
	assert.Equal(t, "overwrite", result.Mode)
	assert.Equal(t, []string{"P9"}, result.Unmapped)
	assert.Equal(t, fixed, result.CompletedAt)

	require.Len(t, sheets.exports, 1)
	assert.Equal(t, [][]string{
		{"UniProtKB_AC-ID", "GeneID"},
		{"P2", "g3"},
		{"P1", "g1"},
		{"P1", "g2"},
	}, sheets.exports[0].Rows)
	assert.True(t, sheets.exports[0].Overwrite)

	_, _, err = tool.handle(context.Background(), nil, SheetsExportParams{
		From: "FlyBase", To: "UniProtKB", IDs: []string{"F1"}, Local: true,
		Sheet: SheetTarget{SpreadsheetID: "sheet-1"},
	})
	assert.Error(t, err, "local export without an index")

	_, _, err = tool.handle(context.Background(), nil, SheetsExportParams{From: "UniProtKB_AC-ID", To: "GeneID", IDs: []string{"P1"}})
	assert.Error(t, err, "spreadsheet id is required")

	_, _, err = sheetsExportTool{}.handle(context.Background(), nil, SheetsExportParams{})
	assert.Error(t, err)
}

func TestCacheStatsTool(t *testing.T) {
	tool := cacheStatsTool{inspector: stubInspector{"UniProtKB_AC-ID->GeneID": 12, "FlyBase->UniProtKB": 3}}

	res, out, err := tool.handle(context.Background(), nil, CacheStatsParams{Pair: "flybase->uniprotkb"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"FlyBase->UniProtKB": 3}, out.(CacheStatsResult).Caches)
	assert.Contains(t, res.Content[0].(*sdkmcp.TextContent).Text, "FlyBase->UniProtKB: 3")

	_, _, err = cacheStatsTool{}.handle(context.Background(), nil, CacheStatsParams{})
	assert.Error(t, err)
}

func TestToolsOverMCP(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dump := "P32234\tGeneID\t36288\nP32234\tFlyBase\tFBgn0010339\n"
	index, _, err := local.Build(ctx, strings.NewReader(dump))
	require.NoError(t, err)

	server := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "idmapping-test", Version: "0.0.0"}, nil)
	Register(server, endpoint.Default(), logging.NewNop(),
		WithMapIDs(&stubMapper{table: map[string][]string{"P32234": {"36288"}}}),
		WithLocalMapIDs(index),
		WithListEndpoints(),
	)

	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer func() { _ = serverSession.Close() }()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "client", Version: "0.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer func() { _ = session.Close() }()

	listed, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var toolNames []string
	for _, tool := range listed.Tools {
		toolNames = append(toolNames, tool.Name)
	}
	assert.ElementsMatch(t, []string{"map_ids", "map_ids_local", "list_endpoints"}, toolNames)

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "map_ids_local",
		Arguments: map[string]any{"from": "FlyBase", "to": "UniProtKB", "ids": []string{"FBgn0010339"}},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].(*sdkmcp.TextContent).Text, "FBgn0010339\tP32234")

	res, err = session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "map_ids",
		Arguments: map[string]any{"from": "Bogus", "to": "GeneID", "ids": []string{"P32234"}},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
