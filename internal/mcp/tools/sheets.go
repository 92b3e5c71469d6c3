package tools

import (
	"context"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/idmapping/internal/domain/mapping"
	"github.com/honeycarbs/idmapping/internal/domain/mapping/local"
)

// SheetTarget identifies where rows are written
type SheetTarget struct {
	SpreadsheetID string `json:"spreadsheet_id" jsonschema:"Google Sheets document ID"`
	Tab           string `json:"tab,omitempty" jsonschema:"Tab name, defaults to Sheet1"`
	Range         string `json:"range,omitempty" jsonschema:"Optional A1 range override"`
}

// SheetsExportParams defines the arguments for the sheets_export tool
type SheetsExportParams struct {
	From      string      `json:"from" jsonschema:"Source database name"`
	To        string      `json:"to" jsonschema:"Target database name"`
	IDs       []string    `json:"ids" jsonschema:"Identifiers to map and export"`
	Local     bool        `json:"local,omitempty" jsonschema:"Use the local dump index instead of the remote service"`
	Overwrite bool        `json:"overwrite,omitempty" jsonschema:"Overwrite from the range start (true) or append (false)"`
	ClearTab  bool        `json:"clear_tab,omitempty" jsonschema:"If true, clears the tab before writing"`
	Header    bool        `json:"header,omitempty" jsonschema:"Write a from/to header row first"`
	Sheet     SheetTarget `json:"sheet" jsonschema:"Destination sheet information"`
}

// SheetsExport is one write request handed to the sheets client
type SheetsExport struct {
	Sheet     SheetTarget
	Rows      [][]string
	Overwrite bool
	ClearTab  bool
}

// SheetsExportResult describes the summary returned after export
type SheetsExportResult struct {
	SpreadsheetID string    `json:"spreadsheet_id" jsonschema:"Target spreadsheet ID"`
	Tab           string    `json:"tab,omitempty" jsonschema:"Target tab name"`
	WrittenRows   int       `json:"written_rows" jsonschema:"How many rows were written"`
	Unmapped      []string  `json:"unmapped,omitempty" jsonschema:"Identifiers without a mapping, not exported"`
	Mode          string    `json:"mode" jsonschema:"append or overwrite"`
	CompletedAt   time.Time `json:"completed_at" jsonschema:"Timestamp when export finished"`
	Message       string    `json:"message,omitempty" jsonschema:"Optional status message"`
}

// SheetsClient writes exported rows to a spreadsheet
type SheetsClient interface {
	Export(ctx context.Context, export SheetsExport) (int, error)
}

type sheetsExportTool struct {
	client SheetsClient
	remote mapIDsTool
	local  mapIDsTool
	now    func() time.Time
}

// WithSheetsExport registers the sheets_export tool. index may be nil, in which
// case only remote exports are possible.
func WithSheetsExport(client SheetsClient, remote mapping.Mapper, index *local.Index) Option {
	return func(reg *registry) {
		handler := sheetsExportTool{
			client: client,
			remote: mapIDsTool{name: "sheets_export", mapper: remote, catalogs: reg.catalogs, logger: reg.logger},
			local:  mapIDsTool{name: "sheets_export", catalogs: reg.catalogs, logger: reg.logger},
			now:    time.Now,
		}
		if index != nil {
			handler.local.mapper = index
		}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "sheets_export",
			Description: "Map identifiers and write one (from, to) row per target to Google Sheets",
		}, handler.handle)
	}
}

func (t sheetsExportTool) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params SheetsExportParams) (*sdkmcp.CallToolResult, any, error) {
	if t.client == nil {
		return textResult("sheets_export unavailable: Google Sheets client not configured"), nil, fmt.Errorf("sheets client not configured")
	}
	if params.Sheet.SpreadsheetID == "" {
		return nil, nil, fmt.Errorf("sheets_export: sheet.spreadsheet_id is required")
	}

	mapper := t.remote
	if params.Local {
		mapper = t.local
	}

	mapped, err := mapper.run(ctx, MapIDsParams{From: params.From, To: params.To, IDs: params.IDs})
	if err != nil {
		return nil, nil, err
	}

	rows := mappingRows(params.IDs, mapped.Mapping)
	if params.Header && len(rows) > 0 {
		rows = append([][]string{{mapped.From, mapped.To}}, rows...)
	}

	result := SheetsExportResult{
		SpreadsheetID: params.Sheet.SpreadsheetID,
		Tab:           params.Sheet.Tab,
		Unmapped:      mapped.Unmapped,
		Mode:          "append",
	}
	if params.Overwrite {
		result.Mode = "overwrite"
	}

	if len(rows) == 0 {
		result.CompletedAt = t.now().UTC()
		result.Message = "no mapped identifiers to export"
		return textResult(result.Message), result, nil
	}

	written, err := t.client.Export(ctx, SheetsExport{
		Sheet:     params.Sheet,
		Rows:      rows,
		Overwrite: params.Overwrite,
		ClearTab:  params.ClearTab,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("sheets_export: %w", err)
	}

	result.WrittenRows = written
	result.CompletedAt = t.now().UTC()
	result.Message = fmt.Sprintf("successfully exported %d row(s)", written)

	return textResult(result.Message), result, nil
}

// mappingRows flattens m into (id, target) rows following the order of ids
func mappingRows(ids []string, m map[string][]string) [][]string {
	var rows [][]string
	for _, id := range cleanIDs(ids) {
		for _, target := range m[id] {
			rows = append(rows, []string{id, target})
		}
	}
	return rows
}
