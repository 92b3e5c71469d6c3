package mcp

import (
	"context"
	"fmt"

	"github.com/honeycarbs/idmapping/internal/mcp/tools"
	sheetsclient "github.com/honeycarbs/idmapping/pkg/sheets"
)

type sheetsWriter interface {
	Append(ctx context.Context, spreadsheetID, rng string, rows [][]string) (int, error)
	Overwrite(ctx context.Context, spreadsheetID, rng string, rows [][]string) (int, error)
	Clear(ctx context.Context, spreadsheetID, rng string) error
}

var _ sheetsWriter = (*sheetsclient.Client)(nil)

type sheetsClientAdapter struct {
	client sheetsWriter
}

func (a *sheetsClientAdapter) Export(ctx context.Context, export tools.SheetsExport) (int, error) {
	if a.client == nil {
		return 0, fmt.Errorf("sheets: client not configured (GOOGLE_SHEETS_CREDENTIALS_PATH not set)")
	}

	if len(export.Rows) == 0 {
		return 0, nil
	}

	if export.ClearTab {
		if err := a.client.Clear(ctx, export.Sheet.SpreadsheetID, buildClearRange(export.Sheet.Tab)); err != nil {
			return 0, fmt.Errorf("sheets: failed to clear sheet: %w", err)
		}
	}

	rng := buildRange(export.Sheet)
	if export.Overwrite {
		return a.client.Overwrite(ctx, export.Sheet.SpreadsheetID, rng, export.Rows)
	}
	return a.client.Append(ctx, export.Sheet.SpreadsheetID, rng, export.Rows)
}

func buildRange(sheet tools.SheetTarget) string {
	if sheet.Range != "" {
		return sheet.Range
	}
	return tabName(sheet.Tab) + "!A1"
}

func buildClearRange(tab string) string {
	return tabName(tab) + "!A1:Z"
}

func tabName(tab string) string {
	if tab == "" {
		return "Sheet1"
	}
	return tab
}
