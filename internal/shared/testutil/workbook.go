package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"nabii/internal/config"
)

// DealHeader is a header row carrying every deal column
var DealHeader = []interface{}{
	config.ColumnDealName, config.ColumnInvestor, config.ColumnSegment,
	config.ColumnRawSector, config.ColumnMappedSector, config.ColumnTicket,
	config.ColumnTicketUSD, config.ColumnSDG, config.ColumnCountry,
	config.ColumnAnonymized, config.ColumnInstrumentType, config.ColumnYear,
	config.ColumnDetails,
}

// WriteWorkbook saves a workbook with one sheet per name in order, filled
// from sheets, and returns its path
func WriteWorkbook(t *testing.T, sheets map[string][][]interface{}, order ...string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			row := row
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "deals.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// WriteDealWorkbook saves a single Deals sheet with DealHeader and rows
func WriteDealWorkbook(t *testing.T, rows ...[]interface{}) string {
	t.Helper()
	return WriteWorkbook(t, map[string][][]interface{}{
		"Deals": append([][]interface{}{DealHeader}, rows...),
	}, "Deals")
}
