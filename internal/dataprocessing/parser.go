package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"nabii/internal/config"
	"nabii/internal/errors"
	"nabii/internal/files"
	"nabii/pkg/contracts/domain"
)

// headerScanRows bounds the search for the header row
const headerScanRows = 10

// ExcelSource reads deals from the first worksheet whose header carries the
// deal columns, or from SheetName when set.
type ExcelSource struct {
	Path      string
	SheetName string
	logger    *slog.Logger
}

// NewExcelSource creates a source for the workbook at path
func NewExcelSource(path, sheetName string, logger *slog.Logger) *ExcelSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelSource{
		Path:      path,
		SheetName: sheetName,
		logger:    logger.With(slog.String("component", "excel_source")),
	}
}

// Rows implements RowSource
func (s *ExcelSource) Rows(ctx context.Context) ([]domain.RawDeal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := files.ResolveWorkbook(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewLoadError("dataset not found", err).WithContext("path", s.Path)
		}
		return nil, errors.NewLoadError("failed to locate dataset", err).WithContext("path", s.Path)
	}
	if path != s.Path {
		s.logger.InfoContext(ctx, "Using latest workbook in directory",
			slog.String("dir", s.Path),
			slog.String("workbook", path))
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewLoadError("failed to open dataset", err).WithContext("path", path)
	}
	defer f.Close()

	sheetName, rows, err := s.findDealSheet(f)
	if err != nil {
		return nil, errors.NewLoadError("failed to read dataset", err).WithContext("path", path)
	}

	headerRow := findHeaderRow(rows)
	columnMap := mapColumns(rows, headerRow)

	var missing []string
	for _, col := range config.RequiredColumns {
		if _, ok := columnMap[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewLoadError("dataset is missing required columns",
			fmt.Errorf("%w: %s", errors.ErrMissingColumn, strings.Join(missing, ", "))).
			WithContext("path", path).
			WithContext("sheet", sheetName)
	}

	s.logger.InfoContext(ctx, "Found deal sheet",
		slog.String("sheet_name", sheetName),
		slog.Int("header_row", headerRow+1),
		slog.Int("total_rows", len(rows)))

	deals := make([]domain.RawDeal, 0, len(rows))
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}

		// country cells are kept verbatim, the rest are trimmed
		getCell := func(col string) string {
			if idx, exists := columnMap[col]; exists && idx < len(row) {
				return row[idx]
			}
			return ""
		}
		getString := func(col string) string {
			return strings.TrimSpace(getCell(col))
		}

		raw := domain.RawDeal{
			Row:            i + 1,
			DealName:       getString(config.ColumnDealName),
			Investor:       getString(config.ColumnInvestor),
			Segment:        getString(config.ColumnSegment),
			RawSector:      getString(config.ColumnRawSector),
			MappedSector:   getString(config.ColumnMappedSector),
			TicketRaw:      getString(config.ColumnTicket),
			TicketUSD:      getString(config.ColumnTicketUSD),
			SDGText:        getString(config.ColumnSDG),
			Country:        getCell(config.ColumnCountry),
			Anonymized:     parseFlag(getString(config.ColumnAnonymized)),
			InstrumentType: getString(config.ColumnInstrumentType),
			Year:           parseYear(getString(config.ColumnYear)),
			Details:        getString(config.ColumnDetails),
		}
		if raw.Year == 0 && getString(config.ColumnYear) != "" {
			s.logger.DebugContext(ctx, "Unreadable deal year",
				slog.Int("row", raw.Row),
				slog.String("value", getString(config.ColumnYear)))
		}
		deals = append(deals, raw)
	}

	return deals, nil
}

// findDealSheet returns the configured sheet, else the first sheet whose header
// names the deal columns, else the first sheet.
func (s *ExcelSource) findDealSheet(f *excelize.File) (string, [][]string, error) {
	if s.SheetName != "" {
		rows, err := f.GetRows(s.SheetName, excelize.Options{RawCellValue: true})
		if err != nil {
			return "", nil, fmt.Errorf("%w: %s: %w", errors.ErrNoDealSheet, s.SheetName, err)
		}
		return s.SheetName, rows, nil
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, errors.ErrNoDealSheet
	}

	for _, name := range sheets {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			continue
		}
		if _, ok := mapColumns(rows, findHeaderRow(rows))[config.ColumnDealName]; ok {
			return name, rows, nil
		}
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: %w", errors.ErrNoDealSheet, sheets[0], err)
	}
	return sheets[0], rows, nil
}

// findHeaderRow returns the index of the first row naming the deal name column,
// or 0 when no such row appears near the top.
func findHeaderRow(rows [][]string) int {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		for _, cell := range rows[i] {
			if strings.TrimSpace(cell) == config.ColumnDealName {
				return i
			}
		}
	}
	return 0
}

func mapColumns(rows [][]string, headerRow int) map[string]int {
	columnMap := make(map[string]int)
	if headerRow >= len(rows) {
		return columnMap
	}
	for j, header := range rows[headerRow] {
		name := strings.TrimSpace(header)
		if name == "" {
			continue
		}
		if _, dup := columnMap[name]; !dup {
			columnMap[name] = j
		}
	}
	return columnMap
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
