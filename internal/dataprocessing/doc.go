// Package dataprocessing turns the deal spreadsheet into enriched deal records.
//
// # Data Flow
//
//	Excel workbook → ExcelSource → []domain.RawDeal → Enricher → []domain.Deal → Stats
//
// ExcelSource locates the deal sheet and its header row, maps the known column
// names and fails with a LOAD error when a required column is missing. The
// Enricher is pure: it normalises the sector, parses the ticket size, extracts
// SDG tags and classifies the capital source without touching the source row.
//
// # Usage
//
//	src := dataprocessing.NewExcelSource("deals.xlsx", "", logger)
//	raws, err := src.Rows(ctx)
//	if err != nil {
//	    return err
//	}
//	deals := dataprocessing.NewEnricher("Zambia", logger).EnrichAll(ctx, raws)
//
// The free functions ParseTicketSize, ExtractSDGs, ClassifyCapitalSource and
// NormalizeSector hold the derivation rules and can be used on their own.
package dataprocessing
