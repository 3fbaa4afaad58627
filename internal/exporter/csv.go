package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"

	"nabii/internal/errors"
	"nabii/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DealColumns is the header of the enriched deal table
var DealColumns = []string{
	"row",
	"deal_name",
	"investor",
	"segment",
	"raw_sector",
	"mapped_sector",
	"ticket_size_raw",
	"ticket_size_usd_millions",
	"has_disclosed_amount",
	"anonymized",
	"show_individual",
	"sdg_tags",
	"country_of_origin",
	"capital_source",
	"instrument_type",
	"year",
	"details",
}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV replaces filePath with the given headers and records
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	return replaceFile(filePath, func(f *os.File) error {
		if options.BOMPrefix {
			if _, err := f.Write(utf8BOM); err != nil {
				return fmt.Errorf("failed to write BOM: %w", err)
			}
		}

		writer := csv.NewWriter(f)
		if len(options.Headers) > 0 {
			if err := writer.Write(options.Headers); err != nil {
				return fmt.Errorf("failed to write headers: %w", err)
			}
		}
		for i, record := range options.Records {
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write record %d: %w", i, err)
			}
		}
		writer.Flush()
		return writer.Error()
	})
}

// WriteDeals exports the enriched deal table
func (w *CSVWriter) WriteDeals(ctx context.Context, filePath string, deals []domain.Deal) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	records := make([][]string, 0, len(deals))
	for _, d := range deals {
		records = append(records, dealRecord(d))
	}

	if err := w.WriteCSV(filePath, WriteOptions{
		Headers:   DealColumns,
		Records:   records,
		BOMPrefix: true,
	}); err != nil {
		return errors.NewStorageError("failed to write enriched deals CSV", err).WithContext("file", filePath)
	}

	w.logger.InfoContext(ctx, "Enriched deals exported",
		slog.String("file", filePath),
		slog.Int("record_count", len(records)))
	return nil
}

func dealRecord(d domain.Deal) []string {
	return []string{
		formatInt(int64(d.Row)),
		d.DealName,
		d.Investor,
		d.Segment,
		d.RawSector,
		d.MappedSector,
		d.TicketSizeRaw,
		formatOptionalFloat(d.TicketSizeUSDMillions),
		formatBool(d.HasDisclosedAmount),
		formatBool(d.Anonymized),
		formatBool(d.ShowIndividual()),
		formatInts(d.SDGTags),
		d.CountryOfOrigin,
		string(d.CapitalSource),
		d.InstrumentType,
		formatYear(d.Year),
		d.Details,
	}
}
