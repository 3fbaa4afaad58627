package exporter

import (
	"compress/gzip"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/compress"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"

	"nabii/internal/errors"
	"nabii/pkg/contracts/domain"
)

// ParquetWriter exports the enriched deal table as Parquet
type ParquetWriter struct {
	allocator memory.Allocator
	logger    *slog.Logger
}

// NewParquetWriter creates a writer using the Go allocator
func NewParquetWriter(logger *slog.Logger) *ParquetWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParquetWriter{
		allocator: memory.NewGoAllocator(),
		logger:    logger.With(slog.String("component", "parquet_writer")),
	}
}

// WriteDeals writes deals to filePath using DealsSchema
func (w *ParquetWriter) WriteDeals(ctx context.Context, filePath string, deals []domain.Deal) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	recordBuilder := array.NewRecordBuilder(w.allocator, DealsSchema)
	defer recordBuilder.Release()

	if err := appendDeals(recordBuilder, deals); err != nil {
		return errors.NewStorageError("failed to build deal table", err)
	}

	record := recordBuilder.NewRecord()
	defer record.Release()

	err := replaceFile(filePath, func(f *os.File) error {
		// The parquet writer closes f
		writer, err := pqarrow.NewFileWriter(
			DealsSchema,
			f,
			parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Gzip),
				parquet.WithCompressionLevel(gzip.BestCompression)),
			pqarrow.DefaultWriterProps(),
		)
		if err != nil {
			return fmt.Errorf("creating parquet writer: %w", err)
		}
		if err := writer.Write(record); err != nil {
			writer.Close()
			return fmt.Errorf("writing record: %w", err)
		}
		return writer.Close()
	})
	if err != nil {
		return errors.NewStorageError("failed to write enriched deals parquet", err).WithContext("file", filePath)
	}

	w.logger.InfoContext(ctx, "Enriched deals exported",
		slog.String("file", filePath),
		slog.Int64("record_count", record.NumRows()))
	return nil
}

func appendDeals(b *array.RecordBuilder, deals []domain.Deal) error {
	fields := b.Fields()
	rowField := fields[0].(*array.Int32Builder)
	dealNameField := fields[1].(*array.StringBuilder)
	investorField := fields[2].(*array.StringBuilder)
	segmentField := fields[3].(*array.BinaryDictionaryBuilder)
	rawSectorField := fields[4].(*array.StringBuilder)
	mappedSectorField := fields[5].(*array.BinaryDictionaryBuilder)
	ticketRawField := fields[6].(*array.StringBuilder)
	ticketField := fields[7].(*array.Float64Builder)
	disclosedField := fields[8].(*array.BooleanBuilder)
	anonymizedField := fields[9].(*array.BooleanBuilder)
	showField := fields[10].(*array.BooleanBuilder)
	sdgField := fields[11].(*array.ListBuilder)
	sdgValues := sdgField.ValueBuilder().(*array.Int32Builder)
	countryField := fields[12].(*array.StringBuilder)
	sourceField := fields[13].(*array.BinaryDictionaryBuilder)
	instrumentField := fields[14].(*array.BinaryDictionaryBuilder)
	yearField := fields[15].(*array.Int32Builder)
	detailsField := fields[16].(*array.StringBuilder)

	appendString := func(sb *array.StringBuilder, v string) {
		if v == "" {
			sb.AppendNull()
		} else {
			sb.Append(v)
		}
	}
	appendDictionary := func(db *array.BinaryDictionaryBuilder, v string) error {
		if v == "" {
			db.AppendNull()
			return nil
		}
		return db.AppendString(v)
	}

	for _, d := range deals {
		rowField.Append(int32(d.Row))
		appendString(dealNameField, d.DealName)
		appendString(investorField, d.Investor)
		if err := appendDictionary(segmentField, d.Segment); err != nil {
			return err
		}
		appendString(rawSectorField, d.RawSector)
		if err := mappedSectorField.AppendString(d.MappedSector); err != nil {
			return err
		}
		appendString(ticketRawField, d.TicketSizeRaw)
		if d.TicketSizeUSDMillions == nil {
			ticketField.AppendNull()
		} else {
			ticketField.Append(*d.TicketSizeUSDMillions)
		}
		disclosedField.Append(d.HasDisclosedAmount)
		anonymizedField.Append(d.Anonymized)
		showField.Append(d.ShowIndividual())

		sdgField.Append(true)
		for _, sdg := range d.SDGTags {
			sdgValues.Append(int32(sdg))
		}

		appendString(countryField, d.CountryOfOrigin)
		if err := sourceField.AppendString(string(d.CapitalSource)); err != nil {
			return err
		}
		if err := appendDictionary(instrumentField, d.InstrumentType); err != nil {
			return err
		}
		if d.HasYear() {
			yearField.Append(int32(d.Year))
		} else {
			yearField.AppendNull()
		}
		appendString(detailsField, d.Details)
	}
	return nil
}
