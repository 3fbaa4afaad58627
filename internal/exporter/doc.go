// Package exporter writes pipeline output to the output directory.
//
// DocumentWriter serialises a dashboard document as indented JSON. CSVWriter
// writes CSV files with a UTF-8 BOM for Excel compatibility, and ParquetWriter
// writes the enriched deal table with Apache Arrow.
//
// Every writer replaces its target atomically: the content goes to a temporary
// file in the same directory which is renamed over the target once complete,
// so a failed write never leaves a truncated document behind.
//
// Example usage:
//
//	writer := exporter.NewDocumentWriter("data", logger)
//	n, err := writer.Write(ctx, "sdg_data.json", totals)
//
//	csvWriter := exporter.NewCSVWriter(logger)
//	err = csvWriter.WriteDeals(ctx, "data/enriched_deals.csv", deals)
package exporter
