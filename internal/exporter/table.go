package exporter

import "github.com/apache/arrow/go/v18/arrow"

const comment = "comment"

// metadataBuilder is a convenience type to aid readability of code that
// specifies metadata for Arrow types.
type metadataBuilder struct {
	keys   []string
	values []string
}

func newMetadataBuilder() *metadataBuilder {
	return &metadataBuilder{}
}

func (b *metadataBuilder) add(key, value string) *metadataBuilder {
	b.keys = append(b.keys, key)
	b.values = append(b.values, value)
	return b
}

func (b *metadataBuilder) build() arrow.Metadata {
	return arrow.NewMetadata(b.keys, b.values)
}

func describe(text string) arrow.Metadata {
	return newMetadataBuilder().add(comment, text).build()
}

var dictionaryString = &arrow.DictionaryType{
	IndexType: arrow.PrimitiveTypes.Uint8,
	ValueType: arrow.BinaryTypes.String,
	Ordered:   false,
}

// DealsSchema is the Arrow schema of the enriched deal table. Field order
// matches DealColumns.
var DealsSchema = arrow.NewSchema([]arrow.Field{
	{Name: "row", Type: arrow.PrimitiveTypes.Int32,
		Metadata: describe("Spreadsheet row the deal was read from")},
	{Name: "deal_name", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "investor", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "segment", Type: dictionaryString, Nullable: true,
		Metadata: describe("Investor category")},
	{Name: "raw_sector", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "mapped_sector", Type: dictionaryString,
		Metadata: describe("Canonical sector after normalisation")},
	{Name: "ticket_size_raw", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "ticket_size_usd_millions", Type: arrow.PrimitiveTypes.Float64, Nullable: true,
		Metadata: describe("Ticket size in USD millions, null when unknown or undisclosed")},
	{Name: "has_disclosed_amount", Type: arrow.FixedWidthTypes.Boolean},
	{Name: "anonymized", Type: arrow.FixedWidthTypes.Boolean},
	{Name: "show_individual", Type: arrow.FixedWidthTypes.Boolean,
		Metadata: describe("Not anonymized and amount disclosed")},
	{Name: "sdg_tags", Type: arrow.ListOf(arrow.PrimitiveTypes.Int32),
		Metadata: describe("Sustainable Development Goals in order of appearance")},
	{Name: "country_of_origin", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "capital_source", Type: dictionaryString,
		Metadata: describe("Domestic, International or Unknown")},
	{Name: "instrument_type", Type: dictionaryString, Nullable: true},
	{Name: "year", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
	{Name: "details", Type: arrow.BinaryTypes.String, Nullable: true},
}, nil)
