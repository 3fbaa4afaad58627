package operations

import (
	"context"
	"log/slog"
	"path/filepath"

	"nabii/internal/aggregate"
	"nabii/internal/config"
	apperrors "nabii/internal/errors"
	"nabii/internal/exporter"
	"nabii/pkg/contracts/domain"
)

// Step IDs of the enriched dataset exports
const (
	StepEnrichedCSV     = "enriched_csv"
	StepEnrichedParquet = "enriched_parquet"
)

// StepOptions shapes the documents built by the default steps
type StepOptions struct {
	TopDeals        int
	RootLabel       string
	EnrichedCSV     bool
	EnrichedParquet bool
}

// NewStepOptions builds StepOptions from the application configuration
func NewStepOptions(cfg *config.Config) StepOptions {
	return StepOptions{
		TopDeals:        cfg.Dashboard.TopDeals,
		RootLabel:       cfg.Dashboard.RootLabel,
		EnrichedCSV:     cfg.Output.EnrichedCSV,
		EnrichedParquet: cfg.Output.EnrichedParquet,
	}
}

// BuildFunc turns the enriched deals into one dashboard document
type BuildFunc func(deals []domain.Deal) (interface{}, error)

// DocumentStep builds one dashboard document and writes it to its file
type DocumentStep struct {
	BaseStep
	document domain.Document
	build    BuildFunc
	writer   *exporter.DocumentWriter
}

// NewDocumentStep creates the Step that emits document
func NewDocumentStep(document domain.Document, name string, build BuildFunc, writer *exporter.DocumentWriter) *DocumentStep {
	return &DocumentStep{
		BaseStep: NewBaseStep(string(document), name),
		document: document,
		build:    build,
		writer:   writer,
	}
}

// Document returns the document the Step emits
func (s *DocumentStep) Document() domain.Document {
	return s.document
}

// Execute implements Step
func (s *DocumentStep) Execute(ctx context.Context, state *RunState) error {
	doc, err := s.build(state.Deals)
	if err != nil {
		return apperrors.NewAggregationError("failed to build "+string(s.document)+" document", err)
	}

	n, err := s.writer.Write(ctx, s.document.FileName(), doc)
	if err != nil {
		return err
	}

	if stepState := state.GetStep(s.ID()); stepState != nil {
		stepState.SetMetadata(MetadataFile, filepath.Join(s.writer.Dir(), s.document.FileName()))
		stepState.SetMetadata(MetadataBytes, n)
	}
	return nil
}

// DealsWriter writes the enriched deals to a file
type DealsWriter interface {
	WriteDeals(ctx context.Context, path string, deals []domain.Deal) error
}

// ExportStep writes the enriched dataset through a DealsWriter
type ExportStep struct {
	BaseStep
	path   string
	writer DealsWriter
}

// NewExportStep creates an ExportStep writing to path
func NewExportStep(id, name, path string, writer DealsWriter) *ExportStep {
	return &ExportStep{
		BaseStep: NewBaseStep(id, name),
		path:     path,
		writer:   writer,
	}
}

// Execute implements Step
func (s *ExportStep) Execute(ctx context.Context, state *RunState) error {
	if err := s.writer.WriteDeals(ctx, s.path, state.Deals); err != nil {
		return err
	}
	if stepState := state.GetStep(s.ID()); stepState != nil {
		stepState.SetMetadata(MetadataFile, s.path)
	}
	return nil
}

// DocumentSteps returns the eight dashboard steps in emission order
func DocumentSteps(writer *exporter.DocumentWriter, opts StepOptions) []Step {
	return []Step{
		NewDocumentStep(domain.DocumentSankey, "Capital Flow Sankey", func(deals []domain.Deal) (interface{}, error) {
			data := aggregate.CapitalFlow(deals)
			if err := aggregate.ValidateSankey(data); err != nil {
				return nil, err
			}
			return data, nil
		}, writer),
		NewDocumentStep(domain.DocumentTreemap, "Market Size Treemap", func(deals []domain.Deal) (interface{}, error) {
			return aggregate.MarketSizeHierarchy(deals, opts.RootLabel), nil
		}, writer),
		NewDocumentStep(domain.DocumentSectoral, "Sectoral Breakdown", func(deals []domain.Deal) (interface{}, error) {
			return aggregate.SectoralBreakdown(deals), nil
		}, writer),
		NewDocumentStep(domain.DocumentSDG, "SDG Alignment", func(deals []domain.Deal) (interface{}, error) {
			return aggregate.SDGAlignment(deals), nil
		}, writer),
		NewDocumentStep(domain.DocumentCapitalSource, "Capital Source Comparison", func(deals []domain.Deal) (interface{}, error) {
			return aggregate.CapitalSourceComparison(deals), nil
		}, writer),
		NewDocumentStep(domain.DocumentInstrumentTimeline, "Instrument Timeline", func(deals []domain.Deal) (interface{}, error) {
			return aggregate.InstrumentTimeline(deals), nil
		}, writer),
		NewDocumentStep(domain.DocumentTopDeals, "Top Deals", func(deals []domain.Deal) (interface{}, error) {
			return aggregate.TopDeals(deals, opts.TopDeals), nil
		}, writer),
		NewDocumentStep(domain.DocumentCountry, "Country Totals", func(deals []domain.Deal) (interface{}, error) {
			return aggregate.CountryTotals(deals), nil
		}, writer),
	}
}

// RegisterDefaultSteps registers the dashboard documents followed by the
// enabled enriched dataset exports, all writing into writer's directory
func RegisterDefaultSteps(registry *Registry, writer *exporter.DocumentWriter, opts StepOptions, logger *slog.Logger) error {
	steps := DocumentSteps(writer, opts)

	if opts.EnrichedCSV {
		steps = append(steps, NewExportStep(StepEnrichedCSV, "Enriched Dataset (CSV)",
			filepath.Join(writer.Dir(), config.EnrichedCSVFile), exporter.NewCSVWriter(logger)))
	}
	if opts.EnrichedParquet {
		steps = append(steps, NewExportStep(StepEnrichedParquet, "Enriched Dataset (Parquet)",
			filepath.Join(writer.Dir(), config.EnrichedParquetFile), exporter.NewParquetWriter(logger)))
	}

	for _, step := range steps {
		if err := registry.Register(step); err != nil {
			return err
		}
	}
	return nil
}
