package operations

import (
	"context"
	"log/slog"
	"os"

	"nabii/internal/config"
	"nabii/internal/dataprocessing"
	apperrors "nabii/internal/errors"
	"nabii/internal/exporter"
	"nabii/internal/infrastructure"
)

// Pipeline is the one-shot batch transform: load, enrich, then run every
// selected Step over the enriched deals
type Pipeline struct {
	source    dataprocessing.RowSource
	enricher  *dataprocessing.Enricher
	manager   *Manager
	outputDir string
	logger    *slog.Logger
}

// Result is the outcome of a pipeline run
type Result struct {
	Stats  dataprocessing.Stats `json:"stats"`
	Report RunReport            `json:"report"`
}

// NewPipeline wires a pipeline from its parts
func NewPipeline(source dataprocessing.RowSource, enricher *dataprocessing.Enricher, manager *Manager, outputDir string, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:    source,
		enricher:  enricher,
		manager:   manager,
		outputDir: outputDir,
		logger:    logger.With(slog.String("component", "pipeline")),
	}
}

// NewPipelineFromConfig builds the production pipeline: the Excel dataset
// as source and the default steps writing into the output directory
func NewPipelineFromConfig(cfg *config.Config, providers *infrastructure.OTelProviders, logger *slog.Logger) (*Pipeline, error) {
	tracer, err := NewStepTracer(providers)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry()
	writer := exporter.NewDocumentWriter(cfg.Output.Dir, logger)
	if err := RegisterDefaultSteps(registry, writer, NewStepOptions(cfg), logger); err != nil {
		return nil, err
	}

	manager := NewManager(registry, NewConfig(cfg.Pipeline), logger, tracer)
	source := dataprocessing.NewExcelSource(cfg.Dataset.InputPath, cfg.Dataset.SheetName, logger)
	enricher := dataprocessing.NewEnricher(cfg.Dashboard.HomeCountry, logger)

	return NewPipeline(source, enricher, manager, cfg.Output.Dir, logger), nil
}

// Manager returns the Manager running the steps
func (p *Pipeline) Manager() *Manager {
	return p.manager
}

// Run executes the pipeline. A load failure aborts the run before any
// output is written. Step failures do not stop other steps; they are
// returned joined once every Step has finished, alongside the report.
func (p *Pipeline) Run(ctx context.Context, only []string) (*Result, error) {
	ctx, runID := infrastructure.NewRunContext(ctx)

	if _, err := p.manager.GetRegistry().Select(only); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrTypeValidation, "invalid step selection", err)
	}

	rows, err := p.source.Rows(ctx)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrTypeLoad) {
			return nil, err
		}
		return nil, apperrors.NewLoadError("failed to load dataset", err)
	}
	p.logger.InfoContext(ctx, "Dataset loaded", slog.Int("rows", len(rows)))

	deals := p.enricher.EnrichAll(ctx, rows)
	stats := dataprocessing.ComputeStats(deals)
	stats.Log(ctx, p.logger)

	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		// Each Step reports its own write failure
		p.logger.WarnContext(ctx, "Failed to create output directory",
			slog.String("dir", p.outputDir),
			slog.String("error", err.Error()))
	}

	state := NewRunState(runID, deals)
	err = p.manager.Execute(ctx, state, only)

	return &Result{Stats: stats, Report: state.Report()}, err
}
