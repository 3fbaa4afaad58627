// Package operations runs the dashboard pipeline as a set of independent steps.
//
// Every dashboard document, and each enriched dataset export, is a Step. The
// Manager runs the selected steps over one RunState, in parallel through an
// errgroup or one after another, and isolates them: a Step that fails, or
// panics, is recorded as failed while the others carry on. Output failures
// (STORAGE errors) are retried; aggregation failures are not.
//
//	registry := operations.NewRegistry()
//	_ = operations.RegisterDefaultSteps(registry, writer, opts, logger)
//	manager := operations.NewManager(registry, operations.NewConfig(cfg.Pipeline), logger, tracer)
//	result, err := operations.NewPipeline(source, enricher, manager, dir, logger).Run(ctx, nil)
//
// Pipeline.Run loads and enriches the dataset first; a load failure aborts
// the run before any file is written.
package operations
