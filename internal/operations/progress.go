package operations

import (
	"context"
	"log/slog"
)

// ProgressReporter is told when steps start and finish. Calls may come
// from several goroutines at once.
type ProgressReporter interface {
	StepStarted(ctx context.Context, id, name string)
	StepFinished(ctx context.Context, result StepResult)
}

// LogProgress reports step progress through a logger
type LogProgress struct {
	logger *slog.Logger
}

// NewLogProgress creates a reporter that logs at Info level
func NewLogProgress(logger *slog.Logger) *LogProgress {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogProgress{logger: logger}
}

// StepStarted implements ProgressReporter
func (p *LogProgress) StepStarted(ctx context.Context, id, name string) {
	p.logger.InfoContext(ctx, name, slog.String("step", id))
}

// StepFinished implements ProgressReporter
func (p *LogProgress) StepFinished(ctx context.Context, result StepResult) {
	attrs := []any{
		slog.String("step", result.ID),
		slog.String("status", string(result.Status)),
		slog.Int("attempts", result.Attempts),
		slog.Duration("duration", result.Duration),
	}
	if result.File != "" {
		attrs = append(attrs, slog.String("file", result.File), slog.Int("bytes", result.Bytes))
	}

	if result.Status == StepStatusFailed {
		p.logger.ErrorContext(ctx, "Step failed", append(attrs, slog.String("error", result.Error))...)
		return
	}
	p.logger.InfoContext(ctx, "Step finished", attrs...)
}

type multiProgress []ProgressReporter

// MultiProgress fans progress out to every reporter
func MultiProgress(reporters ...ProgressReporter) ProgressReporter {
	var m multiProgress
	for _, r := range reporters {
		if r != nil {
			m = append(m, r)
		}
	}
	return m
}

func (m multiProgress) StepStarted(ctx context.Context, id, name string) {
	for _, r := range m {
		r.StepStarted(ctx, id, name)
	}
}

func (m multiProgress) StepFinished(ctx context.Context, result StepResult) {
	for _, r := range m {
		r.StepFinished(ctx, result)
	}
}
