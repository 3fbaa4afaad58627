package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"nabii/internal/infrastructure"
)

const (
	TracerName = "nabii.operations"
)

// StepTracer provides OpenTelemetry instrumentation for pipeline runs
type StepTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewStepTracer creates a tracer from providers. A nil providers value
// yields a tracer that only creates no-op spans.
func NewStepTracer(providers *infrastructure.OTelProviders) (*StepTracer, error) {
	if providers == nil {
		return &StepTracer{tracer: otel.Tracer(TracerName)}, nil
	}

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	tracer := providers.Tracer
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return &StepTracer{tracer: tracer, metrics: metrics}, nil
}

// Metrics returns the pipeline instruments, nil when telemetry is off
func (t *StepTracer) Metrics() *infrastructure.PipelineMetrics {
	if t == nil {
		return nil
	}
	return t.metrics
}

// TraceRun creates a span for a whole run
func (t *StepTracer) TraceRun(ctx context.Context, runID string, deals int) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.deals", deals),
		),
	)

	if t.metrics != nil {
		t.metrics.RunsTotal.Add(ctx, 1)
		t.metrics.DealsLoaded.Add(ctx, int64(deals))
	}
	return ctx, span
}

// TraceStep creates a span for one Step attempt
func (t *StepTracer) TraceStep(ctx context.Context, runID, stepID string, attempt int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "pipeline.step."+stepID,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("step.id", stepID),
			attribute.Int("step.attempt", attempt),
		),
	)
}

// RecordStep ends a Step span and records its metrics
func (t *StepTracer) RecordStep(ctx context.Context, span trace.Span, result StepResult) {
	span.SetAttributes(
		attribute.String("step.status", string(result.Status)),
		attribute.Float64("step.duration_seconds", result.Duration.Seconds()),
	)
	if result.Err != nil {
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, result.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	t.metrics.RecordStep(ctx, result.ID, result.Duration, result.Err)
	if t.metrics != nil && result.Bytes > 0 {
		t.metrics.DocumentBytes.Add(ctx, int64(result.Bytes),
			metric.WithAttributes(attribute.String("step.id", result.ID)))
	}
}

// RecordRun ends a run span
func (t *StepTracer) RecordRun(span trace.Span, report RunReport, duration time.Duration) {
	span.SetAttributes(
		attribute.String("run.status", string(report.Status)),
		attribute.Float64("run.duration_seconds", duration.Seconds()),
		attribute.Int("run.failed_steps", len(report.FailedSteps())),
	)
	if report.Status == RunStatusFailed {
		span.SetStatus(codes.Error, "one or more steps failed")
	}
	span.End()
}
