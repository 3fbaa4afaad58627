package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"nabii/internal/config"
	apperrors "nabii/internal/errors"
	"nabii/internal/infrastructure"
)

// Config controls how the Manager schedules steps
type Config struct {
	Parallel      bool
	Workers       int // 0 means one worker per Step
	RetryAttempts int // extra attempts after the first failure
	RetryDelay    time.Duration
}

// NewConfig builds a Manager configuration from the pipeline settings
func NewConfig(cfg config.PipelineConfig) *Config {
	return &Config{
		Parallel:      cfg.Parallel,
		Workers:       cfg.Workers,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
	}
}

// Manager runs registered steps against a RunState. A failing Step never
// stops the others; every failure is recorded and returned together.
type Manager struct {
	registry *Registry
	config   *Config
	logger   *slog.Logger
	tracer   *StepTracer
	progress ProgressReporter
}

// NewManager creates a Manager. Nil arguments fall back to defaults.
func NewManager(registry *Registry, cfg *Config, logger *slog.Logger, tracer *StepTracer) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if cfg == nil {
		cfg = &Config{Parallel: true}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = &StepTracer{tracer: otel.Tracer(TracerName)}
	}
	return &Manager{
		registry: registry,
		config:   cfg,
		logger:   logger.With(slog.String("component", "manager")),
		tracer:   tracer,
		progress: NewLogProgress(logger),
	}
}

// SetProgress replaces the progress reporter
func (m *Manager) SetProgress(p ProgressReporter) {
	if p != nil {
		m.progress = p
	}
}

// GetRegistry returns the registry for accessing registered steps
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute runs the steps named by ids, or every Step when ids is empty.
// It returns once all selected steps have finished.
func (m *Manager) Execute(ctx context.Context, state *RunState, ids []string) error {
	steps, err := m.registry.Select(ids)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeValidation, "invalid step selection", err)
	}
	for _, step := range steps {
		state.AddStep(step)
	}

	state.Start()
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := m.tracer.TraceRun(ctx, state.ID, len(state.Deals))
	start := time.Now()

	m.logger.InfoContext(ctx, "Pipeline run started",
		slog.String("run_id", state.ID),
		slog.Int("steps", len(steps)),
		slog.Bool("parallel", m.config.Parallel))

	if m.config.Parallel {
		m.executeParallel(ctx, state, steps)
	} else {
		m.executeSequential(ctx, state, steps)
	}

	state.Finish()
	report := state.Report()
	m.tracer.RecordRun(span, report, time.Since(start))

	var errs []error
	for _, s := range state.Failed() {
		result := s.Result()
		errs = append(errs, fmt.Errorf("step %s: %w", result.ID, result.Err))
	}

	m.logger.InfoContext(ctx, "Pipeline run finished",
		slog.String("run_id", state.ID),
		slog.String("status", string(report.Status)),
		slog.Int("failed_steps", len(errs)),
		slog.Duration("duration", time.Since(start)))

	return errors.Join(errs...)
}

func (m *Manager) executeSequential(ctx context.Context, state *RunState, steps []Step) {
	for _, step := range steps {
		m.executeStep(ctx, state, step)
	}
}

// executeParallel runs every Step in its own goroutine. The group is not
// bound to a context so one failure does not cancel its siblings.
func (m *Manager) executeParallel(ctx context.Context, state *RunState, steps []Step) {
	var g errgroup.Group
	if m.config.Workers > 0 {
		g.SetLimit(m.config.Workers)
	}
	for _, step := range steps {
		step := step
		g.Go(func() error {
			m.executeStep(ctx, state, step)
			return nil
		})
	}
	_ = g.Wait()
}

// executeStep executes a single Step with retry logic
func (m *Manager) executeStep(ctx context.Context, state *RunState, step Step) {
	stepState := state.GetStep(step.ID())
	m.progress.StepStarted(ctx, step.ID(), step.Name())

	maxAttempts := 1 + m.config.RetryAttempts
	for attempt := 1; ; attempt++ {
		stepState.Start()
		stepCtx, span := m.tracer.TraceStep(ctx, state.ID, step.ID(), attempt)

		attemptStart := time.Now()
		err := m.safeExecute(stepCtx, state, step)
		duration := time.Since(attemptStart)

		if err == nil {
			stepState.Complete()
			result := stepState.Result()
			m.tracer.RecordStep(stepCtx, span, result)
			m.progress.StepFinished(ctx, result)
			return
		}

		m.tracer.RecordStep(stepCtx, span, StepResult{
			ID:       step.ID(),
			Status:   StepStatusFailed,
			Attempts: attempt,
			Duration: duration,
			Err:      err,
		})

		if !isRetryable(err) || attempt >= maxAttempts {
			stepState.Fail(err)
			m.progress.StepFinished(ctx, stepState.Result())
			return
		}

		m.logger.WarnContext(ctx, "Step failed, retrying",
			slog.String("step", step.ID()),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
			slog.Duration("delay", m.config.RetryDelay),
			slog.String("error", err.Error()))

		select {
		case <-time.After(m.config.RetryDelay):
		case <-ctx.Done():
			stepState.Fail(errors.Join(err, ctx.Err()))
			m.progress.StepFinished(ctx, stepState.Result())
			return
		}
	}
}

// safeExecute turns a panicking Step into an aggregation error
func (m *Manager) safeExecute(ctx context.Context, state *RunState, step Step) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.ErrorContext(ctx, "Step panicked",
				slog.String("step", step.ID()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			err = apperrors.NewAggregationError(fmt.Sprintf("step %s panicked: %v", step.ID(), r), nil)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return step.Execute(ctx, state)
}

// isRetryable reports whether another attempt could succeed. Only output
// failures are; a deterministic aggregation failure would repeat itself.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return apperrors.IsType(err, apperrors.ErrTypeStorage)
}
