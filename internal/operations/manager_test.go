package operations

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "nabii/internal/errors"
	"nabii/internal/infrastructure"
)

type funcStep struct {
	BaseStep
	calls atomic.Int32
	fn    func(ctx context.Context, state *RunState, attempt int) error
}

func newFuncStep(id string, fn func(ctx context.Context, state *RunState, attempt int) error) *funcStep {
	return &funcStep{BaseStep: NewBaseStep(id, "step "+id), fn: fn}
}

func (s *funcStep) Execute(ctx context.Context, state *RunState) error {
	attempt := int(s.calls.Add(1))
	if s.fn == nil {
		return nil
	}
	return s.fn(ctx, state, attempt)
}

type recordingProgress struct {
	mu       sync.Mutex
	started  []string
	finished map[string]StepResult
}

func (p *recordingProgress) StepStarted(_ context.Context, id, _ string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = append(p.started, id)
}

func (p *recordingProgress) StepFinished(_ context.Context, result StepResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished == nil {
		p.finished = make(map[string]StepResult)
	}
	p.finished[result.ID] = result
}

func newTestManager(t *testing.T, cfg *Config, steps ...Step) *Manager {
	t.Helper()
	registry := NewRegistry()
	for _, s := range steps {
		require.NoError(t, registry.Register(s))
	}
	return NewManager(registry, cfg, nil, nil)
}

func TestManagerIsolatesFailures(t *testing.T) {
	for _, parallel := range []bool{true, false} {
		t.Run(fmt.Sprintf("parallel=%v", parallel), func(t *testing.T) {
			ok1 := newFuncStep("a", nil)
			bad := newFuncStep("b", func(context.Context, *RunState, int) error {
				return apperrors.NewAggregationError("broken", nil)
			})
			ok2 := newFuncStep("c", nil)

			m := newTestManager(t, &Config{Parallel: parallel}, ok1, bad, ok2)
			state := NewRunState("run", nil)

			err := m.Execute(context.Background(), state, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "step b")
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeAggregation))

			report := state.Report()
			assert.Equal(t, RunStatusFailed, report.Status)
			assert.Equal(t, []string{"b"}, report.FailedSteps())
			assert.False(t, report.Succeeded())
			assert.Equal(t, StepStatusCompleted, state.GetStep("a").Result().Status)
			assert.Equal(t, StepStatusCompleted, state.GetStep("c").Result().Status)
			assert.Equal(t, int32(1), bad.calls.Load(), "aggregation errors are not retried")
		})
	}
}

func TestManagerRetriesStorageErrors(t *testing.T) {
	tests := []struct {
		name         string
		retries      int
		failures     int
		wantStatus   StepStatus
		wantAttempts int
	}{
		{name: "succeeds on retry", retries: 2, failures: 1, wantStatus: StepStatusCompleted, wantAttempts: 2},
		{name: "retries exhausted", retries: 2, failures: 5, wantStatus: StepStatusFailed, wantAttempts: 3},
		{name: "no retries", retries: 0, failures: 1, wantStatus: StepStatusFailed, wantAttempts: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step := newFuncStep("flaky", func(_ context.Context, _ *RunState, attempt int) error {
				if attempt <= tt.failures {
					return apperrors.NewStorageError("disk full", errors.New("ENOSPC"))
				}
				return nil
			})
			m := newTestManager(t, &Config{RetryAttempts: tt.retries, RetryDelay: time.Millisecond}, step)
			state := NewRunState("run", nil)

			err := m.Execute(context.Background(), state, nil)

			result := state.GetStep("flaky").Result()
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantAttempts, result.Attempts)
			if tt.wantStatus == StepStatusFailed {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestManagerRecoversPanics(t *testing.T) {
	boom := newFuncStep("boom", func(context.Context, *RunState, int) error {
		panic("index out of range")
	})
	fine := newFuncStep("fine", nil)
	m := newTestManager(t, &Config{Parallel: true}, boom, fine)
	state := NewRunState("run", nil)

	err := m.Execute(context.Background(), state, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeAggregation))
	assert.Contains(t, err.Error(), "index out of range")
	assert.Equal(t, StepStatusCompleted, state.GetStep("fine").Result().Status)
}

func TestManagerSelection(t *testing.T) {
	a := newFuncStep("a", nil)
	b := newFuncStep("b", nil)
	c := newFuncStep("c", nil)
	m := newTestManager(t, &Config{}, a, b, c)

	state := NewRunState("run", nil)
	require.NoError(t, m.Execute(context.Background(), state, []string{"c", " a "}))

	assert.Equal(t, int32(1), a.calls.Load())
	assert.Equal(t, int32(0), b.calls.Load())
	assert.Equal(t, int32(1), c.calls.Load())
	assert.Nil(t, state.GetStep("b"))

	ids := make([]string, 0)
	for _, s := range state.Report().Steps {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"a", "c"}, ids, "registration order is kept")

	err := m.Execute(context.Background(), NewRunState("run2", nil), []string{"a", "nope"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnknownStep)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestManagerReportsProgress(t *testing.T) {
	progress := &recordingProgress{}
	m := newTestManager(t, &Config{Parallel: true, Workers: 2},
		newFuncStep("a", nil),
		newFuncStep("b", func(context.Context, *RunState, int) error { return errors.New("nope") }),
		newFuncStep("c", nil),
	)
	m.SetProgress(progress)

	_ = m.Execute(context.Background(), NewRunState("run", nil), nil)

	assert.ElementsMatch(t, []string{"a", "b", "c"}, progress.started)
	require.Len(t, progress.finished, 3)
	assert.Equal(t, StepStatusFailed, progress.finished["b"].Status)
	assert.Equal(t, "nope", progress.finished["b"].Error)
	assert.Equal(t, StepStatusCompleted, progress.finished["a"].Status)
}

func TestManagerWorkerLimit(t *testing.T) {
	var running, peak atomic.Int32
	track := func(context.Context, *RunState, int) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return nil
	}

	var steps []Step
	for i := 0; i < 6; i++ {
		steps = append(steps, newFuncStep(fmt.Sprintf("s%d", i), track))
	}
	m := newTestManager(t, &Config{Parallel: true, Workers: 2}, steps...)

	require.NoError(t, m.Execute(context.Background(), NewRunState("run", nil), nil))
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestManagerCancelledContext(t *testing.T) {
	step := newFuncStep("a", nil)
	m := newTestManager(t, &Config{RetryAttempts: 3, RetryDelay: time.Millisecond}, step)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Execute(ctx, NewRunState("run", nil), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), step.calls.Load())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newFuncStep("a", nil)))
	require.NoError(t, r.Register(newFuncStep("b", nil)))

	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(newFuncStep("", nil)))
	assert.Error(t, r.Register(newFuncStep("a", nil)), "duplicate id")

	assert.Equal(t, 2, r.Count())
	assert.Equal(t, []string{"a", "b"}, r.ListIDs())
	assert.True(t, r.Has("b"))

	_, err := r.Get("missing")
	assert.ErrorIs(t, err, apperrors.ErrUnknownStep)

	all, err := r.Select([]string{"", " "})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStepStateLifecycle(t *testing.T) {
	s := NewStepState("x", "X")
	assert.Equal(t, StepStatusPending, s.Result().Status)
	assert.Zero(t, s.Duration())

	s.Start()
	s.Fail(errors.New("first"))
	s.Start()
	s.SetMetadata(MetadataFile, "out/x.json")
	s.SetMetadata(MetadataBytes, 42)
	s.Complete()

	result := s.Result()
	assert.Equal(t, StepStatusCompleted, result.Status)
	assert.Equal(t, 2, result.Attempts)
	assert.Empty(t, result.Error, "a later attempt clears the error")
	assert.Equal(t, "out/x.json", result.File)
	assert.Equal(t, 42, result.Bytes)

	s.Skip("not selected")
	assert.Equal(t, StepStatusSkipped, s.Result().Status)
	assert.Equal(t, "not selected", s.Result().Message)
}

func TestManagerTagsTraceID(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{name: "generated when missing", ctx: context.Background()},
		{name: "caller id kept", ctx: infrastructure.WithTraceID(context.Background(), "caller-trace"), want: "caller-trace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			step := newFuncStep("a", func(ctx context.Context, _ *RunState, _ int) error {
				seen = infrastructure.GetTraceID(ctx)
				return nil
			})
			m := newTestManager(t, &Config{}, step)

			require.NoError(t, m.Execute(tt.ctx, NewRunState("run", nil), nil))
			require.NotEmpty(t, seen)
			if tt.want != "" {
				assert.Equal(t, tt.want, seen)
			}
		})
	}
}
