package operations

import (
	"sync"
	"time"

	"nabii/pkg/contracts/domain"
)

// RunStatus represents the overall status of a pipeline run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunState is the state shared by every Step of one run. Deals is filled
// before the first Step starts and is read-only afterwards.
type RunState struct {
	mu sync.RWMutex

	ID        string
	Status    RunStatus
	StartTime time.Time
	EndTime   *time.Time
	Deals     []domain.Deal

	steps map[string]*StepState
	order []string
}

// NewRunState creates the state for a run over deals
func NewRunState(id string, deals []domain.Deal) *RunState {
	return &RunState{
		ID:        id,
		Status:    RunStatusPending,
		StartTime: time.Now(),
		Deals:     deals,
		steps:     make(map[string]*StepState),
	}
}

// Start marks the run as running
func (r *RunState) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = RunStatusRunning
	r.StartTime = time.Now()
}

// Finish marks the run as completed, or failed when any Step failed
func (r *RunState) Finish() {
	failed := len(r.Failed()) > 0

	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusCompleted
	if failed {
		r.Status = RunStatusFailed
	}
}

// AddStep registers the state of a Step that takes part in the run
func (r *RunState) AddStep(step Step) *StepState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.steps[step.ID()]; ok {
		return s
	}
	s := NewStepState(step.ID(), step.Name())
	r.steps[step.ID()] = s
	r.order = append(r.order, step.ID())
	return s
}

// GetStep returns the state of a Step, or nil when it is not part of the run
func (r *RunState) GetStep(id string) *StepState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.steps[id]
}

// Steps returns the Step states in registration order
func (r *RunState) Steps() []*StepState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	states := make([]*StepState, 0, len(r.order))
	for _, id := range r.order {
		states = append(states, r.steps[id])
	}
	return states
}

// Failed returns the Step states that ended in failure
func (r *RunState) Failed() []*StepState {
	var failed []*StepState
	for _, s := range r.Steps() {
		if s.Result().Status == StepStatusFailed {
			failed = append(failed, s)
		}
	}
	return failed
}

// Report summarises the run
func (r *RunState) Report() RunReport {
	steps := r.Steps()
	results := make([]StepResult, 0, len(steps))
	for _, s := range steps {
		results = append(results, s.Result())
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	report := RunReport{
		RunID:  r.ID,
		Status: r.Status,
		Deals:  len(r.Deals),
		Steps:  results,
	}
	if r.EndTime != nil {
		report.Duration = r.EndTime.Sub(r.StartTime)
	}
	return report
}

// RunReport is the outcome of a finished run
type RunReport struct {
	RunID    string        `json:"run_id"`
	Status   RunStatus     `json:"status"`
	Deals    int           `json:"deals"`
	Duration time.Duration `json:"duration"`
	Steps    []StepResult  `json:"steps"`
}

// Succeeded reports whether every Step completed
func (r RunReport) Succeeded() bool {
	for _, s := range r.Steps {
		if s.Status != StepStatusCompleted {
			return false
		}
	}
	return true
}

// FailedSteps returns the IDs of the steps that failed
func (r RunReport) FailedSteps() []string {
	var ids []string
	for _, s := range r.Steps {
		if s.Status == StepStatusFailed {
			ids = append(ids, s.ID)
		}
	}
	return ids
}
