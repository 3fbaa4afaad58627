package operations

import (
	"context"
	"sync"
	"time"
)

// Step represents a single independently retryable unit of a pipeline run
type Step interface {
	// ID returns the unique identifier for this Step
	ID() string

	// Name returns the human-readable name for this Step
	Name() string

	// Execute runs the Step against the enriched deals held in state
	Execute(ctx context.Context, state *RunState) error
}

// StepStatus represents the current status of a Step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState represents the runtime state of a Step
type StepState struct {
	mu        sync.RWMutex
	ID        string
	Name      string
	Status    StepStatus
	StartTime *time.Time
	EndTime   *time.Time
	Attempts  int
	Message   string
	Error     error
	Metadata  map[string]interface{}
}

// NewStepState creates a new Step state with default values
func NewStepState(id, name string) *StepState {
	return &StepState{
		ID:       id,
		Name:     name,
		Status:   StepStatusPending,
		Metadata: make(map[string]interface{}),
	}
}

// Start marks the Step as active and counts one more attempt
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.StartTime == nil {
		now := time.Now()
		s.StartTime = &now
	}
	s.Status = StepStatusActive
	s.Attempts++
	s.Error = nil
}

// Complete marks the Step as completed and sets the end time
func (s *StepState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
}

// Fail marks the Step as failed with the given error
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Error = err
}

// Skip marks the Step as skipped with the given reason
func (s *StepState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusSkipped
	s.Message = reason
}

// SetMetadata records a value produced by the Step
func (s *StepState) SetMetadata(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Metadata[key] = value
}

// Duration returns the duration of the Step execution
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}

// Result returns a copy of the state that is safe to share
func (s *StepState) Result() StepResult {
	duration := s.Duration()

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := StepResult{
		ID:       s.ID,
		Name:     s.Name,
		Status:   s.Status,
		Attempts: s.Attempts,
		Duration: duration,
		Message:  s.Message,
		Err:      s.Error,
	}
	if s.Error != nil {
		result.Error = s.Error.Error()
	}
	if v, ok := s.Metadata[MetadataBytes].(int); ok {
		result.Bytes = v
	}
	if v, ok := s.Metadata[MetadataFile].(string); ok {
		result.File = v
	}
	return result
}

// Metadata keys set by the built-in steps
const (
	MetadataFile  = "file"
	MetadataBytes = "bytes"
)

// StepResult is the outcome of one Step in a finished run
type StepResult struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Status   StepStatus    `json:"status"`
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration"`
	File     string        `json:"file,omitempty"`
	Bytes    int           `json:"bytes,omitempty"`
	Message  string        `json:"message,omitempty"`
	Error    string        `json:"error,omitempty"`
	Err      error         `json:"-"`
}

// BaseStep provides the identity half of a Step implementation
type BaseStep struct {
	id   string
	name string
}

// NewBaseStep creates a BaseStep
func NewBaseStep(id, name string) BaseStep {
	return BaseStep{id: id, name: name}
}

// ID returns the Step ID
func (b BaseStep) ID() string {
	return b.id
}

// Name returns the Step name
func (b BaseStep) Name() string {
	return b.name
}
