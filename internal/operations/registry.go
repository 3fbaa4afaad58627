package operations

import (
	"fmt"
	"strings"
	"sync"

	apperrors "nabii/internal/errors"
)

// Registry manages registered pipeline steps
type Registry struct {
	mu    sync.RWMutex
	steps map[string]Step
	order []string // Maintains registration order
}

// NewRegistry creates an empty Step registry
func NewRegistry() *Registry {
	return &Registry{
		steps: make(map[string]Step),
		order: make([]string, 0),
	}
}

// Register adds a Step to the registry
func (r *Registry) Register(step Step) error {
	if step == nil {
		return fmt.Errorf("cannot register nil step")
	}

	id := step.ID()
	if id == "" {
		return fmt.Errorf("step ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.steps[id]; exists {
		return fmt.Errorf("step with ID %s already registered", id)
	}

	r.steps[id] = step
	r.order = append(r.order, id)
	return nil
}

// Get retrieves a Step by ID
func (r *Registry) Get(id string) (Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	step, exists := r.steps[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownStep, id)
	}
	return step, nil
}

// Has checks if a Step is registered
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.steps[id]
	return exists
}

// List returns all registered steps in registration order
func (r *Registry) List() []Step {
	r.mu.RLock()
	defer r.mu.RUnlock()

	steps := make([]Step, 0, len(r.order))
	for _, id := range r.order {
		steps = append(steps, r.steps[id])
	}
	return steps
}

// ListIDs returns all registered Step IDs in registration order
func (r *Registry) ListIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Count returns the number of registered steps
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.steps)
}

// Select returns the steps named by ids in registration order. An empty
// selection means every Step. Unknown IDs are reported together.
func (r *Registry) Select(ids []string) ([]Step, error) {
	if len(ids) == 0 {
		return r.List(), nil
	}

	wanted := make(map[string]bool, len(ids))
	var unknown []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if !r.Has(id) {
			unknown = append(unknown, id)
			continue
		}
		wanted[id] = true
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s (known: %s)", apperrors.ErrUnknownStep,
			strings.Join(unknown, ", "), strings.Join(r.ListIDs(), ", "))
	}
	if len(wanted) == 0 {
		return r.List(), nil
	}

	var steps []Step
	for _, step := range r.List() {
		if wanted[step.ID()] {
			steps = append(steps, step)
		}
	}
	return steps, nil
}
