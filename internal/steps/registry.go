package steps

import (
	"sort"
	"sync"

	"github.com/ludere/stepflow/pkg/schema"
)

// Registry is the plugin-id → Step table populated once at startup with
// every available plugin. Reads during a frame are lock-cheap; the mutex
// exists for the registration phase and for hosts that register late.
type Registry struct {
	mu    sync.RWMutex
	steps map[string]Step
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{steps: make(map[string]Step)}
}

// Register adds a step to the registry. Returns an error on a duplicate
// plugin id.
func (r *Registry) Register(step Step) error {
	if step == nil {
		return schema.NewError(schema.ErrCodeValidation, "step is nil")
	}
	id := step.PluginID()
	if id == "" {
		return schema.NewError(schema.ErrCodeValidation, "step plugin id is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.steps[id]; exists {
		return schema.NewErrorf(schema.ErrCodeConflict, "plugin %q already registered", id)
	}
	r.steps[id] = step
	return nil
}

// RegisterAll registers every step, stopping at the first failure.
func (r *Registry) RegisterAll(steps ...Step) error {
	for _, s := range steps {
		if err := r.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a step by plugin id.
func (r *Registry) Get(pluginID string) (Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	step, ok := r.steps[pluginID]
	if !ok {
		return nil, schema.NewErrorf(schema.ErrCodeNotFound, "plugin %q not registered", pluginID)
	}
	return step, nil
}

// Has checks whether a plugin id is registered.
func (r *Registry) Has(pluginID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.steps[pluginID]
	return ok
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.steps)
}

// List returns all registered plugin ids, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.steps))
	for id := range r.steps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var _ Lookup = (*Registry)(nil)
