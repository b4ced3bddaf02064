package task

import (
	"errors"
	"fmt"
	"sync"

	"periodical/internal/work"
)

// ErrNotFound reports a lookup of a name that was never registered.
// Callers must treat it as a programming error (fatal), not a soft failure.
var ErrNotFound = errors.New("task not registered")

// Registry maps task names to their resolved configuration and work unit.
type Registry struct {
	overrides map[string]Override

	mu    sync.RWMutex
	tasks map[string]Config
}

// NewRegistry creates a registry with the given environment overrides
// (typically OverridesFromEnv()). A nil map means no overrides.
func NewRegistry(overrides map[string]Override) *Registry {
	return &Registry{
		overrides: overrides,
		tasks:     map[string]Config{},
	}
}

// Register resolves and stores a task configuration under name, overwriting
// any prior entry wholesale (last registration wins, no merge).
func (r *Registry) Register(name, description string, w work.Work, opts ...Option) error {
	if name == "" {
		return errors.New("register: task name is empty")
	}
	if w == nil {
		return fmt.Errorf("register %q: work unit is nil", name)
	}

	ov, hasOv := r.overrides[name]
	cfg := resolve(name, description, w, ov, hasOv, opts)
	if cfg.ExecutionInterval <= 0 {
		return fmt.Errorf("register %q: execution interval must be positive, got %s", name, cfg.ExecutionInterval)
	}
	if cfg.TimeoutInterval <= 0 {
		return fmt.Errorf("register %q: timeout interval must be positive, got %s", name, cfg.TimeoutInterval)
	}

	r.mu.Lock()
	r.tasks[name] = cfg
	r.mu.Unlock()
	return nil
}

// Get returns the configuration for name, or ErrNotFound.
func (r *Registry) Get(name string) (Config, error) {
	r.mu.RLock()
	cfg, ok := r.tasks[name]
	r.mu.RUnlock()
	if !ok {
		return Config{}, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return cfg, nil
}

// All returns every registered task configuration, in no particular order.
func (r *Registry) All() []Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Config, 0, len(r.tasks))
	for _, cfg := range r.tasks {
		out = append(out, cfg)
	}
	return out
}

// Len reports how many tasks are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}
