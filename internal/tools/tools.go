// Package tools defines the adapter interface and registry for toolgate.
// An adapter translates one external CLI into structured results; every
// command it builds goes through the cmdsafe layer before the sandbox
// will touch it.
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Adapter is the interface all toolgate adapters implement.
type Adapter interface {
	// Name returns the adapter's unique identifier (e.g. "ripgrep_search").
	Name() string

	// Description returns a human-readable description.
	Description() string

	// Program returns the external binary the adapter invokes, used for
	// audit records and install hints.
	Program() string

	// InputSchema returns a JSON Schema object describing parameters.
	InputSchema() map[string]any

	// Validate checks that params are well-formed before execution, so
	// malformed requests fail fast without spawning anything.
	Validate(params map[string]any) error

	// Execute validates inputs through the safety layer, runs the
	// command in the sandbox, and returns the result. A typed rejection
	// is returned as an error, never swallowed.
	Execute(ctx context.Context, params map[string]any) (*Result, error)
}

// Result is the outcome of an adapter execution.
type Result struct {
	Output   string `json:"output"`
	ExitCode int    `json:"exit_code"`
	Success  bool   `json:"success"`
}

// Registry holds registered adapters. Thread-safe.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter; duplicate names are an error.
func (r *Registry) Register(a Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[a.Name()]; exists {
		return fmt.Errorf("adapter %q already registered", a.Name())
	}
	r.adapters[a.Name()] = a
	return nil
}

// Get returns the adapter by name.
func (r *Registry) Get(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	return a, ok
}

// List returns all adapters sorted by name.
func (r *Registry) List() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// TruncateOutput caps a string at maxBytes, appending a truncation
// notice if cut.
func TruncateOutput(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	const suffix = "\n... [output truncated]"
	if maxBytes <= len(suffix) {
		return s[:maxBytes]
	}
	return s[:maxBytes-len(suffix)] + suffix
}
