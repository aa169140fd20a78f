// Package registry maintains the process-wide catalog of registered tools.
// It is populated once by the bootstrap before any dispatch occurs and is
// read-only afterward; it performs no I/O.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ari-wein/mcp-panther/internal/envelope"
	"github.com/ari-wein/mcp-panther/internal/permissions"
)

// ErrToolNotFound is returned by Lookup for unregistered names.
var ErrToolNotFound = errors.New("tool not found")

// Handler executes one tool with already-validated arguments and returns a
// result envelope. Handlers may return failure envelopes for soft outcomes;
// they never panic.
type Handler func(ctx context.Context, args map[string]any) envelope.Envelope

// Tool is one registered operation: the MCP definition (name, description,
// parameter schema, behavior annotations), the capability set required to
// invoke it, and the handler itself. Descriptors are created once at
// registration and never mutated.
type Tool struct {
	Definition mcp.Tool
	Requires   permissions.Requirement
	Handler    Handler
}

// Name returns the tool's unique catalog name.
func (t *Tool) Name() string {
	return t.Definition.Name
}

// Registry maps tool names to descriptors, preserving registration order
// for stable catalog enumeration. Registration must complete during process
// initialization; after that the registry is only read, so concurrent
// lookups need no coordination beyond the guard used during init.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Tool
	order  []*Tool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byName: make(map[string]*Tool),
	}
}

// Register inserts a tool descriptor. A duplicate name is a programming
// error; the bootstrap treats the returned error as fatal.
func (r *Registry) Register(t Tool) error {
	name := t.Definition.Name
	if name == "" {
		return errors.New("tool has no name")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool %s has no handler", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}

	stored := t
	r.byName[name] = &stored
	r.order = append(r.order, &stored)
	return nil
}

// Lookup returns the descriptor for name, or ErrToolNotFound.
func (r *Registry) Lookup(name string) (*Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return t, nil
}

// All returns every registered tool in registration order. The returned
// slice is a copy; callers may iterate it freely.
func (r *Registry) All() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Tool, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
