// Package dispatch mediates every tool invocation: lookup, authorization,
// argument validation, and execution. It is the single boundary that
// guarantees no error crosses to the outward interface as anything other
// than a failure envelope.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/ari-wein/mcp-panther/internal/envelope"
	"github.com/ari-wein/mcp-panther/internal/permissions"
	"github.com/ari-wein/mcp-panther/internal/registry"
	"github.com/ari-wein/mcp-panther/pkg/logging"
)

// Dispatcher routes invocations through the registry. Argument schemas are
// compiled once at construction; the dispatcher holds no per-call state and
// is safe for concurrent use.
type Dispatcher struct {
	reg        *registry.Registry
	validators map[string]*jsonschema.Schema
}

// New builds a dispatcher over a fully populated registry, compiling each
// tool's input schema. A schema that fails to compile is a programming
// error surfaced at startup.
func New(reg *registry.Registry) (*Dispatcher, error) {
	validators := make(map[string]*jsonschema.Schema, reg.Len())

	for _, tool := range reg.All() {
		schema, err := compileInputSchema(tool)
		if err != nil {
			return nil, fmt.Errorf("compiling input schema for tool %s: %w", tool.Name(), err)
		}
		validators[tool.Name()] = schema
	}

	return &Dispatcher{reg: reg, validators: validators}, nil
}

func compileInputSchema(tool *registry.Tool) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(tool.Definition.InputSchema)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", doc); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

// Invoke executes the named tool for an actor holding the granted
// capability set. Every outcome is an envelope: unknown names,
// authorization failures, and argument violations short-circuit without
// invoking the handler, and a handler panic is converted rather than
// propagated.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args map[string]any, granted permissions.Set) (result envelope.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Dispatcher", fmt.Errorf("%v", r), "Tool %s panicked", name)
			result = envelope.Failf("tool %s failed: internal error", name)
		}
	}()

	tool, err := d.reg.Lookup(name)
	if err != nil {
		if errors.Is(err, registry.ErrToolNotFound) {
			return envelope.Failf("no such operation: %s", name)
		}
		return envelope.Fail(err.Error())
	}

	if !tool.Requires.Authorize(granted) {
		missing := tool.Requires.Missing(granted)
		logging.Warn("Dispatcher", "Denied %s: missing permissions %v", name, missing)
		return envelope.Failf("permission denied: %s requires %s", name, permissions.AllOf(missing...).String())
	}

	if args == nil {
		args = map[string]any{}
	}
	if validator, ok := d.validators[name]; ok {
		if err := validator.Validate(normalize(args)); err != nil {
			logging.Debug("Dispatcher", "Argument validation failed for %s: %v", name, err)
			return envelope.Failf("invalid arguments for %s: %v", name, err)
		}
	}

	logging.Debug("Dispatcher", "Invoking %s", name)
	return tool.Handler(ctx, args)
}

// normalize round-trips the arguments through JSON so the validator sees the
// standard decoded forms (map[string]any, []any, float64) regardless of how
// the transport delivered them.
func normalize(args map[string]any) any {
	raw, err := json.Marshal(args)
	if err != nil {
		return args
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return args
	}
	return out
}
