package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Page-size bounds shared by every list tool. Oversized requests are
// clamped to maxPageSize rather than rejected.
const (
	defaultPageSize = 25
	maxPageSize     = 50
)

// argSpec declares one tool parameter for the generated JSON input schema.
type argSpec struct {
	name        string
	typ         string
	description string
	required    bool
	def         any
	enum        []string
	items       string         // element type for arrays
	extra       map[string]any // additional schema keywords (minimum, ...)
}

// inputSchema converts parameter declarations to the MCP input schema
// format. The resulting schema is also what the dispatcher compiles for
// argument validation, so constraints declared here are enforced before a
// handler ever runs.
func inputSchema(args []argSpec) mcp.ToolInputSchema {
	properties := make(map[string]any, len(args))
	var required []string

	for _, arg := range args {
		propSchema := map[string]any{
			"type":        arg.typ,
			"description": arg.description,
		}
		if arg.typ == "array" && arg.items != "" {
			propSchema["items"] = map[string]any{"type": arg.items}
		}
		if len(arg.enum) > 0 {
			propSchema["enum"] = arg.enum
		}
		if arg.def != nil {
			propSchema["default"] = arg.def
		}
		for key, value := range arg.extra {
			propSchema[key] = value
		}

		properties[arg.name] = propSchema
		if arg.required {
			required = append(required, arg.name)
		}
	}

	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// readOnly marks a tool that never mutates remote state.
func readOnly() mcp.ToolAnnotation {
	return mcp.ToolAnnotation{
		ReadOnlyHint: mcp.ToBoolPtr(true),
	}
}

// destructive marks a tool that mutates remote state; idempotent reports
// whether repeating the call changes anything further.
func destructive(idempotent bool) mcp.ToolAnnotation {
	return mcp.ToolAnnotation{
		DestructiveHint: mcp.ToBoolPtr(true),
		IdempotentHint:  mcp.ToBoolPtr(idempotent),
	}
}

// The arg helpers read already-validated arguments, so they only need to
// cope with JSON decoding shapes (float64 numbers, []any slices), not with
// type violations.

func stringArg(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func stringSliceArg(args map[string]any, key string, def []string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		if typed, ok := args[key].([]string); ok {
			return typed
		}
		return def
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// pageOf extracts the ordered results and the opaque continuation cursor
// from a Panther list response. A missing or null "next" means the stream
// is exhausted.
func pageOf(body map[string]any) ([]any, string) {
	results, _ := body["results"].([]any)
	if results == nil {
		results = []any{}
	}
	next, _ := body["next"].(string)
	return results, next
}
