package dispatch

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ari-wein/mcp-panther/internal/envelope"
	"github.com/ari-wein/mcp-panther/internal/permissions"
	"github.com/ari-wein/mcp-panther/internal/registry"
)

// countingHandler records invocations, standing in for a tool whose side
// effects must never occur on denied or invalid calls.
type countingHandler struct {
	calls int
}

func (h *countingHandler) handle(ctx context.Context, args map[string]any) envelope.Envelope {
	h.calls++
	return envelope.OK(map[string]any{"ok": true})
}

func updateTool(h *countingHandler) registry.Tool {
	return registry.Tool{
		Definition: mcp.Tool{
			Name:        "update_alert_status",
			Description: "Update the status of one or more alerts",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"alert_ids": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"status": map[string]any{
						"type": "string",
						"enum": []string{"OPEN", "TRIAGED", "RESOLVED", "CLOSED"},
					},
				},
				Required: []string{"alert_ids", "status"},
			},
		},
		Requires: permissions.AllOf(permissions.AlertModify),
		Handler:  h.handle,
	}
}

func newDispatcher(t *testing.T, tools ...registry.Tool) *Dispatcher {
	t.Helper()
	reg := registry.New()
	for _, tool := range tools {
		require.NoError(t, reg.Register(tool))
	}
	d, err := New(reg)
	require.NoError(t, err)
	return d
}

func TestInvoke_UnknownOperation(t *testing.T) {
	d := newDispatcher(t)

	result := d.Invoke(context.Background(), "does_not_exist", nil, permissions.All())
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "no such operation")
}

func TestInvoke_PermissionDenied_HandlerNeverRuns(t *testing.T) {
	h := &countingHandler{}
	d := newDispatcher(t, updateTool(h))

	granted := permissions.NewSet(permissions.AlertRead) // no AlertModify
	result := d.Invoke(context.Background(), "update_alert_status",
		map[string]any{"alert_ids": []any{"a-1"}, "status": "CLOSED"}, granted)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "permission denied")
	assert.Contains(t, result.Message, "AlertModify")
	assert.Equal(t, 0, h.calls)
}

func TestInvoke_Authorized(t *testing.T) {
	h := &countingHandler{}
	d := newDispatcher(t, updateTool(h))

	result := d.Invoke(context.Background(), "update_alert_status",
		map[string]any{"alert_ids": []any{"a-1"}, "status": "CLOSED"},
		permissions.NewSet(permissions.AlertModify))

	assert.True(t, result.Success)
	assert.Equal(t, 1, h.calls)
}

func TestInvoke_ValidationFailure_HandlerNeverRuns(t *testing.T) {
	h := &countingHandler{}
	d := newDispatcher(t, updateTool(h))
	granted := permissions.NewSet(permissions.AlertModify)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing required", map[string]any{"status": "CLOSED"}},
		{"enum violation", map[string]any{"alert_ids": []any{"a-1"}, "status": "NOT_A_STATUS"}},
		{"wrong type", map[string]any{"alert_ids": "a-1", "status": "CLOSED"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := d.Invoke(context.Background(), "update_alert_status", test.args, granted)
			assert.False(t, result.Success)
			assert.Contains(t, result.Message, "invalid arguments")
		})
	}
	assert.Equal(t, 0, h.calls)
}

func TestInvoke_PanicConvertedToFailure(t *testing.T) {
	tool := registry.Tool{
		Definition: mcp.Tool{
			Name:        "panics",
			InputSchema: mcp.ToolInputSchema{Type: "object"},
		},
		Handler: func(ctx context.Context, args map[string]any) envelope.Envelope {
			panic("boom")
		},
	}
	d := newDispatcher(t, tool)

	result := d.Invoke(context.Background(), "panics", nil, permissions.All())
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Message)
}

// Every dispatch path terminates in an envelope with a definite success
// flag: message iff failure, payload iff success.
func TestInvoke_EnvelopeExclusivity(t *testing.T) {
	h := &countingHandler{}
	d := newDispatcher(t, updateTool(h))

	outcomes := []envelope.Envelope{
		d.Invoke(context.Background(), "missing_tool", nil, permissions.All()),
		d.Invoke(context.Background(), "update_alert_status", nil, permissions.NewSet()),
		d.Invoke(context.Background(), "update_alert_status",
			map[string]any{"status": "CLOSED"}, permissions.NewSet(permissions.AlertModify)),
		d.Invoke(context.Background(), "update_alert_status",
			map[string]any{"alert_ids": []any{"a-1"}, "status": "CLOSED"},
			permissions.NewSet(permissions.AlertModify)),
	}

	for i, result := range outcomes {
		if result.Success {
			assert.Empty(t, result.Message, "outcome %d", i)
		} else {
			assert.NotEmpty(t, result.Message, "outcome %d", i)
			assert.Empty(t, result.Fields, "outcome %d", i)
		}
	}
}

func TestNew_CompilesAllSchemas(t *testing.T) {
	h := &countingHandler{}
	reg := registry.New()
	require.NoError(t, reg.Register(updateTool(h)))

	d, err := New(reg)
	require.NoError(t, err)
	assert.Len(t, d.validators, 1)
}
