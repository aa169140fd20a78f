package server

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ari-wein/mcp-panther/internal/config"
	"github.com/ari-wein/mcp-panther/internal/envelope"
	"github.com/ari-wein/mcp-panther/internal/permissions"
	"github.com/ari-wein/mcp-panther/internal/registry"
)

func testConfig() *config.Config {
	return &config.Config{
		InstanceURL: "https://example.runpanther.net",
		APIToken:    "test-token",
		APITimeout:  5 * time.Second,
		Transport:   config.TransportStdio,
		Host:        "127.0.0.1",
		Port:        3000,
	}
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.Register(registry.Tool{
		Definition: mcp.Tool{
			Name:        "echo",
			Description: "Echo back the given text",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"text": map[string]any{"type": "string"},
				},
				Required: []string{"text"},
			},
		},
		Requires: permissions.AllOf(permissions.AlertRead),
		Handler: func(ctx context.Context, args map[string]any) envelope.Envelope {
			return envelope.OK(map[string]any{"echo": args["text"]})
		},
	}))
	return reg
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = "echo"
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	return payload
}

func TestToolHandlerSuccess(t *testing.T) {
	s, err := New(testConfig(), testRegistry(t), "test")
	require.NoError(t, err)

	handler := s.toolHandler("echo")
	result, err := handler(context.Background(), callRequest(map[string]any{"text": "hello"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	payload := resultText(t, result)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "hello", payload["echo"])
}

func TestToolHandlerReportsFailuresInEnvelope(t *testing.T) {
	s, err := New(testConfig(), testRegistry(t), "test")
	require.NoError(t, err)

	handler := s.toolHandler("echo")

	// Validation failures stay inside the envelope rather than becoming
	// protocol-level errors.
	result, err := handler(context.Background(), callRequest(map[string]any{}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	payload := resultText(t, result)
	assert.Equal(t, false, payload["success"])
	assert.Contains(t, payload["message"], "invalid arguments")
}

func TestToolHandlerPermissionDenied(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedPermissions = []string{"RuleRead"}

	s, err := New(cfg, testRegistry(t), "test")
	require.NoError(t, err)

	handler := s.toolHandler("echo")
	result, err := handler(context.Background(), callRequest(map[string]any{"text": "hello"}))
	require.NoError(t, err)

	payload := resultText(t, result)
	assert.Equal(t, false, payload["success"])
	assert.Contains(t, payload["message"], "permission denied")
}

func TestNewRejectsUnknownPermission(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedPermissions = []string{"NotAPermission"}

	_, err := New(cfg, testRegistry(t), "test")
	assert.Error(t, err)
}

func TestRunRejectsUnknownTransport(t *testing.T) {
	cfg := testConfig()
	s, err := New(cfg, testRegistry(t), "test")
	require.NoError(t, err)

	s.cfg.Transport = "carrier-pigeon"
	assert.ErrorContains(t, s.Run(context.Background()), "unsupported transport")
}
