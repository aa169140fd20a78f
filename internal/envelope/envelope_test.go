package envelope

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMarshal(t *testing.T, e Envelope) map[string]any {
	t.Helper()
	data, err := json.Marshal(e)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestOK_FlattensPayload(t *testing.T) {
	e := OK(map[string]any{
		"alerts":       []any{"a-1", "a-2"},
		"total_alerts": 2,
	})

	out := mustMarshal(t, e)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, float64(2), out["total_alerts"])
	assert.Len(t, out["alerts"], 2)
	assert.NotContains(t, out, "message")
}

func TestFailf_MessageOnly(t *testing.T) {
	e := Failf("no alert found with ID: %s", "a-1")

	out := mustMarshal(t, e)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "no alert found with ID: a-1", out["message"])
	assert.Len(t, out, 2)
}

// Exactly one of payload or message is populated, gated by the success flag.
func TestEnvelope_Exclusivity(t *testing.T) {
	success := mustMarshal(t, OK(map[string]any{"alert": map[string]any{"id": "a-1"}}))
	assert.NotContains(t, success, "message")
	assert.Contains(t, success, "alert")

	failure := mustMarshal(t, Fail("permission denied"))
	assert.Contains(t, failure, "message")
	assert.Len(t, failure, 2)
}

func TestMarshalJSON_ReservedKeysDropped(t *testing.T) {
	e := OK(map[string]any{
		"success": false,
		"message": "smuggled",
		"alert":   "a-1",
	})

	out := mustMarshal(t, e)
	assert.Equal(t, true, out["success"])
	assert.NotContains(t, out, "message")
	assert.Equal(t, "a-1", out["alert"])
}

func TestPage_FirstPage(t *testing.T) {
	fields := Page("cursor-2", "")

	assert.Equal(t, true, fields["has_next_page"])
	assert.Equal(t, false, fields["has_previous_page"])
	assert.Equal(t, "cursor-2", fields["end_cursor"])
	assert.NotContains(t, fields, "start_cursor")
}

func TestPage_ContinuationPage(t *testing.T) {
	fields := Page("", "cursor-1")

	assert.Equal(t, false, fields["has_next_page"])
	assert.Equal(t, true, fields["has_previous_page"])
	assert.Equal(t, "cursor-1", fields["start_cursor"])
	assert.NotContains(t, fields, "end_cursor")
}
