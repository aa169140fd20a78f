// Package envelope defines the uniform result structure every registered
// tool returns. A result is either a success carrying domain payload fields
// or a failure carrying a human-readable message, never both.
package envelope

import (
	"encoding/json"
	"fmt"
)

// Envelope is the discriminated success/failure result of one tool
// invocation. On success Fields holds the domain payload; on failure Message
// holds the only user-visible explanation. The flat JSON form matches the
// Panther API conventions: {"success":true,"alerts":[...],...} or
// {"success":false,"message":"..."}.
type Envelope struct {
	Success bool
	Message string
	Fields  map[string]any
}

// OK builds a success envelope carrying the given payload fields.
func OK(fields map[string]any) Envelope {
	return Envelope{Success: true, Fields: fields}
}

// Fail builds a failure envelope with the given message.
func Fail(message string) Envelope {
	return Envelope{Success: false, Message: message}
}

// Failf builds a failure envelope with a formatted message.
func Failf(format string, args ...any) Envelope {
	return Envelope{Success: false, Message: fmt.Sprintf(format, args...)}
}

// MarshalJSON flattens the envelope into a single JSON object. The success
// flag and message keys are reserved; payload fields with those names are
// dropped rather than allowed to corrupt the discriminator.
func (e Envelope) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Fields)+2)
	out["success"] = e.Success
	if !e.Success {
		out["message"] = e.Message
		return json.Marshal(out)
	}
	for k, v := range e.Fields {
		if k == "success" || k == "message" {
			continue
		}
		out[k] = v
	}
	return json.Marshal(out)
}

// Page returns the shared pagination fields for list results. The cursors
// are opaque tokens issued by the Panther API and passed through verbatim;
// has_previous_page is derived purely from whether the caller supplied an
// inbound cursor.
func Page(nextCursor, inboundCursor string) map[string]any {
	fields := map[string]any{
		"has_next_page":     nextCursor != "",
		"has_previous_page": inboundCursor != "",
	}
	if nextCursor != "" {
		fields["end_cursor"] = nextCursor
	}
	if inboundCursor != "" {
		fields["start_cursor"] = inboundCursor
	}
	return fields
}
