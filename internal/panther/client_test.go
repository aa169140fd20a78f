package panther

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, StaticToken("test-token"), 5*time.Second), srv
}

func TestGet_ExpectedStatusReturnsBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.Header.Get("X-API-Key"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{}, "next": nil})
	})

	body, status, err := client.Get(context.Background(), "/alerts", nil, 200, 400)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Contains(t, body, "results")
}

// Soft error statuses in the expected set come back as (body, status, nil);
// the caller branches on the status code.
func TestGet_ExpectedSoftErrorStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"alert not found"}`))
	})

	body, status, err := client.Get(context.Background(), "/alerts/a-1", nil, 200, 404)
	require.NoError(t, err)
	assert.Equal(t, 404, status)
	assert.Equal(t, "alert not found", body["message"])
}

func TestGet_UnexpectedStatusRaises(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})

	_, _, err := client.Get(context.Background(), "/alerts", nil, 200, 400)
	require.Error(t, err)

	var unexpected *UnexpectedStatusError
	require.ErrorAs(t, err, &unexpected)
	assert.Equal(t, 500, unexpected.Status)
	assert.Equal(t, "boom", string(unexpected.Body))
}

func TestGet_MultiValueQuerySerializedAsRepeatedParams(t *testing.T) {
	var gotQuery url.Values
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{}`))
	})

	query := url.Values{}
	query.Add("severity", "CRITICAL")
	query.Add("severity", "HIGH")
	query.Add("severity", "MEDIUM")
	query.Set("type", "ALERT")

	_, _, err := client.Get(context.Background(), "/alerts", query, 200)
	require.NoError(t, err)
	assert.Equal(t, []string{"CRITICAL", "HIGH", "MEDIUM"}, gotQuery["severity"])
	assert.Equal(t, []string{"ALERT"}, gotQuery["type"])
}

func TestPatch_NoContentReturnsNilBody(t *testing.T) {
	var gotBody map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	})

	body, status, err := client.Patch(context.Background(), "/alerts",
		map[string]any{"ids": []string{"a-1"}, "status": "TRIAGED"}, 204, 400, 404)
	require.NoError(t, err)
	assert.Equal(t, 204, status)
	assert.Nil(t, body)
	assert.Equal(t, "TRIAGED", gotBody["status"])
}

func TestPost_SendsJSONBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a-1", body["alertId"])
		_, _ = w.Write([]byte(`{"id":"c-1"}`))
	})

	body, status, err := client.Post(context.Background(), "/alert-comments",
		map[string]any{"alertId": "a-1", "body": "note"}, 200, 400)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Equal(t, "c-1", body["id"])
}

func TestDo_TransportErrorOnConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	client := NewClient(srv.URL, StaticToken("t"), time.Second)
	_, _, err := client.Get(context.Background(), "/alerts", nil, 200)
	require.Error(t, err)

	var transport *TransportError
	assert.ErrorAs(t, err, &transport)
}

func TestDo_ContextCancellation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := client.Get(ctx, "/alerts", nil, 200)
	require.Error(t, err)

	var transport *TransportError
	assert.ErrorAs(t, err, &transport)
}

func TestTodayRange(t *testing.T) {
	start, end := TodayRange()

	startTime, err := time.Parse(time.RFC3339, start)
	require.NoError(t, err)
	endTime, err := time.Parse(time.RFC3339, end)
	require.NoError(t, err)

	assert.Equal(t, 0, startTime.Hour())
	assert.Equal(t, 23, endTime.Hour())
	assert.True(t, endTime.After(startTime))
	assert.Equal(t, time.UTC, startTime.Location())
}
