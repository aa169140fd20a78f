package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryDataLake(t *testing.T) {
	var gotBody map[string]any
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/queries", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeJSON(t, w, map[string]any{"id": "query-42"})
	})

	tool := findTool(t, DataLakeTools(client), "query_data_lake")
	result := tool.Handler(context.Background(), map[string]any{
		"sql": "SELECT * FROM panther_logs.public.aws_cloudtrail LIMIT 5",
	})

	require.True(t, result.Success)
	assert.Equal(t, "query-42", result.Fields["query_id"])
	assert.Equal(t, "panther_logs.public", gotBody["databaseName"])
}

func TestDataLakeQueryResults(t *testing.T) {
	tests := []struct {
		name        string
		response    map[string]any
		wantSuccess bool
		wantStatus  string
	}{
		{
			name:        "still running",
			response:    map[string]any{"status": "running"},
			wantSuccess: true,
			wantStatus:  "running",
		},
		{
			name: "succeeded with rows",
			response: map[string]any{
				"status":  "succeeded",
				"results": []any{map[string]any{"eventName": "ConsoleLogin"}},
				"next":    nil,
			},
			wantSuccess: true,
			wantStatus:  "succeeded",
		},
		{
			name:        "failed",
			response:    map[string]any{"status": "failed", "message": "SQL compilation error"},
			wantSuccess: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, tt.response)
			})
			tool := findTool(t, DataLakeTools(client), "get_data_lake_query_results")
			result := tool.Handler(context.Background(), map[string]any{"query_id": "query-42"})

			assert.Equal(t, tt.wantSuccess, result.Success)
			if tt.wantSuccess {
				assert.Equal(t, tt.wantStatus, result.Fields["status"])
			} else {
				assert.Contains(t, result.Message, "SQL compilation error")
			}
		})
	}
}
