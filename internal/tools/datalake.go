package tools

import (
	"context"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ari-wein/mcp-panther/internal/envelope"
	"github.com/ari-wein/mcp-panther/internal/panther"
	"github.com/ari-wein/mcp-panther/internal/permissions"
	"github.com/ari-wein/mcp-panther/internal/registry"
	"github.com/ari-wein/mcp-panther/pkg/logging"
)

// DataLakeTools returns the data lake query tools backed by the given
// client. Query execution is asynchronous: query_data_lake submits the SQL
// and returns an ID, get_data_lake_query_results polls for the outcome.
func DataLakeTools(client *panther.Client) []registry.Tool {
	return []registry.Tool{
		{
			Definition: mcp.Tool{
				Name:        "query_data_lake",
				Description: "Execute a SQL query against the Panther data lake. Returns a query ID to poll with get_data_lake_query_results. Queries must target tables in the panther_logs database and should include a p_event_time filter to bound the scan.",
				InputSchema: inputSchema([]argSpec{
					{name: "sql", typ: "string", required: true, description: "The SQL query to execute"},
					{name: "database", typ: "string", def: "panther_logs.public", description: "The database to run the query against"},
				}),
				Annotations: readOnly(),
			},
			Requires: permissions.AllOf(permissions.DataAnalyticsRead),
			Handler:  queryDataLakeHandler(client),
		},
		{
			Definition: mcp.Tool{
				Name:        "get_data_lake_query_results",
				Description: "Get the status and results of a data lake query started with query_data_lake. While the query is still running, returns status without results; poll again later.",
				InputSchema: inputSchema([]argSpec{
					{name: "query_id", typ: "string", required: true, description: "The ID of the query to fetch results for"},
					{name: "cursor", typ: "string", description: "Optional cursor for paginating result rows"},
				}),
				Annotations: readOnly(),
			},
			Requires: permissions.AllOf(permissions.DataAnalyticsRead),
			Handler:  dataLakeQueryResultsHandler(client),
		},
	}
}

func queryDataLakeHandler(client *panther.Client) registry.Handler {
	return func(ctx context.Context, args map[string]any) envelope.Envelope {
		sql := stringArg(args, "sql", "")
		database := stringArg(args, "database", "panther_logs.public")
		logging.Info("Tools", "Submitting data lake query against %s", database)

		body := map[string]any{
			"sql":          sql,
			"databaseName": database,
		}
		resp, status, err := client.Post(ctx, "/queries", body, 200, 400)
		if err != nil {
			logging.Error("Tools", err, "Failed to submit data lake query")
			return envelope.Failf("failed to submit data lake query: %v", err)
		}
		if status == 400 {
			return envelope.Fail("bad request when submitting data lake query, check the SQL syntax and database name")
		}

		queryID, _ := resp["id"].(string)
		logging.Info("Tools", "Data lake query submitted with ID: %s", queryID)
		return envelope.OK(map[string]any{"query_id": queryID})
	}
}

func dataLakeQueryResultsHandler(client *panther.Client) registry.Handler {
	return func(ctx context.Context, args map[string]any) envelope.Envelope {
		queryID := stringArg(args, "query_id", "")
		logging.Info("Tools", "Fetching data lake query results for ID: %s", queryID)

		params := url.Values{}
		if cursor := stringArg(args, "cursor", ""); cursor != "" {
			params.Set("cursor", cursor)
		}

		body, status, err := client.Get(ctx, "/queries/"+url.PathEscape(queryID), params, 200, 404)
		if err != nil {
			logging.Error("Tools", err, "Failed to fetch data lake query results")
			return envelope.Failf("failed to fetch data lake query results: %v", err)
		}
		if status == 404 {
			return envelope.Failf("no data lake query found with ID: %s", queryID)
		}

		state, _ := body["status"].(string)
		switch state {
		case "running":
			return envelope.OK(map[string]any{
				"status": state,
				"hint":   "query is still running, poll again for results",
			})
		case "failed", "cancelled":
			reason, _ := body["message"].(string)
			return envelope.Failf("data lake query %s: %s", state, reason)
		}

		results, next := pageOf(body)
		fields := map[string]any{
			"status":     state,
			"results":    results,
			"total_rows": len(results),
		}
		for k, v := range envelope.Page(next, stringArg(args, "cursor", "")) {
			fields[k] = v
		}
		return envelope.OK(fields)
	}
}
