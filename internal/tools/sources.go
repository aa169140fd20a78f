package tools

import (
	"context"
	"net/url"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ari-wein/mcp-panther/internal/envelope"
	"github.com/ari-wein/mcp-panther/internal/panther"
	"github.com/ari-wein/mcp-panther/internal/permissions"
	"github.com/ari-wein/mcp-panther/internal/registry"
	"github.com/ari-wein/mcp-panther/pkg/logging"
)

// SourceTools returns the log source tools backed by the given client.
func SourceTools(client *panther.Client) []registry.Tool {
	return []registry.Tool{
		{
			Definition: mcp.Tool{
				Name:        "list_log_sources",
				Description: "List log sources from Panther with optional filters for health and log types",
				InputSchema: inputSchema([]argSpec{
					{name: "cursor", typ: "string", description: "Optional cursor for pagination returned from a previous call"},
					{name: "log_types", typ: "array", items: "string", description: "Optional list of log-type names to filter sources by"},
					{name: "integration_type", typ: "string", description: "Optional integration type to filter by (e.g. S3, cloudwatch-logs)"},
					{name: "is_healthy", typ: "boolean", description: "Optional filter on source health"},
					{name: "page_size", typ: "integer", def: 25, extra: map[string]any{"minimum": 1}, description: "Number of results per page (max 50, default 25)"},
				}),
				Annotations: readOnly(),
			},
			Requires: permissions.AllOf(permissions.LogSourceRead),
			Handler:  listLogSourcesHandler(client),
		},
	}
}

func listLogSourcesHandler(client *panther.Client) registry.Handler {
	return func(ctx context.Context, args map[string]any) envelope.Envelope {
		logging.Info("Tools", "Fetching log sources from Panther")

		pageSize := intArg(args, "page_size", defaultPageSize)
		if pageSize > maxPageSize {
			logging.Warn("Tools", "page_size %d exceeds maximum of %d, using %d instead", pageSize, maxPageSize, maxPageSize)
			pageSize = maxPageSize
		}

		params := url.Values{}
		params.Set("limit", strconv.Itoa(pageSize))
		if cursor := stringArg(args, "cursor", ""); cursor != "" {
			params.Set("cursor", cursor)
		}
		for _, logType := range stringSliceArg(args, "log_types", nil) {
			params.Add("log-type", logType)
		}
		if integration := stringArg(args, "integration_type", ""); integration != "" {
			params.Set("integration-type", integration)
		}
		if healthy, ok := args["is_healthy"].(bool); ok {
			params.Set("is-healthy", strconv.FormatBool(healthy))
		}

		body, status, err := client.Get(ctx, "/log-sources", params, 200, 400)
		if err != nil {
			logging.Error("Tools", err, "Failed to fetch log sources")
			return envelope.Failf("failed to fetch log sources: %v", err)
		}
		if status == 400 {
			return envelope.Fail("bad request when fetching log sources")
		}

		results, next := pageOf(body)
		logging.Info("Tools", "Successfully retrieved %d log sources", len(results))

		fields := map[string]any{
			"sources":       results,
			"total_sources": len(results),
		}
		for k, v := range envelope.Page(next, stringArg(args, "cursor", "")) {
			fields[k] = v
		}
		return envelope.OK(fields)
	}
}
