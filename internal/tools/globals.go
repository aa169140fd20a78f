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

// GlobalTools returns the global helper tools backed by the given client.
// Global helpers are shared Python modules importable from any detection.
func GlobalTools(client *panther.Client) []registry.Tool {
	return []registry.Tool{
		{
			Definition: mcp.Tool{
				Name:        "list_global_helpers",
				Description: "List global helper modules available to Panther detections",
				InputSchema: inputSchema([]argSpec{
					{name: "cursor", typ: "string", description: "Optional cursor for pagination returned from a previous call"},
					{name: "page_size", typ: "integer", def: 25, extra: map[string]any{"minimum": 1}, description: "Number of results per page (max 50, default 25)"},
				}),
				Annotations: readOnly(),
			},
			Requires: permissions.AllOf(permissions.RuleRead),
			Handler:  listGlobalHelpersHandler(client),
		},
		{
			Definition: mcp.Tool{
				Name:        "get_global_helper",
				Description: "Get detailed information about a Panther global helper by ID, including its Python body",
				InputSchema: inputSchema([]argSpec{
					{name: "helper_id", typ: "string", required: true, description: "The ID of the global helper to fetch"},
				}),
				Annotations: readOnly(),
			},
			Requires: permissions.AllOf(permissions.RuleRead),
			Handler:  getGlobalHelperHandler(client),
		},
	}
}

func listGlobalHelpersHandler(client *panther.Client) registry.Handler {
	return func(ctx context.Context, args map[string]any) envelope.Envelope {
		logging.Info("Tools", "Fetching global helpers from Panther")

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

		body, status, err := client.Get(ctx, "/globals", params, 200, 400)
		if err != nil {
			logging.Error("Tools", err, "Failed to fetch global helpers")
			return envelope.Failf("failed to fetch global helpers: %v", err)
		}
		if status == 400 {
			return envelope.Fail("bad request when fetching global helpers")
		}

		results, next := pageOf(body)
		fields := map[string]any{
			"global_helpers":       results,
			"total_global_helpers": len(results),
		}
		for k, v := range envelope.Page(next, stringArg(args, "cursor", "")) {
			fields[k] = v
		}
		return envelope.OK(fields)
	}
}

func getGlobalHelperHandler(client *panther.Client) registry.Handler {
	return func(ctx context.Context, args map[string]any) envelope.Envelope {
		helperID := stringArg(args, "helper_id", "")
		logging.Info("Tools", "Fetching global helper details for ID: %s", helperID)

		body, status, err := client.Get(ctx, "/globals/"+url.PathEscape(helperID), nil, 200, 404)
		if err != nil {
			logging.Error("Tools", err, "Failed to fetch global helper details")
			return envelope.Failf("failed to fetch global helper details: %v", err)
		}
		if status == 404 {
			return envelope.Failf("no global helper found with ID: %s", helperID)
		}

		return envelope.OK(map[string]any{"global_helper": body})
	}
}
