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

// UserTools returns the user management tools backed by the given client.
func UserTools(client *panther.Client) []registry.Tool {
	return []registry.Tool{
		{
			Definition: mcp.Tool{
				Name:        "list_users",
				Description: "List all users in the Panther instance",
				InputSchema: inputSchema([]argSpec{
					{name: "cursor", typ: "string", description: "Optional cursor for pagination returned from a previous call"},
					{name: "page_size", typ: "integer", def: 25, extra: map[string]any{"minimum": 1}, description: "Number of results per page (max 50, default 25)"},
				}),
				Annotations: readOnly(),
			},
			Requires: permissions.AllOf(permissions.UserRead),
			Handler:  listUsersHandler(client),
		},
		{
			Definition: mcp.Tool{
				Name:        "get_user",
				Description: "Get detailed information about a Panther user by ID",
				InputSchema: inputSchema([]argSpec{
					{name: "user_id", typ: "string", required: true, description: "The ID of the user to fetch"},
				}),
				Annotations: readOnly(),
			},
			Requires: permissions.AllOf(permissions.UserRead),
			Handler:  getUserHandler(client),
		},
	}
}

func listUsersHandler(client *panther.Client) registry.Handler {
	return func(ctx context.Context, args map[string]any) envelope.Envelope {
		logging.Info("Tools", "Fetching users from Panther")

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

		body, status, err := client.Get(ctx, "/users", params, 200, 400)
		if err != nil {
			logging.Error("Tools", err, "Failed to fetch users")
			return envelope.Failf("failed to fetch users: %v", err)
		}
		if status == 400 {
			return envelope.Fail("bad request when fetching users")
		}

		results, next := pageOf(body)
		fields := map[string]any{
			"users":       results,
			"total_users": len(results),
		}
		for k, v := range envelope.Page(next, stringArg(args, "cursor", "")) {
			fields[k] = v
		}
		return envelope.OK(fields)
	}
}

func getUserHandler(client *panther.Client) registry.Handler {
	return func(ctx context.Context, args map[string]any) envelope.Envelope {
		userID := stringArg(args, "user_id", "")
		logging.Info("Tools", "Fetching user details for ID: %s", userID)

		body, status, err := client.Get(ctx, "/users/"+url.PathEscape(userID), nil, 200, 404)
		if err != nil {
			logging.Error("Tools", err, "Failed to fetch user details")
			return envelope.Failf("failed to fetch user details: %v", err)
		}
		if status == 404 {
			return envelope.Failf("no user found with ID: %s", userID)
		}

		return envelope.OK(map[string]any{"user": body})
	}
}
