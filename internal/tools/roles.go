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

// RoleTools returns the role inspection tools backed by the given client.
func RoleTools(client *panther.Client) []registry.Tool {
	return []registry.Tool{
		{
			Definition: mcp.Tool{
				Name:        "list_roles",
				Description: "List all roles in the Panther instance, including the permissions each role grants",
				InputSchema: inputSchema([]argSpec{
					{name: "cursor", typ: "string", description: "Optional cursor for pagination returned from a previous call"},
					{name: "page_size", typ: "integer", def: 25, extra: map[string]any{"minimum": 1}, description: "Number of results per page (max 50, default 25)"},
				}),
				Annotations: readOnly(),
			},
			Requires: permissions.AllOf(permissions.UserRead),
			Handler:  listRolesHandler(client),
		},
		{
			Definition: mcp.Tool{
				Name:        "get_role",
				Description: "Get detailed information about a Panther role by ID",
				InputSchema: inputSchema([]argSpec{
					{name: "role_id", typ: "string", required: true, description: "The ID of the role to fetch"},
				}),
				Annotations: readOnly(),
			},
			Requires: permissions.AllOf(permissions.UserRead),
			Handler:  getRoleHandler(client),
		},
	}
}

func listRolesHandler(client *panther.Client) registry.Handler {
	return func(ctx context.Context, args map[string]any) envelope.Envelope {
		logging.Info("Tools", "Fetching roles from Panther")

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

		body, status, err := client.Get(ctx, "/roles", params, 200, 400)
		if err != nil {
			logging.Error("Tools", err, "Failed to fetch roles")
			return envelope.Failf("failed to fetch roles: %v", err)
		}
		if status == 400 {
			return envelope.Fail("bad request when fetching roles")
		}

		results, next := pageOf(body)
		fields := map[string]any{
			"roles":       results,
			"total_roles": len(results),
		}
		for k, v := range envelope.Page(next, stringArg(args, "cursor", "")) {
			fields[k] = v
		}
		return envelope.OK(fields)
	}
}

func getRoleHandler(client *panther.Client) registry.Handler {
	return func(ctx context.Context, args map[string]any) envelope.Envelope {
		roleID := stringArg(args, "role_id", "")
		logging.Info("Tools", "Fetching role details for ID: %s", roleID)

		body, status, err := client.Get(ctx, "/roles/"+url.PathEscape(roleID), nil, 200, 404)
		if err != nil {
			logging.Error("Tools", err, "Failed to fetch role details")
			return envelope.Failf("failed to fetch role details: %v", err)
		}
		if status == 404 {
			return envelope.Failf("no role found with ID: %s", roleID)
		}

		return envelope.OK(map[string]any{"role": body})
	}
}
