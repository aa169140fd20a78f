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

// RuleTools returns the detection rule tools backed by the given client.
func RuleTools(client *panther.Client) []registry.Tool {
	return []registry.Tool{
		{
			Definition: mcp.Tool{
				Name:        "list_rules",
				Description: "List all real-time detection rules from Panther",
				InputSchema: inputSchema([]argSpec{
					{name: "cursor", typ: "string", description: "Optional cursor for pagination returned from a previous call"},
					{name: "page_size", typ: "integer", def: 25, extra: map[string]any{"minimum": 1}, description: "Number of results per page (max 50, default 25)"},
				}),
				Annotations: readOnly(),
			},
			Requires: permissions.AllOf(permissions.RuleRead),
			Handler:  listRulesHandler(client),
		},
		{
			Definition: mcp.Tool{
				Name:        "get_rule",
				Description: "Get detailed information about a Panther detection rule, including its Python body",
				InputSchema: inputSchema([]argSpec{
					{name: "rule_id", typ: "string", required: true, description: "The ID of the rule to fetch"},
				}),
				Annotations: readOnly(),
			},
			Requires: permissions.AllOf(permissions.RuleRead),
			Handler:  getRuleHandler(client),
		},
	}
}

func listRulesHandler(client *panther.Client) registry.Handler {
	return func(ctx context.Context, args map[string]any) envelope.Envelope {
		logging.Info("Tools", "Fetching rules from Panther")

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

		body, status, err := client.Get(ctx, "/rules", params, 200, 400)
		if err != nil {
			logging.Error("Tools", err, "Failed to fetch rules")
			return envelope.Failf("failed to fetch rules: %v", err)
		}
		if status == 400 {
			return envelope.Fail("bad request when fetching rules")
		}

		results, next := pageOf(body)
		logging.Info("Tools", "Successfully retrieved %d rules", len(results))

		fields := map[string]any{
			"rules":       results,
			"total_rules": len(results),
		}
		for k, v := range envelope.Page(next, stringArg(args, "cursor", "")) {
			fields[k] = v
		}
		return envelope.OK(fields)
	}
}

func getRuleHandler(client *panther.Client) registry.Handler {
	return func(ctx context.Context, args map[string]any) envelope.Envelope {
		ruleID := stringArg(args, "rule_id", "")
		logging.Info("Tools", "Fetching rule details for ID: %s", ruleID)

		body, status, err := client.Get(ctx, "/rules/"+url.PathEscape(ruleID), nil, 200, 404)
		if err != nil {
			logging.Error("Tools", err, "Failed to fetch rule details")
			return envelope.Failf("failed to fetch rule details: %v", err)
		}
		if status == 404 {
			return envelope.Failf("no rule found with ID: %s", ruleID)
		}

		return envelope.OK(map[string]any{"rule": body})
	}
}
