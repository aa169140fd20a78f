package tools

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ari-wein/mcp-panther/internal/envelope"
	"github.com/ari-wein/mcp-panther/internal/panther"
	"github.com/ari-wein/mcp-panther/internal/permissions"
	"github.com/ari-wein/mcp-panther/internal/registry"
	"github.com/ari-wein/mcp-panther/pkg/logging"
)

const maxAlertEventsLim = 10

var (
	alertStatuses = []string{"OPEN", "TRIAGED", "RESOLVED", "CLOSED"}
	alertTypes    = []string{"ALERT", "DETECTION_ERROR", "SYSTEM_ERROR"}

	// Valid subtypes depend on the alert type; SYSTEM_ERROR admits none.
	validSubtypes = map[string][]string{
		"ALERT":           {"POLICY", "RULE", "SCHEDULED_RULE"},
		"DETECTION_ERROR": {"RULE_ERROR", "SCHEDULED_RULE_ERROR"},
		"SYSTEM_ERROR":    {},
	}
)

// AlertTools returns the alert management tools backed by the given client.
func AlertTools(client *panther.Client) []registry.Tool {
	return []registry.Tool{
		{
			Definition: mcp.Tool{
				Name:        "list_alerts",
				Description: "List alerts from Panther with comprehensive filtering options. Requires either a detection_id or a date range; when neither start_date nor end_date is given, the current UTC day is used.",
				InputSchema: inputSchema([]argSpec{
					{name: "start_date", typ: "string", description: "Optional start date in ISO-8601 format (e.g. 2024-03-20T00:00:00Z)"},
					{name: "end_date", typ: "string", description: "Optional end date in ISO-8601 format (e.g. 2024-03-21T00:00:00Z)"},
					{name: "severities", typ: "array", items: "string", description: "Optional list of severities to filter by (CRITICAL, HIGH, MEDIUM, LOW, INFO)"},
					{name: "statuses", typ: "array", items: "string", description: "Optional list of statuses to filter by (OPEN, TRIAGED, RESOLVED, CLOSED)"},
					{name: "cursor", typ: "string", description: "Optional cursor for pagination returned from a previous call"},
					{name: "detection_id", typ: "string", description: "Optional detection ID to filter alerts by; if provided, the date range is not required"},
					{name: "event_count_max", typ: "integer", description: "Optional maximum number of events an alert may contain"},
					{name: "event_count_min", typ: "integer", description: "Optional minimum number of events an alert must contain"},
					{name: "log_sources", typ: "array", items: "string", description: "Optional list of log-source IDs to filter alerts by"},
					{name: "log_types", typ: "array", items: "string", description: "Optional list of log-type names to filter alerts by"},
					{name: "name_contains", typ: "string", description: "Optional substring to match within alert titles"},
					{name: "page_size", typ: "integer", def: 25, extra: map[string]any{"minimum": 1}, description: "Number of results per page (max 50, default 25)"},
					{name: "resource_types", typ: "array", items: "string", description: "Optional list of AWS resource-type names to filter alerts by"},
					{name: "subtypes", typ: "array", items: "string", description: "Optional list of alert subtypes; valid values depend on alert_type"},
					{name: "alert_type", typ: "string", def: "ALERT", enum: alertTypes, description: "Type of alerts to return"},
				}),
				Annotations: readOnly(),
			},
			Requires: permissions.AllOf(permissions.AlertRead),
			Handler:  listAlertsHandler(client),
		},
		{
			Definition: mcp.Tool{
				Name:        "get_alert",
				Description: "Get detailed information about a specific Panther alert by ID",
				InputSchema: inputSchema([]argSpec{
					{name: "alert_id", typ: "string", required: true, description: "The ID of the alert to fetch"},
				}),
				Annotations: readOnly(),
			},
			Requires: permissions.AllOf(permissions.AlertRead),
			Handler:  getAlertHandler(client),
		},
		{
			Definition: mcp.Tool{
				Name:        "list_alert_comments",
				Description: "Get all comments for a specific Panther alert by ID",
				InputSchema: inputSchema([]argSpec{
					{name: "alert_id", typ: "string", required: true, description: "The ID of the alert to get comments for"},
					{name: "limit", typ: "integer", def: 25, extra: map[string]any{"minimum": 1}, description: "Maximum number of comments to return (default 25)"},
				}),
				Annotations: readOnly(),
			},
			Requires: permissions.AllOf(permissions.AlertRead),
			Handler:  listAlertCommentsHandler(client),
		},
		{
			Definition: mcp.Tool{
				Name:        "update_alert_status",
				Description: "Update the status of one or more Panther alerts",
				InputSchema: inputSchema([]argSpec{
					{name: "alert_ids", typ: "array", items: "string", required: true, description: "List of alert IDs to update"},
					{name: "status", typ: "string", required: true, enum: alertStatuses, description: "The new status for the alerts"},
				}),
				Annotations: destructive(true),
			},
			Requires: permissions.AllOf(permissions.AlertModify),
			Handler:  updateAlertStatusHandler(client),
		},
		{
			Definition: mcp.Tool{
				Name:        "add_alert_comment",
				Description: "Add a comment to a Panther alert. Comments support Markdown formatting.",
				InputSchema: inputSchema([]argSpec{
					{name: "alert_id", typ: "string", required: true, description: "The ID of the alert to comment on"},
					{name: "comment", typ: "string", required: true, description: "The comment text to add"},
				}),
				Annotations: destructive(false),
			},
			Requires: permissions.AllOf(permissions.AlertModify),
			Handler:  addAlertCommentHandler(client),
		},
		{
			Definition: mcp.Tool{
				Name:        "update_alert_assignee",
				Description: "Update the assignee of one or more alerts through the assignee's ID",
				InputSchema: inputSchema([]argSpec{
					{name: "alert_ids", typ: "array", items: "string", required: true, description: "List of alert IDs to update"},
					{name: "assignee_id", typ: "string", required: true, description: "The ID of the user to assign the alerts to"},
				}),
				Annotations: destructive(true),
			},
			Requires: permissions.AllOf(permissions.AlertModify),
			Handler:  updateAlertAssigneeHandler(client),
		},
		{
			Definition: mcp.Tool{
				Name:        "get_alert_events",
				Description: "Get events for a specific Panther alert by ID. Returns the first events for an alert on a best-effort basis; order is not guaranteed. Does not support pagination, to prevent long-running expensive queries.",
				InputSchema: inputSchema([]argSpec{
					{name: "alert_id", typ: "string", required: true, description: "The ID of the alert to get events for"},
					{name: "limit", typ: "integer", def: 10, extra: map[string]any{"minimum": 1}, description: "Maximum number of events to return (default 10, maximum 10)"},
				}),
				Annotations: readOnly(),
			},
			Requires: permissions.AllOf(permissions.AlertRead),
			Handler:  getAlertEventsHandler(client),
		},
	}
}

// checkSubtypes enforces the alert_type/subtypes combination rules the
// Panther API itself would reject with an opaque 400.
func checkSubtypes(alertType string, subtypes []string) error {
	if len(subtypes) == 0 {
		return nil
	}
	if alertType == "SYSTEM_ERROR" {
		return fmt.Errorf("subtypes are not allowed when alert_type is SYSTEM_ERROR")
	}

	allowed := validSubtypes[alertType]
	var invalid []string
	for _, st := range subtypes {
		found := false
		for _, ok := range allowed {
			if st == ok {
				found = true
				break
			}
		}
		if !found {
			invalid = append(invalid, st)
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid subtypes %v for alert_type=%s, valid subtypes are: %v", invalid, alertType, allowed)
	}
	return nil
}

func listAlertsHandler(client *panther.Client) registry.Handler {
	return func(ctx context.Context, args map[string]any) envelope.Envelope {
		logging.Info("Tools", "Fetching alerts from Panther")

		pageSize := intArg(args, "page_size", defaultPageSize)
		if pageSize > maxPageSize {
			logging.Warn("Tools", "page_size %d exceeds maximum of %d, using %d instead", pageSize, maxPageSize, maxPageSize)
			pageSize = maxPageSize
		}

		alertType := stringArg(args, "alert_type", "ALERT")
		subtypes := stringSliceArg(args, "subtypes", nil)
		if err := checkSubtypes(alertType, subtypes); err != nil {
			return envelope.Failf("failed to fetch alerts: %v", err)
		}

		params := url.Values{}
		params.Set("type", alertType)
		params.Set("limit", strconv.Itoa(pageSize))
		params.Set("sort-dir", "desc")

		// The required filter is either a detection ID or a date range,
		// never both; mixing them would invalidate the cursor contract.
		if detectionID := stringArg(args, "detection_id", ""); detectionID != "" {
			params.Set("detection-id", detectionID)
			logging.Debug("Tools", "Filtering by detection ID: %s", detectionID)
		} else {
			startDate := stringArg(args, "start_date", "")
			endDate := stringArg(args, "end_date", "")
			defaultStart, defaultEnd := panther.TodayRange()
			if startDate == "" {
				startDate = defaultStart
			}
			if endDate == "" {
				endDate = defaultEnd
			}
			params.Set("created-after", startDate)
			params.Set("created-before", endDate)
		}

		cursor := stringArg(args, "cursor", "")
		if cursor != "" {
			params.Set("cursor", cursor)
			logging.Debug("Tools", "Using cursor for pagination: %s", cursor)
		}

		for _, severity := range stringSliceArg(args, "severities", []string{"CRITICAL", "HIGH", "MEDIUM", "LOW"}) {
			params.Add("severity", severity)
		}
		for _, status := range stringSliceArg(args, "statuses", alertStatuses) {
			params.Add("status", status)
		}
		if _, ok := args["event_count_max"]; ok {
			params.Set("event-count-max", strconv.Itoa(intArg(args, "event_count_max", 0)))
		}
		if _, ok := args["event_count_min"]; ok {
			params.Set("event-count-min", strconv.Itoa(intArg(args, "event_count_min", 0)))
		}
		for _, source := range stringSliceArg(args, "log_sources", nil) {
			params.Add("log-source", source)
		}
		for _, logType := range stringSliceArg(args, "log_types", nil) {
			params.Add("log-type", logType)
		}
		if nameContains := stringArg(args, "name_contains", ""); nameContains != "" {
			params.Set("name-contains", nameContains)
		}
		for _, resourceType := range stringSliceArg(args, "resource_types", nil) {
			params.Add("resource-type", resourceType)
		}
		for _, subtype := range subtypes {
			params.Add("sub-type", subtype)
		}

		body, status, err := client.Get(ctx, "/alerts", params, 200, 400)
		if err != nil {
			logging.Error("Tools", err, "Failed to fetch alerts")
			return envelope.Failf("failed to fetch alerts: %v", err)
		}
		if status == 400 {
			return envelope.Fail("bad request when fetching alerts")
		}

		results, next := pageOf(body)
		logging.Info("Tools", "Successfully retrieved %d alerts", len(results))

		fields := map[string]any{
			"alerts":       results,
			"total_alerts": len(results),
		}
		for k, v := range envelope.Page(next, cursor) {
			fields[k] = v
		}
		return envelope.OK(fields)
	}
}

func getAlertHandler(client *panther.Client) registry.Handler {
	return func(ctx context.Context, args map[string]any) envelope.Envelope {
		alertID := stringArg(args, "alert_id", "")
		logging.Info("Tools", "Fetching alert details for ID: %s", alertID)

		body, status, err := client.Get(ctx, "/alerts/"+url.PathEscape(alertID), nil, 200, 400, 404)
		if err != nil {
			logging.Error("Tools", err, "Failed to fetch alert details")
			return envelope.Failf("failed to fetch alert details: %v", err)
		}
		switch status {
		case 404:
			return envelope.Failf("no alert found with ID: %s", alertID)
		case 400:
			return envelope.Failf("bad request when fetching alert ID: %s", alertID)
		}

		return envelope.OK(map[string]any{"alert": body})
	}
}

func listAlertCommentsHandler(client *panther.Client) registry.Handler {
	return func(ctx context.Context, args map[string]any) envelope.Envelope {
		alertID := stringArg(args, "alert_id", "")
		logging.Info("Tools", "Fetching comments for alert ID: %s", alertID)

		params := url.Values{}
		params.Set("alert-id", alertID)
		params.Set("limit", strconv.Itoa(intArg(args, "limit", 25)))

		body, status, err := client.Get(ctx, "/alert-comments", params, 200, 400)
		if err != nil {
			logging.Error("Tools", err, "Failed to fetch alert comments")
			return envelope.Failf("failed to fetch alert comments: %v", err)
		}
		if status == 400 {
			return envelope.Failf("bad request when fetching comments for alert ID: %s", alertID)
		}

		comments, _ := pageOf(body)
		return envelope.OK(map[string]any{
			"comments":       comments,
			"total_comments": len(comments),
		})
	}
}

func updateAlertStatusHandler(client *panther.Client) registry.Handler {
	return func(ctx context.Context, args map[string]any) envelope.Envelope {
		alertIDs := stringSliceArg(args, "alert_ids", nil)
		status := stringArg(args, "status", "")
		logging.Info("Tools", "Updating status for %d alerts to %s", len(alertIDs), status)

		body := map[string]any{
			"ids":    alertIDs,
			"status": status,
		}
		_, code, err := client.Patch(ctx, "/alerts", body, 204, 400, 404)
		if err != nil {
			logging.Error("Tools", err, "Failed to update alert status")
			return envelope.Failf("failed to update alert status: %v", err)
		}
		switch code {
		case 404:
			return envelope.Failf("one or more alerts not found: %v", alertIDs)
		case 400:
			return envelope.Failf("bad request when updating alert status: %v", alertIDs)
		}

		return envelope.OK(map[string]any{"alerts": alertIDs})
	}
}

func addAlertCommentHandler(client *panther.Client) registry.Handler {
	return func(ctx context.Context, args map[string]any) envelope.Envelope {
		alertID := stringArg(args, "alert_id", "")
		logging.Info("Tools", "Adding comment to alert %s", alertID)

		body := map[string]any{
			"alertId": alertID,
			"body":    stringArg(args, "comment", ""),
			"format":  "PLAIN_TEXT",
		}
		comment, status, err := client.Post(ctx, "/alert-comments", body, 200, 400, 404)
		if err != nil {
			logging.Error("Tools", err, "Failed to add alert comment")
			return envelope.Failf("failed to add alert comment: %v", err)
		}
		switch status {
		case 404:
			return envelope.Failf("alert not found: %s", alertID)
		case 400:
			return envelope.Failf("bad request when adding comment to alert %s", alertID)
		}

		return envelope.OK(map[string]any{"comment": comment})
	}
}

func updateAlertAssigneeHandler(client *panther.Client) registry.Handler {
	return func(ctx context.Context, args map[string]any) envelope.Envelope {
		alertIDs := stringSliceArg(args, "alert_ids", nil)
		assigneeID := stringArg(args, "assignee_id", "")
		logging.Info("Tools", "Updating assignee for %d alerts to user %s", len(alertIDs), assigneeID)

		body := map[string]any{
			"ids":      alertIDs,
			"assignee": assigneeID,
		}
		_, status, err := client.Patch(ctx, "/alerts", body, 204, 400, 404)
		if err != nil {
			logging.Error("Tools", err, "Failed to update alert assignee")
			return envelope.Failf("failed to update alert assignee: %v", err)
		}
		switch status {
		case 404:
			return envelope.Failf("one or more alerts not found: %v", alertIDs)
		case 400:
			return envelope.Failf("bad request when updating alert assignee: %v", alertIDs)
		}

		return envelope.OK(map[string]any{"alerts": alertIDs})
	}
}

func getAlertEventsHandler(client *panther.Client) registry.Handler {
	return func(ctx context.Context, args map[string]any) envelope.Envelope {
		alertID := stringArg(args, "alert_id", "")
		logging.Info("Tools", "Fetching events for alert ID: %s", alertID)

		limit := intArg(args, "limit", 10)
		if limit > maxAlertEventsLim {
			logging.Warn("Tools", "limit %d exceeds maximum of %d, using %d instead", limit, maxAlertEventsLim, maxAlertEventsLim)
			limit = maxAlertEventsLim
		}

		params := url.Values{}
		params.Set("limit", strconv.Itoa(limit))

		body, status, err := client.Get(ctx, "/alerts/"+url.PathEscape(alertID)+"/events", params, 200, 404)
		if err != nil {
			logging.Error("Tools", err, "Failed to fetch alert events")
			return envelope.Failf("failed to fetch alert events: %v", err)
		}
		if status == 404 {
			return envelope.Failf("no alert found with ID: %s", alertID)
		}

		events, _ := pageOf(body)
		return envelope.OK(map[string]any{
			"events":       events,
			"total_events": len(events),
		})
	}
}
