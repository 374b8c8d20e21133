package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterResources registers MCP resources that expose scheduling data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	app := deps.App

	srv.Resource("slotwise://preferences").
		Name("Preferences").
		Description("Working hours, work days, breaks and productive hours").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			prefs, err := getPreferencesTool(app)(ctx, struct{}{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, prefs)
		})

	srv.Resource("slotwise://days/week").
		Name("Week ranking").
		Description("The next seven days ranked by busyness").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			ranked, err := rankDaysTool(app)(ctx, daysRankInput{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, ranked)
		})

	srv.Resource("slotwise://slots/next").
		Name("Next best slot").
		Description("The best slot for a task of the preferred length").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			suggestion, err := findSlotTool(app)(ctx, slotsFindInput{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, suggestion)
		})

	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
