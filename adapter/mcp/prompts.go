package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common scheduling workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("plan_task").
		Description("Find a good time for a new task and schedule it.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			task := args["task"]
			if task == "" {
				task = "a new task"
			}
			return userPrompt("Plan a Task", fmt.Sprintf(`Help me find time for %s. Please:

1. Estimate how long it takes and how hard it is (difficulty 1-5)
2. Call slots.find with that duration
3. Show the best slot and the alternatives with their scores
4. If the result is a fallback, say that no free slot was found in the coming days

Once I pick a slot, schedule it with tasks.add using its date and start time.`, task)), nil
		})

	srv.Prompt("weekly_load").
		Description("Review how busy the coming week is and rebalance heavy days.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Weekly Load Review", `Let's review my week. Please:

1. Read the slotwise://days/week resource
2. Check my working hours in slotwise://preferences

Then:
- Name the busiest and the lightest day
- Point out days whose busyness is far above the others
- Suggest which tasks could move to a lighter day
- Use slots.find to check there is room before suggesting a move`), nil
		})

	return nil
}

func userPrompt(description, text string) *mcp.PromptResult {
	return &mcp.PromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: text,
				},
			},
		},
	}
}
