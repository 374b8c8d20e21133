package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/slotwise/adapter/cli"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/domain"
)

type taskAddInput struct {
	Title           string `json:"title" jsonschema:"required"`
	Date            string `json:"date" jsonschema:"required"`
	Time            string `json:"time,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	Difficulty      int    `json:"difficulty,omitempty"`
}

type todoAddInput struct {
	Title    string `json:"title" jsonschema:"required"`
	DueDate  string `json:"due_date,omitempty"`
	Subtasks int    `json:"subtasks,omitempty"`
}

func registerTaskTools(srv *mcp.Server, deps ToolDependencies) {
	srv.Tool("tasks.add").
		Description("Schedule a task on a date (YYYY-MM-DD), optionally at a time (HH:MM). Duration defaults to 60 minutes and difficulty (1-5) to 3.").
		Handler(addTaskTool(deps.App))

	srv.Tool("todos.add").
		Description("Add a todo, optionally due on a date and split into a number of subtasks").
		Handler(addTodoTool(deps.App))
}

func addTaskTool(app *cli.App) func(context.Context, taskAddInput) (map[string]any, error) {
	return func(ctx context.Context, input taskAddInput) (map[string]any, error) {
		if err := requireUser(app); err != nil {
			return nil, err
		}
		if app.AddTaskHandler == nil {
			return nil, errors.New("adding tasks requires database connection")
		}
		if input.Date == "" {
			return nil, errors.New("date is required")
		}

		date, err := parseDate(input.Date, time.Time{}, app.Location)
		if err != nil {
			return nil, err
		}
		clock, err := parseOptionalClock(input.Time)
		if err != nil {
			return nil, err
		}

		result, err := app.AddTaskHandler.Handle(ctx, commands.AddTaskCommand{
			UserID:          app.CurrentUserID,
			Title:           input.Title,
			Date:            date,
			Time:            clock,
			DurationMinutes: input.DurationMinutes,
			Difficulty:      input.Difficulty,
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"id":   result.TaskID.String(),
			"date": domain.DateKey(date),
		}, nil
	}
}

func addTodoTool(app *cli.App) func(context.Context, todoAddInput) (map[string]any, error) {
	return func(ctx context.Context, input todoAddInput) (map[string]any, error) {
		if err := requireUser(app); err != nil {
			return nil, err
		}
		if app.AddTodoHandler == nil {
			return nil, errors.New("adding todos requires database connection")
		}

		command := commands.AddTodoCommand{
			UserID:   app.CurrentUserID,
			Title:    input.Title,
			Subtasks: input.Subtasks,
		}
		if input.DueDate != "" {
			due, err := parseDate(input.DueDate, time.Time{}, app.Location)
			if err != nil {
				return nil, err
			}
			command.DueDate = &due
		}

		result, err := app.AddTodoHandler.Handle(ctx, command)
		if err != nil {
			return nil, err
		}
		subtasks := make([]string, len(result.SubtaskIDs))
		for i, id := range result.SubtaskIDs {
			subtasks[i] = id.String()
		}
		return map[string]any{
			"id":       result.TodoID.String(),
			"subtasks": subtasks,
		}, nil
	}
}
