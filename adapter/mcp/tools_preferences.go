package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/slotwise/adapter/cli"
	prefsDomain "github.com/felixgeelhaar/slotwise/internal/preferences/domain"
)

type breakInput struct {
	Start string `json:"start" jsonschema:"required"`
	End   string `json:"end" jsonschema:"required"`
	Label string `json:"label,omitempty"`
}

type preferencesUpdateInput struct {
	WorkStart            string       `json:"work_start,omitempty"`
	WorkEnd              string       `json:"work_end,omitempty"`
	WorkDays             []int        `json:"work_days,omitempty"`
	ProductiveStart      string       `json:"productive_start,omitempty"`
	ProductiveEnd        string       `json:"productive_end,omitempty"`
	BreakTimes           []breakInput `json:"break_times,omitempty"`
	ClearBreaks          bool         `json:"clear_breaks,omitempty"`
	PreferredDuration    *int         `json:"preferred_duration,omitempty"`
	MinBreakBetweenTasks *int         `json:"min_break_between_tasks,omitempty"`
	MaxConsecutiveTasks  *int         `json:"max_consecutive_tasks,omitempty"`
}

func registerPreferenceTools(srv *mcp.Server, deps ToolDependencies) {
	srv.Tool("preferences.get").
		Description("Get the working hours, work days, breaks and productive hours used for scheduling").
		Handler(getPreferencesTool(deps.App))

	srv.Tool("preferences.update").
		Description("Update scheduling preferences. Times are HH:MM, work days are 0 (Sunday) to 6 (Saturday). Omitted fields keep their value.").
		Handler(updatePreferencesTool(deps.App))
}

func getPreferencesTool(app *cli.App) func(context.Context, struct{}) (*prefsDomain.Preferences, error) {
	return func(ctx context.Context, _ struct{}) (*prefsDomain.Preferences, error) {
		if err := requireUser(app); err != nil {
			return nil, err
		}
		if app.PreferencesService == nil {
			return nil, errors.New("preferences require database connection")
		}
		prefs, err := app.PreferencesService.GetPreferences(ctx, app.CurrentUserID)
		if err != nil {
			return nil, err
		}
		return &prefs, nil
	}
}

func updatePreferencesTool(app *cli.App) func(context.Context, preferencesUpdateInput) (*prefsDomain.Preferences, error) {
	return func(ctx context.Context, input preferencesUpdateInput) (*prefsDomain.Preferences, error) {
		if err := requireUser(app); err != nil {
			return nil, err
		}
		if app.PreferencesService == nil {
			return nil, errors.New("preferences require database connection")
		}

		patch, err := input.patch()
		if err != nil {
			return nil, err
		}
		prefs, err := app.PreferencesService.UpdatePreferences(ctx, app.CurrentUserID, patch)
		if err != nil {
			return nil, err
		}
		return &prefs, nil
	}
}

func (in preferencesUpdateInput) patch() (prefsDomain.Patch, error) {
	var (
		patch prefsDomain.Patch
		err   error
	)
	if patch.WorkHours, err = parseOptionalRange(in.WorkStart, in.WorkEnd, "work hours"); err != nil {
		return patch, err
	}
	if patch.ProductiveHours, err = parseOptionalRange(in.ProductiveStart, in.ProductiveEnd, "productive hours"); err != nil {
		return patch, err
	}

	if len(in.WorkDays) > 0 {
		patch.WorkDays = make([]time.Weekday, len(in.WorkDays))
		for i, d := range in.WorkDays {
			if d < 0 || d > 6 {
				return patch, fmt.Errorf("invalid work day %d: must be 0-6", d)
			}
			patch.WorkDays[i] = time.Weekday(d)
		}
	}

	if in.ClearBreaks || len(in.BreakTimes) > 0 {
		breaks := make([]prefsDomain.BreakTime, 0, len(in.BreakTimes))
		for _, b := range in.BreakTimes {
			r, err := prefsDomain.NewTimeRange(b.Start, b.End)
			if err != nil {
				return patch, fmt.Errorf("invalid break %q: %w", b.Label, err)
			}
			breaks = append(breaks, prefsDomain.BreakTime{Start: r.Start, End: r.End, Label: b.Label})
		}
		patch.BreakTimes = &breaks
	}

	if in.PreferredDuration != nil || in.MinBreakBetweenTasks != nil || in.MaxConsecutiveTasks != nil {
		patch.TaskPreferences = &prefsDomain.TaskPreferencesPatch{
			PreferredDuration:    in.PreferredDuration,
			MinBreakBetweenTasks: in.MinBreakBetweenTasks,
			MaxConsecutiveTasks:  in.MaxConsecutiveTasks,
		}
	}
	return patch, nil
}
