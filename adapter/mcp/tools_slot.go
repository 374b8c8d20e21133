package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/slotwise/adapter/cli"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/domain"
)

type slotsFindInput struct {
	DurationMinutes int `json:"duration_minutes,omitempty"`
}

type daysRankInput struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

type daysRankOutput struct {
	Days      []domain.RankedDay `json:"days"`
	Busiest   string             `json:"busiest,omitempty"`
	LeastBusy string             `json:"least_busy,omitempty"`
}

func registerSlotTools(srv *mcp.Server, deps ToolDependencies) {
	srv.Tool("slots.find").
		Description("Suggest the best time in the coming days for a task of the given duration in minutes. Omit the duration to use the preferred task length.").
		Handler(findSlotTool(deps.App))

	srv.Tool("days.rank").
		Description("Rank every day between from and to (YYYY-MM-DD, inclusive) by busyness, busiest first. Defaults to the next seven days.").
		Handler(rankDaysTool(deps.App))
}

func findSlotTool(app *cli.App) func(context.Context, slotsFindInput) (*domain.ScheduleSuggestion, error) {
	return func(ctx context.Context, input slotsFindInput) (*domain.ScheduleSuggestion, error) {
		if err := requireUser(app); err != nil {
			return nil, err
		}
		if app.FindBestSlotHandler == nil {
			return nil, errors.New("slot search requires database connection")
		}
		if input.DurationMinutes < 0 || input.DurationMinutes > domain.MaxTaskDurationMinutes {
			return nil, fmt.Errorf("duration_minutes must be between 0 and %d", domain.MaxTaskDurationMinutes)
		}
		return app.FindBestSlotHandler.Handle(ctx, queries.FindBestSlotQuery{
			UserID:          app.CurrentUserID,
			DurationMinutes: input.DurationMinutes,
		})
	}
}

func rankDaysTool(app *cli.App) func(context.Context, daysRankInput) (*daysRankOutput, error) {
	return func(ctx context.Context, input daysRankInput) (*daysRankOutput, error) {
		if err := requireUser(app); err != nil {
			return nil, err
		}
		if app.RankDaysHandler == nil {
			return nil, errors.New("day ranking requires database connection")
		}

		start, err := parseDate(input.From, time.Now(), app.Location)
		if err != nil {
			return nil, err
		}
		end, err := parseDate(input.To, start.AddDate(0, 0, 6), app.Location)
		if err != nil {
			return nil, err
		}

		ranked, err := app.RankDaysHandler.Handle(ctx, queries.RankDaysQuery{
			UserID:    app.CurrentUserID,
			StartDate: start,
			EndDate:   end,
		})
		if err != nil {
			return nil, err
		}

		out := &daysRankOutput{Days: ranked}
		if busiest, ok := domain.BusiestDay(ranked); ok {
			out.Busiest = busiest.Date
		}
		if least, ok := domain.LeastBusyDay(ranked); ok {
			out.LeastBusy = least.Date
		}
		return out, nil
	}
}
