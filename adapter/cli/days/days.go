package days

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/slotwise/adapter/cli"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/domain"
	"github.com/spf13/cobra"
)

var (
	fromDate  string
	toDate    string
	showTasks bool
	daysJSON  bool
)

// Cmd is the days command group.
var Cmd = &cobra.Command{
	Use:   "days",
	Short: "Inspect how busy your days are",
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank days by busyness",
	Long: `Rank every day in a date range, busiest first. The range defaults
to today through the following six days.

Examples:
  slotwise days rank
  slotwise days rank --from 2025-06-02 --to 2025-06-08 --tasks`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireUser()
		if err != nil {
			return err
		}
		if app.RankDaysHandler == nil {
			return fmt.Errorf("day ranking not configured")
		}

		start, end, err := dateRange(app.Location)
		if err != nil {
			return err
		}

		ranked, err := app.RankDaysHandler.Handle(cmd.Context(), queries.RankDaysQuery{
			UserID:    app.CurrentUserID,
			StartDate: start,
			EndDate:   end,
		})
		if err != nil {
			return fmt.Errorf("failed to rank days: %w", err)
		}

		if daysJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(ranked)
		}
		printRanking(cmd.OutOrStdout(), ranked)
		return nil
	},
}

func dateRange(loc *time.Location) (time.Time, time.Time, error) {
	start := domain.StartOfDay(time.Now().In(loc))
	if fromDate != "" {
		parsed, err := domain.ParseDate(fromDate, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
		}
		start = parsed
	}
	end := start.AddDate(0, 0, 6)
	if toDate != "" {
		parsed, err := domain.ParseDate(toDate, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
		}
		end = parsed
	}
	return start, end, nil
}

func printRanking(w io.Writer, ranked []domain.RankedDay) {
	if len(ranked) == 0 {
		fmt.Fprintln(w, "No days in range.")
		return
	}
	for i, day := range ranked {
		fmt.Fprintf(w, "%2d. %-28s busyness %5.1f  %d task(s), %d min, avg difficulty %.1f\n",
			i+1, day.FormattedDate, day.BusynessScore, day.TaskCount, day.TotalDurationMinutes, day.AverageDifficulty)
		if !showTasks {
			continue
		}
		for _, task := range day.Tasks {
			at := task.Time
			if at == "" {
				at = "--:--"
			}
			fmt.Fprintf(w, "      %s  %s (%d min, difficulty %d)\n", at, task.Title, task.DurationMinutes, task.Difficulty)
		}
	}

	if busiest, ok := domain.BusiestDay(ranked); ok && len(ranked) > 1 {
		least, _ := domain.LeastBusyDay(ranked)
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Busiest: %s. Lightest: %s.\n", busiest.FormattedDate, least.FormattedDate)
	}
}

func init() {
	rankCmd.Flags().StringVar(&fromDate, "from", "", "first date (YYYY-MM-DD), default today")
	rankCmd.Flags().StringVar(&toDate, "to", "", "last date (YYYY-MM-DD), default six days after --from")
	rankCmd.Flags().BoolVar(&showTasks, "tasks", false, "list the tasks of each day")
	rankCmd.Flags().BoolVar(&daysJSON, "json", false, "output as JSON")
	Cmd.AddCommand(rankCmd)
}
