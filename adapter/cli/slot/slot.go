package slot

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/felixgeelhaar/slotwise/adapter/cli"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/domain"
	"github.com/spf13/cobra"
)

var (
	duration int
	slotJSON bool
)

// Cmd is the slot command group.
var Cmd = &cobra.Command{
	Use:   "slot",
	Short: "Find time for a task",
}

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Suggest the best slot for a task",
	Long: `Suggest the best time in the coming days for a task of the given
duration. Without --duration the preferred task length is used.

Examples:
  slotwise slot find
  slotwise slot find --duration 90`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireUser()
		if err != nil {
			return err
		}
		if app.FindBestSlotHandler == nil {
			return fmt.Errorf("slot search not configured")
		}
		if duration < 0 || duration > domain.MaxTaskDurationMinutes {
			return fmt.Errorf("--duration must be between 0 and %d minutes", domain.MaxTaskDurationMinutes)
		}

		suggestion, err := app.FindBestSlotHandler.Handle(cmd.Context(), queries.FindBestSlotQuery{
			UserID:          app.CurrentUserID,
			DurationMinutes: duration,
		})
		if err != nil {
			return fmt.Errorf("failed to find a slot: %w", err)
		}

		if slotJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(suggestion)
		}
		printSuggestion(cmd.OutOrStdout(), suggestion)
		return nil
	},
}

func printSuggestion(w io.Writer, s *domain.ScheduleSuggestion) {
	best := s.BestSlot
	if s.IsFallback {
		fmt.Fprintln(w, "No free slot found. Fallback suggestion:")
	} else {
		fmt.Fprintln(w, "Best slot:")
	}
	fmt.Fprintf(w, "  %s %s-%s  score %.1f\n", best.Date, best.StartTime, best.EndTime, best.Score)
	if !s.IsFallback {
		fmt.Fprintf(w, "  free %.0f%%, %d todo(s) due, productivity %.1f\n",
			best.Metrics.FreeTimePercentage, best.Metrics.TodoCount, best.Metrics.ProductivityScore)
	}

	if len(s.Alternatives) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Alternatives:")
	for _, alt := range s.Alternatives {
		fmt.Fprintf(w, "  %s %s-%s  score %.1f\n", alt.Date, alt.StartTime, alt.EndTime, alt.Score)
	}
}

func init() {
	findCmd.Flags().IntVarP(&duration, "duration", "d", 0, "task duration in minutes")
	findCmd.Flags().BoolVar(&slotJSON, "json", false, "output as JSON")
	Cmd.AddCommand(findCmd)
}
