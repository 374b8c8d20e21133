package task

import (
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/slotwise/adapter/cli"
	prefsDomain "github.com/felixgeelhaar/slotwise/internal/preferences/domain"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/domain"
	"github.com/spf13/cobra"
)

var (
	title      string
	date       string
	clock      string
	duration   int
	difficulty int
	taskJSON   bool
)

// Cmd is the task command group.
var Cmd = &cobra.Command{
	Use:   "task",
	Short: "Manage scheduled tasks",
}

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Schedule a task on a date",
	Long: `Schedule a task on a date, optionally at a clock time. Tasks
without a time count towards the day's load but do not block a slot.

Examples:
  slotwise task add "Write report" --date 2025-06-02 --time 10:00 --duration 90
  slotwise task add --title "Inbox zero" --date 2025-06-03 --difficulty 2`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireUser()
		if err != nil {
			return err
		}
		if app.AddTaskHandler == nil {
			return fmt.Errorf("task handler not configured")
		}

		name := title
		if len(args) == 1 {
			name = args[0]
		}
		if date == "" {
			return fmt.Errorf("missing --date")
		}
		scheduled, err := domain.ParseDate(date, app.Location)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}

		command := commands.AddTaskCommand{
			UserID:          app.CurrentUserID,
			Title:           name,
			Date:            scheduled,
			DurationMinutes: duration,
			Difficulty:      difficulty,
		}
		if clock != "" {
			at, err := prefsDomain.ParseTimeOfDay(clock)
			if err != nil {
				return fmt.Errorf("invalid --time: %w", err)
			}
			command.Time = &at
		}

		result, err := app.AddTaskHandler.Handle(cmd.Context(), command)
		if err != nil {
			return err
		}

		if taskJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
				"id":   result.TaskID.String(),
				"date": domain.DateKey(scheduled),
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task scheduled on %s: %s\n", domain.DateKey(scheduled), result.TaskID)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&title, "title", "t", "", "task title")
	addCmd.Flags().StringVar(&date, "date", "", "scheduled date (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&clock, "time", "", "start time (HH:MM)")
	addCmd.Flags().IntVarP(&duration, "duration", "d", 0, "duration in minutes, default 60")
	addCmd.Flags().IntVar(&difficulty, "difficulty", 0, "difficulty 1-5, default 3")
	addCmd.Flags().BoolVar(&taskJSON, "json", false, "output as JSON")
	Cmd.AddCommand(addCmd)
}
