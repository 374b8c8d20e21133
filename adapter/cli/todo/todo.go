package todo

import (
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/slotwise/adapter/cli"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/domain"
	"github.com/spf13/cobra"
)

var (
	title    string
	dueDate  string
	subtasks int
	todoJSON bool
)

// Cmd is the todo command group.
var Cmd = &cobra.Command{
	Use:   "todo",
	Short: "Manage todos",
}

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a todo",
	Long: `Add a todo, optionally due on a date and split into subtasks.
Open todos due on a day lower that day's slot scores.

Examples:
  slotwise todo add "Plan offsite" --due 2025-06-05 --subtasks 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireUser()
		if err != nil {
			return err
		}
		if app.AddTodoHandler == nil {
			return fmt.Errorf("todo handler not configured")
		}

		name := title
		if len(args) == 1 {
			name = args[0]
		}
		command := commands.AddTodoCommand{
			UserID:   app.CurrentUserID,
			Title:    name,
			Subtasks: subtasks,
		}
		if dueDate != "" {
			due, err := domain.ParseDate(dueDate, app.Location)
			if err != nil {
				return fmt.Errorf("invalid --due: %w", err)
			}
			command.DueDate = &due
		}

		result, err := app.AddTodoHandler.Handle(cmd.Context(), command)
		if err != nil {
			return err
		}

		if todoJSON {
			ids := make([]string, len(result.SubtaskIDs))
			for i, id := range result.SubtaskIDs {
				ids[i] = id.String()
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
				"id":       result.TodoID.String(),
				"subtasks": ids,
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Todo added: %s", result.TodoID)
		if n := len(result.SubtaskIDs); n > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), " (%d subtasks)", n)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&title, "title", "t", "", "todo title")
	addCmd.Flags().StringVar(&dueDate, "due", "", "due date (YYYY-MM-DD)")
	addCmd.Flags().IntVar(&subtasks, "subtasks", 0, "number of subtasks to create")
	addCmd.Flags().BoolVar(&todoJSON, "json", false, "output as JSON")
	Cmd.AddCommand(addCmd)
}
