package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/felixgeelhaar/slotwise/pkg/observability"
	"github.com/spf13/cobra"
)

var healthJSON bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check database, cache and source health",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return ErrNotConfigured
		}
		if app.Health == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		}

		overall := app.Health.GetOverallHealth(cmd.Context())
		if healthJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(overall); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "status: %s\n", overall.Status)
			names := make([]string, 0, len(overall.Checks))
			for name := range overall.Checks {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				check := overall.Checks[name]
				line := fmt.Sprintf("  %-14s %s", name, check.Status)
				if check.Message != "" {
					line += " (" + check.Message + ")"
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
		}

		if overall.Status == observability.HealthStatusUnhealthy {
			return fmt.Errorf("unhealthy")
		}
		return nil
	},
}

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(healthCmd)
}
