package prefs

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/slotwise/adapter/cli"
	"github.com/felixgeelhaar/slotwise/internal/preferences/domain"
	"github.com/spf13/cobra"
)

var (
	prefsJSON bool

	workStart         string
	workEnd           string
	workDays          string
	productiveStart   string
	productiveEnd     string
	preferredDuration int
	minBreak          int
)

// Cmd is the prefs command group.
var Cmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show and change scheduling preferences",
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireUser()
		if err != nil {
			return err
		}
		if app.PreferencesService == nil {
			return fmt.Errorf("preferences service not configured")
		}

		prefs, err := app.PreferencesService.GetPreferences(cmd.Context(), app.CurrentUserID)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), prefs)
	},
}

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Update preferences",
	Long: `Update one or more preferences. Flags that are not given keep
their current value.

Examples:
  slotwise prefs set --work-start 08:00 --work-end 16:00
  slotwise prefs set --work-days mon,tue,wed,thu
  slotwise prefs set --productive-start 14:00 --productive-end 17:00`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireUser()
		if err != nil {
			return err
		}
		if app.PreferencesService == nil {
			return fmt.Errorf("preferences service not configured")
		}

		patch, err := patchFromFlags(cmd)
		if err != nil {
			return err
		}

		prefs, err := app.PreferencesService.UpdatePreferences(cmd.Context(), app.CurrentUserID, patch)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), prefs)
	},
}

func patchFromFlags(cmd *cobra.Command) (domain.Patch, error) {
	var patch domain.Patch
	flags := cmd.Flags()

	rangeFlag := func(startFlag, endFlag, start, end string) (*domain.TimeRange, error) {
		if !flags.Changed(startFlag) && !flags.Changed(endFlag) {
			return nil, nil
		}
		if !flags.Changed(startFlag) || !flags.Changed(endFlag) {
			return nil, fmt.Errorf("--%s and --%s must be given together", startFlag, endFlag)
		}
		r, err := domain.NewTimeRange(start, end)
		if err != nil {
			return nil, err
		}
		return &r, nil
	}

	var err error
	if patch.WorkHours, err = rangeFlag("work-start", "work-end", workStart, workEnd); err != nil {
		return patch, err
	}
	if patch.ProductiveHours, err = rangeFlag("productive-start", "productive-end", productiveStart, productiveEnd); err != nil {
		return patch, err
	}
	if flags.Changed("work-days") {
		if patch.WorkDays, err = ParseWeekdays(workDays); err != nil {
			return patch, err
		}
	}
	if flags.Changed("duration") || flags.Changed("min-break") {
		tp := &domain.TaskPreferencesPatch{}
		if flags.Changed("duration") {
			tp.PreferredDuration = &preferredDuration
		}
		if flags.Changed("min-break") {
			tp.MinBreakBetweenTasks = &minBreak
		}
		patch.TaskPreferences = tp
	}
	return patch, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// ParseWeekdays parses a comma separated list of day names ("mon", "Tuesday")
// or numbers where 0 is Sunday.
func ParseWeekdays(s string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			if n < 0 || n > 6 {
				return nil, fmt.Errorf("invalid work day %q: must be 0-6", part)
			}
			days = append(days, time.Weekday(n))
			continue
		}
		if len(part) >= 3 {
			if d, ok := weekdayNames[part[:3]]; ok {
				days = append(days, d)
				continue
			}
		}
		return nil, fmt.Errorf("invalid work day %q", part)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("at least one work day is required")
	}
	return days, nil
}

func render(w io.Writer, prefs domain.Preferences) error {
	if prefsJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(prefs)
	}

	days := make([]string, len(prefs.WorkDays))
	for i, d := range prefs.WorkDays {
		days[i] = d.String()[:3]
	}
	fmt.Fprintf(w, "Work hours:       %s-%s\n", prefs.WorkHours.Start, prefs.WorkHours.End)
	fmt.Fprintf(w, "Work days:        %s\n", strings.Join(days, ", "))
	fmt.Fprintf(w, "Productive hours: %s-%s\n", prefs.ProductiveHours.Start, prefs.ProductiveHours.End)
	for _, b := range prefs.BreakTimes {
		label := b.Label
		if label == "" {
			label = "Break"
		}
		fmt.Fprintf(w, "%-17s %s-%s\n", label+":", b.Start, b.End)
	}
	fmt.Fprintf(w, "Task length:      %d min, %d min between tasks, at most %d in a row\n",
		prefs.TaskPreferences.PreferredDuration,
		prefs.TaskPreferences.MinBreakBetweenTasks,
		prefs.TaskPreferences.MaxConsecutiveTasks)
	return nil
}

func init() {
	showCmd.Flags().BoolVar(&prefsJSON, "json", false, "output as JSON")
	setCmd.Flags().BoolVar(&prefsJSON, "json", false, "output as JSON")
	setCmd.Flags().StringVar(&workStart, "work-start", "", "start of the work day (HH:MM)")
	setCmd.Flags().StringVar(&workEnd, "work-end", "", "end of the work day (HH:MM)")
	setCmd.Flags().StringVar(&workDays, "work-days", "", "work days, e.g. mon,tue,wed,thu,fri")
	setCmd.Flags().StringVar(&productiveStart, "productive-start", "", "start of productive hours (HH:MM)")
	setCmd.Flags().StringVar(&productiveEnd, "productive-end", "", "end of productive hours (HH:MM)")
	setCmd.Flags().IntVar(&preferredDuration, "duration", 0, "preferred task duration in minutes")
	setCmd.Flags().IntVar(&minBreak, "min-break", 0, "minimum break between tasks in minutes")

	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(setCmd)
}
