package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/felixgeelhaar/slotwise/pkg/observability"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var logger *slog.Logger

type commandContext struct {
	correlationID uuid.UUID
	startedAt     time.Time
}

type commandContextKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "slotwise",
	Short: "Slotwise - smart scheduling for tasks and todos",
	Long: `Slotwise finds the best time to do a task and ranks your days
by how busy they are, based on your working hours, breaks and
productive hours.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		info := commandContext{
			correlationID: uuid.New(),
			startedAt:     time.Now(),
		}
		ctx = observability.WithCorrelationID(ctx, info.correlationID.String())
		cmd.SetContext(context.WithValue(ctx, commandContextKey{}, info))
		logger.DebugContext(cmd.Context(), "command start", "command", cmd.CommandPath())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
		if !ok {
			return
		}
		logger.DebugContext(cmd.Context(), "command end",
			"command", cmd.CommandPath(),
			"duration_ms", time.Since(info.startedAt).Milliseconds(),
		)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// ExecuteContext runs the root command with ctx and returns its error.
// Every run starts from ctx, even when the same command ran before.
func ExecuteContext(ctx context.Context) error {
	cmd, err := rootCmd.ExecuteContextC(ctx)
	if cmd != nil {
		// cobra only hands ctx to a subcommand whose context is unset.
		cmd.SetContext(nil) //nolint:staticcheck
	}
	return err
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// RootCommand returns the root command.
func RootCommand() *cobra.Command {
	return rootCmd
}
