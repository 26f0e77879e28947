package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/faizmokh/knos/internal/version"
)

// NewRootCommand creates the top-level Cobra command that hosts subcommands
// and launches the drill TUI.
func NewRootCommand(ctx context.Context) *cobra.Command {
	return newRootCommand(ctx, newApp())
}

func newRootCommand(ctx context.Context, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "knos",
		Short:   "Drill code and facts from markdown cards with spaced repetition.",
		Version: version.Info(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDrill(ctx, cmd, a, drillOptions{})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.home, "home", "", "knos home directory (default: $KNOS_HOME or ~/.knos)")
	flags.String("cards-dir", "", "Directory holding markdown cards (default: <home>/cards)")
	flags.String("schedule-file", "", "Schedule file (default: <home>/schedule.json)")
	flags.String("history-file", "", "History log (default: <home>/history.jsonl)")
	flags.String("log-level", "", "Log level: debug|info|warn|error")
	flags.String("log-format", "", "Log format: console|json")

	cmd.AddCommand(
		newDrillCommand(ctx, a),
		newDueCommand(ctx, a),
		newTodayCommand(ctx, a),
		newCardsCommand(ctx, a),
		newProgressCommand(ctx, a),
		newScheduleCommand(ctx, a),
		newVersionCommand(),
	)

	return cmd
}

// ExecuteCommand is a thin wrapper that executes the Cobra root command.
func ExecuteCommand(ctx context.Context) error {
	return NewRootCommand(ctx).ExecuteContext(ctx)
}

// Main is a helper used by cmd/knos/main.go to keep wiring contained in one package.
func Main(ctx context.Context) {
	if err := ExecuteCommand(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
