package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faizmokh/knos/internal/card"
	"github.com/faizmokh/knos/internal/history"
	"github.com/faizmokh/knos/internal/schedule"
)

func newScheduleCommand(ctx context.Context, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Maintain the schedule file.",
	}

	cmd.AddCommand(
		newRepairCommand(ctx, a),
		newPruneCommand(ctx, a),
	)

	return cmd
}

func newRepairCommand(ctx context.Context, a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Rebuild the schedule from the history log.",
		Long: "repair copies the current schedule file to a backup (it is never deleted) and rebuilds " +
			"every entry from the most recent review in the history log.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			_, err := schedule.Open(a.manager.SchedulePath(), schedule.WithLogger(a.log))
			var cerr *schedule.CorruptionError
			switch {
			case err == nil && !force:
				fmt.Fprintln(out, "Schedule is healthy; nothing to repair. Use --force to rebuild anyway.")
				return nil
			case err != nil && !errors.As(err, &cerr):
				return err
			}

			records, err := a.history.Records(ctx)
			if err != nil {
				return err
			}
			scan, err := a.catalog.Scan(ctx)
			if err != nil {
				return err
			}

			store, result, err := schedule.Rebuild(a.manager.SchedulePath(), history.Outcomes(records), scan.IDs(),
				schedule.WithLogger(a.log), schedule.WithClock(a.now))
			if err != nil {
				return err
			}

			if result.Backup != "" {
				fmt.Fprintf(out, "Previous schedule saved as %s\n", result.Backup)
			}
			fmt.Fprintf(out, "Rebuilt %d entr%s from %d review%s (%d total).\n",
				result.Restored, pluralY(result.Restored), len(records), plural(len(records)), store.Len())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Rebuild even when the schedule loads cleanly")

	return cmd
}

func newPruneCommand(ctx context.Context, a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove schedule entries whose blocks no longer exist.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			scan, err := a.catalog.Scan(ctx)
			if err != nil {
				return err
			}
			printWarnings(cmd, scan.Warnings)

			orphans := keepUnreadable(store.Orphans(scan.IDs()), scan.Failed)
			out := cmd.OutOrStdout()
			if len(orphans) == 0 {
				fmt.Fprintln(out, "No orphaned entries.")
				return nil
			}

			for _, id := range orphans {
				fmt.Fprintf(out, "  %s\n", id)
			}
			if !yes {
				fmt.Fprintf(out, "%d orphaned entr%s. Run with --yes to remove.\n", len(orphans), pluralY(len(orphans)))
				return nil
			}

			removed, err := store.Remove(orphans)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed %d entr%s.\n", removed, pluralY(removed))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Remove without asking")

	return cmd
}

// keepUnreadable drops identifiers that belong to cards which failed to
// parse; their blocks may well still exist.
func keepUnreadable(ids, failed []string) []string {
	if len(failed) == 0 {
		return ids
	}
	broken := make(map[string]bool, len(failed))
	for _, path := range failed {
		broken[path] = true
	}
	out := ids[:0]
	for _, id := range ids {
		if path, _, err := card.SplitID(id); err == nil && broken[path] {
			continue
		}
		out = append(out, id)
	}
	return out
}

func pluralY(count int) string {
	if count == 1 {
		return "y"
	}
	return "ies"
}
