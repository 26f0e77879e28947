package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faizmokh/knos/internal/report"
)

func newProgressCommand(ctx context.Context, a *app) *cobra.Command {
	var (
		days  int
		worst int
	)

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Summarise review history.",
		Long:  "progress indexes the history log into a local SQLite database and reports daily activity and the blocks that reset most often.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}

			ix, err := report.OpenIndex(a.manager.IndexPath(), report.WithIndexLogger(a.log))
			if err != nil {
				return err
			}
			defer ix.Close()

			if _, err := ix.Sync(ctx, a.history); err != nil {
				return err
			}

			totals, err := ix.Totals(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if totals.Attempts == 0 {
				fmt.Fprintln(out, "No reviews recorded yet.")
				return nil
			}
			fmt.Fprintf(out, "%d review%s of %d block%s across %d session%s\n",
				totals.Attempts, plural(totals.Attempts),
				totals.Blocks, plural(totals.Blocks),
				totals.Sessions, plural(totals.Sessions))

			daily, err := ix.Daily(ctx, days, a.now())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nLast %d day%s:\n", days, plural(days))
			if len(daily) == 0 {
				fmt.Fprintln(out, "  (no reviews)")
			}
			for _, d := range daily {
				fmt.Fprintf(out, "  %s  %3d reviewed  %3d passed  avg %s\n", d.Date, d.Attempts, d.Passed, formatScore(d.AvgScore))
			}

			struggling, err := ix.Struggling(ctx, worst)
			if err != nil {
				return err
			}
			if len(struggling) > 0 {
				fmt.Fprintln(out, "\nMost resets:")
				for _, s := range struggling {
					fmt.Fprintf(out, "  %s  %d reset%s in %d attempt%s, avg %s\n",
						s.ID, s.Resets, plural(s.Resets), s.Attempts, plural(s.Attempts), formatScore(s.AvgScore))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Number of days to report")
	cmd.Flags().IntVar(&worst, "top", 5, "Number of struggling blocks to list")

	return cmd
}
