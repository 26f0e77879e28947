package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faizmokh/knos/internal/report"
	"github.com/faizmokh/knos/internal/schedule"
)

func newTodayCommand(ctx context.Context, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show what needs attention today.",
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

			summary := report.Summarize(store.Entries(), scan.IDs(), a.now())
			return printDashboard(cmd, summary)
		},
	}

	return cmd
}

func printDashboard(cmd *cobra.Command, s report.Summary) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Review status")
	fmt.Fprintln(out, "=============")

	rows := []struct {
		label string
		count int
	}{
		{"Failed (box 0)", s.Failed},
		{"Overdue", s.Overdue},
		{"Due now", s.DueNow},
		{"Never practiced", s.NeverPracticed},
	}
	shown := 0
	for _, row := range rows {
		if row.count == 0 {
			continue
		}
		fmt.Fprintf(out, "  %-17s %d\n", row.label+":", row.count)
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(out, "  All caught up!")
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-17s %d\n", "Ready to drill:", s.Due)
	fmt.Fprintf(out, "  %-17s %d\n", "Upcoming:", s.Upcoming)
	fmt.Fprintf(out, "  %-17s %d\n", "Total blocks:", s.Total)
	fmt.Fprintf(out, "  %-17s", "Boxes:")
	for box := 0; box <= schedule.MaxBox; box++ {
		fmt.Fprintf(out, " %d:%d", box, s.Boxes[box])
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-17s %s\n", "Last practiced:", formatTimestamp(s.LastPracticed))
	return nil
}
