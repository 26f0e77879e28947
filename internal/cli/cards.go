package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newCardsCommand(ctx context.Context, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "List cards, their blocks and identifiers.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scan, err := a.catalog.Scan(ctx)
			if err != nil {
				return err
			}
			printWarnings(cmd, scan.Warnings)

			out := cmd.OutOrStdout()
			if len(scan.Cards) == 0 && len(scan.Failed) == 0 {
				fmt.Fprintf(out, "No cards in %s\n", a.manager.CardsDir())
				return nil
			}

			drillable := 0
			for i, c := range scan.Cards {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, c.Path)
				if len(c.Blocks) == 0 {
					fmt.Fprintln(out, "  (no blocks)")
				}
				for _, b := range c.Blocks {
					if b.Excluded {
						fmt.Fprintf(out, "  -   line %-4d %s, not drilled\n", b.StartLine, describeLanguage(b.Language))
						continue
					}
					drillable++
					fmt.Fprintf(out, "  #%-2d line %-4d %s %d item%s  %s\n",
						b.Ordinal, b.StartLine, b.Kind, b.Items(), plural(b.Items()), b.ID)
				}
			}
			fmt.Fprintf(out, "\n%d card%s, %d drillable block%s", len(scan.Cards), plural(len(scan.Cards)), drillable, plural(drillable))
			if n := len(scan.Failed); n > 0 {
				fmt.Fprintf(out, ", %d unreadable", n)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	return cmd
}

func describeLanguage(lang string) string {
	if lang == "" {
		return "plain"
	}
	return lang
}
