package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faizmokh/knos/internal/queue"
	"github.com/faizmokh/knos/internal/report"
)

type dueJSON struct {
	Datetime       string   `json:"datetime"`
	BoxZero        []string `json:"box_zero"`
	Overdue        []string `json:"overdue"`
	DueNow         []string `json:"due_now"`
	NeverPracticed []string `json:"never_practiced"`
	TotalDue       int      `json:"total_due"`
}

func newDueCommand(ctx context.Context, a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "due",
		Short: "List blocks due for review, most urgent first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			now := a.now()
			q, err := queue.Build(ctx, a.catalog, store, now, 0)
			if err != nil {
				return err
			}
			printWarnings(cmd, q.Warnings)

			out := cmd.OutOrStdout()
			if asJSON {
				payload := dueJSON{
					Datetime:       now.Local().Format("2006-01-02T15:04"),
					BoxZero:        []string{},
					Overdue:        []string{},
					DueNow:         []string{},
					NeverPracticed: []string{},
					TotalDue:       len(q.Items),
				}
				for _, it := range q.Items {
					switch it.Status {
					case report.StatusNew:
						payload.NeverPracticed = append(payload.NeverPracticed, it.Block.ID)
					case report.StatusFailed:
						payload.BoxZero = append(payload.BoxZero, it.Block.ID)
					case report.StatusOverdue:
						payload.Overdue = append(payload.Overdue, it.Block.ID)
					default:
						payload.DueNow = append(payload.DueNow, it.Block.ID)
					}
				}
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(payload)
			}

			if len(q.Items) == 0 {
				fmt.Fprintln(out, "Nothing due. All caught up.")
				return nil
			}
			fmt.Fprintf(out, "Due for review (%d block%s):\n\n", len(q.Items), plural(len(q.Items)))
			for i, it := range q.Items {
				line := formatEntry(it.Block.ID, it.Entry, now)
				if it.Changed {
					line += " [changed]"
				}
				fmt.Fprintf(out, "%d. %s\n", i+1, line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the due list as JSON")

	return cmd
}
