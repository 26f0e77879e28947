package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/faizmokh/knos/internal/card"
	"github.com/faizmokh/knos/internal/queue"
	"github.com/faizmokh/knos/internal/session"
	"github.com/faizmokh/knos/internal/ui"
)

type drillOptions struct {
	plain bool
}

func newDrillCommand(ctx context.Context, a *app) *cobra.Command {
	var opts drillOptions

	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Drill every due block, most urgent first.",
		Long: "drill reveals due blocks one item at a time. Each block is scored and rescheduled " +
			"as soon as it is finished; quitting keeps every block already finished.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDrill(ctx, cmd, a, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.plain, "plain", false, "Use line prompts on stdin instead of the full-screen UI")
	cmd.Flags().Int("limit", 0, "Maximum number of blocks this session (0: no limit)")

	return cmd
}

func runDrill(ctx context.Context, cmd *cobra.Command, a *app, opts drillOptions) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}

	now := a.now()
	q, err := queue.Build(ctx, a.catalog, store, now, a.cfg.Drill.Limit)
	if err != nil {
		return err
	}
	printWarnings(cmd, q.Warnings)

	out := cmd.OutOrStdout()
	if len(q.Items) == 0 {
		fmt.Fprintln(out, "Nothing due. All caught up.")
		return nil
	}

	sess := session.New(store, a.history, session.WithSessionLogger(a.log))

	if !opts.plain {
		final, err := tea.NewProgram(ui.NewModel(ctx, sess, q.Items, a.now), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		if err != nil {
			return fmt.Errorf("run TUI: %w", err)
		}
		if m, ok := final.(ui.Model); ok {
			if err := m.Err(); err != nil {
				return err
			}
			formatSummary(out, m.Summary())
		}
		return nil
	}

	fmt.Fprintf(out, "%d block%s due.\n", len(q.Items), plural(len(q.Items)))
	src := newPromptSource(cmd.InOrStdin(), out)
	summary, err := sess.Drill(ctx, q.Blocks(), src, func(_ card.Block, r session.Result) {
		fmt.Fprintln(out, formatResult(r, a.now()))
	})
	if err != nil {
		return err
	}
	formatSummary(out, summary)
	return nil
}

// promptSource asks for verdicts on a line-oriented terminal.
type promptSource struct {
	in    *bufio.Scanner
	out   io.Writer
	block string
}

func newPromptSource(in io.Reader, out io.Writer) *promptSource {
	return &promptSource{in: bufio.NewScanner(in), out: out}
}

func (p *promptSource) Verdict(ctx context.Context, block card.Block, item session.Item) (session.Verdict, error) {
	if p.block != block.ID {
		p.block = block.ID
		p.header(block)
	}
	labels := session.LabelsFor(block.Kind)
	total := block.Items()

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if item.Prompt != "" {
			fmt.Fprintf(p.out, "%d/%d %s :: %s\n", item.Index+1, total, item.Prompt, ui.Hint(item.Answer, ui.SlotHintLimit))
		} else {
			fmt.Fprintf(p.out, "%d/%d %s\n", item.Index+1, total, ui.Hint(item.Answer, ui.LineHintLimit))
		}
		fmt.Fprintf(p.out, "[y] %s  [n] %s  [s] skip block  [q] quit > ", labels.Pass, labels.Fail)

		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return 0, fmt.Errorf("read verdict: %w", err)
			}
			fmt.Fprintln(p.out)
			return session.VerdictAbort, nil
		}

		verdict, ok := parseVerdict(p.in.Text())
		if !ok {
			fmt.Fprintln(p.out, "please answer y, n, s or q")
			continue
		}
		switch verdict {
		case session.VerdictKnew:
			fmt.Fprintf(p.out, "  ✓ %s\n", item.Answer)
		case session.VerdictMissed:
			fmt.Fprintf(p.out, "  ✗ %s\n", item.Answer)
		}
		return verdict, nil
	}
}

func (p *promptSource) header(block card.Block) {
	fmt.Fprintf(p.out, "\n== %s (%s, line %d) ==\n", block.ID, block.Kind, block.StartLine)
	for _, h := range block.Headers() {
		fmt.Fprintf(p.out, "   %s\n", h)
	}
}

func parseVerdict(input string) (session.Verdict, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes", "k":
		return session.VerdictKnew, true
	case "n", "no", "m":
		return session.VerdictMissed, true
	case "s", "skip":
		return session.VerdictSkip, true
	case "q", "quit":
		return session.VerdictAbort, true
	default:
		return 0, false
	}
}
