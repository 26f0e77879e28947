package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faizmokh/knos/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information.",
		Args:  cobra.NoArgs,
		// Skip the root setup; printing the version needs no home directory.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "knos %s\n", version.Info())
		},
	}
}
