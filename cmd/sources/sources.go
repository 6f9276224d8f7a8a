// Package sources implements the command-line interface for inspecting
// configured source sites.
package sources

import (
	"github.com/spf13/cobra"
)

// NewSourcesCommand creates the sources command group.
func NewSourcesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Manage event source sites",
		Long:  `Inspect and validate the source sites events are imported from.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewValidateCommand())
	return cmd
}
