// Package checkupdates implements the check-updates command that marks
// events whose websites changed since the last import.
package checkupdates

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dertown/eventscrape/cmd/common"
	"github.com/dertown/eventscrape/internal/database"
	"github.com/dertown/eventscrape/internal/fetch"
	"github.com/dertown/eventscrape/internal/importer"
)

// Command returns the check-updates command for use in the root command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "check-updates",
		Short: "Flag events whose websites changed since their last update",
		Long: `Check the website of every event with one, via HEAD requests.

An event whose site reports a Last-Modified newer than the event's last
update is marked as having outdated details so reviewers can refresh it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			db, err := common.OpenDatabase(deps)
			if err != nil {
				return err
			}
			defer db.Close()

			checker := importer.NewUpdateChecker(
				database.NewEventRepository(db),
				fetch.NewClient(deps.Config.Importer.FetchTimeout, deps.Logger),
				deps.Logger,
			)
			summary, err := checker.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("staleness check failed: %w", err)
			}

			fmt.Printf("Checked %d events: %d outdated, %d current, %d unreachable\n",
				summary.Checked, summary.Outdated, summary.Current, summary.Unreachable)
			return nil
		},
	}
}
