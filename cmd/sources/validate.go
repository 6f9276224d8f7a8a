package sources

import (
	"context"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/dertown/eventscrape/cmd/common"
	"github.com/dertown/eventscrape/internal/database"
	"github.com/dertown/eventscrape/internal/domain"
	"github.com/dertown/eventscrape/internal/extract"
)

// NewValidateCommand creates a command that checks every configured
// source for problems that would make an import run fail: a malformed
// URL, an unknown extraction function or an unknown import frequency.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate source site configuration",
		Long:  `Check every configured source for malformed URLs, unknown extraction functions and unknown import frequencies.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to get dependencies: %w", err)
			}

			db, err := common.OpenDatabase(deps)
			if err != nil {
				return err
			}
			defer db.Close()

			registry := extract.NewRegistry(deps.Config.Importer.MonthsAhead)
			store := database.NewSourceSiteRepository(db)
			return validateSources(cmd.Context(), store, registry)
		},
	}
}

func validateSources(ctx context.Context, store *database.SourceSiteRepository, registry *extract.Registry) error {
	sites, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	problems := 0
	for _, site := range sites {
		for _, problem := range checkSource(&site, registry) {
			problems++
			fmt.Printf("%s: %s\n", site.Name, problem)
		}
	}

	if problems > 0 {
		return fmt.Errorf("found %d problems in %d sources", problems, len(sites))
	}
	fmt.Printf("All %d sources are valid\n", len(sites))
	return nil
}

func checkSource(site *domain.SourceSite, registry *extract.Registry) []string {
	var problems []string

	parsed, err := url.Parse(site.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		problems = append(problems, fmt.Sprintf("invalid URL %q", site.URL))
	}
	if _, err := registry.Lookup(site.ExtractionFunction); err != nil {
		problems = append(problems, fmt.Sprintf("unknown extraction function %q", site.ExtractionFunction))
	}
	if !site.ImportFrequency.Valid() {
		problems = append(problems, fmt.Sprintf("unknown import frequency %q", site.ImportFrequency))
	}
	return problems
}
