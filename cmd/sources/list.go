package sources

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dertown/eventscrape/cmd/common"
	"github.com/dertown/eventscrape/internal/database"
	"github.com/dertown/eventscrape/internal/domain"
	"github.com/dertown/eventscrape/internal/logger"
)

// TableRenderer handles the display of source data in a table format
type TableRenderer struct {
	logger logger.Interface
}

// NewTableRenderer creates a new TableRenderer instance
func NewTableRenderer(log logger.Interface) *TableRenderer {
	return &TableRenderer{
		logger: log,
	}
}

// RenderTable formats and displays the sources in a table format
func (r *TableRenderer) RenderTable(sites []domain.SourceSite) error {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"ID", "Name", "URL", "Frequency", "Extractor", "Last Scraped", "Last Status"})

	for _, site := range sites {
		lastScraped := "never"
		if site.LastScraped != nil {
			lastScraped = site.LastScraped.Format(time.RFC3339)
		}
		t.AppendRow(table.Row{
			site.ID,
			site.Name,
			site.URL,
			site.ImportFrequency,
			site.ExtractionFunction,
			lastScraped,
			site.LastStatus,
		})
	}

	t.Render()
	return nil
}

// Lister handles listing sources
type Lister struct {
	store    *database.SourceSiteRepository
	logger   logger.Interface
	renderer *TableRenderer
}

// NewLister creates a new Lister instance
func NewLister(store *database.SourceSiteRepository, log logger.Interface, renderer *TableRenderer) *Lister {
	return &Lister{
		store:    store,
		logger:   log,
		renderer: renderer,
	}
}

// Start begins the list operation
func (l *Lister) Start(ctx context.Context) error {
	sites, err := l.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sites) == 0 {
		l.logger.Info("No sources configured")
		return nil
	}

	return l.renderer.RenderTable(sites)
}

// NewListCommand creates a new list command
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configured source sites",
		Long:  `List all source sites events are imported from.`,
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

			renderer := NewTableRenderer(deps.Logger)
			lister := NewLister(database.NewSourceSiteRepository(db), deps.Logger, renderer)

			return lister.Start(cmd.Context())
		},
	}
}
