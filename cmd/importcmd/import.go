// Package importcmd implements the import command that runs the event
// scraping pipeline across configured source sites.
package importcmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dertown/eventscrape/cmd/common"
	"github.com/dertown/eventscrape/internal/importer"
	"github.com/dertown/eventscrape/internal/logger"
	"github.com/dertown/eventscrape/internal/metrics"
)

var (
	dueOnly     bool
	sourceID    string
	forceUpdate bool
	workers     int
	schedule    string
)

// Command returns the import command for use in the root command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import events from configured source sites",
		Long: `Import events from configured source sites.

Each source is fetched, parsed with its configured extraction function,
and the resulting events are normalized and upserted into the database.
A failure on one source never stops the others.`,
		RunE: runImport,
	}

	cmd.Flags().BoolVar(&dueOnly, "due-only", false,
		"only import sources whose import frequency says they are due")
	cmd.Flags().StringVar(&sourceID, "source-id", "",
		"import a single source by ID, due or not")
	cmd.Flags().BoolVar(&forceUpdate, "force-update", false,
		"ignore Last-Modified change detection and re-import unchanged pages")
	cmd.Flags().IntVar(&workers, "workers", 0,
		"number of sources to process concurrently (0 uses the configured value)")
	cmd.Flags().StringVar(&schedule, "schedule", "",
		"run continuously on a cron schedule instead of once")

	return cmd
}

func runImport(cmd *cobra.Command, _ []string) error {
	deps, err := common.NewCommandDeps()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	db, err := common.OpenDatabase(deps)
	if err != nil {
		return err
	}
	defer db.Close()

	m := metrics.New()
	if deps.Config.Metrics.Enabled {
		startMetricsServer(deps.Config.Metrics.Address, m, deps.Logger)
	}

	imp := common.NewImporter(deps, db, m)
	opts := importer.Options{
		DueOnly:     dueOnly,
		SourceID:    sourceID,
		ForceUpdate: forceUpdate,
		Workers:     workers,
	}
	if opts.Workers == 0 {
		opts.Workers = deps.Config.Importer.Workers
	}

	// The flag wins over the configured schedule.
	cronSpec := schedule
	if cronSpec == "" {
		cronSpec = deps.Config.Importer.Schedule
	}

	if cronSpec != "" {
		return runScheduled(cmd.Context(), imp, opts, cronSpec, deps.Logger)
	}

	summary, err := imp.Run(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("import run failed: %w", err)
	}
	renderSummary(summary)
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d sources failed", summary.Failed, summary.Processed)
	}
	return nil
}

func startMetricsServer(address string, m *metrics.Metrics, log logger.Interface) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	go func() {
		log.Info("Serving metrics", "address", address)
		if err := http.ListenAndServe(address, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server stopped", "error", err)
		}
	}()
}

// renderSummary prints the per-source outcomes as a table.
func renderSummary(summary *importer.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Source", "Status", "Found", "Created", "Updated", "Failed", "Error"})
	for _, res := range summary.Results {
		errMsg := ""
		if res.Err != nil {
			errMsg = res.Err.Error()
		}
		t.AppendRow(table.Row{
			res.SourceName,
			res.Status,
			res.Found,
			res.Created,
			res.Updated,
			res.Failed,
			errMsg,
		})
	}
	t.AppendFooter(table.Row{
		"total",
		fmt.Sprintf("%d ok / %d skipped / %d failed", summary.Succeeded, summary.Skipped, summary.Failed),
		"", summary.Created, summary.Updated, "", "",
	})
	t.Render()
}

