package common

import (
	"github.com/jmoiron/sqlx"

	"github.com/dertown/eventscrape/internal/database"
	"github.com/dertown/eventscrape/internal/extract"
	"github.com/dertown/eventscrape/internal/fetch"
	"github.com/dertown/eventscrape/internal/importer"
	"github.com/dertown/eventscrape/internal/metrics"
	"github.com/dertown/eventscrape/internal/resolve"
)

// NewImporter wires the full import pipeline: repositories, entity
// resolver, extractor registry, HTTP fetcher and metrics.
func NewImporter(deps CommandDeps, db *sqlx.DB, m *metrics.Metrics) *importer.Importer {
	cfg := deps.Config.Importer

	resolver := resolve.NewResolver(
		database.NewLocationRepository(db),
		database.NewOrganizationRepository(db),
		cfg.FuzzyThreshold,
		deps.Logger,
	)

	return importer.NewImporter(importer.Params{
		Sources:        database.NewSourceSiteRepository(db),
		Logs:           database.NewScrapeLogRepository(db),
		Events:         database.NewEventRepository(db),
		Tags:           database.NewTagRepository(db),
		Resolver:       resolver,
		Registry:       extract.NewRegistry(cfg.MonthsAhead),
		Fetcher:        fetch.NewClient(cfg.FetchTimeout, deps.Logger),
		Metrics:        m,
		Logger:         deps.Logger,
		TitleThreshold: cfg.FuzzyThreshold,
		SourceTimeout:  cfg.SourceTimeout,
	})
}
