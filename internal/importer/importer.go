package importer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/dertown/eventscrape/internal/domain"
	"github.com/dertown/eventscrape/internal/extract"
	"github.com/dertown/eventscrape/internal/fetch"
	"github.com/dertown/eventscrape/internal/logger"
	"github.com/dertown/eventscrape/internal/metrics"
	"github.com/dertown/eventscrape/internal/normalize"
)

// DefaultSourceTimeout bounds the total time spent on a single source,
// including any extra calendar pages it declares.
const DefaultSourceTimeout = 2 * time.Minute

// SourceStore provides the source sites to import and records run outcomes.
type SourceStore interface {
	List(ctx context.Context) ([]domain.SourceSite, error)
	GetByID(ctx context.Context, id string) (*domain.SourceSite, error)
	RecordRun(ctx context.Context, id string, scrapedAt time.Time, status, errorMessage string) error
}

// ScrapeLogStore appends per-run audit entries.
type ScrapeLogStore interface {
	Create(ctx context.Context, log *domain.ScrapeLog) error
}

// EventStore provides event lookup and persistence for the upsert step.
type EventStore interface {
	ListByStartDate(ctx context.Context, date time.Time) ([]domain.Event, error)
	Create(ctx context.Context, event *domain.Event) error
	Update(ctx context.Context, event *domain.Event) error
}

// EntityResolver resolves free-text location and organization names to
// stored entities, creating pending ones as needed.
type EntityResolver interface {
	Location(ctx context.Context, name string) (*domain.Location, error)
	Organization(ctx context.Context, name, sourceURL string, defaultOrgID *string) (*string, error)
}

// PageFetcher retrieves a single page over HTTP.
type PageFetcher interface {
	Get(ctx context.Context, pageURL string) (*fetch.Result, error)
}

// Options control a single import run.
type Options struct {
	// DueOnly restricts the run to sources whose import frequency says
	// they are due. Ignored when SourceID is set.
	DueOnly bool

	// SourceID imports exactly one source, due or not.
	SourceID string

	// ForceUpdate disables the Last-Modified short circuit.
	ForceUpdate bool

	// Workers sets how many sources are processed concurrently.
	// Values below 1 mean sequential processing.
	Workers int
}

// SourceResult is the outcome of importing one source.
type SourceResult struct {
	SourceID   string
	SourceName string
	Status     string
	Found      int
	Created    int
	Updated    int
	Failed     int
	Err        error
}

// Summary aggregates the outcomes of a run across all sources.
type Summary struct {
	Processed int
	Succeeded int
	Failed    int
	Skipped   int
	Created   int
	Updated   int
	Results   []SourceResult
}

// Importer orchestrates a full import run: fetch, extract, normalize,
// resolve and upsert, with per-source failure isolation.
type Importer struct {
	sources  SourceStore
	logs     ScrapeLogStore
	events   EventStore
	tags     TagStore
	resolver EntityResolver
	registry *extract.Registry
	fetcher  PageFetcher
	metrics  *metrics.Metrics
	log      logger.Interface

	titleThreshold int
	sourceTimeout  time.Duration
	now            func() time.Time
}

// Params bundles the dependencies for NewImporter.
type Params struct {
	Sources        SourceStore
	Logs           ScrapeLogStore
	Events         EventStore
	Tags           TagStore
	Resolver       EntityResolver
	Registry       *extract.Registry
	Fetcher        PageFetcher
	Metrics        *metrics.Metrics
	Logger         logger.Interface
	TitleThreshold int
	SourceTimeout  time.Duration
}

func NewImporter(p Params) *Importer {
	threshold := p.TitleThreshold
	if threshold <= 0 {
		threshold = 85
	}
	timeout := p.SourceTimeout
	if timeout <= 0 {
		timeout = DefaultSourceTimeout
	}
	log := p.Logger
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Importer{
		sources:        p.Sources,
		logs:           p.Logs,
		events:         p.Events,
		tags:           p.Tags,
		resolver:       p.Resolver,
		registry:       p.Registry,
		fetcher:        p.Fetcher,
		metrics:        p.Metrics,
		log:            log,
		titleThreshold: threshold,
		sourceTimeout:  timeout,
		now:            time.Now,
	}
}

// Run imports the selected sources and returns a summary. A failure on
// one source is recorded in its result and never aborts the others; Run
// itself only errors when the source list cannot be loaded.
func (i *Importer) Run(ctx context.Context, opts Options) (*Summary, error) {
	selected, err := i.selectSources(ctx, opts)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	var mu sync.Mutex
	collect := func(res SourceResult) {
		mu.Lock()
		defer mu.Unlock()
		summary.Processed++
		summary.Created += res.Created
		summary.Updated += res.Updated
		switch res.Status {
		case domain.RunStatusSuccess:
			summary.Succeeded++
		case domain.RunStatusSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
		summary.Results = append(summary.Results, res)
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(selected) {
		workers = len(selected)
	}

	jobs := make(chan domain.SourceSite)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range jobs {
				collect(i.processSource(ctx, src, opts.ForceUpdate))
			}
		}()
	}
	for _, src := range selected {
		jobs <- src
	}
	close(jobs)
	wg.Wait()

	if i.metrics != nil {
		i.metrics.ObserveRun(i.now())
	}
	return summary, nil
}

func (i *Importer) selectSources(ctx context.Context, opts Options) ([]domain.SourceSite, error) {
	if opts.SourceID != "" {
		src, err := i.sources.GetByID(ctx, opts.SourceID)
		if err != nil {
			return nil, fmt.Errorf("failed to load source %s: %w", opts.SourceID, err)
		}
		return []domain.SourceSite{*src}, nil
	}

	all, err := i.sources.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	if !opts.DueOnly {
		return all, nil
	}

	now := i.now()
	due := make([]domain.SourceSite, 0, len(all))
	for _, src := range all {
		if IsDue(&src, now) {
			due = append(due, src)
		} else {
			i.log.Debug("source not due, skipping", "source", src.Name, "frequency", src.ImportFrequency)
		}
	}
	return due, nil
}

// processSource runs one source end to end and performs the completion
// bookkeeping: the source's run columns are updated and a scrape log
// entry is appended whether the run succeeded, failed or was skipped.
func (i *Importer) processSource(ctx context.Context, src domain.SourceSite, force bool) SourceResult {
	res := i.runSource(ctx, src, force)
	res.SourceID = src.ID
	res.SourceName = src.Name

	scrapedAt := i.now()
	errMsg := ""
	if res.Err != nil {
		errMsg = res.Err.Error()
		i.log.Error("source import failed", "source", src.Name, "error", res.Err)
	}

	if err := i.sources.RecordRun(ctx, src.ID, scrapedAt, res.Status, errMsg); err != nil {
		i.log.Error("failed to record run", "source", src.Name, "error", err)
	}
	entry := &domain.ScrapeLog{
		SourceID:      src.ID,
		Status:        res.Status,
		EventsFound:   res.Found,
		EventsCreated: res.Created,
		EventsUpdated: res.Updated,
		ErrorMessage:  errMsg,
	}
	if err := i.logs.Create(ctx, entry); err != nil {
		i.log.Error("failed to write scrape log", "source", src.Name, "error", err)
	}

	if i.metrics != nil {
		i.metrics.SourceProcessed(res.Status)
		i.metrics.EventsCreated(res.Created)
		i.metrics.EventsUpdated(res.Updated)
		i.metrics.EventFailures(res.Failed)
	}
	return res
}

func (i *Importer) runSource(ctx context.Context, src domain.SourceSite, force bool) SourceResult {
	ctx, cancel := context.WithTimeout(ctx, i.sourceTimeout)
	defer cancel()

	log := i.log.WithSource(src.Name)

	entry, err := i.registry.Lookup(src.ExtractionFunction)
	if err != nil {
		return SourceResult{Status: domain.RunStatusError,
			Err: fmt.Errorf("source %s: %w", src.Name, err)}
	}

	page, err := i.fetcher.Get(ctx, src.URL)
	if err != nil {
		return SourceResult{Status: domain.RunStatusError,
			Err: fmt.Errorf("failed to fetch %s: %w", src.URL, err)}
	}

	if !force && page.LastModified != nil && src.LastScraped != nil &&
		!page.LastModified.After(*src.LastScraped) {
		log.Info("page unchanged since last scrape, skipping",
			"last_modified", page.LastModified.Format(time.RFC3339))
		return SourceResult{Status: domain.RunStatusSkipped}
	}

	baseURL, err := url.Parse(src.URL)
	if err != nil {
		return SourceResult{Status: domain.RunStatusError,
			Err: fmt.Errorf("invalid source url %s: %w", src.URL, err)}
	}

	raw, err := entry.Extractor.Extract(page.Body, baseURL)
	if err != nil {
		return SourceResult{Status: domain.RunStatusError,
			Err: fmt.Errorf("extraction failed for %s: %w", src.Name, err)}
	}

	// Some calendars paginate by month; the extractor declares the extra
	// pages and the fetch happens here. A failed extra page only costs
	// that page's events.
	if lister, ok := entry.Extractor.(extract.PageLister); ok {
		for _, pageURL := range lister.ExtraPages(baseURL, i.now()) {
			extraPage, fetchErr := i.fetcher.Get(ctx, pageURL)
			if fetchErr != nil {
				log.Warn("failed to fetch extra page", "url", pageURL, "error", fetchErr)
				continue
			}
			more, extractErr := entry.Extractor.Extract(extraPage.Body, baseURL)
			if extractErr != nil {
				log.Warn("failed to extract extra page", "url", pageURL, "error", extractErr)
				continue
			}
			raw = append(raw, more...)
		}
	}

	if entry.FutureOnly {
		raw = extract.FilterFuture(raw, i.now(), log)
	}

	res := SourceResult{Status: domain.RunStatusSuccess, Found: len(raw)}
	for _, rawEvent := range raw {
		record, normErr := normalize.Event(rawEvent, log)
		if normErr != nil {
			if errors.Is(normErr, normalize.ErrMissingTitle) || errors.Is(normErr, normalize.ErrMissingStartDate) {
				log.Warn("skipping unusable event", "error", normErr)
			}
			res.Failed++
			continue
		}
		created, upsertErr := i.upsert(ctx, &src, record)
		if upsertErr != nil {
			log.Error("failed to upsert event", "title", record.Title, "error", upsertErr)
			res.Failed++
			continue
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}

	log.Info("source imported",
		"found", res.Found, "created", res.Created, "updated", res.Updated, "failed", res.Failed)
	return res
}
