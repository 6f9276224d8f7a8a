package importer_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dertown/eventscrape/internal/database"
	"github.com/dertown/eventscrape/internal/domain"
	"github.com/dertown/eventscrape/internal/extract"
	"github.com/dertown/eventscrape/internal/fetch"
	"github.com/dertown/eventscrape/internal/importer"
	"github.com/dertown/eventscrape/internal/logger"
)

// calendarHTML is a list-of-divs page with two events far enough in the
// future to survive the past-event filter.
const calendarHTML = `<!DOCTYPE html>
<html>
<body>
  <div class="eventdatemonth">
    <time datetime="2030-09-12T18:00:00Z">September 12</time>
    <time datetime="2030-09-12T21:00:00Z">September 12</time>
  </div>
  <div class="eventspecifics">
    <strong><a href="/events/harvest-festival">Harvest Festival</a></strong>
    <div class="event-dates"><a href="/venues/park">Front Street Park</a></div>
    <div class="views-field-view-node">Cider pressing and live music.</div>
  </div>
  <div class="eventdatemonth">
    <time datetime="2030-10-03T10:00:00Z">October 3</time>
  </div>
  <div class="eventspecifics">
    <strong><a href="/events/salmon-run">Salmon Run</a></strong>
  </div>
</body>
</html>`

type recordedRun struct {
	id     string
	status string
	errMsg string
}

type fakeSourceStore struct {
	mu      sync.Mutex
	sources []domain.SourceSite
	runs    []recordedRun
}

func (s *fakeSourceStore) List(_ context.Context) ([]domain.SourceSite, error) {
	return s.sources, nil
}

func (s *fakeSourceStore) GetByID(_ context.Context, id string) (*domain.SourceSite, error) {
	for i := range s.sources {
		if s.sources[i].ID == id {
			return &s.sources[i], nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeSourceStore) RecordRun(_ context.Context, id string, _ time.Time, status, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, recordedRun{id: id, status: status, errMsg: errMsg})
	return nil
}

func (s *fakeSourceStore) runFor(id string) (recordedRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, run := range s.runs {
		if run.id == id {
			return run, true
		}
	}
	return recordedRun{}, false
}

type fakeLogStore struct {
	mu   sync.Mutex
	logs []domain.ScrapeLog
}

func (s *fakeLogStore) Create(_ context.Context, log *domain.ScrapeLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, *log)
	return nil
}

type fakeEventStore struct {
	mu      sync.Mutex
	events  []domain.Event
	created int
	updated int
}

func (s *fakeEventStore) ListByStartDate(_ context.Context, date time.Time) ([]domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Event
	for _, event := range s.events {
		if event.StartDate.Format(domain.DateFormat) == date.Format(domain.DateFormat) {
			out = append(out, event)
		}
	}
	return out, nil
}

func (s *fakeEventStore) Create(_ context.Context, event *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created++
	event.ID = fmt.Sprintf("event-%d", s.created)
	s.events = append(s.events, *event)
	return nil
}

func (s *fakeEventStore) Update(_ context.Context, event *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID == event.ID {
			s.updated++
			s.events[i] = *event
			return nil
		}
	}
	return database.ErrNotFound
}

func (s *fakeEventStore) byTitle(title string) (domain.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, event := range s.events {
		if event.Title == title {
			return event, true
		}
	}
	return domain.Event{}, false
}

type fakeResolver struct{}

func (fakeResolver) Location(_ context.Context, name string) (*domain.Location, error) {
	if name == "" {
		return nil, nil
	}
	return &domain.Location{ID: "loc-" + name, Name: name}, nil
}

func (fakeResolver) Organization(_ context.Context, name, _ string, defaultOrgID *string) (*string, error) {
	if name == "" {
		return defaultOrgID, nil
	}
	id := "org-" + name
	return &id, nil
}

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]*fetch.Result
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) Get(_ context.Context, pageURL string) (*fetch.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, pageURL)
	f.mu.Unlock()
	if err, ok := f.errs[pageURL]; ok {
		return nil, err
	}
	if page, ok := f.pages[pageURL]; ok {
		return page, nil
	}
	return nil, fmt.Errorf("no page for %s", pageURL)
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestImporter(
	sources *fakeSourceStore,
	logs *fakeLogStore,
	events *fakeEventStore,
	fetcher *fakeFetcher,
) *importer.Importer {
	return importer.NewImporter(importer.Params{
		Sources:  sources,
		Logs:     logs,
		Events:   events,
		Resolver: fakeResolver{},
		Registry: extract.NewRegistry(3),
		Fetcher:  fetcher,
		Logger:   logger.NewNoOp(),
	})
}

func divListSource(id, pageURL string) domain.SourceSite {
	return domain.SourceSite{
		ID:                 id,
		Name:               "Source " + id,
		URL:                pageURL,
		ImportFrequency:    domain.FrequencyDaily,
		ExtractionFunction: extract.KeyDivList,
	}
}

func TestRunCreatesEvents(t *testing.T) {
	t.Parallel()

	sources := &fakeSourceStore{sources: []domain.SourceSite{
		divListSource("src-1", "https://example.org/events"),
	}}
	logs := &fakeLogStore{}
	events := &fakeEventStore{}
	fetcher := &fakeFetcher{pages: map[string]*fetch.Result{
		"https://example.org/events": {StatusCode: 200, Body: calendarHTML},
	}}

	imp := newTestImporter(sources, logs, events, fetcher)
	summary, err := imp.Run(context.Background(), importer.Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 2, summary.Created)
	assert.Zero(t, summary.Updated)

	festival, ok := events.byTitle("Harvest Festival")
	require.True(t, ok)
	assert.Equal(t, domain.StatusPending, festival.Status)
	assert.Equal(t, "2030-09-12", festival.StartDate.Format(domain.DateFormat))
	require.NotNil(t, festival.StartTime)
	assert.Equal(t, "18:00", *festival.StartTime)
	require.NotNil(t, festival.LocationID)
	assert.Equal(t, "loc-Front Street Park", *festival.LocationID)

	run, ok := sources.runFor("src-1")
	require.True(t, ok)
	assert.Equal(t, domain.RunStatusSuccess, run.status)
	assert.Empty(t, run.errMsg)

	require.Len(t, logs.logs, 1)
	assert.Equal(t, "src-1", logs.logs[0].SourceID)
	assert.Equal(t, 2, logs.logs[0].EventsFound)
	assert.Equal(t, 2, logs.logs[0].EventsCreated)
	assert.Zero(t, logs.logs[0].EventsUpdated)
}

func TestRunUpsertIdempotent(t *testing.T) {
	t.Parallel()

	sources := &fakeSourceStore{sources: []domain.SourceSite{
		divListSource("src-1", "https://example.org/events"),
	}}
	events := &fakeEventStore{}
	fetcher := &fakeFetcher{pages: map[string]*fetch.Result{
		"https://example.org/events": {StatusCode: 200, Body: calendarHTML},
	}}

	imp := newTestImporter(sources, &fakeLogStore{}, events, fetcher)

	first, err := imp.Run(context.Background(), importer.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	second, err := imp.Run(context.Background(), importer.Options{})
	require.NoError(t, err)
	assert.Zero(t, second.Created, "re-import must not duplicate events")
	assert.Equal(t, 2, second.Updated)

	assert.Len(t, events.events, 2)
}

func TestRunResetsApprovedEventToPending(t *testing.T) {
	t.Parallel()

	oldDescription := "Last year's description."
	sources := &fakeSourceStore{sources: []domain.SourceSite{
		divListSource("src-1", "https://example.org/events"),
	}}
	events := &fakeEventStore{events: []domain.Event{{
		ID:          "event-existing",
		Title:       "Harvest Festival",
		StartDate:   time.Date(2030, 9, 12, 0, 0, 0, 0, time.UTC),
		Description: &oldDescription,
		Status:      domain.StatusApproved,
	}}}
	fetcher := &fakeFetcher{pages: map[string]*fetch.Result{
		"https://example.org/events": {StatusCode: 200, Body: calendarHTML},
	}}

	imp := newTestImporter(sources, &fakeLogStore{}, events, fetcher)
	summary, err := imp.Run(context.Background(), importer.Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Created)

	festival, ok := events.byTitle("Harvest Festival")
	require.True(t, ok)
	assert.Equal(t, "event-existing", festival.ID)
	assert.Equal(t, domain.StatusPending, festival.Status, "re-imported events go back to review")
	require.NotNil(t, festival.Description)
	assert.Equal(t, "Cider pressing and live music.", *festival.Description)
}

func TestRunDueOnlySkipsNotDueSources(t *testing.T) {
	t.Parallel()

	recent := time.Now().Add(-time.Hour)
	dueSource := divListSource("src-due", "https://example.org/due")
	notDue := divListSource("src-fresh", "https://example.org/fresh")
	notDue.LastScraped = &recent

	sources := &fakeSourceStore{sources: []domain.SourceSite{dueSource, notDue}}
	logs := &fakeLogStore{}
	fetcher := &fakeFetcher{pages: map[string]*fetch.Result{
		"https://example.org/due": {StatusCode: 200, Body: calendarHTML},
	}}

	imp := newTestImporter(sources, logs, &fakeEventStore{}, fetcher)
	summary, err := imp.Run(context.Background(), importer.Options{DueOnly: true})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, []string{"https://example.org/due"}, fetcher.calls,
		"a not-due source must not be fetched at all")

	_, ok := sources.runFor("src-fresh")
	assert.False(t, ok, "a not-due source gets no run bookkeeping")
	require.Len(t, logs.logs, 1)
	assert.Equal(t, "src-due", logs.logs[0].SourceID)
}

func TestRunSourceFailureIsolation(t *testing.T) {
	t.Parallel()

	sources := &fakeSourceStore{sources: []domain.SourceSite{
		divListSource("src-bad", "https://broken.example.org/events"),
		divListSource("src-good", "https://example.org/events"),
	}}
	logs := &fakeLogStore{}
	events := &fakeEventStore{}
	fetcher := &fakeFetcher{
		pages: map[string]*fetch.Result{
			"https://example.org/events": {StatusCode: 200, Body: calendarHTML},
		},
		errs: map[string]error{
			"https://broken.example.org/events": fmt.Errorf("connection refused"),
		},
	}

	imp := newTestImporter(sources, logs, events, fetcher)
	summary, err := imp.Run(context.Background(), importer.Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Created, "the healthy source still imports")

	badRun, ok := sources.runFor("src-bad")
	require.True(t, ok)
	assert.Equal(t, domain.RunStatusError, badRun.status)
	assert.Contains(t, badRun.errMsg, "connection refused")

	goodRun, ok := sources.runFor("src-good")
	require.True(t, ok)
	assert.Equal(t, domain.RunStatusSuccess, goodRun.status)

	assert.Len(t, logs.logs, 2, "every attempted source gets a log entry")
}

func TestRunUnknownExtractionFunction(t *testing.T) {
	t.Parallel()

	source := divListSource("src-1", "https://example.org/events")
	source.ExtractionFunction = "extract_from_carousel"

	sources := &fakeSourceStore{sources: []domain.SourceSite{source}}
	fetcher := &fakeFetcher{}

	imp := newTestImporter(sources, &fakeLogStore{}, &fakeEventStore{}, fetcher)
	summary, err := imp.Run(context.Background(), importer.Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	run, ok := sources.runFor("src-1")
	require.True(t, ok)
	assert.Equal(t, domain.RunStatusError, run.status)
	assert.Contains(t, run.errMsg, "extract_from_carousel",
		"a misconfigured extraction key must surface visibly")
	assert.Zero(t, fetcher.callCount(), "no request for a source that cannot be parsed")
}

func TestRunLastModifiedShortCircuit(t *testing.T) {
	t.Parallel()

	lastScraped := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	lastModified := lastScraped.Add(-24 * time.Hour)

	source := divListSource("src-1", "https://example.org/events")
	source.LastScraped = &lastScraped

	sources := &fakeSourceStore{sources: []domain.SourceSite{source}}
	events := &fakeEventStore{}
	fetcher := &fakeFetcher{pages: map[string]*fetch.Result{
		"https://example.org/events": {StatusCode: 200, Body: calendarHTML, LastModified: &lastModified},
	}}

	imp := newTestImporter(sources, &fakeLogStore{}, events, fetcher)
	summary, err := imp.Run(context.Background(), importer.Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, events.events, "an unchanged page imports nothing")

	run, ok := sources.runFor("src-1")
	require.True(t, ok)
	assert.Equal(t, domain.RunStatusSkipped, run.status)
}

func TestRunForceUpdateIgnoresLastModified(t *testing.T) {
	t.Parallel()

	lastScraped := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	lastModified := lastScraped.Add(-24 * time.Hour)

	source := divListSource("src-1", "https://example.org/events")
	source.LastScraped = &lastScraped

	sources := &fakeSourceStore{sources: []domain.SourceSite{source}}
	events := &fakeEventStore{}
	fetcher := &fakeFetcher{pages: map[string]*fetch.Result{
		"https://example.org/events": {StatusCode: 200, Body: calendarHTML, LastModified: &lastModified},
	}}

	imp := newTestImporter(sources, &fakeLogStore{}, events, fetcher)
	summary, err := imp.Run(context.Background(), importer.Options{ForceUpdate: true})
	require.NoError(t, err)

	assert.Zero(t, summary.Skipped)
	assert.Equal(t, 2, summary.Created)
}

func TestRunSingleSourceByID(t *testing.T) {
	t.Parallel()

	sources := &fakeSourceStore{sources: []domain.SourceSite{
		divListSource("src-1", "https://example.org/one"),
		divListSource("src-2", "https://example.org/two"),
	}}
	fetcher := &fakeFetcher{pages: map[string]*fetch.Result{
		"https://example.org/two": {StatusCode: 200, Body: calendarHTML},
	}}

	imp := newTestImporter(sources, &fakeLogStore{}, &fakeEventStore{}, fetcher)
	summary, err := imp.Run(context.Background(), importer.Options{SourceID: "src-2"})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, []string{"https://example.org/two"}, fetcher.calls)
}

func TestRunUnknownSourceID(t *testing.T) {
	t.Parallel()

	sources := &fakeSourceStore{}
	imp := newTestImporter(sources, &fakeLogStore{}, &fakeEventStore{}, &fakeFetcher{})

	_, err := imp.Run(context.Background(), importer.Options{SourceID: "missing"})
	require.ErrorIs(t, err, database.ErrNotFound)
}

func TestRunConcurrentWorkers(t *testing.T) {
	t.Parallel()

	var siteList []domain.SourceSite
	pages := make(map[string]*fetch.Result)
	for i := 0; i < 8; i++ {
		pageURL := fmt.Sprintf("https://example.org/site-%d", i)
		siteList = append(siteList, divListSource(fmt.Sprintf("src-%d", i), pageURL))
		pages[pageURL] = &fetch.Result{StatusCode: 200, Body: calendarHTML}
	}

	sources := &fakeSourceStore{sources: siteList}
	events := &fakeEventStore{}
	imp := newTestImporter(sources, &fakeLogStore{}, events, &fakeFetcher{pages: pages})

	summary, err := imp.Run(context.Background(), importer.Options{Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, 8, summary.Processed)
	assert.Equal(t, 8, summary.Succeeded)
	require.Len(t, summary.Results, 8)
}
