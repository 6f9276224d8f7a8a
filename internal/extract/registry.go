package extract

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/dertown/eventscrape/internal/domain"
)

// ErrUnknownExtractor is returned when a source site is configured with an
// extraction-function key the registry does not know. The importer surfaces
// this as a visible per-source error instead of silently extracting nothing.
var ErrUnknownExtractor = errors.New("unknown extraction function")

// Extractor converts one source's HTML document into raw event records.
// Extractors are pure: they never perform network requests themselves.
type Extractor interface {
	// Name identifies the markup family the extractor handles.
	Name() string
	// Extract parses html and returns records in document order. Failures
	// on an individual event container skip that container, never the batch.
	Extract(html string, baseURL *url.URL) ([]domain.RawEvent, error)
}

// PageLister is implemented by extractors whose sources spread events over
// additional pages (paginated calendar months, per-event detail pages).
// The fetch layer performs the requests so parsing stays network-free.
type PageLister interface {
	ExtraPages(baseURL *url.URL, now time.Time) []string
}

// Entry pairs an extractor with its fixed registry options.
type Entry struct {
	Extractor Extractor
	// FutureOnly drops past events from the extractor's output. This is a
	// per-entry decision made here, not a runtime option.
	FutureOnly bool
}

// Registry maps extraction-function keys to extractors. It is built once
// at process start and injected into the importer.
type Registry struct {
	entries map[string]Entry
}

// Extraction-function keys. A source site's ExtractionFunction must match
// one of these; `sources validate` checks the configured values.
const (
	KeyDivList        = "divlist"
	KeyModernCalendar = "moderncalendar"
	KeyEventsCalendar = "eventscalendar"
	KeyCalendarGrid   = "calendargrid"
	KeyTicketWidget   = "ticketwidget"
	KeySportsTable    = "sportstable"
	KeyLLM            = "llm"
	KeyDefault        = "default"
)

// NewRegistry builds the extractor registry. The llm and default keys map
// to a placeholder that extracts nothing; they exist for sources whose
// markup has no dedicated extractor yet.
func NewRegistry(monthsAhead int) *Registry {
	return &Registry{
		entries: map[string]Entry{
			KeyDivList:        {Extractor: &DivListExtractor{}, FutureOnly: true},
			KeyModernCalendar: {Extractor: &ModernCalendarExtractor{}, FutureOnly: true},
			KeyEventsCalendar: {Extractor: &EventsCalendarExtractor{}, FutureOnly: true},
			KeyCalendarGrid:   {Extractor: &CalendarGridExtractor{MonthsAhead: monthsAhead}, FutureOnly: true},
			KeyTicketWidget:   {Extractor: &TicketWidgetExtractor{}, FutureOnly: true},
			KeySportsTable:    {Extractor: &SportsTableExtractor{}, FutureOnly: true},
			KeyLLM:            {Extractor: &NoopExtractor{Key: KeyLLM}},
			KeyDefault:        {Extractor: &NoopExtractor{Key: KeyDefault}},
		},
	}
}

// Lookup returns the entry for key or ErrUnknownExtractor.
func (r *Registry) Lookup(key string) (Entry, error) {
	entry, ok := r.entries[key]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownExtractor, key)
	}
	return entry, nil
}

// Keys returns all registered extraction-function keys, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for key := range r.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
