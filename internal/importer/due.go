package importer

import (
	"time"

	"github.com/dertown/eventscrape/internal/domain"
)

// IsDue reports whether a source should be imported automatically: never
// for manual frequency, always when never scraped, otherwise when the
// configured interval has elapsed since the last scrape.
func IsDue(source *domain.SourceSite, now time.Time) bool {
	interval, ok := source.ImportFrequency.Interval()
	if !ok {
		return false
	}
	if source.LastScraped == nil {
		return true
	}
	return now.Sub(*source.LastScraped) >= interval
}
