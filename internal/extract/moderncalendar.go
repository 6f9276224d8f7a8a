package extract

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dertown/eventscrape/internal/domain"
)

// ModernCalendarExtractor handles the WordPress "Modern Events Calendar"
// classic list markup (mec-* classes). Two of the configured sources share
// this template family.
type ModernCalendarExtractor struct {
	// Now supplies the reference time for dates without a year. Defaults
	// to time.Now.
	Now func() time.Time
}

// Name implements Extractor.
func (e *ModernCalendarExtractor) Name() string { return KeyModernCalendar }

// Extract implements Extractor.
func (e *ModernCalendarExtractor) Extract(html string, baseURL *url.URL) ([]domain.RawEvent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}

	var events []domain.RawEvent
	doc.Find(".mec-event-list-classic article.mec-event-article, .mec-event-list-classic article.mec-past-event").
		Each(func(_ int, article *goquery.Selection) {
			event := domain.RawEvent{}

			titleLink := article.Find("h4.mec-event-title a").First()
			event.Title = domain.StrOrNil(strings.TrimSpace(titleLink.Text()))
			if href, ok := titleLink.Attr("href"); ok {
				event.Link = absoluteURL(baseURL, href)
			}

			if dateStr := selText(article, ".mec-event-date .mec-start-date-label"); dateStr != "" {
				if date, ok := parseLooseDate(dateStr, now); ok {
					event.StartDate = &date
				}
			}

			if timeStr := selText(article, ".mec-event-time"); timeStr != "" {
				event.StartTime, event.EndTime = parseTimeRange(timeStr)
			}

			event.Location = domain.StrOrNil(selText(article, ".mec-event-loc-place"))
			event.Description = domain.StrOrNil(selText(article, ".mec-event-detail"))

			events = append(events, event)
		})
	return events, nil
}
