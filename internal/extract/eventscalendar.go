package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dertown/eventscrape/internal/domain"
)

// tribeTimeRe captures the time portion of "May 13 @ 6:00 pm - 7:30 pm".
var tribeTimeRe = regexp.MustCompile(`@ ([\d: apm]+)(?:\s*-\s*([\d: apm]+))?`)

// EventsCalendarExtractor handles the WordPress "The Events Calendar"
// list view markup (tribe-events-* classes).
type EventsCalendarExtractor struct{}

// Name implements Extractor.
func (e *EventsCalendarExtractor) Name() string { return KeyEventsCalendar }

// Extract implements Extractor.
func (e *EventsCalendarExtractor) Extract(html string, baseURL *url.URL) ([]domain.RawEvent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var events []domain.RawEvent
	doc.Find("div.tribe-events-calendar-list__event-wrapper").Each(func(_ int, wrapper *goquery.Selection) {
		article := wrapper.Find("article.tribe-events-calendar-list__event").First()
		if article.Length() == 0 {
			return
		}
		event := domain.RawEvent{}

		imageLink := article.Find(".tribe-events-calendar-list__event-featured-image-link").First()
		if title, ok := imageLink.Attr("title"); ok {
			event.Title = domain.StrOrNil(strings.TrimSpace(title))
		}
		if href, ok := imageLink.Attr("href"); ok {
			event.Link = absoluteURL(baseURL, href)
		}

		if src := selAttr(article, "img.tribe-events-calendar-list__event-featured-image", "src"); src != "" {
			event.ImageURL = absoluteURL(baseURL, src)
		}

		timeTag := article.Find("time.tribe-events-calendar-list__event-datetime").First()
		if datetime, ok := timeTag.Attr("datetime"); ok {
			event.StartDate = domain.StrOrNil(strings.TrimSpace(datetime))
			// A list entry carries a single date.
			event.EndDate = event.StartDate
		}
		if timeTag.Length() > 0 {
			if m := tribeTimeRe.FindStringSubmatch(timeTag.Text()); m != nil {
				event.StartTime = domain.StrOrNil(strings.TrimSpace(m[1]))
				event.EndTime = domain.StrOrNil(strings.TrimSpace(m[2]))
			}
		}

		event.Description = domain.StrOrNil(selText(article, ".tribe-events-calendar-list__event-details"))

		events = append(events, event)
	})
	return events, nil
}
