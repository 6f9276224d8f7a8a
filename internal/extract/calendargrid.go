package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dertown/eventscrape/internal/domain"
)

// defaultMonthsAhead is how many calendar months a grid source covers when
// the importer configuration does not say otherwise.
const defaultMonthsAhead = 3

// hrefDateRe matches a /calendar/2024/6/20 style date embedded in an
// event link path.
var hrefDateRe = regexp.MustCompile(`/(\d{4})/(\d{1,2})(?:/(\d{1,2}))?`)

// CalendarGridExtractor handles Firespring-style monthly calendar grids.
// Events sit in td.calendar-grid-event-container cells; upcoming months
// live on separate /calendar/<year>/<month> pages, which the extractor
// declares via ExtraPages so the fetch layer can retrieve them.
type CalendarGridExtractor struct {
	MonthsAhead int
}

// Name implements Extractor.
func (e *CalendarGridExtractor) Name() string { return KeyCalendarGrid }

// ExtraPages implements PageLister: the calendar pages for the months
// after the current one.
func (e *CalendarGridExtractor) ExtraPages(baseURL *url.URL, now time.Time) []string {
	months := e.MonthsAhead
	if months <= 0 {
		months = defaultMonthsAhead
	}
	pages := make([]string, 0, months-1)
	for i := 1; i < months; i++ {
		year := now.Year() + (int(now.Month())+i-1)/12
		month := (int(now.Month())+i-1)%12 + 1
		pages = append(pages, fmt.Sprintf("%s/calendar/%d/%d", strings.TrimRight(baseURL.String(), "/"), year, month))
	}
	return pages
}

// Extract implements Extractor.
func (e *CalendarGridExtractor) Extract(html string, baseURL *url.URL) ([]domain.RawEvent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var events []domain.RawEvent
	doc.Find("td.calendar-grid-event-container").Each(func(_ int, cell *goquery.Selection) {
		link := cell.Find("a.calendar-grid-event").First()
		if link.Length() == 0 {
			return
		}
		event := domain.RawEvent{}

		if href, ok := link.Attr("href"); ok {
			event.Link = absoluteURL(baseURL, href)
		}

		if title, ok := link.Attr("title"); ok && strings.TrimSpace(title) != "" {
			event.Title = domain.Str(strings.TrimSpace(title))
		} else {
			event.Title = domain.StrOrNil(selText(link, ".calendar-grid-event__title"))
		}

		event.StartTime = domain.StrOrNil(selText(link, ".calendar-grid-event__time"))
		event.StartDate = cellDate(cell, event.Link)

		events = append(events, event)
	})
	return events, nil
}

// cellDate recovers the event date from the grid cell's data-date
// attribute, falling back to a date embedded in the event link path.
func cellDate(cell *goquery.Selection, link *string) *string {
	if dataDate, ok := cell.Attr("data-date"); ok && strings.TrimSpace(dataDate) != "" {
		return domain.Str(strings.TrimSpace(dataDate))
	}
	if link == nil {
		return nil
	}
	m := hrefDateRe.FindStringSubmatch(*link)
	if m == nil || m[3] == "" {
		return nil
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	return domain.Str(fmt.Sprintf("%04d-%02d-%02d", year, month, day))
}
