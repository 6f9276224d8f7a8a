package extract

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dertown/eventscrape/internal/domain"
	"github.com/dertown/eventscrape/internal/normalize"
)

// SportsTableExtractor handles sports-schedule tables (tr.event rows with
// data-event-date attributes). Source business rules: only future home
// games are imported, and the row's "location" text is discarded because
// home-game location labels do not name the actual venue.
type SportsTableExtractor struct {
	// Now supplies today's date for the future-games rule and for dates
	// without a year. Defaults to time.Now.
	Now func() time.Time
}

// Name implements Extractor.
func (e *SportsTableExtractor) Name() string { return KeySportsTable }

// Extract implements Extractor.
func (e *SportsTableExtractor) Extract(html string, baseURL *url.URL) ([]domain.RawEvent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var events []domain.RawEvent
	doc.Find("tr.event.event-mobile").Each(func(_ int, row *goquery.Selection) {
		homeAway := selText(row, ".event-details .home-away")
		if !strings.Contains(strings.ToLower(homeAway), "home") {
			return
		}

		dateCell := row.Find("td.date.print-hide").First()
		dateStr, _ := dateCell.Attr("data-event-date")
		date, ok := parseLooseDate(dateStr, now)
		if !ok {
			return
		}
		startDate, _ := normalize.ParseDate(date)
		if startDate.Before(today) {
			return
		}

		event := domain.RawEvent{StartDate: &date}

		if timeStr, hasTime := dateCell.Attr("data-event-start-time"); hasTime {
			if clock, timeOK := normalize.ParseTime(timeStr); timeOK {
				event.StartTime = &clock
			}
		}

		team := selText(row, "td.team a")
		eventName := selText(row, ".event-details .event-name")
		if eventName != "" {
			event.Title = domain.Str(eventName)
		} else {
			event.Title = domain.StrOrNil(team)
		}
		event.Opponents = domain.StrOrNil(selText(row, ".event-details .opponent"))

		if href := selAttr(row, "td.info-mobile a", "href"); href != "" {
			event.Link = absoluteURL(baseURL, href)
		}

		events = append(events, event)
	})
	return events, nil
}
