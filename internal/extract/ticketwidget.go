package extract

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dertown/eventscrape/internal/domain"
)

// clockRe finds a clock reading ("7:30 PM") inside a combined date/time
// string.
var clockRe = regexp.MustCompile(`(?i)\d{1,2}:\d{2}\s*[ap]m`)

// TicketWidgetExtractor handles Salesforce-ticketing widget markup:
// div.event-container blocks with purchase links or, failing that, a
// ticket <select> whose option values carry the purchase URLs.
type TicketWidgetExtractor struct {
	// Now supplies the reference time for dates without a year. Defaults
	// to time.Now.
	Now func() time.Time
}

// Name implements Extractor.
func (e *TicketWidgetExtractor) Name() string { return KeyTicketWidget }

// Extract implements Extractor.
func (e *TicketWidgetExtractor) Extract(html string, baseURL *url.URL) ([]domain.RawEvent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}

	var events []domain.RawEvent
	doc.Find("div.event-container").Each(func(_ int, container *goquery.Selection) {
		event := domain.RawEvent{}

		event.Title, event.Category = titleAndCategory(container)

		if dateTimeStr := joinedText(container, ".event-datetime .date-container"); dateTimeStr != "" {
			event.StartDate, event.StartTime = splitDateTime(dateTimeStr, now)
		}

		if src := selAttr(container, ".event-img img", "src"); src != "" {
			event.ImageURL = absoluteURL(baseURL, src)
		}
		if href := selAttr(container, ".event-info a", "href"); href != "" {
			event.Website = absoluteURL(baseURL, href)
		}
		event.RegistrationLink = purchaseLink(container, baseURL)
		event.Fee = domain.StrOrNil(selText(container, ".event-price"))
		event.Description = domain.StrOrNil(joinedText(container, ".event-desc"))

		events = append(events, event)
	})
	return events, nil
}

// titleAndCategory splits the title block's text segments: the first is
// the event title, the second (when present) its category label.
func titleAndCategory(container *goquery.Selection) (title, category *string) {
	inner := container.Find(".event-title-inner").First()
	if inner.Length() == 0 {
		return nil, nil
	}
	var parts []string
	inner.Contents().Each(func(_ int, node *goquery.Selection) {
		if text := strings.TrimSpace(node.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	if len(parts) > 0 {
		title = domain.Str(parts[0])
	}
	if len(parts) > 1 {
		category = domain.Str(parts[1])
	}
	return title, category
}

// splitDateTime separates "June 20, 2024 7:30 PM" into a canonical date
// and a raw time string.
func splitDateTime(s string, now time.Time) (date, clock *string) {
	if m := clockRe.FindString(s); m != "" {
		clock = domain.Str(strings.TrimSpace(m))
		s = strings.TrimSpace(strings.Replace(s, m, "", 1))
	}
	if parsed, ok := parseLooseDate(s, now); ok {
		date = &parsed
	}
	return date, clock
}

// purchaseLink finds the ticket purchase URL: a direct anchor when the
// widget renders one, otherwise the first real option value in the ticket
// select control.
func purchaseLink(container *goquery.Selection, baseURL *url.URL) *string {
	purchase := container.Find(".event-purchase").First()
	if purchase.Length() == 0 {
		return nil
	}
	if href, ok := purchase.Find("a").First().Attr("href"); ok {
		return absoluteURL(baseURL, href)
	}

	var link *string
	purchase.Find("select option").EachWithBreak(func(_ int, option *goquery.Selection) bool {
		value, ok := option.Attr("value")
		if !ok || value == "" || value == "Buy Tickets" {
			return true
		}
		link = domain.Str(value)
		return false
	})
	return link
}
