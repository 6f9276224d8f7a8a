package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dertown/eventscrape/internal/domain"
)

// DivListExtractor handles simple list-of-divs sites: each event lives in
// an .eventspecifics block, with start/end times carried as ISO datetimes
// on <time> tags in the nearest preceding .eventdatemonth block.
type DivListExtractor struct{}

// Name implements Extractor.
func (e *DivListExtractor) Name() string { return KeyDivList }

// Extract implements Extractor.
func (e *DivListExtractor) Extract(html string, baseURL *url.URL) ([]domain.RawEvent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var events []domain.RawEvent
	doc.Find(".eventspecifics").Each(func(_ int, sel *goquery.Selection) {
		event := domain.RawEvent{}

		titleLink := sel.Find("strong a").First()
		event.Title = domain.StrOrNil(strings.TrimSpace(titleLink.Text()))
		if href, ok := titleLink.Attr("href"); ok {
			event.Link = absoluteURL(baseURL, href)
		}

		start, end := precedingTimes(sel)
		if start != "" {
			event.StartDate = domain.StrOrNil(isoDatePart(start))
			event.StartTime = domain.StrOrNil(isoTimePart(start))
		}
		if end != "" {
			event.EndDate = domain.StrOrNil(isoDatePart(end))
			event.EndTime = domain.StrOrNil(isoTimePart(end))
		}

		event.Location = domain.StrOrNil(selText(sel, ".event-dates a"))
		event.Description = domain.StrOrNil(selText(sel, ".views-field-view-node"))

		events = append(events, event)
	})
	return events, nil
}

// precedingTimes finds the datetime attributes of the <time> tags in the
// closest .eventdatemonth block before the event container, checking the
// container's own siblings first and then its parent's.
func precedingTimes(sel *goquery.Selection) (start, end string) {
	block := sel.PrevAllFiltered("div.eventdatemonth").First()
	if block.Length() == 0 {
		block = sel.Parent().PrevAllFiltered("div.eventdatemonth").First()
	}
	if block.Length() == 0 {
		return "", ""
	}
	times := block.Find("time")
	if times.Length() > 0 {
		start, _ = times.Eq(0).Attr("datetime")
	}
	if times.Length() > 1 {
		end, _ = times.Eq(1).Attr("datetime")
	}
	return start, end
}

// isoDatePart returns the YYYY-MM-DD prefix of an ISO datetime string.
func isoDatePart(datetime string) string {
	if len(datetime) < 10 {
		return ""
	}
	return datetime[:10]
}

// isoTimePart returns the HH:MM segment of an ISO datetime string.
func isoTimePart(datetime string) string {
	if len(datetime) < 16 {
		return ""
	}
	return datetime[11:16]
}
