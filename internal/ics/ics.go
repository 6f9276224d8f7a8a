// Package ics turns iCalendar (RFC 5545) files into the same raw event
// records the HTML extractors produce, so ICS imports share the
// normalization and upsert path with scraped sources.
package ics

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/dertown/eventscrape/internal/domain"
)

// dateTimeLayouts cover the DTSTART/DTEND value forms seen in exported
// calendars: UTC, floating local time, and all-day dates.
var dateTimeLayouts = []string{
	"20060102T150405Z",
	"20060102T150405",
	"20060102",
}

// URL label patterns lifted out of event descriptions. The first match
// wins; an unlabeled URL only serves as the website fallback.
var (
	websitePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)more info:\s*(https?://\S+)`),
		regexp.MustCompile(`(?i)website:\s*(https?://\S+)`),
		regexp.MustCompile(`(?i)info:\s*(https?://\S+)`),
		regexp.MustCompile(`(?i)details:\s*(https?://\S+)`),
		regexp.MustCompile(`(?i)learn more:\s*(https?://\S+)`),
	}
	registrationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)register(?:ation)?:\s*(https?://\S+)`),
		regexp.MustCompile(`(?i)sign[- ]?up:\s*(https?://\S+)`),
		regexp.MustCompile(`(?i)tickets:\s*(https?://\S+)`),
		regexp.MustCompile(`(?i)rsvp:\s*(https?://\S+)`),
	}
	anyURL = regexp.MustCompile(`https?://\S+`)
)

// textUnescaper reverses RFC 5545 TEXT escaping.
var textUnescaper = strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

// Parse reads an iCalendar document and returns one raw event per VEVENT.
// Components without a usable DTSTART are skipped.
func Parse(data string) ([]domain.RawEvent, error) {
	cal, err := ical.ParseCalendar(strings.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}

	var events []domain.RawEvent
	for _, component := range cal.Events() {
		raw, ok := parseEvent(component)
		if !ok {
			continue
		}
		events = append(events, raw)
	}
	return events, nil
}

func parseEvent(event *ical.VEvent) (domain.RawEvent, bool) {
	startDate, startTime := splitDateTime(propValue(event, ical.ComponentPropertyDtStart))
	if startDate == nil {
		return domain.RawEvent{}, false
	}
	_, endTime := splitDateTime(propValue(event, ical.ComponentPropertyDtEnd))

	description := textUnescaper.Replace(propValue(event, ical.ComponentPropertyDescription))
	website, registration := extractURLs(description, propValue(event, ical.ComponentPropertyUrl))

	raw := domain.RawEvent{
		Title:            domain.StrOrNil(textUnescaper.Replace(propValue(event, ical.ComponentPropertySummary))),
		StartDate:        startDate,
		StartTime:        startTime,
		EndTime:          endTime,
		Location:         domain.StrOrNil(textUnescaper.Replace(propValue(event, ical.ComponentPropertyLocation))),
		Organization:     domain.StrOrNil(organizerName(event)),
		Description:      domain.StrOrNil(description),
		Website:          domain.StrOrNil(website),
		RegistrationLink: domain.StrOrNil(registration),
		Category:         domain.StrOrNil(firstCategory(event)),
	}
	return raw, true
}

// splitDateTime parses an iCalendar date or date-time value into the
// canonical date string and an optional time of day. All-day values have
// no time component.
func splitDateTime(value string) (*string, *string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateTimeLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		date := t.Format(domain.DateFormat)
		if layout == "20060102" {
			return &date, nil
		}
		clock := t.Format(domain.TimeFormat)
		return &date, &clock
	}
	return nil, nil
}

// organizerName prefers the CN parameter over the raw organizer value,
// which is usually a mailto: URI.
func organizerName(event *ical.VEvent) string {
	prop := event.GetProperty(ical.ComponentPropertyOrganizer)
	if prop == nil {
		return ""
	}
	if cn, ok := prop.ICalParameters["CN"]; ok && len(cn) > 0 {
		return strings.TrimSpace(cn[0])
	}
	return strings.TrimSpace(strings.TrimPrefix(prop.Value, "mailto:"))
}

func firstCategory(event *ical.VEvent) string {
	value := propValue(event, ical.ComponentPropertyCategories)
	if value == "" {
		return ""
	}
	parts := strings.Split(value, ",")
	return strings.TrimSpace(textUnescaper.Replace(parts[0]))
}

func propValue(event *ical.VEvent, name ical.ComponentProperty) string {
	prop := event.GetProperty(name)
	if prop == nil {
		return ""
	}
	return strings.TrimSpace(prop.Value)
}

// extractURLs pulls website and registration links out of a description.
// An explicit URL property wins for the website; otherwise labeled links
// are tried first and any bare URL serves as the last resort.
func extractURLs(description, explicitWebsite string) (website, registration string) {
	website = strings.TrimSpace(explicitWebsite)

	if website == "" {
		for _, re := range websitePatterns {
			if m := re.FindStringSubmatch(description); m != nil {
				website = strings.TrimSpace(m[1])
				break
			}
		}
	}
	for _, re := range registrationPatterns {
		if m := re.FindStringSubmatch(description); m != nil {
			registration = strings.TrimSpace(m[1])
			break
		}
	}
	if website == "" {
		website = strings.TrimSpace(anyURL.FindString(description))
	}
	return website, registration
}
