package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/dertown/eventscrape/internal/domain"
)

// looseDateLayouts are tried in order against a cleaned free-text date.
// Layouts without a year are completed with the reference year.
var looseDateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"01/02/2006",
	"2 January 2006",
}

var looseDateNoYearLayouts = []string{
	"January 2",
	"Jan 2",
	"01/02",
}

var timeRangeRe = regexp.MustCompile(`(?i)(\d{1,2}:\d{2}\s*[ap]m)(?:\s*-\s*(\d{1,2}:\d{2}\s*[ap]m))?`)

// parseLooseDate parses a free-text date as found in source markup
// ("June 20, 2024", "Fri, Jun 20", "2024-06-20"). A leading weekday is
// dropped and a missing year defaults to the year of now. The result is
// formatted as YYYY-MM-DD.
func parseLooseDate(s string, now time.Time) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	// Strip a leading weekday ("Friday, June 20" -> "June 20").
	if idx := strings.Index(s, ","); idx >= 0 {
		head := strings.ToLower(strings.TrimSpace(s[:idx]))
		if isWeekday(head) {
			s = strings.TrimSpace(s[idx+1:])
		}
	}

	for _, layout := range looseDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(domain.DateFormat), true
		}
	}
	for _, layout := range looseDateNoYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return t.Format(domain.DateFormat), true
		}
	}
	return "", false
}

func isWeekday(s string) bool {
	switch strings.TrimSuffix(s, ".") {
	case "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
		"mon", "tue", "tues", "wed", "thu", "thur", "thurs", "fri", "sat", "sun":
		return true
	default:
		return false
	}
}

// parseTimeRange splits "6:00 pm - 7:30 pm" into raw start and end time
// strings. The end time is nil for a single time.
func parseTimeRange(s string) (start, end *string) {
	m := timeRangeRe.FindStringSubmatch(s)
	if m == nil {
		return nil, nil
	}
	startVal := strings.TrimSpace(m[1])
	start = &startVal
	if m[2] != "" {
		endVal := strings.TrimSpace(m[2])
		end = &endVal
	}
	return start, end
}
