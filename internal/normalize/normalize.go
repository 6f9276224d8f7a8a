// Package normalize coerces loosely-typed extracted event fields into
// canonical values: cleaned titles, ISO dates, 24-hour times, sanitized
// free text, and booleans.
package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/dertown/eventscrape/internal/domain"
)

var (
	leadingBoilerplate = []*regexp.Regexp{
		regexp.MustCompile(`^Event: `),
		regexp.MustCompile(`^Calendar: `),
		regexp.MustCompile(`^Wenatchee Valley:`),
	}
	trailingBoilerplate = []*regexp.Regexp{
		regexp.MustCompile(`\s*\(Has reached capacity\)$`),
		regexp.MustCompile(`\s*\(Full\)$`),
		regexp.MustCompile(`\s*\(Sold out\)$`),
	}
	controlChars        = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	nonASCII            = regexp.MustCompile(`[^\x00-\x7f]+`)
	trailingPunctuation = regexp.MustCompile(`[:\-.,]+$`)
	collapsedWhitespace = regexp.MustCompile(`\s+`)
)

// CleanTitle strips known boilerplate prefixes and suffixes, control and
// non-ASCII characters, and trailing punctuation. Cleaning runs to a
// fixpoint so stripping punctuation cannot expose boilerplate that then
// survives; CleanTitle(CleanTitle(x)) == CleanTitle(x).
func CleanTitle(title string) string {
	// Each pass strips at least one character, so this terminates.
	for {
		cleaned := cleanTitleOnce(title)
		if cleaned == title {
			return title
		}
		title = cleaned
	}
}

func cleanTitleOnce(title string) string {
	for _, re := range leadingBoilerplate {
		title = re.ReplaceAllString(title, "")
	}
	for _, re := range trailingBoilerplate {
		title = re.ReplaceAllString(title, "")
	}
	title = controlChars.ReplaceAllString(title, "")
	title = nonASCII.ReplaceAllString(title, "")
	title = strings.TrimSpace(title)
	title = trailingPunctuation.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}

// timeLayouts are tried in order against an upper-cased, space-stripped
// time string ("6:00PM", "18:00", "18:00:00").
var timeLayouts = []string{"3:04PM", "15:04", "15:04:05"}

// ParseTime parses a free-text time of day ("6:00pm", "6:00 PM", "18:00",
// "18:00:00") into canonical HH:MM form. Returns false when the input is
// empty or unparseable.
func ParseTime(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	s = nonASCII.ReplaceAllString(s, "")
	if s == "" {
		return "", false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(domain.TimeFormat), true
		}
	}
	return "", false
}

// ParseDate parses a canonical YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(domain.DateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SanitizeText strips ASCII control characters and collapses runs of
// whitespace. Used for descriptions and other free-text fields.
func SanitizeText(s string) string {
	s = controlChars.ReplaceAllString(s, "")
	return strings.TrimSpace(collapsedWhitespace.ReplaceAllString(s, " "))
}

// ParseBool coerces a free-text flag to a boolean. "yes", "true" and "1"
// (case-insensitive) are true; everything else is false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true
	default:
		return false
	}
}
