// Package extract turns raw source-site HTML into event records. Each
// extractor handles one markup family; all of them parse fixed HTML with
// no network access so they stay unit-testable against fixtures.
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// selText returns the trimmed text of the first element matching the
// selector, or "" when nothing matches.
func selText(s *goquery.Selection, selector string) string {
	return strings.TrimSpace(s.Find(selector).First().Text())
}

// joinedText returns the text of the first match with inner segments
// joined by single spaces, for blocks whose children run together.
func joinedText(s *goquery.Selection, selector string) string {
	sel := s.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}
	return strings.Join(strings.Fields(sel.Text()), " ")
}

// selAttr returns the trimmed attribute value of the first element
// matching the selector, or "" when absent.
func selAttr(s *goquery.Selection, selector, attr string) string {
	val, _ := s.Find(selector).First().Attr(attr)
	return strings.TrimSpace(val)
}

// absoluteURL resolves href against base. Returns nil for an empty href
// or one that does not parse.
func absoluteURL(base *url.URL, href string) *string {
	href = strings.TrimSpace(href)
	if href == "" {
		return nil
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil
	}
	resolved := base.ResolveReference(ref).String()
	return &resolved
}
