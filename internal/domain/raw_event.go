package domain

// RawEvent is the loosely-typed record an extractor produces from one
// event container in a source page. It is never persisted; it exists only
// between extraction and normalization. Every field an extractor cannot
// determine is nil.
type RawEvent struct {
	Title                *string
	StartDate            *string // YYYY-MM-DD
	EndDate              *string // YYYY-MM-DD
	StartTime            *string // free text, normalized later ("6:00 PM", "18:00", ...)
	EndTime              *string
	Location             *string // free-text venue name
	Organization         *string // free-text host name
	Description          *string
	Link                 *string // event detail page, absolute
	Website              *string // more-information URL
	RegistrationLink     *string // registration / ticket URL
	ImageURL             *string
	Fee                  *string
	RegistrationRequired *string // free-text boolean ("yes", "true", "1")
	Category             *string
	Opponents            *string // sports schedules only
}

// Str returns a pointer to s. Extractors use it to build RawEvent fields
// from values that are known to be present.
func Str(s string) *string {
	return &s
}

// StrOrNil returns nil for the empty string, otherwise a pointer to s.
func StrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
