package normalize

import (
	"errors"
	"fmt"
	"time"

	"github.com/dertown/eventscrape/internal/domain"
	"github.com/dertown/eventscrape/internal/logger"
)

var (
	// ErrMissingTitle is returned when a raw event has no usable title.
	ErrMissingTitle = errors.New("event has no title")
	// ErrMissingStartDate is returned when a raw event has no start date.
	ErrMissingStartDate = errors.New("event has no start date")
)

// Record is a validated canonical event produced from one RawEvent. Field
// values are cleaned and coerced; entity resolution for the free-text
// Location and Organization names happens downstream.
type Record struct {
	Title                string
	StartDate            time.Time
	EndDate              *time.Time
	StartTime            *string
	EndTime              *string
	Location             *string
	Organization         *string
	Description          *string
	Website              *string
	RegistrationLink     *string
	ExternalImageURL     *string
	Fee                  *string
	RegistrationRequired bool
}

// Event validates and normalizes one extracted record. A missing or
// unparseable required field (title, start date) rejects the record; a bad
// optional field is dropped to nil with a warning so one malformed value
// never discards the whole event.
func Event(raw domain.RawEvent, log logger.Interface) (*Record, error) {
	title := ""
	if raw.Title != nil {
		title = CleanTitle(*raw.Title)
	}
	if title == "" {
		return nil, ErrMissingTitle
	}

	if raw.StartDate == nil {
		return nil, ErrMissingStartDate
	}
	startDate, ok := ParseDate(*raw.StartDate)
	if !ok {
		return nil, fmt.Errorf("event %q: unparseable start date %q", title, *raw.StartDate)
	}

	rec := &Record{
		Title:            title,
		StartDate:        startDate,
		Location:         sanitizeOptional(raw.Location),
		Organization:     sanitizeOptional(raw.Organization),
		Description:      sanitizeOptional(raw.Description),
		Website:          firstNonNil(raw.Website, raw.Link),
		RegistrationLink: raw.RegistrationLink,
		ExternalImageURL: raw.ImageURL,
		Fee:              sanitizeOptional(raw.Fee),
	}

	if raw.EndDate != nil {
		if endDate, endOK := ParseDate(*raw.EndDate); endOK {
			rec.EndDate = &endDate
		} else {
			log.Warn("Dropping unparseable end date", "title", title, "end_date", *raw.EndDate)
		}
	}

	rec.StartTime = normalizeTime(raw.StartTime, title, "start_time", log)
	rec.EndTime = normalizeTime(raw.EndTime, title, "end_time", log)

	if raw.RegistrationRequired != nil {
		rec.RegistrationRequired = ParseBool(*raw.RegistrationRequired)
	}

	return rec, nil
}

// normalizeTime parses an optional free-text time, logging and yielding
// nil on failure rather than rejecting the record.
func normalizeTime(s *string, title, field string, log logger.Interface) *string {
	if s == nil {
		return nil
	}
	parsed, ok := ParseTime(*s)
	if !ok {
		log.Warn("Could not parse time", "title", title, "field", field, "value", *s)
		return nil
	}
	return &parsed
}

func sanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	cleaned := SanitizeText(*s)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

func firstNonNil(values ...*string) *string {
	for _, v := range values {
		if v != nil && *v != "" {
			return v
		}
	}
	return nil
}
