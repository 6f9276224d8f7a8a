package extract

import (
	"time"

	"github.com/dertown/eventscrape/internal/domain"
	"github.com/dertown/eventscrape/internal/logger"
	"github.com/dertown/eventscrape/internal/normalize"
)

// FilterFuture retains records whose start date parses and is on or after
// today. Records with a missing or unparseable start date are dropped with
// a warning rather than failing the batch; the filter is idempotent.
func FilterFuture(events []domain.RawEvent, today time.Time, log logger.Interface) []domain.RawEvent {
	today = truncateToDay(today)
	filtered := make([]domain.RawEvent, 0, len(events))
	for _, event := range events {
		if event.StartDate == nil {
			log.Warn("Dropping event without start date", "title", strOrEmpty(event.Title))
			continue
		}
		startDate, ok := normalize.ParseDate(*event.StartDate)
		if !ok {
			log.Warn("Dropping event with unparseable start date",
				"title", strOrEmpty(event.Title), "start_date", *event.StartDate)
			continue
		}
		if startDate.Before(today) {
			continue
		}
		filtered = append(filtered, event)
	}
	return filtered
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
