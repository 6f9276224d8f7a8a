package extract

import (
	"net/url"

	"github.com/dertown/eventscrape/internal/domain"
)

// NoopExtractor extracts nothing. It backs the llm and default keys:
// sources without a dedicated extractor yet stay configured without
// producing events.
type NoopExtractor struct {
	Key string
}

// Name implements Extractor.
func (e *NoopExtractor) Name() string { return e.Key }

// Extract implements Extractor.
func (e *NoopExtractor) Extract(_ string, _ *url.URL) ([]domain.RawEvent, error) {
	return nil, nil
}
