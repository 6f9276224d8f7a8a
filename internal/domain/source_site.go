package domain

import (
	"time"
)

// SourceSite describes an external site the importer periodically scrapes.
// Rows are created by operators; the importer only updates the run
// bookkeeping fields (LastScraped, LastStatus, LastError).
type SourceSite struct {
	ID                 string          `db:"id"                  json:"id"`
	Name               string          `db:"name"                json:"name"`
	URL                string          `db:"url"                 json:"url"`
	OrganizationID     *string         `db:"organization_id"     json:"organization_id,omitempty"`
	EventTagID         *string         `db:"event_tag_id"        json:"event_tag_id,omitempty"`
	ImportFrequency    ImportFrequency `db:"import_frequency"    json:"import_frequency"`
	ExtractionFunction string          `db:"extraction_function" json:"extraction_function"`
	LastScraped        *time.Time      `db:"last_scraped"        json:"last_scraped,omitempty"`
	LastStatus         string          `db:"last_status"         json:"last_status"`
	LastError          string          `db:"last_error"          json:"last_error"`
	CreatedAt          time.Time       `db:"created_at"          json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"          json:"updated_at"`
}

// ScrapeLog is an append-only audit record of one import attempt for one
// source. Rows are immutable after creation.
type ScrapeLog struct {
	ID            string    `db:"id"             json:"id"`
	SourceID      string    `db:"source_id"      json:"source_id"`
	Timestamp     time.Time `db:"timestamp"      json:"timestamp"`
	Status        string    `db:"status"         json:"status"`
	EventsFound   int       `db:"events_found"   json:"events_found"`
	EventsCreated int       `db:"events_created" json:"events_created"`
	EventsUpdated int       `db:"events_updated" json:"events_updated"`
	ErrorMessage  string    `db:"error_message"  json:"error_message"`
}

// Run outcome strings recorded on SourceSite.LastStatus and ScrapeLog.Status.
const (
	RunStatusSuccess = "success"
	RunStatusError   = "error"
	RunStatusSkipped = "skipped"
)
