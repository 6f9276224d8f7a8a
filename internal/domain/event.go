package domain

import (
	"time"
)

// DateFormat is the canonical wire format for event dates.
const DateFormat = "2006-01-02"

// TimeFormat is the canonical wire format for event times of day.
const TimeFormat = "15:04"

// Event is the canonical persisted event entity. Events have no stable
// external ID across source sites, so the upsert identity is the pair
// (title, start date) with fuzzy title matching.
type Event struct {
	ID                    string     `db:"id"                       json:"id"`
	Title                 string     `db:"title"                    json:"title"`
	Description           *string    `db:"description"              json:"description,omitempty"`
	StartDate             time.Time  `db:"start_date"               json:"start_date"`
	EndDate               *time.Time `db:"end_date"                 json:"end_date,omitempty"`
	StartTime             *string    `db:"start_time"               json:"start_time,omitempty"`
	EndTime               *string    `db:"end_time"                 json:"end_time,omitempty"`
	LocationID            *string    `db:"location_id"              json:"location_id,omitempty"`
	OrganizationID        *string    `db:"organization_id"          json:"organization_id,omitempty"`
	PrimaryTagID          *string    `db:"primary_tag_id"           json:"primary_tag_id,omitempty"`
	SecondaryTagID        *string    `db:"secondary_tag_id"         json:"secondary_tag_id,omitempty"`
	Email                 *string    `db:"email"                    json:"email,omitempty"`
	Website               *string    `db:"website"                  json:"website,omitempty"`
	RegistrationLink      *string    `db:"registration_link"        json:"registration_link,omitempty"`
	ExternalImageURL      *string    `db:"external_image_url"       json:"external_image_url,omitempty"`
	Fee                   *string    `db:"fee"                      json:"fee,omitempty"`
	RegistrationRequired  bool       `db:"registration_required"    json:"registration_required"`
	Featured              bool       `db:"featured"                 json:"featured"`
	ExcludeFromCalendar   bool       `db:"exclude_from_calendar"    json:"exclude_from_calendar"`
	ParentEventID         *string    `db:"parent_event_id"          json:"parent_event_id,omitempty"`
	GoogleCalendarEventID *string    `db:"google_calendar_event_id" json:"google_calendar_event_id,omitempty"`
	DetailsOutdated       bool       `db:"details_outdated"         json:"details_outdated"`
	Status                Status     `db:"status"                   json:"status"`
	CreatedAt             time.Time  `db:"created_at"               json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"               json:"updated_at"`
}

// Location is a shared reference entity for event venues. The importer
// creates pending locations when fuzzy resolution finds no match.
type Location struct {
	ID               string     `db:"id"                 json:"id"`
	Name             string     `db:"name"               json:"name"`
	Address          *string    `db:"address"            json:"address,omitempty"`
	Website          *string    `db:"website"            json:"website,omitempty"`
	Phone            *string    `db:"phone"              json:"phone,omitempty"`
	Latitude         *float64   `db:"latitude"           json:"latitude,omitempty"`
	Longitude        *float64   `db:"longitude"          json:"longitude,omitempty"`
	ParentLocationID *string    `db:"parent_location_id" json:"parent_location_id,omitempty"`
	Status           Status     `db:"status"             json:"status"`
	CreatedAt        time.Time  `db:"created_at"         json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"         json:"updated_at"`
}

// Organization is a shared reference entity for event hosts.
type Organization struct {
	ID                   string    `db:"id"                     json:"id"`
	Name                 string    `db:"name"                   json:"name"`
	Description          *string   `db:"description"            json:"description,omitempty"`
	Website              *string   `db:"website"                json:"website,omitempty"`
	Phone                *string   `db:"phone"                  json:"phone,omitempty"`
	Email                *string   `db:"email"                  json:"email,omitempty"`
	LocationID           *string   `db:"location_id"            json:"location_id,omitempty"`
	ParentOrganizationID *string   `db:"parent_organization_id" json:"parent_organization_id,omitempty"`
	Status               Status    `db:"status"                 json:"status"`
	CreatedAt            time.Time `db:"created_at"             json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at"             json:"updated_at"`
}

// Tag is a category entity. GoogleCalendarID is only consumed by the
// external calendar sync; the importer just assigns the source's default
// tag as PrimaryTagID on imported events.
type Tag struct {
	ID               string    `db:"id"                 json:"id"`
	Name             string    `db:"name"               json:"name"`
	GoogleCalendarID *string   `db:"google_calendar_id" json:"google_calendar_id,omitempty"`
	CreatedAt        time.Time `db:"created_at"         json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"         json:"updated_at"`
}
