// Package domain provides domain models used across the application.
package domain

// Status is the moderation status gating public visibility of ingested
// entities. Rows created by the importer always start as StatusPending so
// a human reviews them before they are published.
type Status string

const (
	// StatusPending marks a row awaiting human review.
	StatusPending Status = "pending"
	// StatusApproved marks a row published on the site.
	StatusApproved Status = "approved"
	// StatusDuplicate marks a row superseded by another row.
	StatusDuplicate Status = "duplicate"
	// StatusArchived marks a row no longer shown anywhere.
	StatusArchived Status = "archived"
)

// Valid reports whether s is one of the known moderation statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDuplicate, StatusArchived:
		return true
	default:
		return false
	}
}
