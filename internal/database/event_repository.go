package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dertown/eventscrape/internal/domain"
)

// EventRepository handles database operations for events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `
	id, title, description, start_date, end_date, start_time, end_time,
	location_id, organization_id, primary_tag_id, secondary_tag_id,
	email, website, registration_link, external_image_url, fee,
	registration_required, featured, exclude_from_calendar,
	parent_event_id, google_calendar_event_id, details_outdated, status,
	created_at, updated_at
`

// ListByStartDate retrieves all events on the given date. The importer
// fuzzy-matches titles within this candidate set for upsert identity.
func (r *EventRepository) ListByStartDate(ctx context.Context, date time.Time) ([]domain.Event, error) {
	var events []domain.Event
	query := `SELECT ` + eventColumns + ` FROM events WHERE start_date = $1 ORDER BY created_at`

	if err := r.db.SelectContext(ctx, &events, query, date); err != nil {
		return nil, fmt.Errorf("failed to list events by start date: %w", err)
	}

	return events, nil
}

// Create inserts a new event in its own transaction.
func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	query := `
		INSERT INTO events (
			id, title, description, start_date, end_date, start_time, end_time,
			location_id, organization_id, primary_tag_id, secondary_tag_id,
			email, website, registration_link, external_image_url, fee,
			registration_required, featured, exclude_from_calendar,
			parent_event_id, google_calendar_event_id, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
		)
		RETURNING created_at, updated_at
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin create event: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	err = tx.QueryRowContext(
		ctx,
		query,
		event.ID,
		event.Title,
		event.Description,
		event.StartDate,
		event.EndDate,
		event.StartTime,
		event.EndTime,
		event.LocationID,
		event.OrganizationID,
		event.PrimaryTagID,
		event.SecondaryTagID,
		event.Email,
		event.Website,
		event.RegistrationLink,
		event.ExternalImageURL,
		event.Fee,
		event.RegistrationRequired,
		event.Featured,
		event.ExcludeFromCalendar,
		event.ParentEventID,
		event.GoogleCalendarEventID,
		event.Status,
	).Scan(&event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("failed to commit create event: %w", commitErr)
	}

	return nil
}

// Update writes all updatable fields of an existing event in its own
// transaction. The caller decides which fields carry new values; the
// moderation status value passed in is written as-is.
func (r *EventRepository) Update(ctx context.Context, event *domain.Event) error {
	query := `
		UPDATE events SET
			title = $2, description = $3, start_date = $4, end_date = $5,
			start_time = $6, end_time = $7, location_id = $8,
			organization_id = $9, primary_tag_id = $10, secondary_tag_id = $11,
			email = $12, website = $13, registration_link = $14,
			external_image_url = $15, fee = $16, registration_required = $17,
			status = $18, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin update event: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	err = tx.QueryRowContext(
		ctx,
		query,
		event.ID,
		event.Title,
		event.Description,
		event.StartDate,
		event.EndDate,
		event.StartTime,
		event.EndTime,
		event.LocationID,
		event.OrganizationID,
		event.PrimaryTagID,
		event.SecondaryTagID,
		event.Email,
		event.Website,
		event.RegistrationLink,
		event.ExternalImageURL,
		event.Fee,
		event.RegistrationRequired,
		event.Status,
	).Scan(&event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("failed to commit update event: %w", commitErr)
	}

	return nil
}

// ListWithWebsite retrieves all events that carry a website URL, for the
// staleness check pass.
func (r *EventRepository) ListWithWebsite(ctx context.Context) ([]domain.Event, error) {
	var events []domain.Event
	query := `SELECT ` + eventColumns + ` FROM events WHERE website IS NOT NULL AND website <> '' ORDER BY start_date`

	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("failed to list events with website: %w", err)
	}

	return events, nil
}

// SetDetailsOutdated writes only the details_outdated column. The event's
// updated_at is left alone so the staleness comparison stays stable
// across repeated checks.
func (r *EventRepository) SetDetailsOutdated(ctx context.Context, id string, outdated bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE events SET details_outdated = $2 WHERE id = $1`, id, outdated)
	if err != nil {
		return fmt.Errorf("failed to set details_outdated: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set details_outdated: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
