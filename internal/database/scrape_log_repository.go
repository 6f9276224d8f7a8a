package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dertown/eventscrape/internal/domain"
)

// ScrapeLogRepository handles database operations for the append-only
// scrape audit log.
type ScrapeLogRepository struct {
	db *sqlx.DB
}

// NewScrapeLogRepository creates a new scrape log repository.
func NewScrapeLogRepository(db *sqlx.DB) *ScrapeLogRepository {
	return &ScrapeLogRepository{db: db}
}

// Create appends one log row. Rows are never updated or deleted.
func (r *ScrapeLogRepository) Create(ctx context.Context, log *domain.ScrapeLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}

	query := `
		INSERT INTO scrape_logs (id, source_id, status, events_found, events_created, events_updated, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING timestamp
	`

	err := r.db.QueryRowContext(ctx, query,
		log.ID, log.SourceID, log.Status,
		log.EventsFound, log.EventsCreated, log.EventsUpdated, log.ErrorMessage).
		Scan(&log.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to create scrape log: %w", err)
	}

	return nil
}

// ListBySource retrieves the most recent log rows for one source.
func (r *ScrapeLogRepository) ListBySource(ctx context.Context, sourceID string, limit int) ([]domain.ScrapeLog, error) {
	var logs []domain.ScrapeLog
	query := `
		SELECT id, source_id, timestamp, status, events_found, events_created, events_updated, error_message
		FROM scrape_logs
		WHERE source_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	if err := r.db.SelectContext(ctx, &logs, query, sourceID, limit); err != nil {
		return nil, fmt.Errorf("failed to list scrape logs: %w", err)
	}

	return logs, nil
}
