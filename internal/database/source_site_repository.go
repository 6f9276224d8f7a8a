package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dertown/eventscrape/internal/domain"
)

// SourceSiteRepository handles database operations for source sites.
type SourceSiteRepository struct {
	db *sqlx.DB
}

// NewSourceSiteRepository creates a new source site repository.
func NewSourceSiteRepository(db *sqlx.DB) *SourceSiteRepository {
	return &SourceSiteRepository{db: db}
}

const sourceSiteColumns = `
	id, name, url, organization_id, event_tag_id, import_frequency,
	extraction_function, last_scraped, last_status, last_error,
	created_at, updated_at
`

// Create inserts a new source site.
func (r *SourceSiteRepository) Create(ctx context.Context, source *domain.SourceSite) error {
	if source.ID == "" {
		source.ID = uuid.New().String()
	}

	query := `
		INSERT INTO source_sites (
			id, name, url, organization_id, event_tag_id, import_frequency,
			extraction_function, last_status, last_error
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		source.ID,
		source.Name,
		source.URL,
		source.OrganizationID,
		source.EventTagID,
		source.ImportFrequency,
		source.ExtractionFunction,
		source.LastStatus,
		source.LastError,
	).Scan(&source.CreatedAt, &source.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create source site: %w", err)
	}

	return nil
}

// GetByID retrieves a source site by its ID.
func (r *SourceSiteRepository) GetByID(ctx context.Context, id string) (*domain.SourceSite, error) {
	var source domain.SourceSite
	query := `SELECT ` + sourceSiteColumns + ` FROM source_sites WHERE id = $1`

	err := r.db.GetContext(ctx, &source, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("source site %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get source site: %w", err)
	}

	return &source, nil
}

// List retrieves all source sites ordered by name.
func (r *SourceSiteRepository) List(ctx context.Context) ([]domain.SourceSite, error) {
	var sources []domain.SourceSite
	query := `SELECT ` + sourceSiteColumns + ` FROM source_sites ORDER BY name`

	if err := r.db.SelectContext(ctx, &sources, query); err != nil {
		return nil, fmt.Errorf("failed to list source sites: %w", err)
	}

	return sources, nil
}

// RecordRun updates the run bookkeeping fields after an import attempt.
func (r *SourceSiteRepository) RecordRun(
	ctx context.Context,
	id string,
	scrapedAt time.Time,
	status, errorMessage string,
) error {
	query := `
		UPDATE source_sites
		SET last_scraped = $2, last_status = $3, last_error = $4, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, scrapedAt, status, errorMessage)
	if err != nil {
		return fmt.Errorf("failed to record source run: %w", err)
	}
	if rows, rowsErr := result.RowsAffected(); rowsErr == nil && rows == 0 {
		return fmt.Errorf("source site %s: %w", id, ErrNotFound)
	}

	return nil
}
