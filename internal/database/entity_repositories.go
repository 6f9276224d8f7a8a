package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dertown/eventscrape/internal/domain"
)

// LocationRepository handles database operations for locations.
type LocationRepository struct {
	db *sqlx.DB
}

// NewLocationRepository creates a new location repository.
func NewLocationRepository(db *sqlx.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// List retrieves all locations ordered by name.
func (r *LocationRepository) List(ctx context.Context) ([]domain.Location, error) {
	var locations []domain.Location
	query := `
		SELECT id, name, address, website, phone, latitude, longitude,
		       parent_location_id, status, created_at, updated_at
		FROM locations
		ORDER BY name
	`

	if err := r.db.SelectContext(ctx, &locations, query); err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}

	return locations, nil
}

// Create inserts a new location.
func (r *LocationRepository) Create(ctx context.Context, location *domain.Location) error {
	if location.ID == "" {
		location.ID = uuid.New().String()
	}

	query := `
		INSERT INTO locations (id, name, address, website, phone, parent_location_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		location.ID,
		location.Name,
		location.Address,
		location.Website,
		location.Phone,
		location.ParentLocationID,
		location.Status,
	).Scan(&location.CreatedAt, &location.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}

	return nil
}

// OrganizationRepository handles database operations for organizations.
type OrganizationRepository struct {
	db *sqlx.DB
}

// NewOrganizationRepository creates a new organization repository.
func NewOrganizationRepository(db *sqlx.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// List retrieves all organizations ordered by name.
func (r *OrganizationRepository) List(ctx context.Context) ([]domain.Organization, error) {
	var orgs []domain.Organization
	query := `
		SELECT id, name, description, website, phone, email, location_id,
		       parent_organization_id, status, created_at, updated_at
		FROM organizations
		ORDER BY name
	`

	if err := r.db.SelectContext(ctx, &orgs, query); err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	return orgs, nil
}

// Create inserts a new organization.
func (r *OrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	if org.ID == "" {
		org.ID = uuid.New().String()
	}

	query := `
		INSERT INTO organizations (id, name, description, website, phone, email, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		org.ID,
		org.Name,
		org.Description,
		org.Website,
		org.Phone,
		org.Email,
		org.Status,
	).Scan(&org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	return nil
}

// TagRepository handles database operations for tags.
type TagRepository struct {
	db *sqlx.DB
}

// NewTagRepository creates a new tag repository.
func NewTagRepository(db *sqlx.DB) *TagRepository {
	return &TagRepository{db: db}
}

// GetByID retrieves a tag by its ID.
func (r *TagRepository) GetByID(ctx context.Context, id string) (*domain.Tag, error) {
	var tag domain.Tag
	query := `
		SELECT id, name, google_calendar_id, created_at, updated_at
		FROM tags
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &tag, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tag %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	return &tag, nil
}

// FindOrCreateByName retrieves the tag with the given name, creating it
// when it does not exist. Names are matched case-insensitively and
// stored lowercased.
func (r *TagRepository) FindOrCreateByName(ctx context.Context, name string) (*domain.Tag, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	var tag domain.Tag
	query := `
		SELECT id, name, google_calendar_id, created_at, updated_at
		FROM tags
		WHERE LOWER(name) = $1
	`
	err := r.db.GetContext(ctx, &tag, query, name)
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to find tag: %w", err)
	}

	tag = domain.Tag{ID: uuid.New().String(), Name: name}
	insert := `
		INSERT INTO tags (id, name)
		VALUES ($1, $2)
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRowContext(ctx, insert, tag.ID, tag.Name).Scan(&tag.CreatedAt, &tag.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return &tag, nil
}

// List retrieves all tags ordered by name.
func (r *TagRepository) List(ctx context.Context) ([]domain.Tag, error) {
	var tags []domain.Tag
	query := `
		SELECT id, name, google_calendar_id, created_at, updated_at
		FROM tags
		ORDER BY name
	`

	if err := r.db.SelectContext(ctx, &tags, query); err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	return tags, nil
}
