package importer

import (
	"context"
	"fmt"

	"github.com/dertown/eventscrape/internal/domain"
	"github.com/dertown/eventscrape/internal/normalize"
	"github.com/dertown/eventscrape/internal/resolve"
)

// upsert persists one normalized record scraped from a source site.
// Returns true when a new event was created.
func (i *Importer) upsert(ctx context.Context, src *domain.SourceSite, rec *normalize.Record) (bool, error) {
	locationID, err := i.resolveLocation(ctx, rec)
	if err != nil {
		return false, err
	}
	organizationID, err := i.resolveOrganization(ctx, src, rec)
	if err != nil {
		return false, err
	}
	return i.persistRecord(ctx, rec, locationID, organizationID, src.EventTagID)
}

// persistRecord writes one normalized record with its resolved entity
// IDs. Existing events are matched by fuzzy title similarity among events
// on the same start date; a match is updated in place, anything else is
// created as a new pending event. Returns true when a new event was
// created.
func (i *Importer) persistRecord(ctx context.Context, rec *normalize.Record, locationID, organizationID, tagID *string) (bool, error) {
	candidates, err := i.events.ListByStartDate(ctx, rec.StartDate)
	if err != nil {
		return false, fmt.Errorf("failed to list events for %s: %w", rec.StartDate.Format(domain.DateFormat), err)
	}

	titles := make([]string, len(candidates))
	for idx, candidate := range candidates {
		titles[idx] = candidate.Title
	}
	matchIdx, score := resolve.BestMatch(rec.Title, titles, i.titleThreshold)

	if matchIdx < 0 {
		event := &domain.Event{
			Title:                rec.Title,
			Description:          rec.Description,
			StartDate:            rec.StartDate,
			EndDate:              rec.EndDate,
			StartTime:            rec.StartTime,
			EndTime:              rec.EndTime,
			LocationID:           locationID,
			OrganizationID:       organizationID,
			PrimaryTagID:         tagID,
			Website:              rec.Website,
			RegistrationLink:     rec.RegistrationLink,
			ExternalImageURL:     rec.ExternalImageURL,
			Fee:                  rec.Fee,
			RegistrationRequired: rec.RegistrationRequired,
			Status:               domain.StatusPending,
		}
		if err := i.events.Create(ctx, event); err != nil {
			return false, fmt.Errorf("failed to create event %q: %w", rec.Title, err)
		}
		return true, nil
	}

	existing := candidates[matchIdx]
	i.log.Debug("matched existing event",
		"title", rec.Title, "existing", existing.Title, "score", score)

	// The matched title stays authoritative; a nil incoming value never
	// clears a stored one. Status is the exception: re-imported events
	// always go back to pending for review.
	applyRecord(&existing, rec, locationID, organizationID, tagID)
	existing.Status = domain.StatusPending

	if err := i.events.Update(ctx, &existing); err != nil {
		return false, fmt.Errorf("failed to update event %q: %w", existing.Title, err)
	}
	return false, nil
}

func (i *Importer) resolveLocation(ctx context.Context, rec *normalize.Record) (*string, error) {
	name := ""
	if rec.Location != nil {
		name = *rec.Location
	}
	location, err := i.resolver.Location(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve location %q: %w", name, err)
	}
	if location == nil {
		return nil, nil
	}
	return &location.ID, nil
}

func (i *Importer) resolveOrganization(ctx context.Context, src *domain.SourceSite, rec *normalize.Record) (*string, error) {
	name := ""
	if rec.Organization != nil {
		name = *rec.Organization
	}
	organizationID, err := i.resolver.Organization(ctx, name, src.URL, src.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve organization %q: %w", name, err)
	}
	return organizationID, nil
}

// applyRecord copies incoming values onto an existing event. Optional
// fields only overwrite when the incoming value is present.
func applyRecord(event *domain.Event, rec *normalize.Record, locationID, organizationID, tagID *string) {
	if rec.Description != nil {
		event.Description = rec.Description
	}
	if rec.EndDate != nil {
		event.EndDate = rec.EndDate
	}
	if rec.StartTime != nil {
		event.StartTime = rec.StartTime
	}
	if rec.EndTime != nil {
		event.EndTime = rec.EndTime
	}
	if locationID != nil {
		event.LocationID = locationID
	}
	if organizationID != nil {
		event.OrganizationID = organizationID
	}
	if event.PrimaryTagID == nil && tagID != nil {
		event.PrimaryTagID = tagID
	}
	if rec.Website != nil {
		event.Website = rec.Website
	}
	if rec.RegistrationLink != nil {
		event.RegistrationLink = rec.RegistrationLink
	}
	if rec.ExternalImageURL != nil {
		event.ExternalImageURL = rec.ExternalImageURL
	}
	if rec.Fee != nil {
		event.Fee = rec.Fee
	}
	if rec.RegistrationRequired {
		event.RegistrationRequired = true
	}
}
