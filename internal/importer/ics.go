package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/dertown/eventscrape/internal/domain"
	"github.com/dertown/eventscrape/internal/normalize"
)

// TagStore finds or creates tags by name for calendar-file imports.
type TagStore interface {
	FindOrCreateByName(ctx context.Context, name string) (*domain.Tag, error)
}

// ICSOptions control a calendar-file import.
type ICSOptions struct {
	// DefaultOrganization names the host for events whose calendar entry
	// carries no organizer.
	DefaultOrganization string

	// DefaultLocation names the venue for events whose calendar entry
	// carries no location.
	DefaultLocation string

	// DefaultTag is assigned as the primary tag of every imported event.
	DefaultTag string
}

// ICSResult aggregates one calendar-file import.
type ICSResult struct {
	Found   int
	Created int
	Updated int
	Failed  int
}

// placeholderLocations are calendar location values that mean "no venue".
var placeholderLocations = map[string]bool{
	"tbd":     true,
	"unknown": true,
}

// ImportICS runs the raw events of a parsed calendar file through the
// same normalize, resolve and upsert path as scraped sources. A bad
// entry only costs that entry.
func (i *Importer) ImportICS(ctx context.Context, raw []domain.RawEvent, opts ICSOptions) (*ICSResult, error) {
	var tagID *string
	if opts.DefaultTag != "" {
		if i.tags == nil {
			return nil, fmt.Errorf("no tag store configured for tag %q", opts.DefaultTag)
		}
		tag, err := i.tags.FindOrCreateByName(ctx, opts.DefaultTag)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve tag %q: %w", opts.DefaultTag, err)
		}
		tagID = &tag.ID
	}

	res := &ICSResult{Found: len(raw)}
	for _, rawEvent := range raw {
		applyICSDefaults(&rawEvent, opts)

		record, err := normalize.Event(rawEvent, i.log)
		if err != nil {
			i.log.Warn("skipping unusable calendar entry", "error", err)
			res.Failed++
			continue
		}

		locationID, err := i.resolveLocation(ctx, record)
		if err != nil {
			i.log.Error("failed to resolve location", "title", record.Title, "error", err)
			res.Failed++
			continue
		}
		organizationID, err := i.resolver.Organization(ctx, stringValue(record.Organization), "", nil)
		if err != nil {
			i.log.Error("failed to resolve organization", "title", record.Title, "error", err)
			res.Failed++
			continue
		}

		created, err := i.persistRecord(ctx, record, locationID, organizationID, tagID)
		if err != nil {
			i.log.Error("failed to upsert event", "title", record.Title, "error", err)
			res.Failed++
			continue
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}

	i.log.Info("calendar file imported",
		"found", res.Found, "created", res.Created, "updated", res.Updated, "failed", res.Failed)
	return res, nil
}

// applyICSDefaults fills missing organizer and location fields and drops
// placeholder venue names.
func applyICSDefaults(raw *domain.RawEvent, opts ICSOptions) {
	if raw.Organization == nil && opts.DefaultOrganization != "" {
		raw.Organization = domain.Str(opts.DefaultOrganization)
	}
	if raw.Location == nil && opts.DefaultLocation != "" {
		raw.Location = domain.Str(opts.DefaultLocation)
	}
	if raw.Location != nil && placeholderLocations[strings.ToLower(strings.TrimSpace(*raw.Location))] {
		raw.Location = nil
	}
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
