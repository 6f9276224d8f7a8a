package importer

import (
	"context"
	"time"

	"github.com/dertown/eventscrape/internal/domain"
	"github.com/dertown/eventscrape/internal/logger"
)

// CheckEventStore provides the events to check and persists the outcome.
type CheckEventStore interface {
	ListWithWebsite(ctx context.Context) ([]domain.Event, error)
	SetDetailsOutdated(ctx context.Context, id string, outdated bool) error
}

// HeadFetcher reads a page's Last-Modified time without fetching the body.
type HeadFetcher interface {
	Head(ctx context.Context, pageURL string) (*time.Time, error)
}

// CheckSummary aggregates one staleness-check pass.
type CheckSummary struct {
	Checked     int
	Outdated    int
	Current     int
	Unreachable int
}

// UpdateChecker walks every event that has a website and marks it
// outdated when the site reports a Last-Modified newer than the event's
// last update. Unreachable sites and sites without the header are left
// as they are.
type UpdateChecker struct {
	events  CheckEventStore
	fetcher HeadFetcher
	log     logger.Interface
}

func NewUpdateChecker(events CheckEventStore, fetcher HeadFetcher, log logger.Interface) *UpdateChecker {
	if log == nil {
		log = logger.NewNoOp()
	}
	return &UpdateChecker{
		events:  events,
		fetcher: fetcher,
		log:     log.WithComponent("check-updates"),
	}
}

// Run checks every event with a website. One unreachable site never stops
// the pass; Run only errors when the event list cannot be loaded.
func (c *UpdateChecker) Run(ctx context.Context) (*CheckSummary, error) {
	events, err := c.events.ListWithWebsite(ctx)
	if err != nil {
		return nil, err
	}

	summary := &CheckSummary{}
	for _, event := range events {
		summary.Checked++

		lastModified, headErr := c.fetcher.Head(ctx, *event.Website)
		if headErr != nil {
			summary.Unreachable++
			c.log.Warn("Could not check event website",
				"title", event.Title, "url", *event.Website, "error", headErr)
			continue
		}
		if lastModified == nil {
			summary.Current++
			continue
		}

		outdated := lastModified.After(event.UpdatedAt)
		if outdated {
			summary.Outdated++
		} else {
			summary.Current++
		}
		if event.DetailsOutdated == outdated {
			continue
		}
		if setErr := c.events.SetDetailsOutdated(ctx, event.ID, outdated); setErr != nil {
			c.log.Error("Failed to mark event details outdated",
				"title", event.Title, "error", setErr)
		}
	}

	c.log.Info("Staleness check completed",
		"checked", summary.Checked,
		"outdated", summary.Outdated,
		"current", summary.Current,
		"unreachable", summary.Unreachable)
	return summary, nil
}
