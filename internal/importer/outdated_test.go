package importer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dertown/eventscrape/internal/domain"
	"github.com/dertown/eventscrape/internal/importer"
)

type fakeCheckStore struct {
	events []domain.Event
	marked map[string]bool
}

func (s *fakeCheckStore) ListWithWebsite(_ context.Context) ([]domain.Event, error) {
	var out []domain.Event
	for _, event := range s.events {
		if event.Website != nil && *event.Website != "" {
			out = append(out, event)
		}
	}
	return out, nil
}

func (s *fakeCheckStore) SetDetailsOutdated(_ context.Context, id string, outdated bool) error {
	if s.marked == nil {
		s.marked = map[string]bool{}
	}
	s.marked[id] = outdated
	return nil
}

type fakeHeadFetcher struct {
	lastModified map[string]*time.Time
	errs         map[string]error
}

func (f *fakeHeadFetcher) Head(_ context.Context, pageURL string) (*time.Time, error) {
	if err, ok := f.errs[pageURL]; ok {
		return nil, err
	}
	return f.lastModified[pageURL], nil
}

func TestUpdateCheckerMarksOutdatedEvents(t *testing.T) {
	t.Parallel()

	updatedAt := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	newer := updatedAt.Add(48 * time.Hour)
	older := updatedAt.Add(-48 * time.Hour)

	store := &fakeCheckStore{events: []domain.Event{
		{ID: "e1", Title: "Changed Site", Website: domain.Str("https://example.org/changed"), UpdatedAt: updatedAt},
		{ID: "e2", Title: "Unchanged Site", Website: domain.Str("https://example.org/same"), UpdatedAt: updatedAt},
		{ID: "e3", Title: "No Header", Website: domain.Str("https://example.org/plain"), UpdatedAt: updatedAt},
		{ID: "e4", Title: "No Website"},
	}}
	fetcher := &fakeHeadFetcher{lastModified: map[string]*time.Time{
		"https://example.org/changed": &newer,
		"https://example.org/same":    &older,
		"https://example.org/plain":   nil,
	}}

	checker := importer.NewUpdateChecker(store, fetcher, nil)
	summary, err := checker.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Checked)
	assert.Equal(t, 1, summary.Outdated)
	assert.Equal(t, 2, summary.Current)
	assert.Equal(t, 0, summary.Unreachable)

	assert.True(t, store.marked["e1"])
	// Already-false events without a newer Last-Modified are left alone.
	_, wrote := store.marked["e2"]
	assert.False(t, wrote)
	_, wrote = store.marked["e3"]
	assert.False(t, wrote)
}

func TestUpdateCheckerClearsStaleFlag(t *testing.T) {
	t.Parallel()

	updatedAt := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	older := updatedAt.Add(-48 * time.Hour)

	store := &fakeCheckStore{events: []domain.Event{
		{
			ID: "e1", Title: "Refreshed",
			Website:         domain.Str("https://example.org/refreshed"),
			UpdatedAt:       updatedAt,
			DetailsOutdated: true,
		},
	}}
	fetcher := &fakeHeadFetcher{lastModified: map[string]*time.Time{
		"https://example.org/refreshed": &older,
	}}

	checker := importer.NewUpdateChecker(store, fetcher, nil)
	summary, err := checker.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Current)
	outdated, wrote := store.marked["e1"]
	require.True(t, wrote)
	assert.False(t, outdated)
}

func TestUpdateCheckerSkipsUnreachableSites(t *testing.T) {
	t.Parallel()

	store := &fakeCheckStore{events: []domain.Event{
		{ID: "e1", Title: "Dead Site", Website: domain.Str("https://example.org/dead")},
	}}
	fetcher := &fakeHeadFetcher{errs: map[string]error{
		"https://example.org/dead": errors.New("connection refused"),
	}}

	checker := importer.NewUpdateChecker(store, fetcher, nil)
	summary, err := checker.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Checked)
	assert.Equal(t, 1, summary.Unreachable)
	assert.Empty(t, store.marked)
}
