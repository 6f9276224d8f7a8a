package importer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dertown/eventscrape/internal/domain"
	"github.com/dertown/eventscrape/internal/importer"
)

type fakeTagStore struct {
	tags []domain.Tag
}

func (s *fakeTagStore) FindOrCreateByName(_ context.Context, name string) (*domain.Tag, error) {
	for i := range s.tags {
		if s.tags[i].Name == name {
			return &s.tags[i], nil
		}
	}
	tag := domain.Tag{ID: "tag-" + name, Name: name}
	s.tags = append(s.tags, tag)
	return &tag, nil
}

func calendarRawEvents() []domain.RawEvent {
	return []domain.RawEvent{
		{
			Title:        domain.Str("Harvest Festival"),
			StartDate:    domain.Str("2030-10-12"),
			StartTime:    domain.Str("18:00"),
			Location:     domain.Str("Front Street Park"),
			Organization: domain.Str("Chamber of Commerce"),
			Description:  domain.Str("Cider pressing and live music."),
		},
		{
			Title:     domain.Str("Community Cleanup"),
			StartDate: domain.Str("2030-11-01"),
			Location:  domain.Str("TBD"),
		},
	}
}

func TestImportICSCreatesEvents(t *testing.T) {
	t.Parallel()

	events := &fakeEventStore{}
	tags := &fakeTagStore{}
	imp := importer.NewImporter(importer.Params{
		Events:   events,
		Tags:     tags,
		Resolver: fakeResolver{},
	})

	res, err := imp.ImportICS(context.Background(), calendarRawEvents(), importer.ICSOptions{
		DefaultOrganization: "Imported Event",
		DefaultTag:          "community",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Found)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, 0, res.Failed)

	festival, ok := events.byTitle("Harvest Festival")
	require.True(t, ok)
	assert.Equal(t, domain.StatusPending, festival.Status)
	require.NotNil(t, festival.LocationID)
	assert.Equal(t, "loc-Front Street Park", *festival.LocationID)
	require.NotNil(t, festival.OrganizationID)
	assert.Equal(t, "org-Chamber of Commerce", *festival.OrganizationID)
	require.NotNil(t, festival.PrimaryTagID)
	assert.Equal(t, "tag-community", *festival.PrimaryTagID)

	// The placeholder venue is dropped and the default organizer fills in.
	cleanup, ok := events.byTitle("Community Cleanup")
	require.True(t, ok)
	assert.Nil(t, cleanup.LocationID)
	require.NotNil(t, cleanup.OrganizationID)
	assert.Equal(t, "org-Imported Event", *cleanup.OrganizationID)
}

func TestImportICSUpsertIdempotent(t *testing.T) {
	t.Parallel()

	events := &fakeEventStore{}
	imp := importer.NewImporter(importer.Params{
		Events:   events,
		Resolver: fakeResolver{},
	})

	first, err := imp.ImportICS(context.Background(), calendarRawEvents(), importer.ICSOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	second, err := imp.ImportICS(context.Background(), calendarRawEvents(), importer.ICSOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Updated)
	assert.Len(t, events.events, 2)
}

func TestImportICSSkipsUnusableEntries(t *testing.T) {
	t.Parallel()

	events := &fakeEventStore{}
	imp := importer.NewImporter(importer.Params{
		Events:   events,
		Resolver: fakeResolver{},
	})

	raw := []domain.RawEvent{
		{Title: domain.Str("No Date")},
		{
			Title:     domain.Str("Valid Entry"),
			StartDate: domain.Str("2030-05-01"),
		},
	}
	res, err := imp.ImportICS(context.Background(), raw, importer.ICSOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Found)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Failed)
}

func TestImportICSTagWithoutStore(t *testing.T) {
	t.Parallel()

	imp := importer.NewImporter(importer.Params{
		Events:   &fakeEventStore{},
		Resolver: fakeResolver{},
	})

	_, err := imp.ImportICS(context.Background(), nil, importer.ICSOptions{DefaultTag: "community"})
	assert.Error(t, err)
}
