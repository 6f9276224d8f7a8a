package extract_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dertown/eventscrape/internal/extract"
)

func TestRegistryLookup(t *testing.T) {
	t.Parallel()

	registry := extract.NewRegistry(3)

	for _, key := range []string{
		extract.KeyDivList,
		extract.KeyModernCalendar,
		extract.KeyEventsCalendar,
		extract.KeyCalendarGrid,
		extract.KeyTicketWidget,
		extract.KeySportsTable,
		extract.KeyLLM,
		extract.KeyDefault,
	} {
		entry, err := registry.Lookup(key)
		require.NoError(t, err, "key %q", key)
		assert.Equal(t, key, entry.Extractor.Name())
	}
}

func TestRegistryLookupUnknownKey(t *testing.T) {
	t.Parallel()

	registry := extract.NewRegistry(3)

	_, err := registry.Lookup("extract_from_carousel")
	require.ErrorIs(t, err, extract.ErrUnknownExtractor)
	assert.Contains(t, err.Error(), "extract_from_carousel")
}

func TestRegistryKeysSorted(t *testing.T) {
	t.Parallel()

	keys := extract.NewRegistry(3).Keys()
	require.Len(t, keys, 8)
	assert.IsIncreasing(t, keys)
}

func TestNoopExtractorReturnsNothing(t *testing.T) {
	t.Parallel()

	registry := extract.NewRegistry(3)
	entry, err := registry.Lookup(extract.KeyLLM)
	require.NoError(t, err)

	base, _ := url.Parse("https://example.org")
	events, err := entry.Extractor.Extract("<html><body>anything</body></html>", base)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.False(t, entry.FutureOnly)
}
