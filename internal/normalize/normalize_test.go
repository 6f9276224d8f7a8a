package normalize_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dertown/eventscrape/internal/domain"
	"github.com/dertown/eventscrape/internal/logger"
	"github.com/dertown/eventscrape/internal/normalize"
)

func TestCleanTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain title unchanged",
			input: "Harvest Festival",
			want:  "Harvest Festival",
		},
		{
			name:  "event prefix stripped",
			input: "Event: Harvest Festival",
			want:  "Harvest Festival",
		},
		{
			name:  "calendar prefix stripped",
			input: "Calendar: Winter Market",
			want:  "Winter Market",
		},
		{
			name:  "regional prefix stripped",
			input: "Wenatchee Valley: Salmon Run",
			want:  "Salmon Run",
		},
		{
			name:  "sold out suffix stripped",
			input: "Gala Dinner (Sold out)",
			want:  "Gala Dinner",
		},
		{
			name:  "capacity suffix stripped",
			input: "Yoga in the Park (Has reached capacity)",
			want:  "Yoga in the Park",
		},
		{
			name:  "trailing punctuation stripped",
			input: "Open Mic Night:",
			want:  "Open Mic Night",
		},
		{
			name:  "non-ascii removed",
			input: "Fête de la Musique",
			want:  "Fte de la Musique",
		},
		{
			name:  "control characters removed",
			input: "Art\x00 Walk\x1f",
			want:  "Art Walk",
		},
		{
			name:  "whitespace trimmed",
			input: "  Book Club  ",
			want:  "Book Club",
		},
		{
			name:  "punctuation then suffix needs second pass",
			input: "Gala Dinner (Sold out):",
			want:  "Gala Dinner",
		},
		{
			name:  "deeply stacked prefixes fully stripped",
			input: strings.Repeat("Event: ", 6) + "Art Walk",
			want:  "Art Walk",
		},
		{
			name:  "empty stays empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, normalize.CleanTitle(tt.input))
		})
	}
}

func TestCleanTitleIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Event: Calendar: Nested Prefixes",
		"Gala Dinner (Sold out):",
		"Wenatchee Valley: Salmon Run (Full).",
		"  Plain Title  ",
		"Trailing,-.:",
		strings.Repeat("Event: ", 6) + "Art Walk",
		strings.Repeat("Calendar: Event: ", 8) + "Art Walk (Sold out)",
	}
	for _, input := range inputs {
		once := normalize.CleanTitle(input)
		twice := normalize.CleanTitle(once)
		assert.Equal(t, once, twice, "CleanTitle not idempotent for %q", input)
	}
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"6:00 PM", "18:00", true},
		{"6:00pm", "18:00", true},
		{"6:00PM", "18:00", true},
		{"12:00 AM", "00:00", true},
		{"12:30 pm", "12:30", true},
		{"18:00", "18:00", true},
		{"18:00:00", "18:00", true},
		{"07:05", "07:05", true},
		{"", "", false},
		{"   ", "", false},
		{"noonish", "", false},
		{"25:00", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, ok := normalize.ParseTime(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	got, ok := normalize.ParseDate("2026-03-15")
	require.True(t, ok)
	assert.Equal(t, "2026-03-15", got.Format(domain.DateFormat))

	_, ok = normalize.ParseDate("March 15, 2026")
	assert.False(t, ok)

	_, ok = normalize.ParseDate("")
	assert.False(t, ok)
}

func TestParseBool(t *testing.T) {
	t.Parallel()

	assert.True(t, normalize.ParseBool("yes"))
	assert.True(t, normalize.ParseBool("Yes"))
	assert.True(t, normalize.ParseBool("TRUE"))
	assert.True(t, normalize.ParseBool(" 1 "))
	assert.False(t, normalize.ParseBool("no"))
	assert.False(t, normalize.ParseBool(""))
	assert.False(t, normalize.ParseBool("maybe"))
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "A cozy winter market", normalize.SanitizeText("A  cozy\n winter\tmarket"))
	assert.Equal(t, "clean", normalize.SanitizeText("\x00clean\x1f"))
	assert.Equal(t, "", normalize.SanitizeText("   "))
}

func TestEvent(t *testing.T) {
	t.Parallel()

	log := logger.NewNoOp()

	t.Run("full record", func(t *testing.T) {
		t.Parallel()

		raw := domain.RawEvent{
			Title:                domain.Str("Event: Harvest Festival"),
			StartDate:            domain.Str("2026-09-12"),
			EndDate:              domain.Str("2026-09-13"),
			StartTime:            domain.Str("6:00 PM"),
			EndTime:              domain.Str("9:00 PM"),
			Location:             domain.Str("Front Street Park"),
			Organization:         domain.Str("Chamber of Commerce"),
			Description:          domain.Str("Cider  pressing and\nlive music"),
			Link:                 domain.Str("https://example.org/harvest"),
			RegistrationRequired: domain.Str("yes"),
		}

		rec, err := normalize.Event(raw, log)
		require.NoError(t, err)

		assert.Equal(t, "Harvest Festival", rec.Title)
		assert.Equal(t, "2026-09-12", rec.StartDate.Format(domain.DateFormat))
		require.NotNil(t, rec.EndDate)
		assert.Equal(t, "2026-09-13", rec.EndDate.Format(domain.DateFormat))
		require.NotNil(t, rec.StartTime)
		assert.Equal(t, "18:00", *rec.StartTime)
		require.NotNil(t, rec.EndTime)
		assert.Equal(t, "21:00", *rec.EndTime)
		require.NotNil(t, rec.Description)
		assert.Equal(t, "Cider pressing and live music", *rec.Description)
		require.NotNil(t, rec.Website)
		assert.Equal(t, "https://example.org/harvest", *rec.Website)
		assert.True(t, rec.RegistrationRequired)
	})

	t.Run("missing title rejected", func(t *testing.T) {
		t.Parallel()

		raw := domain.RawEvent{StartDate: domain.Str("2026-09-12")}
		_, err := normalize.Event(raw, log)
		require.ErrorIs(t, err, normalize.ErrMissingTitle)
	})

	t.Run("title cleaned to empty rejected", func(t *testing.T) {
		t.Parallel()

		raw := domain.RawEvent{
			Title:     domain.Str("  :  "),
			StartDate: domain.Str("2026-09-12"),
		}
		_, err := normalize.Event(raw, log)
		require.ErrorIs(t, err, normalize.ErrMissingTitle)
	})

	t.Run("missing start date rejected", func(t *testing.T) {
		t.Parallel()

		raw := domain.RawEvent{Title: domain.Str("Harvest Festival")}
		_, err := normalize.Event(raw, log)
		require.ErrorIs(t, err, normalize.ErrMissingStartDate)
	})

	t.Run("unparseable start date rejected", func(t *testing.T) {
		t.Parallel()

		raw := domain.RawEvent{
			Title:     domain.Str("Harvest Festival"),
			StartDate: domain.Str("next saturday"),
		}
		_, err := normalize.Event(raw, log)
		require.Error(t, err)
	})

	t.Run("bad optional fields dropped not fatal", func(t *testing.T) {
		t.Parallel()

		raw := domain.RawEvent{
			Title:     domain.Str("Harvest Festival"),
			StartDate: domain.Str("2026-09-12"),
			EndDate:   domain.Str("someday"),
			StartTime: domain.Str("dusk"),
		}
		rec, err := normalize.Event(raw, log)
		require.NoError(t, err)
		assert.Nil(t, rec.EndDate)
		assert.Nil(t, rec.StartTime)
	})

	t.Run("website falls back to link", func(t *testing.T) {
		t.Parallel()

		raw := domain.RawEvent{
			Title:     domain.Str("Harvest Festival"),
			StartDate: domain.Str("2026-09-12"),
			Website:   domain.Str("https://example.org/tickets"),
			Link:      domain.Str("https://example.org/detail"),
		}
		rec, err := normalize.Event(raw, log)
		require.NoError(t, err)
		require.NotNil(t, rec.Website)
		assert.Equal(t, "https://example.org/tickets", *rec.Website)
	})
}
