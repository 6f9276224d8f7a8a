package domain

import "time"

// ImportFrequency controls how often a source site is automatically
// re-imported. FrequencyManual sources only run when explicitly requested.
type ImportFrequency string

const (
	FrequencyHourly ImportFrequency = "hourly"
	FrequencyDaily  ImportFrequency = "daily"
	FrequencyWeekly ImportFrequency = "weekly"
	FrequencyManual ImportFrequency = "manual"
)

const (
	hourlyInterval = time.Hour
	dailyInterval  = 24 * time.Hour
	weeklyInterval = 7 * 24 * time.Hour
)

// Interval returns the minimum elapsed time between automatic imports.
// The second return value is false for FrequencyManual and for unknown
// values, meaning the source is never automatically due.
func (f ImportFrequency) Interval() (time.Duration, bool) {
	switch f {
	case FrequencyHourly:
		return hourlyInterval, true
	case FrequencyDaily:
		return dailyInterval, true
	case FrequencyWeekly:
		return weeklyInterval, true
	default:
		return 0, false
	}
}

// Valid reports whether f is a known import frequency.
func (f ImportFrequency) Valid() bool {
	switch f {
	case FrequencyHourly, FrequencyDaily, FrequencyWeekly, FrequencyManual:
		return true
	default:
		return false
	}
}
