package models

import "time"

// Presets are the filter defaults seeded into the controls at startup and
// whenever the presets file changes.
type Presets struct {
	RangeDays   int         `json:"range_days"`
	Status      Status      `json:"status"`
	Granularity Granularity `json:"granularity"`
}

// DefaultPresets returns the presets written when no file exists yet.
func DefaultPresets() Presets {
	return Presets{
		RangeDays:   30,
		Status:      StatusAll,
		Granularity: GranularityDay,
	}
}

// Normalize replaces unknown enum values and negative ranges with defaults.
func (p Presets) Normalize() Presets {
	p.Status = ParseStatus(string(p.Status))
	p.Granularity = ParseGranularity(string(p.Granularity))
	if p.RangeDays < 0 {
		p.RangeDays = 0
	}
	return p
}

// DateRange returns the default start and end dates relative to now.
// A zero RangeDays leaves both dates unset.
func (p Presets) DateRange(now time.Time) (start, end *time.Time) {
	if p.RangeDays <= 0 {
		return nil, nil
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := today.AddDate(0, 0, -p.RangeDays)
	return &from, &today
}
