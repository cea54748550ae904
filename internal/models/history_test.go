package models

import (
	"testing"
	"time"
)

func TestTimeRange_String(t *testing.T) {
	tests := []struct {
		name string
		tr   TimeRange
		want string
	}{
		{"24Hours", TimeRange24Hours, "24 Hours"},
		{"7Days", TimeRange7Days, "7 Days"},
		{"30Days", TimeRange30Days, "30 Days"},
		{"Unknown", TimeRange(999), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.String(); got != tt.want {
				t.Errorf("TimeRange.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeRange_Days(t *testing.T) {
	tests := []struct {
		name string
		tr   TimeRange
		want int
	}{
		{"24Hours", TimeRange24Hours, 1},
		{"7Days", TimeRange7Days, 7},
		{"30Days", TimeRange30Days, 30},
		{"Unknown", TimeRange(999), 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.Days(); got != tt.want {
				t.Errorf("TimeRange.Days() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeRange_Next(t *testing.T) {
	tests := []struct {
		name string
		tr   TimeRange
		want TimeRange
	}{
		{"24Hours -> 7Days", TimeRange24Hours, TimeRange7Days},
		{"7Days -> 30Days", TimeRange7Days, TimeRange30Days},
		{"30Days -> 24Hours", TimeRange30Days, TimeRange24Hours},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.Next(); got != tt.want {
				t.Errorf("TimeRange.Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeRange_Since(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	want := time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC)
	if got := TimeRange7Days.Since(now); !got.Equal(want) {
		t.Errorf("Since() = %v, want %v", got, want)
	}
}

func snapshotAt(at time.Time, occupancy float64) KPISnapshot {
	return KPISnapshot{RecordedAt: at, OccupancyRate: occupancy}
}

func TestNewOccupancyHistory(t *testing.T) {
	empty := NewOccupancyHistory(nil, TimeRange7Days)
	if empty.HasData() {
		t.Error("empty history should have no data")
	}
	if day, val := empty.GetPeakDay(); day != "Unknown" || val != 0 {
		t.Errorf("GetPeakDay() on empty = %s, %v", day, val)
	}

	// Monday 2024-03-04, local time so buckets are predictable.
	monday9 := time.Date(2024, 3, 4, 9, 0, 0, 0, time.Local)
	snaps := []KPISnapshot{
		snapshotAt(monday9, 40),
		snapshotAt(monday9.Add(30*time.Minute), 60),
		snapshotAt(monday9.Add(24*time.Hour+5*time.Hour), 95),
	}

	h := NewOccupancyHistory(snaps, TimeRange7Days)
	if !h.HasData() {
		t.Fatal("history should have data")
	}
	if !h.FirstDataPoint.Equal(snaps[0].RecordedAt) || !h.LastDataPoint.Equal(snaps[2].RecordedAt) {
		t.Error("data range mismatch")
	}
	if h.MinOccupancy != 40 || h.MaxOccupancy != 95 {
		t.Errorf("min/max = %v/%v", h.MinOccupancy, h.MaxOccupancy)
	}
	if h.AvgOccupancy != 65 {
		t.Errorf("avg = %v, want 65", h.AvgOccupancy)
	}
	if got := h.Occupancy(); len(got) != 3 || got[2] != 95 {
		t.Errorf("Occupancy() = %v", got)
	}

	if len(h.HourlyPatterns) != 2 {
		t.Fatalf("hourly patterns = %d, want 2", len(h.HourlyPatterns))
	}
	if p := h.HourlyPatterns[0]; p.Hour != 9 || p.AvgOccupancy != 50 || p.Occurrences != 2 {
		t.Errorf("9h pattern = %+v", p)
	}
	if hour, val := h.GetPeakHour(); hour != 14 || val != 95 {
		t.Errorf("GetPeakHour() = %d, %v", hour, val)
	}
	if day, val := h.GetPeakDay(); day != "Tuesday" || val != 95 {
		t.Errorf("GetPeakDay() = %s, %v", day, val)
	}
}
