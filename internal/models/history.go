package models

import "time"

// TimeRange represents the selected history time range.
type TimeRange int

const (
	// TimeRange24Hours shows data from the last 24 hours.
	TimeRange24Hours TimeRange = iota
	// TimeRange7Days shows data from the last 7 days.
	TimeRange7Days
	// TimeRange30Days shows everything kept, since older snapshots are pruned.
	TimeRange30Days
)

const timeRangeCount = 3

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange24Hours:
		return "24 Hours"
	case TimeRange7Days:
		return "7 Days"
	case TimeRange30Days:
		return "30 Days"
	default:
		return "Unknown"
	}
}

// Days returns the number of days for the time range.
func (t TimeRange) Days() int {
	switch t {
	case TimeRange24Hours:
		return 1
	case TimeRange7Days:
		return 7
	default:
		return 30
	}
}

// Since returns the start of the range ending at now.
func (t TimeRange) Since(now time.Time) time.Time {
	return now.AddDate(0, 0, -t.Days())
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % timeRangeCount
}

// HourlyPattern is the average occupancy seen at one hour of the day.
type HourlyPattern struct {
	Hour         int
	AvgOccupancy float64
	Occurrences  int
}

// WeekdayPattern is the average occupancy seen on one day of the week.
type WeekdayPattern struct {
	DayName      string
	DayOfWeek    int
	AvgOccupancy float64
	Occurrences  int
}

// OccupancyHistory summarizes the stored KPI snapshots of a time range.
type OccupancyHistory struct {
	Snapshots       []KPISnapshot
	FirstDataPoint  time.Time
	LastDataPoint   time.Time
	MinOccupancy    float64
	MaxOccupancy    float64
	AvgOccupancy    float64
	HourlyPatterns  []HourlyPattern
	WeekdayPatterns []WeekdayPattern
	TimeRange       TimeRange
}

// NewOccupancyHistory aggregates snapshots, which must be oldest first.
// Patterns are bucketed in local time.
func NewOccupancyHistory(snaps []KPISnapshot, r TimeRange) *OccupancyHistory {
	h := &OccupancyHistory{Snapshots: snaps, TimeRange: r}
	if len(snaps) == 0 {
		return h
	}

	h.FirstDataPoint = snaps[0].RecordedAt
	h.LastDataPoint = snaps[len(snaps)-1].RecordedAt
	h.MinOccupancy = snaps[0].OccupancyRate
	h.MaxOccupancy = snaps[0].OccupancyRate

	var (
		sum     float64
		hourSum [24]float64
		hourN   [24]int
		daySum  [7]float64
		dayN    [7]int
	)
	for _, s := range snaps {
		v := s.OccupancyRate
		sum += v
		h.MinOccupancy = min(h.MinOccupancy, v)
		h.MaxOccupancy = max(h.MaxOccupancy, v)

		at := s.RecordedAt.Local()
		hourSum[at.Hour()] += v
		hourN[at.Hour()]++
		daySum[at.Weekday()] += v
		dayN[at.Weekday()]++
	}
	h.AvgOccupancy = sum / float64(len(snaps))

	for hour := range 24 {
		if hourN[hour] > 0 {
			h.HourlyPatterns = append(h.HourlyPatterns, HourlyPattern{
				Hour:         hour,
				AvgOccupancy: hourSum[hour] / float64(hourN[hour]),
				Occurrences:  hourN[hour],
			})
		}
	}
	for day := range 7 {
		if dayN[day] > 0 {
			h.WeekdayPatterns = append(h.WeekdayPatterns, WeekdayPattern{
				DayName:      time.Weekday(day).String(),
				DayOfWeek:    day,
				AvgOccupancy: daySum[day] / float64(dayN[day]),
				Occurrences:  dayN[day],
			})
		}
	}
	return h
}

// HasData returns true if any snapshot is in range.
func (h *OccupancyHistory) HasData() bool {
	return len(h.Snapshots) > 0
}

// Occupancy returns the occupancy series, oldest first.
func (h *OccupancyHistory) Occupancy() []float64 {
	out := make([]float64, len(h.Snapshots))
	for i, s := range h.Snapshots {
		out[i] = s.OccupancyRate
	}
	return out
}

// GetPeakHour returns the hour with highest average occupancy.
func (h *OccupancyHistory) GetPeakHour() (peakHour int, peakVal float64) {
	for _, p := range h.HourlyPatterns {
		if p.AvgOccupancy > peakVal {
			peakVal = p.AvgOccupancy
			peakHour = p.Hour
		}
	}
	return peakHour, peakVal
}

// GetPeakDay returns the weekday with highest average occupancy.
func (h *OccupancyHistory) GetPeakDay() (peakDay string, peakVal float64) {
	if len(h.WeekdayPatterns) == 0 {
		return "Unknown", 0
	}
	for _, p := range h.WeekdayPatterns {
		if p.AvgOccupancy > peakVal {
			peakVal = p.AvgOccupancy
			peakDay = p.DayName
		}
	}
	return peakDay, peakVal
}
