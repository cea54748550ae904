// Package models defines data structures and domain types.
package models

import (
	"slices"
	"strings"
	"time"
)

// DateLayout is the ISO date format used by the date controls and the query string.
const DateLayout = "2006-01-02"

// Status filters admissions by their state.
type Status string

const (
	// StatusAll matches every admission.
	StatusAll Status = "all"
	// StatusAdmitted matches admissions that are still open.
	StatusAdmitted Status = "admitted"
	// StatusDischarged matches closed admissions.
	StatusDischarged Status = "discharged"
)

// Statuses lists the values offered by the status selector, in display order.
var Statuses = []Status{StatusAll, StatusAdmitted, StatusDischarged}

// Next returns the status following s in the selector, wrapping around.
func (s Status) Next() Status {
	return cycle(Statuses, s, 1)
}

// Prev returns the status preceding s in the selector, wrapping around.
func (s Status) Prev() Status {
	return cycle(Statuses, s, -1)
}

// Label returns a human readable label.
func (s Status) Label() string {
	if s == "" {
		return "-"
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// ParseStatus maps free text to a Status. Unknown values fall back to StatusAll.
func ParseStatus(s string) Status {
	candidate := Status(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Statuses, candidate) {
		return candidate
	}
	return StatusAll
}

// Granularity is the bucket size of the admissions time series.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// Granularities lists the values offered by the granularity toggle.
var Granularities = []Granularity{GranularityDay, GranularityWeek, GranularityMonth}

// Next returns the granularity following g, wrapping around.
func (g Granularity) Next() Granularity {
	return cycle(Granularities, g, 1)
}

// Prev returns the granularity preceding g, wrapping around.
func (g Granularity) Prev() Granularity {
	return cycle(Granularities, g, -1)
}

// ParseGranularity maps free text to a Granularity, defaulting to days.
func ParseGranularity(s string) Granularity {
	candidate := Granularity(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Granularities, candidate) {
		return candidate
	}
	return GranularityDay
}

func cycle[T comparable](values []T, current T, step int) T {
	idx := slices.Index(values, current)
	if idx < 0 {
		return values[0]
	}
	n := len(values)
	return values[((idx+step)%n+n)%n]
}

// FilterState is the set of filters applied to every backend request.
// A nil date or an empty id set means "not filtered".
type FilterState struct {
	Start       *time.Time
	End         *time.Time
	WardIDs     []int
	DoctorIDs   []int
	Status      Status
	Granularity Granularity
}

// HospitalWide reports whether f covers every ward, doctor and status, so
// its KPIs describe the whole hospital over the date range.
func (f FilterState) HospitalWide() bool {
	return len(f.WardIDs) == 0 && len(f.DoctorIDs) == 0 &&
		(f.Status == "" || f.Status == StatusAll)
}

// DefaultFilterState returns the state used before any control has been read.
func DefaultFilterState() FilterState {
	return FilterState{
		Status:      StatusAll,
		Granularity: GranularityDay,
	}
}

// Clone returns a deep copy so callers can hold it across goroutines.
func (f FilterState) Clone() FilterState {
	out := f
	if f.Start != nil {
		start := *f.Start
		out.Start = &start
	}
	if f.End != nil {
		end := *f.End
		out.End = &end
	}
	out.WardIDs = slices.Clone(f.WardIDs)
	out.DoctorIDs = slices.Clone(f.DoctorIDs)
	return out
}

// Equal reports whether two filter states would produce the same requests.
func (f FilterState) Equal(other FilterState) bool {
	return FormatDate(f.Start) == FormatDate(other.Start) &&
		FormatDate(f.End) == FormatDate(other.End) &&
		slices.Equal(f.WardIDs, other.WardIDs) &&
		slices.Equal(f.DoctorIDs, other.DoctorIDs) &&
		f.Status == other.Status &&
		f.Granularity == other.Granularity
}

// NormalizeIDs deduplicates ids and sorts them ascending. Nil stays nil.
func NormalizeIDs(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// ParseDate parses an ISO date. Empty or malformed input yields nil.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// FormatDate formats t as an ISO date, or "" when t is nil.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
