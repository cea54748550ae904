package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Ward is one row of /wards/utilization.
type Ward struct {
	ID            int     `json:"ward_id"`
	Name          string  `json:"ward_name"`
	OccupancyRate float64 `json:"occupancy_rate"`
	OccupiedBeds  int     `json:"occupied_beds,omitempty"`
	TotalBeds     int     `json:"total_beds,omitempty"`
}

// Doctor is one row of /doctors/workload.
type Doctor struct {
	ID             int    `json:"doctor_id"`
	Name           string `json:"name"`
	IsPresent      Flag   `json:"is_present"`
	IsBusy         Flag   `json:"is_busy"`
	ActivePatients int    `json:"active_patients,omitempty"`
}

// SeriesPoint is one bucket of /admissions/series.
type SeriesPoint struct {
	Bucket     string  `json:"bucket"`
	Admissions float64 `json:"admissions"`
}

// BedsKPI is the beds section of /kpis.
type BedsKPI struct {
	OccupancyRate float64 `json:"occupancy_rate"`
	Occupied      int     `json:"occupied"`
	Total         int     `json:"total"`
}

// AdmissionsKPI is the admissions section of /kpis.
type AdmissionsKPI struct {
	Active              int     `json:"active"`
	DischargesToday     int     `json:"discharges_today"`
	AvgLengthOfStayDays float64 `json:"avg_length_of_stay_days"`
	Discharged          int     `json:"discharged"`
}

// DoctorsKPI is the doctors section of /kpis.
type DoctorsKPI struct {
	Present int `json:"present"`
	Busy    int `json:"busy"`
	Total   int `json:"total"`
}

// KPISummary is the /kpis response. The three sections are required.
type KPISummary struct {
	Beds       BedsKPI       `json:"beds"`
	Admissions AdmissionsKPI `json:"admissions"`
	Doctors    DoctorsKPI    `json:"doctors"`
}

// Record is one row of /patients or /admissions. The backend returns whole
// table rows, so columns are kept as raw values.
type Record map[string]any

// Value formats the column for display. Missing and null columns render empty.
func (r Record) Value(column string) string {
	v, ok := r[column]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// Option is one entry of a selector control.
type Option struct {
	Value int
	Label string
}

// WardOptions maps wards to selector options.
func WardOptions(wards []Ward) []Option {
	opts := make([]Option, len(wards))
	for i, w := range wards {
		opts[i] = Option{Value: w.ID, Label: w.Name}
	}
	return opts
}

// DoctorOptions maps doctors to selector options.
func DoctorOptions(doctors []Doctor) []Option {
	opts := make([]Option, len(doctors))
	for i, d := range doctors {
		opts[i] = Option{Value: d.ID, Label: d.Name}
	}
	return opts
}

// Flag is a boolean that also accepts 0/1 numbers and strings, since MySQL
// backends commonly serialize TINYINT(1) columns as numbers.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = false
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag(b)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = n != 0
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, perr := strconv.ParseBool(s)
		if perr != nil {
			return fmt.Errorf("invalid flag %q", s)
		}
		*f = Flag(parsed)
		return nil
	}

	return fmt.Errorf("invalid flag %s", string(data))
}

// Int returns 1 for true and 0 for false.
func (f Flag) Int() float64 {
	if f {
		return 1
	}
	return 0
}
