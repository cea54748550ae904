package models

import (
	"fmt"
	"strconv"
	"time"
)

// KPI field identifiers. They name the display slots the KPI renderer writes to.
const (
	KPIOccupancy      = "kpiOcc"
	KPIBeds           = "kpiBeds"
	KPIActive         = "kpiActive"
	KPIDischToday     = "kpiDischToday"
	KPILengthOfStay   = "kpiLOS"
	KPIDischCount     = "kpiDischCount"
	KPIDoctorsPresent = "kpiDocsPresent"
	KPIDoctorsBusy    = "kpiDocsBusy"
	KPIDoctorsTotal   = "kpiDocsTotal"
)

// KPIField is one formatted KPI text slot.
type KPIField struct {
	ID    string
	Label string
	Value string
}

// KPIView is the formatted KPI panel, written as a whole by each refresh.
type KPIView struct {
	Fields    []KPIField
	Occupancy float64
	UpdatedAt time.Time
}

// NewKPIView formats a KPI summary into display fields.
func NewKPIView(s KPISummary, now time.Time) KPIView {
	return KPIView{
		Occupancy: s.Beds.OccupancyRate,
		UpdatedAt: now,
		Fields: []KPIField{
			{ID: KPIOccupancy, Label: "Bed occupancy", Value: FormatPercent(s.Beds.OccupancyRate)},
			{ID: KPIBeds, Label: "Beds occupied", Value: fmt.Sprintf("%d / %d", s.Beds.Occupied, s.Beds.Total)},
			{ID: KPIActive, Label: "Active admissions", Value: strconv.Itoa(s.Admissions.Active)},
			{ID: KPIDischToday, Label: "Discharges today", Value: strconv.Itoa(s.Admissions.DischargesToday)},
			{ID: KPILengthOfStay, Label: "Avg length of stay", Value: FormatDays(s.Admissions.AvgLengthOfStayDays)},
			{ID: KPIDischCount, Label: "Discharged", Value: strconv.Itoa(s.Admissions.Discharged)},
			{ID: KPIDoctorsPresent, Label: "Doctors present", Value: strconv.Itoa(s.Doctors.Present)},
			{ID: KPIDoctorsBusy, Label: "Doctors busy", Value: strconv.Itoa(s.Doctors.Busy)},
			{ID: KPIDoctorsTotal, Label: "Doctors total", Value: strconv.Itoa(s.Doctors.Total)},
		},
	}
}

// Field returns the formatted value for id, or "" if the view has no such field.
func (v KPIView) Field(id string) string {
	for _, f := range v.Fields {
		if f.ID == id {
			return f.Value
		}
	}
	return ""
}

// FormatNumber renders v with the shortest exact decimal representation.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatPercent renders a percentage, e.g. 42.5 -> "42.5%".
func FormatPercent(v float64) string {
	return FormatNumber(v) + "%"
}

// FormatDays renders a day count, e.g. 3.2 -> "3.2 d".
func FormatDays(v float64) string {
	return FormatNumber(v) + " d"
}

// KPISnapshot is a persisted KPI sample used by the history view.
type KPISnapshot struct {
	ID                  int64
	RecordedAt          time.Time
	OccupancyRate       float64
	OccupiedBeds        int
	TotalBeds           int
	ActiveAdmissions    int
	AvgLengthOfStayDays float64
	DoctorsPresent      int
	Status              Status
}

// NewKPISnapshot captures the fields of s worth keeping over time.
func NewKPISnapshot(s KPISummary, status Status, at time.Time) KPISnapshot {
	return KPISnapshot{
		RecordedAt:          at,
		OccupancyRate:       s.Beds.OccupancyRate,
		OccupiedBeds:        s.Beds.Occupied,
		TotalBeds:           s.Beds.Total,
		ActiveAdmissions:    s.Admissions.Active,
		AvgLengthOfStayDays: s.Admissions.AvgLengthOfStayDays,
		DoctorsPresent:      s.Doctors.Present,
		Status:              status,
	}
}
