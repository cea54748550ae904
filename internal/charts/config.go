package charts

import (
	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
)

// Type selects how a chart is drawn.
type Type int

const (
	Line Type = iota
	Bar
	GroupedBar
)

func (t Type) String() string {
	switch t {
	case Line:
		return "line"
	case Bar:
		return "bar"
	case GroupedBar:
		return "grouped-bar"
	default:
		return "unknown"
	}
}

// Dataset is one labelled series of values, aligned with Config.Labels.
type Dataset struct {
	Label  string
	Values []float64
}

// Config fully describes a chart. A nil bound lets the renderer pick one.
type Config struct {
	Type     Type
	Title    string
	Labels   []string
	Datasets []Dataset
	YMin     *float64
	YMax     *float64
}

// Empty reports whether the chart has nothing to draw.
func (c Config) Empty() bool {
	for _, ds := range c.Datasets {
		if len(ds.Values) > 0 {
			return false
		}
	}
	return true
}

func (c Config) clone() Config {
	out := c
	out.Labels = append([]string(nil), c.Labels...)
	out.Datasets = make([]Dataset, len(c.Datasets))
	for i, ds := range c.Datasets {
		out.Datasets[i] = Dataset{Label: ds.Label, Values: append([]float64(nil), ds.Values...)}
	}
	if c.YMin != nil {
		v := *c.YMin
		out.YMin = &v
	}
	if c.YMax != nil {
		v := *c.YMax
		out.YMax = &v
	}
	return out
}

func bound(v float64) *float64 { return &v }

// AdmissionsConfig plots admissions per time bucket.
func AdmissionsConfig(series []models.SeriesPoint) Config {
	labels := make([]string, len(series))
	values := make([]float64, len(series))
	for i, p := range series {
		labels[i] = p.Bucket
		values[i] = p.Admissions
	}
	return Config{
		Type:     Line,
		Title:    "Admissions",
		Labels:   labels,
		Datasets: []Dataset{{Label: "Admissions", Values: values}},
		YMin:     bound(0),
	}
}

// WardsConfig plots ward occupancy on a fixed 0-100 axis.
func WardsConfig(wards []models.Ward) Config {
	labels := make([]string, len(wards))
	values := make([]float64, len(wards))
	for i, w := range wards {
		labels[i] = w.Name
		values[i] = w.OccupancyRate
	}
	return Config{
		Type:     Bar,
		Title:    "Ward occupancy (%)",
		Labels:   labels,
		Datasets: []Dataset{{Label: "Occupancy %", Values: values}},
		YMin:     bound(0),
		YMax:     bound(100),
	}
}

// DoctorsConfig plots presence and busy flags per doctor as 0/1 values.
func DoctorsConfig(doctors []models.Doctor) Config {
	labels := make([]string, len(doctors))
	present := make([]float64, len(doctors))
	busy := make([]float64, len(doctors))
	for i, d := range doctors {
		labels[i] = d.Name
		present[i] = d.IsPresent.Int()
		busy[i] = d.IsBusy.Int()
	}
	return Config{
		Type:   GroupedBar,
		Title:  "Doctors",
		Labels: labels,
		Datasets: []Dataset{
			{Label: "Present", Values: present},
			{Label: "Busy", Values: busy},
		},
		YMin: bound(0),
		YMax: bound(1),
	}
}
