package analytics

import (
	"context"
	"net/url"

	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
)

// Backend resource paths.
const (
	PathWards            = "/wards/utilization"
	PathDoctors          = "/doctors/workload"
	PathKPIs             = "/kpis"
	PathAdmissionsSeries = "/admissions/series"
	PathPatients         = "/patients"
	PathAdmissions       = "/admissions"
)

type wardsResponse struct {
	Wards *[]models.Ward `json:"wards"`
}

type doctorsResponse struct {
	Doctors *[]models.Doctor `json:"doctors"`
}

type seriesResponse struct {
	Series *[]models.SeriesPoint `json:"series"`
}

type kpiResponse struct {
	Beds       *models.BedsKPI       `json:"beds"`
	Admissions *models.AdmissionsKPI `json:"admissions"`
	Doctors    *models.DoctorsKPI    `json:"doctors"`
}

type patientsResponse struct {
	Patients *[]models.Record `json:"patients"`
}

type admissionsResponse struct {
	Admissions *[]models.Record `json:"admissions"`
}

// Wards fetches ward utilization.
func (c *Client) Wards(ctx context.Context, f models.FilterState) ([]models.Ward, error) {
	var resp wardsResponse
	if err := c.FetchResource(ctx, PathWards, f, &resp); err != nil {
		return nil, err
	}
	if resp.Wards == nil {
		return nil, &ShapeError{Path: PathWards, Field: "wards"}
	}
	return *resp.Wards, nil
}

// Doctors fetches doctor workload.
func (c *Client) Doctors(ctx context.Context, f models.FilterState) ([]models.Doctor, error) {
	var resp doctorsResponse
	if err := c.FetchResource(ctx, PathDoctors, f, &resp); err != nil {
		return nil, err
	}
	if resp.Doctors == nil {
		return nil, &ShapeError{Path: PathDoctors, Field: "doctors"}
	}
	return *resp.Doctors, nil
}

// KPIs fetches the KPI summary. All three sections must be present.
func (c *Client) KPIs(ctx context.Context, f models.FilterState) (models.KPISummary, error) {
	var resp kpiResponse
	if err := c.FetchResource(ctx, PathKPIs, f, &resp); err != nil {
		return models.KPISummary{}, err
	}
	switch {
	case resp.Beds == nil:
		return models.KPISummary{}, &ShapeError{Path: PathKPIs, Field: "beds"}
	case resp.Admissions == nil:
		return models.KPISummary{}, &ShapeError{Path: PathKPIs, Field: "admissions"}
	case resp.Doctors == nil:
		return models.KPISummary{}, &ShapeError{Path: PathKPIs, Field: "doctors"}
	}
	return models.KPISummary{
		Beds:       *resp.Beds,
		Admissions: *resp.Admissions,
		Doctors:    *resp.Doctors,
	}, nil
}

// SeriesPath returns the admissions series path for granularity g.
func SeriesPath(g models.Granularity) string {
	if g == "" {
		g = models.GranularityDay
	}
	return PathAdmissionsSeries + "?granularity=" + url.QueryEscape(string(g))
}

// AdmissionsSeries fetches the admissions time series bucketed by f.Granularity.
func (c *Client) AdmissionsSeries(ctx context.Context, f models.FilterState) ([]models.SeriesPoint, error) {
	path := SeriesPath(f.Granularity)
	var resp seriesResponse
	if err := c.FetchResource(ctx, path, f, &resp); err != nil {
		return nil, err
	}
	if resp.Series == nil {
		return nil, &ShapeError{Path: PathAdmissionsSeries, Field: "series"}
	}
	return *resp.Series, nil
}

// Patients fetches patient rows.
func (c *Client) Patients(ctx context.Context, f models.FilterState) ([]models.Record, error) {
	var resp patientsResponse
	if err := c.FetchResource(ctx, PathPatients, f, &resp); err != nil {
		return nil, err
	}
	if resp.Patients == nil {
		return nil, &ShapeError{Path: PathPatients, Field: "patients"}
	}
	return *resp.Patients, nil
}

// Admissions fetches admission rows.
func (c *Client) Admissions(ctx context.Context, f models.FilterState) ([]models.Record, error) {
	var resp admissionsResponse
	if err := c.FetchResource(ctx, PathAdmissions, f, &resp); err != nil {
		return nil, err
	}
	if resp.Admissions == nil {
		return nil, &ShapeError{Path: PathAdmissions, Field: "admissions"}
	}
	return *resp.Admissions, nil
}
