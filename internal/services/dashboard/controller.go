// Package dashboard implements the dashboard controller. It owns the current
// filter state and refreshes KPI fields and charts from the analytics backend.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/j-veylop/hospital-dashboard-tui/internal/charts"
	"github.com/j-veylop/hospital-dashboard-tui/internal/logger"
	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
)

// Fetcher retrieves the resources the dashboard renders.
type Fetcher interface {
	Wards(ctx context.Context, f models.FilterState) ([]models.Ward, error)
	Doctors(ctx context.Context, f models.FilterState) ([]models.Doctor, error)
	KPIs(ctx context.Context, f models.FilterState) (models.KPISummary, error)
	AdmissionsSeries(ctx context.Context, f models.FilterState) ([]models.SeriesPoint, error)
}

// Display receives rendered output. Implementations must be safe for
// concurrent use; each call replaces one slot as a whole.
type Display interface {
	SetFilterOptions(wards, doctors []models.Option)
	SetKPIs(view models.KPIView)
	RenderChart(id string, cfg charts.Config)
}

// FilterSource exposes the current values of the filter controls.
type FilterSource interface {
	Filters() models.FilterState
}

// FilterSourceFunc adapts a function to FilterSource.
type FilterSourceFunc func() models.FilterState

// Filters calls fn.
func (fn FilterSourceFunc) Filters() models.FilterState { return fn() }

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the time source used to stamp KPI views.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithKPIObserver registers fn to be called with every KPI summary that was
// successfully rendered.
func WithKPIObserver(fn func(f models.FilterState, s models.KPISummary)) Option {
	return func(c *Controller) { c.onKPIs = fn }
}

// Controller coordinates filter state, fetching and rendering.
type Controller struct {
	fetcher Fetcher
	display Display
	now     func() time.Time
	onKPIs  func(models.FilterState, models.KPISummary)

	mu    sync.RWMutex
	state models.FilterState
}

// New creates a controller that fetches with f and renders to d.
func New(f Fetcher, d Display, opts ...Option) *Controller {
	c := &Controller{
		fetcher: f,
		display: d,
		now:     time.Now,
		state:   models.DefaultFilterState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReadFilters overwrites the filter state with the current control values.
// Nothing is validated: unset dates stay nil and empty selections stay empty.
// Id sets are deduplicated and sorted.
func (c *Controller) ReadFilters(src FilterSource) models.FilterState {
	f := src.Filters().Clone()
	f.WardIDs = models.NormalizeIDs(f.WardIDs)
	f.DoctorIDs = models.NormalizeIDs(f.DoctorIDs)
	if f.Status == "" {
		f.Status = models.StatusAll
	}
	if f.Granularity == "" {
		f.Granularity = models.GranularityDay
	}

	c.mu.Lock()
	c.state = f
	c.mu.Unlock()

	return f.Clone()
}

// Filters returns a copy of the current filter state.
func (c *Controller) Filters() models.FilterState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Clone()
}

// LoadFilterOptions fetches wards and doctors and replaces the selector
// options. The current filter state is sent along but the option lists are
// expected to be unfiltered by the backend.
func (c *Controller) LoadFilterOptions(ctx context.Context) error {
	f := c.Filters()

	var (
		g       errgroup.Group
		wards   []models.Ward
		doctors []models.Doctor
	)
	g.Go(func() error {
		var err error
		wards, err = c.fetcher.Wards(ctx, f)
		if err != nil {
			return fmt.Errorf("load ward options: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		doctors, err = c.fetcher.Doctors(ctx, f)
		if err != nil {
			return fmt.Errorf("load doctor options: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error("failed to load filter options", "error", err)
		return err
	}

	c.display.SetFilterOptions(models.WardOptions(wards), models.DoctorOptions(doctors))
	logger.Info("filter options loaded", "wards", len(wards), "doctors", len(doctors))
	return nil
}

// RefreshKPIs fetches the KPI summary for f and writes every KPI field.
func (c *Controller) RefreshKPIs(ctx context.Context, f models.FilterState) error {
	summary, err := c.fetcher.KPIs(ctx, f)
	if err != nil {
		return fmt.Errorf("refresh KPIs: %w", err)
	}

	c.display.SetKPIs(models.NewKPIView(summary, c.now()))

	if c.onKPIs != nil {
		c.onKPIs(f, summary)
	}
	return nil
}

// RefreshCharts fetches the three chart resources for f concurrently. Each
// chart is rendered as soon as its data arrives, so one failed fetch leaves
// the others updated.
func (c *Controller) RefreshCharts(ctx context.Context, f models.FilterState) error {
	var g errgroup.Group

	g.Go(func() error {
		series, err := c.fetcher.AdmissionsSeries(ctx, f)
		if err != nil {
			return fmt.Errorf("refresh %s: %w", charts.AdmissionsChartID, err)
		}
		c.display.RenderChart(charts.AdmissionsChartID, charts.AdmissionsConfig(series))
		return nil
	})

	g.Go(func() error {
		wards, err := c.fetcher.Wards(ctx, f)
		if err != nil {
			return fmt.Errorf("refresh %s: %w", charts.WardsChartID, err)
		}
		c.display.RenderChart(charts.WardsChartID, charts.WardsConfig(wards))
		return nil
	})

	g.Go(func() error {
		doctors, err := c.fetcher.Doctors(ctx, f)
		if err != nil {
			return fmt.Errorf("refresh %s: %w", charts.DoctorsChartID, err)
		}
		c.display.RenderChart(charts.DoctorsChartID, charts.DoctorsConfig(doctors))
		return nil
	})

	return g.Wait()
}

// ApplyFilters re-reads the controls and refreshes KPIs and charts
// concurrently. It returns once both refreshes have finished, with the
// first error either produced. Overlapping calls are not serialized.
func (c *Controller) ApplyFilters(ctx context.Context, src FilterSource) (models.FilterState, error) {
	f := c.ReadFilters(src)
	log := logger.With("cycle", uuid.NewString())
	start := time.Now()

	log.Debug("refresh started",
		"ward_ids", f.WardIDs,
		"doctor_ids", f.DoctorIDs,
		"status", f.Status,
		"granularity", f.Granularity,
	)

	var g errgroup.Group
	g.Go(func() error { return c.RefreshKPIs(ctx, f) })
	g.Go(func() error { return c.RefreshCharts(ctx, f) })

	if err := g.Wait(); err != nil {
		log.Error("refresh failed", "error", err, "duration", time.Since(start))
		return f, err
	}

	log.Info("refresh finished", "duration", time.Since(start))
	return f, nil
}
