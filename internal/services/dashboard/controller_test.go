package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/hospital-dashboard-tui/internal/analytics"
	"github.com/j-veylop/hospital-dashboard-tui/internal/charts"
	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
)

type recordingDisplay struct {
	mu       sync.Mutex
	wards    []models.Option
	doctors  []models.Option
	kpis     models.KPIView
	kpiCalls int
	registry *charts.Registry
}

func newRecordingDisplay() *recordingDisplay {
	return &recordingDisplay{registry: charts.NewRegistry()}
}

func (d *recordingDisplay) SetFilterOptions(wards, doctors []models.Option) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wards = wards
	d.doctors = doctors
}

func (d *recordingDisplay) SetKPIs(view models.KPIView) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.kpis = view
	d.kpiCalls++
}

func (d *recordingDisplay) RenderChart(id string, cfg charts.Config) {
	d.registry.Ensure(id, cfg)
}

func (d *recordingDisplay) snapshot() (models.KPIView, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.kpis, d.kpiCalls
}

// backend serves every dashboard resource. Numeric values are derived from
// the status parameter so tests can tell which request produced a field.
type backend struct {
	mu       sync.Mutex
	failures map[string]int
	delay    map[string]time.Duration
	queries  []string
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	value := func(r *http.Request) float64 {
		switch r.URL.Query().Get("status") {
		case "admitted":
			return 10
		case "discharged":
			return 20
		default:
			return 42.5
		}
	}

	wrap := func(path string, body func(r *http.Request) string) {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			b.mu.Lock()
			b.queries = append(b.queries, r.URL.RequestURI())
			status := b.failures[path]
			delay := b.delay[r.URL.Query().Get("status")]
			b.mu.Unlock()

			if delay > 0 {
				time.Sleep(delay)
			}
			if status != 0 {
				w.WriteHeader(status)
				return
			}
			_, _ = w.Write([]byte(body(r)))
		})
	}

	wrap(analytics.PathKPIs, func(r *http.Request) string {
		return fmt.Sprintf(`{"beds":{"occupancy_rate":%v,"occupied":17,"total":40},
			"admissions":{"active":12,"discharges_today":3,"avg_length_of_stay_days":3.2,"discharged":88},
			"doctors":{"present":5,"busy":2,"total":9}}`, value(r))
	})
	wrap(analytics.PathWards, func(r *http.Request) string {
		return fmt.Sprintf(`{"wards":[{"ward_id":7,"ward_name":"ICU","occupancy_rate":%v},
			{"ward_id":3,"ward_name":"Surgery","occupancy_rate":55}]}`, value(r))
	})
	wrap(analytics.PathDoctors, func(r *http.Request) string {
		return `{"doctors":[{"doctor_id":1,"name":"Dr. Lee","is_present":true,"is_busy":false}]}`
	})
	wrap(analytics.PathAdmissionsSeries, func(r *http.Request) string {
		return fmt.Sprintf(`{"series":[{"bucket":"2024-01-01","admissions":%v}]}`, value(r))
	})
	return mux
}

func (b *backend) fail(path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures == nil {
		b.failures = map[string]int{}
	}
	b.failures[path] = status
}

func newController(t *testing.T, opts ...Option) (*Controller, *recordingDisplay, *backend) {
	t.Helper()
	b := &backend{}
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	d := newRecordingDisplay()
	return New(analytics.NewClient(srv.URL), d, opts...), d, b
}

func source(f models.FilterState) FilterSource {
	return FilterSourceFunc(func() models.FilterState { return f })
}

func TestReadFilters(t *testing.T) {
	c, _, _ := newController(t)

	assert.Equal(t, models.DefaultFilterState(), c.Filters())

	got := c.ReadFilters(source(models.FilterState{
		Start:     models.ParseDate("2024-03-01"),
		WardIDs:   []int{7, 3, 7},
		DoctorIDs: []int{},
	}))

	assert.Equal(t, []int{3, 7}, got.WardIDs)
	assert.Nil(t, got.DoctorIDs)
	assert.Nil(t, got.End)
	assert.Equal(t, models.StatusAll, got.Status)
	assert.Equal(t, models.GranularityDay, got.Granularity)
	assert.True(t, got.Equal(c.Filters()))

	// The returned state is a copy.
	got.WardIDs[0] = 99
	assert.Equal(t, []int{3, 7}, c.Filters().WardIDs)
}

func TestLoadFilterOptions(t *testing.T) {
	c, d, _ := newController(t)

	require.NoError(t, c.LoadFilterOptions(context.Background()))

	d.mu.Lock()
	defer d.mu.Unlock()
	assert.Equal(t, []models.Option{{Value: 7, Label: "ICU"}, {Value: 3, Label: "Surgery"}}, d.wards)
	assert.Equal(t, []models.Option{{Value: 1, Label: "Dr. Lee"}}, d.doctors)
}

func TestLoadFilterOptions_Failure(t *testing.T) {
	c, d, b := newController(t)
	b.fail(analytics.PathDoctors, http.StatusInternalServerError)

	err := c.LoadFilterOptions(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, analytics.StatusCode(err))

	d.mu.Lock()
	defer d.mu.Unlock()
	assert.Nil(t, d.wards)
	assert.Nil(t, d.doctors)
}

func TestRefreshKPIs(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var observed []models.KPISummary
	c, d, _ := newController(t,
		WithClock(func() time.Time { return now }),
		WithKPIObserver(func(_ models.FilterState, s models.KPISummary) { observed = append(observed, s) }),
	)

	require.NoError(t, c.RefreshKPIs(context.Background(), models.DefaultFilterState()))

	view, calls := d.snapshot()
	assert.Equal(t, 1, calls)
	assert.Equal(t, now, view.UpdatedAt)
	assert.Equal(t, "42.5%", view.Field(models.KPIOccupancy))
	assert.Equal(t, "17 / 40", view.Field(models.KPIBeds))
	assert.Equal(t, "12", view.Field(models.KPIActive))
	assert.Equal(t, "3", view.Field(models.KPIDischToday))
	assert.Equal(t, "3.2 d", view.Field(models.KPILengthOfStay))
	assert.Equal(t, "88", view.Field(models.KPIDischCount))
	assert.Equal(t, "5", view.Field(models.KPIDoctorsPresent))
	assert.Equal(t, "2", view.Field(models.KPIDoctorsBusy))
	assert.Equal(t, "9", view.Field(models.KPIDoctorsTotal))
	require.Len(t, observed, 1)
	assert.Equal(t, 42.5, observed[0].Beds.OccupancyRate)
}

func TestRefreshKPIs_NotFound(t *testing.T) {
	c, d, b := newController(t)
	b.fail(analytics.PathKPIs, http.StatusNotFound)

	err := c.RefreshKPIs(context.Background(), models.DefaultFilterState())

	var reqErr *analytics.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusNotFound, reqErr.Status)

	_, calls := d.snapshot()
	assert.Equal(t, 0, calls)
}

func TestRefreshCharts(t *testing.T) {
	c, d, b := newController(t)
	f := models.FilterState{Status: models.StatusAll, Granularity: models.GranularityWeek, WardIDs: []int{3, 7}}

	require.NoError(t, c.RefreshCharts(context.Background(), f))
	require.NoError(t, c.RefreshCharts(context.Background(), f))

	assert.Equal(t, 3, d.registry.Live())
	assert.ElementsMatch(t, charts.IDs, d.registry.IDs())

	wards, ok := d.registry.Get(charts.WardsChartID)
	require.True(t, ok)
	assert.Equal(t, []string{"ICU", "Surgery"}, wards.Config().Labels)

	b.mu.Lock()
	defer b.mu.Unlock()
	assert.Contains(t, b.queries, "/admissions/series?granularity=week&ward_ids=3,7&status=all")
	assert.Contains(t, b.queries, "/wards/utilization?ward_ids=3,7&status=all")
}

func TestRefreshCharts_PartialFailure(t *testing.T) {
	c, d, b := newController(t)
	b.fail(analytics.PathAdmissionsSeries, http.StatusBadGateway)

	err := c.RefreshCharts(context.Background(), models.DefaultFilterState())
	assert.Equal(t, http.StatusBadGateway, analytics.StatusCode(err))

	_, ok := d.registry.Get(charts.AdmissionsChartID)
	assert.False(t, ok)
	_, ok = d.registry.Get(charts.WardsChartID)
	assert.True(t, ok)
	_, ok = d.registry.Get(charts.DoctorsChartID)
	assert.True(t, ok)
}

func TestApplyFilters(t *testing.T) {
	c, d, b := newController(t)

	f, err := c.ApplyFilters(context.Background(), source(models.FilterState{
		WardIDs: []int{7, 3},
		Status:  models.StatusAll,
	}))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 7}, f.WardIDs)

	view, _ := d.snapshot()
	assert.Equal(t, "42.5%", view.Field(models.KPIOccupancy))
	assert.Equal(t, 3, d.registry.Live())

	b.mu.Lock()
	defer b.mu.Unlock()
	assert.Contains(t, b.queries, "/kpis?ward_ids=3,7&status=all")
}

func TestApplyFilters_KPIFailureStillRendersCharts(t *testing.T) {
	c, d, b := newController(t)
	b.fail(analytics.PathKPIs, http.StatusServiceUnavailable)

	_, err := c.ApplyFilters(context.Background(), source(models.DefaultFilterState()))
	assert.Equal(t, http.StatusServiceUnavailable, analytics.StatusCode(err))

	assert.Equal(t, 3, d.registry.Live())
	_, calls := d.snapshot()
	assert.Equal(t, 0, calls)
}

func TestApplyFilters_Concurrent(t *testing.T) {
	c, d, b := newController(t)
	// Make the first cycle slower so the two overlap.
	b.mu.Lock()
	b.delay = map[string]time.Duration{"admitted": 30 * time.Millisecond}
	b.mu.Unlock()

	var wg sync.WaitGroup
	for _, status := range []models.Status{models.StatusAdmitted, models.StatusDischarged} {
		wg.Add(1)
		go func(s models.Status) {
			defer wg.Done()
			_, err := c.ApplyFilters(context.Background(), source(models.FilterState{Status: s}))
			assert.NoError(t, err)
		}(status)
	}
	wg.Wait()

	view, calls := d.snapshot()
	assert.Equal(t, 2, calls)
	assert.Contains(t, []float64{10, 20}, view.Occupancy)
	assert.Equal(t, models.FormatPercent(view.Occupancy), view.Field(models.KPIOccupancy))

	assert.Equal(t, 3, d.registry.Live())
	for _, id := range charts.IDs {
		chart, ok := d.registry.Get(id)
		require.True(t, ok, id)
		for _, ds := range chart.Config().Datasets {
			for _, v := range ds.Values {
				assert.NotEqual(t, 42.5, v, "chart %s rendered with an unfiltered result", id)
			}
		}
	}

	assert.Contains(t, []models.Status{models.StatusAdmitted, models.StatusDischarged}, c.Filters().Status)
}
