package analytics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestNewClient_Defaults(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewClient("").BaseURL())
	assert.Equal(t, "http://example.test", NewClient("http://example.test/").BaseURL())
}

func TestFetchResource_AppendsQuery(t *testing.T) {
	var gotURI string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	state := models.FilterState{WardIDs: []int{3, 7}, Status: models.StatusAll}

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, client.FetchResource(context.Background(), "/kpis", state, &out))
	assert.True(t, out.OK)
	assert.Equal(t, "/kpis?ward_ids=3,7&status=all", gotURI)

	require.NoError(t, client.FetchResource(context.Background(), SeriesPath(models.GranularityMonth), state, &out))
	assert.Equal(t, "/admissions/series?granularity=month&ward_ids=3,7&status=all", gotURI)
}

func TestFetchResource_NotFound(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		// Not JSON: decoding it would produce a different error.
		_, _ = w.Write([]byte("<html>missing</html>"))
	})

	out := map[string]any{"untouched": true}
	err := client.FetchResource(context.Background(), "/kpis", models.DefaultFilterState(), &out)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusNotFound, reqErr.Status)
	assert.Equal(t, "Not Found", reqErr.StatusText)
	assert.Contains(t, reqErr.URL, "/kpis?status=all")
	assert.Equal(t, map[string]any{"untouched": true}, out)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestFetchResource_NoRetries(t *testing.T) {
	var calls atomic.Int32
	client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := client.FetchResource(context.Background(), "/kpis", models.DefaultFilterState(), &struct{}{})
	assert.Equal(t, http.StatusServiceUnavailable, StatusCode(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchResource_InvalidJSON(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	})

	err := client.FetchResource(context.Background(), "/kpis", models.DefaultFilterState(), &struct{}{})
	require.Error(t, err)
	assert.Equal(t, 0, StatusCode(err))
	assert.Contains(t, err.Error(), "decode")
}

func TestFetchResource_CancelledContext(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.FetchResource(ctx, "/kpis", models.DefaultFilterState(), &struct{}{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(PathWards, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"wards":[{"ward_id":3,"ward_name":"ICU","occupancy_rate":91.5}]}`))
	})
	mux.HandleFunc(PathDoctors, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"doctors":[{"doctor_id":1,"name":"Dr. Lee","is_present":true,"is_busy":1}]}`))
	})
	mux.HandleFunc(PathKPIs, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"beds":{"occupancy_rate":42.5,"occupied":17,"total":40},
			"admissions":{"active":12,"discharges_today":3,"avg_length_of_stay_days":3.2,"discharged":88},
			"doctors":{"present":5,"busy":2,"total":9}}`))
	})
	mux.HandleFunc(PathAdmissionsSeries, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("granularity") != "week" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"series":[{"bucket":"2024-W01","admissions":4},{"bucket":"2024-W02","admissions":6}]}`))
	})
	mux.HandleFunc(PathPatients, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"patients":[{"patient_id":1,"name":"Ana"}]}`))
	})
	mux.HandleFunc(PathAdmissions, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"admissions":[]}`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()
	client := NewClient(srv.URL)
	ctx := context.Background()
	state := models.FilterState{Status: models.StatusAll, Granularity: models.GranularityWeek}

	wards, err := client.Wards(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, []models.Ward{{ID: 3, Name: "ICU", OccupancyRate: 91.5}}, wards)

	doctors, err := client.Doctors(ctx, state)
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.True(t, bool(doctors[0].IsPresent))
	assert.True(t, bool(doctors[0].IsBusy))

	kpis, err := client.KPIs(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, 42.5, kpis.Beds.OccupancyRate)
	assert.Equal(t, 3.2, kpis.Admissions.AvgLengthOfStayDays)
	assert.Equal(t, 9, kpis.Doctors.Total)

	series, err := client.AdmissionsSeries(ctx, state)
	require.NoError(t, err)
	assert.Len(t, series, 2)
	assert.Equal(t, "2024-W02", series[1].Bucket)

	patients, err := client.Patients(ctx, state)
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "Ana", patients[0].Value("name"))

	admissions, err := client.Admissions(ctx, state)
	require.NoError(t, err)
	assert.Empty(t, admissions)
	assert.NotNil(t, admissions)
}

func TestEndpoints_ShapeMismatch(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == PathKPIs {
			// The flat "summary" contract is not accepted.
			_, _ = w.Write([]byte(`{"summary":{"occupancy_rate":50}}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	})
	ctx := context.Background()
	state := models.DefaultFilterState()

	tests := []struct {
		name  string
		call  func() error
		field string
	}{
		{"KPIs", func() error { _, err := client.KPIs(ctx, state); return err }, "beds"},
		{"Wards", func() error { _, err := client.Wards(ctx, state); return err }, "wards"},
		{"Doctors", func() error { _, err := client.Doctors(ctx, state); return err }, "doctors"},
		{"Series", func() error { _, err := client.AdmissionsSeries(ctx, state); return err }, "series"},
		{"Patients", func() error { _, err := client.Patients(ctx, state); return err }, "patients"},
		{"Admissions", func() error { _, err := client.Admissions(ctx, state); return err }, "admissions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var shapeErr *ShapeError
			require.ErrorAs(t, tt.call(), &shapeErr)
			assert.Equal(t, tt.field, shapeErr.Field)
		})
	}
}

func TestKPIs_MissingSection(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"beds":{"occupancy_rate":1},"admissions":{"active":1}}`))
	})

	_, err := client.KPIs(context.Background(), models.DefaultFilterState())
	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "doctors", shapeErr.Field)
	assert.Equal(t, PathKPIs, shapeErr.Path)
}
