package analytics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name  string
		state models.FilterState
		want  string
	}{
		{
			name:  "StatusOnly",
			state: models.FilterState{Status: models.StatusAll},
			want:  "status=all",
		},
		{
			name:  "EmptyStatusDefaultsToAll",
			state: models.FilterState{},
			want:  "status=all",
		},
		{
			name:  "WardsWithoutDoctors",
			state: models.FilterState{WardIDs: []int{3, 7}, DoctorIDs: []int{}, Status: models.StatusAll},
			want:  "ward_ids=3,7&status=all",
		},
		{
			name: "AllFields",
			state: models.FilterState{
				Start:     models.ParseDate("2024-01-01"),
				End:       models.ParseDate("2024-01-31"),
				WardIDs:   []int{1},
				DoctorIDs: []int{4, 9},
				Status:    models.StatusDischarged,
			},
			want: "start=2024-01-01&end=2024-01-31&ward_ids=1&doctor_ids=4,9&status=discharged",
		},
		{
			name:  "EndWithoutStart",
			state: models.FilterState{End: models.ParseDate("2024-02-29"), Status: models.StatusAdmitted},
			want:  "end=2024-02-29&status=admitted",
		},
		{
			name:  "StatusIsEscaped",
			state: models.FilterState{Status: "in care&x"},
			want:  "status=in+care%26x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildQuery(tt.state))
		})
	}
}

// Every combination of present/absent fields must omit exactly the absent
// ones and keep the present ones in their fixed relative order.
func TestBuildQuery_OmitsExactlyEmptyFieldsInOrder(t *testing.T) {
	order := []string{ParamStart, ParamEnd, ParamWardIDs, ParamDoctorIDs, ParamStatus}

	for mask := 0; mask < 16; mask++ {
		state := models.FilterState{Status: models.StatusAll}
		expected := []string{}
		if mask&1 != 0 {
			state.Start = models.ParseDate("2024-06-01")
			expected = append(expected, ParamStart)
		}
		if mask&2 != 0 {
			state.End = models.ParseDate("2024-06-30")
			expected = append(expected, ParamEnd)
		}
		if mask&4 != 0 {
			state.WardIDs = []int{2}
			expected = append(expected, ParamWardIDs)
		}
		if mask&8 != 0 {
			state.DoctorIDs = []int{5, 6}
			expected = append(expected, ParamDoctorIDs)
		}
		expected = append(expected, ParamStatus)

		var keys []string
		for _, pair := range strings.Split(BuildQuery(state), "&") {
			keys = append(keys, strings.SplitN(pair, "=", 2)[0])
		}

		assert.Equal(t, expected, keys, "mask %04b", mask)

		last := -1
		for _, k := range keys {
			idx := indexOf(order, k)
			assert.Greater(t, idx, last, "mask %04b reordered %s", mask, k)
			last = idx
		}
	}
}

func indexOf(values []string, v string) int {
	for i, s := range values {
		if s == v {
			return i
		}
	}
	return -1
}

func TestResourcePath(t *testing.T) {
	state := models.FilterState{Status: models.StatusAll}

	assert.Equal(t, "/kpis?status=all", ResourcePath(PathKPIs, state))
	assert.Equal(t,
		"/admissions/series?granularity=day&status=all",
		ResourcePath(SeriesPath(models.GranularityDay), state),
	)
}

func TestSeriesPath(t *testing.T) {
	assert.Equal(t, "/admissions/series?granularity=week", SeriesPath(models.GranularityWeek))
	assert.Equal(t, "/admissions/series?granularity=day", SeriesPath(""))
}
