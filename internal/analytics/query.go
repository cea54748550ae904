// Package analytics is the HTTP client for the hospital analytics backend.
package analytics

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
)

// Query parameter names shared by every filtered request.
const (
	ParamStart     = "start"
	ParamEnd       = "end"
	ParamWardIDs   = "ward_ids"
	ParamDoctorIDs = "doctor_ids"
	ParamStatus    = "status"
)

// BuildQuery renders the filter state as a query string.
//
// Parameters are emitted in a fixed order: start, end, ward_ids, doctor_ids,
// status. Dates and id lists are omitted when unset; status is always present
// and defaults to "all".
// Id lists are comma-joined in the order they appear in f.
func BuildQuery(f models.FilterState) string {
	parts := make([]string, 0, 5)

	if f.Start != nil {
		parts = append(parts, ParamStart+"="+url.QueryEscape(models.FormatDate(f.Start)))
	}
	if f.End != nil {
		parts = append(parts, ParamEnd+"="+url.QueryEscape(models.FormatDate(f.End)))
	}
	if len(f.WardIDs) > 0 {
		parts = append(parts, ParamWardIDs+"="+joinIDs(f.WardIDs))
	}
	if len(f.DoctorIDs) > 0 {
		parts = append(parts, ParamDoctorIDs+"="+joinIDs(f.DoctorIDs))
	}
	status := f.Status
	if status == "" {
		status = models.StatusAll
	}
	parts = append(parts, ParamStatus+"="+url.QueryEscape(string(status)))

	return strings.Join(parts, "&")
}

// ResourcePath appends the filter query to path, using "&" when path
// already carries a query and "?" otherwise.
func ResourcePath(path string, f models.FilterState) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + BuildQuery(f)
}

func joinIDs(ids []int) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}
