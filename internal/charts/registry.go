// Package charts holds chart configurations and the registry of live chart
// handles keyed by chart identifier.
package charts

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Chart identifiers on the dashboard.
const (
	AdmissionsChartID = "admissionsChart"
	WardsChartID      = "wardsChart"
	DoctorsChartID    = "doctorsChart"
)

// IDs lists the dashboard charts in display order.
var IDs = []string{AdmissionsChartID, WardsChartID, DoctorsChartID}

var handleSeq atomic.Uint64

// Chart is a rendered chart instance. Once destroyed it must not be drawn.
type Chart struct {
	id        string
	seq       uint64
	config    Config
	destroyed atomic.Bool
}

// ID returns the identifier the chart was rendered under.
func (c *Chart) ID() string { return c.id }

// Seq returns the creation sequence number of this handle. Each new handle
// gets a larger number than every handle created before it.
func (c *Chart) Seq() uint64 { return c.seq }

// Config returns the configuration the chart was created with.
func (c *Chart) Config() Config { return c.config }

// Destroy releases the chart.
func (c *Chart) Destroy() { c.destroyed.Store(true) }

// Destroyed reports whether Destroy has been called.
func (c *Chart) Destroyed() bool { return c.destroyed.Load() }

// Registry maps chart identifiers to their live chart. At most one live
// chart exists per identifier.
type Registry struct {
	mu     sync.RWMutex
	charts map[string]*Chart
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{charts: make(map[string]*Chart)}
}

// Ensure renders cfg under id. Any existing chart for id is destroyed before
// the new one is created.
func (r *Registry) Ensure(id string, cfg Config) *Chart {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.charts[id]; ok {
		prev.Destroy()
	}

	c := &Chart{
		id:     id,
		seq:    handleSeq.Add(1),
		config: cfg.clone(),
	}
	r.charts[id] = c
	return c
}

// Get returns the live chart for id.
func (r *Registry) Get(id string) (*Chart, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.charts[id]
	return c, ok
}

// Live counts charts that have not been destroyed.
func (r *Registry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, c := range r.charts {
		if !c.Destroyed() {
			n++
		}
	}
	return n
}

// IDs returns the identifiers with a chart, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.charts))
	for id := range r.charts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clear destroys every chart and empties the registry.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.charts {
		c.Destroy()
		delete(r.charts, id)
	}
}
