// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/hospital-dashboard-tui/internal/analytics"
	"github.com/j-veylop/hospital-dashboard-tui/internal/config"
	"github.com/j-veylop/hospital-dashboard-tui/internal/db"
	"github.com/j-veylop/hospital-dashboard-tui/internal/logger"
	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
	"github.com/j-veylop/hospital-dashboard-tui/internal/services/dashboard"
	"github.com/j-veylop/hospital-dashboard-tui/internal/services/presets"
	"github.com/j-veylop/hospital-dashboard-tui/internal/services/scheduler"
)

// snapshotRetention is how long KPI snapshots are kept.
const snapshotRetention = 30 * 24 * time.Hour

type (
	// AutoRefreshEvent is emitted on every tick of the auto refresh timer.
	AutoRefreshEvent struct {
		At time.Time
	}

	// PresetsChangedEvent is emitted when the presets file was edited.
	PresetsChangedEvent struct {
		Presets models.Presets
	}

	// SnapshotRecordedEvent is emitted after a KPI snapshot is stored.
	SnapshotRecordedEvent struct {
		Snapshot models.KPISnapshot
	}

	// OccupancyAlertEvent is emitted when bed occupancy crosses the alert
	// threshold upwards.
	OccupancyAlertEvent struct {
		Occupancy float64
		Threshold float64
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (AutoRefreshEvent) isServiceEvent()      {}
func (PresetsChangedEvent) isServiceEvent()   {}
func (SnapshotRecordedEvent) isServiceEvent() {}
func (OccupancyAlertEvent) isServiceEvent()   {}
func (ErrorEvent) isServiceEvent()            {}

// Notifier shows a desktop notification.
type Notifier func(title, body string) error

func beeepNotifier(title, body string) error {
	return beeep.Notify(title, body, "")
}

// Option configures a Manager.
type Option func(*Manager)

// WithNotifier replaces the desktop notifier.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notify = n }
}

// Manager orchestrates services and event routing.
type Manager struct {
	cfg        *config.Config
	client     *analytics.Client
	controller *dashboard.Controller
	refresher  *scheduler.Task
	presets    *presets.Service
	database   *db.DB
	notify     Notifier

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.RWMutex
	subscribers []chan ServiceEvent
	closed      bool
	stopChan    chan struct{}

	alertMu       sync.Mutex
	lastOccupancy map[string]float64
}

// NewManager creates a new service manager rendering into display.
func NewManager(cfg *config.Config, display dashboard.Display, opts ...Option) (*Manager, error) {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:      cfg,
		client:   analytics.NewClient(cfg.BackendURL),
		notify:   beeepNotifier,
		ctx:      ctx,
		cancel:   cancel,
		stopChan: make(chan struct{}),

		lastOccupancy: make(map[string]float64),
	}
	for _, opt := range opts {
		opt(m)
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.presets, err = presets.New(cfg.PresetsPath)
	if err != nil {
		cancel()
		_ = m.database.Close()
		return nil, fmt.Errorf("failed to initialize presets: %w", err)
	}

	m.controller = dashboard.New(m.client, display, dashboard.WithKPIObserver(m.onKPIs))
	m.refresher = scheduler.New("auto-refresh", cfg.AutoRefreshInterval, func(context.Context) {
		m.broadcast(AutoRefreshEvent{At: time.Now()})
	})

	if removed, err := m.database.PruneSnapshots(ctx, time.Now().Add(-snapshotRetention)); err != nil {
		logger.Warn("failed to prune snapshots", "error", err)
	} else if removed > 0 {
		logger.Info("pruned old snapshots", "count", removed)
		if err := m.database.Vacuum(); err != nil {
			logger.Warn("failed to vacuum database", "error", err)
		}
	}

	go m.routeEvents()

	return m, nil
}

// routeEvents forwards presets service events to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.presets.Events():
			m.handlePresetsEvent(event)
		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handlePresetsEvent(event presets.Event) {
	switch event.Type {
	case presets.EventPresetsChanged:
		m.broadcast(PresetsChangedEvent{Presets: event.Presets})
	case presets.EventError:
		m.broadcast(ErrorEvent{Service: "presets", Error: event.Error})
	}
}

// onKPIs stores a snapshot of every hospital-wide KPI summary and checks the
// occupancy alert. Ward, doctor or status filtered summaries are neither
// stored nor compared.
func (m *Manager) onKPIs(f models.FilterState, s models.KPISummary) {
	if !f.HospitalWide() {
		return
	}

	snap := models.NewKPISnapshot(s, f.Status, time.Now())
	if err := m.database.InsertSnapshot(m.ctx, &snap); err != nil {
		logger.Error("failed to record KPI snapshot", "error", err)
		m.broadcast(ErrorEvent{Service: "history", Error: err})
	} else {
		m.broadcast(SnapshotRecordedEvent{Snapshot: snap})
	}

	m.checkOccupancyAlert(analytics.BuildQuery(f), s.Beds.OccupancyRate)
}

// checkOccupancyAlert notifies when occupancy crosses the threshold upwards
// between two consecutive samples of the same scope. The first sample of a
// scope never alerts.
func (m *Manager) checkOccupancyAlert(scope string, occupancy float64) {
	if !m.cfg.AlertsEnabled() {
		return
	}
	threshold := m.cfg.OccupancyAlertThreshold

	m.alertMu.Lock()
	prev, seen := m.lastOccupancy[scope]
	m.lastOccupancy[scope] = occupancy
	m.alertMu.Unlock()

	if !seen || !(prev < threshold && occupancy >= threshold) {
		return
	}

	title := "High bed occupancy"
	body := fmt.Sprintf("Occupancy is %s (threshold %s)",
		models.FormatPercent(occupancy), models.FormatPercent(threshold))
	if err := m.notify(title, body); err != nil {
		logger.Warn("desktop notification failed", "error", err)
	}

	m.broadcast(OccupancyAlertEvent{Occupancy: occupancy, Threshold: threshold})
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return
	}

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// LoadFilterOptions populates the ward and doctor selectors.
func (m *Manager) LoadFilterOptions(ctx context.Context) error {
	return m.controller.LoadFilterOptions(ctx)
}

// ApplyFilters re-reads the controls from src and refreshes the dashboard.
func (m *Manager) ApplyFilters(ctx context.Context, src dashboard.FilterSource) (models.FilterState, error) {
	return m.controller.ApplyFilters(ctx, src)
}

// Filters returns the filter state of the last refresh.
func (m *Manager) Filters() models.FilterState {
	return m.controller.Filters()
}

// StartAutoRefresh starts the recurring refresh timer. It returns false if
// the timer is already running.
func (m *Manager) StartAutoRefresh() bool {
	return m.refresher.Start(m.ctx)
}

// StopAutoRefresh stops the recurring refresh timer.
func (m *Manager) StopAutoRefresh() {
	m.refresher.Stop()
}

// AutoRefreshRunning reports whether the refresh timer is active.
func (m *Manager) AutoRefreshRunning() bool {
	return m.refresher.Running()
}

// Patients fetches patient rows for f.
func (m *Manager) Patients(ctx context.Context, f models.FilterState) ([]models.Record, error) {
	return m.client.Patients(ctx, f)
}

// Admissions fetches admission rows for f.
func (m *Manager) Admissions(ctx context.Context, f models.FilterState) ([]models.Record, error) {
	return m.client.Admissions(ctx, f)
}

// RecentSnapshots returns up to limit stored KPI snapshots, oldest first.
func (m *Manager) RecentSnapshots(ctx context.Context, limit int) ([]models.KPISnapshot, error) {
	if m.database == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return m.database.RecentSnapshots(ctx, limit)
}

// SnapshotCount returns the number of stored KPI snapshots.
func (m *Manager) SnapshotCount(ctx context.Context) (int, error) {
	if m.database == nil {
		return 0, fmt.Errorf("database not initialized")
	}
	return m.database.CountSnapshots(ctx)
}

// OccupancyHistory aggregates the snapshots recorded within r.
func (m *Manager) OccupancyHistory(ctx context.Context, r models.TimeRange) (*models.OccupancyHistory, error) {
	if m.database == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	snaps, err := m.database.SnapshotsSince(ctx, r.Since(time.Now()))
	if err != nil {
		return nil, err
	}
	return models.NewOccupancyHistory(snaps, r), nil
}

// Presets returns the current filter presets.
func (m *Manager) Presets() models.Presets {
	return m.presets.Get()
}

// PresetsPath returns the presets file location.
func (m *Manager) PresetsPath() string {
	return m.presets.Path()
}

// Config returns the application configuration.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// BackendURL returns the analytics backend origin.
func (m *Manager) BackendURL() string {
	return m.client.BaseURL()
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close stops the timer and closes every service.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	m.refresher.Stop()
	m.cancel()
	close(m.stopChan)

	var errs []error
	if err := m.presets.Close(); err != nil {
		errs = append(errs, err)
	}
	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
