// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/j-veylop/hospital-dashboard-tui/internal/charts"
	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// RefreshStatus describes the outcome of the most recent refresh cycle.
type RefreshStatus struct {
	Trigger  string
	At       time.Time
	Err      error
	Filters  models.FilterState
	Duration time.Duration
}

// Failed reports whether the last refresh failed.
func (r RefreshStatus) Failed() bool {
	return r.Err != nil
}

// State is the display state shared by the root model and the tabs. The
// dashboard controller writes into it from fetch goroutines, so every field
// is guarded by mu and replaced as a whole.
type State struct {
	mu sync.RWMutex

	wardOptions   []models.Option
	doctorOptions []models.Option
	optionsSeq    int

	kpis   models.KPIView
	charts *charts.Registry

	loading map[string]bool
	refresh RefreshStatus

	notifications   []Notification
	notificationSeq int
}

// NewState creates an empty display state.
func NewState() *State {
	return &State{
		charts:        charts.NewRegistry(),
		loading:       map[string]bool{"initial": true},
		notifications: make([]Notification, 0),
	}
}

// SetFilterOptions replaces the ward and doctor selector options.
func (s *State) SetFilterOptions(wards, doctors []models.Option) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wardOptions = slices.Clone(wards)
	s.doctorOptions = slices.Clone(doctors)
	s.optionsSeq++
}

// FilterOptions returns copies of the selector options and a sequence number
// that changes whenever they are replaced.
func (s *State) FilterOptions() (wards, doctors []models.Option, seq int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.wardOptions), slices.Clone(s.doctorOptions), s.optionsSeq
}

// SetKPIs replaces the KPI panel.
func (s *State) SetKPIs(view models.KPIView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	view.Fields = slices.Clone(view.Fields)
	s.kpis = view
}

// KPIs returns the current KPI panel.
func (s *State) KPIs() models.KPIView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.kpis
	out.Fields = slices.Clone(s.kpis.Fields)
	return out
}

// RenderChart replaces the chart under id, destroying the previous one.
func (s *State) RenderChart(id string, cfg charts.Config) {
	s.charts.Ensure(id, cfg)
}

// Chart returns the live chart for id.
func (s *State) Chart(id string) (*charts.Chart, bool) {
	return s.charts.Get(id)
}

// Charts returns the chart registry.
func (s *State) Charts() *charts.Registry {
	return s.charts
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loading {
		s.loading[resource] = true
		return
	}
	delete(s.loading, resource)
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.loading) > 0
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading["initial"]
}

// GetLoadingResources returns the currently loading resources, sorted.
func (s *State) GetLoadingResources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resources := make([]string, 0, len(s.loading))
	for r := range s.loading {
		resources = append(resources, r)
	}
	slices.Sort(resources)
	return resources
}

// SetRefreshStatus records the outcome of a refresh cycle.
func (s *State) SetRefreshStatus(status RefreshStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status.Filters = status.Filters.Clone()
	s.refresh = status
}

// RefreshStatus returns the outcome of the last refresh cycle.
func (s *State) RefreshStatus() RefreshStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// GetLastUpdated returns the time of the last refresh cycle.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh.At
}

// TimeSinceUpdate returns the duration since the last refresh cycle.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.refresh.At.IsZero() {
		return 0
	}
	return time.Since(s.refresh.At)
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := fmt.Sprintf("%s-%d", time.Now().Format("20060102150405"), s.notificationSeq)

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = activeNotifications(s.notifications)
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return activeNotifications(s.notifications)
}

func activeNotifications(all []Notification) []Notification {
	active := make([]Notification, 0, len(all))
	for _, n := range all {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}
