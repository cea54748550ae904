package app

import (
	"time"

	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
	"github.com/j-veylop/hospital-dashboard-tui/internal/services"
)

// Refresh triggers.
const (
	TriggerInit    = "init"
	TriggerApply   = "apply"
	TriggerTimer   = "timer"
	TriggerPresets = "presets"
	TriggerManual  = "manual"
)

// TickMsg is sent periodically to expire notifications.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// FilterOptionsLoadedMsg reports the outcome of the ward and doctor option load.
type FilterOptionsLoadedMsg struct {
	Err error
}

// ApplyFiltersMsg asks the root model to read the filter controls and
// refresh the dashboard.
type ApplyFiltersMsg struct {
	Trigger string
}

// FiltersAppliedMsg reports the end of a refresh cycle.
type FiltersAppliedMsg struct {
	Trigger  string
	Filters  models.FilterState
	Started  time.Time
	Duration time.Duration
	Err      error
}

// PresetsChangedMsg carries presets that were edited on disk.
type PresetsChangedMsg struct {
	Presets models.Presets
}

// SnapshotRecordedMsg signals that a KPI snapshot was stored.
type SnapshotRecordedMsg struct {
	Snapshot models.KPISnapshot
}

// OccupancyAlertMsg signals that occupancy crossed the alert threshold.
type OccupancyAlertMsg struct {
	Occupancy float64
	Threshold float64
}

// AutoRefreshToggledMsg reports the auto refresh timer state after a toggle.
type AutoRefreshToggledMsg struct {
	Running bool
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
