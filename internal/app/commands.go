package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
	"github.com/j-veylop/hospital-dashboard-tui/internal/services"
	"github.com/j-veylop/hospital-dashboard-tui/internal/services/dashboard"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadFilterOptionsCmd fills the ward and doctor selectors.
func loadFilterOptionsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return FilterOptionsLoadedMsg{Err: mgr.LoadFilterOptions(context.Background())}
	}
}

// applyFiltersCmd refreshes KPIs and charts for a snapshot of the filter
// controls. The snapshot must be taken on the UI goroutine.
func applyFiltersCmd(mgr *services.Manager, f models.FilterState, trigger string) tea.Cmd {
	f = f.Clone()
	return func() tea.Msg {
		start := time.Now()
		applied, err := mgr.ApplyFilters(context.Background(), dashboard.FilterSourceFunc(func() models.FilterState {
			return f
		}))
		return FiltersAppliedMsg{
			Trigger:  trigger,
			Filters:  applied,
			Started:  start,
			Duration: time.Since(start),
			Err:      err,
		}
	}
}

// toggleAutoRefreshCmd starts the refresh timer if it is stopped and stops
// it otherwise.
func toggleAutoRefreshCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		if mgr.AutoRefreshRunning() {
			mgr.StopAutoRefresh()
			return AutoRefreshToggledMsg{Running: false}
		}
		return AutoRefreshToggledMsg{Running: mgr.StartAutoRefresh()}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// Commands provides a public interface to the command functions for tabs.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// ApplyFilters asks the root model to read the controls and refresh.
func (c *Commands) ApplyFilters(trigger string) tea.Cmd {
	return func() tea.Msg {
		return ApplyFiltersMsg{Trigger: trigger}
	}
}

// ToggleAutoRefresh starts or stops the refresh timer.
func (c *Commands) ToggleAutoRefresh() tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return toggleAutoRefreshCmd(c.manager)
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// ClearNotification returns a command that removes a notification after a delay.
func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return clearNotificationCmd(id, delay)
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}
