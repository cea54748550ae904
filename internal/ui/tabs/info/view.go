package info

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
	"github.com/j-veylop/hospital-dashboard-tui/internal/ui/styles"
	"github.com/j-veylop/hospital-dashboard-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderPresetsCard(),
		m.renderAboutCard(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration, presets and build information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 80)
}

func (m *Model) renderConfigCard() string {
	rows := []string{styles.CardTitleStyle.Render("Configuration"), ""}

	if m.services == nil {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	} else {
		cfg := m.services.Config()
		alert := "disabled"
		if cfg.AlertsEnabled() {
			alert = models.FormatPercent(cfg.OccupancyAlertThreshold)
		}
		logFile := cfg.LogFile
		if logFile == "" {
			logFile = "(none)"
		}
		refresh := cfg.AutoRefreshInterval.String() + " (stopped)"
		if m.autoRefresh {
			refresh = cfg.AutoRefreshInterval.String() + " (running)"
		}

		rows = append(rows,
			m.renderConfigRow("Backend", m.services.BackendURL()),
			m.renderConfigRow("Auto Refresh", refresh),
			m.renderConfigRow("Database", m.services.Database().Path()),
			m.renderConfigRow("Snapshots", strconv.Itoa(m.snapshots)+" stored"),
			m.renderConfigRow("Presets File", m.services.PresetsPath()),
			m.renderConfigRow("Occupancy Alert", alert),
			m.renderConfigRow("Log File", logFile),
			m.renderConfigRow("Log Level", cfg.LogLevel),
		)
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderPresetsCard() string {
	rows := []string{styles.CardTitleStyle.Render("Presets"), ""}

	if m.presets == nil {
		rows = append(rows, styles.HelpStyle.Render("No presets loaded"))
	} else {
		p := m.presets.Normalize()
		dateRange := "no default dates"
		if p.RangeDays > 0 {
			dateRange = "last " + strconv.Itoa(p.RangeDays) + " days"
		}
		rows = append(rows,
			m.renderConfigRow("Range", dateRange),
			m.renderConfigRow("Status", p.Status.Label()),
			m.renderConfigRow("Granularity", string(p.Granularity)),
			"",
			styles.HelpStyle.Render("Edits to the presets file reset the filters and refresh."),
		)
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About Hospital Dashboard TUI"),
		"",
		m.renderConfigRow("Version", version.GetVersion()),
		m.renderConfigRow("Build Date", version.GetDate()),
		m.renderConfigRow("Git Commit", version.GetCommit()),
		m.renderConfigRow("Go Version", runtime.Version()),
		m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
