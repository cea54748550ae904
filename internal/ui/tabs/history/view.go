package history

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
	"github.com/j-veylop/hospital-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/hospital-dashboard-tui/internal/ui/styles"
)

const latestRows = 10

var (
	occupancyLower = 0.0
	occupancyUpper = 100.0
)

// View renders the history tab.
func (m *Model) View() string {
	if m.loading && m.historyData == nil {
		return m.renderLoading()
	}
	if m.errorMsg != "" {
		return m.renderError()
	}
	if m.historyData == nil || !m.historyData.HasData() {
		return m.renderEmpty()
	}

	sections := []string{
		m.renderHeader(),
		m.renderTrendChart(),
		m.renderPatterns(),
		m.renderLatest(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading history data..."))
}

func (m *Model) renderError() string {
	content := fmt.Sprintf("%s %s",
		styles.ErrorTextStyle.Render("Error:"),
		m.errorMsg,
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderRangeHeader(),
		"",
		styles.HelpStyle.Render("No KPI snapshots recorded in this range yet."),
		styles.HelpStyle.Render("Every refresh without ward, doctor or status filters stores one."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderRangeHeader() string {
	title := styles.TitleStyle.Render("Occupancy History")

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)

	rangeIndicator := rangeStyle.Render(fmt.Sprintf("[w] %s", m.timeRange.String()))

	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator)
}

func (m *Model) renderHeader() string {
	h := m.historyData
	dataRange := fmt.Sprintf("Data: %s → %s (%d snapshots)",
		h.FirstDataPoint.Local().Format("Jan 2 15:04"),
		h.LastDataPoint.Local().Format("Jan 2 15:04"),
		len(h.Snapshots),
	)
	return lipgloss.JoinVertical(lipgloss.Left, m.renderRangeHeader(), styles.HelpStyle.Render(dataRange), "")
}

func (m *Model) renderTrendChart() string {
	cardWidth := max(m.width-6, 40)
	h := m.historyData

	rows := []string{styles.CardTitleStyle.Render("Bed occupancy (%)"), ""}

	chartWidth := max(cardWidth-12, 30)
	chart := components.RenderLineChart(h.Occupancy(), chartWidth, 8, "", &occupancyLower, &occupancyUpper)
	for line := range strings.SplitSeq(chart, "\n") {
		rows = append(rows, "  "+line)
	}

	rows = append(rows, "",
		fmt.Sprintf("  min %s  avg %s  max %s",
			styles.GetOccupancyStyle(h.MinOccupancy).Render(models.FormatPercent(round1(h.MinOccupancy))),
			styles.GetOccupancyStyle(h.AvgOccupancy).Render(models.FormatPercent(round1(h.AvgOccupancy))),
			styles.GetOccupancyStyle(h.MaxOccupancy).Render(models.FormatPercent(round1(h.MaxOccupancy))),
		),
	)

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderPatterns() string {
	cardWidth := max(m.width-6, 40)
	h := m.historyData

	rows := []string{styles.CardTitleStyle.Render("Weekly Pattern"), ""}

	values := make([]float64, len(h.WeekdayPatterns))
	labels := make([]string, len(h.WeekdayPatterns))
	for i, w := range h.WeekdayPatterns {
		values[i] = round1(w.AvgOccupancy)
		labels[i] = w.DayName[:3]
	}
	for line := range strings.SplitSeq(components.RenderBarChart(values, labels, max(cardWidth-12, 30), occupancyUpper), "\n") {
		rows = append(rows, "  "+line)
	}

	peakHour, hourVal := h.GetPeakHour()
	peakDay, dayVal := h.GetPeakDay()
	peak := lipgloss.NewStyle().Bold(true).Foreground(styles.Primary)
	rows = append(rows, "",
		fmt.Sprintf("  Peak hour: %s (avg %.1f%%)",
			peak.Render(fmt.Sprintf("%02d:00-%02d:00", peakHour, (peakHour+1)%24)), hourVal),
		fmt.Sprintf("  Peak day: %s (avg %.1f%%)", peak.Render(peakDay), dayVal),
	)

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderLatest() string {
	cardWidth := max(m.width-6, 40)
	snaps := m.historyData.Snapshots

	header := fmt.Sprintf("%-12s %-22s %6s %7s %6s %6s %8s",
		"Recorded", "Occupancy", "Beds", "Active", "LOS", "Docs", "Status")
	rows := []string{
		styles.CardTitleStyle.Render("Latest snapshots"),
		"",
		styles.TableHeaderStyle.Render(header),
	}

	active := make([]float64, len(snaps))
	for i, s := range snaps {
		active[i] = float64(s.ActiveAdmissions)
	}

	for i := len(snaps) - 1; i >= 0 && i >= len(snaps)-latestRows; i-- {
		s := snaps[i]
		occ := components.RenderGradientBar(s.OccupancyRate, 14) + " " +
			styles.GetOccupancyStyle(s.OccupancyRate).Render(fmt.Sprintf("%6s", models.FormatPercent(round1(s.OccupancyRate))))
		rows = append(rows, fmt.Sprintf("%-12s %s %6s %7d %6s %6d %8s",
			s.RecordedAt.Local().Format("Jan 2 15:04"),
			occ,
			fmt.Sprintf("%d/%d", s.OccupiedBeds, s.TotalBeds),
			s.ActiveAdmissions,
			models.FormatDays(round1(s.AvgLengthOfStayDays)),
			s.DoctorsPresent,
			s.Status.Label(),
		))
	}

	rows = append(rows, "",
		"  Active admissions "+lipgloss.NewStyle().Foreground(styles.Primary).Render(
			components.RenderSparkline(active, max(cardWidth-24, 10))),
	)

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
