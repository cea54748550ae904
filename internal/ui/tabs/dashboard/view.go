package dashboard

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/hospital-dashboard-tui/internal/charts"
	"github.com/j-veylop/hospital-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/hospital-dashboard-tui/internal/ui/styles"
)

const (
	chartHeight     = 12
	sideBySideWidth = 110
	minContentWidth = 40
	cardChromeWidth = 4
)

// View renders the dashboard component.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}

	width := max(m.width-2, minContentWidth)

	sections := []string{
		m.renderTitle(),
		m.renderFilterPanel(width),
		"",
		m.renderOccupancy(width),
		components.RenderKPICards(m.state.KPIs(), width),
		m.renderCharts(width),
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderLoading renders the loading state.
func (m *Model) renderLoading() string {
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
}

// renderTitle renders the dashboard title and refresh status.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Hospital Dashboard")

	status := m.state.RefreshStatus()
	var subtitle string
	switch {
	case status.At.IsZero():
		subtitle = styles.HelpStyle.Render("Not refreshed yet")
	default:
		subtitle = styles.HelpStyle.Render(fmt.Sprintf("Updated %s (%s, %s)",
			status.At.Format(time.TimeOnly), status.Trigger, status.Duration.Round(time.Millisecond)))
	}

	lines := []string{title, subtitle}
	if status.Failed() {
		lines = append(lines, styles.ErrorTextStyle.Render("last refresh failed: "+status.Err.Error()))
	}
	lines = append(lines, "")

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderFilterPanel(width int) string {
	inner := width - cardChromeWidth
	focused := m.Focused()

	apply := styles.ButtonInactiveStyle.Render("Apply")
	if focused == ApplyButtonID {
		apply = styles.ButtonActiveStyle.Render("Apply")
	}

	rows := []string{
		styles.CardTitleStyle.Render("Filters"),
		lipgloss.JoinHorizontal(lipgloss.Top,
			m.startDate.View(focused == StartDateID), "   ",
			m.endDate.View(focused == EndDateID),
		),
		m.wards.View(focused == WardSelectID, inner),
		m.doctors.View(focused == DoctorSelectID, inner),
		m.status.View(focused == StatusSelectID),
		m.granularity.View(focused == GranularityToggleID),
		apply,
	}

	border := styles.BlurredBorderStyle
	if m.CapturingInput() {
		border = styles.FocusedBorderStyle
	}
	return border.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderOccupancy(width int) string {
	kpis := m.state.KPIs()
	if len(kpis.Fields) == 0 {
		return ""
	}
	return m.occupancyBar.View(m.displayedOccupancy(), "Bed occupancy", width)
}

func (m *Model) renderCharts(width int) string {
	admissions := m.renderChartCard(charts.AdmissionsChartID, "Admissions", width)

	if width >= sideBySideWidth {
		half := width / 2
		return lipgloss.JoinVertical(lipgloss.Left,
			admissions,
			lipgloss.JoinHorizontal(lipgloss.Top,
				m.renderChartCard(charts.WardsChartID, "Ward occupancy (%)", half),
				m.renderChartCard(charts.DoctorsChartID, "Doctors", width-half),
			),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		admissions,
		m.renderChartCard(charts.WardsChartID, "Ward occupancy (%)", width),
		m.renderChartCard(charts.DoctorsChartID, "Doctors", width),
	)
}

// renderChartCard draws the live chart registered under id, or an empty
// card when no refresh has produced it yet.
func (m *Model) renderChartCard(id, title string, width int) string {
	inner := width - cardChromeWidth

	chart, ok := m.state.Chart(id)
	if !ok || chart.Destroyed() {
		body := lipgloss.JoinVertical(lipgloss.Left,
			styles.CardTitleStyle.Render(title),
			styles.HelpStyle.Render(components.NoData),
		)
		return styles.CardStyle.Width(width - 2).Render(body)
	}

	return styles.CardStyle.Width(width - 2).Render(components.RenderChart(chart.Config(), inner, chartHeight))
}
