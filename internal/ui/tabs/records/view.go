package records

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
	"github.com/j-veylop/hospital-dashboard-tui/internal/ui/styles"
)

// View renders the records tab.
func (m *Model) View() string {
	var body string
	switch {
	case m.errorMsg != "" && !m.loaded:
		body = styles.ErrorTextStyle.Render("Error: ") + m.errorMsg
	case m.loading && !m.loaded:
		body = styles.HelpStyle.Render(fmt.Sprintf("Loading %s...", m.kind))
	case !m.loaded:
		body = styles.HelpStyle.Render("No rows loaded yet. Apply the filters on the dashboard.")
	case len(m.records) == 0:
		body = styles.HelpStyle.Render(fmt.Sprintf("No %s match the current filters.", m.kind))
	default:
		body = m.table.View()
	}

	content := lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), "", body)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader() string {
	patients := styles.ButtonInactiveStyle.Render("Patients")
	admissions := styles.ButtonInactiveStyle.Render("Admissions")
	if m.kind == Patients {
		patients = styles.ButtonActiveStyle.Render("Patients")
	} else {
		admissions = styles.ButtonActiveStyle.Render("Admissions")
	}

	summary := styles.HelpStyle.Render(m.summary())
	return lipgloss.JoinHorizontal(lipgloss.Center, patients, admissions, "  ", summary)
}

func (m *Model) summary() string {
	if !m.loaded {
		return ""
	}
	text := fmt.Sprintf("%d rows", len(m.records))
	if len(m.columns) > 0 && len(m.table.Columns()) < len(m.columns) {
		text += fmt.Sprintf(", %d of %d columns", len(m.table.Columns()), len(m.columns))
	}
	if from, to := models.FormatDate(m.filters.Start), models.FormatDate(m.filters.End); from != "" || to != "" {
		text += fmt.Sprintf(" · %s → %s", orDash(from), orDash(to))
	}
	if m.filters.Status != "" && m.filters.Status != models.StatusAll {
		text += " · " + m.filters.Status.Label()
	}
	if m.errorMsg != "" {
		text += " · " + styles.ErrorTextStyle.Render("reload failed")
	}
	return text
}

func orDash(s string) string {
	if s == "" {
		return "…"
	}
	return s
}
