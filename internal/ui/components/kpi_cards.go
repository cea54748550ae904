package components

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
	"github.com/j-veylop/hospital-dashboard-tui/internal/ui/styles"
)

const (
	kpiCardMinWidth = 20
	kpiPlaceholder  = "-"
)

// RenderKPICards lays the KPI fields out as a grid of small cards that wraps
// to fit width. Fields with no value yet show a placeholder.
func RenderKPICards(view models.KPIView, width int) string {
	fields := view.Fields
	if len(fields) == 0 {
		fields = placeholderFields()
	}

	perRow := max(1, width/(kpiCardMinWidth+2))
	cardWidth := max(kpiCardMinWidth, width/perRow-2)

	var rows []string
	for start := 0; start < len(fields); start += perRow {
		end := min(start+perRow, len(fields))
		cards := make([]string, 0, end-start)
		for _, f := range fields[start:end] {
			cards = append(cards, renderKPICard(f, view.Occupancy, cardWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderKPICard(f models.KPIField, occupancy float64, width int) string {
	value := f.Value
	if value == "" {
		value = kpiPlaceholder
	}

	valueStyle := styles.KPIValueStyle
	if f.ID == models.KPIOccupancy && f.Value != "" {
		valueStyle = styles.GetOccupancyStyle(occupancy).Bold(true)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.KPILabelStyle.Render(f.Label),
		valueStyle.Render(value),
	)
	return styles.CardStyle.Width(width).Render(content)
}

// placeholderFields is the layout shown before the first refresh completes.
func placeholderFields() []models.KPIField {
	empty := models.NewKPIView(models.KPISummary{}, time.Time{})
	for i := range empty.Fields {
		empty.Fields[i].Value = ""
	}
	return empty.Fields
}
