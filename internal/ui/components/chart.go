// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/hospital-dashboard-tui/internal/charts"
	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
	"github.com/j-veylop/hospital-dashboard-tui/internal/ui/styles"
)

// NoData is shown in place of a chart with nothing to draw.
const NoData = "No data available"

const maxBarLabelWidth = 18

// seriesColors maps dataset positions to colors.
var seriesColors = []lipgloss.Color{styles.SeriesPrimary, styles.SeriesSecondary}

func seriesColor(i int) lipgloss.Color {
	return seriesColors[i%len(seriesColors)]
}

// RenderChart draws a chart configuration into a width x height box.
func RenderChart(cfg charts.Config, width, height int) string {
	title := styles.CardTitleStyle.Render(cfg.Title)

	var body string
	switch {
	case cfg.Empty():
		body = styles.HelpStyle.Render(NoData)
	case cfg.Type == charts.Line:
		body = renderLine(cfg, width, height-1)
	case cfg.Type == charts.Bar:
		body = renderBars(cfg, width)
	case cfg.Type == charts.GroupedBar:
		body = renderGroupedBars(cfg, width)
	default:
		body = styles.ErrorTextStyle.Render(fmt.Sprintf("unsupported chart type %s", cfg.Type))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}

func renderLine(cfg charts.Config, width, height int) string {
	data := cfg.Datasets[0].Values
	plot := RenderLineChart(data, width-8, height-1, "", cfg.YMin, cfg.YMax)

	if len(cfg.Labels) == 0 {
		return plot
	}
	first, last := cfg.Labels[0], cfg.Labels[len(cfg.Labels)-1]
	axis := first
	if last != first {
		gap := max(1, lipgloss.Width(plot)-len(first)-len(last))
		axis = first + strings.Repeat(" ", gap) + last
	}
	return plot + "\n" + styles.HelpStyle.Render(axis)
}

// RenderLineChart creates a single-series ASCII line chart. Nil bounds are
// derived from the data.
func RenderLineChart(data []float64, width, height int, caption string, lower, upper *float64) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render(NoData)
	}

	width = max(width, 20)
	height = max(height, 3)

	if len(data) == 1 {
		data = []float64{data[0], data[0]}
	}

	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(1),
		asciigraph.SeriesColors(asciigraph.Blue),
	}
	if caption != "" {
		opts = append(opts, asciigraph.Caption(caption))
	}
	if lower != nil {
		opts = append(opts, asciigraph.LowerBound(*lower))
	}
	if upper != nil {
		opts = append(opts, asciigraph.UpperBound(*upper))
	}

	return asciigraph.Plot(data, opts...)
}

func barScale(cfg charts.Config) float64 {
	if cfg.YMax != nil && *cfg.YMax > 0 {
		return *cfg.YMax
	}
	maxVal := 0.0
	for _, ds := range cfg.Datasets {
		for _, v := range ds.Values {
			maxVal = max(maxVal, v)
		}
	}
	if maxVal == 0 {
		return 1
	}
	return maxVal
}

func barLabels(labels []string, n int) ([]string, int) {
	out := make([]string, n)
	widest := 0
	for i := range n {
		if i < len(labels) {
			out[i] = ansi.Truncate(labels[i], maxBarLabelWidth, "…")
		}
		widest = max(widest, lipgloss.Width(out[i]))
	}
	return out, widest
}

func bar(v, scale float64, width int, color lipgloss.Color) string {
	n := int((v / scale) * float64(width))
	n = max(0, min(n, width))
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", n))
}

func renderBars(cfg charts.Config, width int) string {
	values := cfg.Datasets[0].Values
	return RenderBarChart(values, cfg.Labels, width, barScale(cfg))
}

// RenderBarChart creates a horizontal bar chart scaled so that scale fills
// the available width. A non-positive scale uses the largest value.
func RenderBarChart(values []float64, labels []string, width int, scale float64) string {
	if len(values) == 0 {
		return ""
	}
	if scale <= 0 {
		scale = barScale(charts.Config{Datasets: []charts.Dataset{{Values: values}}})
	}

	names, labelWidth := barLabels(labels, len(values))
	barWidth := max(10, width-labelWidth-10)

	var lines []string
	for i, v := range values {
		label := fmt.Sprintf("%*s", labelWidth, names[i])
		line := label + " │" + bar(v, scale, barWidth, seriesColor(0)) + " " + models.FormatNumber(v)
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func renderGroupedBars(cfg charts.Config, width int) string {
	names, labelWidth := barLabels(cfg.Labels, len(cfg.Labels))
	scale := barScale(cfg)
	groupWidth := max(4, (width-labelWidth-4)/(2*max(1, len(cfg.Datasets))))

	legend := make([]LegendItem, len(cfg.Datasets))
	for i, ds := range cfg.Datasets {
		legend[i] = LegendItem{Label: ds.Label, Color: seriesColor(i)}
	}

	lines := []string{RenderLegend(legend)}
	for row, name := range names {
		var cells []string
		for i, ds := range cfg.Datasets {
			v := 0.0
			if row < len(ds.Values) {
				v = ds.Values[row]
			}
			cell := bar(v, scale, groupWidth, seriesColor(i))
			cells = append(cells, cell+strings.Repeat(" ", groupWidth-lipgloss.Width(cell)))
		}
		lines = append(lines, fmt.Sprintf("%*s │%s", labelWidth, name, strings.Join(cells, " ")))
	}
	return strings.Join(lines, "\n")
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Sample values to fit width
	var result strings.Builder
	step := max(1, float64(len(values))/float64(width))

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		normalized := int((val / maxVal) * float64(len(sparkChars)-1))
		normalized = max(0, min(normalized, len(sparkChars)-1))
		result.WriteRune(sparkChars[normalized])
	}

	return result.String()
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	var parts []string
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}
