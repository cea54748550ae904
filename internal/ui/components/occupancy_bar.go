package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/hospital-dashboard-tui/internal/logger"
	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
	"github.com/j-veylop/hospital-dashboard-tui/internal/ui/styles"
)

// Occupancy gradient, low to high.
const (
	occupancyLowColor  = "#51cf66"
	occupancyHighColor = "#ff6b6b"
)

// OccupancyBar renders bed occupancy as a progress bar that turns from
// green to red as beds fill up.
type OccupancyBar struct {
	progress progress.Model
}

// NewOccupancyBar creates a new occupancy bar with gradient colors.
func NewOccupancyBar() OccupancyBar {
	return OccupancyBar{
		progress: progress.New(
			progress.WithScaledGradient(occupancyLowColor, occupancyHighColor),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
	}
}

// SetWidth sets the progress bar width.
func (o *OccupancyBar) SetWidth(width int) {
	o.progress.Width = width
}

// View renders the bar with a label and the occupancy value.
func (o OccupancyBar) View(percent float64, label string, width int) string {
	o.progress.Width = max(10, width-30)

	bar := o.progress.ViewAs(clampPercent(percent) / 100)

	percentStr := styles.GetOccupancyStyle(percent).
		Width(7).
		Align(lipgloss.Right).
		Render(models.FormatPercent(percent))

	labelStr := styles.ProgressLabelStyle.Render(label)

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, " ", percentStr)
}

// ViewCompact renders the bar and value without a label.
func (o OccupancyBar) ViewCompact(percent float64, width int) string {
	o.progress.Width = max(5, width-8)

	bar := o.progress.ViewAs(clampPercent(percent) / 100)
	percentStr := styles.GetOccupancyStyle(percent).Render(models.FormatPercent(percent))

	return lipgloss.JoinHorizontal(lipgloss.Center, bar, " ", percentStr)
}

func clampPercent(p float64) float64 {
	return max(0, min(p, 100))
}

// RenderGradientBar renders a plain character bar for table cells, where a
// progress model would be too heavy.
func RenderGradientBar(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * clampPercent(percent) / 100)

	var b strings.Builder
	for i := range width {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor(occupancyLowColor, occupancyHighColor, t)
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Subtle).Render("░"))
		}
	}

	return b.String()
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
