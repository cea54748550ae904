package components

import (
	"slices"
	"strings"

	"github.com/j-veylop/hospital-dashboard-tui/internal/ui/styles"
)

// Choice is a single-select control cycling through a fixed set of values.
type Choice struct {
	id     string
	label  string
	values []string
	labels []string
	index  int
}

// NewChoice creates a choice over values. labels may be nil, in which case
// the values are displayed as-is.
func NewChoice(id, label string, values, labels []string) Choice {
	if len(labels) != len(values) {
		labels = values
	}
	return Choice{
		id:     id,
		label:  label,
		values: slices.Clone(values),
		labels: slices.Clone(labels),
	}
}

// ID returns the control identifier.
func (c Choice) ID() string { return c.id }

// Label returns the control caption.
func (c Choice) Label() string { return c.label }

// Value returns the current value, or "" for an empty choice.
func (c Choice) Value() string {
	if len(c.values) == 0 {
		return ""
	}
	return c.values[c.index]
}

// SetValue selects v. It reports false and leaves the selection alone when v
// is not one of the values.
func (c *Choice) SetValue(v string) bool {
	idx := slices.Index(c.values, v)
	if idx < 0 {
		return false
	}
	c.index = idx
	return true
}

// Reset selects the first value.
func (c *Choice) Reset() {
	c.index = 0
}

// Next selects the following value, wrapping around.
func (c *Choice) Next() {
	if len(c.values) > 0 {
		c.index = (c.index + 1) % len(c.values)
	}
}

// Prev selects the preceding value, wrapping around.
func (c *Choice) Prev() {
	if len(c.values) > 0 {
		c.index = (c.index - 1 + len(c.values)) % len(c.values)
	}
}

// View renders every value with the current one highlighted.
func (c Choice) View(focused bool) string {
	parts := make([]string, len(c.labels))
	for i, l := range c.labels {
		switch {
		case i == c.index && focused:
			parts[i] = styles.ButtonActiveStyle.Render(l)
		case i == c.index:
			parts[i] = styles.ButtonInactiveStyle.Bold(true).Foreground(styles.TextPrimary).Render(l)
		default:
			parts[i] = styles.ButtonInactiveStyle.Render(l)
		}
	}
	return controlLabel(c.label, focused) + strings.Join(parts, "")
}

const controlLabelWidth = 14

// controlLabel renders a fixed-width caption with a focus marker.
func controlLabel(label string, focused bool) string {
	if focused {
		return styles.FocusedStyle.Width(controlLabelWidth).Render("▸ " + label)
	}
	return styles.BlurredStyle.Width(controlLabelWidth).Render("  " + label)
}
