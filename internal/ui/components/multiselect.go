package components

import (
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
	"github.com/j-veylop/hospital-dashboard-tui/internal/ui/styles"
)

// MultiSelect is a list of options of which any subset can be selected.
type MultiSelect struct {
	id       string
	label    string
	options  []models.Option
	selected map[int]bool
	cursor   int
}

// NewMultiSelect creates an empty selector.
func NewMultiSelect(id, label string) MultiSelect {
	return MultiSelect{id: id, label: label, selected: make(map[int]bool)}
}

// ID returns the control identifier.
func (m MultiSelect) ID() string { return m.id }

// Label returns the control caption.
func (m MultiSelect) Label() string { return m.label }

// Options returns the current options.
func (m MultiSelect) Options() []models.Option {
	return slices.Clone(m.options)
}

// SetOptions replaces every option. The selection is cleared.
func (m *MultiSelect) SetOptions(opts []models.Option) {
	m.options = slices.Clone(opts)
	m.selected = make(map[int]bool)
	m.cursor = 0
}

// Selected returns the selected values in option order, or nil if none.
func (m MultiSelect) Selected() []int {
	var out []int
	for _, o := range m.options {
		if m.selected[o.Value] {
			out = append(out, o.Value)
		}
	}
	return out
}

// SetSelected selects exactly the given values. Unknown values are ignored.
func (m *MultiSelect) SetSelected(values []int) {
	m.selected = make(map[int]bool)
	for _, o := range m.options {
		if slices.Contains(values, o.Value) {
			m.selected[o.Value] = true
		}
	}
}

// Cursor returns the index of the highlighted option.
func (m MultiSelect) Cursor() int { return m.cursor }

// Next moves the highlight right, wrapping around.
func (m *MultiSelect) Next() {
	if len(m.options) > 0 {
		m.cursor = (m.cursor + 1) % len(m.options)
	}
}

// Prev moves the highlight left, wrapping around.
func (m *MultiSelect) Prev() {
	if len(m.options) > 0 {
		m.cursor = (m.cursor - 1 + len(m.options)) % len(m.options)
	}
}

// Toggle flips the highlighted option.
func (m *MultiSelect) Toggle() {
	if m.cursor >= len(m.options) {
		return
	}
	v := m.options[m.cursor].Value
	if m.selected[v] {
		delete(m.selected, v)
	} else {
		m.selected[v] = true
	}
}

// Clear deselects everything.
func (m *MultiSelect) Clear() {
	m.selected = make(map[int]bool)
}

// View renders the options on one line, truncated to width. When focused,
// the visible window follows the cursor.
func (m MultiSelect) View(focused bool, width int) string {
	label := controlLabel(m.label, focused)
	if len(m.options) == 0 {
		return label + styles.HelpStyle.Render("(no options)")
	}

	items := make([]string, len(m.options))
	for i, o := range m.options {
		box := "[ ]"
		if m.selected[o.Value] {
			box = "[x]"
		}
		item := box + " " + o.Label
		if focused && i == m.cursor {
			item = styles.FocusedStyle.Render(item)
		}
		items[i] = item
	}

	start := 0
	if focused {
		start = m.windowStart(width - lipgloss.Width(label))
	}
	line := strings.Join(items[start:], "  ")
	if start > 0 {
		line = "… " + line
	}

	avail := max(1, width-lipgloss.Width(label))
	return label + ansi.Truncate(line, avail, "…")
}

// windowStart returns the first option index such that the cursor fits in
// avail columns.
func (m MultiSelect) windowStart(avail int) int {
	used := 0
	for i := m.cursor; i >= 0; i-- {
		used += lipgloss.Width(m.options[i].Label) + 6
		if used > avail {
			return min(i+1, m.cursor)
		}
	}
	return 0
}

// Summary describes the selection in a few words, e.g. "all" or "2 selected".
func (m MultiSelect) Summary() string {
	n := len(m.Selected())
	switch n {
	case 0:
		return "all"
	case 1:
		for _, o := range m.options {
			if m.selected[o.Value] {
				return o.Label
			}
		}
	}
	return strconv.Itoa(n) + " selected"
}
