package components

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
	"github.com/j-veylop/hospital-dashboard-tui/internal/ui/styles"
)

// DateField is an ISO date text control. Its value is free text; anything
// that does not parse reads as "no date".
type DateField struct {
	id       string
	label    string
	input    textinput.Model
	previous string
}

// NewDateField creates an empty date field.
func NewDateField(id, label string) DateField {
	ti := textinput.New()
	ti.Placeholder = "YYYY-MM-DD"
	ti.CharLimit = len(models.DateLayout)
	ti.Width = len(models.DateLayout) + 1
	ti.Prompt = ""

	return DateField{id: id, label: label, input: ti}
}

// ID returns the control identifier.
func (d DateField) ID() string { return d.id }

// Label returns the control caption.
func (d DateField) Label() string { return d.label }

// Value returns the raw text.
func (d DateField) Value() string {
	return d.input.Value()
}

// SetValue replaces the raw text.
func (d *DateField) SetValue(v string) {
	d.input.SetValue(v)
}

// SetDate sets the field to t, or clears it when t is nil.
func (d *DateField) SetDate(t *time.Time) {
	d.input.SetValue(models.FormatDate(t))
}

// Date returns the parsed date, or nil if the field is empty or malformed.
func (d DateField) Date() *time.Time {
	return models.ParseDate(d.input.Value())
}

// Valid reports whether the text is empty or a well-formed date.
func (d DateField) Valid() bool {
	return d.input.Value() == "" || d.Date() != nil
}

// Editing reports whether the field is capturing keystrokes.
func (d DateField) Editing() bool {
	return d.input.Focused()
}

// StartEditing focuses the text input.
func (d *DateField) StartEditing() tea.Cmd {
	d.previous = d.input.Value()
	d.input.CursorEnd()
	return d.input.Focus()
}

// StopEditing keeps the typed text and blurs the input.
func (d *DateField) StopEditing() {
	d.input.Blur()
}

// CancelEditing restores the text from before editing started.
func (d *DateField) CancelEditing() {
	d.input.SetValue(d.previous)
	d.input.Blur()
}

// Update forwards key presses to the text input while editing.
func (d DateField) Update(msg tea.Msg) (DateField, tea.Cmd) {
	if !d.Editing() {
		return d, nil
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return d, cmd
}

// View renders the field. Malformed text is shown in the error color.
func (d DateField) View(focused bool) string {
	value := d.input.View()
	if !d.Editing() && !d.Valid() {
		value = styles.ErrorTextStyle.Render(d.input.Value())
	}
	return controlLabel(d.label, focused) + value
}
