// Package dashboard provides the main dashboard tab: the filter panel, the
// KPI cards and the three charts.
package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/hospital-dashboard-tui/internal/app"
	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
	"github.com/j-veylop/hospital-dashboard-tui/internal/ui/components"
)

// Filter control identifiers, in focus order.
const (
	StartDateID         = "startDate"
	EndDateID           = "endDate"
	WardSelectID        = "wardSelect"
	DoctorSelectID      = "doctorSelect"
	StatusSelectID      = "statusSelect"
	GranularityToggleID = "granularityToggle"
	ApplyButtonID       = "applyBtn"
)

var controlOrder = []string{
	StartDateID,
	EndDateID,
	WardSelectID,
	DoctorSelectID,
	StatusSelectID,
	GranularityToggleID,
	ApplyButtonID,
}

type animationTickMsg time.Time

func animationTickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*40, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// keyMap defines the key bindings specific to the dashboard tab.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Toggle   key.Binding
	Enter    key.Binding
	Apply    key.Binding
	Clear    key.Binding
	Cancel   key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

// defaultKeyMap returns the default key bindings for the dashboard tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "prev control"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "next control"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("←/h", "prev value"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("→/l", "next value"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit/apply"),
		),
		Apply: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "apply filters"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear control"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel edit"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
	}
}

// AnimationState tracks the occupancy bar easing toward its latest value.
type AnimationState struct {
	StartTime      time.Time
	CurrentPercent float64
	TargetPercent  float64
	StartPercent   float64
}

const animationDuration = 1.5

// Model represents the dashboard tab state.
type Model struct {
	state        *app.State
	commands     *app.Commands
	spinner      components.LoadingSpinner
	keys         keyMap
	viewport     viewport.Model
	occupancyBar components.OccupancyBar
	occupancy    *AnimationState

	startDate   components.DateField
	endDate     components.DateField
	wards       components.MultiSelect
	doctors     components.MultiSelect
	status      components.Choice
	granularity components.Choice
	focus       int

	width  int
	height int
}

// New creates a new dashboard model.
func New(state *app.State) *Model {
	statuses := make([]string, len(models.Statuses))
	statusLabels := make([]string, len(models.Statuses))
	for i, s := range models.Statuses {
		statuses[i] = string(s)
		statusLabels[i] = s.Label()
	}
	granularities := make([]string, len(models.Granularities))
	for i, g := range models.Granularities {
		granularities[i] = string(g)
	}

	return &Model{
		state:        state,
		commands:     app.NewCommands(nil),
		spinner:      components.NewSpinner("Loading dashboard..."),
		keys:         defaultKeyMap(),
		viewport:     viewport.New(0, 0),
		occupancyBar: components.NewOccupancyBar(),
		startDate:    components.NewDateField(StartDateID, "From"),
		endDate:      components.NewDateField(EndDateID, "To"),
		wards:        components.NewMultiSelect(WardSelectID, "Wards"),
		doctors:      components.NewMultiSelect(DoctorSelectID, "Doctors"),
		status:       components.NewChoice(StatusSelectID, "Status", statuses, statusLabels),
		granularity:  components.NewChoice(GranularityToggleID, "Granularity", granularities, nil),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Filters returns the current control values. Malformed dates read as unset.
func (m *Model) Filters() models.FilterState {
	return models.FilterState{
		Start:       m.startDate.Date(),
		End:         m.endDate.Date(),
		WardIDs:     m.wards.Selected(),
		DoctorIDs:   m.doctors.Selected(),
		Status:      models.ParseStatus(m.status.Value()),
		Granularity: models.ParseGranularity(m.granularity.Value()),
	}
}

// SetOptions replaces the ward and doctor selector options.
func (m *Model) SetOptions(wards, doctors []models.Option) {
	m.wards.SetOptions(wards)
	m.doctors.SetOptions(doctors)
}

// ApplyPresets seeds the date range, status and granularity controls.
func (m *Model) ApplyPresets(p models.Presets, now time.Time) {
	p = p.Normalize()
	start, end := p.DateRange(now)
	m.startDate.SetDate(start)
	m.endDate.SetDate(end)
	m.status.SetValue(string(p.Status))
	m.granularity.SetValue(string(p.Granularity))
}

// CapturingInput reports whether a date field is being edited.
func (m *Model) CapturingInput() bool {
	return m.startDate.Editing() || m.endDate.Editing()
}

// Focused returns the identifier of the focused control.
func (m *Model) Focused() string {
	return controlOrder[m.focus]
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case animationTickMsg:
		cmds = append(cmds, m.handleAnimationTick(time.Time(msg)))

	case app.FiltersAppliedMsg:
		if msg.Err == nil && m.syncOccupancyTarget(time.Now()) {
			cmds = append(cmds, animationTickCmd())
		}

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAnimationTick(now time.Time) tea.Cmd {
	m.syncOccupancyTarget(now)
	if m.stepAnimation(now) {
		return animationTickCmd()
	}
	return nil
}

// syncOccupancyTarget points the animation at the latest KPI occupancy and
// reports whether the bar still has to move.
func (m *Model) syncOccupancyTarget(now time.Time) bool {
	target := m.state.KPIs().Occupancy

	if m.occupancy == nil {
		m.occupancy = &AnimationState{StartTime: now}
	}
	a := m.occupancy
	if target != a.TargetPercent {
		a.StartPercent = a.CurrentPercent
		a.TargetPercent = target
		a.StartTime = now
	}
	return a.CurrentPercent != a.TargetPercent
}

func (m *Model) stepAnimation(now time.Time) bool {
	a := m.occupancy
	if a == nil || a.CurrentPercent == a.TargetPercent {
		return false
	}

	elapsed := now.Sub(a.StartTime).Seconds()
	if elapsed >= animationDuration {
		a.CurrentPercent = a.TargetPercent
		return false
	}

	progress := elapsed / animationDuration
	ease := 1.0 - (1.0-progress)*(1.0-progress)
	a.CurrentPercent = a.StartPercent + (a.TargetPercent-a.StartPercent)*ease
	return true
}

// displayedOccupancy is the value the bar currently shows.
func (m *Model) displayedOccupancy() float64 {
	if m.occupancy == nil {
		return m.state.KPIs().Occupancy
	}
	return m.occupancy.CurrentPercent
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if m.CapturingInput() {
		return m.handleEditingKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		m.focus = (m.focus + 1) % len(controlOrder)
	case key.Matches(msg, m.keys.Up):
		m.focus = (m.focus - 1 + len(controlOrder)) % len(controlOrder)
	case key.Matches(msg, m.keys.Left):
		return m.step(-1)
	case key.Matches(msg, m.keys.Right):
		return m.step(1)
	case key.Matches(msg, m.keys.Toggle):
		return m.toggle()
	case key.Matches(msg, m.keys.Enter):
		return m.enter()
	case key.Matches(msg, m.keys.Apply):
		return m.apply()
	case key.Matches(msg, m.keys.Clear):
		return m.clear()
	case key.Matches(msg, m.keys.PageUp, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) handleEditingKey(msg tea.KeyMsg) tea.Cmd {
	field := m.editingField()

	switch {
	case key.Matches(msg, m.keys.Enter):
		field.StopEditing()
		return nil
	case key.Matches(msg, m.keys.Cancel):
		field.CancelEditing()
		return nil
	}

	var cmd tea.Cmd
	*field, cmd = field.Update(msg)
	return cmd
}

func (m *Model) editingField() *components.DateField {
	if m.endDate.Editing() {
		return &m.endDate
	}
	return &m.startDate
}

func (m *Model) dateField(id string) *components.DateField {
	switch id {
	case StartDateID:
		return &m.startDate
	case EndDateID:
		return &m.endDate
	}
	return nil
}

func (m *Model) multiSelect(id string) *components.MultiSelect {
	switch id {
	case WardSelectID:
		return &m.wards
	case DoctorSelectID:
		return &m.doctors
	}
	return nil
}

// step moves the focused control's value or cursor by one.
func (m *Model) step(dir int) tea.Cmd {
	id := m.Focused()
	if ms := m.multiSelect(id); ms != nil {
		if dir > 0 {
			ms.Next()
		} else {
			ms.Prev()
		}
		return nil
	}

	switch id {
	case StatusSelectID:
		if dir > 0 {
			m.status.Next()
		} else {
			m.status.Prev()
		}
	case GranularityToggleID:
		if dir > 0 {
			m.granularity.Next()
		} else {
			m.granularity.Prev()
		}
		return m.apply()
	}
	return nil
}

func (m *Model) toggle() tea.Cmd {
	id := m.Focused()
	if ms := m.multiSelect(id); ms != nil {
		ms.Toggle()
		return nil
	}
	switch id {
	case StatusSelectID, GranularityToggleID:
		return m.step(1)
	case ApplyButtonID:
		return m.apply()
	}
	return nil
}

func (m *Model) enter() tea.Cmd {
	id := m.Focused()
	if d := m.dateField(id); d != nil {
		return d.StartEditing()
	}
	if ms := m.multiSelect(id); ms != nil {
		ms.Toggle()
		return nil
	}
	if id == ApplyButtonID {
		return m.apply()
	}
	return nil
}

func (m *Model) clear() tea.Cmd {
	id := m.Focused()
	if d := m.dateField(id); d != nil {
		d.SetDate(nil)
		return nil
	}
	if ms := m.multiSelect(id); ms != nil {
		ms.Clear()
		return nil
	}
	switch id {
	case StatusSelectID:
		m.status.Reset()
	case GranularityToggleID:
		before := m.granularity.Value()
		m.granularity.Reset()
		if m.granularity.Value() != before {
			return m.apply()
		}
	}
	return nil
}

func (m *Model) apply() tea.Cmd {
	return m.commands.ApplyFilters(app.TriggerApply)
}

// SetSize sets the available size for the dashboard.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.CapturingInput() {
		return []key.Binding{m.keys.Enter, m.keys.Cancel}
	}
	return []key.Binding{
		m.keys.Down,
		m.keys.Right,
		m.keys.Toggle,
		m.keys.Apply,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down, m.keys.Left, m.keys.Right},
		{m.keys.Toggle, m.keys.Enter, m.keys.Apply, m.keys.Clear, m.keys.Cancel},
		{m.keys.PageUp, m.keys.PageDown},
	}
}
