// Package records provides the tab listing raw patient and admission rows
// for the applied filters.
package records

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/hospital-dashboard-tui/internal/app"
	"github.com/j-veylop/hospital-dashboard-tui/internal/logger"
	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
	"github.com/j-veylop/hospital-dashboard-tui/internal/services"
	"github.com/j-veylop/hospital-dashboard-tui/internal/ui/styles"
)

// Kind selects which resource the table shows.
type Kind int

const (
	Patients Kind = iota
	Admissions
)

func (k Kind) String() string {
	if k == Admissions {
		return "admissions"
	}
	return "patients"
}

// idColumn is the preferred first column for the kind.
func (k Kind) idColumn() string {
	if k == Admissions {
		return "admission_id"
	}
	return "patient_id"
}

const (
	loadTimeout    = 15 * time.Second
	maxColumnWidth = 24
	minColumnWidth = 4
	headerLines    = 4
)

type keyMap struct {
	Switch key.Binding
	Reload key.Binding
	Up     key.Binding
	Down   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Switch: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "patients/admissions"),
		),
		Reload: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "reload rows"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "prev row"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next row"),
		),
	}
}

// recordsLoadedMsg carries the rows of one load. seq drops answers to
// superseded loads.
type recordsLoadedMsg struct {
	kind    Kind
	seq     int
	filters models.FilterState
	records []models.Record
	err     error
}

// Model represents the records tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	keys     keyMap
	table    table.Model

	kind     Kind
	records  []models.Record
	columns  []string
	filters  models.FilterState
	loaded   bool
	loading  bool
	seq      int
	errorMsg string

	width  int
	height int
}

// New creates a new records model.
func New(state *app.State, svc *services.Manager) *Model {
	t := table.New(table.WithFocused(true))
	s := table.DefaultStyles()
	s.Header = styles.TableHeaderStyle.Padding(0, 1)
	s.Selected = styles.TableSelectedStyle
	t.SetStyles(s)

	return &Model{
		state:    state,
		services: svc,
		keys:     defaultKeyMap(),
		table:    t,
	}
}

// Init initializes the records tab. Rows are loaded once filters have been
// applied.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Kind returns the resource currently shown.
func (m *Model) Kind() Kind { return m.kind }

// Records returns the rows currently shown.
func (m *Model) Records() []models.Record { return m.records }

// Columns returns the column names currently shown.
func (m *Model) Columns() []string { return m.columns }

func (m *Model) loadCmd() tea.Cmd {
	if m.services == nil {
		return nil
	}
	m.seq++
	m.loading = true
	kind, seq, svc := m.kind, m.seq, m.services
	f := svc.Filters()

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		var (
			rows []models.Record
			err  error
		)
		if kind == Admissions {
			rows, err = svc.Admissions(ctx, f)
		} else {
			rows, err = svc.Patients(ctx, f)
		}
		return recordsLoadedMsg{kind: kind, seq: seq, filters: f, records: rows, err: err}
	}
}

// Update handles messages for the records tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case recordsLoadedMsg:
		return m, m.handleLoaded(msg)

	case app.FiltersAppliedMsg:
		if msg.Err == nil {
			return m, m.loadCmd()
		}

	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleLoaded(msg recordsLoadedMsg) tea.Cmd {
	if msg.seq != m.seq {
		return nil
	}
	m.loading = false

	if msg.err != nil {
		logger.Error("records load failed", "kind", msg.kind, "error", msg.err)
		m.errorMsg = msg.err.Error()
		return func() tea.Msg {
			return app.AddNotificationMsg{
				Type:     app.NotificationError,
				Message:  fmt.Sprintf("Loading %s failed: %s", msg.kind, msg.err),
				Duration: app.LongNotificationDuration,
			}
		}
	}

	m.errorMsg = ""
	m.loaded = true
	m.filters = msg.filters
	m.records = msg.records
	m.columns = columnOrder(msg.kind, msg.records)
	m.syncTable()
	return nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Switch):
		if m.kind == Patients {
			m.kind = Admissions
		} else {
			m.kind = Patients
		}
		m.records = nil
		m.columns = nil
		m.loaded = false
		m.syncTable()
		return m.loadCmd()

	case key.Matches(msg, m.keys.Reload):
		return m.loadCmd()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return cmd
}

// syncTable rebuilds the table columns and rows for the current size.
func (m *Model) syncTable() {
	cols := fitColumns(m.columns, m.records, max(m.width-2, 20))

	rows := make([]table.Row, len(m.records))
	for i, r := range m.records {
		row := make(table.Row, len(cols))
		for j, c := range cols {
			row[j] = ansi.Truncate(r.Value(c.Title), c.Width, "…")
		}
		rows[i] = row
	}

	// Rows must never be wider than the column set while it changes.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

// columnOrder returns every column seen in rows: the kind's id column, then
// other id columns, then the rest alphabetically.
func columnOrder(kind Kind, rows []models.Record) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range rows {
		for c := range r {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}

	rank := func(c string) int {
		switch {
		case c == kind.idColumn() || c == "id":
			return 0
		case strings.HasSuffix(c, "_id"):
			return 1
		default:
			return 2
		}
	}
	sort.Slice(cols, func(i, j int) bool {
		ri, rj := rank(cols[i]), rank(cols[j])
		if ri != rj {
			return ri < rj
		}
		return cols[i] < cols[j]
	})
	return cols
}

// fitColumns sizes each column to its widest value and keeps as many as fit
// in width.
func fitColumns(names []string, rows []models.Record, width int) []table.Column {
	var cols []table.Column
	used := 0
	for _, name := range names {
		w := lipgloss.Width(name)
		for _, r := range rows {
			w = max(w, lipgloss.Width(r.Value(name)))
		}
		w = max(minColumnWidth, min(w, maxColumnWidth))

		// Cells are padded by one on each side.
		if used+w+2 > width && len(cols) > 0 {
			break
		}
		cols = append(cols, table.Column{Title: name, Width: w})
		used += w + 2
	}
	return cols
}

// SetSize sets the available size for the records tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(3, height-headerLines))
	m.syncTable()
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Switch, m.keys.Reload}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Switch, m.keys.Reload},
		{m.keys.Up, m.keys.Down},
	}
}
