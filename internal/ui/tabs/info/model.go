// Package info provides the info tab: configuration, presets and build details.
package info

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/hospital-dashboard-tui/internal/app"
	"github.com/j-veylop/hospital-dashboard-tui/internal/logger"
	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
	"github.com/j-veylop/hospital-dashboard-tui/internal/services"
)

const countTimeout = 2 * time.Second

// snapshotCountMsg carries the number of stored KPI snapshots.
type snapshotCountMsg struct {
	count int
}

// keyMap defines the key bindings specific to the info tab.
type keyMap struct {
	Up   key.Binding
	Down key.Binding
}

// defaultKeyMap returns the default key bindings for the info tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

// Model represents the info tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	presets     *models.Presets
	autoRefresh bool
	snapshots   int
}

// New creates a new info model. svc may be nil.
func New(state *app.State, svc *services.Manager) *Model {
	m := &Model{
		state:    state,
		services: svc,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
	if svc != nil {
		p := svc.Presets()
		m.presets = &p
		m.autoRefresh = svc.AutoRefreshRunning()
	}
	return m
}

// Init initializes the info tab.
func (m *Model) Init() tea.Cmd {
	return m.countSnapshotsCmd()
}

func (m *Model) countSnapshotsCmd() tea.Cmd {
	svc := m.services
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), countTimeout)
		defer cancel()

		n, err := svc.SnapshotCount(ctx)
		if err != nil {
			logger.Warn("failed to count snapshots", "error", err)
			return nil
		}
		return snapshotCountMsg{count: n}
	}
}

// Update handles messages for the info tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case app.PresetsChangedMsg:
		p := msg.Presets
		m.presets = &p
	case app.AutoRefreshToggledMsg:
		m.autoRefresh = msg.Running
	case app.SnapshotRecordedMsg:
		cmds = append(cmds, m.countSnapshotsCmd())
	case snapshotCountMsg:
		m.snapshots = msg.count
	case tea.KeyMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// SetSize sets the available size for the info tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Up, m.keys.Down}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down},
	}
}
