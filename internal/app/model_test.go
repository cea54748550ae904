package app

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/hospital-dashboard-tui/internal/config"
	"github.com/j-veylop/hospital-dashboard-tui/internal/models"
	"github.com/j-veylop/hospital-dashboard-tui/internal/services"
)

type testBackend struct {
	failKPIs atomic.Bool
}

func (b *testBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/wards/utilization":
		_, _ = w.Write([]byte(`{"wards":[{"ward_id":3,"ward_name":"ICU","occupancy_rate":91},{"ward_id":7,"ward_name":"Maternity","occupancy_rate":40}]}`))
	case "/doctors/workload":
		_, _ = w.Write([]byte(`{"doctors":[{"doctor_id":1,"name":"Dr. Lee","is_present":1,"is_busy":0}]}`))
	case "/kpis":
		if b.failKPIs.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"beds":{"occupancy_rate":42.5,"occupied":17,"total":40},
			"admissions":{"active":12,"discharges_today":3,"avg_length_of_stay_days":3.2,"discharged":88},
			"doctors":{"present":5,"busy":2,"total":9}}`))
	case "/admissions/series":
		_, _ = w.Write([]byte(`{"series":[{"bucket":"2024-01-01","admissions":4}]}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestManager(t *testing.T, state *State, failKPIs bool) (*services.Manager, *testBackend) {
	t.Helper()
	backend := &testBackend{}
	backend.failKPIs.Store(failKPIs)
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := &config.Config{
		BackendURL:          srv.URL,
		AutoRefreshInterval: time.Hour,
		DatabasePath:        filepath.Join(dir, "history.db"),
		PresetsPath:         filepath.Join(dir, "presets.json"),
	}

	mgr, err := services.NewManager(cfg, state, services.WithNotifier(func(string, string) error { return nil }))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr, backend
}

// fakePanel is a tab owning filter controls.
type fakePanel struct {
	filters   models.FilterState
	wards     []models.Option
	doctors   []models.Option
	presets   *models.Presets
	capturing bool
	received  []tea.Msg
}

func (p *fakePanel) Init() tea.Cmd { return nil }
func (p *fakePanel) Update(msg tea.Msg) (Tab, tea.Cmd) {
	p.received = append(p.received, msg)
	return p, nil
}
func (p *fakePanel) View() string              { return "panel view" }
func (p *fakePanel) SetSize(_, _ int)          {}
func (p *fakePanel) ShortHelp() []key.Binding  { return nil }
func (p *fakePanel) FullHelp() [][]key.Binding { return nil }
func (p *fakePanel) CapturingInput() bool      { return p.capturing }

func (p *fakePanel) Filters() models.FilterState { return p.filters.Clone() }
func (p *fakePanel) SetOptions(wards, doctors []models.Option) {
	p.wards, p.doctors = wards, doctors
}
func (p *fakePanel) ApplyPresets(pr models.Presets, _ time.Time) {
	p.presets = &pr
	p.filters.Status = pr.Status
	p.filters.Granularity = pr.Granularity
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func newModelWithPanel(mgr *services.Manager, state *State) (*Model, *fakePanel, *fakePanel) {
	model := NewModel(mgr, state)
	panel := &fakePanel{filters: models.DefaultFilterState()}
	other := &fakePanel{}
	model.SetTabs([]Tab{panel, other, nil, nil})
	return model, panel, other
}

func TestNewModel(t *testing.T) {
	model := NewModel(nil, nil)
	if model == nil {
		t.Fatal("NewModel returned nil")
	}
	if model.state == nil {
		t.Error("State should be initialized")
	}
	if model.activeTab != TabDashboard {
		t.Error("Default tab should be Dashboard")
	}
	if len(model.tabs) != 4 {
		t.Errorf("Should have 4 tab placeholders, got %d", len(model.tabs))
	}

	state := NewState()
	if NewModel(nil, state).GetState() != state {
		t.Error("NewModel should keep the given state")
	}
}

func TestModel_SetTabsFindsPanel(t *testing.T) {
	model, panel, _ := newModelWithPanel(nil, nil)
	if model.panel != panel {
		t.Error("SetTabs should pick up the filter panel")
	}
}

func TestModel_Init(t *testing.T) {
	model := NewModel(nil, nil)
	if model.Init() == nil {
		t.Error("Init returned nil command")
	}
	if len(model.state.GetNotifications()) != 1 {
		t.Error("Init should show a loading notification")
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	model := NewModel(nil, nil)
	newModel, _ := model.Update(tea.WindowSizeMsg{Width: 100, Height: 50})

	m, ok := newModel.(*Model)
	if !ok {
		t.Fatal("Update returned wrong model type")
	}
	if m.width != 100 || m.height != 50 {
		t.Errorf("size = %dx%d, want 100x50", m.width, m.height)
	}
	if !m.IsReady() {
		t.Error("Model should be ready after WindowSizeMsg")
	}
}

func TestModel_TabSwitching(t *testing.T) {
	model := NewModel(nil, nil)
	model.SetTabs([]Tab{&fakePanel{}, &fakePanel{}, &fakePanel{}, &fakePanel{}})

	model.Update(TabSwitchMsg{Tab: TabHistory})
	if model.GetActiveTab() != TabHistory {
		t.Errorf("ActiveTab = %v, want History", model.activeTab)
	}

	tests := []struct {
		msg  tea.KeyMsg
		want TabID
	}{
		{runeKey('1'), TabDashboard},
		{runeKey('2'), TabRecords},
		{runeKey('3'), TabHistory},
		{runeKey('4'), TabInfo},
		{tea.KeyMsg{Type: tea.KeyTab}, TabDashboard},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, TabInfo},
	}

	for _, tt := range tests {
		model.Update(tt.msg)
		if model.activeTab != tt.want {
			t.Errorf("after %q: ActiveTab = %v, want %v", tt.msg.String(), model.activeTab, tt.want)
		}
	}
}

func TestModel_CapturingInputBypassesGlobalKeys(t *testing.T) {
	model, panel, _ := newModelWithPanel(nil, nil)
	panel.capturing = true

	model.Update(runeKey('2'))
	if model.activeTab != TabDashboard {
		t.Error("digits should reach the panel while it captures input")
	}
	if len(panel.received) != 1 {
		t.Errorf("panel received %d messages, want 1", len(panel.received))
	}

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should always quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should return tea.Quit")
	}
}

func TestModel_GlobalKeysAreNotForwarded(t *testing.T) {
	model, panel, _ := newModelWithPanel(nil, nil)

	model.Update(runeKey('?'))
	if !model.showHelp {
		t.Error("? should open help")
	}
	if len(panel.received) != 0 {
		t.Error("consumed keys should not reach the tab")
	}

	model.Update(runeKey('x'))
	if len(panel.received) != 1 {
		t.Error("unhandled keys should reach the tab")
	}
}

func TestModel_Update_Tick(t *testing.T) {
	model := NewModel(nil, nil)
	_, cmd := model.Update(TickMsg{Time: time.Now()})
	if cmd == nil {
		t.Error("TickMsg should return a command (next tick)")
	}
}

func TestModel_View(t *testing.T) {
	model := NewModel(nil, nil)

	if view := model.View(); !strings.Contains(view, "Loading...") {
		t.Error("View should show Loading when not ready")
	}

	model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := model.View()
	for _, name := range []string{"Dashboard", "Records", "History", "Info"} {
		if !strings.Contains(view, name) {
			t.Errorf("View should show %s tab", name)
		}
	}
	if !strings.Contains(view, "not yet implemented") {
		t.Error("View should show placeholder text")
	}
}

func TestModel_Help(t *testing.T) {
	model := NewModel(nil, nil)
	model.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	model.Update(ToggleHelpMsg{})
	if !model.showHelp {
		t.Error("showHelp should be true")
	}
	if !strings.Contains(model.View(), "Keyboard Shortcuts") {
		t.Error("View should show help modal")
	}

	model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if model.showHelp {
		t.Error("esc should close help")
	}
}

func TestModel_OverlayOnShortView(t *testing.T) {
	model := NewModel(nil, nil)
	model.Update(tea.WindowSizeMsg{Width: 40, Height: 12})

	out := model.overlayCentered("one line", "BOX")
	lines := strings.Split(out, "\n")
	if len(lines) != 12 {
		t.Fatalf("got %d lines, want 12", len(lines))
	}
	if !strings.Contains(lines[5], "BOX") {
		t.Errorf("overlay should sit in the middle row, got %q", lines[5])
	}
	if lines[0] != "one line" {
		t.Errorf("first line = %q", lines[0])
	}
}

func TestModel_Notifications(t *testing.T) {
	model := NewModel(nil, nil)
	model.Update(AddNotificationMsg{Message: "Test Note", Type: NotificationInfo})

	if n := len(model.state.GetNotifications()); n != 1 {
		t.Errorf("Expected 1 notification, got %d", n)
	}

	model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	if !strings.Contains(model.View(), "Test Note") {
		t.Error("View should show notification")
	}

	model.Update(ClearExpiredNotificationsMsg{})
	model.Update(RemoveNotificationMsg{ID: "nonexistent"})
}

func TestModel_LoadingMessages(t *testing.T) {
	model := NewModel(nil, nil)
	model.state.SetLoading("initial", false)

	model.Update(StartLoadingMsg{Resource: "records"})
	if !model.state.AnyLoading() {
		t.Error("records should be loading")
	}
	model.Update(StopLoadingMsg{Resource: "records"})
	if model.state.AnyLoading() {
		t.Error("nothing should be loading")
	}
}

func TestModel_HandleServiceEvent(t *testing.T) {
	model := NewModel(nil, nil)

	cmd := model.handleServiceEvent(services.ErrorEvent{Service: "presets", Error: errors.New("bad json")})
	if cmd == nil {
		t.Fatal("Error event should trigger notification command")
	}
	addMsg, ok := cmd().(AddNotificationMsg)
	if !ok || addMsg.Type != NotificationError || !strings.Contains(addMsg.Message, "[presets] bad json") {
		t.Errorf("unexpected notification: %+v", addMsg)
	}

	if model.handleServiceEvent(services.OccupancyAlertEvent{Occupancy: 95, Threshold: 90}) == nil {
		t.Error("occupancy alert should notify")
	}

	cmd = model.handleServiceEvent(services.SnapshotRecordedEvent{Snapshot: models.KPISnapshot{ID: 4}})
	if snap, ok := cmd().(SnapshotRecordedMsg); !ok || snap.Snapshot.ID != 4 {
		t.Error("snapshot event should become SnapshotRecordedMsg")
	}

	if model.handleServiceEvent(services.AutoRefreshEvent{At: time.Now()}) != nil {
		t.Error("timer without services should do nothing")
	}
}

func TestModel_BroadcastMessagesReachEveryTab(t *testing.T) {
	model, panel, other := newModelWithPanel(nil, nil)

	model.Update(SnapshotRecordedMsg{})
	if len(panel.received) != 1 || len(other.received) != 1 {
		t.Errorf("received panel=%d other=%d, want 1 each", len(panel.received), len(other.received))
	}

	model.Update(ToggleHelpMsg{})
	if len(other.received) != 1 {
		t.Error("non-broadcast messages should only reach the active tab")
	}
}

func TestModel_StartupSequence(t *testing.T) {
	state := NewState()
	mgr, _ := newTestManager(t, state, false)
	model, panel, _ := newModelWithPanel(mgr, state)

	model.Init()
	msg := loadFilterOptionsCmd(mgr)()
	_, cmd := model.Update(msg)
	if cmd == nil {
		t.Fatal("options loaded should start a refresh")
	}

	if len(panel.wards) != 2 || len(panel.doctors) != 1 {
		t.Errorf("panel options wards=%d doctors=%d", len(panel.wards), len(panel.doctors))
	}
	if panel.presets == nil {
		t.Fatal("presets should be applied to the controls")
	}
	if *panel.presets != models.DefaultPresets() {
		t.Errorf("presets = %+v", *panel.presets)
	}
	if !mgr.AutoRefreshRunning() {
		t.Error("auto refresh should start after the options load")
	}
	if model.inflight != 1 {
		t.Errorf("inflight = %d, want 1", model.inflight)
	}
}

func TestModel_OptionsFailureStillRefreshes(t *testing.T) {
	model, panel, _ := newModelWithPanel(nil, nil)

	_, cmd := model.Update(FilterOptionsLoadedMsg{Err: errors.New("offline")})
	if cmd == nil {
		t.Error("a failed option load should notify")
	}
	if panel.wards != nil {
		t.Error("selectors should stay empty")
	}
}

func TestModel_RefreshCycle(t *testing.T) {
	state := NewState()
	mgr, _ := newTestManager(t, state, false)
	model, panel, _ := newModelWithPanel(mgr, state)
	panel.filters.Status = models.StatusDischarged

	cmd := model.startRefresh(TriggerApply)
	if !state.AnyLoading() {
		t.Error("refresh should mark loading")
	}

	msg := cmd()
	applied, ok := msg.(FiltersAppliedMsg)
	if !ok {
		t.Fatalf("Expected FiltersAppliedMsg, got %T", msg)
	}
	if applied.Filters.Status != models.StatusDischarged {
		t.Errorf("Status = %q, want discharged", applied.Filters.Status)
	}

	model.Update(applied)

	status := state.RefreshStatus()
	if status.Failed() {
		t.Errorf("unexpected failure: %v", status.Err)
	}
	if state.AnyLoading() {
		t.Errorf("still loading: %v", state.GetLoadingResources())
	}
	if state.KPIs().Field(models.KPIBeds) != "17 / 40" {
		t.Errorf("kpiBeds = %q", state.KPIs().Field(models.KPIBeds))
	}
}

func TestModel_RefreshFailureKeepsStaleData(t *testing.T) {
	state := NewState()
	mgr, backend := newTestManager(t, state, false)
	model, _, _ := newModelWithPanel(mgr, state)

	model.Update(model.startRefresh(TriggerInit)())
	before := state.KPIs()

	backend.failKPIs.Store(true)
	msg := model.startRefresh(TriggerTimer)()
	_, cmd := model.Update(msg)
	if cmd == nil {
		t.Error("failed refresh should notify")
	}

	if !state.RefreshStatus().Failed() {
		t.Error("status should record the failure")
	}
	if state.KPIs().Field(models.KPIOccupancy) != before.Field(models.KPIOccupancy) {
		t.Error("stale KPIs should stay on screen")
	}
}

func TestModel_PresetsChangedEvent(t *testing.T) {
	model, panel, _ := newModelWithPanel(nil, nil)

	p := models.Presets{RangeDays: 7, Status: models.StatusAdmitted, Granularity: models.GranularityWeek}
	cmd := model.handleServiceEvent(services.PresetsChangedEvent{Presets: p})
	if cmd == nil {
		t.Error("presets change should notify")
	}
	if panel.presets == nil || panel.presets.Status != models.StatusAdmitted {
		t.Error("presets should be applied to the panel")
	}
}

func TestModel_AutoRefreshToggled(t *testing.T) {
	model := NewModel(nil, nil)

	model.Update(AutoRefreshToggledMsg{Running: true})
	if !model.autoRefresh {
		t.Error("autoRefresh should be on")
	}
	model.Update(AutoRefreshToggledMsg{Running: false})
	if model.autoRefresh {
		t.Error("autoRefresh should be off")
	}
}

func TestModel_HandleSpinnerTick(t *testing.T) {
	model := NewModel(nil, nil)
	if _, cmd := model.Update(spinner.TickMsg{}); cmd == nil {
		t.Error("Spinner tick should return command")
	}
}

func TestTabID_String(t *testing.T) {
	tests := []struct {
		id   TabID
		want string
	}{
		{TabDashboard, "Dashboard"},
		{TabRecords, "Records"},
		{TabHistory, "History"},
		{TabInfo, "Info"},
		{TabID(999), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	if len(km.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(km.FullHelp()) != 3 {
		t.Error("FullHelp should have 3 groups")
	}
}
