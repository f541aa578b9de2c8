package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/rshade/wardboard/internal/api"
	"github.com/rshade/wardboard/internal/charts"
	"github.com/rshade/wardboard/internal/logging"
	"github.com/rshade/wardboard/internal/prefs"
	"github.com/rshade/wardboard/internal/store"
	listview "github.com/rshade/wardboard/internal/tui/list"
)

// defaultHospitalName is shown when the user skipped the name prompt.
const defaultHospitalName = "Hospital Management System"

// Rows reserved around the table for header, pager and help.
const chromeHeight = 9

// Options wires the dashboard to its collaborators.
type Options struct {
	// Store must have every collection registered (see store.RegisterAll)
	// and must alert through Alerts.
	Store   *store.Store
	Backend Backend
	Alerts  *AlertQueue

	// Prefs is optional; without it the hospital name is not prompted for
	// and dark mode is not persisted.
	Prefs *prefs.FileStore

	// ExportDir receives CSV exports. Defaults to the working directory.
	ExportDir string

	// SkipPreload starts on an empty cache instead of fetching everything.
	SkipPreload bool

	Now    func() time.Time
	Logger zerolog.Logger
}

// DashboardModel is the Bubble Tea model of the interactive dashboard.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type DashboardModel struct {
	ctx     context.Context
	store   *store.Store
	backend Backend
	alerts  *AlertQueue
	prefs   *prefs.FileStore
	tracker *renderTracker
	logger  zerolog.Logger

	exportDir   string
	skipPreload bool
	now         func() time.Time

	state    ViewState
	sections []Section
	active   int
	theme    Theme
	hospital string
	period   charts.Period
	report   charts.Report

	today    []api.TodayAppointment
	lowStock []api.InventoryItem

	table  table.Model
	rows   []api.Entity
	query  string
	input  textinput.Model
	detail *listview.Model[api.Field]
	title  string

	pendingDelete api.Entity
	banner        []string

	spinner spinner.Model
	width   int
	height  int
}

// NewDashboardModel builds the dashboard and subscribes it to every
// collection of the store.
func NewDashboardModel(ctx context.Context, opts Options) DashboardModel {
	if opts.Alerts == nil {
		opts.Alerts = NewAlertQueue()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}

	m := DashboardModel{
		ctx:         ctx,
		store:       opts.Store,
		backend:     opts.Backend,
		alerts:      opts.Alerts,
		prefs:       opts.Prefs,
		tracker:     newRenderTracker(),
		logger:      logging.ComponentLogger(opts.Logger, "tui"),
		exportDir:   opts.ExportDir,
		skipPreload: opts.SkipPreload,
		now:         opts.Now,
		state:       ViewStateLoading,
		sections:    Sections(),
		period:      charts.PeriodDaily,
		report:      charts.ReportFinancial,
		input:       newTextInput(),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		width:       defaultWidth,
		height:      defaultHeight,
		today:       []api.TodayAppointment{},
		lowStock:    []api.InventoryItem{},
	}
	m.spinner.Style = lipgloss.NewStyle().Foreground(ColorSpinner)

	dark := false
	if m.prefs != nil {
		var err error
		if m.hospital, err = m.prefs.HospitalName(); err != nil {
			m.logger.Warn().Err(err).Msg("reading hospital name")
		}
		if dark, err = m.prefs.DarkMode(); err != nil {
			m.logger.Warn().Err(err).Msg("reading dark mode")
		}
	}
	m.theme = NewTheme(dark)

	for _, key := range m.store.Keys() {
		m.store.Subscribe(key, m.tracker.mark)
	}
	return m
}

func newTextInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 80
	ti.Width = 40
	return ti
}

// Init starts the spinner and the initial preload.
func (m DashboardModel) Init() tea.Cmd {
	if m.skipPreload {
		return func() tea.Msg { return dataLoadedMsg{today: m.today, lowStock: m.lowStock} }
	}
	return tea.Batch(m.spinner.Tick, loadAll(m.ctx, m.store, m.backend, m.alerts))
}

// Update handles messages and updates the model state.
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.detail != nil {
			m.detail.SetHeight(m.bodyHeight())
		}
		m.syncTable()
		return m, nil

	case spinner.TickMsg:
		if m.state != ViewStateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case dataLoadedMsg:
		return m.handleDataLoaded(msg)

	case collectionRefreshedMsg:
		m.pullAlerts()
		if _, dirty := m.tracker.take(msg.key); dirty && msg.key == m.section().Key {
			m.syncTable()
		}
		return m, nil

	case lowStockLoadedMsg:
		m.pullAlerts()
		if msg.err == nil {
			m.lowStock = msg.items
			m.syncTable()
		}
		return m, nil

	case detailLoadedMsg:
		return m.handleDetailLoaded(msg)

	case mutationDoneMsg:
		m.pullAlerts()
		m.tracker.take(msg.key)
		m.syncTable()
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.logger.Error().Err(msg.err).Str("path", msg.path).Msg("export failed")
			m.banner = append(m.banner, "Error exporting data: "+msg.err.Error())
		} else {
			m.banner = append(m.banner, "Exported "+charts.FormatCount(msg.bytes)+" bytes to "+msg.path)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m DashboardModel) handleDataLoaded(msg dataLoadedMsg) (tea.Model, tea.Cmd) {
	m.pullAlerts()
	m.today = msg.today
	m.lowStock = msg.lowStock
	if msg.err != nil {
		m.logger.Warn().Err(msg.err).Msg("dashboard loaded with errors")
	}

	if m.state == ViewStateLoading {
		m.state = ViewStateList
		if m.prefs != nil && m.hospital == "" {
			m.state = ViewStatePrompt
			m.input.Placeholder = "Enter hospital name"
			m.input.SetValue("")
			m.input.Focus()
			m.syncTable()
			return m, textinput.Blink
		}
	}
	for _, key := range m.store.Keys() {
		m.tracker.take(key)
	}
	m.syncTable()
	return m, nil
}

func (m DashboardModel) handleDetailLoaded(msg detailLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Error().Err(msg.err).Str("record", msg.title).Msg("detail fetch failed")
		m.banner = append(m.banner, "Error: "+msg.err.Error())
		return m, nil
	}
	theme := m.theme
	m.title = msg.title
	m.detail = listview.New(msg.record, m.bodyHeight(), func(f api.Field, selected bool) string {
		line := theme.Label.Render(padRight(f.Key, detailKeyWidth)) + " " + theme.Value.Render(api.FormatValue(f.Value))
		if selected {
			return "> " + line
		}
		return "  " + line
	})
	m.state = ViewStateDetail
	return m, nil
}

// detailKeyWidth aligns field names in the detail view.
const detailKeyWidth = 18

func padRight(s string, n int) string {
	if w := lipgloss.Width(s); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == keyCtrlC {
		m.state = ViewStateQuitting
		return m, tea.Quit
	}

	// An alert blocks everything until dismissed.
	if len(m.banner) > 0 {
		if key == keyEnter || key == keyEsc {
			m.banner = m.banner[1:]
		}
		return m, nil
	}

	switch m.state {
	case ViewStateLoading:
		if key == keyQuit {
			m.state = ViewStateQuitting
			return m, tea.Quit
		}
		return m, nil
	case ViewStatePrompt:
		return m.handlePromptKey(msg)
	case ViewStateFilter:
		return m.handleFilterKey(msg)
	case ViewStateDetail:
		return m.handleDetailKey(msg)
	case ViewStateConfirm:
		return m.handleConfirmKey(key)
	case ViewStateList:
		return m.handleListKey(msg)
	default:
		return m, nil
	}
}

func (m DashboardModel) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEnter:
		if name := strings.TrimSpace(m.input.Value()); name != "" {
			if err := m.prefs.SetHospitalName(name); err != nil {
				m.banner = append(m.banner, "Error: "+err.Error())
			} else {
				m.hospital = name
			}
		}
		m.closeInput()
		return m, nil
	case keyEsc:
		m.closeInput()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m DashboardModel) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEnter:
		m.query = strings.TrimSpace(m.input.Value())
		m.closeInput()
		m.syncTable()
		return m, nil
	case keyEsc:
		m.closeInput()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *DashboardModel) closeInput() {
	m.input.Blur()
	m.input.SetValue("")
	m.state = ViewStateList
}

func (m DashboardModel) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyEsc, keyEnter:
		m.state = ViewStateList
		m.detail = nil
		return m, nil
	}
	m.detail.Update(msg)
	return m, nil
}

func (m DashboardModel) handleConfirmKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case keyYes:
		target := m.pendingDelete
		m.pendingDelete = nil
		m.state = ViewStateList
		if target == nil {
			return m, nil
		}
		return m, deleteRecord(m.ctx, m.store, m.section().Key, target.RecordID())
	case keyNo, keyEsc, keyQuit:
		m.pendingDelete = nil
		m.state = ViewStateList
	}
	return m, nil
}

//nolint:gocognit,cyclop // One branch per key binding.
func (m DashboardModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sec := m.section()

	switch msg.String() {
	case keyQuit:
		m.state = ViewStateQuitting
		return m, tea.Quit

	case keyTab:
		m.switchSection(1)
		return m, nil
	case keyShiftTab:
		m.switchSection(-1)
		return m, nil

	case keyLeft, keyPgUp:
		m.changePage(-1)
		return m, nil
	case keyRight, keyPgDown:
		m.changePage(1)
		return m, nil

	case keyRefresh:
		return m, m.refreshCmd()

	case keyDarkMode:
		m.toggleDarkMode()
		return m, nil

	case keyCycle:
		switch sec.Kind {
		case SectionDashboard:
			m.period = m.period.Next()
		case SectionReports:
			m.report = m.report.Next()
		case SectionCollection, SectionLowStock:
		}
		return m, nil

	case keyExport:
		if sec.Kind != SectionCollection {
			return m, nil
		}
		return m, exportCSV(m.ctx, m.backend, sec.Path, m.exportDir, m.now())

	case keySlash:
		if sec.Kind != SectionCollection {
			return m, nil
		}
		m.state = ViewStateFilter
		m.input.Placeholder = "Search " + strings.ToLower(sec.Title)
		m.input.SetValue(m.query)
		m.input.Focus()
		return m, textinput.Blink

	case keyEsc:
		if m.query != "" {
			m.query = ""
			m.syncTable()
		}
		return m, nil

	case keyEnter:
		if e, ok := m.selected(); ok {
			return m, loadDetail(m.ctx, m.backend, sec, e.RecordID())
		}
		return m, nil

	case keyDelete:
		if e, ok := m.selected(); ok {
			m.pendingDelete = e
			m.state = ViewStateConfirm
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *DashboardModel) section() Section {
	return m.sections[m.active]
}

func (m *DashboardModel) switchSection(delta int) {
	n := len(m.sections)
	m.active = ((m.active+delta)%n + n) % n
	m.query = ""
	m.syncTable()
}

// changePage moves the active collection by delta pages. Out-of-range
// pages are ignored by the store.
func (m *DashboardModel) changePage(delta int) {
	sec := m.section()
	if sec.Kind != SectionCollection || m.query != "" {
		return
	}
	if m.store.ChangePage(sec.Key, m.store.Page(sec.Key)+delta) {
		if _, dirty := m.tracker.take(sec.Key); dirty {
			m.syncTable()
		}
	}
}

func (m *DashboardModel) refreshCmd() tea.Cmd {
	sec := m.section()
	switch sec.Kind {
	case SectionCollection:
		return refreshCollection(m.ctx, m.store, sec.Key)
	case SectionLowStock:
		return loadLowStock(m.ctx, m.backend, m.alerts)
	case SectionDashboard, SectionReports:
		return loadAll(m.ctx, m.store, m.backend, m.alerts)
	default:
		return nil
	}
}

func (m *DashboardModel) toggleDarkMode() {
	dark := !m.theme.Dark
	m.theme = NewTheme(dark)
	if m.prefs != nil {
		if err := m.prefs.SetDarkMode(dark); err != nil {
			m.banner = append(m.banner, "Error: "+err.Error())
		}
	}
	m.syncTable()
}

// selected returns the entity under the table cursor.
func (m *DashboardModel) selected() (api.Entity, bool) {
	if m.section().Kind != SectionCollection {
		return nil, false
	}
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return nil, false
	}
	return m.rows[i], true
}

// pullAlerts moves queued alerts into the banner.
func (m *DashboardModel) pullAlerts() {
	m.banner = append(m.banner, m.alerts.Drain()...)
}

// syncTable rebuilds the table of the active section from the store.
func (m *DashboardModel) syncTable() {
	sec := m.section()

	var (
		columns []table.Column
		rows    []table.Row
	)
	switch sec.Kind {
	case SectionCollection:
		if m.query != "" {
			m.rows = Filter(store.Entities(m.store, sec.Key, false), m.query)
		} else {
			m.rows = store.Entities(m.store, sec.Key, true)
		}
		columns, rows = Columns(sec.Key), tableRows(m.rows)
	case SectionLowStock:
		m.rows = nil
		columns = lowStockColumns
		rows = make([]table.Row, len(m.lowStock))
		for i, item := range m.lowStock {
			rows[i] = lowStockCells(item)
		}
	case SectionDashboard, SectionReports:
		m.rows = nil
		m.table = table.New()
		return
	}

	height := min(max(len(rows), 1), max(m.height-chromeHeight, 3)) + 1
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	s := table.DefaultStyles()
	s.Header = m.theme.TableHeader
	s.Selected = m.theme.TableSelected
	t.SetStyles(s)
	m.table = t
}

func (m *DashboardModel) bodyHeight() int {
	return max(m.height-chromeHeight, 5)
}

// chartData snapshots the store for chart rendering.
func (m *DashboardModel) chartData() charts.Data {
	d := store.ChartData(m.store)
	d.Today = m.today
	return d
}

// State returns the current view state.
func (m DashboardModel) State() ViewState {
	return m.state
}

// Hospital returns the hospital name shown in the header.
func (m DashboardModel) Hospital() string {
	if m.hospital == "" {
		return defaultHospitalName
	}
	return m.hospital
}
