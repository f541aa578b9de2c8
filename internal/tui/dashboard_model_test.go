package tui

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/wardboard/internal/api"
	"github.com/rshade/wardboard/internal/charts"
	"github.com/rshade/wardboard/internal/prefs"
	"github.com/rshade/wardboard/internal/sandbox"
	"github.com/rshade/wardboard/internal/store"
)

//nolint:gochecknoglobals // Fixed clock shared by the sandbox and the model.
var testNow = time.Date(2026, time.October, 17, 10, 0, 0, 0, time.UTC)

type harness struct {
	t      *testing.T
	db     *sandbox.DB
	client *api.Client
	store  *store.Store
	alerts *AlertQueue
	prefs  *prefs.FileStore
	dir    string
	m      DashboardModel
}

func newHarness(t *testing.T, withPrefs bool) *harness {
	t.Helper()
	clock := func() time.Time { return testNow }

	db, err := sandbox.NewSeeded(sandbox.DefaultSeedConfig(), sandbox.WithClock(clock))
	require.NoError(t, err)
	srv := httptest.NewServer(sandbox.NewServer(db, zerolog.Nop()))
	t.Cleanup(srv.Close)

	client, err := api.NewClient(srv.URL + "/api")
	require.NoError(t, err)

	alerts := NewAlertQueue()
	s := store.New(client, alerts, zerolog.Nop())
	require.NoError(t, store.RegisterAll(s))

	h := &harness{t: t, db: db, client: client, store: s, alerts: alerts, dir: t.TempDir()}
	if withPrefs {
		h.prefs, err = prefs.NewFileStore(filepath.Join(h.dir, "prefs"))
		require.NoError(t, err)
	}

	h.m = NewDashboardModel(context.Background(), Options{
		Store:     s,
		Backend:   client,
		Alerts:    alerts,
		Prefs:     h.prefs,
		ExportDir: h.dir,
		Now:       clock,
		Logger:    zerolog.Nop(),
	})
	return h
}

// load runs the initial preload synchronously.
func (h *harness) load() {
	h.t.Helper()
	h.send(loadAll(context.Background(), h.store, h.client, h.alerts)())
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	m, ok := next.(DashboardModel)
	require.True(h.t, ok)
	h.m = m
	return cmd
}

func (h *harness) press(k string) tea.Cmd {
	h.t.Helper()
	return h.send(keyMsg(k))
}

// run executes cmd and feeds its message back into the model.
func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	require.NotNil(h.t, cmd)
	h.send(cmd())
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case keyEnter:
		return tea.KeyMsg{Type: tea.KeyEnter}
	case keyEsc:
		return tea.KeyMsg{Type: tea.KeyEsc}
	case keyTab:
		return tea.KeyMsg{Type: tea.KeyTab}
	case keyShiftTab:
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case keyLeft:
		return tea.KeyMsg{Type: tea.KeyLeft}
	case keyRight:
		return tea.KeyMsg{Type: tea.KeyRight}
	case keyCtrlC:
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func TestDashboard_LoadWithoutPrefs(t *testing.T) {
	h := newHarness(t, false)
	assert.Equal(t, ViewStateLoading, h.m.State())
	assert.Contains(t, h.m.View(), "Loading")

	h.load()
	assert.Equal(t, ViewStateList, h.m.State())
	assert.Empty(t, h.m.banner)

	view := h.m.View()
	assert.Contains(t, view, defaultHospitalName)
	assert.Contains(t, view, "Total Patients")
	assert.Contains(t, view, "Pending Bills")
	assert.Contains(t, view, "Patients")
}

func TestDashboard_HospitalNamePrompt(t *testing.T) {
	h := newHarness(t, true)
	h.load()
	require.Equal(t, ViewStatePrompt, h.m.State())
	assert.Contains(t, h.m.View(), "Hospital name")

	h.press("St. Elsewhere")
	h.press(keyEnter)

	assert.Equal(t, ViewStateList, h.m.State())
	assert.Equal(t, "St. Elsewhere", h.m.Hospital())
	assert.Contains(t, h.m.View(), "St. Elsewhere")

	name, err := h.prefs.HospitalName()
	require.NoError(t, err)
	assert.Equal(t, "St. Elsewhere", name)
}

func TestDashboard_HospitalNamePromptSkipped(t *testing.T) {
	for _, k := range []string{keyEsc, keyEnter} {
		t.Run(k, func(t *testing.T) {
			h := newHarness(t, true)
			h.load()
			require.Equal(t, ViewStatePrompt, h.m.State())

			h.press(k)
			assert.Equal(t, ViewStateList, h.m.State())
			assert.Equal(t, defaultHospitalName, h.m.Hospital())

			name, err := h.prefs.HospitalName()
			require.NoError(t, err)
			assert.Empty(t, name)
		})
	}
}

func TestDashboard_StoredHospitalNameSkipsPrompt(t *testing.T) {
	h := newHarness(t, true)
	require.NoError(t, h.prefs.SetHospitalName("General"))
	require.NoError(t, h.prefs.SetDarkMode(true))

	h = rebuild(h)
	h.load()
	assert.Equal(t, ViewStateList, h.m.State())
	assert.Equal(t, "General", h.m.Hospital())
	assert.True(t, h.m.theme.Dark)
}

// rebuild creates a fresh model over the same store and prefs.
func rebuild(h *harness) *harness {
	h.m = NewDashboardModel(context.Background(), Options{
		Store:     h.store,
		Backend:   h.client,
		Alerts:    h.alerts,
		Prefs:     h.prefs,
		ExportDir: h.dir,
		Now:       func() time.Time { return testNow },
		Logger:    zerolog.Nop(),
	})
	return h
}

func TestDashboard_SectionsWrap(t *testing.T) {
	h := newHarness(t, false)
	h.load()

	sections := Sections()
	h.press(keyShiftTab)
	assert.Equal(t, sections[len(sections)-1].Title, h.m.section().Title)
	assert.Equal(t, SectionLowStock, h.m.section().Kind)

	h.press(keyTab)
	assert.Equal(t, SectionDashboard, h.m.section().Kind)

	h.press(keyTab)
	assert.Equal(t, api.KeyPatients, h.m.section().Key)
}

func TestDashboard_Pagination(t *testing.T) {
	h := newHarness(t, false)
	h.load()
	h.press(keyTab)
	require.Equal(t, api.KeyPatients, h.m.section().Key)

	require.Len(t, h.m.rows, 10)
	assert.Contains(t, h.m.View(), "Page 1 of 3 · 25 records")
	assert.False(t, h.store.RefreshedAt(api.KeyPatients).IsZero())
	assert.Contains(t, h.m.View(), "· refreshed ")

	h.press(keyLeft)
	assert.Equal(t, 1, h.store.Page(api.KeyPatients), "page 0 is ignored")

	h.press(keyRight)
	assert.Equal(t, 2, h.store.Page(api.KeyPatients))
	page2 := store.PageItems[api.Patient](h.store, api.KeyPatients)
	require.Len(t, h.m.rows, 10)
	assert.Equal(t, page2[0].PatientID, h.m.rows[0].RecordID())
	assert.Contains(t, h.m.View(), "Page 2 of 3 · 25 records")

	h.press(keyRight)
	require.Len(t, h.m.rows, 5)

	h.press(keyRight)
	assert.Equal(t, 3, h.store.Page(api.KeyPatients), "page past the end is ignored")
}

func TestDashboard_Search(t *testing.T) {
	h := newHarness(t, false)
	h.load()
	h.press(keyTab)

	all := store.Items[api.Patient](h.store, api.KeyPatients)
	target := all[len(all)-1]

	h.press(keySlash)
	require.Equal(t, ViewStateFilter, h.m.State())
	h.press(target.Name)
	h.press(keyEnter)

	require.Equal(t, ViewStateList, h.m.State())
	require.NotEmpty(t, h.m.rows)
	for _, e := range h.m.rows {
		assert.True(t, Matches(e, target.Name))
	}
	assert.Contains(t, h.m.View(), "Search")

	h.press(keyRight)
	assert.Equal(t, 1, h.store.Page(api.KeyPatients), "paging is disabled while searching")

	h.press(keyEsc)
	assert.Empty(t, h.m.query)
	assert.Len(t, h.m.rows, 10)
}

func TestDashboard_Detail(t *testing.T) {
	h := newHarness(t, false)
	h.load()
	h.press(keyTab)

	first := h.m.rows[0].RecordID()
	h.run(h.press(keyEnter))

	require.Equal(t, ViewStateDetail, h.m.State())
	view := h.m.View()
	assert.Contains(t, view, "Patients #")
	assert.Contains(t, view, "name")
	assert.Equal(t, "Patients #"+idCell(first), h.m.title)

	h.press(keyEsc)
	assert.Equal(t, ViewStateList, h.m.State())
	assert.Nil(t, h.m.detail)
}

func TestDashboard_DeleteWithConfirm(t *testing.T) {
	h := newHarness(t, false)
	h.load()
	h.press(keyTab)

	h.press(keyDelete)
	require.Equal(t, ViewStateConfirm, h.m.State())
	assert.Contains(t, h.m.View(), "(y/n)")

	h.press(keyNo)
	assert.Equal(t, ViewStateList, h.m.State())
	assert.Equal(t, 25, h.store.Len(api.KeyPatients))

	h.press(keyDelete)
	h.run(h.press(keyYes))

	assert.Equal(t, 24, h.store.Len(api.KeyPatients))
	require.Equal(t, []string{"Patient deleted successfully"}, h.m.banner)

	// The alert blocks navigation until dismissed.
	h.press(keyTab)
	assert.Equal(t, api.KeyPatients, h.m.section().Key)
	h.press(keyEnter)
	assert.Empty(t, h.m.banner)
	assert.Contains(t, h.m.View(), "Page 1 of 3 · 24 records")
}

func TestDashboard_RefreshFailureKeepsRows(t *testing.T) {
	h := newHarness(t, false)
	h.load()
	h.press(keyTab)

	h.db.Fail("patients", "Database connection failed")
	h.run(h.press(keyRefresh))

	assert.Equal(t, []string{"Error fetching data: Database connection failed"}, h.m.banner)
	assert.Equal(t, 25, h.store.Len(api.KeyPatients))
	assert.Len(t, h.m.rows, 10)
}

func TestDashboard_PreloadFailureIsolated(t *testing.T) {
	h := newHarness(t, false)
	h.db.Fail("doctors", "boom")
	h.load()

	assert.Equal(t, []string{"Error fetching data: boom"}, h.m.banner)
	assert.Zero(t, h.store.Len(api.KeyDoctors))
	assert.Equal(t, 25, h.store.Len(api.KeyPatients))
	assert.Equal(t, ViewStateList, h.m.State())
}

func TestDashboard_LowStock(t *testing.T) {
	h := newHarness(t, false)
	h.load()
	h.press(keyShiftTab)

	require.Equal(t, SectionLowStock, h.m.section().Kind)
	assert.Len(t, h.m.table.Rows(), 4)
	assert.Contains(t, h.m.View(), "4 items at or below threshold")

	h.run(h.press(keyRefresh))
	assert.Len(t, h.m.lowStock, 4)
}

func TestDashboard_CycleAndDarkMode(t *testing.T) {
	h := newHarness(t, true)
	require.NoError(t, h.prefs.SetHospitalName("General"))
	h = rebuild(h)
	h.load()

	h.press(keyCycle)
	assert.Equal(t, charts.PeriodWeekly, h.m.period)

	h.press(keyShiftTab)
	h.press(keyShiftTab)
	require.Equal(t, SectionReports, h.m.section().Kind)
	h.press(keyCycle)
	assert.Equal(t, charts.ReportOperational, h.m.report)
	assert.Contains(t, h.m.View(), charts.ReportOperational.Title())

	h.press(keyDarkMode)
	assert.True(t, h.m.theme.Dark)
	on, err := h.prefs.DarkMode()
	require.NoError(t, err)
	assert.True(t, on)

	h.press(keyDarkMode)
	on, err = h.prefs.DarkMode()
	require.NoError(t, err)
	assert.False(t, on)
}

func TestDashboard_Export(t *testing.T) {
	h := newHarness(t, false)
	h.load()
	h.press(keyTab)

	h.run(h.press(keyExport))

	require.Len(t, h.m.banner, 1)
	assert.Contains(t, h.m.banner[0], "Exported")
	assert.FileExists(t, filepath.Join(h.dir, "patients_export_20261017.csv"))
}

func TestDashboard_Quit(t *testing.T) {
	h := newHarness(t, false)

	cmd := h.press(keyCtrlC)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, ViewStateQuitting, h.m.State())
	assert.Empty(t, h.m.View())
}

func TestDashboard_SkipPreload(t *testing.T) {
	h := newHarness(t, false)
	h.m.skipPreload = true

	h.run(h.m.Init())
	assert.Equal(t, ViewStateList, h.m.State())
	assert.Zero(t, h.store.Len(api.KeyPatients))
	assert.Contains(t, h.m.View(), "Total Patients")
}

func TestRefreshedLabel(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"never fetched", time.Time{}, ""},
		{"seconds", testNow.Add(-20 * time.Second), "refreshed just now"},
		{"clock skew", testNow.Add(time.Minute), "refreshed just now"},
		{"minutes", testNow.Add(-5*time.Minute - 10*time.Second), "refreshed 5m ago"},
		{"hours", testNow.Add(-3 * time.Hour), "refreshed 3h ago"},
		{"days", testNow.Add(-50 * time.Hour), "refreshed 2026-10-15 08:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, refreshedLabel(tt.at, testNow))
		})
	}
}
