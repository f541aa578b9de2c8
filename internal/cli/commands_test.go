package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/wardboard/internal/api"
	"github.com/rshade/wardboard/internal/cli"
	"github.com/rshade/wardboard/internal/config"
	"github.com/rshade/wardboard/internal/sandbox"
)

//nolint:gochecknoglobals // Fixed clock for deterministic fixtures.
var testNow = time.Date(2026, time.October, 17, 10, 0, 0, 0, time.UTC)

// backend starts a seeded sandbox and isolates config and prefs for the test.
func backend(t *testing.T) (*sandbox.DB, string) {
	t.Helper()
	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv(config.EnvProjectDir, "")
	t.Cleanup(func() {
		config.ResetGlobalConfigForTest()
		config.SetResolvedProjectDir("")
	})

	db, err := sandbox.NewSeeded(sandbox.DefaultSeedConfig(), sandbox.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	srv := httptest.NewServer(sandbox.NewServer(db, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return db, srv.URL + "/api"
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestList_Table(t *testing.T) {
	_, url := backend(t)

	out, err := execute(t, "", "--api-url", url, "list", "patients")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Disease")
	assert.Contains(t, out, "Page 1 of 3 · 25 records")
}

func TestList_PageBeyondEnd(t *testing.T) {
	_, url := backend(t)

	out, err := execute(t, "", "--api-url", url, "list", "patients", "--page", "9", "-o", "json")
	require.NoError(t, err)

	var doc struct {
		Collection string            `json:"collection"`
		Items      []json.RawMessage `json:"items"`
		Pagination struct {
			CurrentPage int `json:"current_page"`
			TotalItems  int `json:"total_items"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "patients", doc.Collection)
	assert.Empty(t, doc.Items)
	assert.Equal(t, 25, doc.Pagination.TotalItems)
}

func TestList_AllNDJSONSorted(t *testing.T) {
	_, url := backend(t)

	out, err := execute(t, "", "--api-url", url, "list", "doctors", "--all", "-o", "ndjson", "--sort", "fee:desc")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, sandbox.DefaultSeedConfig().Doctors)

	prev := -1.0
	for i, line := range lines {
		var d struct {
			Fee float64 `json:"fee"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &d), line)
		if i > 0 {
			assert.LessOrEqual(t, d.Fee, prev)
		}
		prev = d.Fee
	}
}

func TestList_Errors(t *testing.T) {
	_, url := backend(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown collection", []string{"list", "wards"}, "unknown collection"},
		{"bad sort field", []string{"list", "patients", "--sort", "shoe"}, "invalid sort field"},
		{"bad sort order", []string{"list", "patients", "--sort", "name:sideways"}, "invalid sort expression"},
		{"bad page", []string{"list", "patients", "--page", "0"}, "invalid pagination parameters"},
		{"bad output", []string{"list", "patients", "-o", "xml"}, "unsupported output format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", append([]string{"--api-url", url}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestList_BackendFailure(t *testing.T) {
	db, url := backend(t)
	db.Fail("patients", "Database connection failed")

	_, err := execute(t, "", "--api-url", url, "list", "patients")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Database connection failed")
}

func TestShow(t *testing.T) {
	_, url := backend(t)

	out, err := execute(t, "", "--api-url", url, "show", "patients", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "patient_id")
	assert.Contains(t, out, "name")

	_, err = execute(t, "", "--api-url", url, "show", "patients", "999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Patient not found")

	_, err = execute(t, "", "--api-url", url, "show", "patients", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid id")
}

func TestLookup(t *testing.T) {
	db, url := backend(t)

	out, err := execute(t, "", "--api-url", url, "lookup", "doctors")
	require.NoError(t, err)
	doctors, err := db.Options("doctors", "specialization")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(doctors)+2)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[2], fmt.Sprint(doctors[0]["name"]))
	assert.Contains(t, lines[2], fmt.Sprint(doctors[0]["specialization"]))

	out, err = execute(t, "", "--api-url", url, "lookup", "tests/types", "--output", "json")
	require.NoError(t, err)
	var tests []api.Option
	require.NoError(t, json.Unmarshal([]byte(out), &tests))
	require.NotEmpty(t, tests)
	assert.Positive(t, tests[0].Cost.Float64())

	out, err = execute(t, "", "--api-url", url, "lookup", "appointments")
	require.NoError(t, err)
	assert.Contains(t, out, "patient ")

	_, err = execute(t, "", "--api-url", url, "lookup", "bills")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bills has no lookup list")
}

func TestCreateFromStdin(t *testing.T) {
	db, url := backend(t)
	before := db.Len("patients")

	out, err := execute(t, `{"name": "Ada Park", "age": 41, "gender": "Female"}`,
		"--api-url", url, "create", "patients", "--file", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Patient added successfully")
	assert.Contains(t, out, "ID: ")
	assert.Equal(t, before+1, db.Len("patients"))
}

func TestCreate_ValidationStopsRequest(t *testing.T) {
	db, url := backend(t)
	before := db.Len("patients")

	_, err := execute(t, `{"name": "Ada Park"}`, "--api-url", url, "create", "patients", "--file", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is required")
	assert.Equal(t, before, db.Len("patients"))

	_, err = execute(t, "", "--api-url", url, "create", "patients", "--file", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty payload")
}

func TestCreate_File(t *testing.T) {
	_, url := backend(t)
	path := filepath.Join(t.TempDir(), "bill.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"patient_id": 1, "amount": 120}`), 0o600))

	out, err := execute(t, "", "--api-url", url, "create", "bills", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Invoice: ")

	_, err = execute(t, "", "--api-url", url, "create", "bills", "--file", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payload file not found")
}

func TestCreate_BillItems(t *testing.T) {
	db, url := backend(t)

	payload := `{"patient_id": 1, "amount": 120, "items": [{"description": "Consultation", "amount": 100}]}`
	out, err := execute(t, payload, "--api-url", url, "create", "bills", "--file", "-")
	require.NoError(t, err)

	var id int
	for _, line := range strings.Split(out, "\n") {
		if _, scanErr := fmt.Sscanf(line, "ID: %d", &id); scanErr == nil {
			break
		}
	}
	require.Positive(t, id, out)

	row, err := db.Get("bills", id)
	require.NoError(t, err)
	items, ok := row["items"].([]any)
	require.True(t, ok, "items stored: %v", row["items"])
	require.Len(t, items, 1)

	_, err = execute(t, `{"patient_id": 1, "amount": 120, "line_items": []}`,
		"--api-url", url, "create", "bills", "--file", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "line_items"`)
}

func TestUpdate(t *testing.T) {
	_, url := backend(t)

	out, err := execute(t, `{"phone": "(555) 123-4567"}`, "--api-url", url, "update", "patients", "2", "--file", "-")
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))

	out, err = execute(t, "", "--api-url", url, "show", "patients", "2", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "(555) 123-4567")

	_, err = execute(t, `[1, 2]`, "--api-url", url, "update", "patients", "2", "--file", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid payload")
}

func TestDelete_Confirmation(t *testing.T) {
	db, url := backend(t)
	before := db.Len("appointments")

	out, err := execute(t, "n\n", "--api-url", url, "delete", "appointments", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Delete Appointments 1? [y/N]")
	assert.Contains(t, out, "Aborted")
	assert.Equal(t, before, db.Len("appointments"))

	out, err = execute(t, "yes\n", "--api-url", url, "delete", "appointments", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted successfully")
	assert.Equal(t, before-1, db.Len("appointments"))

	_, err = execute(t, "", "--api-url", url, "delete", "appointments", "2", "--yes")
	require.NoError(t, err)
	assert.Equal(t, before-2, db.Len("appointments"))
}

func TestExport(t *testing.T) {
	_, url := backend(t)
	target := filepath.Join(t.TempDir(), "patients.csv")

	out, err := execute(t, "", "--api-url", url, "export", "patients", "--out", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported ")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "patient_id,"))

	out, err = execute(t, "", "--api-url", url, "export", "tests/types", "--out", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "name")
}

func TestExport_FailureRemovesFile(t *testing.T) {
	db, url := backend(t)
	db.Fail("bills", "Export failed")
	target := filepath.Join(t.TempDir(), "bills.csv")

	_, err := execute(t, "", "--api-url", url, "export", "bills", "--out", target)
	require.Error(t, err)
	assert.NoFileExists(t, target)
}

func TestReport(t *testing.T) {
	_, url := backend(t)

	out, err := execute(t, "", "--api-url", url, "report", "dashboard", "--period", "weekly", "--dark", "false")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Patients:        25")
	assert.Contains(t, out, "Period:                weekly")

	out, err = execute(t, "", "--api-url", url, "report", "financial", "-o", "json")
	require.NoError(t, err)
	var doc struct {
		Report string            `json:"report"`
		Title  string            `json:"title"`
		Charts []json.RawMessage `json:"charts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Financial Reports", doc.Title)
	assert.Len(t, doc.Charts, 2)

	out, err = execute(t, "", "--api-url", url, "report", "low-stock")
	require.NoError(t, err)
	assert.Contains(t, out, "items at or below threshold")

	_, err = execute(t, "", "--api-url", url, "report", "weather")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown report")

	_, err = execute(t, "", "--api-url", url, "report", "dashboard", "--period", "hourly")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown period")
}

func TestHealth(t *testing.T) {
	db, url := backend(t)

	out, err := execute(t, "", "--api-url", url, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "healthy")
	assert.Contains(t, out, "connected")

	db.SetUnhealthy("database locked")
	out, err = execute(t, "", "--api-url", url, "health", "-o", "json")
	require.Error(t, err)
	assert.Contains(t, out, `"status": "unhealthy"`)
	assert.Contains(t, out, "database locked")
}

func TestPrefs(t *testing.T) {
	backend(t)

	out, err := execute(t, "", "prefs", "get")
	require.NoError(t, err)
	assert.Contains(t, out, "hospital-name: (not set)")
	assert.Contains(t, out, "dark-mode: disabled")

	_, err = execute(t, "", "prefs", "set", "hospital-name", "St. Elsewhere")
	require.NoError(t, err)
	_, err = execute(t, "", "prefs", "set", "dark-mode", "on")
	require.NoError(t, err)

	out, err = execute(t, "", "prefs", "get", "hospital-name")
	require.NoError(t, err)
	assert.Equal(t, "St. Elsewhere\n", out)

	out, err = execute(t, "", "prefs", "get", "dark-mode")
	require.NoError(t, err)
	assert.Equal(t, "enabled\n", out)

	_, err = execute(t, "", "prefs", "set", "dark-mode", "maybe")
	require.Error(t, err)

	_, err = execute(t, "", "prefs", "set", "hospital-name", "   ")
	require.Error(t, err)

	_, err = execute(t, "", "prefs", "get", "volume")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown preference")
}

func TestConfigInitSetGet(t *testing.T) {
	backend(t)
	home := os.Getenv(config.EnvHome)

	out, err := execute(t, "", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized at")
	assert.FileExists(t, filepath.Join(home, "config.yaml"))

	_, err = execute(t, "", "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "", "config", "set", "output.default_format", "json")
	require.NoError(t, err)

	out, err = execute(t, "", "config", "get", "output.default_format")
	require.NoError(t, err)
	assert.Equal(t, "json\n", out)

	_, err = execute(t, "", "config", "set", "api.timeout_seconds", "0")
	require.Error(t, err)

	_, err = execute(t, "", "config", "get", "api.colour")
	require.Error(t, err)

	out, err = execute(t, "", "config", "list")
	require.NoError(t, err)
	for _, key := range config.Keys() {
		assert.Contains(t, out, key)
	}
}

func TestConfigInit_Project(t *testing.T) {
	backend(t)
	projectDir := t.TempDir()

	out, err := execute(t, "", "--project-dir", projectDir, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized at")
	assert.FileExists(t, filepath.Join(projectDir, ".wardboard", "config.yaml"))
}

func TestConfiguredOutputFormat(t *testing.T) {
	_, url := backend(t)
	t.Setenv(config.EnvAPIURL, url)

	_, err := execute(t, "", "config", "set", "output.default_format", "json")
	require.NoError(t, err)

	out, err := execute(t, "", "health")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "healthy"`)
}

func TestDashboard_RequiresTerminal(t *testing.T) {
	_, url := backend(t)

	_, err := execute(t, "", "--api-url", url, "dashboard")
	require.ErrorIs(t, err, cli.ErrNoTerminal)
}
