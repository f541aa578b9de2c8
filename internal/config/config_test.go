package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/wardboard/internal/config"
	"github.com/rshade/wardboard/internal/logging"
)

// isolateHome points WARDBOARD_HOME at a temp dir and clears env overrides.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(config.EnvLogFormat, "")
	t.Setenv(config.EnvLogFile, "")
	t.Setenv(config.EnvProjectDir, "")
	config.ResetGlobalConfigForTest()
	t.Cleanup(config.ResetGlobalConfigForTest)
	return home
}

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, config.DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 30, cfg.API.TimeoutSeconds)
	assert.Equal(t, "table", cfg.Output.DefaultFormat)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Dashboard.PreloadOnStart)
	require.NoError(t, cfg.Validate())
}

func TestNew_NoFileUsesDefaults(t *testing.T) {
	home := isolateHome(t)

	cfg := config.New()

	assert.Equal(t, config.DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, filepath.Join(home, "config.yaml"), cfg.Path())
}

func TestNew_EnvOverridesFile(t *testing.T) {
	home := isolateHome(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(`
api:
  base_url: http://from-file/api
  timeout_seconds: 5
logging:
  level: warn
`), 0600))
	t.Setenv(config.EnvAPIURL, "http://from-env/api")

	cfg := config.New()

	assert.Equal(t, "http://from-env/api", cfg.API.BaseURL)
	assert.Equal(t, 5, cfg.API.TimeoutSeconds)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "table", cfg.Output.DefaultFormat, "unset keys keep defaults")
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	home := isolateHome(t)

	cfg := config.New()
	require.NoError(t, cfg.Set("api.base_url", "http://clinic.example/api"))
	require.NoError(t, cfg.Set("dashboard.preload_concurrency", "8"))
	require.NoError(t, cfg.Save())

	loaded, err := config.Load(filepath.Join(home, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://clinic.example/api", loaded.API.BaseURL)
	assert.Equal(t, 8, loaded.Dashboard.PreloadConcurrency)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("api: [oops"), 0600))
	_, err = config.Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestGetSet(t *testing.T) {
	cfg := config.Default()

	for _, key := range config.Keys() {
		_, err := cfg.Get(key)
		require.NoError(t, err, key)
	}

	require.NoError(t, cfg.Set("logging.level", "debug"))
	v, err := cfg.Get("LOGGING.LEVEL")
	require.NoError(t, err)
	assert.Equal(t, "debug", v)

	require.NoError(t, cfg.Set("dashboard.preload_on_start", "false"))
	assert.False(t, cfg.Dashboard.PreloadOnStart)

	require.ErrorIs(t, cfg.Set("nope.key", "x"), config.ErrUnknownKey)
	_, err = cfg.Get("nope.key")
	require.ErrorIs(t, err, config.ErrUnknownKey)

	require.Error(t, cfg.Set("api.timeout_seconds", "soon"))
	require.Error(t, cfg.Set("dashboard.preload_on_start", "maybe"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{name: "relative url", mutate: func(c *config.Config) { c.API.BaseURL = "/api" }, wantErr: config.ErrInvalidBaseURL},
		{name: "ftp url", mutate: func(c *config.Config) { c.API.BaseURL = "ftp://x/api" }, wantErr: config.ErrInvalidBaseURL},
		{name: "zero timeout", mutate: func(c *config.Config) { c.API.TimeoutSeconds = 0 }, wantErr: config.ErrInvalidTimeout},
		{name: "bad format", mutate: func(c *config.Config) { c.Output.DefaultFormat = "xml" }, wantErr: config.ErrInvalidOutputFormat},
		{
			name:    "zero concurrency",
			mutate:  func(c *config.Config) { c.Dashboard.PreloadConcurrency = 0 },
			wantErr: config.ErrInvalidConcurrency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGlobalConfigAccessors(t *testing.T) {
	isolateHome(t)
	cfg := config.Default()
	cfg.API.TimeoutSeconds = 7
	cfg.Output.DefaultFormat = "json"
	config.SetGlobalConfig(cfg)

	assert.Equal(t, config.DefaultBaseURL, config.GetAPIBaseURL())
	assert.Equal(t, 7*time.Second, config.GetAPITimeout())
	assert.Equal(t, "json", config.GetOutputFormat(""))
	assert.Equal(t, "ndjson", config.GetOutputFormat("ndjson"))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// Missing file is fine.
	require.NoError(t, config.LoadDotEnv())

	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvAPIURL, "")
	require.NoError(t, os.Unsetenv(config.EnvAPIURL))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("WARDBOARD_API_URL=http://dotenv/api\nWARDBOARD_LOG_LEVEL=trace\n"), 0600))

	require.NoError(t, config.LoadDotEnv())
	assert.Equal(t, "http://dotenv/api", os.Getenv(config.EnvAPIURL))
	assert.Equal(t, "error", os.Getenv(config.EnvLogLevel), ".env never overrides set variables")
}

func TestToLoggingConfig(t *testing.T) {
	lc := config.LoggingConfig{Level: "debug", Format: "json"}
	got := lc.ToLoggingConfig()
	assert.Equal(t, logging.OutputStderr, got.Output)
	assert.Equal(t, "debug", got.Level)

	lc.File = "/var/log/wardboard.log"
	got = lc.ToLoggingConfig()
	assert.Equal(t, logging.OutputFile, got.Output)
	assert.Equal(t, "/var/log/wardboard.log", got.File)
}

func TestConfigDirs(t *testing.T) {
	home := isolateHome(t)

	dir, err := config.GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, home, dir)

	prefs, err := config.GetPrefsDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "prefs"), prefs)

	logFile, err := config.GetDefaultLogFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "logs", "wardboard.log"), logFile)

	require.NoError(t, config.EnsureConfigDir())
	assert.DirExists(t, home)
}
