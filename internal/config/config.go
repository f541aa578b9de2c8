// Package config loads, validates, and persists wardboard configuration.
//
// Configuration is layered: built-in defaults, then ~/.wardboard/config.yaml,
// then an optional project-local .wardboard/config.yaml (shallow merge), then
// WARDBOARD_* environment variables (a .env file in the working directory is
// honoured for variables not already set).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultBaseURL            = "http://127.0.0.1:5000/api"
	DefaultTimeoutSeconds     = 30
	DefaultOutputFormat       = "table"
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "console"
	DefaultPreloadConcurrency = 4

	configFileName = "config.yaml"
)

// Environment variable names.
const (
	EnvHome      = "WARDBOARD_HOME"
	EnvAPIURL    = "WARDBOARD_API_URL"
	EnvLogLevel  = "WARDBOARD_LOG_LEVEL"
	EnvLogFormat = "WARDBOARD_LOG_FORMAT"
	EnvLogFile   = "WARDBOARD_LOG_FILE"
)

// Validation errors.
var (
	ErrInvalidBaseURL      = errors.New("api.base_url must be an absolute http(s) URL")
	ErrInvalidTimeout      = errors.New("api.timeout_seconds must be > 0")
	ErrInvalidOutputFormat = errors.New("output.default_format must be one of table, json, ndjson")
	ErrInvalidConcurrency  = errors.New("dashboard.preload_concurrency must be > 0")
	ErrUnknownKey          = errors.New("unknown configuration key")
)

// Config is the root configuration document.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
	Dashboard DashboardConfig `yaml:"dashboard"`

	// path is where Save writes; empty until Load or New resolves it.
	path string
}

// APIConfig locates the hospital REST backend.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// OutputConfig controls non-interactive rendering.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
}

// LoggingConfig controls the zerolog setup.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// DashboardConfig controls the interactive dashboard.
type DashboardConfig struct {
	PreloadOnStart     bool `yaml:"preload_on_start"`
	PreloadConcurrency int  `yaml:"preload_concurrency"`
}

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        DefaultBaseURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Output: OutputConfig{DefaultFormat: DefaultOutputFormat},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Dashboard: DashboardConfig{
			PreloadOnStart:     true,
			PreloadConcurrency: DefaultPreloadConcurrency,
		},
	}
}

// New builds the effective configuration: defaults, the user config file
// (if present and parseable), then environment overrides.
func New() *Config {
	cfg := newFromUserFile()
	cfg.ApplyEnv()
	return cfg
}

func newFromUserFile() *Config {
	cfg := Default()

	dir, err := GetConfigDir()
	if err == nil {
		cfg.path = filepath.Join(dir, configFileName)
		if _, statErr := os.Stat(cfg.path); statErr == nil {
			if loaded, loadErr := Load(cfg.path); loadErr == nil {
				cfg = loaded
			}
		}
	}
	return cfg
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Save writes the configuration to its file, creating the directory.
func (c *Config) Save() error {
	if c.path == "" {
		dir, err := GetConfigDir()
		if err != nil {
			return err
		}
		c.path = filepath.Join(dir, configFileName)
	}
	return c.SaveTo(c.path)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err = os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	c.path = path
	return nil
}

// Path returns the file the configuration was loaded from or will be saved to.
func (c *Config) Path() string {
	return c.path
}

// ApplyEnv overlays WARDBOARD_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Logging.File = v
	}
}

// Validate checks the configuration for values the client cannot work with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.API.BaseURL)
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidTimeout, c.API.TimeoutSeconds)
	}
	switch c.Output.DefaultFormat {
	case "table", "json", "ndjson":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidOutputFormat, c.Output.DefaultFormat)
	}
	if c.Dashboard.PreloadConcurrency <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidConcurrency, c.Dashboard.PreloadConcurrency)
	}
	return nil
}

// Keys returns every dotted key accepted by Get and Set, sorted.
func Keys() []string {
	keys := make([]string, 0, len(accessors))
	for k := range accessors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the string form of a dotted key such as "api.base_url".
func (c *Config) Get(key string) (string, error) {
	acc, ok := accessors[strings.ToLower(key)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return acc.get(c), nil
}

// Set assigns a dotted key from its string form.
func (c *Config) Set(key, value string) error {
	acc, ok := accessors[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return acc.set(c, value)
}

type accessor struct {
	get func(*Config) string
	set func(*Config, string) error
}

//nolint:gochecknoglobals // Static lookup table for dotted config keys.
var accessors = map[string]accessor{
	"api.base_url": {
		get: func(c *Config) string { return c.API.BaseURL },
		set: func(c *Config, v string) error { c.API.BaseURL = v; return nil },
	},
	"api.timeout_seconds": {
		get: func(c *Config) string { return strconv.Itoa(c.API.TimeoutSeconds) },
		set: func(c *Config, v string) error { return setInt(&c.API.TimeoutSeconds, v) },
	},
	"output.default_format": {
		get: func(c *Config) string { return c.Output.DefaultFormat },
		set: func(c *Config, v string) error { c.Output.DefaultFormat = v; return nil },
	},
	"logging.level": {
		get: func(c *Config) string { return c.Logging.Level },
		set: func(c *Config, v string) error { c.Logging.Level = v; return nil },
	},
	"logging.format": {
		get: func(c *Config) string { return c.Logging.Format },
		set: func(c *Config, v string) error { c.Logging.Format = v; return nil },
	},
	"logging.file": {
		get: func(c *Config) string { return c.Logging.File },
		set: func(c *Config, v string) error { c.Logging.File = v; return nil },
	},
	"dashboard.preload_on_start": {
		get: func(c *Config) string { return strconv.FormatBool(c.Dashboard.PreloadOnStart) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid boolean %q: %w", v, err)
			}
			c.Dashboard.PreloadOnStart = b
			return nil
		},
	},
	"dashboard.preload_concurrency": {
		get: func(c *Config) string { return strconv.Itoa(c.Dashboard.PreloadConcurrency) },
		set: func(c *Config, v string) error { return setInt(&c.Dashboard.PreloadConcurrency, v) },
	},
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid integer %q: %w", v, err)
	}
	*dst = n
	return nil
}
