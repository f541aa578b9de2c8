package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// GlobalConfig holds the global configuration instance.
var GlobalConfig *Config        //nolint:gochecknoglobals // Singleton pattern for configuration
var globalConfigMu sync.RWMutex //nolint:gochecknoglobals // Protects globalConfigInit flag
var globalConfigInit bool       //nolint:gochecknoglobals // Tracks if global config has been initialized

// InitGlobalConfig initializes the global configuration.
func InitGlobalConfig() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	if globalConfigInit {
		return
	}

	GlobalConfig = NewWithProjectDir(context.Background(), GetResolvedProjectDir())
	globalConfigInit = true
}

// SetGlobalConfig replaces the global configuration. Used by tests and by
// commands that load an explicit --config file.
func SetGlobalConfig(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	GlobalConfig = cfg
	globalConfigInit = cfg != nil
}

// ResetGlobalConfigForTest resets the global config for testing purposes.
func ResetGlobalConfigForTest() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	GlobalConfig = nil
	globalConfigInit = false
}

// GetGlobalConfig returns the global configuration, initializing it if needed.
func GetGlobalConfig() *Config {
	InitGlobalConfig()

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return GlobalConfig
}

// GetAPIBaseURL returns the configured backend base URL.
func GetAPIBaseURL() string {
	return GetGlobalConfig().API.BaseURL
}

// GetAPITimeout returns the configured request timeout.
func GetAPITimeout() time.Duration {
	return time.Duration(GetGlobalConfig().API.TimeoutSeconds) * time.Second
}

// GetOutputFormat returns override when set, otherwise the configured default format.
func GetOutputFormat(override string) string {
	if override != "" {
		return override
	}
	return GetGlobalConfig().Output.DefaultFormat
}

// LoadDotEnv loads a .env file from the working directory without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// GetConfigDir returns the path to the wardboard configuration directory.
func GetConfigDir() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".wardboard"), nil
}

// GetPrefsDir returns the directory holding persisted client preferences.
func GetPrefsDir() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "prefs"), nil
}

// GetDefaultLogFile returns the log file used by the interactive dashboard
// when none is configured.
func GetDefaultLogFile() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs", "wardboard.log"), nil
}

// EnsureConfigDir ensures the configuration directory exists.
func EnsureConfigDir() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}
