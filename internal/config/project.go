package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/rshade/wardboard/internal/logging"
)

// EnvProjectDir overrides project-local config discovery.
const EnvProjectDir = "WARDBOARD_PROJECT_DIR"

const projectDirName = ".wardboard"

// resolvedProjectDir holds the resolved project directory path for use
// by other config functions during the lifetime of a CLI invocation.
var (
	resolvedProjectDir   string       //nolint:gochecknoglobals // Set once at startup, read by config loaders
	resolvedProjectDirMu sync.RWMutex //nolint:gochecknoglobals // Protects resolvedProjectDir
)

// SetResolvedProjectDir stores the resolved project directory for use by other config functions.
func SetResolvedProjectDir(dir string) {
	resolvedProjectDirMu.Lock()
	defer resolvedProjectDirMu.Unlock()
	resolvedProjectDir = dir
}

// GetResolvedProjectDir returns the stored resolved project directory.
func GetResolvedProjectDir() string {
	resolvedProjectDirMu.RLock()
	defer resolvedProjectDirMu.RUnlock()
	return resolvedProjectDir
}

// ResolveProjectDir determines the project-local .wardboard directory path.
// It checks (in order):
//  1. flagValue (--project-dir CLI flag)
//  2. WARDBOARD_PROJECT_DIR env var
//  3. walking up from startDir for a .wardboard/config.yaml
//
// The user-level config directory is never treated as a project directory.
// Returns an absolute path or empty string. Does NOT create the directory.
func ResolveProjectDir(ctx context.Context, flagValue, startDir string) string {
	if flagValue != "" {
		return toAbsProjectDir(ctx, flagValue)
	}

	if envDir := os.Getenv(EnvProjectDir); envDir != "" {
		return toAbsProjectDir(ctx, envDir)
	}

	if startDir == "" {
		return ""
	}

	userDir, _ := GetConfigDir()
	if userDir != "" {
		if abs, err := filepath.Abs(userDir); err == nil {
			userDir = abs
		}
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		logger := logging.FromContext(ctx)
		logger.Warn().
			Str("component", "config").
			Err(err).
			Str("start_dir", startDir).
			Msg("failed to resolve start directory for project discovery")
		return ""
	}

	for {
		candidate := filepath.Join(dir, projectDirName)
		if candidate != userDir {
			if _, statErr := os.Stat(filepath.Join(candidate, configFileName)); statErr == nil {
				return candidate
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// NewWithProjectDir creates a Config by loading global config then
// shallow-merging project-local config on top, then applying environment
// overrides. If projectDir is empty, behaves identically to New().
func NewWithProjectDir(ctx context.Context, projectDir string) *Config {
	if projectDir == "" {
		return New()
	}

	overlayPath := filepath.Join(projectDir, configFileName)
	if _, err := os.Stat(overlayPath); err != nil {
		return New()
	}

	cfg := newFromUserFile()
	if err := ShallowMergeYAML(cfg, overlayPath); err != nil {
		logger := logging.FromContext(ctx)
		logger.Warn().
			Str("component", "config").
			Str("operation", "merge_project_config").
			Err(err).
			Str("overlay_path", overlayPath).
			Msg("failed to merge project config, using global defaults")
		return New()
	}

	cfg.ApplyEnv()
	return cfg
}

// toAbsProjectDir converts dir to an absolute path and appends ".wardboard".
// If the path already ends with ".wardboard", it is returned as-is.
func toAbsProjectDir(ctx context.Context, dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		logger := logging.FromContext(ctx)
		logger.Warn().
			Str("component", "config").
			Err(err).
			Str("dir", dir).
			Msg("failed to resolve absolute path for project directory")
		abs = dir
	}

	if filepath.Base(abs) == projectDirName {
		return abs
	}

	return filepath.Join(abs, projectDirName)
}
