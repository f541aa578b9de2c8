package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// prefFileExtension is the file extension used for preference entries.
const prefFileExtension = ".json"

// Preference keys.
const (
	KeyHospitalName = "hospitalName"
	KeyDarkMode     = "darkMode"
)

// Dark-mode values as stored.
const (
	DarkModeEnabled  = "enabled"
	DarkModeDisabled = "disabled"
)

// Common errors.
var (
	ErrNotFound     = errors.New("preference not found")
	ErrInvalidKey   = errors.New("preference key cannot be empty")
	ErrInvalidValue = errors.New("invalid preference value")
)

// FileStore keeps preferences as JSON files in one directory.
// Safe for concurrent use.
type FileStore struct {
	directory string
	mu        sync.RWMutex
}

// NewFileStore creates a store rooted at directory, creating it if needed.
func NewFileStore(directory string) (*FileStore, error) {
	if directory == "" {
		return nil, errors.New("prefs directory cannot be empty")
	}
	if err := os.MkdirAll(directory, 0700); err != nil {
		return nil, fmt.Errorf("failed to create prefs directory: %w", err)
	}
	return &FileStore{directory: directory}, nil
}

// Get returns the value for key, or ErrNotFound.
func (s *FileStore) Get(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.keyToFilePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read preference file: %w", err)
	}

	var entry Entry
	if err = json.Unmarshal(data, &entry); err != nil {
		return "", fmt.Errorf("failed to unmarshal preference %s: %w", key, err)
	}
	return entry.Value, nil
}

// Set stores value under key, overwriting any previous value.
func (s *FileStore) Set(key, value string) error {
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entryData, err := json.MarshalIndent(NewEntry(key, value), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preference: %w", err)
	}

	filePath := s.keyToFilePath(key)

	// Write to temporary file first, then rename for atomicity
	tempPath := filePath + ".tmp"
	if writeErr := os.WriteFile(tempPath, entryData, 0600); writeErr != nil {
		return fmt.Errorf("failed to write preference file: %w", writeErr)
	}
	if renameErr := os.Rename(tempPath, filePath); renameErr != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename preference file: %w", renameErr)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *FileStore) Delete(key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.keyToFilePath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete preference file: %w", err)
	}
	return nil
}

// Keys lists stored preference keys, sorted.
func (s *FileStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.directory)
	if err != nil {
		return nil, fmt.Errorf("failed to read prefs directory: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != prefFileExtension {
			continue
		}
		keys = append(keys, strings.TrimSuffix(entry.Name(), prefFileExtension))
	}
	sort.Strings(keys)
	return keys, nil
}

// GetDirectory returns the prefs directory path.
func (s *FileStore) GetDirectory() string {
	return s.directory
}

// HospitalName returns the stored hospital name, or "" when none is set.
func (s *FileStore) HospitalName() (string, error) {
	name, err := s.Get(KeyHospitalName)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return name, err
}

// SetHospitalName stores the hospital name. Blank names are rejected.
func (s *FileStore) SetHospitalName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: hospital name cannot be blank", ErrInvalidValue)
	}
	return s.Set(KeyHospitalName, name)
}

// DarkMode reports whether dark mode is enabled. Unset means disabled.
func (s *FileStore) DarkMode() (bool, error) {
	v, err := s.Get(KeyDarkMode)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == DarkModeEnabled, nil
}

// SetDarkMode persists the dark-mode toggle.
func (s *FileStore) SetDarkMode(enabled bool) error {
	v := DarkModeDisabled
	if enabled {
		v = DarkModeEnabled
	}
	return s.Set(KeyDarkMode, v)
}

// ParseDarkMode accepts "enabled"/"disabled" and common boolean spellings.
func ParseDarkMode(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case DarkModeEnabled, "on", "true", "yes", "1":
		return true, nil
	case DarkModeDisabled, "off", "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: dark mode must be enabled or disabled, got %q", ErrInvalidValue, v)
	}
}

// keyToFilePath converts a key to a file path, sanitized for the filesystem.
func (s *FileStore) keyToFilePath(key string) string {
	safeKey := strings.ReplaceAll(key, "/", "_")
	safeKey = strings.ReplaceAll(safeKey, "\\", "_")
	safeKey = strings.ReplaceAll(safeKey, ":", "_")
	return filepath.Join(s.directory, safeKey+prefFileExtension)
}
