package prefs

import "time"

// Entry is a single stored preference.
type Entry struct {
	// Key is the preference name, e.g. "hospitalName".
	Key string `json:"key"`

	// Value is the stored string value.
	Value string `json:"value"`

	// UpdatedAt is when the value was last written.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEntry creates an entry stamped with the current time.
func NewEntry(key, value string) *Entry {
	return &Entry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
}
