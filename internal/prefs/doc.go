// Package prefs persists the small amount of client state that survives a
// restart: the hospital name shown in the header and the dark-mode toggle.
//
// Each preference is one JSON file under the prefs directory, written
// atomically via a temp file and rename.
package prefs
