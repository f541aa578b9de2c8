// Package tui implements the interactive hospital dashboard.
//
// The dashboard is a single Bubble Tea model. Every change to what is shown
// happens inside Update; network calls run as commands that deliver
// messages back. Collections live in a store.Store shared with the CLI, and
// the model subscribes to it so page changes and refreshes rebuild the
// visible table.
package tui
