package tui

import (
	"sync"

	"github.com/rshade/wardboard/internal/api"
	"github.com/rshade/wardboard/internal/store"
)

// SectionKind distinguishes the dashboard's tabs.
type SectionKind int

// Section kinds.
const (
	SectionDashboard SectionKind = iota
	SectionCollection
	SectionReports
	SectionLowStock
)

// Section is one tab of the dashboard.
type Section struct {
	Kind  SectionKind
	Key   string
	Path  string
	Title string
}

// Sections returns the dashboard tabs in order: the overview, one per
// collection, reports, and low stock.
func Sections() []Section {
	out := []Section{{Kind: SectionDashboard, Title: "Dashboard"}}
	for _, c := range api.Collections() {
		out = append(out, Section{Kind: SectionCollection, Key: c.Key, Path: c.Path, Title: c.Title})
	}
	return append(out,
		Section{Kind: SectionReports, Title: "Reports"},
		Section{Kind: SectionLowStock, Title: "Low Stock"},
	)
}

// AlertQueue collects messages raised while commands run. The dashboard
// shows them one at a time and each must be dismissed. It implements
// store.Notifier.
type AlertQueue struct {
	mu      sync.Mutex
	pending []string
}

// NewAlertQueue returns an empty queue.
func NewAlertQueue() *AlertQueue {
	return &AlertQueue{}
}

// Alert queues message.
func (q *AlertQueue) Alert(message string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, message)
}

// Drain returns and clears the queued messages.
func (q *AlertQueue) Drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

// renderTracker records which collections the store re-rendered since the
// model last rebuilt its table.
type renderTracker struct {
	mu    sync.Mutex
	dirty map[string]store.View
}

func newRenderTracker() *renderTracker {
	return &renderTracker{dirty: make(map[string]store.View)}
}

func (r *renderTracker) mark(v store.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dirty[v.Key] = v
}

func (r *renderTracker) take(key string) (store.View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.dirty[key]
	delete(r.dirty, key)
	return v, ok
}
