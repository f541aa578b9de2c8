package listview

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// RenderFunc renders one item. selected is true for the cursor row.
type RenderFunc[T any] func(item T, selected bool) string

// Model is a cursor-driven list that renders only its visible rows.
type Model[T any] struct {
	items  []T
	render RenderFunc[T]

	cursor int
	offset int
	height int
}

// New creates a list of items shown height rows at a time.
func New[T any](items []T, height int, render RenderFunc[T]) *Model[T] {
	m := &Model[T]{items: items, render: render, height: max(height, 1)}
	m.scroll()
	return m
}

// Init implements tea.Model.
func (m *Model[T]) Init() tea.Cmd {
	return nil
}

// Update handles navigation keys and resizes.
func (m *Model[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.handleKey(msg.String())
	case tea.WindowSizeMsg:
		m.SetHeight(msg.Height)
	}
	return m, nil
}

func (m *Model[T]) handleKey(key string) {
	switch key {
	case "up", "k":
		m.SetCursor(m.cursor - 1)
	case "down", "j":
		m.SetCursor(m.cursor + 1)
	case "pgup":
		m.SetCursor(m.cursor - m.height)
	case "pgdown":
		m.SetCursor(m.cursor + m.height)
	case "home", "g":
		m.SetCursor(0)
	case "end", "G":
		m.SetCursor(len(m.items) - 1)
	}
}

// View renders the rows between Offset and Offset+Height.
func (m *Model[T]) View() string {
	if len(m.items) == 0 {
		return ""
	}
	end := min(m.offset+m.height, len(m.items))
	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.render(m.items[i], i == m.cursor))
	}
	return strings.Join(lines, "\n")
}

// SetCursor moves the cursor, clamped to the list, and scrolls it into view.
func (m *Model[T]) SetCursor(i int) {
	m.cursor = max(min(i, len(m.items)-1), 0)
	m.scroll()
}

// SetHeight changes the viewport height.
func (m *Model[T]) SetHeight(h int) {
	m.height = max(h, 1)
	m.scroll()
}

// scroll keeps the cursor inside [offset, offset+height).
func (m *Model[T]) scroll() {
	switch {
	case m.cursor < m.offset:
		m.offset = m.cursor
	case m.cursor >= m.offset+m.height:
		m.offset = m.cursor - m.height + 1
	}
	m.offset = max(min(m.offset, len(m.items)-m.height), 0)
}

// Len returns the number of items.
func (m *Model[T]) Len() int { return len(m.items) }

// Cursor returns the selected index.
func (m *Model[T]) Cursor() int { return m.cursor }

// Offset returns the first visible index.
func (m *Model[T]) Offset() int { return m.offset }

// Height returns the viewport height.
func (m *Model[T]) Height() int { return m.height }

// Selected returns the item under the cursor, or false when the list is empty.
func (m *Model[T]) Selected() (T, bool) {
	var zero T
	if len(m.items) == 0 {
		return zero, false
	}
	return m.items[m.cursor], true
}
