package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/wardboard/internal/charts"
)

// Colors shared by both themes.
const (
	ColorOK       = lipgloss.Color("42")
	ColorWarning  = lipgloss.Color("214")
	ColorCritical = lipgloss.Color("196")
	ColorInfo     = lipgloss.Color("39")
	ColorSpinner  = lipgloss.Color("205")
)

// tones are the base colors a theme is built from.
type tones struct {
	fg, muted, border, accent, selected lipgloss.Color
}

//nolint:gochecknoglobals // Fixed theme tones.
var (
	lightTones = tones{fg: "236", muted: "245", border: "250", accent: "25", selected: "153"}
	darkTones  = tones{fg: "252", muted: "243", border: "238", accent: "75", selected: "24"}
)

// Theme holds every style the dashboard renders with. It is swapped as a
// whole when dark mode is toggled.
type Theme struct {
	Dark bool

	Title         lipgloss.Style
	Header        lipgloss.Style
	Label         lipgloss.Style
	Value         lipgloss.Style
	Subtle        lipgloss.Style
	Info          lipgloss.Style
	Warning       lipgloss.Style
	Critical      lipgloss.Style
	Box           lipgloss.Style
	Alert         lipgloss.Style
	Tab           lipgloss.Style
	ActiveTab     lipgloss.Style
	Metric        lipgloss.Style
	TableHeader   lipgloss.Style
	TableSelected lipgloss.Style

	Charts charts.Palette
}

// NewTheme returns the dark or light theme.
func NewTheme(dark bool) Theme {
	t := lightTones
	if dark {
		t = darkTones
	}
	fg, muted, border, accent, selBg := t.fg, t.muted, t.border, t.accent, t.selected

	return Theme{
		Dark:     dark,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		Header:   lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		Label:    lipgloss.NewStyle().Foreground(muted),
		Value:    lipgloss.NewStyle().Foreground(fg).Bold(true),
		Subtle:   lipgloss.NewStyle().Foreground(muted),
		Info:     lipgloss.NewStyle().Foreground(ColorInfo),
		Warning:  lipgloss.NewStyle().Foreground(ColorWarning).Bold(true),
		Critical: lipgloss.NewStyle().Foreground(ColorCritical).Bold(true),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
		Alert: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorWarning).
			Padding(0, 2).
			Bold(true),
		Tab:       lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().Foreground(accent).Bold(true).Underline(true).Padding(0, 1),
		Metric: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2).
			Align(lipgloss.Center),
		TableHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(border).
			BorderBottom(true),
		TableSelected: lipgloss.NewStyle().Foreground(fg).Background(selBg).Bold(true),

		Charts: charts.PaletteFor(dark),
	}
}
