package charts

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Layout constants.
const (
	minBarWidth    = 10
	maxLabelWidth  = 20
	truncateSuffix = "…"
	columnGap      = 2
)

// barGlyph fills one cell of a bar.
const barGlyph = "█"

//nolint:gochecknoglobals // Fixed glyph ramp for sparklines.
var sparkRamp = []rune("▁▂▃▄▅▆▇█")

// Palette holds the colours a chart is drawn with.
type Palette struct {
	Title lipgloss.Color
	Bars  []lipgloss.Color
	Label lipgloss.Color
	Value lipgloss.Color
	Muted lipgloss.Color
}

// DarkPalette suits dark terminal backgrounds.
func DarkPalette() Palette {
	return Palette{
		Title: lipgloss.Color("213"),
		Bars:  []lipgloss.Color{"39", "42", "214", "203", "141", "51"},
		Label: lipgloss.Color("252"),
		Value: lipgloss.Color("229"),
		Muted: lipgloss.Color("243"),
	}
}

// LightPalette suits light terminal backgrounds.
func LightPalette() Palette {
	return Palette{
		Title: lipgloss.Color("90"),
		Bars:  []lipgloss.Color{"25", "28", "130", "124", "55", "30"},
		Label: lipgloss.Color("236"),
		Value: lipgloss.Color("94"),
		Muted: lipgloss.Color("245"),
	}
}

// PaletteFor returns the palette for the dark-mode preference.
func PaletteFor(dark bool) Palette {
	if dark {
		return DarkPalette()
	}
	return LightPalette()
}

func (p Palette) bar(i int) lipgloss.Color {
	if len(p.Bars) == 0 {
		return p.Value
	}
	return p.Bars[i%len(p.Bars)]
}

// Render draws s as a horizontal bar chart fitting width columns.
// Pie and doughnut series show each share; line series add a sparkline.
func Render(s Series, width int, p Palette) string {
	var sb strings.Builder

	sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(p.Title).Render(s.Title))
	sb.WriteString("\n")

	muted := lipgloss.NewStyle().Foreground(p.Muted)
	if s.Empty() {
		sb.WriteString(muted.Render("  No data"))
		return sb.String()
	}

	if s.Kind == KindLine {
		sb.WriteString("  ")
		sb.WriteString(lipgloss.NewStyle().Foreground(p.bar(0)).Render(Sparkline(s.Values)))
		sb.WriteString("\n")
	}

	labels := make([]string, s.Len())
	values := make([]string, s.Len())
	labelW, valueW := 0, 0
	total := s.Total()
	for i, l := range s.Labels {
		labels[i] = truncate(l, maxLabelWidth)
		labelW = max(labelW, lipgloss.Width(labels[i]))
		values[i] = FormatValue(s, s.Values[i])
		if (s.Kind == KindPie || s.Kind == KindDoughnut) && total > 0 && !s.Percent {
			values[i] += fmt.Sprintf(" (%.1f%%)", s.Values[i]/total*percentScale)
		}
		valueW = max(valueW, lipgloss.Width(values[i]))
	}

	barW := max(width-labelW-valueW-2*columnGap-2, minBarWidth)
	peak := s.Max()

	labelStyle := lipgloss.NewStyle().Foreground(p.Label).Width(labelW)
	valueStyle := lipgloss.NewStyle().Foreground(p.Value)
	gap := strings.Repeat(" ", columnGap)

	for i := range s.Labels {
		n := 0
		if peak > 0 && s.Values[i] > 0 {
			n = max(int(s.Values[i]/peak*float64(barW)), 1)
		}
		bar := lipgloss.NewStyle().Foreground(p.bar(i)).Render(strings.Repeat(barGlyph, n))
		pad := strings.Repeat(" ", barW-n)

		sb.WriteString("  ")
		sb.WriteString(labelStyle.Render(labels[i]))
		sb.WriteString(gap)
		sb.WriteString(bar)
		sb.WriteString(pad)
		sb.WriteString(gap)
		sb.WriteString(valueStyle.Render(values[i]))
		if i < len(s.Labels)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// RenderAll draws each series separated by a blank line.
func RenderAll(series []Series, width int, p Palette) string {
	parts := make([]string, 0, len(series))
	for _, s := range series {
		parts = append(parts, Render(s, width, p))
	}
	return strings.Join(parts, "\n\n")
}

// Sparkline maps values onto block glyphs scaled to the maximum.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	out := make([]rune, len(values))
	top := len(sparkRamp) - 1
	for i, v := range values {
		idx := 0
		if peak > 0 && v > 0 {
			idx = min(int(v/peak*float64(top)+0.5), top)
		}
		out[i] = sparkRamp[idx]
	}
	return string(out)
}

// truncate shortens s to at most n runes with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + truncateSuffix
}
