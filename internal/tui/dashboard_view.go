package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/wardboard/internal/charts"
	"github.com/rshade/wardboard/internal/pagination"
)

// View renders the current view (Bubble Tea interface).
func (m DashboardModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateLoading:
		return m.renderLoadingView()
	case ViewStatePrompt:
		return m.renderPromptView()
	default:
	}

	parts := []string{m.renderHeader()}
	if len(m.banner) > 0 {
		parts = append(parts, m.renderAlert())
	}

	switch m.state {
	case ViewStateDetail:
		parts = append(parts, m.renderDetailView())
	case ViewStateConfirm:
		parts = append(parts, m.renderBody(), m.renderConfirm())
	case ViewStateFilter:
		parts = append(parts, m.renderBody(), m.theme.Label.Render("Search: ")+m.input.View())
	default:
		parts = append(parts, m.renderBody())
	}

	parts = append(parts, m.renderHelp())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m DashboardModel) renderLoadingView() string {
	return fmt.Sprintf("\n %s Loading hospital data...\n", m.spinner.View())
}

func (m DashboardModel) renderPromptView() string {
	var b strings.Builder
	b.WriteString(m.theme.Header.Render("Welcome"))
	b.WriteString("\n")
	b.WriteString(m.theme.Label.Render("Hospital name: "))
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.theme.Subtle.Render("enter to save, esc to skip"))
	return m.theme.Box.Width(m.contentWidth()).Render(b.String())
}

func (m DashboardModel) renderHeader() string {
	title := m.theme.Title.Render(m.Hospital())

	tabs := make([]string, len(m.sections))
	for i, sec := range m.sections {
		if i == m.active {
			tabs[i] = m.theme.ActiveTab.Render(sec.Title)
		} else {
			tabs[i] = m.theme.Tab.Render(sec.Title)
		}
	}
	bar := lipgloss.NewStyle().Width(m.width).Render(strings.Join(tabs, ""))
	return lipgloss.JoinVertical(lipgloss.Left, title, bar, "")
}

func (m DashboardModel) renderAlert() string {
	msg := m.banner[0]
	style := m.theme.Alert
	if strings.HasPrefix(msg, "Error") {
		style = style.Foreground(ColorCritical)
	}
	footer := m.theme.Subtle.Render("press enter to dismiss")
	if n := len(m.banner) - 1; n > 0 {
		footer += m.theme.Subtle.Render(fmt.Sprintf(" (%d more)", n))
	}
	return style.Render(msg + "\n" + footer)
}

func (m DashboardModel) renderBody() string {
	sec := m.section()
	switch sec.Kind {
	case SectionDashboard:
		return m.renderOverview()
	case SectionCollection:
		return m.renderCollection()
	case SectionReports:
		return m.renderReports()
	case SectionLowStock:
		return m.renderLowStock()
	default:
		return ""
	}
}

func (m DashboardModel) renderOverview() string {
	d := m.chartData()
	metrics := charts.ComputeMetrics(d)

	boxes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderMetric("Total Patients", charts.FormatCount(int64(metrics.TotalPatients))),
		m.renderMetric("Total Doctors", charts.FormatCount(int64(metrics.TotalDoctors))),
		m.renderMetric("Today's Appointments", charts.FormatCount(int64(metrics.TodayAppointments))),
		m.renderMetric("Pending Bills", charts.FormatCount(int64(metrics.PendingBills))),
	)

	period := m.theme.Label.Render("Period: ") + m.theme.Value.Render(m.period.String())
	body := charts.RenderAll(charts.Dashboard(d, m.period, m.now()), m.contentWidth(), m.theme.Charts)
	return lipgloss.JoinVertical(lipgloss.Left, boxes, period, "", body)
}

func (m DashboardModel) renderMetric(label, value string) string {
	return m.theme.Metric.Render(m.theme.Label.Render(label) + "\n" + m.theme.Value.Render(value))
}

func (m DashboardModel) renderCollection() string {
	sec := m.section()
	parts := []string{m.table.View()}

	if m.query != "" {
		status := fmt.Sprintf("Search %q: %d of %d records (esc to clear)", m.query, len(m.rows), m.store.Len(sec.Key))
		parts = append(parts, m.theme.Info.Render(status))
	} else {
		parts = append(parts, m.renderPager(sec.Key))
	}

	series := charts.ForCollection(sec.Key, m.chartData())
	if len(series) > 0 {
		parts = append(parts, "", charts.RenderAll(series, m.contentWidth(), m.theme.Charts))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderPager draws "‹ 1 [2] 3 ›" plus the page summary.
func (m DashboardModel) renderPager(key string) string {
	v := m.store.View(key)
	if v.Len == 0 {
		return m.theme.Subtle.Render("No records")
	}

	var b strings.Builder
	if pagination.HasPrevious(v.Page) {
		b.WriteString(m.theme.Value.Render("‹ "))
	} else {
		b.WriteString(m.theme.Subtle.Render("‹ "))
	}
	for _, p := range pagination.Window(v.Page, v.TotalPages, pagination.DefaultWindowSpan) {
		if p == v.Page {
			b.WriteString(m.theme.ActiveTab.Render("[" + strconv.Itoa(p) + "]"))
		} else {
			b.WriteString(m.theme.Subtle.Render(" " + strconv.Itoa(p) + " "))
		}
	}
	if pagination.HasNext(v.Page, v.TotalPages) {
		b.WriteString(m.theme.Value.Render(" ›"))
	} else {
		b.WriteString(m.theme.Subtle.Render(" ›"))
	}
	b.WriteString(m.theme.Subtle.Render(fmt.Sprintf("  Page %d of %d · %d records", v.Page, v.TotalPages, v.Len)))
	if label := refreshedLabel(m.store.RefreshedAt(key), m.now()); label != "" {
		b.WriteString(m.theme.Subtle.Render(" · " + label))
	}
	return b.String()
}

// refreshedLabel describes how long ago a collection was fetched.
func refreshedLabel(at, now time.Time) string {
	if at.IsZero() {
		return ""
	}
	d := now.Sub(at)
	switch {
	case d < time.Minute:
		return "refreshed just now"
	case d < time.Hour:
		return fmt.Sprintf("refreshed %dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("refreshed %dh ago", int(d/time.Hour))
	default:
		return "refreshed " + at.Format(time.DateTime)
	}
}

func (m DashboardModel) renderReports() string {
	title := m.theme.Header.Render(m.report.Title())
	body := charts.RenderAll(charts.Build(m.report, m.chartData()), m.contentWidth(), m.theme.Charts)
	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}

func (m DashboardModel) renderLowStock() string {
	if len(m.lowStock) == 0 {
		return m.theme.Info.Render("All inventory items are above their reorder threshold.")
	}
	warn := m.theme.Warning.Render(fmt.Sprintf("%d items at or below threshold", len(m.lowStock)))
	return lipgloss.JoinVertical(lipgloss.Left, warn, m.table.View())
}

func (m DashboardModel) renderDetailView() string {
	var b strings.Builder
	b.WriteString(m.theme.Header.Render(m.title))
	b.WriteString("\n")
	if m.detail != nil {
		b.WriteString(m.detail.View())
	}
	b.WriteString("\n\n")
	b.WriteString(m.theme.Subtle.Render("Press ESC to return"))
	return m.theme.Box.Width(m.contentWidth()).Render(b.String())
}

func (m DashboardModel) renderConfirm() string {
	if m.pendingDelete == nil {
		return ""
	}
	q := fmt.Sprintf("Delete %s #%d? (y/n)", strings.ToLower(m.section().Title), m.pendingDelete.RecordID())
	return m.theme.Alert.Foreground(ColorCritical).Render(q)
}

func (m DashboardModel) renderHelp() string {
	var keys []string
	switch m.state {
	case ViewStateDetail:
		keys = []string{"↑/↓ scroll", "esc back", "q quit"}
	case ViewStateFilter:
		keys = []string{"enter apply", "esc cancel"}
	case ViewStateConfirm:
		keys = []string{"y delete", "n cancel"}
	default:
		keys = []string{"tab/shift+tab section"}
		switch m.section().Kind {
		case SectionDashboard:
			keys = append(keys, "p period")
		case SectionCollection:
			keys = append(keys, "←/→ page", "enter details", "/ search", "x export", "D delete")
		case SectionReports:
			keys = append(keys, "p next report")
		case SectionLowStock:
		}
		keys = append(keys, "r refresh", "d dark mode", "q quit")
	}
	return m.theme.Subtle.Render(strings.Join(keys, " · "))
}

func (m DashboardModel) contentWidth() int {
	return max(m.width-borderPadding, minChartWidth)
}
