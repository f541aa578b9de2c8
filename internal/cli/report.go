package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/wardboard/internal/api"
	"github.com/rshade/wardboard/internal/charts"
	"github.com/rshade/wardboard/internal/logging"
	"github.com/rshade/wardboard/internal/store"
	"github.com/rshade/wardboard/internal/tui"
)

// Report names beyond the chart reports.
const (
	reportDashboard = "dashboard"
	reportLowStock  = "low-stock"
	reportToday     = "today"
)

// reportJSONOutput is the --output json document of a chart report.
type reportJSONOutput struct {
	Report  string          `json:"report"`
	Title   string          `json:"title"`
	Period  string          `json:"period,omitempty"`
	Metrics *charts.Metrics `json:"metrics,omitempty"`
	Charts  []charts.Series `json:"charts"`
}

type reportParams struct {
	period string
	output string
	dark   string
}

func reportNames() []string {
	names := []string{reportDashboard}
	for _, r := range charts.Reports() {
		names = append(names, r.String())
	}
	return append(names, reportLowStock, reportToday)
}

// NewReportCmd creates the report command, which prints the dashboard
// metrics, a chart report, or one of the backend's report endpoints.
func NewReportCmd() *cobra.Command {
	var p reportParams

	cmd := &cobra.Command{
		Use:   "report <name>",
		Short: "Print the dashboard, a chart report, low stock, or today's appointments",
		Long: `Prints one report as text charts or JSON.

Reports:
  dashboard     headline metrics plus appointment and revenue trends
  financial     monthly revenue and revenue by payment method
  operational   weekday patient flow, specializations, completion rates
  doctors       top doctors by appointments and by revenue
  patients      age and gender distribution, most frequent visitors
  low-stock     inventory items at or below their reorder threshold
  today         today's appointments`,
		Example: `  # Dashboard with weekly trends
  wardboard report dashboard --period weekly

  # Financial charts as JSON
  wardboard report financial --output json

  # Items to reorder
  wardboard report low-stock`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: reportNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(cmd, strings.ToLower(args[0]), p)
		},
	}

	cmd.Flags().StringVar(&p.period, "period", "daily", "trend period for the dashboard: daily, weekly, monthly")
	cmd.Flags().StringVarP(&p.output, "output", "o", "", "output format: table, json")
	cmd.Flags().StringVar(&p.dark, "dark", "", "chart palette override: true or false (default: dark-mode preference)")
	return cmd
}

func executeReport(cmd *cobra.Command, name string, p reportParams) error {
	format, err := resolveOutputFormat(p.output)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	log := logging.FromContext(ctx)
	client, err := newClient(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch name {
	case reportLowStock:
		items, lowErr := client.LowStock(ctx)
		if lowErr != nil {
			return fmt.Errorf("fetching low stock: %w", lowErr)
		}
		if format != OutputTable {
			return writeJSONOrNDJSON(out, format, items)
		}
		return writeLowStock(out, items)
	case reportToday:
		today, todayErr := client.TodayAppointments(ctx)
		if todayErr != nil {
			return fmt.Errorf("fetching today's appointments: %w", todayErr)
		}
		if format != OutputTable {
			return writeJSONOrNDJSON(out, format, today)
		}
		return writeToday(out, today)
	}

	doc := reportJSONOutput{Report: name}
	var report charts.Report
	var period charts.Period
	if name == reportDashboard {
		if period, err = charts.ParsePeriod(p.period); err != nil {
			return err
		}
		doc.Title = "Dashboard"
		doc.Period = period.String()
	} else {
		if report, err = charts.ParseReport(name); err != nil {
			return fmt.Errorf("%w (valid: %s)", err, strings.Join(reportNames(), ", "))
		}
		doc.Title = report.Title()
	}

	s, err := newStore(ctx, client, nil)
	if err != nil {
		return err
	}
	if err = s.PreloadAll(ctx); err != nil {
		return err
	}
	data := store.ChartData(s)

	if name == reportDashboard {
		today, todayErr := client.TodayAppointments(ctx)
		if todayErr != nil {
			log.Warn().Ctx(ctx).Err(todayErr).Msg("fetching today's appointments")
			today = []api.TodayAppointment{}
		}
		data.Today = today
		metrics := charts.ComputeMetrics(data)
		doc.Metrics = &metrics
		doc.Charts = charts.Dashboard(data, period, time.Now())
	} else {
		doc.Charts = charts.Build(report, data)
	}
	if doc.Charts == nil {
		doc.Charts = []charts.Series{}
	}

	log.Debug().Ctx(ctx).Str("report", name).Int("charts", len(doc.Charts)).Msg("report built")

	if format != OutputTable {
		return writeJSON(out, doc)
	}

	dark, err := reportPalette(p.dark)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, doc.Title)
	fmt.Fprintln(out, strings.Repeat("=", len(doc.Title)))
	if doc.Metrics != nil {
		fmt.Fprintf(out, "Total Patients:        %s\n", charts.FormatCount(int64(doc.Metrics.TotalPatients)))
		fmt.Fprintf(out, "Total Doctors:         %s\n", charts.FormatCount(int64(doc.Metrics.TotalDoctors)))
		fmt.Fprintf(out, "Today's Appointments:  %s\n", charts.FormatCount(int64(doc.Metrics.TodayAppointments)))
		fmt.Fprintf(out, "Pending Bills:         %s\n", charts.FormatCount(int64(doc.Metrics.PendingBills)))
		fmt.Fprintf(out, "Period:                %s\n", doc.Period)
	}
	if len(doc.Charts) == 0 {
		fmt.Fprintln(out, "\nNo data")
		return nil
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, charts.RenderAll(doc.Charts, tui.TerminalWidth(), charts.PaletteFor(dark)))
	return nil
}

// reportPalette resolves the --dark override, falling back to the stored
// preference.
func reportPalette(override string) (bool, error) {
	if override != "" {
		return strconv.ParseBool(override)
	}
	ps, err := openPrefs()
	if err != nil {
		return false, nil //nolint:nilerr // Missing prefs means the light palette.
	}
	dark, err := ps.DarkMode()
	if err != nil {
		return false, nil //nolint:nilerr // Unreadable prefs means the light palette.
	}
	return dark, nil
}

func writeJSONOrNDJSON[T any](w io.Writer, format string, items []T) error {
	if items == nil {
		items = []T{}
	}
	if format == OutputNDJSON {
		return writeNDJSON(w, items)
	}
	return writeJSON(w, items)
}

func writeLowStock(w io.Writer, items []api.InventoryItem) error {
	if len(items) == 0 {
		fmt.Fprintln(w, "All inventory items are above their reorder threshold.")
		return nil
	}
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = []string{
			strconv.Itoa(it.ID), it.Name, strconv.Itoa(it.Quantity),
			strconv.Itoa(it.Threshold), it.Unit, it.Supplier,
		}
	}
	if err := writeTable(w, []string{"ID", "Item", "Quantity", "Threshold", "Unit", "Supplier"}, rows); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d items at or below threshold\n", len(items))
	return nil
}

func writeToday(w io.Writer, today []api.TodayAppointment) error {
	if len(today) == 0 {
		fmt.Fprintln(w, "No appointments today.")
		return nil
	}
	rows := make([][]string, len(today))
	for i, a := range today {
		rows[i] = []string{
			strconv.Itoa(a.ID), a.Time, a.PatientName, a.DoctorName, a.Specialization, a.Status,
		}
	}
	return writeTable(w, []string{"ID", "Time", "Patient", "Doctor", "Specialization", "Status"}, rows)
}
