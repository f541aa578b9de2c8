package charts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rshade/wardboard/internal/api"
)

// Bill and appointment statuses the aggregations key on.
const (
	StatusPaid      = "Paid"
	StatusUnpaid    = "Unpaid"
	StatusOverdue   = "Overdue"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
	StatusNoShow    = "No-Show"
)

// Trend window sizes.
const (
	dailyPoints   = 7
	weeklyPoints  = 4
	monthlyPoints = 6
	daysPerWeek   = 7
)

// ErrUnknownPeriod is returned by ParsePeriod.
var ErrUnknownPeriod = errors.New("unknown period")

// Period selects the bucket size of the dashboard trend charts.
type Period int

// Trend periods, cycled in this order.
const (
	PeriodDaily Period = iota
	PeriodWeekly
	PeriodMonthly
)

// String returns the lowercase period name.
func (p Period) String() string {
	switch p {
	case PeriodDaily:
		return "daily"
	case PeriodWeekly:
		return "weekly"
	case PeriodMonthly:
		return "monthly"
	default:
		return fmt.Sprintf("Period(%d)", int(p))
	}
}

// Next returns the following period, wrapping around.
func (p Period) Next() Period {
	return (p + 1) % (PeriodMonthly + 1)
}

// ParsePeriod parses "daily", "weekly" or "monthly".
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day", "":
		return PeriodDaily, nil
	case "weekly", "week":
		return PeriodWeekly, nil
	case "monthly", "month":
		return PeriodMonthly, nil
	default:
		return PeriodDaily, fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
}

// Metrics are the four headline numbers of the dashboard.
type Metrics struct {
	TotalPatients     int `json:"total_patients"`
	TotalDoctors      int `json:"total_doctors"`
	TodayAppointments int `json:"today_appointments"`
	PendingBills      int `json:"pending_bills"`
}

// ComputeMetrics derives the dashboard metrics from cached data.
func ComputeMetrics(d Data) Metrics {
	pending := 0
	for _, b := range d.Bills {
		if IsPending(b) {
			pending++
		}
	}
	return Metrics{
		TotalPatients:     len(d.Patients),
		TotalDoctors:      len(d.Doctors),
		TodayAppointments: len(d.Today),
		PendingBills:      pending,
	}
}

// IsPending reports whether a bill still awaits payment.
func IsPending(b api.Bill) bool {
	return b.Status == StatusUnpaid || b.Status == StatusOverdue
}

// bucket maps a date onto a trend slot.
type bucket struct {
	key   string
	label string
}

// buckets returns the slots of a trend ending at now, oldest first.
func buckets(p Period, now time.Time) []bucket {
	switch p {
	case PeriodWeekly:
		out := make([]bucket, 0, weeklyPoints)
		for i := weeklyPoints - 1; i >= 0; i-- {
			t := now.AddDate(0, 0, -daysPerWeek*i)
			out = append(out, bucket{key: weekKey(t), label: weekKey(t)})
		}
		return out
	case PeriodMonthly:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		out := make([]bucket, 0, monthlyPoints)
		for i := monthlyPoints - 1; i >= 0; i-- {
			t := first.AddDate(0, -i, 0)
			out = append(out, bucket{key: t.Format("2006-01"), label: t.Format("Jan 2006")})
		}
		return out
	default:
		out := make([]bucket, 0, dailyPoints)
		for i := dailyPoints - 1; i >= 0; i-- {
			t := now.AddDate(0, 0, -i)
			out = append(out, bucket{key: t.Format(time.DateOnly), label: t.Format("Mon 2")})
		}
		return out
	}
}

// bucketKey returns the slot key of a backend date for period p.
func bucketKey(p Period, date string) (string, bool) {
	t, ok := api.ParseDate(date)
	if !ok {
		return "", false
	}
	switch p {
	case PeriodWeekly:
		return weekKey(t), true
	case PeriodMonthly:
		return t.Format("2006-01"), true
	default:
		return t.Format(time.DateOnly), true
	}
}

func weekKey(t time.Time) string {
	y, w := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", y, w)
}

// trend sums value(i) into the period slots and drops dates outside them.
func trend(title string, p Period, now time.Time, n int, date func(int) string, value func(int) float64) Series {
	slots := buckets(p, now)
	index := make(map[string]int, len(slots))
	s := Series{
		Title:  title,
		Kind:   KindLine,
		Labels: make([]string, len(slots)),
		Values: make([]float64, len(slots)),
	}
	for i, b := range slots {
		index[b.key] = i
		s.Labels[i] = b.label
	}
	for i := 0; i < n; i++ {
		key, ok := bucketKey(p, date(i))
		if !ok {
			continue
		}
		if slot, found := index[key]; found {
			s.Values[slot] += value(i)
		}
	}
	return s
}

// AppointmentTrend counts appointments per slot of the period ending now.
func AppointmentTrend(appointments []api.Appointment, p Period, now time.Time) Series {
	return trend(
		fmt.Sprintf("Appointments Trend (%s)", trendWindow(p)), p, now, len(appointments),
		func(i int) string { return appointments[i].Date },
		func(int) float64 { return 1 },
	)
}

// RevenueTrend sums paid bill amounts per slot of the period ending now.
func RevenueTrend(bills []api.Bill, p Period, now time.Time) Series {
	s := trend(
		fmt.Sprintf("Revenue Trend (%s)", trendWindow(p)), p, now, len(bills),
		func(i int) string {
			if bills[i].Status != StatusPaid {
				return ""
			}
			return bills[i].Date
		},
		func(i int) float64 { return bills[i].Amount.Float64() },
	)
	s.Currency = true
	return s
}

func trendWindow(p Period) string {
	switch p {
	case PeriodWeekly:
		return fmt.Sprintf("Last %d Weeks", weeklyPoints)
	case PeriodMonthly:
		return fmt.Sprintf("Last %d Months", monthlyPoints)
	default:
		return fmt.Sprintf("Last %d Days", dailyPoints)
	}
}

// Dashboard returns the two trend charts of the dashboard section.
func Dashboard(d Data, p Period, now time.Time) []Series {
	return []Series{
		AppointmentTrend(d.Appointments, p, now),
		RevenueTrend(d.Bills, p, now),
	}
}
