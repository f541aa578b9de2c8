package charts

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rshade/wardboard/internal/api"
)

// ErrUnknownReport is returned by ParseReport.
var ErrUnknownReport = errors.New("unknown report")

// percentScale converts a ratio to a percentage.
const percentScale = 100

// Report names one of the report tabs.
type Report int

// Reports, cycled in this order.
const (
	ReportFinancial Report = iota
	ReportOperational
	ReportDoctorPerformance
	ReportPatientStatistics
)

// Reports lists every report in display order.
func Reports() []Report {
	return []Report{ReportFinancial, ReportOperational, ReportDoctorPerformance, ReportPatientStatistics}
}

// String returns the CLI name of the report.
func (r Report) String() string {
	switch r {
	case ReportFinancial:
		return "financial"
	case ReportOperational:
		return "operational"
	case ReportDoctorPerformance:
		return "doctors"
	case ReportPatientStatistics:
		return "patients"
	default:
		return fmt.Sprintf("Report(%d)", int(r))
	}
}

// Title returns the heading shown above the report.
func (r Report) Title() string {
	switch r {
	case ReportFinancial:
		return "Financial Reports"
	case ReportOperational:
		return "Operational Reports"
	case ReportDoctorPerformance:
		return "Doctor Performance"
	case ReportPatientStatistics:
		return "Patient Statistics"
	default:
		return r.String()
	}
}

// Next returns the following report, wrapping around.
func (r Report) Next() Report {
	return (r + 1) % (ReportPatientStatistics + 1)
}

// ParseReport parses a report name as printed by String.
func ParseReport(s string) (Report, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, r := range Reports() {
		if r.String() == s {
			return r, nil
		}
	}
	return ReportFinancial, fmt.Errorf("%w: %q", ErrUnknownReport, s)
}

// Build returns the charts of report r. A report whose base collection is
// empty has no charts.
func Build(r Report, d Data) []Series {
	switch r {
	case ReportFinancial:
		if len(d.Bills) == 0 {
			return nil
		}
		return []Series{MonthlyRevenue(d.Bills), RevenueByPaymentMethod(d.Bills)}
	case ReportOperational:
		if len(d.Appointments) == 0 {
			return nil
		}
		return []Series{
			WeekdayFlow(d.Appointments),
			AppointmentsBySpecialization(d.Appointments, d.Doctors),
			CompletionRates(d.Appointments),
		}
	case ReportDoctorPerformance:
		if len(d.Doctors) == 0 {
			return nil
		}
		return []Series{
			TopDoctorsByAppointments(d.Doctors, d.Appointments),
			TopDoctorsByRevenue(d.Doctors, d.Bills),
		}
	case ReportPatientStatistics:
		if len(d.Patients) == 0 {
			return nil
		}
		return []Series{
			AgeDistribution(d.Patients),
			GenderDistribution(d.Patients),
			TopPatientsByVisits(d.Appointments),
		}
	default:
		return nil
	}
}

// MonthlyRevenue sums paid bills per month, oldest first.
func MonthlyRevenue(bills []api.Bill) Series {
	c := counter{}
	for _, b := range bills {
		if b.Status != StatusPaid {
			continue
		}
		if t, ok := api.ParseDate(b.Date); ok {
			c.add(t.Format("2006-01"), b.Amount.Float64())
		}
	}
	s := c.sorted("Monthly Revenue", KindBar)
	for i, key := range s.Labels {
		if t, err := time.Parse("2006-01", key); err == nil {
			s.Labels[i] = t.Format("Jan 2006")
		}
	}
	s.Currency = true
	return s
}

// WeekdayFlow counts appointments per weekday, Sunday first, skipping days
// with no appointments.
func WeekdayFlow(appointments []api.Appointment) Series {
	var counts [7]float64
	for _, a := range appointments {
		if t, ok := api.ParseDate(a.Date); ok {
			counts[t.Weekday()]++
		}
	}
	s := Series{Title: "Weekly Patient Flow (Appointments)", Kind: KindLine}
	for day, n := range counts {
		if n == 0 {
			continue
		}
		s.Labels = append(s.Labels, time.Weekday(day).String())
		s.Values = append(s.Values, n)
	}
	return s
}

// AppointmentsBySpecialization counts appointments per doctor specialization.
func AppointmentsBySpecialization(appointments []api.Appointment, doctors []api.Doctor) Series {
	spec := make(map[int]string, len(doctors))
	for _, d := range doctors {
		spec[d.DoctorID] = d.Specialization
	}
	c := counter{}
	for _, a := range appointments {
		label, ok := spec[a.DoctorID]
		if !ok {
			label = a.Specialization
		}
		c.add(labelOr(label, "Unknown"), 1)
	}
	return c.sorted("Appointments by Doctor Specialization", KindBar)
}

// CompletionRates returns completion and cancellation as percentages of all
// appointments. No-shows count as cancellations.
func CompletionRates(appointments []api.Appointment) Series {
	var completed, cancelled float64
	for _, a := range appointments {
		switch a.Status {
		case StatusCompleted:
			completed++
		case StatusCancelled, StatusNoShow:
			cancelled++
		}
	}
	s := Series{
		Title:   "Appointment Efficiency",
		Kind:    KindDoughnut,
		Labels:  []string{"Completion Rate", "Cancellation Rate"},
		Values:  []float64{0, 0},
		Percent: true,
	}
	if total := float64(len(appointments)); total > 0 {
		s.Values[0] = completed / total * percentScale
		s.Values[1] = cancelled / total * percentScale
	}
	return s
}

// doctorScore pairs a doctor with one ranking value.
type doctorScore struct {
	name  string
	score float64
}

// rankDoctors orders doctors by score descending, keeping list order on ties.
func rankDoctors(title string, doctors []api.Doctor, score func(api.Doctor) float64) Series {
	scores := make([]doctorScore, 0, len(doctors))
	for _, d := range doctors {
		scores = append(scores, doctorScore{name: d.Name, score: score(d)})
	}
	slices.SortStableFunc(scores, func(a, b doctorScore) int {
		return cmp.Compare(b.score, a.score)
	})
	if len(scores) > topN {
		scores = scores[:topN]
	}
	s := Series{Title: title, Kind: KindBar}
	for _, ds := range scores {
		s.Labels = append(s.Labels, ds.name)
		s.Values = append(s.Values, ds.score)
	}
	return s
}

// TopDoctorsByAppointments ranks doctors by appointment volume.
func TopDoctorsByAppointments(doctors []api.Doctor, appointments []api.Appointment) Series {
	perDoctor := make(map[int]float64)
	for _, a := range appointments {
		perDoctor[a.DoctorID]++
	}
	return rankDoctors("Top 5 Doctors by Appointment Volume", doctors, func(d api.Doctor) float64 {
		return perDoctor[d.DoctorID]
	})
}

// TopDoctorsByRevenue ranks doctors by the total of their bills.
func TopDoctorsByRevenue(doctors []api.Doctor, bills []api.Bill) Series {
	perDoctor := make(map[int]float64)
	for _, b := range bills {
		perDoctor[b.DoctorID] += b.Amount.Float64()
	}
	s := rankDoctors("Top 5 Doctors by Revenue Generated", doctors, func(d api.Doctor) float64 {
		return perDoctor[d.DoctorID]
	})
	s.Currency = true
	return s
}

// AgeDistribution buckets patients into 0-18, 19-35, 36-50, 51-65 and 65+.
func AgeDistribution(patients []api.Patient) Series {
	labels := []string{"0-18", "19-35", "36-50", "51-65", "65+"}
	c := counter{}
	for _, p := range patients {
		switch {
		case p.Age <= 18:
			c.add(labels[0], 1)
		case p.Age <= 35:
			c.add(labels[1], 1)
		case p.Age <= 50:
			c.add(labels[2], 1)
		case p.Age <= 65:
			c.add(labels[3], 1)
		default:
			c.add(labels[4], 1)
		}
	}
	return c.ordered("Patient Age Distribution", KindBar, labels)
}

// TopPatientsByVisits ranks patient names by appointment count.
func TopPatientsByVisits(appointments []api.Appointment) Series {
	c := counter{}
	for _, a := range appointments {
		c.add(labelOr(a.PatientName, "Unknown"), 1)
	}
	return c.top("Top 5 Patients by Appointments", KindBar, topN)
}
