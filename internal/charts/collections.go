package charts

import (
	"strings"

	"github.com/rshade/wardboard/internal/api"
)

// topN is the cutoff for "top 5" charts.
const topN = 5

// Fee bucket edges for the consultation fee distribution.
const (
	feeLow  = 100
	feeHigh = 200
)

// Data bundles the cached collections the charts read from.
type Data struct {
	Patients     []api.Patient
	Doctors      []api.Doctor
	Appointments []api.Appointment
	Bills        []api.Bill
	Records      []api.MedicalRecord
	Departments  []api.Department
	Today        []api.TodayAppointment
}

// ForCollection returns the charts shown under a collection's table, or nil
// when the collection has none.
func ForCollection(key string, d Data) []Series {
	switch key {
	case api.KeyPatients:
		return PatientCharts(d.Patients)
	case api.KeyDoctors:
		return DoctorCharts(d.Doctors)
	case api.KeyAppointments:
		return AppointmentCharts(d.Appointments)
	case api.KeyBills:
		return BillCharts(d.Bills)
	case api.KeyMedicalRecords:
		return RecordCharts(d.Records, d.Patients)
	default:
		return nil
	}
}

// PatientCharts covers gender, age groups, blood type and registrations.
func PatientCharts(patients []api.Patient) []Series {
	if len(patients) == 0 {
		return nil
	}
	return []Series{
		GenderDistribution(patients),
		AgeGroups(patients),
		BloodTypes(patients),
		Registrations(patients),
	}
}

// GenderDistribution counts patients per gender.
func GenderDistribution(patients []api.Patient) Series {
	c := counter{}
	for _, p := range patients {
		c.add(labelOr(p.Gender, "Unknown"), 1)
	}
	return c.sorted("Patient Gender Distribution", KindPie)
}

// AgeGroups buckets patients into 0-18, 19-35, 36-50 and 51+.
func AgeGroups(patients []api.Patient) Series {
	labels := []string{"0-18", "19-35", "36-50", "51+"}
	c := counter{}
	for _, p := range patients {
		switch {
		case p.Age <= 18:
			c.add(labels[0], 1)
		case p.Age <= 35:
			c.add(labels[1], 1)
		case p.Age <= 50:
			c.add(labels[2], 1)
		default:
			c.add(labels[3], 1)
		}
	}
	return c.ordered("Patient Age Distribution", KindBar, labels)
}

// BloodTypes counts patients per recorded blood type.
func BloodTypes(patients []api.Patient) Series {
	c := counter{}
	for _, p := range patients {
		if p.BloodType != "" {
			c.add(p.BloodType, 1)
		}
	}
	return c.sorted("Patient Blood Type", KindDoughnut)
}

// Registrations counts registrations per day, oldest first.
func Registrations(patients []api.Patient) Series {
	c := counter{}
	for _, p := range patients {
		if key := api.DateKey(p.RegistrationDate); key != "" {
			c.add(key, 1)
		}
	}
	return c.sorted("Patient Registrations Over Time", KindLine)
}

// DoctorCharts covers specializations, departments and fees.
func DoctorCharts(doctors []api.Doctor) []Series {
	if len(doctors) == 0 {
		return nil
	}
	return []Series{
		DoctorsBySpecialization(doctors),
		DoctorsByDepartment(doctors),
		FeeDistribution(doctors),
		AverageFeeByDepartment(doctors),
	}
}

// DoctorsBySpecialization counts doctors per specialization.
func DoctorsBySpecialization(doctors []api.Doctor) Series {
	c := counter{}
	for _, d := range doctors {
		c.add(labelOr(d.Specialization, "Unknown"), 1)
	}
	return c.sorted("Doctor Specializations", KindPie)
}

// DoctorsByDepartment counts doctors per department.
func DoctorsByDepartment(doctors []api.Doctor) Series {
	c := counter{}
	for _, d := range doctors {
		c.add(labelOr(d.DepartmentName, "Unassigned"), 1)
	}
	return c.sorted("Doctors by Department", KindBar)
}

// FeeDistribution buckets consultation fees.
func FeeDistribution(doctors []api.Doctor) Series {
	labels := []string{"< $100", "$100-$200", "> $200"}
	c := counter{}
	for _, d := range doctors {
		fee := d.Fee.Float64()
		switch {
		case fee < feeLow:
			c.add(labels[0], 1)
		case fee <= feeHigh:
			c.add(labels[1], 1)
		default:
			c.add(labels[2], 1)
		}
	}
	return c.ordered("Consultation Fee Distribution", KindBar, labels)
}

// AverageFeeByDepartment averages consultation fees per department.
func AverageFeeByDepartment(doctors []api.Doctor) Series {
	sums, counts := counter{}, counter{}
	for _, d := range doctors {
		dept := labelOr(d.DepartmentName, "Unassigned")
		sums.add(dept, d.Fee.Float64())
		counts.add(dept, 1)
	}
	avg := counter{}
	for dept, sum := range sums {
		avg[dept] = sum / counts[dept]
	}
	s := avg.sorted("Average Fee by Department", KindBar)
	s.Currency = true
	return s
}

// AppointmentCharts covers status, doctors, reasons and the daily trend.
func AppointmentCharts(appointments []api.Appointment) []Series {
	if len(appointments) == 0 {
		return nil
	}
	return []Series{
		AppointmentStatus(appointments),
		TopDoctorsByBookings(appointments),
		TopReasons(appointments),
		AppointmentsOverTime(appointments),
	}
}

// AppointmentStatus counts appointments per status.
func AppointmentStatus(appointments []api.Appointment) Series {
	c := counter{}
	for _, a := range appointments {
		c.add(labelOr(a.Status, "Unknown"), 1)
	}
	return c.sorted("Appointment Status Distribution", KindPie)
}

// TopDoctorsByBookings ranks doctor names by appointment count.
func TopDoctorsByBookings(appointments []api.Appointment) Series {
	c := counter{}
	for _, a := range appointments {
		c.add(labelOr(a.DoctorName, "Unknown"), 1)
	}
	return c.top("Top 5 Doctors by Appointments", KindBar, topN)
}

// TopReasons ranks appointment reasons.
func TopReasons(appointments []api.Appointment) Series {
	c := counter{}
	for _, a := range appointments {
		c.add(labelOr(a.Reason, "Not Specified"), 1)
	}
	return c.top("Top 5 Appointment Reasons", KindDoughnut, topN)
}

// AppointmentsOverTime counts appointments per day, oldest first.
func AppointmentsOverTime(appointments []api.Appointment) Series {
	c := counter{}
	for _, a := range appointments {
		if key := api.DateKey(a.Date); key != "" {
			c.add(key, 1)
		}
	}
	return c.sorted("Appointment Trend Over Time", KindLine)
}

// BillCharts covers status, payment methods, revenue and outstanding totals.
func BillCharts(bills []api.Bill) []Series {
	if len(bills) == 0 {
		return nil
	}
	return []Series{
		BillStatus(bills),
		PaymentMethods(bills),
		RevenueOverTime(bills),
		OutstandingVsPaid(bills),
	}
}

// BillStatus counts bills per status.
func BillStatus(bills []api.Bill) Series {
	c := counter{}
	for _, b := range bills {
		c.add(labelOr(b.Status, "Unknown"), 1)
	}
	return c.sorted("Bill Status Distribution", KindPie)
}

// PaymentMethods counts paid bills per payment method.
func PaymentMethods(bills []api.Bill) Series {
	c := counter{}
	for _, b := range bills {
		if b.Status == StatusPaid {
			c.add(labelOr(b.PaymentMethod, "Unknown"), 1)
		}
	}
	return c.sorted("Paid Bills by Payment Method", KindDoughnut)
}

// RevenueByPaymentMethod sums paid amounts per payment method.
func RevenueByPaymentMethod(bills []api.Bill) Series {
	c := counter{}
	for _, b := range bills {
		if b.Status == StatusPaid {
			c.add(labelOr(b.PaymentMethod, "Unknown"), b.Amount.Float64())
		}
	}
	s := c.sorted("Revenue by Payment Method", KindBar)
	s.Currency = true
	return s
}

// RevenueOverTime sums billed amounts per day, oldest first.
func RevenueOverTime(bills []api.Bill) Series {
	c := counter{}
	for _, b := range bills {
		if key := api.DateKey(b.Date); key != "" {
			c.add(key, b.Amount.Float64())
		}
	}
	s := c.sorted("Revenue Trend Over Time", KindLine)
	s.Currency = true
	return s
}

// OutstandingVsPaid compares unpaid and paid totals.
func OutstandingVsPaid(bills []api.Bill) Series {
	labels := []string{"Outstanding", "Paid"}
	c := counter{}
	for _, b := range bills {
		if b.Status == StatusPaid {
			c.add(labels[1], b.Amount.Float64())
		} else {
			c.add(labels[0], b.Amount.Float64())
		}
	}
	s := c.ordered("Outstanding vs Paid Bills", KindBar, labels)
	s.Currency = true
	return s
}

// RecordCharts covers diagnoses, treatments, prescriptions and conditions.
func RecordCharts(records []api.MedicalRecord, patients []api.Patient) []Series {
	if len(records) == 0 {
		return nil
	}
	return []Series{
		TopDiagnoses(records),
		TopTreatments(records),
		PrescriptionTrend(records),
		RecordsPerDoctor(records),
		RecordsPerMonth(records),
		PatientConditions(patients),
	}
}

// firstTerm returns the first comma-separated term of s.
func firstTerm(s string) string {
	head, _, _ := strings.Cut(s, ",")
	return strings.TrimSpace(head)
}

// TopDiagnoses ranks the primary diagnosis of each record.
func TopDiagnoses(records []api.MedicalRecord) Series {
	c := counter{}
	for _, r := range records {
		c.add(labelOr(firstTerm(r.Diagnosis), "Unknown"), 1)
	}
	return c.top("Top 5 Diagnoses", KindBar, topN)
}

// TopTreatments ranks the primary treatment of each record.
func TopTreatments(records []api.MedicalRecord) Series {
	c := counter{}
	for _, r := range records {
		c.add(labelOr(firstTerm(r.Treatment), "Unknown"), 1)
	}
	return c.top("Top 5 Treatments", KindPie, topN)
}

// PrescriptionTrend counts records carrying a prescription per day.
func PrescriptionTrend(records []api.MedicalRecord) Series {
	c := counter{}
	for _, r := range records {
		if r.Prescription == "" {
			continue
		}
		if key := api.DateKey(r.Date); key != "" {
			c.add(key, 1)
		}
	}
	return c.sorted("Prescription Trend Over Time", KindLine)
}

// RecordsPerDoctor counts records per attending doctor.
func RecordsPerDoctor(records []api.MedicalRecord) Series {
	c := counter{}
	for _, r := range records {
		c.add(labelOr(r.DoctorName, "Unknown"), 1)
	}
	return c.sorted("Records per Doctor", KindBar)
}

// RecordsPerMonth counts records per YYYY-MM.
func RecordsPerMonth(records []api.MedicalRecord) Series {
	c := counter{}
	for _, r := range records {
		if t, ok := api.ParseDate(r.Date); ok {
			c.add(t.Format("2006-01"), 1)
		}
	}
	return c.sorted("Records per Month", KindLine)
}

// PatientConditions ranks the primary disease recorded on patients.
func PatientConditions(patients []api.Patient) Series {
	c := counter{}
	for _, p := range patients {
		if p.Disease != "" {
			c.add(firstTerm(p.Disease), 1)
		}
	}
	return c.top("Top 5 Patient Conditions", KindBar, topN)
}
