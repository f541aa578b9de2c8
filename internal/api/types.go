package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Number is a decimal the backend may emit either as a JSON number or as a
// string ("150.00"). Null decodes as zero.
type Number float64

// UnmarshalJSON accepts numbers, numeric strings, and null.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("decoding number %q: %w", s, err)
		}
		*n = Number(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Float64 returns n as a float64.
func (n Number) Float64() float64 {
	return float64(n)
}

//nolint:gochecknoglobals // Layouts the backend is known to emit for dates.
var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
	http.TimeFormat,
	time.RFC1123,
	"2006-01-02T15:04:05",
}

// ParseDate parses a backend date in any of the layouts it emits.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateKey normalizes a backend date to YYYY-MM-DD, or returns "" when it
// cannot be parsed.
func DateKey(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return ""
	}
	return t.Format(time.DateOnly)
}

// Entity is implemented by every collection row.
type Entity interface {
	RecordID() int
}

// Patient is a row of GET /patients.
type Patient struct {
	PatientID        int    `json:"patient_id"`
	Name             string `json:"name"`
	Age              int    `json:"age"`
	Gender           string `json:"gender"`
	BloodType        string `json:"blood_type"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	Disease          string `json:"disease"`
	RegistrationDate string `json:"registrationDate"`
}

// RecordID implements Entity.
func (p Patient) RecordID() int { return p.PatientID }

// Doctor is a row of GET /doctors.
type Doctor struct {
	DoctorID       int    `json:"doctor_id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	DepartmentID   int    `json:"department_id"`
	Experience     int    `json:"experience"`
	Fee            Number `json:"fee"`
	DepartmentName string `json:"departmentName"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Availability   string `json:"availability"`
	Bio            string `json:"bio"`
}

// RecordID implements Entity.
func (d Doctor) RecordID() int { return d.DoctorID }

// Appointment is a row of GET /appointments.
type Appointment struct {
	ID             int    `json:"id"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Status         string `json:"status"`
	Reason         string `json:"reason"`
	PatientID      int    `json:"patient_id"`
	PatientName    string `json:"patientName"`
	DoctorID       int    `json:"doctor_id"`
	DoctorName     string `json:"doctorName"`
	Specialization string `json:"specialization"`
}

// RecordID implements Entity.
func (a Appointment) RecordID() int { return a.ID }

// TodayAppointment is a row of GET /reports/today-appointments.
type TodayAppointment struct {
	ID             int    `json:"id"`
	Time           string `json:"time"`
	Status         string `json:"status"`
	PatientID      int    `json:"patient_id"`
	PatientName    string `json:"patient_name"`
	DoctorID       int    `json:"doctor_id"`
	DoctorName     string `json:"doctor_name"`
	Specialization string `json:"specialization"`
}

// RecordID implements Entity.
func (a TodayAppointment) RecordID() int { return a.ID }

// Bill is a row of GET /bills.
type Bill struct {
	ID            int    `json:"id"`
	InvoiceNumber string `json:"invoiceNumber"`
	Amount        Number `json:"amount"`
	Status        string `json:"status"`
	Date          string `json:"date"`
	PaymentMethod string `json:"paymentMethod"`
	PatientID     int    `json:"patient_id"`
	PatientName   string `json:"patientName"`
	DoctorID      int    `json:"doctor_id"`
	DoctorName    string `json:"doctorName"`
}

// RecordID implements Entity.
func (b Bill) RecordID() int { return b.ID }

// MedicalRecord is a row of GET /records.
type MedicalRecord struct {
	ID           int    `json:"id"`
	Diagnosis    string `json:"diagnosis"`
	Date         string `json:"date"`
	Treatment    string `json:"treatment"`
	Prescription string `json:"prescription"`
	Notes        string `json:"notes"`
	PatientID    int    `json:"patient_id"`
	PatientName  string `json:"patientName"`
	DoctorID     int    `json:"doctor_id"`
	DoctorName   string `json:"doctorName"`
}

// RecordID implements Entity.
func (r MedicalRecord) RecordID() int { return r.ID }

// Department is a row of GET /departments.
type Department struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// RecordID implements Entity.
func (d Department) RecordID() int { return d.ID }

// StaffMember is a row of GET /staff.
type StaffMember struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	DepartmentID   int    `json:"department_id"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	DepartmentName string `json:"departmentName"`
}

// RecordID implements Entity.
func (s StaffMember) RecordID() int { return s.ID }

// InsuranceProvider is a row of GET /insurance.
type InsuranceProvider struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
}

// RecordID implements Entity.
func (i InsuranceProvider) RecordID() int { return i.ID }

// TestType is a row of GET /tests/types.
type TestType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Cost Number `json:"cost"`
}

// RecordID implements Entity.
func (t TestType) RecordID() int { return t.ID }

// PatientTest is a row of GET /tests/patients.
type PatientTest struct {
	ID          int    `json:"id"`
	DateOrdered string `json:"dateOrdered"`
	Status      string `json:"status"`
	PatientID   int    `json:"patient_id"`
	PatientName string `json:"patientName"`
	DoctorID    int    `json:"doctor_id"`
	DoctorName  string `json:"doctorName"`
	TestID      int    `json:"test_id"`
	TestName    string `json:"testName"`
}

// RecordID implements Entity.
func (p PatientTest) RecordID() int { return p.ID }

// InventoryItem is a row of GET /inventory and GET /reports/low-stock.
type InventoryItem struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Quantity   int    `json:"quantity"`
	Unit       string `json:"unit"`
	Price      Number `json:"price"`
	Supplier   string `json:"supplier"`
	ExpiryDate string `json:"expiryDate"`
	Threshold  int    `json:"threshold"`
}

// RecordID implements Entity.
func (i InventoryItem) RecordID() int { return i.ID }

// LowStock reports whether the item is at or below its reorder threshold.
func (i InventoryItem) LowStock() bool {
	return i.Quantity <= i.Threshold
}

// Option is a row of the */list helper endpoints used for pickers. Only
// appointments/list rows carry the patient, doctor, date and time fields and
// have no name.
type Option struct {
	ID             int    `json:"id"`
	Name           string `json:"name,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	Cost           Number `json:"cost,omitempty"`
	PatientID      int    `json:"patient_id,omitempty"`
	DoctorID       int    `json:"doctor_id,omitempty"`
	Date           string `json:"date,omitempty"`
	Time           string `json:"time,omitempty"`
}

// Label returns the name of the option, or "date time" for appointments.
func (o Option) Label() string {
	if o.Name != "" || o.Date == "" {
		return o.Name
	}
	date := DateKey(o.Date)
	if date == "" {
		date = o.Date
	}
	return strings.TrimSpace(date + " " + o.Time)
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Healthy reports whether the backend declared itself healthy.
func (h HealthStatus) Healthy() bool {
	return h.Status == "healthy"
}

// MutationResult is the body of a successful POST, PUT, or DELETE.
type MutationResult struct {
	Message       string `json:"message"`
	ID            int    `json:"id,omitempty"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
}
