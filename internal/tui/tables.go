package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"

	"github.com/rshade/wardboard/internal/api"
	"github.com/rshade/wardboard/internal/charts"
)

// notAvailable stands in for empty cells.
const notAvailable = "N/A"

//nolint:gochecknoglobals // Static column layouts per collection.
var collectionColumns = map[string][]table.Column{
	api.KeyPatients: {
		{Title: "ID", Width: 5}, {Title: "Name", Width: 22}, {Title: "Age", Width: 4},
		{Title: "Gender", Width: 7}, {Title: "Blood", Width: 5}, {Title: "Phone", Width: 15},
		{Title: "Disease", Width: 20},
	},
	api.KeyDoctors: {
		{Title: "ID", Width: 5}, {Title: "Name", Width: 24}, {Title: "Specialization", Width: 20},
		{Title: "Department", Width: 14}, {Title: "Exp", Width: 4}, {Title: "Fee", Width: 10},
	},
	api.KeyAppointments: {
		{Title: "ID", Width: 5}, {Title: "Date", Width: 10}, {Title: "Time", Width: 8},
		{Title: "Patient", Width: 18}, {Title: "Doctor", Width: 20}, {Title: "Status", Width: 10},
		{Title: "Reason", Width: 14},
	},
	api.KeyBills: {
		{Title: "ID", Width: 5}, {Title: "Invoice", Width: 22}, {Title: "Patient", Width: 18},
		{Title: "Amount", Width: 11}, {Title: "Status", Width: 8}, {Title: "Date", Width: 10},
		{Title: "Method", Width: 10},
	},
	api.KeyMedicalRecords: {
		{Title: "ID", Width: 5}, {Title: "Date", Width: 10}, {Title: "Patient", Width: 18},
		{Title: "Doctor", Width: 20}, {Title: "Diagnosis", Width: 22}, {Title: "Treatment", Width: 16},
	},
	api.KeyDepartments: {
		{Title: "ID", Width: 5}, {Title: "Name", Width: 30},
	},
	api.KeyStaff: {
		{Title: "ID", Width: 5}, {Title: "Name", Width: 22}, {Title: "Role", Width: 14},
		{Title: "Department", Width: 14}, {Title: "Phone", Width: 15},
	},
	api.KeyInsuranceProviders: {
		{Title: "ID", Width: 5}, {Title: "Name", Width: 22}, {Title: "Contact", Width: 18},
		{Title: "Phone", Width: 15},
	},
	api.KeyTestTypes: {
		{Title: "ID", Width: 5}, {Title: "Name", Width: 26}, {Title: "Cost", Width: 10},
	},
	api.KeyPatientTests: {
		{Title: "ID", Width: 5}, {Title: "Ordered", Width: 19}, {Title: "Patient", Width: 18},
		{Title: "Test", Width: 20}, {Title: "Doctor", Width: 20}, {Title: "Status", Width: 11},
	},
	api.KeyInventoryItems: {
		{Title: "ID", Width: 5}, {Title: "Name", Width: 20}, {Title: "Category", Width: 10},
		{Title: "Qty", Width: 5}, {Title: "Unit", Width: 6}, {Title: "Price", Width: 9},
		{Title: "Supplier", Width: 14}, {Title: "Expiry", Width: 10},
	},
}

//nolint:gochecknoglobals // Static column layout for the low-stock report.
var lowStockColumns = []table.Column{
	{Title: "ID", Width: 5}, {Title: "Item", Width: 22}, {Title: "Quantity", Width: 9},
	{Title: "Threshold", Width: 10}, {Title: "Unit", Width: 6}, {Title: "Supplier", Width: 16},
}

// Columns returns the table columns of a collection, or nil for unknown keys.
func Columns(key string) []table.Column {
	return collectionColumns[key]
}

// ColumnTitles returns the column headings of a collection.
func ColumnTitles(key string) []string {
	cols := Columns(key)
	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.Title
	}
	return titles
}

// Cells renders an entity as the cells of its collection's table.
func Cells(e api.Entity) []string {
	switch v := e.(type) {
	case api.Patient:
		return []string{idCell(v.PatientID), v.Name, strconv.Itoa(v.Age), v.Gender, orNA(v.BloodType), orNA(v.Phone), orNA(v.Disease)}
	case api.Doctor:
		return []string{
			idCell(v.DoctorID), v.Name, v.Specialization, orNA(v.DepartmentName),
			strconv.Itoa(v.Experience), money(v.Fee),
		}
	case api.Appointment:
		return []string{idCell(v.ID), dateCell(v.Date), v.Time, orNA(v.PatientName), orNA(v.DoctorName), v.Status, orNA(v.Reason)}
	case api.Bill:
		return []string{
			idCell(v.ID), orNA(v.InvoiceNumber), orNA(v.PatientName), money(v.Amount),
			v.Status, dateCell(v.Date), orNA(v.PaymentMethod),
		}
	case api.MedicalRecord:
		return []string{idCell(v.ID), dateCell(v.Date), orNA(v.PatientName), orNA(v.DoctorName), v.Diagnosis, orNA(v.Treatment)}
	case api.Department:
		return []string{idCell(v.ID), v.Name}
	case api.StaffMember:
		return []string{idCell(v.ID), v.Name, v.Role, orNA(v.DepartmentName), orNA(v.Phone)}
	case api.InsuranceProvider:
		return []string{idCell(v.ID), v.Name, orNA(v.Contact), orNA(v.Phone)}
	case api.TestType:
		return []string{idCell(v.ID), v.Name, money(v.Cost)}
	case api.PatientTest:
		return []string{idCell(v.ID), dateTimeCell(v.DateOrdered), orNA(v.PatientName), orNA(v.TestName), orNA(v.DoctorName), v.Status}
	case api.InventoryItem:
		return []string{
			idCell(v.ID), v.Name, v.Category, strconv.Itoa(v.Quantity), v.Unit,
			money(v.Price), orNA(v.Supplier), dateCell(v.ExpiryDate),
		}
	default:
		return []string{idCell(e.RecordID())}
	}
}

func lowStockCells(item api.InventoryItem) []string {
	return []string{
		idCell(item.ID), item.Name, strconv.Itoa(item.Quantity),
		strconv.Itoa(item.Threshold), item.Unit, orNA(item.Supplier),
	}
}

// Matches reports whether an entity matches a search query. Patients match
// on name, id, phone, and disease; other entities match any displayed cell.
func Matches(e api.Entity, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}

	var fields []string
	if p, ok := e.(api.Patient); ok {
		fields = []string{p.Name, strconv.Itoa(p.PatientID), p.Phone, p.Disease}
	} else {
		fields = Cells(e)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Filter returns the entities matching query, in their original order.
func Filter(items []api.Entity, query string) []api.Entity {
	out := make([]api.Entity, 0, len(items))
	for _, e := range items {
		if Matches(e, query) {
			out = append(out, e)
		}
	}
	return out
}

func tableRows(items []api.Entity) []table.Row {
	rows := make([]table.Row, len(items))
	for i, e := range items {
		rows[i] = Cells(e)
	}
	return rows
}

func idCell(n int) string {
	return strconv.Itoa(n)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

// dateCell renders a backend date as YYYY-MM-DD. Unparseable values are
// shown as received.
func dateCell(s string) string {
	if key := api.DateKey(s); key != "" {
		return key
	}
	return orNA(s)
}

func dateTimeCell(s string) string {
	if t, ok := api.ParseDate(s); ok {
		return t.Format(time.DateTime)
	}
	return orNA(s)
}

func money(n api.Number) string {
	return charts.FormatCurrency(n.Float64())
}
