package sandbox

// Row is one stored record. Numbers decoded from request bodies are float64.
type Row map[string]any

// join adds a display field looked up from another table.
type join struct {
	// field on the row that holds the foreign id.
	foreignKey string
	// table is the resource path joined to.
	table string
	// from is the field copied from the joined row.
	from string
	// as is the name the copied value is exposed under.
	as string
}

// resource describes one collection served by the sandbox.
type resource struct {
	path     string
	title    string
	idField  string
	required []string
	list     []string
	aliases  map[string]string
	joins    []join
	defaults func(db *DB, row Row)

	createMessage string
	deleteMessage string
}

func (r *resource) createdMessage() string {
	if r.createMessage != "" {
		return r.createMessage
	}
	return r.title + " added successfully"
}

func (r *resource) deletedMessage() string {
	if r.deleteMessage != "" {
		return r.deleteMessage
	}
	return r.title + " deleted successfully"
}

func (r *resource) notFound() string {
	return r.title + " not found"
}

// Resource paths.
const (
	pathPatients     = "patients"
	pathDoctors      = "doctors"
	pathAppointments = "appointments"
	pathBills        = "bills"
	pathRecords      = "records"
	pathDepartments  = "departments"
	pathStaff        = "staff"
	pathInsurance    = "insurance"
	pathTestTypes    = "tests/types"
	pathPatientTests = "tests/patients"
	pathInventory    = "inventory"
)

// Layouts used for generated dates.
const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
	stampLayout    = "20060102"
)

func patientJoin(as string) join {
	return join{foreignKey: "patient_id", table: pathPatients, from: "name", as: as}
}

func doctorJoin(as string) join {
	return join{foreignKey: "doctor_id", table: pathDoctors, from: "name", as: as}
}

func departmentJoin() join {
	return join{foreignKey: "department_id", table: pathDepartments, from: "name", as: "departmentName"}
}

// resources returns the served collections in registration order.
func resources() []*resource {
	return []*resource{
		{
			path:     pathPatients,
			title:    "Patient",
			idField:  "patient_id",
			required: []string{"name", "age", "gender"},
			list:     []string{"patient_id", "name", "age", "gender", "blood_type", "phone", "email", "disease", "registrationDate"},
			defaults: func(db *DB, row Row) {
				setDefault(row, "registrationDate", db.now().Format(dateTimeLayout))
			},
		},
		{
			path:     pathDoctors,
			title:    "Doctor",
			idField:  "doctor_id",
			required: []string{"name", "specialization", "consultation_fee"},
			list: []string{
				"doctor_id", "name", "specialization", "department_id", "experience", "fee",
				"departmentName", "phone", "email", "availability", "bio",
			},
			aliases: map[string]string{"consultation_fee": "fee"},
			joins:   []join{departmentJoin()},
		},
		{
			path:     pathAppointments,
			title:    "Appointment",
			idField:  "id",
			required: []string{"patient_id", "doctor_id", "date", "time"},
			list: []string{
				"id", "date", "time", "status", "reason", "patient_id", "patientName",
				"doctor_id", "doctorName", "specialization",
			},
			joins: []join{
				patientJoin("patientName"),
				doctorJoin("doctorName"),
				{foreignKey: "doctor_id", table: pathDoctors, from: "specialization", as: "specialization"},
			},
			defaults: func(_ *DB, row Row) {
				setDefault(row, "status", "Scheduled")
				setDefault(row, "duration", 30)
			},
			createMessage: "Appointment scheduled successfully",
			deleteMessage: "Appointment canceled successfully",
		},
		{
			path:     pathBills,
			title:    "Bill",
			idField:  "id",
			required: []string{"patient_id", "amount"},
			list: []string{
				"id", "invoiceNumber", "amount", "status", "date", "paymentMethod",
				"patient_id", "patientName", "doctor_id", "doctorName",
			},
			aliases: map[string]string{"payment_method": "paymentMethod", "invoice_number": "invoiceNumber"},
			joins:   []join{patientJoin("patientName"), doctorJoin("doctorName")},
			defaults: func(db *DB, row Row) {
				now := db.now()
				setDefault(row, "status", "Unpaid")
				setDefault(row, "date", now.Format(dateLayout))
				setDefault(row, "due_date", now.AddDate(0, 0, 30).Format(dateLayout))
				setDefault(row, "invoiceNumber", invoiceNumber(now, intOf(row["patient_id"])))
			},
			createMessage: "Bill generated successfully",
		},
		{
			path:     pathRecords,
			title:    "Medical record",
			idField:  "id",
			required: []string{"patient_id", "diagnosis"},
			list: []string{
				"id", "diagnosis", "date", "treatment", "prescription", "notes",
				"patient_id", "patientName", "doctor_id", "doctorName",
			},
			joins: []join{patientJoin("patientName"), doctorJoin("doctorName")},
			defaults: func(db *DB, row Row) {
				setDefault(row, "date", db.now().Format(dateLayout))
			},
		},
		{
			path:     pathDepartments,
			title:    "Department",
			idField:  "id",
			required: []string{"name"},
			list:     []string{"id", "name"},
		},
		{
			path:     pathStaff,
			title:    "Staff member",
			idField:  "id",
			required: []string{"name", "role"},
			list:     []string{"id", "name", "role", "department_id", "phone", "email", "departmentName"},
			joins:    []join{departmentJoin()},
		},
		{
			path:     pathInsurance,
			title:    "Insurance provider",
			idField:  "id",
			required: []string{"name"},
			list:     []string{"id", "name", "contact", "phone"},
		},
		{
			path:     pathTestTypes,
			title:    "Test type",
			idField:  "id",
			required: []string{"name", "cost"},
			list:     []string{"id", "name", "cost"},
		},
		{
			path:     pathPatientTests,
			title:    "Patient test",
			idField:  "id",
			required: []string{"patient_id", "test_id"},
			list: []string{
				"id", "dateOrdered", "status", "patient_id", "patientName",
				"doctor_id", "doctorName", "test_id", "testName",
			},
			aliases: map[string]string{"date_ordered": "dateOrdered"},
			joins: []join{
				patientJoin("patientName"),
				doctorJoin("doctorName"),
				{foreignKey: "test_id", table: pathTestTypes, from: "name", as: "testName"},
			},
			defaults: func(db *DB, row Row) {
				setDefault(row, "status", "Ordered")
				setDefault(row, "dateOrdered", db.now().Format(dateTimeLayout))
			},
		},
		{
			path:     pathInventory,
			title:    "Inventory item",
			idField:  "id",
			required: []string{"name", "category", "quantity", "unit", "price"},
			list:     []string{"id", "name", "category", "quantity", "unit", "price", "supplier", "expiryDate", "threshold"},
			aliases:  map[string]string{"expiry_date": "expiryDate"},
			defaults: func(_ *DB, row Row) {
				setDefault(row, "threshold", 10)
			},
		},
	}
}

func setDefault(row Row, key string, v any) {
	if cur, ok := row[key]; !ok || cur == nil || cur == "" {
		row[key] = v
	}
}
