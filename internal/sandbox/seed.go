package sandbox

import (
	"fmt"
	"maps"
	"math/rand"
	"time"
)

// SeedConfig controls the volume of generated data.
type SeedConfig struct {
	Patients     int   `json:"patients"`
	Doctors      int   `json:"doctors"`
	Appointments int   `json:"appointments"`
	Bills        int   `json:"bills"`
	Records      int   `json:"records"`
	Staff        int   `json:"staff"`
	PatientTests int   `json:"patientTests"`
	Seed         int64 `json:"seed"`
}

// DefaultSeedConfig returns enough data to fill several pages per table.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		Patients:     25,
		Doctors:      8,
		Appointments: 40,
		Bills:        30,
		Records:      20,
		Staff:        12,
		PatientTests: 15,
		Seed:         42,
	}
}

//nolint:gochecknoglobals // Static name and code pools for synthetic data.
var (
	firstNames      = []string{"Ava", "Liam", "Maya", "Noah", "Zara", "Omar", "Iris", "Theo", "Lena", "Ravi", "Nora", "Kofi"}
	lastNames       = []string{"Okafor", "Lindqvist", "Tanaka", "Moreau", "Haddad", "Kowalski", "Reyes", "Singh", "Byrne", "Novak"}
	genders         = []string{"Male", "Female", "Other"}
	bloodTypes      = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
	diseases        = []string{"Hypertension", "Diabetes, type 2", "Asthma", "Migraine", "Arthritis", "Flu", ""}
	departmentNames = []string{"Cardiology", "Neurology", "Pediatrics", "Orthopedics", "Emergency", "Radiology"}
	specializations = []string{"Cardiologist", "Neurologist", "Pediatrician", "Orthopedic Surgeon", "Emergency Physician", "Radiologist"}
	staffRoles      = []string{"Nurse", "Receptionist", "Technician", "Pharmacist", "Administrator"}
	appointmentStat = []string{"Scheduled", "Completed", "Completed", "Cancelled", "No-Show"}
	reasons         = []string{"Checkup", "Follow-up", "Consultation", "Vaccination", ""}
	billStatuses    = []string{"Paid", "Paid", "Unpaid", "Overdue"}
	paymentMethods  = []string{"Card", "Cash", "Insurance"}
	diagnoses       = []string{"Hypertension, stage 1", "Bronchitis", "Fracture, left wrist", "Migraine", "Sprain"}
	treatments      = []string{"Medication", "Physiotherapy", "Cast, rest", "Observation"}
	prescriptions   = []string{"Lisinopril 10mg", "Amoxicillin 500mg", "Ibuprofen 400mg", ""}
	appointmentTime = []string{"09:00:00", "09:30:00", "10:00:00", "11:15:00", "14:00:00", "15:45:00"}
	testStatuses    = []string{"Ordered", "In Progress", "Completed"}
	insurers        = []Row{
		{"name": "MediCare Plus", "contact": "Jane Roe", "phone": "(555) 010-2000"},
		{"name": "HealthFirst", "contact": "John Doe", "phone": "(555) 010-3000"},
		{"name": "CareShield", "contact": "Ana Lima", "phone": "(555) 010-4000"},
	}
	testTypes = []Row{
		{"name": "Complete Blood Count", "cost": "25.00"},
		{"name": "Lipid Panel", "cost": "40.00"},
		{"name": "X-Ray", "cost": "120.00"},
		{"name": "MRI", "cost": "850.00"},
		{"name": "Urinalysis", "cost": "15.50"},
	}
	inventory = []Row{
		{"name": "Gauze Pads", "category": "Supplies", "quantity": 4, "unit": "box", "price": "6.50", "supplier": "MedSupply Co", "threshold": 10},
		{"name": "Syringes 5ml", "category": "Supplies", "quantity": 300, "unit": "piece", "price": "0.20", "supplier": "MedSupply Co", "threshold": 100},
		{"name": "Paracetamol 500mg", "category": "Medicine", "quantity": 12, "unit": "pack", "price": "3.10", "supplier": "PharmaOne", "threshold": 20},
		{"name": "Gloves (M)", "category": "Supplies", "quantity": 0, "unit": "box", "price": "8.00", "supplier": "SafeHands", "threshold": 15},
		{"name": "Saline 1L", "category": "Medicine", "quantity": 80, "unit": "bag", "price": "2.75", "supplier": "PharmaOne", "threshold": 30},
		{"name": "Thermometers", "category": "Equipment", "quantity": 10, "unit": "piece", "price": "14.00", "supplier": "MediTools", "threshold": 10},
	}
)

// generator produces deterministic synthetic rows.
type generator struct {
	rng *rand.Rand
	now time.Time
}

// newGenerator returns a generator seeded for reproducibility. If seed is 0
// a time-based seed is chosen.
func newGenerator(seed int64, now time.Time) *generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &generator{rng: rand.New(rand.NewSource(seed)), now: now} //nolint:gosec // Synthetic data only.
}

func (g *generator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

func (g *generator) name() string {
	return g.pick(firstNames) + " " + g.pick(lastNames)
}

func (g *generator) phone() string {
	return fmt.Sprintf("(%03d) %03d-%04d", 200+g.rng.Intn(800), 200+g.rng.Intn(800), g.rng.Intn(10000))
}

// around returns a date between back days ago and ahead days from now.
func (g *generator) around(back, ahead int) time.Time {
	return g.now.AddDate(0, 0, g.rng.Intn(back+ahead+1)-back)
}

func (g *generator) money(minimum, spread int) string {
	return fmt.Sprintf("%d.%02d", minimum+g.rng.Intn(spread), g.rng.Intn(100))
}

// Seed fills db with synthetic data. It is meant for an empty DB; seeding
// twice appends a second batch.
func Seed(db *DB, cfg SeedConfig) error {
	g := newGenerator(cfg.Seed, db.now())

	insert := func(path string, row Row) (int, error) {
		id, _, err := db.Insert(path, row)
		if err != nil {
			return 0, fmt.Errorf("seeding %s: %w", path, err)
		}
		return id, nil
	}

	var deptIDs []int
	for _, name := range departmentNames {
		id, err := insert(pathDepartments, Row{"name": name})
		if err != nil {
			return err
		}
		deptIDs = append(deptIDs, id)
	}

	var doctorIDs []int
	for i := 0; i < cfg.Doctors; i++ {
		d := i % len(deptIDs)
		id, err := insert(pathDoctors, Row{
			"name":             "Dr. " + g.name(),
			"specialization":   specializations[d],
			"consultation_fee": g.money(60, 220),
			"department_id":    deptIDs[d],
			"experience":       1 + g.rng.Intn(30),
			"phone":            g.phone(),
			"availability":     "Mon-Fri",
		})
		if err != nil {
			return err
		}
		doctorIDs = append(doctorIDs, id)
	}

	var patientIDs []int
	for i := 0; i < cfg.Patients; i++ {
		registered := g.around(180, 0)
		id, err := insert(pathPatients, Row{
			"name":             g.name(),
			"age":              1 + g.rng.Intn(90),
			"gender":           g.pick(genders),
			"blood_type":       g.pick(bloodTypes),
			"phone":            g.phone(),
			"email":            fmt.Sprintf("patient%d@example.org", i+1),
			"disease":          g.pick(diseases),
			"registrationDate": registered.Format(dateTimeLayout),
		})
		if err != nil {
			return err
		}
		patientIDs = append(patientIDs, id)
	}

	if len(patientIDs) > 0 && len(doctorIDs) > 0 {
		if err := seedClinical(g, cfg, insert, patientIDs, doctorIDs); err != nil {
			return err
		}
	}

	for i := 0; i < cfg.Staff; i++ {
		if _, err := insert(pathStaff, Row{
			"name":          g.name(),
			"role":          g.pick(staffRoles),
			"department_id": deptIDs[g.rng.Intn(len(deptIDs))],
			"phone":         g.phone(),
		}); err != nil {
			return err
		}
	}

	for _, row := range insurers {
		if _, err := insert(pathInsurance, maps.Clone(row)); err != nil {
			return err
		}
	}
	for _, row := range inventory {
		if _, err := insert(pathInventory, maps.Clone(row)); err != nil {
			return err
		}
	}
	return nil
}

func seedClinical(g *generator, cfg SeedConfig, insert func(string, Row) (int, error), patientIDs, doctorIDs []int) error {
	patient := func() int { return patientIDs[g.rng.Intn(len(patientIDs))] }
	doctor := func() int { return doctorIDs[g.rng.Intn(len(doctorIDs))] }

	for i := 0; i < cfg.Appointments; i++ {
		day := g.around(60, 7)
		// Every fourth appointment lands today so the dashboard has something to show.
		if i%4 == 0 {
			day = g.now
		}
		status := g.pick(appointmentStat)
		if day.After(g.now) {
			status = "Scheduled"
		}
		if _, err := insert(pathAppointments, Row{
			"patient_id": patient(),
			"doctor_id":  doctor(),
			"date":       day.Format(dateLayout),
			"time":       g.pick(appointmentTime),
			"status":     status,
			"reason":     g.pick(reasons),
		}); err != nil {
			return err
		}
	}

	for i := 0; i < cfg.Bills; i++ {
		pid := patient()
		status := g.pick(billStatuses)
		row := Row{
			"patient_id":    pid,
			"doctor_id":     doctor(),
			"amount":        g.money(40, 900),
			"status":        status,
			"date":          g.around(150, 0).Format(dateLayout),
			"invoiceNumber": fmt.Sprintf("INV-%s-%04d-%02d", g.now.Format(stampLayout), pid, i),
		}
		if status == "Paid" {
			row["paymentMethod"] = g.pick(paymentMethods)
		}
		if _, err := insert(pathBills, row); err != nil {
			return err
		}
	}

	for i := 0; i < cfg.Records; i++ {
		if _, err := insert(pathRecords, Row{
			"patient_id":   patient(),
			"doctor_id":    doctor(),
			"diagnosis":    g.pick(diagnoses),
			"treatment":    g.pick(treatments),
			"prescription": g.pick(prescriptions),
			"date":         g.around(120, 0).Format(dateLayout),
		}); err != nil {
			return err
		}
	}

	var testIDs []int
	for _, tt := range testTypes {
		id, err := insert(pathTestTypes, maps.Clone(tt))
		if err != nil {
			return err
		}
		testIDs = append(testIDs, id)
	}
	for i := 0; i < cfg.PatientTests; i++ {
		if _, err := insert(pathPatientTests, Row{
			"patient_id":  patient(),
			"doctor_id":   doctor(),
			"test_id":     testIDs[g.rng.Intn(len(testIDs))],
			"status":      g.pick(testStatuses),
			"dateOrdered": g.around(30, 0).Format(dateTimeLayout),
		}); err != nil {
			return err
		}
	}
	return nil
}

// NewSeeded returns a DB seeded with cfg.
func NewSeeded(cfg SeedConfig, opts ...Option) (*DB, error) {
	db := NewDB(opts...)
	if err := Seed(db, cfg); err != nil {
		return nil, err
	}
	return db, nil
}
