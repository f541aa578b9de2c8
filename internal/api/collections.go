package api

import (
	"fmt"
	"strings"
)

// Collection keys.
const (
	KeyPatients           = "patients"
	KeyDoctors            = "doctors"
	KeyAppointments       = "appointments"
	KeyBills              = "bills"
	KeyMedicalRecords     = "medicalRecords"
	KeyDepartments        = "departments"
	KeyStaff              = "staff"
	KeyInsuranceProviders = "insuranceProviders"
	KeyTestTypes          = "testTypes"
	KeyPatientTests       = "patientTests"
	KeyInventoryItems     = "inventoryItems"
)

// Report and helper paths.
const (
	PathLowStock          = "reports/low-stock"
	PathTodayAppointments = "reports/today-appointments"
	PathHealth            = "health"
)

// Collection describes one entity collection mirrored from the backend.
type Collection struct {
	// Key identifies the collection in the client cache.
	Key string

	// Path is the resource path under the API base URL.
	Path string

	// Title is the human-readable name.
	Title string

	// Aliases are extra names accepted on the command line.
	Aliases []string

	// OptionsPath is the id/name picker endpoint, empty when there is none.
	OptionsPath string
}

//nolint:gochecknoglobals // Static table of backend collections.
var collections = []Collection{
	{Key: KeyPatients, Path: "patients", Title: "Patients", Aliases: []string{"patient"}, OptionsPath: "patients/list"},
	{Key: KeyDoctors, Path: "doctors", Title: "Doctors", Aliases: []string{"doctor"}, OptionsPath: "doctors/list"},
	{Key: KeyAppointments, Path: "appointments", Title: "Appointments", Aliases: []string{"appointment"}, OptionsPath: "appointments/list"},
	{Key: KeyBills, Path: "bills", Title: "Billing", Aliases: []string{"bill", "billing"}},
	{Key: KeyMedicalRecords, Path: "records", Title: "Medical Records", Aliases: []string{"record", "medical-records"}},
	{Key: KeyDepartments, Path: "departments", Title: "Departments", Aliases: []string{"department"}, OptionsPath: "departments/list"},
	{Key: KeyStaff, Path: "staff", Title: "Staff"},
	{Key: KeyInsuranceProviders, Path: "insurance", Title: "Insurance", Aliases: []string{"insurance-providers"}},
	{Key: KeyTestTypes, Path: "tests/types", Title: "Test Types", Aliases: []string{"test-types"}, OptionsPath: "tests/list"},
	{Key: KeyPatientTests, Path: "tests/patients", Title: "Patient Tests", Aliases: []string{"patient-tests"}},
	{Key: KeyInventoryItems, Path: "inventory", Title: "Inventory", Aliases: []string{"inventory-items"}},
}

// Collections returns every known collection in display order.
func Collections() []Collection {
	out := make([]Collection, len(collections))
	copy(out, collections)
	return out
}

// LookupCollection resolves a key, resource path, or alias (case-insensitive).
func LookupCollection(name string) (Collection, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, c := range collections {
		if strings.ToLower(c.Key) == needle || c.Path == needle {
			return c, nil
		}
		for _, alias := range c.Aliases {
			if alias == needle {
				return c, nil
			}
		}
	}
	return Collection{}, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
}

// CollectionNames returns the command-line names of every collection.
func CollectionNames() []string {
	names := make([]string, 0, len(collections))
	for _, c := range collections {
		names = append(names, c.Path)
	}
	return names
}
