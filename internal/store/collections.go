package store

import (
	"fmt"

	"github.com/rshade/wardboard/internal/api"
	"github.com/rshade/wardboard/internal/charts"
)

// RegisterAll registers every backend collection with its entity type, in
// display order.
func RegisterAll(s *Store) error {
	for _, c := range api.Collections() {
		var err error
		switch c.Key {
		case api.KeyPatients:
			err = Register[api.Patient](s, c.Key, c.Path)
		case api.KeyDoctors:
			err = Register[api.Doctor](s, c.Key, c.Path)
		case api.KeyAppointments:
			err = Register[api.Appointment](s, c.Key, c.Path)
		case api.KeyBills:
			err = Register[api.Bill](s, c.Key, c.Path)
		case api.KeyMedicalRecords:
			err = Register[api.MedicalRecord](s, c.Key, c.Path)
		case api.KeyDepartments:
			err = Register[api.Department](s, c.Key, c.Path)
		case api.KeyStaff:
			err = Register[api.StaffMember](s, c.Key, c.Path)
		case api.KeyInsuranceProviders:
			err = Register[api.InsuranceProvider](s, c.Key, c.Path)
		case api.KeyTestTypes:
			err = Register[api.TestType](s, c.Key, c.Path)
		case api.KeyPatientTests:
			err = Register[api.PatientTest](s, c.Key, c.Path)
		case api.KeyInventoryItems:
			err = Register[api.InventoryItem](s, c.Key, c.Path)
		default:
			err = fmt.Errorf("%w: %s", ErrUnknownKey, c.Key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Entities returns the cached rows of key as entities. When page is true
// only the current page is returned.
func Entities(s *Store, key string, page bool) []api.Entity {
	switch key {
	case api.KeyPatients:
		return entities(s, key, page, Items[api.Patient], PageItems[api.Patient])
	case api.KeyDoctors:
		return entities(s, key, page, Items[api.Doctor], PageItems[api.Doctor])
	case api.KeyAppointments:
		return entities(s, key, page, Items[api.Appointment], PageItems[api.Appointment])
	case api.KeyBills:
		return entities(s, key, page, Items[api.Bill], PageItems[api.Bill])
	case api.KeyMedicalRecords:
		return entities(s, key, page, Items[api.MedicalRecord], PageItems[api.MedicalRecord])
	case api.KeyDepartments:
		return entities(s, key, page, Items[api.Department], PageItems[api.Department])
	case api.KeyStaff:
		return entities(s, key, page, Items[api.StaffMember], PageItems[api.StaffMember])
	case api.KeyInsuranceProviders:
		return entities(s, key, page, Items[api.InsuranceProvider], PageItems[api.InsuranceProvider])
	case api.KeyTestTypes:
		return entities(s, key, page, Items[api.TestType], PageItems[api.TestType])
	case api.KeyPatientTests:
		return entities(s, key, page, Items[api.PatientTest], PageItems[api.PatientTest])
	case api.KeyInventoryItems:
		return entities(s, key, page, Items[api.InventoryItem], PageItems[api.InventoryItem])
	default:
		return nil
	}
}

func entities[T api.Entity](
	s *Store,
	key string,
	page bool,
	all func(*Store, string) []T,
	paged func(*Store, string) []T,
) []api.Entity {
	items := all(s, key)
	if page {
		items = paged(s, key)
	}
	out := make([]api.Entity, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// ChartData snapshots the collections the charts read from. Today's
// appointments come from a report endpoint and are filled in by the caller.
func ChartData(s *Store) charts.Data {
	return charts.Data{
		Patients:     Items[api.Patient](s, api.KeyPatients),
		Doctors:      Items[api.Doctor](s, api.KeyDoctors),
		Appointments: Items[api.Appointment](s, api.KeyAppointments),
		Bills:        Items[api.Bill](s, api.KeyBills),
		Records:      Items[api.MedicalRecord](s, api.KeyMedicalRecords),
		Departments:  Items[api.Department](s, api.KeyDepartments),
	}
}
