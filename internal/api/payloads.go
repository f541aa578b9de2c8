package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Create payloads. Pointer fields distinguish "absent" from zero so that
// required means "present", matching the backend's own check.

// PatientPayload is the body of POST /patients.
type PatientPayload struct {
	Name               string  `json:"name"                              validate:"required"`
	Age                *int    `json:"age"                               validate:"required,gte=0"`
	Gender             string  `json:"gender"                            validate:"required"`
	BloodType          string  `json:"blood_type,omitempty"`
	Address            string  `json:"address,omitempty"`
	Phone              string  `json:"phone,omitempty"`
	Email              string  `json:"email,omitempty"                   validate:"omitempty,email"`
	Disease            string  `json:"disease,omitempty"`
	Insurance          *int    `json:"insurance_provider_id,omitempty"`
	Policy             *string `json:"insurance_policy_number,omitempty"`
	PrimaryPhysician   string  `json:"primary_physician,omitempty"`
	EmergencyContact   string  `json:"emergency_contact,omitempty"`
	EmergencyPhone     string  `json:"emergency_phone,omitempty"`
	MedicalHistory     string  `json:"medical_history,omitempty"`
	CurrentMedications string  `json:"current_medications,omitempty"`
	Allergies          string  `json:"allergies,omitempty"`
}

// DoctorPayload is the body of POST /doctors.
type DoctorPayload struct {
	Name              string   `json:"name"                          validate:"required"`
	Specialization    string   `json:"specialization"                validate:"required"`
	ConsultationFee   *float64 `json:"consultation_fee"              validate:"required,gte=0"`
	DepartmentID      *int     `json:"department_id,omitempty"`
	Qualification     string   `json:"qualification,omitempty"`
	YearsOfExperience *int     `json:"years_of_experience,omitempty"`
	Phone             string   `json:"phone,omitempty"`
	Email             string   `json:"email,omitempty"               validate:"omitempty,email"`
	Availability      string   `json:"availability,omitempty"`
	Bio               string   `json:"bio,omitempty"`
}

// AppointmentPayload is the body of POST /appointments.
type AppointmentPayload struct {
	PatientID *int   `json:"patient_id"         validate:"required"`
	DoctorID  *int   `json:"doctor_id"          validate:"required"`
	Date      string `json:"date"               validate:"required,datetime=2006-01-02"`
	Time      string `json:"time"               validate:"required"`
	Duration  *int   `json:"duration,omitempty" validate:"omitempty,gt=0"`
	Reason    string `json:"reason,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Status    string `json:"status,omitempty"   validate:"omitempty,oneof=Scheduled Completed Cancelled No-Show"`
}

// BillPayload is the body of POST /bills.
type BillPayload struct {
	PatientID     *int       `json:"patient_id"         validate:"required"`
	Amount        *float64   `json:"amount"             validate:"required,gte=0"`
	DoctorID      *int       `json:"doctor_id,omitempty"`
	AppointmentID *int       `json:"appointment_id,omitempty"`
	Tax           *float64   `json:"tax,omitempty"`
	Discount      *float64   `json:"discount,omitempty"`
	Date          string     `json:"date,omitempty"     validate:"omitempty,datetime=2006-01-02"`
	DueDate       string     `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Status        string     `json:"status,omitempty"   validate:"omitempty,oneof=Paid Unpaid Overdue"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	Items         []BillItem `json:"items,omitempty"`
}

// BillItem is one free-form line item of a bill, for example
// {"description": "Consultation", "amount": 100}. The backend stores items
// as given.
type BillItem map[string]any

// MedicalRecordPayload is the body of POST /records.
type MedicalRecordPayload struct {
	PatientID        *int   `json:"patient_id"               validate:"required"`
	Diagnosis        string `json:"diagnosis"                validate:"required"`
	DoctorID         *int   `json:"doctor_id,omitempty"`
	VisitType        string `json:"visit_type,omitempty"`
	Symptoms         string `json:"symptoms,omitempty"`
	Treatment        string `json:"treatment,omitempty"`
	Prescription     string `json:"prescription,omitempty"`
	TestsOrdered     string `json:"tests_ordered,omitempty"`
	TestResults      string `json:"test_results,omitempty"`
	Notes            string `json:"notes,omitempty"`
	FollowUpRequired *bool  `json:"follow_up_required,omitempty"`
	FollowUpDate     string `json:"follow_up_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Date             string `json:"date,omitempty"           validate:"omitempty,datetime=2006-01-02"`
}

// DepartmentPayload is the body of POST /departments.
type DepartmentPayload struct {
	Name             string `json:"name"                         validate:"required"`
	HeadOfDepartment string `json:"head_of_department,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Email            string `json:"email,omitempty"              validate:"omitempty,email"`
	Description      string `json:"description,omitempty"`
}

// StaffPayload is the body of POST /staff.
type StaffPayload struct {
	Name         string `json:"name"                    validate:"required"`
	Role         string `json:"role"                    validate:"required"`
	DepartmentID *int   `json:"department_id,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"         validate:"omitempty,email"`
	Address      string `json:"address,omitempty"`
	HireDate     string `json:"hire_date,omitempty"     validate:"omitempty,datetime=2006-01-02"`
}

// InsurancePayload is the body of POST /insurance.
type InsurancePayload struct {
	Name          string `json:"name"                     validate:"required"`
	ContactPerson string `json:"contact_person,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"          validate:"omitempty,email"`
	Address       string `json:"address,omitempty"`
	Website       string `json:"website,omitempty"`
}

// TestTypePayload is the body of POST /tests/types.
type TestTypePayload struct {
	Name                    string   `json:"name"                               validate:"required"`
	Cost                    *float64 `json:"cost"                               validate:"required,gte=0"`
	Description             string   `json:"description,omitempty"`
	PreparationInstructions string   `json:"preparation_instructions,omitempty"`
	TurnaroundTime          string   `json:"turnaround_time,omitempty"`
}

// PatientTestPayload is the body of POST /tests/patients.
type PatientTestPayload struct {
	PatientID     *int   `json:"patient_id"               validate:"required"`
	TestID        *int   `json:"test_id"                  validate:"required"`
	DoctorID      *int   `json:"doctor_id,omitempty"`
	DateOrdered   string `json:"date_ordered,omitempty"   validate:"omitempty,datetime=2006-01-02"`
	DateCompleted string `json:"date_completed,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Results       string `json:"results,omitempty"`
	Status        string `json:"status,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// InventoryPayload is the body of POST /inventory.
type InventoryPayload struct {
	Name          string   `json:"name"                     validate:"required"`
	Category      string   `json:"category"                 validate:"required"`
	Quantity      *int     `json:"quantity"                 validate:"required,gte=0"`
	Unit          string   `json:"unit"                     validate:"required"`
	Price         *float64 `json:"price"                    validate:"required,gte=0"`
	Supplier      string   `json:"supplier,omitempty"`
	ExpiryDate    string   `json:"expiry_date,omitempty"    validate:"omitempty,datetime=2006-01-02"`
	Threshold     *int     `json:"threshold,omitempty"      validate:"omitempty,gte=0"`
	LastRestocked string   `json:"last_restocked,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Location      string   `json:"location,omitempty"`
	Description   string   `json:"description,omitempty"`
}

// newPayload returns an empty create payload for the collection key.
func newPayload(key string) (any, bool) {
	switch key {
	case KeyPatients:
		return &PatientPayload{}, true
	case KeyDoctors:
		return &DoctorPayload{}, true
	case KeyAppointments:
		return &AppointmentPayload{}, true
	case KeyBills:
		return &BillPayload{}, true
	case KeyMedicalRecords:
		return &MedicalRecordPayload{}, true
	case KeyDepartments:
		return &DepartmentPayload{}, true
	case KeyStaff:
		return &StaffPayload{}, true
	case KeyInsuranceProviders:
		return &InsurancePayload{}, true
	case KeyTestTypes:
		return &TestTypePayload{}, true
	case KeyPatientTests:
		return &PatientTestPayload{}, true
	case KeyInventoryItems:
		return &InventoryPayload{}, true
	default:
		return nil, false
	}
}

//nolint:gochecknoglobals // validator caches struct metadata; one instance is shared.
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func payloadValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidatePayload checks a payload struct against its validate tags.
func ValidatePayload(payload any) error {
	err := payloadValidator().Struct(payload)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email address", fe.Field()))
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("field %s must be a YYYY-MM-DD date", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field %s must be one of: %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is invalid", fe.Field()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(msgs, ", "))
}

// DecodeCreatePayload parses raw JSON into the create payload for the
// collection key and validates it. Fields the backend does not accept are
// rejected.
func DecodeCreatePayload(key string, raw []byte) (any, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, ErrEmptyPayload
	}

	payload, ok := newPayload(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, key)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if err := ValidatePayload(payload); err != nil {
		return nil, err
	}
	return payload, nil
}
