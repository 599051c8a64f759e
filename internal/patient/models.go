package patient

import "time"

// CreatePatientRequest represents the request to register a new patient
type CreatePatientRequest struct {
	FirstName             string `json:"first_name" validate:"required"`
	LastName              string `json:"last_name" validate:"required"`
	DateOfBirth           string `json:"date_of_birth"` // Format: YYYY-MM-DD
	Sex                   string `json:"sex"`           // male | female | other | unknown
	Email                 string `json:"email"`
	PhoneNumber           string `json:"phone_number"`
	Address               string `json:"address"`
	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
	Allergies             string `json:"allergies"`
	BloodType             string `json:"blood_type"`
	InsuranceProvider     string `json:"insurance_provider"`
	InsuranceMemberNumber string `json:"insurance_member_number"`
}

// UpdatePatientRequest represents a partial update to a patient record
type UpdatePatientRequest struct {
	FirstName             *string `json:"first_name,omitempty"`
	LastName              *string `json:"last_name,omitempty"`
	DateOfBirth           *string `json:"date_of_birth,omitempty"`
	Sex                   *string `json:"sex,omitempty"`
	Email                 *string `json:"email,omitempty"`
	PhoneNumber           *string `json:"phone_number,omitempty"`
	Address               *string `json:"address,omitempty"`
	EmergencyContactName  *string `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string `json:"emergency_contact_phone,omitempty"`
	Allergies             *string `json:"allergies,omitempty"`
	BloodType             *string `json:"blood_type,omitempty"`
	InsuranceProvider     *string `json:"insurance_provider,omitempty"`
	InsuranceMemberNumber *string `json:"insurance_member_number,omitempty"`
	IsActive              *bool   `json:"is_active,omitempty"`
}

// PatientResponse represents the patient data returned to clients
type PatientResponse struct {
	ID                    string     `json:"id"`
	MRN                   string     `json:"mrn"`
	FirstName             string     `json:"first_name"`
	LastName              string     `json:"last_name"`
	DateOfBirth           *string    `json:"date_of_birth,omitempty"`
	Sex                   string     `json:"sex"`
	Email                 string     `json:"email"`
	PhoneNumber           string     `json:"phone_number"`
	Address               string     `json:"address"`
	EmergencyContactName  string     `json:"emergency_contact_name"`
	EmergencyContactPhone string     `json:"emergency_contact_phone"`
	Allergies             string     `json:"allergies"`
	BloodType             string     `json:"blood_type"`
	InsuranceProvider     string     `json:"insurance_provider"`
	InsuranceMemberNumber string     `json:"insurance_member_number"`
	IsActive              bool       `json:"is_active"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             *time.Time `json:"updated_at,omitempty"`
}
