package staff

import "time"

// Staff roles. These mirror the realm roles in Keycloak and the keys
// in permissions.yml.
const (
	RoleAdmin      = "ADMIN"
	RoleReception  = "RECEPTION"
	RoleDoctor     = "DOCTOR"
	RoleNurse      = "NURSE"
	RoleLabTech    = "LAB_TECH"
	RolePharmacist = "PHARMACIST"
	RoleBilling    = "BILLING"
)

// ValidRoles lists every assignable staff role.
var ValidRoles = map[string]bool{
	RoleAdmin: true, RoleReception: true, RoleDoctor: true, RoleNurse: true,
	RoleLabTech: true, RolePharmacist: true, RoleBilling: true,
}

// CreateStaffRequest provisions a staff member. The account is created
// in Keycloak first, then mirrored locally.
type CreateStaffRequest struct {
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Password      string `json:"password" validate:"required"`
	Role          string `json:"role" validate:"required"`
	Department    string `json:"department,omitempty"`
	LicenseNumber string `json:"license_number,omitempty"`
	Phone         string `json:"phone,omitempty"`
}

// UpdateStaffRequest updates local directory fields. Role and account
// state changes go through Keycloak.
type UpdateStaffRequest struct {
	FirstName     *string `json:"first_name,omitempty"`
	LastName      *string `json:"last_name,omitempty"`
	Department    *string `json:"department,omitempty"`
	LicenseNumber *string `json:"license_number,omitempty"`
	Phone         *string `json:"phone,omitempty"`
}

// StaffResponse represents staff data returned to clients
type StaffResponse struct {
	ID             string     `json:"id"`
	KeycloakUserID string     `json:"keycloak_user_id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Role           string     `json:"role"`
	Department     string     `json:"department,omitempty"`
	LicenseNumber  string     `json:"license_number,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// ResetPasswordRequest sets a new password through the Keycloak admin
// API. Temporary passwords force a change at next login.
type ResetPasswordRequest struct {
	Password  string `json:"password" validate:"required"`
	Temporary bool   `json:"temporary"`
}

// CreateShiftRequest schedules a shift for a staff member
type CreateShiftRequest struct {
	StaffID   string    `json:"staff_id" validate:"required"`
	Ward      string    `json:"ward,omitempty"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

// ShiftResponse represents a scheduled shift
type ShiftResponse struct {
	ID        string    `json:"id"`
	StaffID   string    `json:"staff_id"`
	Ward      string    `json:"ward,omitempty"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
}

// ListFilter narrows staff listings.
type ListFilter struct {
	Role       string
	Department string
	Search     string
	ActiveOnly bool
}

// ShiftListFilter narrows shift listings.
type ShiftListFilter struct {
	StaffID string
	Ward    string
	// Day restricts results to shifts starting within the given
	// calendar day (UTC) when non-zero.
	Day time.Time
}
