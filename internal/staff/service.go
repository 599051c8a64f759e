package staff

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/WailSalutem-Health-Care/front-office-service/internal/auth"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/front-office-service/internal/pagination"
)

// ErrShiftConflict is returned when the staff member already has an
// overlapping shift.
var ErrShiftConflict = errors.New("staff member already has a shift in this window")

type Service struct {
	repo      RepositoryInterface
	keycloak  KeycloakClient
	publisher messaging.PublisherInterface
}

func NewService(repo RepositoryInterface, keycloak KeycloakClient, publisher messaging.PublisherInterface) *Service {
	return &Service{repo: repo, keycloak: keycloak, publisher: publisher}
}

var _ ServiceInterface = (*Service)(nil)

// CreateStaff provisions the account in Keycloak first and mirrors it
// locally. If the local insert fails the Keycloak user is removed so
// the two stores do not drift.
func (s *Service) CreateStaff(ctx context.Context, req CreateStaffRequest) (*StaffResponse, error) {
	if req.Username == "" || req.Email == "" {
		return nil, fmt.Errorf("username and email are required")
	}
	if req.FirstName == "" || req.LastName == "" {
		return nil, fmt.Errorf("first name and last name are required")
	}
	if req.Password == "" {
		return nil, fmt.Errorf("password is required")
	}
	if !ValidRoles[req.Role] {
		return nil, fmt.Errorf("unknown role %q", req.Role)
	}

	role, err := s.keycloak.GetRole(req.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to look up role %s: %w", req.Role, err)
	}

	keycloakUserID, err := s.keycloak.CreateUser(auth.KeycloakUser{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Enabled:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create keycloak user: %w", err)
	}

	if err := s.keycloak.SetPassword(keycloakUserID, req.Password, true); err != nil {
		s.rollbackKeycloakUser(keycloakUserID)
		return nil, fmt.Errorf("failed to set password: %w", err)
	}
	if err := s.keycloak.AssignRole(keycloakUserID, *role); err != nil {
		s.rollbackKeycloakUser(keycloakUserID)
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}

	member, err := s.repo.CreateStaff(ctx, keycloakUserID, req)
	if err != nil {
		s.rollbackKeycloakUser(keycloakUserID)
		return nil, fmt.Errorf("failed to create staff member: %w", err)
	}

	s.publishEvent(ctx, messaging.EventStaffCreated, member)
	return member, nil
}

func (s *Service) rollbackKeycloakUser(userID string) {
	if err := s.keycloak.DeleteUser(userID); err != nil {
		log.Printf("[ERROR] Failed to roll back keycloak user %s: %v", userID, err)
	}
}

func (s *Service) GetStaff(ctx context.Context, id string) (*StaffResponse, error) {
	member, err := s.repo.GetStaff(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	return member, nil
}

func (s *Service) ListStaff(ctx context.Context, filter ListFilter, params pagination.Params) (*PaginatedStaffListResponse, error) {
	params.Validate()

	members, total, err := s.repo.ListStaff(ctx, filter, params.Limit, params.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}

	return &PaginatedStaffListResponse{
		Success: true,
		Staff:   members,
		Meta:    params.CalculateMeta(total),
	}, nil
}

func (s *Service) UpdateStaff(ctx context.Context, id string, req UpdateStaffRequest) (*StaffResponse, error) {
	if req.FirstName != nil && *req.FirstName == "" {
		return nil, fmt.Errorf("first name cannot be empty")
	}
	if req.LastName != nil && *req.LastName == "" {
		return nil, fmt.Errorf("last name cannot be empty")
	}

	member, err := s.repo.UpdateStaff(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update staff member: %w", err)
	}
	return member, nil
}

// ResetPassword sets a new password on the linked Keycloak account.
func (s *Service) ResetPassword(ctx context.Context, id string, req ResetPasswordRequest) error {
	if req.Password == "" {
		return fmt.Errorf("password is required")
	}

	member, err := s.repo.GetStaff(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get staff member: %w", err)
	}

	if err := s.keycloak.SetPassword(member.KeycloakUserID, req.Password, req.Temporary); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return nil
}

// DeactivateStaff disables the Keycloak account and soft-deletes the
// local row.
func (s *Service) DeactivateStaff(ctx context.Context, id string) error {
	member, err := s.repo.GetStaff(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get staff member: %w", err)
	}

	if err := s.keycloak.SetEnabled(member.KeycloakUserID, false); err != nil {
		return fmt.Errorf("failed to disable keycloak account: %w", err)
	}

	if err := s.repo.DeactivateStaff(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate staff member: %w", err)
	}

	s.publishEvent(ctx, messaging.EventStaffDeactivated, member)
	return nil
}

func (s *Service) CreateShift(ctx context.Context, req CreateShiftRequest) (*ShiftResponse, error) {
	if req.StaffID == "" {
		return nil, fmt.Errorf("staff id is required")
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return nil, fmt.Errorf("start and end time are required")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, fmt.Errorf("end time must be after start time")
	}

	// The staff member must exist and be active.
	member, err := s.repo.GetStaff(ctx, req.StaffID)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	if !member.IsActive {
		return nil, fmt.Errorf("cannot schedule a shift for a deactivated staff member")
	}

	conflict, err := s.repo.HasShiftConflict(ctx, req.StaffID, req.StartTime, req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("failed to check shift conflict: %w", err)
	}
	if conflict {
		return nil, ErrShiftConflict
	}

	sh, err := s.repo.CreateShift(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create shift: %w", err)
	}
	return sh, nil
}

func (s *Service) ListShifts(ctx context.Context, filter ShiftListFilter, params pagination.Params) (*PaginatedShiftListResponse, error) {
	params.Validate()

	shifts, total, err := s.repo.ListShifts(ctx, filter, params.Limit, params.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}

	return &PaginatedShiftListResponse{
		Success: true,
		Shifts:  shifts,
		Meta:    params.CalculateMeta(total),
	}, nil
}

func (s *Service) DeleteShift(ctx context.Context, id string) error {
	if err := s.repo.DeleteShift(ctx, id); err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	return nil
}

func (s *Service) publishEvent(ctx context.Context, routingKey string, member *StaffResponse) {
	event := messaging.StaffEvent{
		BaseEvent: messaging.NewBaseEvent(routingKey),
		Data: messaging.StaffData{
			StaffID:        member.ID,
			KeycloakUserID: member.KeycloakUserID,
			Role:           member.Role,
			ChangedAt:      time.Now().UTC(),
		},
	}
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		log.Printf("[ERROR] Failed to publish %s event: %v", routingKey, err)
	}
}
