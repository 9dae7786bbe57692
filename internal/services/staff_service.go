package services

import (
	"errors"
	"fmt"
	"strings"

	"bartab_backend/internal/models"
	"bartab_backend/internal/repositories"
	"bartab_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var (
	ErrStaffNotFound     = errors.New("staff member not found")
	ErrStaffUsernameUsed = errors.New("staff username already exists")
	ErrInvalidRole       = errors.New("invalid staff role")
)

// --- Staff DTOs ---

type CreateStaffRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type UpdateStaffRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	Active   *bool   `json:"active"`
}

// --- StaffService Interface ---
type StaffService interface {
	CreateStaff(req CreateStaffRequest) (*models.Staff, error)
	GetStaffByID(staffID int64) (*models.Staff, error)
	GetStaffMembers(page, pageSize int) ([]models.Staff, int, error)
	UpdateStaff(staffID int64, req UpdateStaffRequest) (*models.Staff, error)
	DeactivateStaff(staffID int64) error
}

// --- staffService Implementation ---
type staffService struct {
	staffRepo repositories.StaffRepository
	db        repositories.DB
}

// NewStaffService creates a new instance of StaffService.
func NewStaffService(sr repositories.StaffRepository, db repositories.DB) StaffService {
	return &staffService{staffRepo: sr, db: db}
}

func validRole(role string) bool {
	return role == models.RoleAdmin || role == models.RoleBartender
}

func (s *staffService) CreateStaff(req CreateStaffRequest) (*models.Staff, error) {
	if !utils.IsValidPasswordLength(req.Password, minPasswordLength) {
		return nil, fmt.Errorf("%w: password too short", ErrValidation)
	}
	if !validRole(req.Role) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, req.Role)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	staff := models.Staff{
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: string(hashed),
		FullName:     strings.TrimSpace(req.FullName),
		Role:         req.Role,
		Active:       true,
	}
	if _, err := s.staffRepo.CreateStaff(s.db, &staff); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrStaffUsernameUsed
		}
		return nil, fmt.Errorf("failed to create staff member: %w", err)
	}
	return &staff, nil
}

func (s *staffService) GetStaffByID(staffID int64) (*models.Staff, error) {
	staff, err := s.staffRepo.GetStaffByID(staffID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to get staff member by ID: %w", err)
	}
	return staff, nil
}

func (s *staffService) GetStaffMembers(page, pageSize int) ([]models.Staff, int, error) {
	staffMembers, totalCount, err := s.staffRepo.GetStaffMembers(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get staff members: %w", err)
	}
	return staffMembers, totalCount, nil
}

func (s *staffService) UpdateStaff(staffID int64, req UpdateStaffRequest) (*models.Staff, error) {
	staff, err := s.GetStaffByID(staffID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		if utils.IsEmpty(*req.Username) {
			return nil, fmt.Errorf("%w: username cannot be empty", ErrValidation)
		}
		staff.Username = strings.TrimSpace(*req.Username)
	}
	if req.Password != nil {
		if !utils.IsValidPasswordLength(*req.Password, minPasswordLength) {
			return nil, fmt.Errorf("%w: password too short", ErrValidation)
		}
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, fmt.Errorf("failed to hash password: %w", hashErr)
		}
		staff.PasswordHash = string(hashed)
	}
	if req.FullName != nil {
		staff.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Role != nil {
		if !validRole(*req.Role) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRole, *req.Role)
		}
		staff.Role = *req.Role
	}
	if req.Active != nil {
		staff.Active = *req.Active
	}

	if err := s.staffRepo.UpdateStaff(s.db, staff); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrStaffUsernameUsed
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to update staff member: %w", err)
	}
	return s.GetStaffByID(staffID)
}

func (s *staffService) DeactivateStaff(staffID int64) error {
	if err := s.staffRepo.DeactivateStaff(s.db, staffID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrStaffNotFound
		}
		return fmt.Errorf("failed to deactivate staff member: %w", err)
	}
	return nil
}
