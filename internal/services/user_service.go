package services

import (
	"errors"
	"fmt"
	"strings"

	"bartab_backend/internal/models"
	"bartab_backend/internal/repositories"
	"bartab_backend/pkg/utils"
)

// --- Custom Service Errors for User ---
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrHostNotFound  = errors.New("host user not found")
	ErrHostIsGuest   = errors.New("a guest cannot host another guest")
	ErrUsernameTaken = errors.New("username already exists")
)

// --- User DTOs ---

type CreateUserRequest struct {
	Name     string  `json:"name" binding:"required"`
	Username *string `json:"username"`
}

// CreateGuestRequest creates a guest account billed to a host user.
type CreateGuestRequest struct {
	Name   string `json:"name" binding:"required"`
	HostID int64  `json:"host_id" binding:"required"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Active   *bool   `json:"active"`
	HostID   *int64  `json:"host_id"`
}

// --- UserService Interface ---
type UserService interface {
	CreateUser(req CreateUserRequest) (*models.User, error)
	CreateGuest(req CreateGuestRequest) (*models.User, error)
	GetUserByID(userID int64) (*models.User, error)
	GetUsers(filters models.UserFilters) ([]models.User, int, error)
	GetGuests(hostID int64) ([]models.User, error)
	UpdateUser(userID int64, req UpdateUserRequest) (*models.User, error)
	AnonymizeUser(userID int64, staffID int64) error
}

// --- userService Implementation ---
type userService struct {
	userRepo  repositories.UserRepository
	auditRepo repositories.AuditRepository
	db        repositories.DB
}

// NewUserService creates a new instance of UserService.
func NewUserService(ur repositories.UserRepository, ar repositories.AuditRepository, db repositories.DB) UserService {
	return &userService{userRepo: ur, auditRepo: ar, db: db}
}

func (s *userService) CreateUser(req CreateUserRequest) (*models.User, error) {
	if utils.IsEmpty(req.Name) {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}

	user := models.User{
		Name:     strings.TrimSpace(req.Name),
		Username: req.Username,
		Active:   true,
	}
	if _, err := s.userRepo.CreateUser(s.db, &user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func (s *userService) CreateGuest(req CreateGuestRequest) (*models.User, error) {
	if utils.IsEmpty(req.Name) {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}

	host, err := s.userRepo.GetUserByID(req.HostID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: host ID %d", ErrHostNotFound, req.HostID)
		}
		return nil, fmt.Errorf("failed to fetch host %d: %w", req.HostID, err)
	}
	if host.IsGuest {
		return nil, fmt.Errorf("%w: host ID %d", ErrHostIsGuest, req.HostID)
	}
	if !host.Active {
		return nil, fmt.Errorf("%w: host account %d is deactivated", ErrValidation, req.HostID)
	}

	guest := models.User{
		Name:    strings.TrimSpace(req.Name),
		IsGuest: true,
		Active:  true,
		HostID:  &host.ID,
	}
	if _, err := s.userRepo.CreateUser(s.db, &guest); err != nil {
		return nil, fmt.Errorf("failed to create guest: %w", err)
	}
	return &guest, nil
}

func (s *userService) GetUserByID(userID int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

func (s *userService) GetUsers(filters models.UserFilters) ([]models.User, int, error) {
	users, totalCount, err := s.userRepo.GetUsers(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get users: %w", err)
	}
	return users, totalCount, nil
}

func (s *userService) GetGuests(hostID int64) ([]models.User, error) {
	if _, err := s.GetUserByID(hostID); err != nil {
		return nil, err
	}
	guests, err := s.userRepo.GetGuestsByHost(hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guests for host %d: %w", hostID, err)
	}
	return guests, nil
}

func (s *userService) UpdateUser(userID int64, req UpdateUserRequest) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if utils.IsEmpty(*req.Name) {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Username != nil {
		user.Username = req.Username
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if req.HostID != nil {
		if !user.IsGuest {
			return nil, fmt.Errorf("%w: only guests can have a host", ErrValidation)
		}
		host, hostErr := s.userRepo.GetUserByID(*req.HostID)
		if hostErr != nil {
			if errors.Is(hostErr, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: host ID %d", ErrHostNotFound, *req.HostID)
			}
			return nil, fmt.Errorf("failed to fetch host %d: %w", *req.HostID, hostErr)
		}
		if host.IsGuest {
			return nil, fmt.Errorf("%w: host ID %d", ErrHostIsGuest, *req.HostID)
		}
		user.HostID = req.HostID
	}

	if err := s.userRepo.UpdateUser(s.db, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUsernameTaken
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return s.GetUserByID(userID)
}

// AnonymizeUser scrubs the account in place instead of deleting it, so
// orders and raises keep a valid reference. The action is audited.
func (s *userService) AnonymizeUser(userID int64, staffID int64) error {
	if _, err := s.GetUserByID(userID); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	placeholder := fmt.Sprintf("deleted-user-%d", userID)
	if err := s.userRepo.AnonymizeUser(tx, userID, placeholder); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to anonymize user %d: %w", userID, err)
	}

	detail := fmt.Sprintf("user %d anonymized", userID)
	entry := models.AuditEntry{
		StaffID:  &staffID,
		Action:   models.AuditActionAnonymized,
		Entity:   "user",
		EntityID: &userID,
		Detail:   utils.NewNullString(detail),
	}
	if _, err := s.auditRepo.CreateEntry(tx, &entry); err != nil {
		return fmt.Errorf("failed to record audit entry for anonymize: %w", err)
	}

	return tx.Commit()
}
