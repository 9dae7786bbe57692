package services

import (
	"errors"
	"fmt"

	"bartab_backend/internal/models"
	"bartab_backend/internal/repositories"
	"bartab_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrStaffInactive      = errors.New("staff account is deactivated")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// --- Auth DTOs ---

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	Staff        *models.Staff `json:"staff"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// --- AuthService Interface ---
type AuthService interface {
	Login(req LoginRequest) (*LoginResponse, error)
	RefreshToken(req RefreshRequest) (*RefreshResponse, error)
	GetProfile(staffID int64) (*models.Staff, error)
}

// --- authService Implementation ---
type authService struct {
	staffRepo repositories.StaffRepository
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(sr repositories.StaffRepository) AuthService {
	return &authService{staffRepo: sr}
}

func (s *authService) Login(req LoginRequest) (*LoginResponse, error) {
	staff, err := s.staffRepo.GetStaffByUsername(req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up staff member: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !staff.Active {
		return nil, ErrStaffInactive
	}

	accessToken, err := utils.GenerateAccessToken(staff.ID, staff.Username, staff.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := utils.GenerateRefreshToken(staff.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Staff:        staff,
	}, nil
}

// RefreshToken re-resolves the staff member so role changes and
// deactivations take effect on the next refresh.
func (s *authService) RefreshToken(req RefreshRequest) (*RefreshResponse, error) {
	claims, err := utils.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	staff, err := s.staffRepo.GetStaffByID(claims.StaffID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up staff member: %w", err)
	}
	if !staff.Active {
		return nil, ErrStaffInactive
	}

	accessToken, err := utils.GenerateAccessToken(staff.ID, staff.Username, staff.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &RefreshResponse{AccessToken: accessToken}, nil
}

func (s *authService) GetProfile(staffID int64) (*models.Staff, error) {
	staff, err := s.staffRepo.GetStaffByID(staffID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to get staff profile: %w", err)
	}
	return staff, nil
}
