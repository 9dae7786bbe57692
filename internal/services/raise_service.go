package services

import (
	"errors"
	"fmt"

	"bartab_backend/internal/models"
	"bartab_backend/internal/repositories"
	"bartab_backend/pkg/utils"
)

var (
	ErrRaiseUserNotFound = errors.New("user for raise not found")
	ErrRaiseNotFound     = errors.New("raise not found")
	ErrZeroRaiseAmount   = errors.New("raise amount must not be zero")
)

// --- Raise DTOs ---

// CreateRaiseRequest records a manual balance top-up. Amount is signed, in
// minor-currency units; negative amounts correct earlier mistakes. StaffID is
// filled in by the handler from the authenticated session.
type CreateRaiseRequest struct {
	UserID  int64 `json:"user_id" binding:"required"`
	Amount  int64 `json:"amount" binding:"required"`
	IsCash  *bool `json:"is_cash"`
	StaffID int64 `json:"-"`
}

// CreateRaiseResponse returns the balance after the credit was applied.
type CreateRaiseResponse struct {
	Raise      *models.Raise `json:"raise"`
	NewBalance int64         `json:"new_balance"`
}

// --- RaiseService Interface ---
type RaiseService interface {
	CreateRaise(req CreateRaiseRequest) (*CreateRaiseResponse, error)
	GetRaiseByID(raiseID int64) (*models.Raise, error)
	GetRaises(filters models.RaiseFilters) ([]models.Raise, int, error)
}

// --- raiseService Implementation ---
type raiseService struct {
	raiseRepo repositories.RaiseRepository
	userRepo  repositories.UserRepository
	auditRepo repositories.AuditRepository
	db        repositories.DB
}

// NewRaiseService creates a new instance of RaiseService.
func NewRaiseService(
	rr repositories.RaiseRepository,
	ur repositories.UserRepository,
	ar repositories.AuditRepository,
	db repositories.DB,
) RaiseService {
	return &raiseService{raiseRepo: rr, userRepo: ur, auditRepo: ar, db: db}
}

// CreateRaise applies the balance credit and the append-only raise record in
// one transaction.
func (s *raiseService) CreateRaise(req CreateRaiseRequest) (*CreateRaiseResponse, error) {
	if req.Amount == 0 {
		return nil, fmt.Errorf("%w", ErrZeroRaiseAmount)
	}

	user, err := s.userRepo.GetUserByID(req.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: user ID %d", ErrRaiseUserNotFound, req.UserID)
		}
		return nil, fmt.Errorf("failed to fetch user %d: %w", req.UserID, err)
	}
	if user.IsGuest {
		return nil, fmt.Errorf("%w: guests carry no balance of their own, raise the host instead", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	isCash := true
	if req.IsCash != nil {
		isCash = *req.IsCash
	}
	raise := models.Raise{
		UserID:  req.UserID,
		Amount:  req.Amount,
		StaffID: req.StaffID,
		IsCash:  isCash,
	}
	if _, err = s.raiseRepo.CreateRaise(tx, &raise); err != nil {
		return nil, fmt.Errorf("failed to create raise record: %w", err)
	}

	newBalance, err := s.userRepo.AdjustBalance(tx, req.UserID, req.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to credit balance for user %d: %w", req.UserID, err)
	}

	detail := fmt.Sprintf("raise of %d applied to user %d, new balance %d", req.Amount, req.UserID, newBalance)
	entry := models.AuditEntry{
		StaffID:  &req.StaffID,
		Action:   models.AuditActionRaise,
		Entity:   "raise",
		EntityID: &raise.ID,
		Detail:   utils.NewNullString(detail),
	}
	if _, err = s.auditRepo.CreateEntry(tx, &entry); err != nil {
		return nil, fmt.Errorf("failed to record audit entry for raise: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit raise transaction: %w", err)
	}

	return &CreateRaiseResponse{Raise: &raise, NewBalance: newBalance}, nil
}

func (s *raiseService) GetRaiseByID(raiseID int64) (*models.Raise, error) {
	raise, err := s.raiseRepo.GetRaiseByID(raiseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRaiseNotFound
		}
		return nil, fmt.Errorf("failed to get raise by ID: %w", err)
	}
	return raise, nil
}

func (s *raiseService) GetRaises(filters models.RaiseFilters) ([]models.Raise, int, error) {
	raises, totalCount, err := s.raiseRepo.GetRaises(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get raises: %w", err)
	}
	return raises, totalCount, nil
}
