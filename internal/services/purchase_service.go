package services

import (
	"errors"
	"fmt"
	"time"

	"bartab_backend/internal/models"
	"bartab_backend/internal/repositories"
	"bartab_backend/pkg/utils"
)

var ErrPurchaseProductNotFound = errors.New("product for purchase not found")

// --- Purchase DTOs ---

// CreatePurchaseRequest records a restock delivery. UnitPrice is what the bar
// paid per unit, in minor-currency units. StaffID comes from the session.
type CreatePurchaseRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
	UnitPrice int64 `json:"unit_price" binding:"min=0"`
	StaffID   int64 `json:"-"`
}

// --- PurchaseService Interface ---
type PurchaseService interface {
	CreatePurchase(req CreatePurchaseRequest) (*models.Purchase, error)
	GetPurchases(filters models.PurchaseFilters) ([]models.Purchase, int, error)
}

// --- purchaseService Implementation ---
type purchaseService struct {
	purchaseRepo repositories.PurchaseRepository
	productRepo  repositories.ProductRepository
	auditRepo    repositories.AuditRepository
	db           repositories.DB
	loc          *time.Location
	cutoffHour   int
	now          func() time.Time
}

// NewPurchaseService creates a new instance of PurchaseService.
func NewPurchaseService(
	pr repositories.PurchaseRepository,
	prodRepo repositories.ProductRepository,
	ar repositories.AuditRepository,
	db repositories.DB,
	loc *time.Location,
	cutoffHour int,
) PurchaseService {
	return &purchaseService{
		purchaseRepo: pr,
		productRepo:  prodRepo,
		auditRepo:    ar,
		db:           db,
		loc:          loc,
		cutoffHour:   cutoffHour,
		now:          time.Now,
	}
}

// CreatePurchase inserts the restock record and increments product stock in
// one transaction. The purchase is stamped with the same business-day rule
// as orders.
func (s *purchaseService) CreatePurchase(req CreatePurchaseRequest) (*models.Purchase, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if req.UnitPrice < 0 {
		return nil, fmt.Errorf("%w: unit price must not be negative", ErrValidation)
	}

	product, err := s.productRepo.GetProductByID(req.ProductID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: product ID %d", ErrPurchaseProductNotFound, req.ProductID)
		}
		return nil, fmt.Errorf("failed to fetch product %d: %w", req.ProductID, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now()
	purchase := models.Purchase{
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		UnitPrice:  req.UnitPrice,
		DayOfOrder: utils.BusinessDay(now, s.loc, s.cutoffHour),
		StaffID:    req.StaffID,
		CreatedAt:  now,
	}
	if _, err = s.purchaseRepo.CreatePurchase(tx, &purchase); err != nil {
		return nil, fmt.Errorf("failed to create purchase record: %w", err)
	}

	newStock, err := s.productRepo.IncrementStock(tx, req.ProductID, req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to increment stock for product %d: %w", req.ProductID, err)
	}

	detail := fmt.Sprintf("restocked %s (ID %d) by %d, stock now %d", product.Name, product.ID, req.Quantity, newStock)
	entry := models.AuditEntry{
		StaffID:  &req.StaffID,
		Action:   models.AuditActionRestock,
		Entity:   "purchase",
		EntityID: &purchase.ID,
		Detail:   utils.NewNullString(detail),
	}
	if _, err = s.auditRepo.CreateEntry(tx, &entry); err != nil {
		return nil, fmt.Errorf("failed to record audit entry for purchase: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit purchase transaction: %w", err)
	}
	return &purchase, nil
}

func (s *purchaseService) GetPurchases(filters models.PurchaseFilters) ([]models.Purchase, int, error) {
	purchases, totalCount, err := s.purchaseRepo.GetPurchases(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get purchases: %w", err)
	}
	return purchases, totalCount, nil
}
