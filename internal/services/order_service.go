package services

import (
	"errors"
	"fmt"
	"time"

	"bartab_backend/internal/cache"
	"bartab_backend/internal/models"
	"bartab_backend/internal/repositories"
	"bartab_backend/pkg/utils"
)

// Custom Errors
var (
	ErrProductNotFound   = errors.New("product not found or not available")
	ErrInsufficientStock = errors.New("insufficient stock for product")
	ErrOrderNotFound     = errors.New("order not found")
	ErrPayerNotFound     = errors.New("payer account not found")
	ErrPayerInactive     = errors.New("payer account is deactivated")
	ErrGuestWithoutHost  = errors.New("guest has no host account to bill")
)

// --- Data Transfer Objects (DTOs) ---

// OrderLineRequest is one line of a new order.
type OrderLineRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Count     int   `json:"count" binding:"required,gt=0"`
}

// CreateOrderRequest is used for creating a new order. Exactly one of UserID
// and GuestID must be set; StaffID is filled in by the handler from the
// authenticated session, never from the request body.
type CreateOrderRequest struct {
	UserID  *int64             `json:"user_id"`
	GuestID *int64             `json:"guest_id"`
	Items   []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
	StaffID int64              `json:"-"`
}

// --- OrderService Interface ---
type OrderService interface {
	CreateOrder(req CreateOrderRequest) (*models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error)
	GetOrderByID(orderID int64) (*models.Order, error)
	DeleteOrder(orderID int64, staffID int64) error
}

// --- orderService Implementation ---
type orderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	auditRepo   repositories.AuditRepository
	ranking     *cache.RankingCache
	db          repositories.DB // For managing transactions
	loc         *time.Location
	cutoffHour  int
	now         func() time.Time
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	or repositories.OrderRepository,
	pr repositories.ProductRepository,
	ur repositories.UserRepository,
	ar repositories.AuditRepository,
	ranking *cache.RankingCache,
	db repositories.DB,
	loc *time.Location,
	cutoffHour int,
) OrderService {
	return &orderService{
		orderRepo:   or,
		productRepo: pr,
		userRepo:    ur,
		auditRepo:   ar,
		ranking:     ranking,
		db:          db,
		loc:         loc,
		cutoffHour:  cutoffHour,
		now:         time.Now,
	}
}

// resolvedPayer carries the accounts affected by an order: the account that
// is debited, and the guest account mirroring the spend when the order was
// placed for a guest.
type resolvedPayer struct {
	payer *models.User
	guest *models.User // nil for direct user orders
}

// resolvePayer validates the payer reference. Guest orders bill the guest's
// host; the guest account itself only mirrors the spend.
func (s *orderService) resolvePayer(req CreateOrderRequest) (*resolvedPayer, error) {
	if (req.UserID == nil) == (req.GuestID == nil) {
		return nil, fmt.Errorf("%w: exactly one of user_id and guest_id must be set", ErrValidation)
	}

	if req.GuestID != nil {
		guest, err := s.userRepo.GetUserByID(*req.GuestID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: guest ID %d", ErrPayerNotFound, *req.GuestID)
			}
			return nil, fmt.Errorf("failed to fetch guest %d: %w", *req.GuestID, err)
		}
		if !guest.IsGuest {
			return nil, fmt.Errorf("%w: user %d is not a guest", ErrValidation, guest.ID)
		}
		if !guest.Active {
			return nil, fmt.Errorf("%w: guest ID %d", ErrPayerInactive, guest.ID)
		}
		if guest.HostID == nil {
			return nil, fmt.Errorf("%w: guest ID %d", ErrGuestWithoutHost, guest.ID)
		}
		host, err := s.userRepo.GetUserByID(*guest.HostID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: host ID %d", ErrPayerNotFound, *guest.HostID)
			}
			return nil, fmt.Errorf("failed to fetch host %d: %w", *guest.HostID, err)
		}
		if !host.Active {
			return nil, fmt.Errorf("%w: host ID %d", ErrPayerInactive, host.ID)
		}
		return &resolvedPayer{payer: host, guest: guest}, nil
	}

	user, err := s.userRepo.GetUserByID(*req.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: user ID %d", ErrPayerNotFound, *req.UserID)
		}
		return nil, fmt.Errorf("failed to fetch user %d: %w", *req.UserID, err)
	}
	if user.IsGuest {
		return nil, fmt.Errorf("%w: user %d is a guest, order it via guest_id", ErrValidation, user.ID)
	}
	if !user.Active {
		return nil, fmt.Errorf("%w: user ID %d", ErrPayerInactive, user.ID)
	}
	return &resolvedPayer{payer: user}, nil
}

// recomputePopularity prunes the product's recent-sales window and rewrites
// its popularity score inside the given transaction. Returns the new score so
// callers can mirror it into the ranking cache after commit.
func (s *orderService) recomputePopularity(tx repositories.SQLExecutor, productID int64, now time.Time) (float64, error) {
	windowStart := now.Add(-RecentSalesWindow)
	if _, err := s.productRepo.PruneSaleEvents(tx, productID, windowStart); err != nil {
		return 0, fmt.Errorf("failed to prune sale events for product %d: %w", productID, err)
	}
	recent, err := s.productRepo.RecentQuantity(tx, productID, windowStart)
	if err != nil {
		return 0, fmt.Errorf("failed to sum recent sales for product %d: %w", productID, err)
	}
	total, err := s.productRepo.TotalQuantitySold(tx, productID)
	if err != nil {
		return 0, fmt.Errorf("failed to read lifetime sales for product %d: %w", productID, err)
	}
	score := PopularityScore(recent, total)
	if err := s.productRepo.SetPopularityScore(tx, productID, score); err != nil {
		return 0, fmt.Errorf("failed to persist popularity score for product %d: %w", productID, err)
	}
	return score, nil
}

// --- Method Implementations ---

// CreateOrder settles an order: it validates the payer and every line before
// touching anything, then applies all stock, window, counter and balance
// effects in a single transaction. Stock is decremented with a conditional
// update so two concurrent orders cannot race past zero.
func (s *orderService) CreateOrder(req CreateOrderRequest) (*models.Order, error) {
	payer, err := s.resolvePayer(req)
	if err != nil {
		return nil, err
	}

	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one line", ErrValidation)
	}

	// Resolve every product up front so a missing line cannot leave earlier
	// lines already applied.
	products := make(map[int64]*models.Product, len(req.Items))
	for _, line := range req.Items {
		if line.Count <= 0 {
			return nil, fmt.Errorf("%w: count for product ID %d must be positive", ErrValidation, line.ProductID)
		}
		if _, ok := products[line.ProductID]; ok {
			continue
		}
		product, repoErr := s.productRepo.GetProductByID(line.ProductID)
		if repoErr != nil {
			if errors.Is(repoErr, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: product ID %d", ErrProductNotFound, line.ProductID)
			}
			return nil, fmt.Errorf("failed to fetch product %d: %w", line.ProductID, repoErr)
		}
		if !product.Active {
			return nil, fmt.Errorf("%w: product ID %d", ErrProductNotFound, line.ProductID)
		}
		products[line.ProductID] = product
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock the affected account rows so concurrent settlements against the
	// same payer serialize. The active check above ran outside the
	// transaction, so repeat it under the lock.
	lockedPayer, err := s.userRepo.GetUserForUpdate(tx, payer.payer.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: payer ID %d", ErrPayerNotFound, payer.payer.ID)
		}
		return nil, fmt.Errorf("failed to lock payer %d: %w", payer.payer.ID, err)
	}
	if !lockedPayer.Active {
		return nil, fmt.Errorf("%w: payer ID %d", ErrPayerInactive, lockedPayer.ID)
	}
	if payer.guest != nil {
		if _, err = s.userRepo.GetUserForUpdate(tx, payer.guest.ID); err != nil {
			return nil, fmt.Errorf("failed to lock guest %d: %w", payer.guest.ID, err)
		}
	}

	now := s.now()
	var total int64
	newScores := make(map[int64]float64, len(req.Items))
	orderItemsToCreate := make([]models.OrderItem, 0, len(req.Items))

	for _, line := range req.Items {
		product := products[line.ProductID]

		_, repoErr := s.productRepo.DecrementStock(tx, line.ProductID, line.Count)
		if repoErr != nil {
			if errors.Is(repoErr, repositories.ErrNotFound) {
				// Existence was verified above, so the conditional update can
				// only have missed because the floor check failed.
				return nil, fmt.Errorf("%w %s (ID: %d), requested %d",
					ErrInsufficientStock, product.Name, line.ProductID, line.Count)
			}
			return nil, fmt.Errorf("failed to decrement stock for %s (ID: %d): %w", product.Name, line.ProductID, repoErr)
		}

		event := models.SaleEvent{ProductID: line.ProductID, SaleDate: now, Quantity: line.Count}
		if _, repoErr = s.productRepo.InsertSaleEvent(tx, &event); repoErr != nil {
			return nil, fmt.Errorf("failed to record sale event for product %d: %w", line.ProductID, repoErr)
		}

		if repoErr = s.productRepo.AdjustSaleStats(tx, line.ProductID, 1, line.Count); repoErr != nil {
			return nil, fmt.Errorf("failed to update sale counters for product %d: %w", line.ProductID, repoErr)
		}

		score, scoreErr := s.recomputePopularity(tx, line.ProductID, now)
		if scoreErr != nil {
			return nil, scoreErr
		}
		newScores[line.ProductID] = score

		lineTotal := product.Price * int64(line.Count)
		total += lineTotal
		eventID := event.ID
		orderItemsToCreate = append(orderItemsToCreate, models.OrderItem{
			ProductID:   line.ProductID,
			Quantity:    line.Count,
			UnitPrice:   product.Price,
			TotalPrice:  lineTotal,
			SaleEventID: &eventID,
		})
	}

	// Debit the effective payer. Guest orders debit the host's balance and
	// mirror the spend on the guest's own account.
	if _, err = s.userRepo.AdjustBalance(tx, payer.payer.ID, -total); err != nil {
		return nil, fmt.Errorf("failed to debit payer %d: %w", payer.payer.ID, err)
	}
	if payer.guest != nil {
		if _, err = s.userRepo.AdjustBalance(tx, payer.guest.ID, -total); err != nil {
			return nil, fmt.Errorf("failed to mirror debit on guest %d: %w", payer.guest.ID, err)
		}
		if err = s.userRepo.AdjustOrderStats(tx, payer.guest.ID, 1, total); err != nil {
			return nil, fmt.Errorf("failed to update guest order stats %d: %w", payer.guest.ID, err)
		}
	} else {
		if err = s.userRepo.AdjustOrderStats(tx, payer.payer.ID, 1, total); err != nil {
			return nil, fmt.Errorf("failed to update payer order stats %d: %w", payer.payer.ID, err)
		}
	}

	order := models.Order{
		PayerID:    payer.payer.ID,
		GuestID:    req.GuestID,
		StaffID:    req.StaffID,
		Total:      total,
		DayOfOrder: utils.BusinessDay(now, s.loc, s.cutoffHour),
		CreatedAt:  now,
	}

	createdOrderID, repoErr := s.orderRepo.CreateOrder(tx, &order)
	if repoErr != nil {
		return nil, fmt.Errorf("failed to create order record: %w", repoErr)
	}
	order.ID = createdOrderID

	for i := range orderItemsToCreate {
		orderItemsToCreate[i].OrderID = createdOrderID
		if _, repoErr = s.orderRepo.CreateOrderItem(tx, &orderItemsToCreate[i]); repoErr != nil {
			return nil, fmt.Errorf("failed to create order item (product_id: %d): %w", orderItemsToCreate[i].ProductID, repoErr)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order transaction: %w", err)
	}

	for productID, score := range newScores {
		s.ranking.SetScore(productID, score)
	}

	return s.GetOrderByID(createdOrderID)
}

func (s *orderService) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	orders, totalCount, err := s.orderRepo.GetOrders(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, totalCount, nil
}

func (s *orderService) GetOrderByID(orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID from repository: %w", err)
	}

	items, err := s.orderRepo.GetOrderItemsByOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items for order ID %d: %w", orderID, err)
	}
	order.OrderItems = items
	return order, nil
}

// DeleteOrder reverses an order: stock and counters are restored, the exact
// sale events the order created are removed from the recent-sales window, and
// the payer (and guest mirror) is refunded. Everything runs in one
// transaction.
func (s *orderService) DeleteOrder(orderID int64, staffID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to fetch order for deletion: %w", err)
	}

	orderItems, err := s.orderRepo.GetOrderItemsByOrderID(orderID)
	if err != nil {
		return fmt.Errorf("failed to fetch order items for reversal: %w", err)
	}

	// Same row locks as settlement, so a reversal cannot interleave with a
	// concurrent order against the same account.
	if _, err = s.userRepo.GetUserForUpdate(tx, order.PayerID); err != nil {
		return fmt.Errorf("failed to lock payer %d for refund: %w", order.PayerID, err)
	}
	if order.GuestID != nil {
		if _, err = s.userRepo.GetUserForUpdate(tx, *order.GuestID); err != nil {
			return fmt.Errorf("failed to lock guest %d for refund: %w", *order.GuestID, err)
		}
	}

	now := s.now()
	newScores := make(map[int64]float64, len(orderItems))

	for _, item := range orderItems {
		if _, repoErr := s.productRepo.IncrementStock(tx, item.ProductID, item.Quantity); repoErr != nil {
			return fmt.Errorf("failed to return stock for product ID %d: %w", item.ProductID, repoErr)
		}
		if repoErr := s.productRepo.AdjustSaleStats(tx, item.ProductID, -1, -item.Quantity); repoErr != nil {
			return fmt.Errorf("failed to reverse sale counters for product ID %d: %w", item.ProductID, repoErr)
		}
		if item.SaleEventID != nil {
			repoErr := s.productRepo.DeleteSaleEvent(tx, *item.SaleEventID)
			if repoErr != nil && !errors.Is(repoErr, repositories.ErrNotFound) {
				return fmt.Errorf("failed to remove sale event %d: %w", *item.SaleEventID, repoErr)
			}
			// ErrNotFound means the event already aged out of the 30-day
			// window and was pruned; nothing left to reverse there.
		}
		score, scoreErr := s.recomputePopularity(tx, item.ProductID, now)
		if scoreErr != nil {
			return scoreErr
		}
		newScores[item.ProductID] = score
	}

	// Refund the payer; guest orders also unwind the guest's mirrored spend.
	if _, err = s.userRepo.AdjustBalance(tx, order.PayerID, order.Total); err != nil {
		return fmt.Errorf("failed to refund payer %d: %w", order.PayerID, err)
	}
	if order.GuestID != nil {
		if _, err = s.userRepo.AdjustBalance(tx, *order.GuestID, order.Total); err != nil {
			return fmt.Errorf("failed to refund guest mirror %d: %w", *order.GuestID, err)
		}
		if err = s.userRepo.AdjustOrderStats(tx, *order.GuestID, -1, -order.Total); err != nil {
			return fmt.Errorf("failed to reverse guest order stats %d: %w", *order.GuestID, err)
		}
	} else {
		if err = s.userRepo.AdjustOrderStats(tx, order.PayerID, -1, -order.Total); err != nil {
			return fmt.Errorf("failed to reverse payer order stats %d: %w", order.PayerID, err)
		}
	}

	if _, err = s.orderRepo.DeleteOrderItemsByOrderID(tx, orderID); err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}
	if _, err = s.orderRepo.DeleteOrder(tx, orderID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to delete order: %w", err)
	}

	detail := fmt.Sprintf("order %d reversed, %d refunded to user %d", orderID, order.Total, order.PayerID)
	entry := models.AuditEntry{
		StaffID:   &staffID,
		Action:    models.AuditActionOrderDeleted,
		Entity:    "order",
		EntityID:  &orderID,
		Detail:    utils.NewNullString(detail),
		CreatedAt: now,
	}
	if _, err = s.auditRepo.CreateEntry(tx, &entry); err != nil {
		return fmt.Errorf("failed to record audit entry for order deletion: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order deletion: %w", err)
	}

	for productID, score := range newScores {
		s.ranking.SetScore(productID, score)
	}
	return nil
}
