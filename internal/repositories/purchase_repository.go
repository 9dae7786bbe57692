package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bartab_backend/internal/models"

	"github.com/lib/pq"
)

// PurchaseRepository defines the interface for restocking records.
type PurchaseRepository interface {
	CreatePurchase(executor SQLExecutor, purchase *models.Purchase) (int64, error)
	GetPurchaseByID(id int64) (*models.Purchase, error)
	GetPurchases(filters models.PurchaseFilters) ([]models.Purchase, int, error)
}

type purchaseRepository struct {
	db *sql.DB
}

// NewPurchaseRepository creates a new instance of PurchaseRepository.
func NewPurchaseRepository(db *sql.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) CreatePurchase(executor SQLExecutor, purchase *models.Purchase) (int64, error) {
	query := `INSERT INTO purchases (product_id, quantity, unit_price, day_of_order, staff_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`

	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		purchase.ProductID, purchase.Quantity, purchase.UnitPrice, purchase.DayOfOrder,
		purchase.StaffID, purchase.CreatedAt,
	).Scan(&purchase.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating purchase (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating purchase: %v", ErrDatabaseError, err)
	}
	return purchase.ID, nil
}

func (r *purchaseRepository) GetPurchaseByID(id int64) (*models.Purchase, error) {
	purchase := &models.Purchase{}
	query := `SELECT id, product_id, quantity, unit_price, day_of_order, staff_id, created_at
	          FROM purchases WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&purchase.ID, &purchase.ProductID, &purchase.Quantity, &purchase.UnitPrice,
		&purchase.DayOfOrder, &purchase.StaffID, &purchase.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting purchase by ID %d: %v", ErrDatabaseError, id, err)
	}
	return purchase, nil
}

func (r *purchaseRepository) GetPurchases(filters models.PurchaseFilters) ([]models.Purchase, int, error) {
	purchases := []models.Purchase{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT
            pu.id, pu.product_id, pu.quantity, pu.unit_price, pu.day_of_order,
            pu.staff_id, pu.created_at,
            p.name as product_name,
            COUNT(*) OVER() as total_count
        FROM purchases pu
        JOIN products p ON pu.product_id = p.id
    `)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.ProductID != nil {
		conditions = append(conditions, fmt.Sprintf("pu.product_id = $%d", argCounter))
		args = append(args, *filters.ProductID)
		argCounter++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY pu.created_at DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filters.PageSize)
		argCounter++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying purchases: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var pu models.Purchase
		var productName sql.NullString
		err := rows.Scan(
			&pu.ID, &pu.ProductID, &pu.Quantity, &pu.UnitPrice, &pu.DayOfOrder,
			&pu.StaffID, &pu.CreatedAt,
			&productName, &totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning purchase: %v", ErrDatabaseError, err)
		}
		if productName.Valid {
			name := productName.String
			pu.ProductName = &name
		}
		purchases = append(purchases, pu)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating purchase rows: %v", ErrDatabaseError, err)
	}
	return purchases, totalCount, nil
}
