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

// OrderRepository defines the interface for order-related database operations.
type OrderRepository interface {
	CreateOrder(executor SQLExecutor, order *models.Order) (int64, error)
	GetOrderByID(orderID int64) (*models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error)
	DeleteOrder(executor SQLExecutor, orderID int64) (int64, error)

	CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (int64, error)
	GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error)
	DeleteOrderItemsByOrderID(executor SQLExecutor, orderID int64) (int64, error)

	RevenueByDay(from, to time.Time) ([]models.RevenueBucket, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// --- Order Methods ---

func (r *orderRepository) CreateOrder(executor SQLExecutor, order *models.Order) (int64, error) {
	query := `INSERT INTO orders (payer_id, guest_id, staff_id, total, day_of_order, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`

	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		order.PayerID, order.GuestID, order.StaffID, order.Total, order.DayOfOrder, order.CreatedAt,
	).Scan(&order.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating order: %v", ErrDatabaseError, err)
	}
	return order.ID, nil
}

func (r *orderRepository) GetOrderByID(orderID int64) (*models.Order, error) {
	order := &models.Order{}
	query := `SELECT id, payer_id, guest_id, staff_id, total, day_of_order, created_at
	          FROM orders
	          WHERE id = $1`
	err := r.db.QueryRow(query, orderID).Scan(
		&order.ID, &order.PayerID, &order.GuestID, &order.StaffID, &order.Total,
		&order.DayOfOrder, &order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order by ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return order, nil
}

func (r *orderRepository) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	orders := []models.Order{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT
            o.id, o.payer_id, o.guest_id, o.staff_id, o.total, o.day_of_order, o.created_at,
            p.name as payer_name,
            g.name as guest_name,
            s.full_name as staff_name,
            COUNT(*) OVER() as total_count
        FROM orders o
        JOIN users p ON o.payer_id = p.id
        LEFT JOIN users g ON o.guest_id = g.id
        JOIN staff_members s ON o.staff_id = s.id
    `)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.PayerID != nil {
		conditions = append(conditions, fmt.Sprintf("o.payer_id = $%d", argCounter))
		args = append(args, *filters.PayerID)
		argCounter++
	}
	if filters.StaffID != nil {
		conditions = append(conditions, fmt.Sprintf("o.staff_id = $%d", argCounter))
		args = append(args, *filters.StaffID)
		argCounter++
	}
	if filters.Day != nil && *filters.Day != "" {
		parsedDay, err := time.Parse("2006-01-02", *filters.Day)
		if err == nil {
			conditions = append(conditions, fmt.Sprintf("o.day_of_order = $%d", argCounter))
			args = append(args, parsedDay)
			argCounter++
		}
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY o.created_at DESC")

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
		return nil, 0, fmt.Errorf("%w: querying orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Order
		var payerName, guestName, staffName sql.NullString

		err := rows.Scan(
			&o.ID, &o.PayerID, &o.GuestID, &o.StaffID, &o.Total, &o.DayOfOrder, &o.CreatedAt,
			&payerName, &guestName, &staffName,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
		}

		if payerName.Valid {
			name := payerName.String
			o.PayerName = &name
		}
		if guestName.Valid {
			name := guestName.String
			o.GuestName = &name
		}
		if staffName.Valid {
			name := staffName.String
			o.StaffName = &name
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating order rows: %v", ErrDatabaseError, err)
	}
	return orders, totalCount, nil
}

func (r *orderRepository) DeleteOrder(executor SQLExecutor, orderID int64) (int64, error) {
	result, err := executor.Exec(`DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for deleting order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		return 0, ErrNotFound
	}
	return rowsAffected, nil
}

// --- OrderItem Methods ---

func (r *orderRepository) CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (int64, error) {
	query := `INSERT INTO order_items (order_id, product_id, quantity, unit_price, total_price, sale_event_id)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`

	err := executor.QueryRow(query,
		item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice, item.SaleEventID,
	).Scan(&item.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating order item (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating order item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

func (r *orderRepository) GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	query := `
		SELECT
		    oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price,
		    oi.total_price, oi.sale_event_id,
		    p.name as product_name
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = $1
		ORDER BY oi.id`

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying order items for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		var productName sql.NullString

		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice,
			&item.TotalPrice, &item.SaleEventID,
			&productName,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning order item for order ID %d: %v", ErrDatabaseError, orderID, err)
		}
		if productName.Valid {
			name := productName.String
			item.ProductName = &name
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating order item rows for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return items, nil
}

func (r *orderRepository) DeleteOrderItemsByOrderID(executor SQLExecutor, orderID int64) (int64, error) {
	result, err := executor.Exec(`DELETE FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting order items for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for deleting order items for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return rowsAffected, nil
}

// --- Reporting ---

// RevenueByDay buckets order revenue by the stored day_of_order stamp. Orders
// are stamped through the business-day rule at creation, so the report and
// the transaction list always agree on which day a sale belongs to.
func (r *orderRepository) RevenueByDay(from, to time.Time) ([]models.RevenueBucket, error) {
	buckets := []models.RevenueBucket{}
	query := `SELECT day_of_order, COUNT(*), COALESCE(SUM(total), 0)
	          FROM orders
	          WHERE day_of_order BETWEEN $1 AND $2
	          GROUP BY day_of_order
	          ORDER BY day_of_order`
	rows, err := r.db.Query(query, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: querying revenue by day: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var b models.RevenueBucket
		if err := rows.Scan(&b.Day, &b.OrderCount, &b.Revenue); err != nil {
			return nil, fmt.Errorf("%w: scanning revenue bucket: %v", ErrDatabaseError, err)
		}
		buckets = append(buckets, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating revenue rows: %v", ErrDatabaseError, err)
	}
	return buckets, nil
}
