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

// ProductRepository defines the interface for catalog, stock and
// recent-sales-window operations.
type ProductRepository interface {
	// Category methods
	CreateCategory(executor SQLExecutor, category *models.Category) (int64, error)
	GetCategoryByID(id int64) (*models.Category, error)
	GetCategories() ([]models.Category, error)
	UpdateCategory(executor SQLExecutor, category *models.Category) error
	DeleteCategory(executor SQLExecutor, id int64) error

	// Product methods
	CreateProduct(executor SQLExecutor, product *models.Product) (int64, error)
	GetProductByID(id int64) (*models.Product, error)
	GetProducts(filters models.ProductFilters) ([]models.Product, int, error)
	GetProductIDs() ([]int64, error)
	GetPopularProducts(limit int) ([]models.Product, error)
	GetLowStockProducts(threshold int) ([]models.Product, error)
	UpdateProduct(executor SQLExecutor, product *models.Product) error
	DeactivateProduct(executor SQLExecutor, id int64) error

	// Stock and sales counters
	DecrementStock(executor SQLExecutor, productID int64, quantity int) (int, error)
	IncrementStock(executor SQLExecutor, productID int64, quantity int) (int, error)
	AdjustSaleStats(executor SQLExecutor, productID int64, orderDelta, quantityDelta int) error
	SetPopularityScore(executor SQLExecutor, productID int64, score float64) error

	// Recent-sales window
	InsertSaleEvent(executor SQLExecutor, event *models.SaleEvent) (int64, error)
	DeleteSaleEvent(executor SQLExecutor, eventID int64) error
	PruneSaleEvents(executor SQLExecutor, productID int64, cutoff time.Time) (int64, error)
	RecentQuantity(executor SQLExecutor, productID int64, since time.Time) (int, error)
	TotalQuantitySold(executor SQLExecutor, productID int64) (int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// --- Category Methods ---

func (r *productRepository) CreateCategory(executor SQLExecutor, category *models.Category) (int64, error) {
	query := `INSERT INTO categories (name, sort_order, created_at, updated_at)
	          VALUES ($1, $2, $3, $4) RETURNING id`
	now := time.Now()
	err := executor.QueryRow(query, category.Name, category.SortOrder, now, now).Scan(&category.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, fmt.Errorf("%w: creating category (constraint: %s)", ErrDuplicateKey, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating category: %v", ErrDatabaseError, err)
	}
	return category.ID, nil
}

func (r *productRepository) GetCategoryByID(id int64) (*models.Category, error) {
	category := &models.Category{}
	query := `SELECT id, name, sort_order, created_at, updated_at FROM categories WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&category.ID, &category.Name, &category.SortOrder, &category.CreatedAt, &category.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting category by ID %d: %v", ErrDatabaseError, id, err)
	}
	return category, nil
}

func (r *productRepository) GetCategories() ([]models.Category, error) {
	categories := []models.Category{}
	query := `SELECT id, name, sort_order, created_at, updated_at FROM categories ORDER BY sort_order, name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying categories: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning category: %v", ErrDatabaseError, err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating category rows: %v", ErrDatabaseError, err)
	}
	return categories, nil
}

func (r *productRepository) UpdateCategory(executor SQLExecutor, category *models.Category) error {
	query := `UPDATE categories SET name = $1, sort_order = $2, updated_at = $3 WHERE id = $4`
	result, err := executor.Exec(query, category.Name, category.SortOrder, time.Now(), category.ID)
	if err != nil {
		return fmt.Errorf("%w: updating category ID %d: %v", ErrDatabaseError, category.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for category update ID %d: %v", ErrDatabaseError, category.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) DeleteCategory(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return fmt.Errorf("%w: category %d is referenced by products", ErrForeignKeyViolation, id)
		}
		return fmt.Errorf("%w: deleting category ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for category delete ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Product Methods ---

const productColumns = `id, name, category_id, price, stock, total_orders, total_quantity_sold, popularity_score, active, created_at, updated_at`

func scanProduct(s scanner, p *models.Product) error {
	return s.Scan(
		&p.ID, &p.Name, &p.CategoryID, &p.Price, &p.Stock, &p.TotalOrders,
		&p.TotalQuantitySold, &p.PopularityScore, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
}

func (r *productRepository) CreateProduct(executor SQLExecutor, product *models.Product) (int64, error) {
	query := `INSERT INTO products (name, category_id, price, stock, active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	now := time.Now()
	err := executor.QueryRow(query,
		product.Name, product.CategoryID, product.Price, product.Stock, product.Active, now, now,
	).Scan(&product.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating product (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating product: %v", ErrDatabaseError, err)
	}
	return product.ID, nil
}

func (r *productRepository) GetProductByID(id int64) (*models.Product, error) {
	product := &models.Product{}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	err := scanProduct(r.db.QueryRow(query, id), product)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting product by ID %d: %v", ErrDatabaseError, id, err)
	}
	return product, nil
}

func (r *productRepository) GetProducts(filters models.ProductFilters) ([]models.Product, int, error) {
	products := []models.Product{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT
            p.id, p.name, p.category_id, p.price, p.stock, p.total_orders,
            p.total_quantity_sold, p.popularity_score, p.active, p.created_at, p.updated_at,
            c.name as category_name,
            COUNT(*) OVER() as total_count
        FROM products p
        LEFT JOIN categories c ON p.category_id = c.id
    `)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", argCounter))
		args = append(args, *filters.CategoryID)
		argCounter++
	}
	if filters.Active != nil {
		conditions = append(conditions, fmt.Sprintf("p.active = $%d", argCounter))
		args = append(args, *filters.Active)
		argCounter++
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("p.name ILIKE $%d", argCounter))
		args = append(args, "%"+*filters.Search+"%")
		argCounter++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY p.name ASC")

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
		return nil, 0, fmt.Errorf("%w: querying products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Product
		var categoryName sql.NullString
		err := rows.Scan(
			&p.ID, &p.Name, &p.CategoryID, &p.Price, &p.Stock, &p.TotalOrders,
			&p.TotalQuantitySold, &p.PopularityScore, &p.Active, &p.CreatedAt, &p.UpdatedAt,
			&categoryName, &totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning product: %v", ErrDatabaseError, err)
		}
		if p.CategoryID != nil && categoryName.Valid {
			p.Category = &models.Category{ID: *p.CategoryID, Name: categoryName.String}
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating product rows: %v", ErrDatabaseError, err)
	}
	return products, totalCount, nil
}

func (r *productRepository) GetProductIDs() ([]int64, error) {
	ids := []int64{}
	rows, err := r.db.Query(`SELECT id FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying product IDs: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scanning product ID: %v", ErrDatabaseError, err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating product ID rows: %v", ErrDatabaseError, err)
	}
	return ids, nil
}

func (r *productRepository) GetPopularProducts(limit int) ([]models.Product, error) {
	products := []models.Product{}
	query := `SELECT ` + productColumns + ` FROM products
	          WHERE active = TRUE
	          ORDER BY popularity_score DESC, name ASC
	          LIMIT $1`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying popular products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("%w: scanning popular product: %v", ErrDatabaseError, err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating popular product rows: %v", ErrDatabaseError, err)
	}
	return products, nil
}

func (r *productRepository) GetLowStockProducts(threshold int) ([]models.Product, error) {
	products := []models.Product{}
	query := `SELECT ` + productColumns + ` FROM products
	          WHERE active = TRUE AND stock <= $1
	          ORDER BY stock ASC, name ASC`
	rows, err := r.db.Query(query, threshold)
	if err != nil {
		return nil, fmt.Errorf("%w: querying low stock products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("%w: scanning low stock product: %v", ErrDatabaseError, err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating low stock rows: %v", ErrDatabaseError, err)
	}
	return products, nil
}

func (r *productRepository) UpdateProduct(executor SQLExecutor, product *models.Product) error {
	query := `UPDATE products
	          SET name = $1, category_id = $2, price = $3, stock = $4, active = $5, updated_at = $6
	          WHERE id = $7`
	result, err := executor.Exec(query,
		product.Name, product.CategoryID, product.Price, product.Stock, product.Active, time.Now(), product.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating product ID %d: %v", ErrDatabaseError, product.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for product update ID %d: %v", ErrDatabaseError, product.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) DeactivateProduct(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`UPDATE products SET active = FALSE, updated_at = $1 WHERE id = $2`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: deactivating product ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for product deactivate ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Stock and sales counters ---

// DecrementStock applies an atomic conditional decrement. The WHERE clause is
// the floor check: concurrent orders cannot race stock below zero. Returns
// ErrNotFound when no row matched, which callers that have already verified
// the product exists should read as insufficient stock.
func (r *productRepository) DecrementStock(executor SQLExecutor, productID int64, quantity int) (int, error) {
	var newStock int
	query := `UPDATE products
	          SET stock = stock - $1, updated_at = $2
	          WHERE id = $3 AND stock >= $1
	          RETURNING stock`
	err := executor.QueryRow(query, quantity, time.Now(), productID).Scan(&newStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%w: decrementing stock for product ID %d: %v", ErrDatabaseError, productID, err)
	}
	return newStock, nil
}

func (r *productRepository) IncrementStock(executor SQLExecutor, productID int64, quantity int) (int, error) {
	var newStock int
	query := `UPDATE products SET stock = stock + $1, updated_at = $2 WHERE id = $3 RETURNING stock`
	err := executor.QueryRow(query, quantity, time.Now(), productID).Scan(&newStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%w: incrementing stock for product ID %d: %v", ErrDatabaseError, productID, err)
	}
	return newStock, nil
}

func (r *productRepository) AdjustSaleStats(executor SQLExecutor, productID int64, orderDelta, quantityDelta int) error {
	query := `UPDATE products
	          SET total_orders = total_orders + $1, total_quantity_sold = total_quantity_sold + $2, updated_at = $3
	          WHERE id = $4`
	result, err := executor.Exec(query, orderDelta, quantityDelta, time.Now(), productID)
	if err != nil {
		return fmt.Errorf("%w: adjusting sale stats for product ID %d: %v", ErrDatabaseError, productID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for sale stats update ID %d: %v", ErrDatabaseError, productID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) SetPopularityScore(executor SQLExecutor, productID int64, score float64) error {
	result, err := executor.Exec(
		`UPDATE products SET popularity_score = $1, updated_at = $2 WHERE id = $3`,
		score, time.Now(), productID,
	)
	if err != nil {
		return fmt.Errorf("%w: setting popularity score for product ID %d: %v", ErrDatabaseError, productID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for popularity update ID %d: %v", ErrDatabaseError, productID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Recent-sales window ---

func (r *productRepository) InsertSaleEvent(executor SQLExecutor, event *models.SaleEvent) (int64, error) {
	query := `INSERT INTO sale_events (product_id, sale_date, quantity) VALUES ($1, $2, $3) RETURNING id`
	err := executor.QueryRow(query, event.ProductID, event.SaleDate, event.Quantity).Scan(&event.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: inserting sale event for product ID %d: %v", ErrDatabaseError, event.ProductID, err)
	}
	return event.ID, nil
}

func (r *productRepository) DeleteSaleEvent(executor SQLExecutor, eventID int64) error {
	result, err := executor.Exec(`DELETE FROM sale_events WHERE id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("%w: deleting sale event ID %d: %v", ErrDatabaseError, eventID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for sale event delete ID %d: %v", ErrDatabaseError, eventID, err)
	}
	if rowsAffected == 0 {
		// The event may have aged out of the window and been pruned already.
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) PruneSaleEvents(executor SQLExecutor, productID int64, cutoff time.Time) (int64, error) {
	result, err := executor.Exec(`DELETE FROM sale_events WHERE product_id = $1 AND sale_date < $2`, productID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: pruning sale events for product ID %d: %v", ErrDatabaseError, productID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for sale event prune ID %d: %v", ErrDatabaseError, productID, err)
	}
	return rowsAffected, nil
}

func (r *productRepository) RecentQuantity(executor SQLExecutor, productID int64, since time.Time) (int, error) {
	var quantity int
	query := `SELECT COALESCE(SUM(quantity), 0) FROM sale_events WHERE product_id = $1 AND sale_date >= $2`
	err := executor.QueryRow(query, productID, since).Scan(&quantity)
	if err != nil {
		return 0, fmt.Errorf("%w: summing recent quantity for product ID %d: %v", ErrDatabaseError, productID, err)
	}
	return quantity, nil
}

func (r *productRepository) TotalQuantitySold(executor SQLExecutor, productID int64) (int, error) {
	var total int
	err := executor.QueryRow(`SELECT total_quantity_sold FROM products WHERE id = $1`, productID).Scan(&total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%w: reading total quantity sold for product ID %d: %v", ErrDatabaseError, productID, err)
	}
	return total, nil
}
