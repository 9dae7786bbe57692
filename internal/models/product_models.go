package models

import "time"

// Category groups products in the catalog.
type Category struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Product is a catalog entry with stock and sales counters. PopularityScore
// is derived from the recent-sales window plus lifetime volume and is
// recomputed on every stock-affecting mutation.
type Product struct {
	ID                int64     `json:"id" db:"id"`
	Name              string    `json:"name" db:"name" binding:"required"`
	CategoryID        *int64    `json:"category_id,omitempty" db:"category_id"`
	Price             int64     `json:"price" db:"price"` // minor-currency units
	Stock             int       `json:"stock" db:"stock"`
	TotalOrders       int       `json:"total_orders" db:"total_orders"`
	TotalQuantitySold int       `json:"total_quantity_sold" db:"total_quantity_sold"`
	PopularityScore   float64   `json:"popularity_score" db:"popularity_score"`
	Active            bool      `json:"active" db:"active"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`

	// Joined data, populated by list queries.
	Category *Category `json:"category,omitempty"`
}

// SaleEvent is one entry in a product's recent-sales window. Entries older
// than the 30-day horizon are pruned on every mutation and by the daily
// popularity sweep.
type SaleEvent struct {
	ID        int64     `json:"id" db:"id"`
	ProductID int64     `json:"product_id" db:"product_id"`
	SaleDate  time.Time `json:"sale_date" db:"sale_date"`
	Quantity  int       `json:"quantity" db:"quantity"`
}

// ProductFilters defines the available filters for querying products.
type ProductFilters struct {
	CategoryID *int64  `form:"category_id"`
	Active     *bool   `form:"active"`
	Search     *string `form:"search"`
	Page       int     `form:"page"`
	PageSize   int     `form:"page_size"`
}
