package models

import "time"

// Purchase records admin-entered restocking of a product. Creating one
// increments the product's stock. DayOfOrder follows the same business-day
// rule as orders.
type Purchase struct {
	ID         int64     `json:"id" db:"id"`
	ProductID  int64     `json:"product_id" db:"product_id"`
	Quantity   int       `json:"quantity" db:"quantity"`
	UnitPrice  int64     `json:"unit_price" db:"unit_price"` // minor-currency units
	DayOfOrder time.Time `json:"day_of_order" db:"day_of_order"`
	StaffID    int64     `json:"staff_id" db:"staff_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	ProductName *string `json:"product_name,omitempty"`
}

// PurchaseFilters defines the available filters for querying purchases.
type PurchaseFilters struct {
	ProductID *int64 `form:"product_id"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}
