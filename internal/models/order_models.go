package models

import "time"

// Order records a settled sale. PayerID is the account that was debited; for
// guest orders that is the guest's host, with GuestID keeping the guest
// reference. DayOfOrder is the business day (8 AM cutoff rule), not the
// calendar day of CreatedAt.
type Order struct {
	ID         int64     `json:"id" db:"id"`
	PayerID    int64     `json:"payer_id" db:"payer_id"`
	GuestID    *int64    `json:"guest_id,omitempty" db:"guest_id"`
	StaffID    int64     `json:"staff_id" db:"staff_id"`
	Total      int64     `json:"total" db:"total"` // minor-currency units
	DayOfOrder time.Time `json:"day_of_order" db:"day_of_order"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	// Joined data, populated by list/detail queries.
	PayerName  *string     `json:"payer_name,omitempty"`
	GuestName  *string     `json:"guest_name,omitempty"`
	StaffName  *string     `json:"staff_name,omitempty"`
	OrderItems []OrderItem `json:"order_items,omitempty"`
}

// OrderItem is one line of an order. SaleEventID links the line to the sale
// event it appended to the product's recent-sales window, so deletion can
// reverse the window exactly.
type OrderItem struct {
	ID          int64  `json:"id" db:"id"`
	OrderID     int64  `json:"order_id" db:"order_id"`
	ProductID   int64  `json:"product_id" db:"product_id"`
	Quantity    int    `json:"quantity" db:"quantity"`
	UnitPrice   int64  `json:"unit_price" db:"unit_price"`
	TotalPrice  int64  `json:"total_price" db:"total_price"`
	SaleEventID *int64 `json:"-" db:"sale_event_id"`

	ProductName *string `json:"product_name,omitempty"`
}

// OrderFilters defines the available filters for querying orders.
type OrderFilters struct {
	PayerID  *int64  `form:"payer_id"`
	StaffID  *int64  `form:"staff_id"`
	Day      *string `form:"day"` // business day, format YYYY-MM-DD
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

// RevenueBucket is one business-day row of the revenue report.
type RevenueBucket struct {
	Day        time.Time `json:"day"`
	OrderCount int       `json:"order_count"`
	Revenue    int64     `json:"revenue"`
}
