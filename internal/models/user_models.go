package models

import "time"

// User represents an account with a stored balance. Guests are users with
// IsGuest set and a HostID pointing at the user whose balance pays for their
// orders; a guest's own balance only tracks spend.
type User struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name" binding:"required"`
	Username   *string   `json:"username,omitempty" db:"username"`
	Balance    int64     `json:"balance" db:"balance"` // minor-currency units, may go negative
	IsGuest    bool      `json:"is_guest" db:"is_guest"`
	Active     bool      `json:"active" db:"active"`
	HostID     *int64    `json:"host_id,omitempty" db:"host_id"`
	OrderCount int       `json:"order_count" db:"order_count"`
	TotalSpent int64     `json:"total_spent" db:"total_spent"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// UserFilters defines the available filters for querying users.
type UserFilters struct {
	Active   *bool   `form:"active"`
	IsGuest  *bool   `form:"is_guest"`
	HostID   *int64  `form:"host_id"`
	Search   *string `form:"search"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
