package models

import "time"

// Raise is a manual balance top-up (or correction, amounts are signed)
// applied to a user's account by a staff member. Rows are append-only.
type Raise struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Amount    int64     `json:"amount" db:"amount"` // minor-currency units, signed
	StaffID   int64     `json:"staff_id" db:"staff_id"`
	IsCash    bool      `json:"is_cash" db:"is_cash"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	UserName  *string `json:"user_name,omitempty"`
	StaffName *string `json:"staff_name,omitempty"`
}

// RaiseFilters defines the available filters for querying raises.
type RaiseFilters struct {
	UserID   *int64  `form:"user_id"`
	From     *string `form:"from"` // business day, format YYYY-MM-DD
	To       *string `form:"to"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

// RaiseDayTotal is one business-day row of the raises report.
type RaiseDayTotal struct {
	Day       time.Time `json:"day"`
	CashTotal int64     `json:"cash_total"`
	BankTotal int64     `json:"bank_total"`
	Count     int       `json:"count"`
}
