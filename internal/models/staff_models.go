package models

import "time"

// Staff roles.
const (
	RoleAdmin     = "Admin"
	RoleBartender = "Bartender"
)

// Staff is a back-office operator: the bartender who records orders, or an
// admin managing the catalog and finances.
type Staff struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     string    `json:"full_name" db:"full_name"`
	Role         string    `json:"role" db:"role"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
