package models

import "time"

// Audit actions recorded by the back-office.
const (
	AuditActionRaise        = "raise"
	AuditActionOrderDeleted = "order_deleted"
	AuditActionAnonymized   = "user_anonymized"
	AuditActionRestock      = "restock"
)

// AuditEntry is an append-only record of a staff-initiated mutation.
type AuditEntry struct {
	ID        int64     `json:"id" db:"id"`
	StaffID   *int64    `json:"staff_id,omitempty" db:"staff_id"`
	Action    string    `json:"action" db:"action"`
	Entity    string    `json:"entity" db:"entity"`
	EntityID  *int64    `json:"entity_id,omitempty" db:"entity_id"`
	Detail    *string   `json:"detail,omitempty" db:"detail"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
