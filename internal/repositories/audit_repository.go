package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"bartab_backend/internal/models"
)

// AuditRepository defines the interface for the append-only audit log.
type AuditRepository interface {
	CreateEntry(executor SQLExecutor, entry *models.AuditEntry) (int64, error)
	GetEntries(page, pageSize int) ([]models.AuditEntry, int, error)
}

type auditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new instance of AuditRepository.
func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) CreateEntry(executor SQLExecutor, entry *models.AuditEntry) (int64, error) {
	query := `INSERT INTO audit_log (staff_id, action, entity, entity_id, detail, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		entry.StaffID, entry.Action, entry.Entity, entry.EntityID, entry.Detail, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating audit entry: %v", ErrDatabaseError, err)
	}
	return entry.ID, nil
}

func (r *auditRepository) GetEntries(page, pageSize int) ([]models.AuditEntry, int, error) {
	entries := []models.AuditEntry{}
	totalCount := 0

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	query := `SELECT id, staff_id, action, entity, entity_id, detail, created_at,
	                 COUNT(*) OVER() as total_count
	          FROM audit_log
	          ORDER BY created_at DESC
	          LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying audit entries: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.AuditEntry
		err := rows.Scan(&e.ID, &e.StaffID, &e.Action, &e.Entity, &e.EntityID, &e.Detail, &e.CreatedAt, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning audit entry: %v", ErrDatabaseError, err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating audit rows: %v", ErrDatabaseError, err)
	}
	return entries, totalCount, nil
}
