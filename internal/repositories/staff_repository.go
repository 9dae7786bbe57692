package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bartab_backend/internal/models"

	"github.com/lib/pq"
)

// StaffRepository defines the interface for staff account operations.
type StaffRepository interface {
	CreateStaff(executor SQLExecutor, staff *models.Staff) (int64, error)
	GetStaffByID(id int64) (*models.Staff, error)
	GetStaffByUsername(username string) (*models.Staff, error)
	GetStaffMembers(page, pageSize int) ([]models.Staff, int, error)
	UpdateStaff(executor SQLExecutor, staff *models.Staff) error
	DeactivateStaff(executor SQLExecutor, id int64) error
}

type staffRepository struct {
	db *sql.DB
}

// NewStaffRepository creates a new instance of StaffRepository.
func NewStaffRepository(db *sql.DB) StaffRepository {
	return &staffRepository{db: db}
}

const staffColumns = `id, username, password_hash, full_name, role, active, created_at, updated_at`

func scanStaff(s scanner, st *models.Staff) error {
	return s.Scan(
		&st.ID, &st.Username, &st.PasswordHash, &st.FullName, &st.Role, &st.Active,
		&st.CreatedAt, &st.UpdatedAt,
	)
}

func (r *staffRepository) CreateStaff(executor SQLExecutor, staff *models.Staff) (int64, error) {
	query := `INSERT INTO staff_members (username, password_hash, full_name, role, active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	now := time.Now()
	err := executor.QueryRow(query,
		staff.Username, staff.PasswordHash, staff.FullName, staff.Role, staff.Active, now, now,
	).Scan(&staff.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, fmt.Errorf("%w: creating staff member (constraint: %s)", ErrDuplicateKey, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating staff member: %v", ErrDatabaseError, err)
	}
	return staff.ID, nil
}

func (r *staffRepository) GetStaffByID(id int64) (*models.Staff, error) {
	staff := &models.Staff{}
	query := `SELECT ` + staffColumns + ` FROM staff_members WHERE id = $1`
	err := scanStaff(r.db.QueryRow(query, id), staff)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting staff member by ID %d: %v", ErrDatabaseError, id, err)
	}
	return staff, nil
}

func (r *staffRepository) GetStaffByUsername(username string) (*models.Staff, error) {
	staff := &models.Staff{}
	query := `SELECT ` + staffColumns + ` FROM staff_members WHERE username = $1`
	err := scanStaff(r.db.QueryRow(query, username), staff)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting staff member by username %s: %v", ErrDatabaseError, username, err)
	}
	return staff, nil
}

func (r *staffRepository) GetStaffMembers(page, pageSize int) ([]models.Staff, int, error) {
	staffMembers := []models.Staff{}
	totalCount := 0

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := `SELECT ` + staffColumns + `, COUNT(*) OVER() as total_count
	          FROM staff_members
	          ORDER BY full_name ASC
	          LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying staff members: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var st models.Staff
		err := rows.Scan(
			&st.ID, &st.Username, &st.PasswordHash, &st.FullName, &st.Role, &st.Active,
			&st.CreatedAt, &st.UpdatedAt, &totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning staff member: %v", ErrDatabaseError, err)
		}
		staffMembers = append(staffMembers, st)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating staff rows: %v", ErrDatabaseError, err)
	}
	return staffMembers, totalCount, nil
}

func (r *staffRepository) UpdateStaff(executor SQLExecutor, staff *models.Staff) error {
	query := `UPDATE staff_members
	          SET username = $1, password_hash = $2, full_name = $3, role = $4, active = $5, updated_at = $6
	          WHERE id = $7`
	result, err := executor.Exec(query,
		staff.Username, staff.PasswordHash, staff.FullName, staff.Role, staff.Active, time.Now(), staff.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: updating staff member (constraint: %s)", ErrDuplicateKey, pqErr.Constraint)
		}
		return fmt.Errorf("%w: updating staff member ID %d: %v", ErrDatabaseError, staff.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for staff update ID %d: %v", ErrDatabaseError, staff.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *staffRepository) DeactivateStaff(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`UPDATE staff_members SET active = FALSE, updated_at = $1 WHERE id = $2`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: deactivating staff member ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for staff deactivate ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
