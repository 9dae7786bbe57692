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

// UserRepository defines the interface for user/guest account operations.
type UserRepository interface {
	CreateUser(executor SQLExecutor, user *models.User) (int64, error)
	GetUserByID(id int64) (*models.User, error)
	GetUserForUpdate(executor SQLExecutor, id int64) (*models.User, error)
	GetUsers(filters models.UserFilters) ([]models.User, int, error)
	GetGuestsByHost(hostID int64) ([]models.User, error)
	UpdateUser(executor SQLExecutor, user *models.User) error
	AdjustBalance(executor SQLExecutor, userID int64, delta int64) (int64, error)
	AdjustOrderStats(executor SQLExecutor, userID int64, orderDelta int, spentDelta int64) error
	AnonymizeUser(executor SQLExecutor, id int64, placeholderName string) error
	GetDebtors() ([]models.User, error)
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, username, balance, is_guest, active, host_id, order_count, total_spent, created_at, updated_at`

func scanUser(s scanner, u *models.User) error {
	return s.Scan(
		&u.ID, &u.Name, &u.Username, &u.Balance, &u.IsGuest, &u.Active,
		&u.HostID, &u.OrderCount, &u.TotalSpent, &u.CreatedAt, &u.UpdatedAt,
	)
}

func (r *userRepository) CreateUser(executor SQLExecutor, user *models.User) (int64, error) {
	query := `INSERT INTO users (name, username, balance, is_guest, active, host_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		user.Name, user.Username, user.Balance, user.IsGuest, user.Active, user.HostID,
		user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, fmt.Errorf("%w: creating user (constraint: %s)", ErrDuplicateKey, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}
	return user.ID, nil
}

func (r *userRepository) GetUserByID(id int64) (*models.User, error) {
	user := &models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	err := scanUser(r.db.QueryRow(query, id), user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting user by ID %d: %v", ErrDatabaseError, id, err)
	}
	return user, nil
}

// GetUserForUpdate loads a user with a row lock. Must run inside a
// transaction; it serializes concurrent balance mutations on the same row.
func (r *userRepository) GetUserForUpdate(executor SQLExecutor, id int64) (*models.User, error) {
	user := &models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	err := scanUser(executor.QueryRow(query, id), user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: locking user ID %d: %v", ErrDatabaseError, id, err)
	}
	return user, nil
}

func (r *userRepository) GetUsers(filters models.UserFilters) ([]models.User, int, error) {
	users := []models.User{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + userColumns + `, COUNT(*) OVER() as total_count FROM users`)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", argCounter))
		args = append(args, *filters.Active)
		argCounter++
	}
	if filters.IsGuest != nil {
		conditions = append(conditions, fmt.Sprintf("is_guest = $%d", argCounter))
		args = append(args, *filters.IsGuest)
		argCounter++
	}
	if filters.HostID != nil {
		conditions = append(conditions, fmt.Sprintf("host_id = $%d", argCounter))
		args = append(args, *filters.HostID)
		argCounter++
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argCounter))
		args = append(args, "%"+*filters.Search+"%")
		argCounter++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY name ASC")

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
		return nil, 0, fmt.Errorf("%w: querying users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var u models.User
		err := rows.Scan(
			&u.ID, &u.Name, &u.Username, &u.Balance, &u.IsGuest, &u.Active,
			&u.HostID, &u.OrderCount, &u.TotalSpent, &u.CreatedAt, &u.UpdatedAt,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating user rows: %v", ErrDatabaseError, err)
	}
	return users, totalCount, nil
}

func (r *userRepository) GetGuestsByHost(hostID int64) ([]models.User, error) {
	guests := []models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE is_guest = TRUE AND host_id = $1 ORDER BY name ASC`
	rows, err := r.db.Query(query, hostID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying guests for host %d: %v", ErrDatabaseError, hostID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("%w: scanning guest: %v", ErrDatabaseError, err)
		}
		guests = append(guests, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating guest rows: %v", ErrDatabaseError, err)
	}
	return guests, nil
}

func (r *userRepository) UpdateUser(executor SQLExecutor, user *models.User) error {
	query := `UPDATE users
	          SET name = $1, username = $2, active = $3, host_id = $4, updated_at = $5
	          WHERE id = $6`
	result, err := executor.Exec(query, user.Name, user.Username, user.Active, user.HostID, time.Now(), user.ID)
	if err != nil {
		return fmt.Errorf("%w: updating user ID %d: %v", ErrDatabaseError, user.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for user update ID %d: %v", ErrDatabaseError, user.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustBalance applies a signed delta to the user's balance atomically and
// returns the new balance. Balances are allowed to go negative.
func (r *userRepository) AdjustBalance(executor SQLExecutor, userID int64, delta int64) (int64, error) {
	var newBalance int64
	query := `UPDATE users SET balance = balance + $1, updated_at = $2 WHERE id = $3 RETURNING balance`
	err := executor.QueryRow(query, delta, time.Now(), userID).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%w: adjusting balance for user ID %d: %v", ErrDatabaseError, userID, err)
	}
	return newBalance, nil
}

// AdjustOrderStats applies signed deltas to order_count and total_spent.
func (r *userRepository) AdjustOrderStats(executor SQLExecutor, userID int64, orderDelta int, spentDelta int64) error {
	query := `UPDATE users
	          SET order_count = order_count + $1, total_spent = total_spent + $2, updated_at = $3
	          WHERE id = $4`
	result, err := executor.Exec(query, orderDelta, spentDelta, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("%w: adjusting order stats for user ID %d: %v", ErrDatabaseError, userID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for order stats update ID %d: %v", ErrDatabaseError, userID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetDebtors lists active non-guest accounts with a negative balance, most
// indebted first.
func (r *userRepository) GetDebtors() ([]models.User, error) {
	debtors := []models.User{}
	query := `SELECT ` + userColumns + ` FROM users
	          WHERE balance < 0 AND is_guest = FALSE AND active = TRUE
	          ORDER BY balance ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying debtors: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("%w: scanning debtor: %v", ErrDatabaseError, err)
		}
		debtors = append(debtors, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating debtor rows: %v", ErrDatabaseError, err)
	}
	return debtors, nil
}

// AnonymizeUser scrubs identifying fields and deactivates the account. The
// row itself is kept so orders and raises stay referentially intact.
func (r *userRepository) AnonymizeUser(executor SQLExecutor, id int64, placeholderName string) error {
	query := `UPDATE users
	          SET name = $1, username = NULL, active = FALSE, updated_at = $2
	          WHERE id = $3`
	result, err := executor.Exec(query, placeholderName, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: anonymizing user ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for anonymize ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
