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

// RaiseRepository defines the interface for balance top-up records. Raises
// are append-only; there are no update or delete methods.
type RaiseRepository interface {
	CreateRaise(executor SQLExecutor, raise *models.Raise) (int64, error)
	GetRaiseByID(id int64) (*models.Raise, error)
	GetRaises(filters models.RaiseFilters) ([]models.Raise, int, error)
	TotalsByDay(from, to time.Time, timeZone string, cutoffHour int) ([]models.RaiseDayTotal, error)
}

type raiseRepository struct {
	db *sql.DB
}

// NewRaiseRepository creates a new instance of RaiseRepository.
func NewRaiseRepository(db *sql.DB) RaiseRepository {
	return &raiseRepository{db: db}
}

func (r *raiseRepository) CreateRaise(executor SQLExecutor, raise *models.Raise) (int64, error) {
	query := `INSERT INTO raises (user_id, amount, staff_id, is_cash, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`

	if raise.CreatedAt.IsZero() {
		raise.CreatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		raise.UserID, raise.Amount, raise.StaffID, raise.IsCash, raise.CreatedAt,
	).Scan(&raise.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating raise (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating raise: %v", ErrDatabaseError, err)
	}
	return raise.ID, nil
}

func (r *raiseRepository) GetRaiseByID(id int64) (*models.Raise, error) {
	raise := &models.Raise{}
	query := `SELECT id, user_id, amount, staff_id, is_cash, created_at FROM raises WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&raise.ID, &raise.UserID, &raise.Amount, &raise.StaffID, &raise.IsCash, &raise.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting raise by ID %d: %v", ErrDatabaseError, id, err)
	}
	return raise, nil
}

func (r *raiseRepository) GetRaises(filters models.RaiseFilters) ([]models.Raise, int, error) {
	raises := []models.Raise{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT
            r.id, r.user_id, r.amount, r.staff_id, r.is_cash, r.created_at,
            u.name as user_name,
            s.full_name as staff_name,
            COUNT(*) OVER() as total_count
        FROM raises r
        JOIN users u ON r.user_id = u.id
        JOIN staff_members s ON r.staff_id = s.id
    `)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("r.user_id = $%d", argCounter))
		args = append(args, *filters.UserID)
		argCounter++
	}
	if filters.From != nil && *filters.From != "" {
		if from, err := time.Parse("2006-01-02", *filters.From); err == nil {
			conditions = append(conditions, fmt.Sprintf("r.created_at >= $%d", argCounter))
			args = append(args, from)
			argCounter++
		}
	}
	if filters.To != nil && *filters.To != "" {
		if to, err := time.Parse("2006-01-02", *filters.To); err == nil {
			conditions = append(conditions, fmt.Sprintf("r.created_at < $%d", argCounter))
			args = append(args, to.AddDate(0, 0, 1))
			argCounter++
		}
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY r.created_at DESC")

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
		return nil, 0, fmt.Errorf("%w: querying raises: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var ra models.Raise
		var userName, staffName sql.NullString
		err := rows.Scan(
			&ra.ID, &ra.UserID, &ra.Amount, &ra.StaffID, &ra.IsCash, &ra.CreatedAt,
			&userName, &staffName, &totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning raise: %v", ErrDatabaseError, err)
		}
		if userName.Valid {
			name := userName.String
			ra.UserName = &name
		}
		if staffName.Valid {
			name := staffName.String
			ra.StaffName = &name
		}
		raises = append(raises, ra)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating raise rows: %v", ErrDatabaseError, err)
	}
	return raises, totalCount, nil
}

// TotalsByDay buckets raises by business day for the finance report. The
// bucketing mirrors utils.BusinessDay in SQL: convert to the bar's local time
// zone, shift back by the cutoff, truncate to a date. Orders and raises
// therefore land in the same buckets for the same instant.
func (r *raiseRepository) TotalsByDay(from, to time.Time, timeZone string, cutoffHour int) ([]models.RaiseDayTotal, error) {
	totals := []models.RaiseDayTotal{}
	query := `SELECT
	              ((created_at AT TIME ZONE $3) - make_interval(hours => $4))::date AS day,
	              COALESCE(SUM(amount) FILTER (WHERE is_cash), 0) AS cash_total,
	              COALESCE(SUM(amount) FILTER (WHERE NOT is_cash), 0) AS bank_total,
	              COUNT(*) AS cnt
	          FROM raises
	          WHERE ((created_at AT TIME ZONE $3) - make_interval(hours => $4))::date BETWEEN $1 AND $2
	          GROUP BY day
	          ORDER BY day`
	rows, err := r.db.Query(query, from, to, timeZone, cutoffHour)
	if err != nil {
		return nil, fmt.Errorf("%w: querying raise totals by day: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.RaiseDayTotal
		if err := rows.Scan(&t.Day, &t.CashTotal, &t.BankTotal, &t.Count); err != nil {
			return nil, fmt.Errorf("%w: scanning raise day total: %v", ErrDatabaseError, err)
		}
		totals = append(totals, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating raise total rows: %v", ErrDatabaseError, err)
	}
	return totals, nil
}
