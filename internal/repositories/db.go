package repositories

import "database/sql"

// Tx is an open transaction. *sql.Tx satisfies it.
type Tx interface {
	SQLExecutor
	Commit() error
	Rollback() error
}

// DB opens transactions and doubles as the executor for work that does not
// need one. Services depend on this instead of *sql.DB so transactional flows
// can be exercised without a live database.
type DB interface {
	SQLExecutor
	Begin() (Tx, error)
}

type sqlDB struct {
	*sql.DB
}

// WrapDB adapts *sql.DB to the DB interface.
func WrapDB(db *sql.DB) DB {
	return sqlDB{db}
}

func (d sqlDB) Begin() (Tx, error) {
	return d.DB.Begin()
}
