package repositories

import (
	"database/sql"
	"errors"
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("requested record not found")

	// ErrDatabaseError is returned for unexpected database errors.
	// It can be used to wrap more specific driver errors.
	ErrDatabaseError = errors.New("database error")

	// ErrDuplicateKey is returned when an insert/update violates a unique constraint.
	ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")

	// ErrStockConflict is returned when a conditional quantity update would
	// drive a product's quantity below zero. The row is left untouched.
	ErrStockConflict = errors.New("stock change would drive quantity below zero")
)

// SQLExecutor defines an interface that is satisfied by *sql.DB or *sql.Tx.
// This allows repository methods to be used within transactions or with a
// direct connection.
type SQLExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

// Tx is a transaction handle usable as an SQLExecutor.
// *sql.Tx satisfies it directly.
type Tx interface {
	SQLExecutor
	Commit() error
	Rollback() error
}

// TxManager starts transactions. Services depend on this instead of a concrete
// *sql.DB so workflow logic can be exercised against fakes in tests.
type TxManager interface {
	Begin() (Tx, error)
}

type sqlTxManager struct {
	db *sql.DB
}

// NewTxManager wraps a *sql.DB as a TxManager.
func NewTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

func (m *sqlTxManager) Begin() (Tx, error) {
	tx, err := m.db.Begin()
	if err != nil {
		return nil, err
	}
	return tx, nil
}
