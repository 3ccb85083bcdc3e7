package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Queryer is satisfied by both *sqlx.DB and *sqlx.Tx, so ledger operations
// can run standalone or inside a caller's transaction.
type Queryer interface {
	sqlx.ExtContext
}

// TxManager runs functions inside a database transaction
type TxManager struct {
	db *sqlx.DB
}

// NewTxManager creates a new TxManager
func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// Conn returns the non-transactional handle
func (m *TxManager) Conn() Queryer {
	return m.db
}

// WithinTx begins a transaction, runs fn and commits. Any error from fn,
// or a panic, rolls the whole transaction back.
func (m *TxManager) WithinTx(ctx context.Context, fn func(q Queryer) error) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique_violation (23505)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
