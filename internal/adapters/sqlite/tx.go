// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/example/permitdesk/internal/metrics"
	"github.com/example/permitdesk/internal/ports/secondary"
)

// DefaultTxTimeout bounds a transaction whose context carries no deadline.
const DefaultTxTimeout = 5 * time.Second

type txKey struct{}

func withTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func txFrom(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn returns the transaction carried by ctx, falling back to the pool.
func conn(ctx context.Context, db *sql.DB) queryer {
	if tx, ok := txFrom(ctx); ok {
		return tx
	}
	return db
}

// Transactor implements secondary.Transactor with SQLite transactions.
type Transactor struct {
	db      *sql.DB
	timeout time.Duration
	metrics *metrics.Metrics
}

// TransactorOption configures a Transactor.
type TransactorOption func(*Transactor)

// WithTxTimeout overrides DefaultTxTimeout.
func WithTxTimeout(d time.Duration) TransactorOption {
	return func(t *Transactor) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithTxMetrics records transaction durations.
func WithTxMetrics(m *metrics.Metrics) TransactorOption {
	return func(t *Transactor) {
		t.metrics = m
	}
}

// NewTransactor creates a new SQLite transactor.
func NewTransactor(db *sql.DB, opts ...TransactorOption) *Transactor {
	t := &Transactor{db: db, timeout: DefaultTxTimeout}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RunInTx runs fn inside a transaction. A ctx that already carries a
// transaction joins it instead of opening a new one.
func (t *Transactor) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := txFrom(ctx); ok {
		return fn(ctx)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() { t.metrics.ObserveTx(start, err) }()

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError("failed to begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapError("failed to commit transaction", err)
	}
	return nil
}

// mapError wraps driver errors with the matching secondary sentinel so services
// can tell retryable storage facts apart from hard failures.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, secondary.ErrNotFound)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch {
		case sqliteErr.Code == sqlite3.ErrBusy, sqliteErr.Code == sqlite3.ErrLocked:
			return fmt.Errorf("%s: %w: %v", op, secondary.ErrBusy, err)
		case sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique,
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%s: %w: %v", op, secondary.ErrDuplicate, err)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
