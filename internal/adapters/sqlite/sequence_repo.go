package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/permitdesk/internal/core/ticket"
)

// ownerTables maps each ticketed kind to the table holding its ticket numbers.
var ownerTables = map[ticket.Kind]string{
	ticket.KindPerson:              "persons",
	ticket.KindVehicle:             "vehicles",
	ticket.KindImportPermit:        "import_permits",
	ticket.KindCompanyRegistration: "company_registrations",
	ticket.KindPermit:              "permits",
}

// SequenceRepository implements secondary.SequenceRepository with a counters table.
type SequenceRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSequenceRepository creates a new SQLite sequence repository.
func NewSequenceRepository(db *sql.DB) *SequenceRepository {
	return &SequenceRepository{db: db, now: time.Now}
}

// Next claims the next value for the series. The counter row is created on first
// use, seeded from the highest suffix already present in the owning table.
func (r *SequenceRepository) Next(ctx context.Context, series ticket.Series) (int, error) {
	tx, ok := txFrom(ctx)
	if !ok {
		return 0, fmt.Errorf("claiming %s requires a transaction", series)
	}

	if _, err := r.current(ctx, tx, series); err != nil {
		return 0, err
	}

	var next int
	err := tx.QueryRowContext(ctx,
		"UPDATE ticket_sequences SET last_value = last_value + 1, updated_at = ? WHERE prefix = ? AND scope = ? RETURNING last_value",
		r.now().UTC(), string(series.Prefix), series.Scope(),
	).Scan(&next)
	if err != nil {
		return 0, mapError(fmt.Sprintf("failed to claim %s", series), err)
	}
	return next, nil
}

// Peek returns the value Next would claim without claiming it or creating the counter.
func (r *SequenceRepository) Peek(ctx context.Context, series ticket.Series) (int, error) {
	q := conn(ctx, r.db)

	var last int
	err := q.QueryRowContext(ctx,
		"SELECT last_value FROM ticket_sequences WHERE prefix = ? AND scope = ?",
		string(series.Prefix), series.Scope(),
	).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		last, err = r.maxExisting(ctx, q, series)
	}
	if err != nil {
		return 0, mapError(fmt.Sprintf("failed to read %s counter", series), err)
	}
	return last + 1, nil
}

// current returns the counter value, inserting the seeded row when missing.
func (r *SequenceRepository) current(ctx context.Context, q queryer, series ticket.Series) (int, error) {
	var last int
	err := q.QueryRowContext(ctx,
		"SELECT last_value FROM ticket_sequences WHERE prefix = ? AND scope = ?",
		string(series.Prefix), series.Scope(),
	).Scan(&last)
	if err == nil {
		return last, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, mapError(fmt.Sprintf("failed to read %s counter", series), err)
	}

	last, err = r.maxExisting(ctx, q, series)
	if err != nil {
		return 0, mapError(fmt.Sprintf("failed to seed %s counter", series), err)
	}

	_, err = q.ExecContext(ctx,
		"INSERT INTO ticket_sequences (prefix, scope, last_value, updated_at) VALUES (?, ?, ?, ?)",
		string(series.Prefix), series.Scope(), last, r.now().UTC(),
	)
	if err != nil {
		return 0, mapError(fmt.Sprintf("failed to create %s counter", series), err)
	}
	return last, nil
}

// maxExisting scans the owning table for the highest numeric suffix in the series.
// Suffixes are compared numerically so unpadded legacy numbers are handled.
func (r *SequenceRepository) maxExisting(ctx context.Context, q queryer, series ticket.Series) (int, error) {
	table, ok := ownerTables[ticket.KindOf(series.Prefix)]
	if !ok {
		return 0, fmt.Errorf("no table for prefix %s", series.Prefix)
	}

	rows, err := q.QueryContext(ctx,
		"SELECT ticket_number FROM "+table+" WHERE ticket_number LIKE ?",
		series.LikePattern(),
	)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	highest := 0
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return 0, err
		}
		// Permit-year series must not pick up entity-format numbers under the same prefix.
		if p, ok := ticket.Parse(number); ok && p.Series != series {
			continue
		}
		if seq := ticket.SuffixSeq(number); seq > highest {
			highest = seq
		}
	}
	return highest, rows.Err()
}
