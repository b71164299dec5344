package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/permitdesk/internal/ports/secondary"
)

// HistoryRepository implements secondary.HistoryRepository with SQLite.
// Rows are only ever inserted; a trigger rejects UPDATE.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new SQLite permit history repository.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append writes a history row. seq orders rows within a permit independent of
// clock resolution.
func (r *HistoryRepository) Append(ctx context.Context, entry *secondary.HistoryRecord) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO permit_history (id, permit_id, seq, from_status, to_status, changed_by, notes, changed_at)
		 SELECT ?, ?, COALESCE(MAX(seq), 0) + 1, ?, ?, ?, ?, ? FROM permit_history WHERE permit_id = ?`,
		entry.ID, entry.PermitID, entry.FromStatus, entry.ToStatus, entry.ChangedBy,
		nullString(entry.Notes), entry.ChangedAt, entry.PermitID,
	)
	return mapError("failed to append permit history", err)
}

// ListByPermit returns entries newest first. limit <= 0 means all.
func (r *HistoryRepository) ListByPermit(ctx context.Context, permitID string, limit int) ([]*secondary.HistoryRecord, error) {
	query := `SELECT id, permit_id, from_status, to_status, changed_by, notes, changed_at
		FROM permit_history WHERE permit_id = ? ORDER BY seq DESC`
	args := []any{permitID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("failed to list permit history", err)
	}
	defer rows.Close()

	var entries []*secondary.HistoryRecord
	for rows.Next() {
		var (
			entry secondary.HistoryRecord
			notes sql.NullString
		)
		err := rows.Scan(&entry.ID, &entry.PermitID, &entry.FromStatus, &entry.ToStatus,
			&entry.ChangedBy, &notes, &entry.ChangedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan permit history: %w", err)
		}
		entry.Notes = notes.String
		entries = append(entries, &entry)
	}
	return entries, mapError("failed to list permit history", rows.Err())
}
