package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/permitdesk/internal/ports/secondary"
)

// PermitRepository implements secondary.PermitRepository with SQLite.
type PermitRepository struct {
	db *sql.DB
}

// NewPermitRepository creates a new SQLite permit repository.
func NewPermitRepository(db *sql.DB) *PermitRepository {
	return &PermitRepository{db: db}
}

const permitSelect = `SELECT p.id, p.ticket_number, p.category, p.status, p.person_id,
	pe.first_name || COALESCE(' ' || pe.last_name, ''),
	p.checklist_id, p.checklist_version, p.due_date, p.notes, p.created_by, p.created_at, p.updated_at
	FROM permits p JOIN persons pe ON pe.id = p.person_id`

func scanPermit(scanner interface {
	Scan(dest ...any) error
}) (*secondary.PermitRecord, error) {
	var (
		checklistID      sql.NullString
		checklistVersion sql.NullInt64
		dueDate          sql.NullTime
		notes            sql.NullString
	)

	record := &secondary.PermitRecord{}
	err := scanner.Scan(
		&record.ID, &record.TicketNumber, &record.Category, &record.Status, &record.PersonID,
		&record.PersonName, &checklistID, &checklistVersion, &dueDate, &notes,
		&record.CreatedBy, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.ChecklistID = checklistID.String
	record.ChecklistVersion = int(checklistVersion.Int64)
	record.DueDate = timePtr(dueDate)
	record.Notes = notes.String

	return record, nil
}

// Create persists a new permit.
func (r *PermitRepository) Create(ctx context.Context, permit *secondary.PermitRecord) error {
	var checklistVersion sql.NullInt64
	if permit.ChecklistID != "" {
		checklistVersion = sql.NullInt64{Int64: int64(permit.ChecklistVersion), Valid: true}
	}

	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO permits (id, ticket_number, category, status, person_id, checklist_id, checklist_version, due_date, notes, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		permit.ID, permit.TicketNumber, permit.Category, permit.Status, permit.PersonID,
		nullString(permit.ChecklistID), checklistVersion, nullTime(permit.DueDate),
		nullString(permit.Notes), permit.CreatedBy, permit.CreatedAt, permit.UpdatedAt,
	)
	return mapError("failed to create permit", err)
}

// GetByID retrieves a permit by its ID.
func (r *PermitRepository) GetByID(ctx context.Context, id string) (*secondary.PermitRecord, error) {
	record, err := scanPermit(conn(ctx, r.db).QueryRowContext(ctx, permitSelect+" WHERE p.id = ?", id))
	if err != nil {
		return nil, mapError(fmt.Sprintf("permit %s", id), err)
	}
	return record, nil
}

// GetByTicket retrieves a permit by ticket number.
func (r *PermitRepository) GetByTicket(ctx context.Context, number string) (*secondary.PermitRecord, error) {
	record, err := scanPermit(conn(ctx, r.db).QueryRowContext(ctx, permitSelect+" WHERE p.ticket_number = ?", number))
	if err != nil {
		return nil, mapError(fmt.Sprintf("permit %s", number), err)
	}
	return record, nil
}

// List retrieves permits matching the given filters, newest first.
func (r *PermitRepository) List(ctx context.Context, filters secondary.PermitFilters) ([]*secondary.PermitRecord, error) {
	query := permitSelect + " WHERE 1=1"
	args := []any{}

	if filters.PersonID != "" {
		query += " AND p.person_id = ?"
		args = append(args, filters.PersonID)
	}

	if filters.Status != "" {
		query += " AND p.status = ?"
		args = append(args, filters.Status)
	}

	if filters.Category != "" {
		query += " AND p.category = ?"
		args = append(args, filters.Category)
	}

	query += " ORDER BY p.created_at DESC, p.ticket_number DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("failed to list permits", err)
	}
	defer rows.Close()

	var permits []*secondary.PermitRecord
	for rows.Next() {
		record, err := scanPermit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan permit: %w", err)
		}
		permits = append(permits, record)
	}
	return permits, mapError("failed to list permits", rows.Err())
}

// UpdateStatus moves a permit from one status to another. The WHERE clause on
// the current status makes concurrent transitions from the same state race
// safely: only one UPDATE matches.
func (r *PermitRepository) UpdateStatus(ctx context.Context, id, from, to string, at time.Time) (bool, error) {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE permits SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		to, at, id, from,
	)
	if err != nil {
		return false, mapError("failed to update permit status", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

// UpdateDetails updates notes and due date. Nil arguments leave the column unchanged.
func (r *PermitRepository) UpdateDetails(ctx context.Context, id string, notes *string, dueDate *time.Time, at time.Time) error {
	query := "UPDATE permits SET updated_at = ?"
	args := []any{at}

	if notes != nil {
		query += ", notes = ?"
		args = append(args, nullString(*notes))
	}

	if dueDate != nil {
		query += ", due_date = ?"
		args = append(args, *dueDate)
	}

	query += " WHERE id = ?"
	args = append(args, id)

	result, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("failed to update permit", err)
	}
	return requireAffected(result, fmt.Sprintf("permit %s", id))
}

// ListOwned returns permit ids owned by any of the given persons.
func (r *PermitRepository) ListOwned(ctx context.Context, personIDs []string) ([]secondary.OwnedRecord, error) {
	return listOwned(ctx, conn(ctx, r.db), "permits", personIDs)
}

// Delete removes a permit. Checklist items and history cascade.
func (r *PermitRepository) Delete(ctx context.Context, id string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, "DELETE FROM permits WHERE id = ?", id)
	if err != nil {
		return mapError("failed to delete permit", err)
	}
	return requireAffected(result, fmt.Sprintf("permit %s", id))
}

// listOwned returns (id, person_id) pairs from table for the given persons, ordered by id.
func listOwned(ctx context.Context, q queryer, table string, personIDs []string) ([]secondary.OwnedRecord, error) {
	if len(personIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(personIDs)), ",")
	args := make([]any, len(personIDs))
	for i, id := range personIDs {
		args[i] = id
	}

	rows, err := q.QueryContext(ctx,
		"SELECT id, person_id FROM "+table+" WHERE person_id IN ("+placeholders+") ORDER BY id",
		args...,
	)
	if err != nil {
		return nil, mapError(fmt.Sprintf("failed to list %s", table), err)
	}
	defer rows.Close()

	var owned []secondary.OwnedRecord
	for rows.Next() {
		var o secondary.OwnedRecord
		if err := rows.Scan(&o.ID, &o.PersonID); err != nil {
			return nil, fmt.Errorf("failed to scan %s owner: %w", table, err)
		}
		owned = append(owned, o)
	}
	return owned, mapError(fmt.Sprintf("failed to list %s", table), rows.Err())
}
