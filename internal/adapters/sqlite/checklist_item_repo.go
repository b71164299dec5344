package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/permitdesk/internal/ports/secondary"
)

// ChecklistItemRepository implements secondary.ChecklistItemRepository with SQLite.
type ChecklistItemRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewChecklistItemRepository creates a new SQLite checklist item repository.
func NewChecklistItemRepository(db *sql.DB) *ChecklistItemRepository {
	return &ChecklistItemRepository{db: db, now: time.Now}
}

const checklistItemSelectCols = "id, permit_id, position, label, required, hint, completed, completed_by, completed_at, notes, file_urls, updated_at"

func scanChecklistItem(scanner interface {
	Scan(dest ...any) error
}) (*secondary.ChecklistItemRecord, error) {
	var (
		hint        sql.NullString
		completedBy sql.NullString
		completedAt sql.NullTime
		notes       sql.NullString
		fileURLs    string
	)

	record := &secondary.ChecklistItemRecord{}
	err := scanner.Scan(
		&record.ID, &record.PermitID, &record.Position, &record.Label, &record.Required, &hint,
		&record.Completed, &completedBy, &completedAt, &notes, &fileURLs, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Hint = hint.String
	record.CompletedBy = completedBy.String
	record.CompletedAt = timePtr(completedAt)
	record.Notes = notes.String
	if fileURLs != "" {
		if err := json.Unmarshal([]byte(fileURLs), &record.FileURLs); err != nil {
			return nil, fmt.Errorf("item %s has malformed file_urls: %w", record.ID, err)
		}
	}

	return record, nil
}

// CreateBatch persists items for a permit.
func (r *ChecklistItemRepository) CreateBatch(ctx context.Context, items []*secondary.ChecklistItemRecord) error {
	q := conn(ctx, r.db)
	for _, item := range items {
		refs, err := encodeFileURLs(item.FileURLs)
		if err != nil {
			return err
		}
		_, err = q.ExecContext(ctx,
			`INSERT INTO permit_checklist_items (id, permit_id, position, label, required, hint, completed, completed_by, completed_at, notes, file_urls, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, item.PermitID, item.Position, item.Label, item.Required, nullString(item.Hint),
			item.Completed, nullString(item.CompletedBy), nullTime(item.CompletedAt),
			nullString(item.Notes), refs, item.UpdatedAt,
		)
		if err != nil {
			return mapError("failed to create checklist item", err)
		}
	}
	return nil
}

// GetByID retrieves an item.
func (r *ChecklistItemRepository) GetByID(ctx context.Context, id string) (*secondary.ChecklistItemRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+checklistItemSelectCols+" FROM permit_checklist_items WHERE id = ?", id)

	record, err := scanChecklistItem(row)
	if err != nil {
		return nil, mapError(fmt.Sprintf("checklist item %s", id), err)
	}
	return record, nil
}

// ListByPermit retrieves items ordered by position.
func (r *ChecklistItemRepository) ListByPermit(ctx context.Context, permitID string) ([]*secondary.ChecklistItemRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT "+checklistItemSelectCols+" FROM permit_checklist_items WHERE permit_id = ? ORDER BY position",
		permitID,
	)
	if err != nil {
		return nil, mapError("failed to list checklist items", err)
	}
	defer rows.Close()

	var items []*secondary.ChecklistItemRecord
	for rows.Next() {
		record, err := scanChecklistItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		items = append(items, record)
	}
	return items, mapError("failed to list checklist items", rows.Err())
}

// UpdateCompletion writes completion state.
func (r *ChecklistItemRepository) UpdateCompletion(ctx context.Context, id string, completed bool, by string, at *time.Time) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE permit_checklist_items SET completed = ?, completed_by = ?, completed_at = ?, updated_at = ? WHERE id = ?",
		completed, nullString(by), nullTime(at), r.now().UTC(), id,
	)
	if err != nil {
		return mapError("failed to update checklist item", err)
	}
	return requireAffected(result, fmt.Sprintf("checklist item %s", id))
}

// UpdateNotes replaces item notes.
func (r *ChecklistItemRepository) UpdateNotes(ctx context.Context, id, notes string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE permit_checklist_items SET notes = ?, updated_at = ? WHERE id = ?",
		nullString(notes), r.now().UTC(), id,
	)
	if err != nil {
		return mapError("failed to update checklist item notes", err)
	}
	return requireAffected(result, fmt.Sprintf("checklist item %s", id))
}

// UpdateFiles replaces the item's file references.
func (r *ChecklistItemRepository) UpdateFiles(ctx context.Context, id string, refs []string) error {
	encoded, err := encodeFileURLs(refs)
	if err != nil {
		return err
	}
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE permit_checklist_items SET file_urls = ?, updated_at = ? WHERE id = ?",
		encoded, r.now().UTC(), id,
	)
	if err != nil {
		return mapError("failed to update checklist item files", err)
	}
	return requireAffected(result, fmt.Sprintf("checklist item %s", id))
}

func encodeFileURLs(refs []string) (string, error) {
	if len(refs) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(refs)
	if err != nil {
		return "", fmt.Errorf("failed to encode file refs: %w", err)
	}
	return string(data), nil
}
