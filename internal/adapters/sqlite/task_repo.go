package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/permitdesk/internal/ports/secondary"
)

// TaskRepository implements secondary.TaskRepository with SQLite.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new SQLite task repository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// scanTask scans a task row into a TaskRecord.
func scanTask(scanner interface {
	Scan(dest ...any) error
}) (*secondary.TaskRecord, error) {
	var (
		personID    sql.NullString
		permitID    sql.NullString
		dueDate     sql.NullTime
		completedAt sql.NullTime
	)

	record := &secondary.TaskRecord{}
	err := scanner.Scan(
		&record.ID, &record.Title, &personID, &permitID, &record.Status, &dueDate,
		&record.CreatedBy, &record.CreatedAt, &record.UpdatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	record.PersonID = personID.String
	record.PermitID = permitID.String
	record.DueDate = timePtr(dueDate)
	record.CompletedAt = timePtr(completedAt)

	return record, nil
}

const taskSelectCols = "id, title, person_id, permit_id, status, due_date, created_by, created_at, updated_at, completed_at"

// Create persists a new task.
func (r *TaskRepository) Create(ctx context.Context, task *secondary.TaskRecord) error {
	status := task.Status
	if status == "" {
		status = "open"
	}

	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO tasks (id, title, person_id, permit_id, status, due_date, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Title, nullString(task.PersonID), nullString(task.PermitID), status,
		nullTime(task.DueDate), task.CreatedBy, task.CreatedAt, task.UpdatedAt,
	)
	return mapError("failed to create task", err)
}

// GetByID retrieves a task by its ID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*secondary.TaskRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+taskSelectCols+" FROM tasks WHERE id = ?", id)

	record, err := scanTask(row)
	if err != nil {
		return nil, mapError(fmt.Sprintf("task %s", id), err)
	}
	return record, nil
}

// List retrieves tasks matching the given filters.
func (r *TaskRepository) List(ctx context.Context, filters secondary.TaskFilters) ([]*secondary.TaskRecord, error) {
	query := "SELECT " + taskSelectCols + " FROM tasks WHERE 1=1"
	args := []any{}

	if filters.PersonID != "" {
		query += " AND person_id = ?"
		args = append(args, filters.PersonID)
	}

	if filters.PermitID != "" {
		query += " AND permit_id = ?"
		args = append(args, filters.PermitID)
	}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY created_at ASC, id ASC"

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("failed to list tasks", err)
	}
	defer rows.Close()

	var tasks []*secondary.TaskRecord
	for rows.Next() {
		record, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, record)
	}
	return tasks, mapError("failed to list tasks", rows.Err())
}

// Complete marks a task done.
func (r *TaskRepository) Complete(ctx context.Context, id string, at time.Time) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE tasks SET status = 'done', completed_at = ?, updated_at = ? WHERE id = ?",
		at, at, id,
	)
	if err != nil {
		return mapError("failed to complete task", err)
	}
	return requireAffected(result, fmt.Sprintf("task %s", id))
}

// ListOwned returns task ids owned by any of the given persons.
func (r *TaskRepository) ListOwned(ctx context.Context, personIDs []string) ([]secondary.OwnedRecord, error) {
	return listOwned(ctx, conn(ctx, r.db), "tasks", personIDs)
}

// Delete removes a task.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return mapError("failed to delete task", err)
	}
	return requireAffected(result, fmt.Sprintf("task %s", id))
}
