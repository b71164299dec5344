package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/permitdesk/internal/ports/secondary"
)

// TemplateRepository implements secondary.TemplateRepository with SQLite.
type TemplateRepository struct {
	db *sql.DB
}

// NewTemplateRepository creates a new SQLite template repository.
func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

const templateSelectCols = "id, name, category, version, active, created_by, created_at"

func scanTemplate(scanner interface {
	Scan(dest ...any) error
}) (*secondary.TemplateRecord, error) {
	record := &secondary.TemplateRecord{}
	err := scanner.Scan(
		&record.ID, &record.Name, &record.Category, &record.Version,
		&record.Active, &record.CreatedBy, &record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Create persists a new template and its items. Callers deactivate the prior
// active template first; the partial unique index rejects a second active row.
func (r *TemplateRepository) Create(ctx context.Context, template *secondary.TemplateRecord) error {
	q := conn(ctx, r.db)

	_, err := q.ExecContext(ctx,
		"INSERT INTO checklist_templates (id, name, category, version, active, created_by, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		template.ID, template.Name, template.Category, template.Version, template.Active,
		template.CreatedBy, template.CreatedAt,
	)
	if err != nil {
		return mapError("failed to create template", err)
	}

	for _, item := range template.Items {
		_, err := q.ExecContext(ctx,
			"INSERT INTO checklist_template_items (template_id, position, label, required, hint) VALUES (?, ?, ?, ?, ?)",
			template.ID, item.Position, item.Label, item.Required, nullString(item.Hint),
		)
		if err != nil {
			return mapError("failed to create template item", err)
		}
	}
	return nil
}

// GetByID retrieves a template with items.
func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*secondary.TemplateRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+templateSelectCols+" FROM checklist_templates WHERE id = ?", id)

	record, err := scanTemplate(row)
	if err != nil {
		return nil, mapError(fmt.Sprintf("template %s", id), err)
	}
	return r.withItems(ctx, record)
}

// GetActive retrieves the active template for a category.
func (r *TemplateRepository) GetActive(ctx context.Context, category string) (*secondary.TemplateRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+templateSelectCols+" FROM checklist_templates WHERE category = ? AND active = 1", category)

	record, err := scanTemplate(row)
	if err != nil {
		return nil, mapError(fmt.Sprintf("active template for %s", category), err)
	}
	return r.withItems(ctx, record)
}

// MaxVersion returns the highest version for a category, 0 if none.
func (r *TemplateRepository) MaxVersion(ctx context.Context, category string) (int, error) {
	var version int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM checklist_templates WHERE category = ?", category,
	).Scan(&version)
	if err != nil {
		return 0, mapError("failed to get max template version", err)
	}
	return version, nil
}

// DeactivateActive clears the active flag for a category and returns how many rows changed.
func (r *TemplateRepository) DeactivateActive(ctx context.Context, category string) (int64, error) {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE checklist_templates SET active = 0 WHERE category = ? AND active = 1", category)
	if err != nil {
		return 0, mapError("failed to deactivate template", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// List retrieves templates (without items) ordered by category, newest version first.
func (r *TemplateRepository) List(ctx context.Context, filters secondary.TemplateFilters) ([]*secondary.TemplateRecord, error) {
	query := "SELECT " + templateSelectCols + " FROM checklist_templates WHERE 1=1"
	args := []any{}

	if s := strings.TrimSpace(filters.Search); s != "" {
		like := "%" + s + "%"
		query += " AND (name LIKE ? OR category LIKE ?)"
		args = append(args, like, like)
	}

	if filters.Category != "" {
		query += " AND category = ?"
		args = append(args, filters.Category)
	}

	query += " ORDER BY category ASC, version DESC"

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("failed to list templates", err)
	}
	defer rows.Close()

	var templates []*secondary.TemplateRecord
	for rows.Next() {
		record, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, record)
	}
	return templates, mapError("failed to list templates", rows.Err())
}

func (r *TemplateRepository) withItems(ctx context.Context, record *secondary.TemplateRecord) (*secondary.TemplateRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT position, label, required, hint FROM checklist_template_items WHERE template_id = ? ORDER BY position",
		record.ID,
	)
	if err != nil {
		return nil, mapError("failed to load template items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item secondary.TemplateItemRecord
			hint sql.NullString
		)
		if err := rows.Scan(&item.Position, &item.Label, &item.Required, &hint); err != nil {
			return nil, fmt.Errorf("failed to scan template item: %w", err)
		}
		item.Hint = hint.String
		record.Items = append(record.Items, item)
	}
	return record, mapError("failed to load template items", rows.Err())
}
