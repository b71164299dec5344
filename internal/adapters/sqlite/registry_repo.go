package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/permitdesk/internal/core/ticket"
	"github.com/example/permitdesk/internal/ports/secondary"
)

// RegistryRepository implements secondary.RegistryRepository for one of the
// permit-like registry tables. The three tables share a column layout.
type RegistryRepository struct {
	db    *sql.DB
	kind  ticket.Kind
	table string
}

// NewRegistryRepository creates a repository for vehicles, import permits or
// company registrations.
func NewRegistryRepository(db *sql.DB, kind ticket.Kind) (*RegistryRepository, error) {
	if _, ok := ticket.EntityPrefix(kind); !ok || kind == ticket.KindPerson {
		return nil, fmt.Errorf("kind %s is not a registry kind", kind)
	}
	return &RegistryRepository{db: db, kind: kind, table: ownerTables[kind]}, nil
}

// NewVehicleRepository creates the vehicles repository.
func NewVehicleRepository(db *sql.DB) *RegistryRepository {
	return &RegistryRepository{db: db, kind: ticket.KindVehicle, table: "vehicles"}
}

// NewImportPermitRepository creates the import permits repository.
func NewImportPermitRepository(db *sql.DB) *RegistryRepository {
	return &RegistryRepository{db: db, kind: ticket.KindImportPermit, table: "import_permits"}
}

// NewCompanyRegistrationRepository creates the company registrations repository.
func NewCompanyRegistrationRepository(db *sql.DB) *RegistryRepository {
	return &RegistryRepository{db: db, kind: ticket.KindCompanyRegistration, table: "company_registrations"}
}

const registrySelectCols = "id, ticket_number, title, reference, status, person_id, notes, created_by, created_at, updated_at"

func scanRegistry(scanner interface {
	Scan(dest ...any) error
}) (*secondary.RegistryRecord, error) {
	var (
		reference sql.NullString
		personID  sql.NullString
		notes     sql.NullString
	)

	record := &secondary.RegistryRecord{}
	err := scanner.Scan(
		&record.ID, &record.TicketNumber, &record.Title, &reference, &record.Status,
		&personID, &notes, &record.CreatedBy, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Reference = reference.String
	record.PersonID = personID.String
	record.Notes = notes.String

	return record, nil
}

// Kind returns the entity kind stored by this repository.
func (r *RegistryRepository) Kind() ticket.Kind {
	return r.kind
}

// Create persists a new entry.
func (r *RegistryRepository) Create(ctx context.Context, entry *secondary.RegistryRecord) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO "+r.table+` (id, ticket_number, title, reference, status, person_id, notes, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.TicketNumber, entry.Title, nullString(entry.Reference), entry.Status,
		nullString(entry.PersonID), nullString(entry.Notes), entry.CreatedBy, entry.CreatedAt, entry.UpdatedAt,
	)
	return mapError(fmt.Sprintf("failed to create %s", r.kind), err)
}

// GetByID retrieves an entry by its ID.
func (r *RegistryRepository) GetByID(ctx context.Context, id string) (*secondary.RegistryRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+registrySelectCols+" FROM "+r.table+" WHERE id = ?", id)

	record, err := scanRegistry(row)
	if err != nil {
		return nil, mapError(fmt.Sprintf("%s %s", r.kind, id), err)
	}
	return record, nil
}

// GetByTicket retrieves an entry by ticket number.
func (r *RegistryRepository) GetByTicket(ctx context.Context, number string) (*secondary.RegistryRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+registrySelectCols+" FROM "+r.table+" WHERE ticket_number = ?", number)

	record, err := scanRegistry(row)
	if err != nil {
		return nil, mapError(fmt.Sprintf("%s %s", r.kind, number), err)
	}
	return record, nil
}

// List retrieves entries matching the given filters, newest first.
func (r *RegistryRepository) List(ctx context.Context, filters secondary.RegistryFilters) ([]*secondary.RegistryRecord, error) {
	query := "SELECT " + registrySelectCols + " FROM " + r.table + " WHERE 1=1"
	args := []any{}

	if s := strings.TrimSpace(filters.Search); s != "" {
		like := "%" + s + "%"
		query += " AND (title LIKE ? OR reference LIKE ? OR ticket_number LIKE ?)"
		args = append(args, like, like, like)
	}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	if filters.PersonID != "" {
		query += " AND person_id = ?"
		args = append(args, filters.PersonID)
	}

	query += " ORDER BY created_at DESC, ticket_number DESC"

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(fmt.Sprintf("failed to list %s", r.table), err)
	}
	defer rows.Close()

	var entries []*secondary.RegistryRecord
	for rows.Next() {
		record, err := scanRegistry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.kind, err)
		}
		entries = append(entries, record)
	}
	return entries, mapError(fmt.Sprintf("failed to list %s", r.table), rows.Err())
}

// UpdateStatus moves an entry from one status to another. Returns false when the
// entry is no longer in the expected status.
func (r *RegistryRepository) UpdateStatus(ctx context.Context, id, from, to string, at time.Time) (bool, error) {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE "+r.table+" SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		to, at, id, from,
	)
	if err != nil {
		return false, mapError(fmt.Sprintf("failed to update %s status", r.kind), err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}
