package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/permitdesk/internal/ports/secondary"
)

// PersonRepository implements secondary.PersonRepository with SQLite.
type PersonRepository struct {
	db *sql.DB
}

// NewPersonRepository creates a new SQLite person repository.
func NewPersonRepository(db *sql.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

const personSelectCols = "id, ticket_number, first_name, last_name, nationality, passport_number, guardian_id, relationship, created_by, created_at, updated_at"

// scanPerson scans a person row into a PersonRecord.
func scanPerson(scanner interface {
	Scan(dest ...any) error
}) (*secondary.PersonRecord, error) {
	var (
		lastName     sql.NullString
		nationality  sql.NullString
		passport     sql.NullString
		guardianID   sql.NullString
		relationship sql.NullString
	)

	record := &secondary.PersonRecord{}
	err := scanner.Scan(
		&record.ID, &record.TicketNumber, &record.FirstName, &lastName, &nationality, &passport,
		&guardianID, &relationship, &record.CreatedBy, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.LastName = lastName.String
	record.Nationality = nationality.String
	record.PassportNumber = passport.String
	record.GuardianID = guardianID.String
	record.Relationship = relationship.String

	return record, nil
}

// Create persists a new person.
func (r *PersonRepository) Create(ctx context.Context, person *secondary.PersonRecord) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO persons (id, ticket_number, first_name, last_name, nationality, passport_number, guardian_id, relationship, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		person.ID, person.TicketNumber, person.FirstName, nullString(person.LastName),
		nullString(person.Nationality), nullString(person.PassportNumber),
		nullString(person.GuardianID), nullString(person.Relationship),
		person.CreatedBy, person.CreatedAt, person.UpdatedAt,
	)
	return mapError("failed to create person", err)
}

// GetByID retrieves a person by its ID.
func (r *PersonRepository) GetByID(ctx context.Context, id string) (*secondary.PersonRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+personSelectCols+" FROM persons WHERE id = ?", id)

	record, err := scanPerson(row)
	if err != nil {
		return nil, mapError(fmt.Sprintf("person %s", id), err)
	}
	return record, nil
}

// GetByTicket retrieves a person by ticket number.
func (r *PersonRepository) GetByTicket(ctx context.Context, number string) (*secondary.PersonRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+personSelectCols+" FROM persons WHERE ticket_number = ?", number)

	record, err := scanPerson(row)
	if err != nil {
		return nil, mapError(fmt.Sprintf("person %s", number), err)
	}
	return record, nil
}

// List retrieves persons matching the given filters, newest first.
func (r *PersonRepository) List(ctx context.Context, filters secondary.PersonFilters) ([]*secondary.PersonRecord, error) {
	query := "SELECT " + personSelectCols + " FROM persons WHERE 1=1"
	args := []any{}

	if s := strings.TrimSpace(filters.Search); s != "" {
		like := "%" + s + "%"
		query += " AND (first_name LIKE ? OR last_name LIKE ? OR ticket_number LIKE ? OR passport_number LIKE ?)"
		args = append(args, like, like, like, like)
	}

	if filters.GuardianID != "" {
		query += " AND guardian_id = ?"
		args = append(args, filters.GuardianID)
	}

	query += " ORDER BY created_at DESC, ticket_number DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("failed to list persons", err)
	}
	defer rows.Close()

	var persons []*secondary.PersonRecord
	for rows.Next() {
		record, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		persons = append(persons, record)
	}
	return persons, mapError("failed to list persons", rows.Err())
}

// ListGuardianTree returns the person and every person reachable through guardian links.
func (r *PersonRepository) ListGuardianTree(ctx context.Context, rootID string) ([]*secondary.PersonRecord, error) {
	// UNION (not UNION ALL) terminates on guardian cycles.
	rows, err := conn(ctx, r.db).QueryContext(ctx, `
		WITH RECURSIVE tree(id) AS (
			SELECT id FROM persons WHERE id = ?
			UNION
			SELECT p.id FROM persons p JOIN tree t ON p.guardian_id = t.id
		)
		SELECT `+personSelectCols+` FROM persons WHERE id IN (SELECT id FROM tree) ORDER BY id`,
		rootID,
	)
	if err != nil {
		return nil, mapError("failed to walk guardian tree", err)
	}
	defer rows.Close()

	var persons []*secondary.PersonRecord
	for rows.Next() {
		record, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		persons = append(persons, record)
	}
	return persons, mapError("failed to walk guardian tree", rows.Err())
}

// Delete removes a person from persistence.
func (r *PersonRepository) Delete(ctx context.Context, id string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, "DELETE FROM persons WHERE id = ?", id)
	if err != nil {
		return mapError("failed to delete person", err)
	}
	return requireAffected(result, fmt.Sprintf("person %s", id))
}

// requireAffected reports ErrNotFound when a statement touched no rows.
func requireAffected(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, secondary.ErrNotFound)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
