// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"errors"
	"time"

	"github.com/example/permitdesk/internal/core/ticket"
)

// Sentinel errors for storage facts. Repositories return these (optionally wrapped)
// so services can translate them into domain errors.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
	ErrBusy      = errors.New("database busy")
)

// Transactor runs a unit of work atomically. Repositories called with the ctx
// passed to fn participate in the same transaction.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SequenceRepository claims ticket sequence values.
type SequenceRepository interface {
	// Next claims and returns the next value for the series. Must run inside a
	// transaction; the claim rolls back with it.
	Next(ctx context.Context, series ticket.Series) (int, error)

	// Peek returns the value Next would claim, without claiming it.
	Peek(ctx context.Context, series ticket.Series) (int, error)
}

// PersonRepository defines the secondary port for person persistence.
type PersonRepository interface {
	// Create persists a new person.
	Create(ctx context.Context, person *PersonRecord) error

	// GetByID retrieves a person by its ID.
	GetByID(ctx context.Context, id string) (*PersonRecord, error)

	// GetByTicket retrieves a person by ticket number.
	GetByTicket(ctx context.Context, number string) (*PersonRecord, error)

	// List retrieves persons matching the given filters.
	List(ctx context.Context, filters PersonFilters) ([]*PersonRecord, error)

	// ListGuardianTree returns the person and every person reachable through guardian links.
	ListGuardianTree(ctx context.Context, rootID string) ([]*PersonRecord, error)

	// Delete removes a person from persistence.
	Delete(ctx context.Context, id string) error
}

// PersonRecord represents a person as stored in persistence.
type PersonRecord struct {
	ID             string
	TicketNumber   string
	FirstName      string
	LastName       string
	Nationality    string
	PassportNumber string
	GuardianID     string
	Relationship   string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PersonFilters contains filter options for querying persons.
type PersonFilters struct {
	Search     string
	GuardianID string
	Limit      int
}

// TemplateRepository defines the secondary port for checklist template persistence.
type TemplateRepository interface {
	// Create persists a new template and its items.
	Create(ctx context.Context, template *TemplateRecord) error

	// GetByID retrieves a template with items.
	GetByID(ctx context.Context, id string) (*TemplateRecord, error)

	// GetActive retrieves the active template for a category.
	GetActive(ctx context.Context, category string) (*TemplateRecord, error)

	// MaxVersion returns the highest version for a category, 0 if none.
	MaxVersion(ctx context.Context, category string) (int, error)

	// DeactivateActive clears the active flag for a category and returns how many rows changed.
	DeactivateActive(ctx context.Context, category string) (int64, error)

	// List retrieves templates (without items) matching the given filters.
	List(ctx context.Context, filters TemplateFilters) ([]*TemplateRecord, error)
}

// TemplateRecord represents a checklist template as stored in persistence.
type TemplateRecord struct {
	ID        string
	Name      string
	Category  string
	Version   int
	Active    bool
	CreatedBy string
	CreatedAt time.Time
	Items     []TemplateItemRecord
}

// TemplateItemRecord is one ordered template line.
type TemplateItemRecord struct {
	Position int
	Label    string
	Required bool
	Hint     string
}

// TemplateFilters contains filter options for querying templates.
type TemplateFilters struct {
	Search   string
	Category string
}

// PermitRepository defines the secondary port for permit persistence.
type PermitRepository interface {
	// Create persists a new permit.
	Create(ctx context.Context, permit *PermitRecord) error

	// GetByID retrieves a permit by its ID.
	GetByID(ctx context.Context, id string) (*PermitRecord, error)

	// GetByTicket retrieves a permit by ticket number.
	GetByTicket(ctx context.Context, number string) (*PermitRecord, error)

	// List retrieves permits matching the given filters.
	List(ctx context.Context, filters PermitFilters) ([]*PermitRecord, error)

	// UpdateStatus moves a permit from one status to another. Returns false when the
	// permit is no longer in the expected status.
	UpdateStatus(ctx context.Context, id, from, to string, at time.Time) (bool, error)

	// UpdateDetails updates notes and due date.
	UpdateDetails(ctx context.Context, id string, notes *string, dueDate *time.Time, at time.Time) error

	// ListOwned returns permit ids owned by any of the given persons.
	ListOwned(ctx context.Context, personIDs []string) ([]OwnedRecord, error)

	// Delete removes a permit. Checklist items and history cascade.
	Delete(ctx context.Context, id string) error
}

// PermitRecord represents a permit as stored in persistence.
type PermitRecord struct {
	ID               string
	TicketNumber     string
	Category         string
	Status           string
	PersonID         string
	PersonName       string // populated on reads
	ChecklistID      string
	ChecklistVersion int
	DueDate          *time.Time
	Notes            string
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PermitFilters contains filter options for querying permits.
type PermitFilters struct {
	PersonID string
	Status   string
	Category string
	Limit    int
}

// OwnedRecord pairs a row id with the person owning it.
type OwnedRecord struct {
	ID       string
	PersonID string
}

// ChecklistItemRepository defines the secondary port for per-permit checklist items.
type ChecklistItemRepository interface {
	// CreateBatch persists items for a permit.
	CreateBatch(ctx context.Context, items []*ChecklistItemRecord) error

	// GetByID retrieves an item.
	GetByID(ctx context.Context, id string) (*ChecklistItemRecord, error)

	// ListByPermit retrieves items ordered by position.
	ListByPermit(ctx context.Context, permitID string) ([]*ChecklistItemRecord, error)

	// UpdateCompletion writes completion state.
	UpdateCompletion(ctx context.Context, id string, completed bool, by string, at *time.Time) error

	// UpdateNotes replaces item notes.
	UpdateNotes(ctx context.Context, id, notes string) error

	// UpdateFiles replaces the item's file references.
	UpdateFiles(ctx context.Context, id string, refs []string) error
}

// ChecklistItemRecord represents a permit checklist item as stored in persistence.
type ChecklistItemRecord struct {
	ID          string
	PermitID    string
	Position    int
	Label       string
	Required    bool
	Hint        string
	Completed   bool
	CompletedBy string
	CompletedAt *time.Time
	Notes       string
	FileURLs    []string
	UpdatedAt   time.Time
}

// HistoryRepository defines the secondary port for the append-only permit audit trail.
type HistoryRepository interface {
	// Append writes a history row.
	Append(ctx context.Context, entry *HistoryRecord) error

	// ListByPermit returns entries newest first. limit <= 0 means all.
	ListByPermit(ctx context.Context, permitID string, limit int) ([]*HistoryRecord, error)
}

// HistoryRecord represents one status change.
type HistoryRecord struct {
	ID         string
	PermitID   string
	FromStatus string
	ToStatus   string
	ChangedBy  string
	Notes      string
	ChangedAt  time.Time
}

// TaskRepository defines the secondary port for task persistence.
type TaskRepository interface {
	// Create persists a new task.
	Create(ctx context.Context, task *TaskRecord) error

	// GetByID retrieves a task by its ID.
	GetByID(ctx context.Context, id string) (*TaskRecord, error)

	// List retrieves tasks matching the given filters.
	List(ctx context.Context, filters TaskFilters) ([]*TaskRecord, error)

	// Complete marks a task done.
	Complete(ctx context.Context, id string, at time.Time) error

	// ListOwned returns task ids owned by any of the given persons.
	ListOwned(ctx context.Context, personIDs []string) ([]OwnedRecord, error)

	// Delete removes a task.
	Delete(ctx context.Context, id string) error
}

// TaskRecord represents a task as stored in persistence.
type TaskRecord struct {
	ID          string
	Title       string
	PersonID    string
	PermitID    string
	Status      string
	DueDate     *time.Time
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// TaskFilters contains filter options for querying tasks.
type TaskFilters struct {
	PersonID string
	PermitID string
	Status   string
}

// RegistryRepository persists one permit-like registry kind
// (vehicles, import permits, company registrations).
type RegistryRepository interface {
	// Kind returns the entity kind stored by this repository.
	Kind() ticket.Kind

	// Create persists a new entry.
	Create(ctx context.Context, entry *RegistryRecord) error

	// GetByID retrieves an entry by its ID.
	GetByID(ctx context.Context, id string) (*RegistryRecord, error)

	// GetByTicket retrieves an entry by ticket number.
	GetByTicket(ctx context.Context, number string) (*RegistryRecord, error)

	// List retrieves entries matching the given filters.
	List(ctx context.Context, filters RegistryFilters) ([]*RegistryRecord, error)

	// UpdateStatus moves an entry from one status to another. Returns false when the
	// entry is no longer in the expected status.
	UpdateStatus(ctx context.Context, id, from, to string, at time.Time) (bool, error)
}

// RegistryRecord represents a vehicle, import permit, or company registration.
type RegistryRecord struct {
	ID           string
	TicketNumber string
	Title        string // make/model, goods description, or company name
	Reference    string // plate, shipment reference, or registration number
	Status       string
	PersonID     string
	Notes        string
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RegistryFilters contains filter options for querying registry entries.
type RegistryFilters struct {
	Search   string
	Status   string
	PersonID string
}

// CacheInvalidator is the fire-and-forget revalidation signal consumed by readers.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}
