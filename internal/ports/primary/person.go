package primary

import (
	"context"
	"time"
)

// PersonService defines the primary port for person records and guarded deletion.
type PersonService interface {
	// CreatePerson creates a person with a FOR ticket.
	CreatePerson(ctx context.Context, req CreatePersonRequest) (*Person, error)

	// GetPerson retrieves a person by ID.
	GetPerson(ctx context.Context, personID string) (*Person, error)

	// ListPersons lists persons matching a free-text search.
	ListPersons(ctx context.Context, filters PersonFilters) ([]*Person, error)

	// PlanDeletion describes every row a cascading delete of the person would remove.
	PlanDeletion(ctx context.Context, personID string) (*DeletionPlan, error)

	// CommitDeletion executes a confirmed plan; fails with a conflict if dependents changed.
	CommitDeletion(ctx context.Context, plan *DeletionPlan) error

	// DeletePerson deletes a person. Without cascade, dependents block the delete.
	DeletePerson(ctx context.Context, personID string, cascade bool) (*DeletionPlan, error)
}

// CreatePersonRequest contains parameters for creating a person.
type CreatePersonRequest struct {
	FirstName      string
	LastName       string
	Nationality    string
	PassportNumber string
	GuardianID     string // optional, makes this person a dependent
	Relationship   string
}

// PersonFilters contains filter options for listing persons.
type PersonFilters struct {
	Search     string
	GuardianID string
	Limit      int
}

// Person represents a person at the port boundary.
type Person struct {
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

// FullName joins first and last name.
func (p *Person) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// DeletionPlan lists exactly what a commit would delete.
type DeletionPlan struct {
	Entity        string
	RootID        string
	Dependents    []string
	Permits       []string
	Tasks         []string
	UnlinkedTasks []string
	Counts        map[string]int
	Fingerprint   string
}
