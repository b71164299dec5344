package primary

import (
	"context"
	"time"
)

// PermitService defines the primary port for permit records and the approval state machine.
type PermitService interface {
	// CreatePermit creates a permit and snapshots the active checklist template.
	CreatePermit(ctx context.Context, req CreatePermitRequest) (*Permit, error)

	// GetPermit retrieves a permit by ID.
	GetPermit(ctx context.Context, permitID string) (*Permit, error)

	// GetPermitByTicket retrieves a permit by ticket number.
	GetPermitByTicket(ctx context.Context, number string) (*Permit, error)

	// ListPermits lists permits with optional filters.
	ListPermits(ctx context.Context, filters PermitFilters) ([]*Permit, error)

	// UpdatePermit updates notes and/or due date. Status is never changed here.
	UpdatePermit(ctx context.Context, req UpdatePermitRequest) (*Permit, error)

	// Transition moves a permit to a new status and appends history atomically.
	Transition(ctx context.Context, req TransitionRequest) (*Permit, error)

	// Submit moves a PENDING permit to SUBMITTED.
	Submit(ctx context.Context, permitID, actorID, notes string) (*Permit, error)

	// Approve moves a SUBMITTED permit to APPROVED.
	Approve(ctx context.Context, permitID, actorID, notes string) (*Permit, error)

	// Reject moves a SUBMITTED permit to REJECTED.
	Reject(ctx context.Context, permitID, actorID, notes string) (*Permit, error)

	// History lists status changes newest first. limit <= 0 means all.
	History(ctx context.Context, permitID string, limit int) ([]*HistoryEntry, error)
}

// CreatePermitRequest contains parameters for creating a permit.
type CreatePermitRequest struct {
	Category string
	PersonID string
	Notes    string
	DueDate  *time.Time
}

// UpdatePermitRequest contains parameters for updating permit details.
// Nil fields are left unchanged.
type UpdatePermitRequest struct {
	PermitID string
	Notes    *string
	DueDate  *time.Time
}

// TransitionRequest contains parameters for a status change.
type TransitionRequest struct {
	PermitID string
	ToStatus string
	ActorID  string
	Notes    string
}

// PermitFilters contains filter options for listing permits.
type PermitFilters struct {
	PersonID string
	Status   string
	Category string
	Limit    int
}

// Permit represents a permit at the port boundary.
type Permit struct {
	ID               string
	TicketNumber     string
	Category         string
	Status           string
	PersonID         string
	PersonName       string
	ChecklistID      string
	ChecklistVersion int
	DueDate          *time.Time
	Notes            string
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Items            []*ChecklistItem // populated by CreatePermit and GetPermit
}

// HistoryEntry is one append-only status change.
type HistoryEntry struct {
	ID         string
	PermitID   string
	FromStatus string
	ToStatus   string
	ChangedBy  string
	Notes      string
	ChangedAt  time.Time
}
