package primary

import (
	"context"
	"time"
)

// ChecklistService defines the primary port for per-permit checklist item state.
type ChecklistService interface {
	// SetItemCompletion marks an item completed or not, stamping or clearing the actor.
	SetItemCompletion(ctx context.Context, itemID string, completed bool, actorID string) (*ChecklistItem, error)

	// AttachNotes replaces an item's notes.
	AttachNotes(ctx context.Context, itemID, notes string) (*ChecklistItem, error)

	// AttachFiles adds file references not already attached.
	AttachFiles(ctx context.Context, itemID string, refs []string) (*ChecklistItem, error)

	// ListItems lists a permit's items in template order.
	ListItems(ctx context.Context, permitID string) ([]*ChecklistItem, error)

	// Progress summarizes completion for a permit.
	Progress(ctx context.Context, permitID string) (*ChecklistProgress, error)
}

// ChecklistItem represents a permit's checklist item at the port boundary.
type ChecklistItem struct {
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
}

// ChecklistProgress summarizes checklist completion.
type ChecklistProgress struct {
	Total           int
	Completed       int
	RequiredPending int
	PendingRequired []string
}
