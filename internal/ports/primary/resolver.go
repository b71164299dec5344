package primary

import (
	"context"
	"time"
)

// TicketResolver defines the primary port for looking up any entity by ticket number.
type TicketResolver interface {
	// Resolve classifies the ticket by prefix and fetches a normalized view.
	// Unknown prefixes and missing tickets return nil, nil.
	Resolve(ctx context.Context, number string) (*EntityDetail, error)

	// ResolveWithDetails adds checklist and history aggregates for permits.
	ResolveWithDetails(ctx context.Context, number string, historyLimit int) (*EntityDetails, error)
}

// TicketService defines the primary port for ticket number inspection.
type TicketService interface {
	// Peek returns the ticket number the next entity of the given prefix would receive.
	// Permit prefixes use the current year.
	Peek(ctx context.Context, prefix string) (string, error)
}

// EntityDetail is the normalized shape shared by every ticketed entity.
type EntityDetail struct {
	Type         string
	ID           string
	TicketNumber string
	Title        string
	Status       string
	Category     string // permits only
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EntityDetails extends EntityDetail with read-only aggregates.
type EntityDetails struct {
	EntityDetail
	Checklist     *ChecklistProgress // nil for kinds without a checklist
	RecentHistory []*HistoryEntry
}
