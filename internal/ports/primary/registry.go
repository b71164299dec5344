package primary

import (
	"context"
	"time"
)

// RegistryService defines the primary port for one permit-like registry kind:
// vehicles, import permits, or company registrations.
type RegistryService interface {
	// Kind returns the display name of the registry kind.
	Kind() string

	// Create registers a new entry with a fresh ticket.
	Create(ctx context.Context, req CreateRegistryRequest) (*RegistryEntry, error)

	// Get retrieves an entry by ID.
	Get(ctx context.Context, id string) (*RegistryEntry, error)

	// List lists entries with optional filters.
	List(ctx context.Context, filters RegistryFilters) ([]*RegistryEntry, error)

	// SetStatus moves an entry through the permit status machine.
	SetStatus(ctx context.Context, id, status string) (*RegistryEntry, error)
}

// CreateRegistryRequest contains parameters for a registry entry.
type CreateRegistryRequest struct {
	Title     string
	Reference string
	PersonID  string // Optional owner
	Notes     string
}

// RegistryFilters contains filter options for listing registry entries.
type RegistryFilters struct {
	Search   string
	Status   string
	PersonID string
}

// RegistryEntry represents a registry entry at the port boundary.
type RegistryEntry struct {
	ID           string
	Kind         string
	TicketNumber string
	Title        string
	Reference    string
	Status       string
	PersonID     string
	Notes        string
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
