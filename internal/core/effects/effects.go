// Package effects defines effect types as data structures representing side effects
// that run after a unit of work has committed.
// Effects are pure data - they describe what should happen, not how.
package effects

import "fmt"

// Effect is the base interface for all effects.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// InvalidateEffect asks downstream caches to drop entries for the given keys.
// Fire-and-forget: the shell neither awaits nor retries it.
type InvalidateEffect struct {
	Keys []string
}

func (e InvalidateEffect) EffectType() string { return "invalidate" }

// CompositeEffect holds multiple effects to be executed in sequence.
type CompositeEffect struct {
	Effects []Effect
}

func (e CompositeEffect) EffectType() string { return "composite" }

// Cache keys. Readers cache by entity and by ticket; both must be dropped on change.
func EntityKey(entity, id string) string { return fmt.Sprintf("%s:%s", entity, id) }

// TicketKey is the cache key of a resolved ticket.
func TicketKey(number string) string { return "ticket:" + number }

// ListKey is the cache key of an entity listing.
func ListKey(entity string) string { return entity + ":list" }

// Invalidate builds an InvalidateEffect for an entity row, its ticket, and its listing.
func Invalidate(entity, id, ticketNumber string) InvalidateEffect {
	keys := []string{EntityKey(entity, id), ListKey(entity)}
	if ticketNumber != "" {
		keys = append(keys, TicketKey(ticketNumber))
	}
	return InvalidateEffect{Keys: keys}
}
