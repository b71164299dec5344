package permit

import "fmt"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	Field   string // set when the failure is an input problem rather than a state problem
}

// TransitionContext provides context for status transition guards.
// Populated by the caller with pre-fetched state.
type TransitionContext struct {
	PermitID string
	Current  Status
	Target   Status

	// Approval policy. RequiredPending is only consulted when RequireCompletedChecklist is set.
	RequireCompletedChecklist bool
	RequiredPending           int
}

// CanTransition evaluates whether a permit may move to the target status.
// Rules:
// - terminal statuses never move
// - (current, target) must be in the transition table
// - with RequireCompletedChecklist, approval needs every required item completed
func CanTransition(ctx TransitionContext) GuardResult {
	if ctx.Current.IsTerminal() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("permit %s is %s, which is final", ctx.PermitID, ctx.Current),
		}
	}
	if !IsLegal(ctx.Current, ctx.Target) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("permit %s cannot move from %s to %s", ctx.PermitID, ctx.Current, ctx.Target),
		}
	}

	if ctx.Target == StatusApproved && ctx.RequireCompletedChecklist && ctx.RequiredPending > 0 {
		return GuardResult{
			Allowed: false,
			Field:   "checklist",
			Reason:  fmt.Sprintf("permit %s has %d required checklist item(s) pending", ctx.PermitID, ctx.RequiredPending),
		}
	}

	return GuardResult{Allowed: true}
}

// CreateContext provides context for permit creation guards.
type CreateContext struct {
	Category     string
	PersonID     string
	PersonExists bool
}

// CanCreatePermit evaluates whether a permit can be created.
// Rules:
// - category must be known
// - person must exist
func CanCreatePermit(ctx CreateContext) GuardResult {
	if _, ok := ParseCategory(ctx.Category); !ok {
		return GuardResult{
			Allowed: false,
			Field:   "category",
			Reason:  fmt.Sprintf("unknown permit category %q", ctx.Category),
		}
	}
	if !ctx.PersonExists {
		return GuardResult{
			Allowed: false,
			Field:   "personId",
			Reason:  fmt.Sprintf("person %s not found", ctx.PersonID),
		}
	}
	return GuardResult{Allowed: true}
}
