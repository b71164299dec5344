// Package task contains the pure business logic for follow-up task operations.
// Guards are pure functions that evaluate preconditions without side effects.
package task

import (
	"fmt"
	"strings"
)

// Task statuses.
const (
	StatusOpen = "open"
	StatusDone = "done"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	Field   string
}

// CreateTaskContext provides context for task creation guards.
type CreateTaskContext struct {
	Title        string
	PersonID     string // optional, empty if not specified
	PersonExists bool   // only checked if PersonID != ""
	PermitID     string // optional, empty if not specified
	PermitExists bool   // only checked if PermitID != ""
}

// CompleteTaskContext provides context for task completion guards.
type CompleteTaskContext struct {
	TaskID string
	Status string
}

// CanCreateTask evaluates whether a task can be created.
// Rules:
// - Title is required
// - Person must exist (if person_id provided)
// - Permit must exist (if permit_id provided)
func CanCreateTask(ctx CreateTaskContext) GuardResult {
	if strings.TrimSpace(ctx.Title) == "" {
		return GuardResult{Allowed: false, Field: "title", Reason: "task title is required"}
	}

	if ctx.PersonID != "" && !ctx.PersonExists {
		return GuardResult{
			Allowed: false,
			Field:   "personId",
			Reason:  fmt.Sprintf("person %s not found", ctx.PersonID),
		}
	}

	if ctx.PermitID != "" && !ctx.PermitExists {
		return GuardResult{
			Allowed: false,
			Field:   "permitId",
			Reason:  fmt.Sprintf("permit %s not found", ctx.PermitID),
		}
	}

	return GuardResult{Allowed: true}
}

// CanCompleteTask evaluates whether a task can be completed.
// Rules:
// - Task must still be open
func CanCompleteTask(ctx CompleteTaskContext) GuardResult {
	if ctx.Status != StatusOpen {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("task %s is %s, only open tasks can be completed", ctx.TaskID, ctx.Status),
		}
	}
	return GuardResult{Allowed: true}
}
