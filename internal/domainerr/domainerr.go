// Package domainerr defines the error taxonomy returned by every service operation.
// Each error carries a Code so callers can branch on outcome with CodeOf/HasCode
// instead of matching strings.
package domainerr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code classifies a domain error.
type Code string

const (
	CodeValidation        Code = "validation"
	CodeNotFound          Code = "not_found"
	CodeIllegalTransition Code = "illegal_transition"
	CodeHasDependents     Code = "has_dependents"
	CodeConflict          Code = "conflict"
	CodeContention        Code = "contention"
	CodeStorage           Code = "storage"
)

// Coded is implemented by every error in this package.
type Coded interface {
	error
	Code() Code
}

// CodeOf returns the code of the first Coded error in err's chain, or "" if none.
func CodeOf(err error) Code {
	var c Coded
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// Retryable reports whether the caller may retry the operation unchanged.
func Retryable(err error) bool {
	switch CodeOf(err) {
	case CodeConflict, CodeContention:
		return true
	}
	return false
}

// ValidationError rejects malformed input. Fields maps field name to problem.
type ValidationError struct {
	Fields map[string]string
}

// Validation builds a ValidationError for a single field.
func Validation(field, problem string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: problem}}
}

// Add records another field problem and returns the receiver.
func (e *ValidationError) Add(field, problem string) *ValidationError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = problem
	return e
}

// OrNil returns nil when no field problems were recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Code() Code { return CodeValidation }

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFoundError reports a missing referenced entity.
type NotFoundError struct {
	Entity string
	ID     string
}

// NotFound builds a NotFoundError.
func NotFound(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Code() Code { return CodeNotFound }

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// IllegalTransitionError reports a status change not permitted from the current state.
type IllegalTransitionError struct {
	Current   string
	Requested string
	Reason    string
}

func (e *IllegalTransitionError) Code() Code { return CodeIllegalTransition }

func (e *IllegalTransitionError) Error() string {
	msg := fmt.Sprintf("illegal transition %s -> %s", e.Current, e.Requested)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// HasDependentsError blocks a delete. Counts breaks blockers down by entity type.
type HasDependentsError struct {
	Entity string
	ID     string
	Counts map[string]int
}

func (e *HasDependentsError) Code() Code { return CodeHasDependents }

func (e *HasDependentsError) Error() string {
	keys := make([]string, 0, len(e.Counts))
	for k, n := range e.Counts {
		if n > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%d %s", e.Counts[k], k))
	}
	return fmt.Sprintf("%s %s has dependents (%s); cascade required", e.Entity, e.ID, strings.Join(parts, ", "))
}

// ConflictError reports a concurrent modification the caller should retry.
type ConflictError struct {
	Message string
}

// Conflict builds a ConflictError.
func Conflict(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func (e *ConflictError) Code() Code { return CodeConflict }

func (e *ConflictError) Error() string { return "conflict: " + e.Message }

// ContentionError reports that bounded internal retries were exhausted.
type ContentionError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *ContentionError) Code() Code { return CodeContention }

func (e *ContentionError) Error() string {
	return fmt.Sprintf("%s: contention after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *ContentionError) Unwrap() error { return e.Err }

// StorageError wraps an unexpected store failure.
type StorageError struct {
	Op  string
	Err error
}

// Storage wraps err as a StorageError unless it already carries a code.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if CodeOf(err) != "" {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Code() Code { return CodeStorage }

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }
