// Package permit contains the pure business logic for permit records:
// categories, statuses, and the approval state machine.
// This is part of the Functional Core - no I/O, only pure functions.
package permit

import (
	"strings"

	"github.com/example/permitdesk/internal/core/ticket"
)

// Category is a permit category.
type Category string

const (
	CategoryWorkPermit       Category = "WORK_PERMIT"
	CategoryResidenceID      Category = "RESIDENCE_ID"
	CategoryMedicalLicense   Category = "MEDICAL_LICENSE"
	CategoryPIP              Category = "PIP"
	CategoryCustoms          Category = "CUSTOMS"
	CategoryCarBoloInsurance Category = "CAR_BOLO_INSURANCE"
)

var categoryPrefixes = map[Category]ticket.Prefix{
	CategoryWorkPermit:       ticket.PrefixWorkPermit,
	CategoryResidenceID:      ticket.PrefixResidenceID,
	CategoryMedicalLicense:   ticket.PrefixMedicalLicense,
	CategoryPIP:              ticket.PrefixPIP,
	CategoryCustoms:          ticket.PrefixCustoms,
	CategoryCarBoloInsurance: ticket.PrefixCarBolo,
}

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{
		CategoryWorkPermit,
		CategoryResidenceID,
		CategoryMedicalLicense,
		CategoryPIP,
		CategoryCustoms,
		CategoryCarBoloInsurance,
	}
}

// ParseCategory normalizes user input. "LICENSE" is accepted for MEDICAL_LICENSE.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if c == "LICENSE" {
		c = CategoryMedicalLicense
	}
	_, ok := categoryPrefixes[c]
	return c, ok
}

// Prefix returns the ticket prefix of the category.
func (c Category) Prefix() ticket.Prefix {
	return categoryPrefixes[c]
}

// Status is a permit status.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusExpired   Status = "EXPIRED"
)

// ParseStatus normalizes user input.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusSubmitted, StatusApproved, StatusRejected, StatusExpired:
		return st, true
	}
	return st, false
}

// InitialStatus returns the status of a newly created permit.
func InitialStatus() Status {
	return StatusPending
}

// IsTerminal reports whether no further transition can leave the status.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusExpired
}

type edge struct{ from, to Status }

var legalTransitions = map[edge]bool{
	{StatusPending, StatusSubmitted}:  true,
	{StatusSubmitted, StatusApproved}: true,
	{StatusSubmitted, StatusRejected}: true,
}

// IsLegal reports whether (from, to) is in the transition table.
func IsLegal(from, to Status) bool {
	return legalTransitions[edge{from, to}]
}
