package permit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/permitdesk/internal/core/ticket"
)

var allStatuses = []Status{StatusPending, StatusSubmitted, StatusApproved, StatusRejected, StatusExpired}

func TestCanTransition_ExhaustivePairs(t *testing.T) {
	legal := map[[2]Status]bool{
		{StatusPending, StatusSubmitted}:  true,
		{StatusSubmitted, StatusApproved}: true,
		{StatusSubmitted, StatusRejected}: true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			result := CanTransition(TransitionContext{PermitID: "P1", Current: from, Target: to})
			want := legal[[2]Status{from, to}]
			assert.Equal(t, want, result.Allowed, "%s -> %s", from, to)
			if !want {
				assert.NotEmpty(t, result.Reason)
				if from.IsTerminal() {
					assert.Contains(t, result.Reason, "is final", "%s -> %s", from, to)
				}
			}
		}
	}
}

func TestCanTransition_ApprovalPolicy(t *testing.T) {
	tests := []struct {
		name        string
		ctx         TransitionContext
		wantAllowed bool
		wantField   string
	}{
		{
			name: "policy off ignores pending items",
			ctx: TransitionContext{
				PermitID: "P1", Current: StatusSubmitted, Target: StatusApproved,
				RequiredPending: 3,
			},
			wantAllowed: true,
		},
		{
			name: "policy on blocks approval with pending required items",
			ctx: TransitionContext{
				PermitID: "P1", Current: StatusSubmitted, Target: StatusApproved,
				RequireCompletedChecklist: true, RequiredPending: 1,
			},
			wantAllowed: false,
			wantField:   "checklist",
		},
		{
			name: "policy on allows approval when complete",
			ctx: TransitionContext{
				PermitID: "P1", Current: StatusSubmitted, Target: StatusApproved,
				RequireCompletedChecklist: true,
			},
			wantAllowed: true,
		},
		{
			name: "policy never gates rejection",
			ctx: TransitionContext{
				PermitID: "P1", Current: StatusSubmitted, Target: StatusRejected,
				RequireCompletedChecklist: true, RequiredPending: 2,
			},
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanTransition(tt.ctx)
			assert.Equal(t, tt.wantAllowed, result.Allowed)
			assert.Equal(t, tt.wantField, result.Field)
		})
	}
}

func TestCanCreatePermit(t *testing.T) {
	tests := []struct {
		name        string
		ctx         CreateContext
		wantAllowed bool
		wantReason  string
	}{
		{"known category and person", CreateContext{Category: "WORK_PERMIT", PersonID: "p1", PersonExists: true}, true, ""},
		{"license alias", CreateContext{Category: "license", PersonID: "p1", PersonExists: true}, true, ""},
		{"unknown category", CreateContext{Category: "FISHING", PersonID: "p1", PersonExists: true}, false, `unknown permit category "FISHING"`},
		{"missing person", CreateContext{Category: "PIP", PersonID: "p9"}, false, "person p9 not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanCreatePermit(tt.ctx)
			assert.Equal(t, tt.wantAllowed, result.Allowed)
			assert.Equal(t, tt.wantReason, result.Reason)
		})
	}
}

func TestCategoryPrefixesArePermitSeries(t *testing.T) {
	for _, c := range Categories() {
		_, err := ticket.PermitSeries(c.Prefix(), 2026)
		assert.NoError(t, err, c)
	}
	assert.Empty(t, Category("NOPE").Prefix())
}

func TestCanTransition_TerminalReason(t *testing.T) {
	result := CanTransition(TransitionContext{PermitID: "P1", Current: StatusApproved, Target: StatusRejected})
	assert.False(t, result.Allowed)
	assert.Equal(t, "permit P1 is APPROVED, which is final", result.Reason)

	result = CanTransition(TransitionContext{PermitID: "P1", Current: StatusPending, Target: StatusApproved})
	assert.Equal(t, "permit P1 cannot move from PENDING to APPROVED", result.Reason)
}

func TestStatusHelpers(t *testing.T) {
	assert.Equal(t, StatusPending, InitialStatus())
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.False(t, StatusSubmitted.IsTerminal())

	st, ok := ParseStatus(" submitted ")
	assert.True(t, ok)
	assert.Equal(t, StatusSubmitted, st)
	_, ok = ParseStatus("DONE")
	assert.False(t, ok)
}
