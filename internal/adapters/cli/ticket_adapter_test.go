package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/permitdesk/internal/ports/primary"
)

type mockResolver struct {
	detail  *primary.EntityDetail
	details *primary.EntityDetails
	err     error
}

func (m *mockResolver) Resolve(context.Context, string) (*primary.EntityDetail, error) {
	return m.detail, m.err
}

func (m *mockResolver) ResolveWithDetails(context.Context, string, int) (*primary.EntityDetails, error) {
	return m.details, m.err
}

type mockTicketService struct {
	next string
	err  error
}

func (m *mockTicketService) Peek(context.Context, string) (string, error) {
	return m.next, m.err
}

func TestTicketAdapter_Resolve(t *testing.T) {
	var out bytes.Buffer
	adapter := NewTicketAdapter(&mockResolver{detail: &primary.EntityDetail{
		Type: "Foreigner", ID: "p1", TicketNumber: "FOR-000100", Title: "Mara Okafor",
	}}, &mockTicketService{}, &out)

	found, err := adapter.Resolve(context.Background(), "FOR-000100", false, 0)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Contains(t, out.String(), "FOR-000100 Foreigner")
	assert.Contains(t, out.String(), "Title:   Mara Okafor")
	assert.NotContains(t, out.String(), "Status:")
}

func TestTicketAdapter_ResolveMissing(t *testing.T) {
	var out bytes.Buffer
	adapter := NewTicketAdapter(&mockResolver{}, &mockTicketService{}, &out)

	found, err := adapter.Resolve(context.Background(), "XYZ-1", false, 0)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "No entity found for ticket XYZ-1\n", out.String())

	out.Reset()
	found, err = adapter.Resolve(context.Background(), "XYZ-1", true, 0)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTicketAdapter_ResolveWithDetails(t *testing.T) {
	var out bytes.Buffer
	adapter := NewTicketAdapter(&mockResolver{details: &primary.EntityDetails{
		EntityDetail: primary.EntityDetail{Type: "Permit", TicketNumber: "WRK-2026-0001", Status: "SUBMITTED"},
		Checklist:    &primary.ChecklistProgress{Total: 3, Completed: 2, RequiredPending: 1},
		RecentHistory: []*primary.HistoryEntry{
			{FromStatus: "PENDING", ToStatus: "SUBMITTED", ChangedBy: "officer-1"},
		},
	}}, &mockTicketService{}, &out)

	found, err := adapter.Resolve(context.Background(), "WRK-2026-0001", true, 5)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Contains(t, out.String(), "Status:  SUBMITTED")
	assert.Contains(t, out.String(), "Checklist: 2/3 completed, 1 required pending")
	assert.Contains(t, out.String(), "PENDING → SUBMITTED  by officer-1")
}

func TestTicketAdapter_ResolveError(t *testing.T) {
	adapter := NewTicketAdapter(&mockResolver{err: errors.New("storage")}, &mockTicketService{}, &bytes.Buffer{})
	_, err := adapter.Resolve(context.Background(), "FOR-000001", false, 0)
	assert.Error(t, err)
}

func TestTicketAdapter_Peek(t *testing.T) {
	var out bytes.Buffer
	adapter := NewTicketAdapter(&mockResolver{}, &mockTicketService{next: "VEH-000007"}, &out)

	require.NoError(t, adapter.Peek(context.Background(), "VEH"))
	assert.Equal(t, "Next VEH ticket: VEH-000007\n", out.String())
}

func TestStatusColor_PlainWhenColorDisabled(t *testing.T) {
	for _, s := range []string{"PENDING", "SUBMITTED", "APPROVED", "REJECTED", "EXPIRED", "open", "done", "other"} {
		assert.Equal(t, s, StatusColor(s))
	}
	assert.Equal(t, "[ ]", CheckMark(false))
	assert.Equal(t, "[x]", CheckMark(true))
}
