package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/permitdesk/internal/ports/primary"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// mockPermitService implements primary.PermitService for testing
type mockPermitService struct {
	permit         *primary.Permit
	list           []*primary.Permit
	history        []*primary.HistoryEntry
	err            error
	byTicket       bool
	lastTransition primary.TransitionRequest
}

func (m *mockPermitService) CreatePermit(_ context.Context, req primary.CreatePermitRequest) (*primary.Permit, error) {
	return m.permit, m.err
}

func (m *mockPermitService) GetPermit(_ context.Context, id string) (*primary.Permit, error) {
	return m.permit, m.err
}

func (m *mockPermitService) GetPermitByTicket(_ context.Context, number string) (*primary.Permit, error) {
	m.byTicket = true
	return m.permit, m.err
}

func (m *mockPermitService) ListPermits(_ context.Context, _ primary.PermitFilters) ([]*primary.Permit, error) {
	return m.list, m.err
}

func (m *mockPermitService) UpdatePermit(_ context.Context, _ primary.UpdatePermitRequest) (*primary.Permit, error) {
	return m.permit, m.err
}

func (m *mockPermitService) Transition(_ context.Context, req primary.TransitionRequest) (*primary.Permit, error) {
	m.lastTransition = req
	if m.err != nil {
		return nil, m.err
	}
	moved := *m.permit
	moved.Status = req.ToStatus
	return &moved, nil
}

func (m *mockPermitService) Submit(ctx context.Context, id, actor, notes string) (*primary.Permit, error) {
	return m.Transition(ctx, primary.TransitionRequest{PermitID: id, ToStatus: "SUBMITTED", ActorID: actor, Notes: notes})
}

func (m *mockPermitService) Approve(ctx context.Context, id, actor, notes string) (*primary.Permit, error) {
	return m.Transition(ctx, primary.TransitionRequest{PermitID: id, ToStatus: "APPROVED", ActorID: actor, Notes: notes})
}

func (m *mockPermitService) Reject(ctx context.Context, id, actor, notes string) (*primary.Permit, error) {
	return m.Transition(ctx, primary.TransitionRequest{PermitID: id, ToStatus: "REJECTED", ActorID: actor, Notes: notes})
}

func (m *mockPermitService) History(_ context.Context, _ string, _ int) ([]*primary.HistoryEntry, error) {
	return m.history, m.err
}

// mockChecklistService implements primary.ChecklistService for testing
type mockChecklistService struct {
	progress *primary.ChecklistProgress
	items    []*primary.ChecklistItem
}

func (m *mockChecklistService) SetItemCompletion(context.Context, string, bool, string) (*primary.ChecklistItem, error) {
	return nil, errors.New("not implemented")
}

func (m *mockChecklistService) AttachNotes(context.Context, string, string) (*primary.ChecklistItem, error) {
	return nil, errors.New("not implemented")
}

func (m *mockChecklistService) AttachFiles(context.Context, string, []string) (*primary.ChecklistItem, error) {
	return nil, errors.New("not implemented")
}

func (m *mockChecklistService) ListItems(context.Context, string) ([]*primary.ChecklistItem, error) {
	return m.items, nil
}

func (m *mockChecklistService) Progress(context.Context, string) (*primary.ChecklistProgress, error) {
	return m.progress, nil
}

func samplePermit() *primary.Permit {
	done := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return &primary.Permit{
		ID:               "permit-1",
		TicketNumber:     "WRK-2026-0001",
		Category:         "WORK_PERMIT",
		Status:           "PENDING",
		PersonName:       "Ana Tester",
		ChecklistVersion: 2,
		CreatedBy:        "officer-1",
		Items: []*primary.ChecklistItem{
			{ID: "i1", Label: "Passport copy", Required: true, Completed: true, CompletedBy: "officer-1", CompletedAt: &done},
			{ID: "i2", Label: "Photo", FileURLs: []string{"s3://docs/photo.jpg"}},
		},
	}
}

func TestPermitAdapter_Create(t *testing.T) {
	var out bytes.Buffer
	svc := &mockPermitService{permit: samplePermit()}
	adapter := NewPermitAdapter(svc, &mockChecklistService{}, &out)

	_, err := adapter.Create(context.Background(), primary.CreatePermitRequest{Category: "WORK_PERMIT", PersonID: "p1"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "✓ Created permit WRK-2026-0001 (WORK_PERMIT) for Ana Tester")
	assert.Contains(t, out.String(), "Checklist v2, 2 item(s)")
}

func TestPermitAdapter_CreateWithoutTemplate(t *testing.T) {
	var out bytes.Buffer
	p := samplePermit()
	p.ChecklistVersion = 0
	p.Items = nil
	adapter := NewPermitAdapter(&mockPermitService{permit: p}, &mockChecklistService{}, &out)

	_, err := adapter.Create(context.Background(), primary.CreatePermitRequest{})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No active checklist template")
}

func TestPermitAdapter_ShowByTicket(t *testing.T) {
	var out bytes.Buffer
	svc := &mockPermitService{permit: samplePermit()}
	adapter := NewPermitAdapter(svc, &mockChecklistService{}, &out)

	_, err := adapter.Show(context.Background(), "wrk-2026-0001")
	require.NoError(t, err)
	assert.True(t, svc.byTicket)
	assert.Contains(t, out.String(), "Status:   PENDING")
	assert.Contains(t, out.String(), "[x] Passport copy*")
	assert.Contains(t, out.String(), "completed by officer-1")
	assert.Contains(t, out.String(), "[ ] Photo")
	assert.Contains(t, out.String(), "file: s3://docs/photo.jpg")
}

func TestPermitAdapter_ShowByID(t *testing.T) {
	svc := &mockPermitService{permit: samplePermit()}
	adapter := NewPermitAdapter(svc, &mockChecklistService{}, &bytes.Buffer{})

	_, err := adapter.Show(context.Background(), "permit-1")
	require.NoError(t, err)
	assert.False(t, svc.byTicket)
}

func TestPermitAdapter_List(t *testing.T) {
	var out bytes.Buffer
	adapter := NewPermitAdapter(&mockPermitService{list: []*primary.Permit{samplePermit()}}, &mockChecklistService{}, &out)

	require.NoError(t, adapter.List(context.Background(), primary.PermitFilters{}))
	assert.Contains(t, out.String(), "TICKET")
	assert.Contains(t, out.String(), "WRK-2026-0001")

	out.Reset()
	empty := NewPermitAdapter(&mockPermitService{}, &mockChecklistService{}, &out)
	require.NoError(t, empty.List(context.Background(), primary.PermitFilters{}))
	assert.Equal(t, "No permits found\n", out.String())
}

func TestPermitAdapter_Transition(t *testing.T) {
	var out bytes.Buffer
	svc := &mockPermitService{permit: samplePermit()}
	adapter := NewPermitAdapter(svc, &mockChecklistService{}, &out)

	err := adapter.Transition(context.Background(), "WRK-2026-0001", "SUBMITTED", "officer-2", "ready")
	require.NoError(t, err)
	assert.Equal(t, "permit-1", svc.lastTransition.PermitID)
	assert.Equal(t, "officer-2", svc.lastTransition.ActorID)
	assert.Contains(t, out.String(), "✓ Permit WRK-2026-0001: PENDING → SUBMITTED")
}

func TestPermitAdapter_TransitionError(t *testing.T) {
	svc := &mockPermitService{permit: samplePermit()}
	adapter := NewPermitAdapter(svc, &mockChecklistService{}, &bytes.Buffer{})
	svc.err = errors.New("illegal")

	err := adapter.Transition(context.Background(), "permit-1", "APPROVED", "", "")
	assert.Error(t, err)
}

func TestPermitAdapter_History(t *testing.T) {
	var out bytes.Buffer
	svc := &mockPermitService{
		permit: samplePermit(),
		history: []*primary.HistoryEntry{
			{FromStatus: "PENDING", ToStatus: "SUBMITTED", ChangedBy: "officer-1", Notes: "all in"},
		},
	}
	adapter := NewPermitAdapter(svc, &mockChecklistService{}, &out)

	require.NoError(t, adapter.History(context.Background(), "permit-1", 0))
	assert.Contains(t, out.String(), "PENDING → SUBMITTED  by officer-1")
	assert.Contains(t, out.String(), "all in")
}

func TestPermitAdapter_Progress(t *testing.T) {
	var out bytes.Buffer
	checklist := &mockChecklistService{progress: &primary.ChecklistProgress{
		Total: 3, Completed: 1, RequiredPending: 1, PendingRequired: []string{"Photo"},
	}}
	adapter := NewPermitAdapter(&mockPermitService{permit: samplePermit()}, checklist, &out)

	require.NoError(t, adapter.Progress(context.Background(), "permit-1"))
	assert.Contains(t, out.String(), "WRK-2026-0001: 1/3 items completed")
	assert.Contains(t, out.String(), "  - Photo")
}

func TestPrintDeletionPlan(t *testing.T) {
	var out bytes.Buffer
	PrintDeletionPlan(&out, &primary.DeletionPlan{
		Entity:        "task",
		RootID:        "t1",
		Permits:       []string{"permit-1"},
		UnlinkedTasks: []string{"t2"},
		Counts:        map[string]int{"permits": 1, "tasks": 0},
	})

	assert.Contains(t, out.String(), "Deleting task t1 would remove:")
	assert.Contains(t, out.String(), "permits      1")
	assert.Contains(t, out.String(), "tasks losing their permit link: t2")
}

func TestPermitAdapter_Update(t *testing.T) {
	var out bytes.Buffer
	adapter := NewPermitAdapter(&mockPermitService{permit: samplePermit()}, &mockChecklistService{}, &out)

	notes := "waiting on employer letter"
	require.NoError(t, adapter.Update(context.Background(), "WRK-2026-0001", &notes, nil))
	assert.Equal(t, "✓ Updated permit WRK-2026-0001\n", out.String())
}

func TestPermitAdapter_Checklist(t *testing.T) {
	var out bytes.Buffer
	checklist := &mockChecklistService{items: samplePermit().Items}
	adapter := NewPermitAdapter(&mockPermitService{permit: samplePermit()}, checklist, &out)

	require.NoError(t, adapter.Checklist(context.Background(), "permit-1"))
	assert.Contains(t, out.String(), "WRK-2026-0001 checklist (v2):")
	assert.Contains(t, out.String(), "[ ] Photo")

	out.Reset()
	checklist.items = nil
	require.NoError(t, adapter.Checklist(context.Background(), "permit-1"))
	assert.Equal(t, "WRK-2026-0001 has no checklist items\n", out.String())
}
