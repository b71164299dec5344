package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/permitdesk/internal/adapters/sqlite"
	"github.com/example/permitdesk/internal/core/ticket"
	"github.com/example/permitdesk/internal/ports/primary"
	"github.com/example/permitdesk/internal/ports/secondary"
)

func TestResolve_Person(t *testing.T) {
	f := newFixture(t)
	_, err := f.db.Exec(
		`INSERT INTO persons (id, ticket_number, first_name, last_name, created_by, created_at, updated_at)
		 VALUES ('p100', 'FOR-000100', 'Mara', 'Okafor', 'import', ?, ?)`, testNow, testNow)
	require.NoError(t, err)

	detail, err := f.resolver.Resolve(actorCtx(), "for-000100")
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, "Foreigner", detail.Type)
	assert.Equal(t, "p100", detail.ID)
	assert.Equal(t, "FOR-000100", detail.TicketNumber)
	assert.Equal(t, "Mara Okafor", detail.Title)
}

func TestResolve_UnknownOrMissingIsNil(t *testing.T) {
	f := newFixture(t)

	for _, number := range []string{"XYZ-1", "", "FOR-000404", "WRK-2026-0404", "VEH-000404", "garbage"} {
		detail, err := f.resolver.Resolve(actorCtx(), number)
		assert.NoError(t, err, number)
		assert.Nil(t, detail, number)
	}
}

func TestResolve_EveryKind(t *testing.T) {
	f := newFixture(t)
	person := f.createPerson(t, "Ana", "")
	p := f.createPermit(t, "CUSTOMS", person.ID)
	v, err := f.vehicles.Create(actorCtx(), primary.CreateRegistryRequest{Title: "Toyota Hilux"})
	require.NoError(t, err)

	tests := []struct {
		number   string
		wantType string
		wantID   string
	}{
		{person.TicketNumber, "Foreigner", person.ID},
		{p.TicketNumber, "Permit", p.ID},
		{v.TicketNumber, "Vehicle", v.ID},
	}
	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			detail, err := f.resolver.Resolve(actorCtx(), tt.number)
			require.NoError(t, err)
			require.NotNil(t, detail)
			assert.Equal(t, tt.wantType, detail.Type)
			assert.Equal(t, tt.wantID, detail.ID)
		})
	}

	permitDetail, err := f.resolver.Resolve(actorCtx(), p.TicketNumber)
	require.NoError(t, err)
	assert.Equal(t, "CUSTOMS", permitDetail.Category)
	assert.Equal(t, "PENDING", permitDetail.Status)
	assert.Equal(t, "CUSTOMS - Ana Tester", permitDetail.Title)
}

func TestResolveWithDetails(t *testing.T) {
	f := newFixture(t)
	person := f.createPerson(t, "Ana", "")
	f.createTemplate(t, "WORK_PERMIT", "Passport copy", "Employer letter")
	p := f.createPermit(t, "WORK_PERMIT", person.ID)

	_, err := f.checklist.SetItemCompletion(actorCtx(), p.Items[0].ID, true, "")
	require.NoError(t, err)
	_, err = f.permits.Submit(actorCtx(), p.ID, "", "")
	require.NoError(t, err)
	_, err = f.permits.Reject(actorCtx(), p.ID, "", "letter unsigned")
	require.NoError(t, err)

	details, err := f.resolver.ResolveWithDetails(actorCtx(), p.TicketNumber, 0)
	require.NoError(t, err)
	require.NotNil(t, details)
	assert.Equal(t, "REJECTED", details.Status)
	require.NotNil(t, details.Checklist)
	assert.Equal(t, 2, details.Checklist.Total)
	assert.Equal(t, 1, details.Checklist.Completed)
	require.Len(t, details.RecentHistory, 2)
	assert.Equal(t, "REJECTED", details.RecentHistory[0].ToStatus)

	limited, err := f.resolver.ResolveWithDetails(actorCtx(), p.TicketNumber, 1)
	require.NoError(t, err)
	assert.Len(t, limited.RecentHistory, 1)

	personDetails, err := f.resolver.ResolveWithDetails(actorCtx(), person.TicketNumber, 0)
	require.NoError(t, err)
	assert.Equal(t, "Foreigner", personDetails.Type)
	assert.Nil(t, personDetails.Checklist)
	assert.Empty(t, personDetails.RecentHistory)

	missing, err := f.resolver.ResolveWithDetails(actorCtx(), "WRK-2026-0999", 0)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestNewTicketResolver_RequiresEveryKind(t *testing.T) {
	f := newFixture(t)

	_, err := NewTicketResolver(f.personRepo, f.permitRepo, f.itemRepo, f.historyRepo,
		[]secondary.RegistryRepository{sqlite.NewVehicleRepository(f.db)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ImportPermit")

	for _, kind := range ticket.Kinds() {
		_, ok := f.resolver.handlers[kind]
		assert.True(t, ok, kind.String())
	}
}
