package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/permitdesk/internal/adapters/sqlite"
	"github.com/example/permitdesk/internal/core/ticket"
	"github.com/example/permitdesk/internal/domainerr"
	"github.com/example/permitdesk/internal/ports/primary"
	"github.com/example/permitdesk/internal/ports/secondary"
)

// personAsRegistry claims to store persons, which no registry may do.
type personAsRegistry struct {
	secondary.RegistryRepository
}

func (personAsRegistry) Kind() ticket.Kind { return ticket.KindPerson }

func TestRegistry_CreateAndList(t *testing.T) {
	f := newFixture(t)
	owner := f.createPerson(t, "Ana", "")

	v, err := f.vehicles.Create(actorCtx(), primary.CreateRegistryRequest{
		Title: " Toyota Hilux ", Reference: "ABC-123", PersonID: owner.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "VEH-000001", v.TicketNumber)
	assert.Equal(t, "Vehicle", v.Kind)
	assert.Equal(t, "Toyota Hilux", v.Title)
	assert.Equal(t, "PENDING", v.Status)
	assert.Equal(t, "officer-1", v.CreatedBy)

	second, err := f.vehicles.Create(actorCtx(), primary.CreateRegistryRequest{Title: "Honda Civic"})
	require.NoError(t, err)
	assert.Equal(t, "VEH-000002", second.TicketNumber)

	owned, err := f.vehicles.List(actorCtx(), primary.RegistryFilters{PersonID: owner.ID})
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, v.ID, owned[0].ID)

	_, err = f.vehicles.List(actorCtx(), primary.RegistryFilters{Status: "parked"})
	assert.True(t, domainerr.HasCode(err, domainerr.CodeValidation))
}

func TestRegistry_CreateErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.vehicles.Create(actorCtx(), primary.CreateRegistryRequest{})
	assert.True(t, domainerr.HasCode(err, domainerr.CodeValidation))

	_, err = f.vehicles.Create(actorCtx(), primary.CreateRegistryRequest{Title: "Bus", PersonID: "ghost"})
	assert.True(t, domainerr.HasCode(err, domainerr.CodeNotFound))

	_, err = f.vehicles.Get(actorCtx(), "missing")
	assert.True(t, domainerr.HasCode(err, domainerr.CodeNotFound))
}

func TestRegistry_SetStatus(t *testing.T) {
	f := newFixture(t)
	v, err := f.vehicles.Create(actorCtx(), primary.CreateRegistryRequest{Title: "Toyota Hilux"})
	require.NoError(t, err)

	_, err = f.vehicles.SetStatus(actorCtx(), v.ID, "approved")
	assert.True(t, domainerr.HasCode(err, domainerr.CodeIllegalTransition))

	submitted, err := f.vehicles.SetStatus(actorCtx(), v.ID, "submitted")
	require.NoError(t, err)
	assert.Equal(t, "SUBMITTED", submitted.Status)

	approved, err := f.vehicles.SetStatus(actorCtx(), v.ID, "APPROVED")
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", approved.Status)

	_, err = f.vehicles.SetStatus(actorCtx(), v.ID, "bogus")
	assert.True(t, domainerr.HasCode(err, domainerr.CodeValidation))
}

func TestRegistry_KindsUseTheirOwnSeries(t *testing.T) {
	f := newFixture(t)

	imports, err := NewRegistryService(f.tx, sqlite.NewImportPermitRepository(f.db), f.personRepo, f.tickets)
	require.NoError(t, err)
	companies, err := NewRegistryService(f.tx, sqlite.NewCompanyRegistrationRepository(f.db), f.personRepo, f.tickets)
	require.NoError(t, err)

	imp, err := imports.Create(actorCtx(), primary.CreateRegistryRequest{Title: "Medical supplies"})
	require.NoError(t, err)
	cmp, err := companies.Create(actorCtx(), primary.CreateRegistryRequest{Title: "Acme Ltd"})
	require.NoError(t, err)

	assert.Equal(t, "IMP-000001", imp.TicketNumber)
	assert.Equal(t, "ImportPermit", imp.Kind)
	assert.Equal(t, "CMP-000001", cmp.TicketNumber)
}

func TestNewRegistryService_RejectsPersonRepository(t *testing.T) {
	f := newFixture(t)
	_, err := NewRegistryService(f.tx, personAsRegistry{}, f.personRepo, f.tickets)
	assert.Error(t, err)
}
