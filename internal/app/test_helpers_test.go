package app

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/example/permitdesk/internal/adapters/sqlite"
	"github.com/example/permitdesk/internal/ctxutil"
	"github.com/example/permitdesk/internal/db"
	"github.com/example/permitdesk/internal/metrics"
	"github.com/example/permitdesk/internal/ports/primary"
	"github.com/example/permitdesk/internal/ports/secondary"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// Ensure recordingInvalidator implements the interface
var _ secondary.CacheInvalidator = (*recordingInvalidator)(nil)

// recordingInvalidator implements secondary.CacheInvalidator for testing.
type recordingInvalidator struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (r *recordingInvalidator) Invalidate(_ context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, keys...)
	return r.err
}

func (r *recordingInvalidator) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}

// fixture wires every service against one database.
type fixture struct {
	db          *sql.DB
	tx          *sqlite.Transactor
	metrics     *metrics.Metrics
	invalidator *recordingInvalidator
	executor    *DefaultEffectExecutor

	personRepo   *sqlite.PersonRepository
	templateRepo *sqlite.TemplateRepository
	permitRepo   *sqlite.PermitRepository
	itemRepo     *sqlite.ChecklistItemRepository
	historyRepo  *sqlite.HistoryRepository
	taskRepo     *sqlite.TaskRepository

	tickets   *TicketAllocator
	templates *TemplateServiceImpl
	permits   *PermitServiceImpl
	checklist *ChecklistServiceImpl
	persons   *PersonServiceImpl
	tasks     *TaskServiceImpl
	vehicles  *RegistryServiceImpl
	resolver  *TicketResolverImpl
}

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on&_txlock=immediate")
	require.NoError(t, err)
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	require.NoError(t, err, "failed to create schema")

	t.Cleanup(func() { testDB.Close() })
	return testDB
}

// setupFileDB opens a file-backed database so concurrent writers contend for the lock.
func setupFileDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.Open(filepath.Join(t.TempDir(), "permitdesk.db"), 10*time.Second)
	require.NoError(t, err)

	t.Cleanup(func() { testDB.Close() })
	return testDB
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	return newFixtureOn(t, setupTestDB(t), opts...)
}

func newFixtureOn(t *testing.T, testDB *sql.DB, opts ...Option) *fixture {
	t.Helper()

	f := &fixture{
		db:          testDB,
		metrics:     metrics.New(),
		invalidator: &recordingInvalidator{},
	}
	f.tx = sqlite.NewTransactor(testDB, sqlite.WithTxMetrics(f.metrics))
	f.executor = NewEffectExecutor(f.invalidator, nil)

	defaults := []Option{
		WithClock(func() time.Time { return testNow }),
		WithMetrics(f.metrics),
		WithEffectExecutor(f.executor),
		WithRetry(5, time.Millisecond),
	}
	opts = append(defaults, opts...)

	f.personRepo = sqlite.NewPersonRepository(testDB)
	f.templateRepo = sqlite.NewTemplateRepository(testDB)
	f.permitRepo = sqlite.NewPermitRepository(testDB)
	f.itemRepo = sqlite.NewChecklistItemRepository(testDB)
	f.historyRepo = sqlite.NewHistoryRepository(testDB)
	f.taskRepo = sqlite.NewTaskRepository(testDB)
	vehicleRepo := sqlite.NewVehicleRepository(testDB)

	f.tickets = NewTicketAllocator(sqlite.NewSequenceRepository(testDB), opts...)
	f.templates = NewTemplateService(f.tx, f.templateRepo, opts...)
	f.permits = NewPermitService(f.tx, f.personRepo, f.templateRepo, f.permitRepo, f.itemRepo, f.historyRepo, f.tickets, opts...)
	f.checklist = NewChecklistService(f.tx, f.permitRepo, f.itemRepo, opts...)
	f.persons = NewPersonService(f.tx, f.personRepo, f.permitRepo, f.taskRepo, f.tickets, opts...)
	f.tasks = NewTaskService(f.tx, f.taskRepo, f.personRepo, f.permitRepo, opts...)

	var err error
	f.vehicles, err = NewRegistryService(f.tx, vehicleRepo, f.personRepo, f.tickets, opts...)
	require.NoError(t, err)

	f.resolver, err = NewTicketResolver(f.personRepo, f.permitRepo, f.itemRepo, f.historyRepo,
		[]secondary.RegistryRepository{
			vehicleRepo,
			sqlite.NewImportPermitRepository(testDB),
			sqlite.NewCompanyRegistrationRepository(testDB),
		}, opts...)
	require.NoError(t, err)

	return f
}

func actorCtx() context.Context {
	return ctxutil.WithActorID(context.Background(), "officer-1")
}

func (f *fixture) createPerson(t *testing.T, first, guardianID string) *primary.Person {
	t.Helper()
	p, err := f.persons.CreatePerson(actorCtx(), primary.CreatePersonRequest{
		FirstName:  first,
		LastName:   "Tester",
		GuardianID: guardianID,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) createTemplate(t *testing.T, category string, labels ...string) *primary.Template {
	t.Helper()
	req := primary.CreateTemplateRequest{Name: category + " checklist", Category: category}
	for _, l := range labels {
		req.Items = append(req.Items, primary.TemplateItem{Label: l, Required: true})
	}
	tmpl, err := f.templates.CreateVersion(actorCtx(), req)
	require.NoError(t, err)
	return tmpl
}

func (f *fixture) createPermit(t *testing.T, category, personID string) *primary.Permit {
	t.Helper()
	p, err := f.permits.CreatePermit(actorCtx(), primary.CreatePermitRequest{Category: category, PersonID: personID})
	require.NoError(t, err)
	return p
}

func (f *fixture) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.QueryRow(query, args...).Scan(&n))
	return n
}

// stubTransactor runs fn without a database and returns err from every attempt.
type stubTransactor struct {
	calls int
	err   error
}

func (s *stubTransactor) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	return fn(ctx)
}

var errBoom = errors.New("boom")
