package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/example/permitdesk/internal/adapters/sqlite"
	"github.com/example/permitdesk/internal/core/ticket"
	"github.com/example/permitdesk/internal/ports/secondary"
)

func TestSequenceRepository_NextRequiresTransaction(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewSequenceRepository(testDB)

	_, err := repo.Next(context.Background(), ticket.Series{Prefix: ticket.PrefixPerson})
	require.Error(t, err)
}

func TestSequenceRepository_SeedsFromExistingTickets(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewSequenceRepository(testDB)
	seedPerson(t, testDB, "P1", "FOR-000099", "")
	seedPerson(t, testDB, "P2", "FOR-000100", "")

	var got []int
	inTx(t, testDB, func(ctx context.Context) error {
		for range 2 {
			n, err := repo.Next(ctx, ticket.Series{Prefix: ticket.PrefixPerson})
			if err != nil {
				return err
			}
			got = append(got, n)
		}
		return nil
	})

	assert.Equal(t, []int{101, 102}, got)
}

func TestSequenceRepository_PermitSeriesAreScopedByYear(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewSequenceRepository(testDB)
	seedPerson(t, testDB, "P1", "FOR-000001", "")
	seedPermit(t, testDB, "PM1", "WRK-2026-0007", "P1")
	seedPermit(t, testDB, "PM2", "WRK-2025-0099", "P1")

	var this, next int
	inTx(t, testDB, func(ctx context.Context) error {
		var err error
		if this, err = repo.Next(ctx, ticket.Series{Prefix: ticket.PrefixWorkPermit, Year: 2026}); err != nil {
			return err
		}
		next, err = repo.Next(ctx, ticket.Series{Prefix: ticket.PrefixWorkPermit, Year: 2027})
		return err
	})

	assert.Equal(t, 8, this)
	assert.Equal(t, 1, next)
}

func TestSequenceRepository_PeekDoesNotClaim(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewSequenceRepository(testDB)
	ctx := context.Background()
	series := ticket.Series{Prefix: ticket.PrefixVehicle}

	first, err := repo.Peek(ctx, series)
	require.NoError(t, err)
	second, err := repo.Peek(ctx, series)
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 0, countRows(t, testDB, "SELECT COUNT(*) FROM ticket_sequences"))
}

func TestSequenceRepository_RollbackReleasesClaim(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewSequenceRepository(testDB)
	series := ticket.Series{Prefix: ticket.PrefixImportPermit}
	boom := errors.New("insert failed")

	err := sqlite.NewTransactor(testDB).RunInTx(context.Background(), func(ctx context.Context) error {
		if _, err := repo.Next(ctx, series); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	peek, err := repo.Peek(context.Background(), series)
	require.NoError(t, err)
	assert.Equal(t, 1, peek, "a rolled-back claim leaves no gap")
}

func TestSequenceRepository_ConcurrentAllocationsAreDistinct(t *testing.T) {
	testDB := setupFileDB(t)
	repo := sqlite.NewSequenceRepository(testDB)
	persons := sqlite.NewPersonRepository(testDB)
	tx := sqlite.NewTransactor(testDB)
	series := ticket.Series{Prefix: ticket.PrefixPerson}

	const n = 20
	var (
		mu  sync.Mutex
		got []int
	)
	g, ctx := errgroup.WithContext(context.Background())
	for i := range n {
		g.Go(func() error {
			return tx.RunInTx(ctx, func(ctx context.Context) error {
				seq, err := repo.Next(ctx, series)
				if err != nil {
					return err
				}
				err = persons.Create(ctx, &secondary.PersonRecord{
					ID:           fmt.Sprintf("P%02d", i),
					TicketNumber: series.Format(seq),
					FirstName:    "Concurrent",
					CreatedAt:    testNow,
					UpdatedAt:    testNow,
				})
				if err != nil {
					return err
				}
				mu.Lock()
				got = append(got, seq)
				mu.Unlock()
				return nil
			})
		})
	}
	require.NoError(t, g.Wait())

	sort.Ints(got)
	want := make([]int, n)
	for i := range want {
		want[i] = i + 1
	}
	assert.Equal(t, want, got)
}
