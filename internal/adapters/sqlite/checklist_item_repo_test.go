package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/permitdesk/internal/adapters/sqlite"
	"github.com/example/permitdesk/internal/ports/secondary"
)

func TestChecklistItemRepository_CreateBatchAndList(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewChecklistItemRepository(testDB)
	ctx := context.Background()
	seedPerson(t, testDB, "P1", "FOR-000001", "")
	seedPermit(t, testDB, "PM1", "WRK-2026-0001", "P1")

	err := repo.CreateBatch(ctx, []*secondary.ChecklistItemRecord{
		{ID: "I2", PermitID: "PM1", Position: 1, Label: "Photo", UpdatedAt: testNow},
		{ID: "I1", PermitID: "PM1", Position: 0, Label: "Passport copy", Required: true, Hint: "all pages", UpdatedAt: testNow},
	})
	require.NoError(t, err)

	items, err := repo.ListByPermit(ctx, "PM1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "I1", items[0].ID)
	assert.Equal(t, "all pages", items[0].Hint)
	assert.True(t, items[0].Required)
	assert.False(t, items[0].Completed)
	assert.Empty(t, items[0].FileURLs)
}

func TestChecklistItemRepository_Updates(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewChecklistItemRepository(testDB)
	ctx := context.Background()
	seedPerson(t, testDB, "P1", "FOR-000001", "")
	seedPermit(t, testDB, "PM1", "WRK-2026-0001", "P1")
	seedChecklistItem(t, testDB, "I1", "PM1", 0, "Passport copy")

	require.NoError(t, repo.UpdateCompletion(ctx, "I1", true, "clerk", &testNow))
	require.NoError(t, repo.UpdateNotes(ctx, "I1", "scanned"))
	require.NoError(t, repo.UpdateFiles(ctx, "I1", []string{"s3://docs/a.pdf", "s3://docs/b.pdf"}))

	item, err := repo.GetByID(ctx, "I1")
	require.NoError(t, err)
	assert.True(t, item.Completed)
	assert.Equal(t, "clerk", item.CompletedBy)
	require.NotNil(t, item.CompletedAt)
	assert.True(t, testNow.Equal(*item.CompletedAt))
	assert.Equal(t, "scanned", item.Notes)
	assert.Equal(t, []string{"s3://docs/a.pdf", "s3://docs/b.pdf"}, item.FileURLs)

	require.NoError(t, repo.UpdateCompletion(ctx, "I1", false, "", nil))
	item, err = repo.GetByID(ctx, "I1")
	require.NoError(t, err)
	assert.False(t, item.Completed)
	assert.Empty(t, item.CompletedBy)
	assert.Nil(t, item.CompletedAt)
}

func TestChecklistItemRepository_Missing(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewChecklistItemRepository(testDB)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "ghost")
	assert.ErrorIs(t, err, secondary.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateNotes(ctx, "ghost", "x"), secondary.ErrNotFound)
}
