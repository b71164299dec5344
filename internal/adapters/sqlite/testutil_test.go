// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() so tests run against the
// authoritative schema.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB()
// and the seed* helpers instead.
package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/example/permitdesk/internal/adapters/sqlite"
	"github.com/example/permitdesk/internal/db"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// setupTestDB creates an in-memory database with the authoritative schema.
// A single connection keeps every statement on the same in-memory database,
// so repositories must use the transaction carried by ctx.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on&_txlock=immediate")
	require.NoError(t, err)
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	require.NoError(t, err, "failed to create schema")

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// setupFileDB opens a file-backed database through db.Open so several
// connections can contend for the write lock.
func setupFileDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.Open(filepath.Join(t.TempDir(), "permitdesk.db"), 10*time.Second)
	require.NoError(t, err)

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// inTx runs fn inside a transaction on testDB and fails the test on error.
func inTx(t *testing.T, testDB *sql.DB, fn func(ctx context.Context) error) {
	t.Helper()
	require.NoError(t, sqlite.NewTransactor(testDB).RunInTx(context.Background(), fn))
}

// seedPerson inserts a test person and returns its ID.
func seedPerson(t *testing.T, testDB *sql.DB, id, ticketNumber, guardianID string) string {
	t.Helper()
	_, err := testDB.Exec(
		`INSERT INTO persons (id, ticket_number, first_name, last_name, guardian_id, created_by, created_at, updated_at)
		 VALUES (?, ?, 'Test', 'Person', NULLIF(?, ''), 'tester', ?, ?)`,
		id, ticketNumber, guardianID, testNow, testNow,
	)
	require.NoError(t, err, "failed to seed person")
	return id
}

// seedPermit inserts a PENDING work permit and returns its ID.
func seedPermit(t *testing.T, testDB *sql.DB, id, ticketNumber, personID string) string {
	t.Helper()
	_, err := testDB.Exec(
		`INSERT INTO permits (id, ticket_number, category, status, person_id, created_by, created_at, updated_at)
		 VALUES (?, ?, 'WORK_PERMIT', 'PENDING', ?, 'tester', ?, ?)`,
		id, ticketNumber, personID, testNow, testNow,
	)
	require.NoError(t, err, "failed to seed permit")
	return id
}

// seedChecklistItem inserts an uncompleted checklist item.
func seedChecklistItem(t *testing.T, testDB *sql.DB, id, permitID string, position int, label string) string {
	t.Helper()
	_, err := testDB.Exec(
		`INSERT INTO permit_checklist_items (id, permit_id, position, label, required, updated_at)
		 VALUES (?, ?, ?, ?, 1, ?)`,
		id, permitID, position, label, testNow,
	)
	require.NoError(t, err, "failed to seed checklist item")
	return id
}

// seedTask inserts an open task.
func seedTask(t *testing.T, testDB *sql.DB, id, personID, permitID string) string {
	t.Helper()
	_, err := testDB.Exec(
		`INSERT INTO tasks (id, title, person_id, permit_id, status, created_by, created_at, updated_at)
		 VALUES (?, 'Follow up', NULLIF(?, ''), NULLIF(?, ''), 'open', 'tester', ?, ?)`,
		id, personID, permitID, testNow, testNow,
	)
	require.NoError(t, err, "failed to seed task")
	return id
}

func countRows(t *testing.T, testDB *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, testDB.QueryRow(query, args...).Scan(&n))
	return n
}
