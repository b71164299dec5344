package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh permitdesk installs.
// This schema reflects the current state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// this schema via GetSchemaSQL():
//
//  1. No hardcoded schemas: tests must not carry CREATE TABLE statements.
//  2. Immediate failure on drift: if repository code references a column that
//     doesn't exist here, tests fail with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
//  3. Bump LatestVersion
const SchemaSQL = `
-- Persons (foreigners and their dependents)
CREATE TABLE IF NOT EXISTS persons (
	id TEXT PRIMARY KEY,
	ticket_number TEXT NOT NULL UNIQUE,
	first_name TEXT NOT NULL,
	last_name TEXT,
	nationality TEXT,
	passport_number TEXT,
	guardian_id TEXT,
	relationship TEXT,
	created_by TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (guardian_id) REFERENCES persons(id) ON DELETE RESTRICT
);

CREATE INDEX IF NOT EXISTS idx_persons_guardian ON persons(guardian_id);

-- Checklist templates (immutable, versioned per category)
CREATE TABLE IF NOT EXISTS checklist_templates (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	category TEXT NOT NULL CHECK(category IN ('WORK_PERMIT', 'RESIDENCE_ID', 'MEDICAL_LICENSE', 'PIP', 'CUSTOMS', 'CAR_BOLO_INSURANCE')),
	version INTEGER NOT NULL,
	active INTEGER NOT NULL DEFAULT 0,
	created_by TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(category, version)
);

-- At most one active template per category
CREATE UNIQUE INDEX IF NOT EXISTS idx_checklist_templates_active ON checklist_templates(category) WHERE active = 1;

CREATE TABLE IF NOT EXISTS checklist_template_items (
	template_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	label TEXT NOT NULL,
	required INTEGER NOT NULL DEFAULT 0,
	hint TEXT,
	PRIMARY KEY (template_id, position),
	FOREIGN KEY (template_id) REFERENCES checklist_templates(id) ON DELETE CASCADE
);

-- Permits
CREATE TABLE IF NOT EXISTS permits (
	id TEXT PRIMARY KEY,
	ticket_number TEXT NOT NULL UNIQUE,
	category TEXT NOT NULL CHECK(category IN ('WORK_PERMIT', 'RESIDENCE_ID', 'MEDICAL_LICENSE', 'PIP', 'CUSTOMS', 'CAR_BOLO_INSURANCE')),
	status TEXT NOT NULL CHECK(status IN ('PENDING', 'SUBMITTED', 'APPROVED', 'REJECTED', 'EXPIRED')) DEFAULT 'PENDING',
	person_id TEXT NOT NULL,
	checklist_id TEXT,
	checklist_version INTEGER,
	due_date DATETIME,
	notes TEXT,
	created_by TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (person_id) REFERENCES persons(id) ON DELETE RESTRICT
);

CREATE INDEX IF NOT EXISTS idx_permits_person ON permits(person_id);
CREATE INDEX IF NOT EXISTS idx_permits_status ON permits(status);

-- Per-permit checklist items (snapshot of a template, never a live reference)
CREATE TABLE IF NOT EXISTS permit_checklist_items (
	id TEXT PRIMARY KEY,
	permit_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	label TEXT NOT NULL,
	required INTEGER NOT NULL DEFAULT 0,
	hint TEXT,
	completed INTEGER NOT NULL DEFAULT 0,
	completed_by TEXT,
	completed_at DATETIME,
	notes TEXT,
	file_urls TEXT NOT NULL DEFAULT '[]',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (permit_id) REFERENCES permits(id) ON DELETE CASCADE,
	UNIQUE(permit_id, position)
);

-- Append-only permit audit trail
CREATE TABLE IF NOT EXISTS permit_history (
	id TEXT PRIMARY KEY,
	permit_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	from_status TEXT NOT NULL,
	to_status TEXT NOT NULL,
	changed_by TEXT NOT NULL DEFAULT '',
	notes TEXT,
	changed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (permit_id) REFERENCES permits(id) ON DELETE CASCADE,
	UNIQUE(permit_id, seq)
);

CREATE TRIGGER IF NOT EXISTS trg_permit_history_append_only
BEFORE UPDATE ON permit_history
BEGIN
	SELECT RAISE(ABORT, 'permit_history is append-only');
END;

-- Tasks
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	person_id TEXT,
	permit_id TEXT,
	status TEXT NOT NULL CHECK(status IN ('open', 'done')) DEFAULT 'open',
	due_date DATETIME,
	created_by TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	completed_at DATETIME,
	FOREIGN KEY (person_id) REFERENCES persons(id) ON DELETE RESTRICT,
	FOREIGN KEY (permit_id) REFERENCES permits(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_person ON tasks(person_id);
CREATE INDEX IF NOT EXISTS idx_tasks_permit ON tasks(permit_id);

-- Registry entities: vehicles, import permits, company registrations
CREATE TABLE IF NOT EXISTS vehicles (
	id TEXT PRIMARY KEY,
	ticket_number TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	reference TEXT,
	status TEXT NOT NULL CHECK(status IN ('PENDING', 'SUBMITTED', 'APPROVED', 'REJECTED', 'EXPIRED')) DEFAULT 'PENDING',
	person_id TEXT,
	notes TEXT,
	created_by TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (person_id) REFERENCES persons(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS import_permits (
	id TEXT PRIMARY KEY,
	ticket_number TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	reference TEXT,
	status TEXT NOT NULL CHECK(status IN ('PENDING', 'SUBMITTED', 'APPROVED', 'REJECTED', 'EXPIRED')) DEFAULT 'PENDING',
	person_id TEXT,
	notes TEXT,
	created_by TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (person_id) REFERENCES persons(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS company_registrations (
	id TEXT PRIMARY KEY,
	ticket_number TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	reference TEXT,
	status TEXT NOT NULL CHECK(status IN ('PENDING', 'SUBMITTED', 'APPROVED', 'REJECTED', 'EXPIRED')) DEFAULT 'PENDING',
	person_id TEXT,
	notes TEXT,
	created_by TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (person_id) REFERENCES persons(id) ON DELETE SET NULL
);

-- Ticket counters, one row per (prefix, scope). scope is '' or a 4-digit year.
CREATE TABLE IF NOT EXISTS ticket_sequences (
	prefix TEXT NOT NULL,
	scope TEXT NOT NULL DEFAULT '',
	last_value INTEGER NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (prefix, scope)
);
`

// LatestVersion is the schema version SchemaSQL corresponds to.
const LatestVersion = 2

// InitSchema brings a database up to the current schema. Fresh databases get
// SchemaSQL directly; existing ones run pending migrations.
func InitSchema(database *sql.DB) error {
	var tableCount int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}

	if tableCount > 0 {
		return RunMigrations(database)
	}

	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := tx.Exec(schemaVersionSQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	// Mark all migrations as applied for fresh installs
	for i := 1; i <= LatestVersion; i++ {
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", i); err != nil {
			return fmt.Errorf("failed to record schema version %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
