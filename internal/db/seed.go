package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SeedFixtures populates the database with development fixtures.
// Ticket numbers are written directly; sequence counters are seeded lazily
// from them on the next allocation.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().UTC()
	year := now.Year()

	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	defer tx.Rollback()

	// Persons
	persons := []struct{ id, ticket, first, last, nationality, passport, guardian, relationship string }{
		{"PER-001", "FOR-000100", "Amara", "Okafor", "NG", "A1234567", "", ""},
		{"PER-002", "FOR-000101", "Lukas", "Brandt", "DE", "C01X00T47", "", ""},
		{"PER-003", "FOR-000102", "Ada", "Okafor", "NG", "A7654321", "PER-001", "child"},
	}
	for _, p := range persons {
		if _, err := tx.Exec(
			`INSERT INTO persons (id, ticket_number, first_name, last_name, nationality, passport_number, guardian_id, relationship, created_by, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), 'seed', ?, ?)`,
			p.id, p.ticket, p.first, p.last, p.nationality, p.passport, p.guardian, p.relationship, now, now,
		); err != nil {
			return fmt.Errorf("seed persons: %w", err)
		}
	}

	// Templates
	templates := []struct {
		id, name, category string
		items              []struct {
			label    string
			required bool
		}
	}{
		{"TPL-001", "Work permit intake", "WORK_PERMIT", []struct {
			label    string
			required bool
		}{{"Passport copy", true}, {"Employment contract", true}, {"Passport photo", false}}},
		{"TPL-002", "Residence ID intake", "RESIDENCE_ID", []struct {
			label    string
			required bool
		}{{"Passport copy", true}, {"Proof of address", true}}},
	}
	for _, t := range templates {
		if _, err := tx.Exec(
			"INSERT INTO checklist_templates (id, name, category, version, active, created_by, created_at) VALUES (?, ?, ?, 1, 1, 'seed', ?)",
			t.id, t.name, t.category, now,
		); err != nil {
			return fmt.Errorf("seed templates: %w", err)
		}
		for i, item := range t.items {
			if _, err := tx.Exec(
				"INSERT INTO checklist_template_items (template_id, position, label, required) VALUES (?, ?, ?, ?)",
				t.id, i, item.label, item.required,
			); err != nil {
				return fmt.Errorf("seed template items: %w", err)
			}
		}
	}

	// Permits with snapshotted items
	permits := []struct{ id, ticket, category, status, person, template string }{
		{"PMT-001", fmt.Sprintf("WRK-%04d-0001", year), "WORK_PERMIT", "PENDING", "PER-001", "TPL-001"},
		{"PMT-002", fmt.Sprintf("RES-%04d-0001", year), "RESIDENCE_ID", "PENDING", "PER-002", "TPL-002"},
	}
	for _, p := range permits {
		if _, err := tx.Exec(
			`INSERT INTO permits (id, ticket_number, category, status, person_id, checklist_id, checklist_version, created_by, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, 1, 'seed', ?, ?)`,
			p.id, p.ticket, p.category, p.status, p.person, p.template, now, now,
		); err != nil {
			return fmt.Errorf("seed permits: %w", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO permit_checklist_items (id, permit_id, position, label, required, hint, updated_at)
			 SELECT ? || '-' || position, ?, position, label, required, hint, ?
			 FROM checklist_template_items WHERE template_id = ?`,
			p.id, p.id, now, p.template,
		); err != nil {
			return fmt.Errorf("seed checklist items: %w", err)
		}
	}

	// Registry entities
	registries := []struct{ table, id, ticket, title, reference, person string }{
		{"vehicles", "VEH-ROW-001", "VEH-000001", "Toyota Land Cruiser", "KAA 123A", "PER-001"},
		{"import_permits", "IMP-ROW-001", "IMP-000001", "Dialysis consumables", "SHP-88213", ""},
		{"company_registrations", "CMP-ROW-001", "CMP-000001", "Northside Clinic Ltd", "PVT-2019-00042", ""},
	}
	for _, r := range registries {
		if _, err := tx.Exec(
			"INSERT INTO "+r.table+` (id, ticket_number, title, reference, status, person_id, created_by, created_at, updated_at)
			 VALUES (?, ?, ?, ?, 'PENDING', NULLIF(?, ''), 'seed', ?, ?)`,
			r.id, r.ticket, r.title, r.reference, r.person, now, now,
		); err != nil {
			return fmt.Errorf("seed %s: %w", r.table, err)
		}
	}

	// Tasks
	if _, err := tx.Exec(
		`INSERT INTO tasks (id, title, person_id, permit_id, status, created_by, created_at, updated_at)
		 VALUES ('TASK-001', 'Collect employment contract', 'PER-001', 'PMT-001', 'open', 'seed', ?, ?)`,
		now, now,
	); err != nil {
		return fmt.Errorf("seed tasks: %w", err)
	}

	return tx.Commit()
}
