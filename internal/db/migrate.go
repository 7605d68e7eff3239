package db

import (
	"database/sql"
	"fmt"
)

// migrations are idempotent CREATE statements; Migrate re-runs all of
// them on every open.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS plans (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		project_id   TEXT NOT NULL,
		project_code TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'draft'
		             CHECK(status IN ('draft','submitted','partial','failed')),
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS draft_periods (
		temp_id     TEXT PRIMARY KEY,
		plan_id     TEXT NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
		code        TEXT NOT NULL,
		name        TEXT NOT NULL,
		year        INTEGER NOT NULL,
		start_date  TEXT NOT NULL,
		end_date    TEXT NOT NULL,
		month_label TEXT NOT NULL,
		UNIQUE(plan_id, year)
	)`,

	`CREATE TABLE IF NOT EXISTS draft_poas (
		temp_id        TEXT PRIMARY KEY,
		plan_id        TEXT NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
		period_temp_id TEXT NOT NULL REFERENCES draft_periods(temp_id) ON DELETE CASCADE,
		period_year    INTEGER NOT NULL,
		type           TEXT NOT NULL,
		code           TEXT NOT NULL,
		budget         TEXT NOT NULL,
		order_index    INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS draft_activities (
		temp_id     TEXT PRIMARY KEY,
		poa_temp_id TEXT NOT NULL REFERENCES draft_poas(temp_id) ON DELETE CASCADE,
		ordinal     INTEGER NOT NULL,
		description TEXT NOT NULL,
		UNIQUE(poa_temp_id, ordinal)
	)`,

	`CREATE TABLE IF NOT EXISTS draft_tasks (
		temp_id          TEXT PRIMARY KEY,
		activity_temp_id TEXT NOT NULL REFERENCES draft_activities(temp_id) ON DELETE CASCADE,
		detail_id        TEXT NOT NULL,
		name             TEXT NOT NULL,
		quantity         INTEGER NOT NULL,
		unit_price       TEXT NOT NULL,
		order_index      INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS draft_programmings (
		task_temp_id TEXT NOT NULL REFERENCES draft_tasks(temp_id) ON DELETE CASCADE,
		month_slot   INTEGER NOT NULL CHECK(month_slot BETWEEN 1 AND 12),
		value        TEXT NOT NULL,
		PRIMARY KEY(task_temp_id, month_slot)
	)`,

	`CREATE TABLE IF NOT EXISTS submissions (
		id                     TEXT PRIMARY KEY,
		plan_id                TEXT NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
		submitted_at           TEXT NOT NULL,
		periods_attempted      INTEGER NOT NULL,
		periods_succeeded      INTEGER NOT NULL,
		poas_attempted         INTEGER NOT NULL,
		poas_succeeded         INTEGER NOT NULL,
		activities_attempted   INTEGER NOT NULL,
		activities_succeeded   INTEGER NOT NULL,
		tasks_attempted        INTEGER NOT NULL,
		tasks_succeeded        INTEGER NOT NULL,
		programmings_attempted INTEGER NOT NULL,
		programmings_succeeded INTEGER NOT NULL,
		skipped                INTEGER NOT NULL DEFAULT 0,
		first_error            TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_draft_poas_plan ON draft_poas(plan_id)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_plan ON submissions(plan_id)`,
}

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
