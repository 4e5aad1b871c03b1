package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillPlanType(db); err != nil {
		return fmt.Errorf("backfilling plan_type: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS student_profiles (
		id                    TEXT PRIMARY KEY,
		owner_id              TEXT NOT NULL DEFAULT '',
		full_name             TEXT NOT NULL DEFAULT '',
		grade_level           INTEGER,
		learning_style        TEXT NOT NULL DEFAULT 'mixed',
		interests             TEXT NOT NULL DEFAULT '[]',
		strengths             TEXT NOT NULL DEFAULT '[]',
		areas_for_improvement TEXT NOT NULL DEFAULT '[]',
		created_at            TEXT NOT NULL,
		updated_at            TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_student_profiles_owner ON student_profiles(owner_id)`,

	`CREATE TABLE IF NOT EXISTS content_items (
		id               TEXT PRIMARY KEY,
		subject          TEXT NOT NULL,
		title            TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		content_type     TEXT NOT NULL DEFAULT 'other'
		                 CHECK(content_type IN ('article','video','interactive','worksheet','quiz','lesson','activity','other')),
		difficulty_level TEXT NOT NULL DEFAULT 'unknown',
		grade_levels     TEXT NOT NULL DEFAULT '[]',
		url              TEXT NOT NULL DEFAULT '',
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		topics           TEXT NOT NULL DEFAULT '[]',
		keywords         TEXT NOT NULL DEFAULT '[]',
		source           TEXT NOT NULL DEFAULT '',
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_content_items_subject ON content_items(subject COLLATE NOCASE)`,

	`CREATE TABLE IF NOT EXISTS learning_plans (
		id                  TEXT PRIMARY KEY,
		owner_id            TEXT NOT NULL DEFAULT '',
		student_id          TEXT NOT NULL,
		status              TEXT NOT NULL DEFAULT 'not_started'
		                    CHECK(status IN ('not_started','in_progress','completed')),
		progress_percentage REAL NOT NULL DEFAULT 0,
		document            TEXT NOT NULL,
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_learning_plans_owner ON learning_plans(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_learning_plans_student ON learning_plans(student_id)`,

	`CREATE TABLE IF NOT EXISTS progress_tasks (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		task_type  TEXT NOT NULL,
		status     TEXT NOT NULL
		           CHECK(status IN ('pending','in_progress','completed','failed')),
		document   TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_progress_tasks_user ON progress_tasks(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_progress_tasks_updated ON progress_tasks(updated_at)`,

	// Plan type is denormalized out of the document for listing filters.
	`ALTER TABLE learning_plans ADD COLUMN plan_type TEXT NOT NULL DEFAULT ''`,
}

// migrateBackfillPlanType copies metadata.plan_type out of stored plan
// documents for rows written before the column existed. Documents without
// a type predate focused plans and are balanced.
func migrateBackfillPlanType(db *sql.DB) error {
	ctx := context.Background()

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM learning_plans WHERE plan_type = ''`).Scan(&count); err != nil {
		return fmt.Errorf("checking plan_type: %w", err)
	}
	if count == 0 {
		return nil
	}

	_, err := db.ExecContext(ctx, `UPDATE learning_plans
		SET plan_type = COALESCE(NULLIF(json_extract(document, '$.metadata.plan_type'), ''), 'balanced')
		WHERE plan_type = ''`)
	if err != nil {
		return fmt.Errorf("updating plan_type: %w", err)
	}
	return nil
}
