package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations is the ordered list of schema versions. Each entry runs at most
// once; applied versions are tracked in schema_migrations.
var migrations = []string{
	`CREATE TABLE users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		full_name     TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'student',
		role_code     TEXT NOT NULL DEFAULT 'student_default',
		is_active     INTEGER NOT NULL DEFAULT 1,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE TABLE events (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		description   TEXT,
		start_date    TEXT NOT NULL,
		end_date      TEXT NOT NULL,
		created_by_id TEXT NOT NULL REFERENCES users(id),
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE TABLE equipments (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT,
		category    TEXT,
		owner_id    TEXT NOT NULL REFERENCES users(id),
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE TABLE packing_equipments (
		id           TEXT PRIMARY KEY,
		event_id     TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		equipment_id TEXT NOT NULL REFERENCES equipments(id),
		quantity     INTEGER NOT NULL DEFAULT 1,
		required     INTEGER NOT NULL DEFAULT 1,
		notes        TEXT,
		UNIQUE (event_id, equipment_id)
	)`,
	`CREATE TABLE meals (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		description   TEXT,
		price         REAL,
		is_vegetarian INTEGER NOT NULL DEFAULT 0,
		is_beef       INTEGER NOT NULL DEFAULT 0,
		calories      INTEGER,
		created_by_id TEXT NOT NULL REFERENCES users(id),
		created_at    TEXT NOT NULL
	)`,
	`CREATE TABLE event_meal_options (
		id           TEXT PRIMARY KEY,
		event_id     TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		meal_id      TEXT NOT NULL REFERENCES meals(id),
		meal_type    TEXT NOT NULL,
		day          INTEGER NOT NULL,
		max_quantity INTEGER
	)`,
	`CREATE TABLE attendances (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL REFERENCES users(id),
		event_id     TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		is_attending INTEGER NOT NULL DEFAULT 1,
		UNIQUE (user_id, event_id)
	)`,
	`CREATE TABLE meal_choices (
		id                   TEXT PRIMARY KEY,
		attendance_id        TEXT NOT NULL REFERENCES attendances(id) ON DELETE CASCADE,
		event_meal_option_id TEXT NOT NULL REFERENCES event_meal_options(id) ON DELETE CASCADE,
		quantity             INTEGER NOT NULL DEFAULT 1,
		notes                TEXT,
		created_at           TEXT NOT NULL,
		updated_at           TEXT NOT NULL
	)`,
	`CREATE INDEX idx_packing_equipments_event ON packing_equipments(event_id)`,
	`CREATE INDEX idx_event_meal_options_event ON event_meal_options(event_id)`,
	`CREATE INDEX idx_attendances_user ON attendances(user_id)`,
	`CREATE INDEX idx_meal_choices_attendance ON meal_choices(attendance_id)`,
	`CREATE INDEX idx_meal_choices_option ON meal_choices(event_meal_option_id)`,
}

// Migrate brings the schema up to the current version. It is idempotent and
// safe to run on every startup.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	if _, err := cp.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	err := cp.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for version := current + 1; version <= len(migrations); version++ {
		statement := migrations[version-1]
		if err := cp.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.Exec(statement); err != nil {
				return fmt.Errorf("apply migration %d: %w", version, err)
			}
			if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
				return fmt.Errorf("record migration %d: %w", version, err)
			}
			return nil
		}); err != nil {
			return err
		}
	}

	return nil
}
