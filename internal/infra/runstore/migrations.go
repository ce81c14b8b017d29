package runstore

import "fmt"

const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means a fresh database.
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}
	return nil
}

func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			athlete_id  INTEGER NOT NULL,
			run_date    TEXT NOT NULL,
			run_type    TEXT NOT NULL,
			distance_km REAL NOT NULL,
			source      TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			UNIQUE (athlete_id, run_date)
		)`,

		`CREATE TABLE IF NOT EXISTS preferences (
			athlete_id INTEGER PRIMARY KEY,
			thresholds TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS plan_weeks (
			athlete_id         INTEGER NOT NULL,
			week_start         TEXT NOT NULL,
			phase              TEXT NOT NULL,
			week_number        INTEGER NOT NULL,
			start_date         TEXT NOT NULL,
			end_date           TEXT NOT NULL,
			long_run_target_km REAL NOT NULL,
			weekly_target_km   REAL NOT NULL,
			PRIMARY KEY (athlete_id, week_start)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_runs_athlete_date ON runs(athlete_id, run_date)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}
	return tx.Commit()
}
