package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS sync_state (
    owner_id TEXT PRIMARY KEY,
    last_sync TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS workouts (
    owner_id TEXT NOT NULL REFERENCES sync_state(owner_id) ON DELETE CASCADE,
    id TEXT NOT NULL,
    date TEXT NOT NULL,
    workout_done BOOLEAN NOT NULL DEFAULT FALSE,
    duration INTEGER,
    energy INTEGER,
    notes TEXT NOT NULL DEFAULT '',
    week_number INTEGER NOT NULL,
    UNIQUE (owner_id, date)
);

CREATE TABLE IF NOT EXISTS smoking (
    owner_id TEXT NOT NULL REFERENCES sync_state(owner_id) ON DELETE CASCADE,
    id TEXT NOT NULL,
    date TEXT NOT NULL,
    cigarettes_smoked INTEGER NOT NULL,
    target INTEGER NOT NULL,
    first_cig_time TEXT NOT NULL DEFAULT '',
    craving_intensity INTEGER,
    notes TEXT NOT NULL DEFAULT '',
    week_number INTEGER NOT NULL,
    UNIQUE (owner_id, date)
);

CREATE TABLE IF NOT EXISTS sync_log (
    id BIGSERIAL PRIMARY KEY,
    owner_id TEXT NOT NULL,
    workouts INTEGER NOT NULL,
    smoking INTEGER NOT NULL,
    synced_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// InitPostgres opens dsn, checks the connection and creates the snapshot
// tables when they are missing.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := applySchema(db); err != nil {
		return nil, err
	}

	return db, nil
}

// applySchema creates the snapshot tables when they are missing.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
