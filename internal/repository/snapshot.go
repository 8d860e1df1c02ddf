// Package repository provides PostgreSQL persistence for synchronized
// fitness and smoking snapshots.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/mehdibadjian/fitness-planner/internal/models"
)

// ErrSnapshotNotFound is returned when an owner has never synced.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// PostgresSnapshotRepository stores one snapshot per owner against a PostgreSQL database.
type PostgresSnapshotRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresSnapshotRepository creates a PostgresSnapshotRepository using the provided *sql.DB.
// db must be a valid connection to a PostgreSQL instance.
func NewPostgresSnapshotRepository(db *sql.DB) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{DB: db}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

// queryer is the read side shared by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// LoadSnapshot returns the stored snapshot of ownerID, or ErrSnapshotNotFound
// if the owner has never synced. All three tables are read in one read-only
// transaction so a concurrent SaveSnapshot is seen either whole or not at all.
func (r *PostgresSnapshotRepository) LoadSnapshot(ctx context.Context, ownerID string) (*models.Snapshot, error) {
	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var lastSync time.Time
	err = tx.QueryRowContext(ctx, `
		SELECT last_sync FROM sync_state WHERE owner_id = $1
	`, ownerID).Scan(&lastSync)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("LoadSnapshot: %w", err)
	}

	workouts, err := listWorkouts(ctx, tx, ownerID)
	if err != nil {
		return nil, err
	}
	smoking, err := listSmoking(ctx, tx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &models.Snapshot{
		Workouts: workouts,
		Smoking:  smoking,
		LastSync: lastSync.UTC(),
		UserID:   ownerID,
	}, nil
}

// ListWorkouts fetches all workout entries of ownerID, newest first.
func (r *PostgresSnapshotRepository) ListWorkouts(ctx context.Context, ownerID string) ([]models.WorkoutEntry, error) {
	return listWorkouts(ctx, r.DB, ownerID)
}

func listWorkouts(ctx context.Context, q queryer, ownerID string) ([]models.WorkoutEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, date, workout_done, duration, energy, notes, week_number
		FROM workouts WHERE owner_id = $1 ORDER BY date DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ListWorkouts: %w", err)
	}
	defer rows.Close()

	workouts := []models.WorkoutEntry{}
	for rows.Next() {
		var (
			w                models.WorkoutEntry
			duration, energy sql.NullInt64
		)
		if err := rows.Scan(&w.ID, &w.Date, &w.WorkoutDone, &duration, &energy, &w.Notes, &w.WeekNumber); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		w.Duration = intPtr(duration)
		w.Energy = intPtr(energy)
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListWorkouts: %w", err)
	}
	return workouts, nil
}

// ListSmoking fetches all smoking entries of ownerID, newest first.
func (r *PostgresSnapshotRepository) ListSmoking(ctx context.Context, ownerID string) ([]models.SmokingEntry, error) {
	return listSmoking(ctx, r.DB, ownerID)
}

func listSmoking(ctx context.Context, q queryer, ownerID string) ([]models.SmokingEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, date, cigarettes_smoked, target, first_cig_time, craving_intensity, notes, week_number
		FROM smoking WHERE owner_id = $1 ORDER BY date DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ListSmoking: %w", err)
	}
	defer rows.Close()

	smoking := []models.SmokingEntry{}
	for rows.Next() {
		var (
			s       models.SmokingEntry
			craving sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &s.Date, &s.CigarettesSmoked, &s.Target, &s.FirstCigTime, &craving, &s.Notes, &s.WeekNumber); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		s.CravingIntensity = intPtr(craving)
		smoking = append(smoking, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListSmoking: %w", err)
	}
	return smoking, nil
}

// SaveSnapshot replaces the stored snapshot of snap.UserID within a transaction.
// Entries are upserted by (owner, date); stored dates missing from snap are
// removed. Every save appends a row to sync_log.
func (r *PostgresSnapshotRepository) SaveSnapshot(ctx context.Context, snap models.Snapshot) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	owner := snap.UserID
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sync_state (owner_id, last_sync) VALUES ($1, $2)
		ON CONFLICT (owner_id) DO UPDATE SET last_sync = EXCLUDED.last_sync
	`, owner, snap.LastSync)
	if err != nil {
		return fmt.Errorf("upsert sync state: %w", err)
	}

	workoutDates := make([]string, 0, len(snap.Workouts))
	for _, w := range snap.Workouts {
		workoutDates = append(workoutDates, w.Date)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM workouts WHERE owner_id = $1 AND NOT (date = ANY($2))
	`, owner, pq.Array(workoutDates)); err != nil {
		return fmt.Errorf("delete stale workouts: %w", err)
	}
	for _, w := range snap.Workouts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO workouts (owner_id, id, date, workout_done, duration, energy, notes, week_number)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (owner_id, date) DO UPDATE SET
				id = EXCLUDED.id,
				workout_done = EXCLUDED.workout_done,
				duration = EXCLUDED.duration,
				energy = EXCLUDED.energy,
				notes = EXCLUDED.notes,
				week_number = EXCLUDED.week_number
		`, owner, w.ID, w.Date, w.WorkoutDone, nullInt(w.Duration), nullInt(w.Energy), w.Notes, w.WeekNumber)
		if err != nil {
			return fmt.Errorf("upsert workout %s: %w", w.Date, err)
		}
	}

	smokingDates := make([]string, 0, len(snap.Smoking))
	for _, s := range snap.Smoking {
		smokingDates = append(smokingDates, s.Date)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM smoking WHERE owner_id = $1 AND NOT (date = ANY($2))
	`, owner, pq.Array(smokingDates)); err != nil {
		return fmt.Errorf("delete stale smoking: %w", err)
	}
	for _, s := range snap.Smoking {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO smoking (owner_id, id, date, cigarettes_smoked, target, first_cig_time, craving_intensity, notes, week_number)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (owner_id, date) DO UPDATE SET
				id = EXCLUDED.id,
				cigarettes_smoked = EXCLUDED.cigarettes_smoked,
				target = EXCLUDED.target,
				first_cig_time = EXCLUDED.first_cig_time,
				craving_intensity = EXCLUDED.craving_intensity,
				notes = EXCLUDED.notes,
				week_number = EXCLUDED.week_number
		`, owner, s.ID, s.Date, s.CigarettesSmoked, s.Target, s.FirstCigTime, nullInt(s.CravingIntensity), s.Notes, s.WeekNumber)
		if err != nil {
			return fmt.Errorf("upsert smoking %s: %w", s.Date, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sync_log (owner_id, workouts, smoking) VALUES ($1, $2, $3)
	`, owner, len(snap.Workouts), len(snap.Smoking)); err != nil {
		return fmt.Errorf("insert sync log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
