package scanschedule

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arc-self/apps/cookie-scan-core/internal/cookiemodel"
)

// PGStore implements Store against Postgres using a pgxpool-backed
// repository. Schedules are few and simple enough that hand-written SQL
// here avoids pulling in a generated-code layer for one table.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore wraps an existing pool. Callers own the pool's lifecycle.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// EnsureSchema creates the schedules/schedule_executions tables if they do
// not already exist. Called once at startup; owns simple DDL inline rather
// than requiring a separate migration tool.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schedules (
	id           TEXT PRIMARY KEY,
	domain       TEXT NOT NULL,
	scan_type    TEXT NOT NULL,
	frequency    TEXT NOT NULL,
	time_config  JSONB NOT NULL,
	timezone     TEXT NOT NULL DEFAULT 'UTC',
	enabled      BOOLEAN NOT NULL DEFAULT true,
	next_run     TIMESTAMPTZ NOT NULL,
	last_run     TIMESTAMPTZ,
	last_status  TEXT
);
CREATE TABLE IF NOT EXISTS schedule_executions (
	id           BIGSERIAL PRIMARY KEY,
	schedule_id  TEXT NOT NULL REFERENCES schedules(id),
	started_at   TIMESTAMPTZ NOT NULL,
	finished_at  TIMESTAMPTZ NOT NULL,
	status       TEXT NOT NULL,
	scan_id      TEXT,
	error        TEXT
);`)
	if err != nil {
		return fmt.Errorf("scanschedule: ensure schema: %w", err)
	}
	return nil
}

// DueSchedules implements Store.
func (s *PGStore) DueSchedules(ctx context.Context, now time.Time) ([]Schedule, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, domain, scan_type, frequency, time_config, timezone, enabled, next_run, last_run, last_status
FROM schedules WHERE enabled = true AND next_run <= $1`, now)
	if err != nil {
		return nil, fmt.Errorf("scanschedule: query due schedules: %w", err)
	}
	defer rows.Close()

	var out []Schedule
	for rows.Next() {
		sched, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sched)
	}
	return out, rows.Err()
}

// UpdateAfterRun implements Store: it advances NextRun per the schedule's
// frequency, records LastRun/LastStatus, and appends an execution row, all
// in one transaction so a crash mid-update can't leave next_run stale while
// an execution row is missing.
func (s *PGStore) UpdateAfterRun(ctx context.Context, sched Schedule, exec Execution) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("scanschedule: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	next, nextErr := NextRun(sched.Frequency, sched.TimeConfig, exec.FinishedAt, sched.Timezone)
	if nextErr != nil {
		// Keep the schedule alive on an unparsable config rather than
		// wedging it at its old next_run forever; operators fix the
		// config and the schedule resumes on the following tick.
		next = exec.FinishedAt.Add(time.Hour)
	}

	if _, err := tx.Exec(ctx, `
UPDATE schedules SET next_run = $2, last_run = $3, last_status = $4 WHERE id = $1`,
		sched.ID, next, exec.FinishedAt, string(exec.Status)); err != nil {
		return fmt.Errorf("scanschedule: update schedule: %w", err)
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO schedule_executions (schedule_id, started_at, finished_at, status, scan_id, error)
VALUES ($1, $2, $3, $4, $5, $6)`,
		exec.ScheduleID, exec.StartedAt, exec.FinishedAt, string(exec.Status), exec.ScanID, exec.Error); err != nil {
		return fmt.Errorf("scanschedule: insert execution: %w", err)
	}

	return tx.Commit(ctx)
}

// CreateSchedule inserts a new schedule with the NextRun the caller set on it.
func (s *PGStore) CreateSchedule(ctx context.Context, sched Schedule) error {
	cfg, err := json.Marshal(sched.TimeConfig)
	if err != nil {
		return fmt.Errorf("scanschedule: marshal time config: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO schedules (id, domain, scan_type, frequency, time_config, timezone, enabled, next_run)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sched.ID, sched.Domain, string(sched.ScanType), string(sched.Frequency), cfg, sched.Timezone, sched.Enabled, sched.NextRun)
	if err != nil {
		return fmt.Errorf("scanschedule: insert schedule: %w", err)
	}
	return nil
}

// ListSchedules returns every schedule, ordered by id.
func (s *PGStore) ListSchedules(ctx context.Context) ([]Schedule, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, domain, scan_type, frequency, time_config, timezone, enabled, next_run, last_run, last_status
FROM schedules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("scanschedule: list schedules: %w", err)
	}
	defer rows.Close()

	var out []Schedule
	for rows.Next() {
		sched, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sched)
	}
	return out, rows.Err()
}

func scanSchedule(rows pgx.Rows) (Schedule, error) {
	var (
		sched      Schedule
		scanType   string
		frequency  string
		cfgBytes   []byte
		lastRun    *time.Time
		lastStatus *string
	)
	if err := rows.Scan(&sched.ID, &sched.Domain, &scanType, &frequency, &cfgBytes, &sched.Timezone,
		&sched.Enabled, &sched.NextRun, &lastRun, &lastStatus); err != nil {
		return Schedule{}, fmt.Errorf("scanschedule: scan row: %w", err)
	}
	sched.ScanType = cookiemodel.ScanMode(scanType)
	sched.Frequency = Frequency(frequency)
	if err := json.Unmarshal(cfgBytes, &sched.TimeConfig); err != nil {
		return Schedule{}, fmt.Errorf("scanschedule: unmarshal time config: %w", err)
	}
	if lastRun != nil {
		sched.LastRun = *lastRun
	}
	if lastStatus != nil {
		sched.LastStatus = ExecutionStatus(*lastStatus)
	}
	return sched, nil
}
