package scanschedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arc-self/apps/cookie-scan-core/internal/cookiemodel"
	"github.com/arc-self/apps/cookie-scan-core/internal/scanlock"
)

// Runner executes one Schedule's scan and returns the resulting ScanID, or
// an error if the scan failed outright (spec §4.6 Execution).
type Runner interface {
	Run(ctx context.Context, sched Schedule) (scanID string, err error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, sched Schedule) (string, error)

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, sched Schedule) (string, error) {
	return f(ctx, sched)
}

// Store persists Schedule and Execution state across ticks. The scan core
// is agnostic to the concrete backing store (spec §6 DATABASE_URL is opaque
// to the core); callers provide an implementation.
type Store interface {
	DueSchedules(ctx context.Context, now time.Time) ([]Schedule, error)
	UpdateAfterRun(ctx context.Context, sched Schedule, exec Execution) error
}

// Coordinator implements the Schedule Coordinator's tick-driven, lock-guarded
// dispatch loop (spec §4.6).
type Coordinator struct {
	store    Store
	locker   scanlock.Locker
	runner   Runner
	logger   *zap.Logger
	lockTTL  time.Duration
	instance string
}

// NewCoordinator builds a Coordinator. instanceToken identifies this
// process as the lock holder (spec §4.6 "opaque instance-token").
func NewCoordinator(store Store, locker scanlock.Locker, runner Runner, lockTTL time.Duration, instanceToken string, logger *zap.Logger) *Coordinator {
	if instanceToken == "" {
		instanceToken = uuid.NewString()
	}
	return &Coordinator{
		store:    store,
		locker:   locker,
		runner:   runner,
		logger:   logger,
		lockTTL:  lockTTL,
		instance: instanceToken,
	}
}

// Tick enumerates due schedules and attempts to run each one under its lock
// (spec §4.6 Contract). It returns the Executions produced this tick,
// including Skipped ones. An execution skipped because the lock backend was
// unreachable is returned but not persisted, so the schedule stays due.
func (c *Coordinator) Tick(ctx context.Context) ([]Execution, error) {
	now := time.Now().UTC()

	due, err := c.store.DueSchedules(ctx, now)
	if err != nil {
		// LockUnavailable-style failure mode also applies to the store: fail
		// open is not acceptable, so a tick that can't enumerate schedules
		// skips entirely rather than guessing.
		if c.logger != nil {
			c.logger.Warn("schedule coordinator: failed to enumerate due schedules", zap.Error(err))
		}
		return nil, fmt.Errorf("scanschedule: enumerate due schedules: %w", err)
	}

	executions := make([]Execution, 0, len(due))
	for _, sched := range due {
		exec := c.runOne(ctx, sched, now)
		executions = append(executions, exec)
		if exec.Status == StatusSkipped && exec.Error == lockUnavailableMsg {
			// Leave next_run untouched so the next tick retries this schedule.
			continue
		}
		if err := c.store.UpdateAfterRun(ctx, sched, exec); err != nil && c.logger != nil {
			c.logger.Error("schedule coordinator: failed to persist execution", zap.String("scheduleId", sched.ID), zap.Error(err))
		}
	}
	return executions, nil
}

// lockUnavailableMsg is the Error of the Skipped execution runOne returns
// when the lock backend cannot be reached.
const lockUnavailableMsg = "lock backend unavailable"

// runOne drives one schedule through Idle -> LockAttempt -> {Running ->
// Succeeded|Failed} | Skipped -> Idle (spec §4.6 state machine).
func (c *Coordinator) runOne(ctx context.Context, sched Schedule, now time.Time) Execution {
	lockKey := scanlock.ScheduleLockKey(sched.ID)

	acquired, err := c.locker.SetIfAbsent(ctx, lockKey, c.instance, c.lockTTL)
	if err != nil {
		// LockUnavailable: skip this tick, log, retry next tick.
		if c.logger != nil {
			c.logger.Warn("schedule coordinator: lock backend unavailable, skipping tick", zap.String("scheduleId", sched.ID), zap.Error(err))
		}
		return Execution{ScheduleID: sched.ID, StartedAt: now, FinishedAt: now, Status: StatusSkipped, Error: lockUnavailableMsg}
	}
	if !acquired {
		// LockNotAcquired: normal operation, not an error.
		return Execution{ScheduleID: sched.ID, StartedAt: now, FinishedAt: now, Status: StatusSkipped}
	}

	defer func() {
		if _, err := c.locker.CompareAndDelete(ctx, lockKey, c.instance); err != nil && c.logger != nil {
			c.logger.Warn("schedule coordinator: failed to release lock", zap.String("scheduleId", sched.ID), zap.Error(err))
		}
	}()

	scanID, runErr := c.runner.Run(ctx, sched)
	finished := time.Now().UTC()
	if runErr != nil {
		if c.logger != nil {
			c.logger.Error("schedule coordinator: scan failed", zap.String("scheduleId", sched.ID), zap.Error(runErr))
		}
		return Execution{ScheduleID: sched.ID, StartedAt: now, FinishedAt: finished, Status: StatusFailed, ScanID: scanID, Error: runErr.Error()}
	}
	return Execution{ScheduleID: sched.ID, StartedAt: now, FinishedAt: finished, Status: StatusSucceeded, ScanID: scanID}
}

// DefaultRunner adapts quick/enterprise scan callables into a Runner keyed
// by Schedule.ScanType.
func DefaultRunner(quick func(ctx context.Context, domain string) (cookiemodel.ScanResult, error), enterprise func(ctx context.Context, domain string) (cookiemodel.ScanResult, error)) Runner {
	return RunnerFunc(func(ctx context.Context, sched Schedule) (string, error) {
		switch sched.ScanType {
		case cookiemodel.ModeEnterprise:
			result, err := enterprise(ctx, sched.Domain)
			return result.ScanID, err
		default:
			result, err := quick(ctx, sched.Domain)
			return result.ScanID, err
		}
	})
}
