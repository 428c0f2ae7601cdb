package scanschedule_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-self/apps/cookie-scan-core/internal/scanlock"
	"github.com/arc-self/apps/cookie-scan-core/internal/scanschedule"
)

type fakeStore struct {
	due     []scanschedule.Schedule
	updated []scanschedule.Execution
}

func (s *fakeStore) DueSchedules(ctx context.Context, now time.Time) ([]scanschedule.Schedule, error) {
	return s.due, nil
}

func (s *fakeStore) UpdateAfterRun(ctx context.Context, sched scanschedule.Schedule, exec scanschedule.Execution) error {
	s.updated = append(s.updated, exec)
	return nil
}

func TestCoordinator_RunsAndSucceeds(t *testing.T) {
	store := &fakeStore{due: []scanschedule.Schedule{{ID: "s1", Domain: "example.com"}}}
	locker := scanlock.NewMemoryLocker()
	runner := scanschedule.RunnerFunc(func(ctx context.Context, sched scanschedule.Schedule) (string, error) {
		return "scan_123", nil
	})
	coord := scanschedule.NewCoordinator(store, locker, runner, time.Minute, "instance-a", nil)

	execs, err := coord.Tick(context.Background())
	require.NoError(t, err)
	require.Len(t, execs, 1)
	assert.Equal(t, scanschedule.StatusSucceeded, execs[0].Status)
	assert.Equal(t, "scan_123", execs[0].ScanID)

	held, err := locker.Exists(context.Background(), "lock:schedule:s1")
	require.NoError(t, err)
	assert.False(t, held, "lock must be released after a successful run")
}

func TestCoordinator_SkipsWhenLockHeld(t *testing.T) {
	store := &fakeStore{due: []scanschedule.Schedule{{ID: "s1", Domain: "example.com"}}}
	locker := scanlock.NewMemoryLocker()
	_, err := locker.SetIfAbsent(context.Background(), "lock:schedule:s1", "someone-else", time.Minute)
	require.NoError(t, err)

	ran := false
	runner := scanschedule.RunnerFunc(func(ctx context.Context, sched scanschedule.Schedule) (string, error) {
		ran = true
		return "scan_123", nil
	})
	coord := scanschedule.NewCoordinator(store, locker, runner, time.Minute, "instance-a", nil)

	execs, err := coord.Tick(context.Background())
	require.NoError(t, err)
	require.Len(t, execs, 1)
	assert.Equal(t, scanschedule.StatusSkipped, execs[0].Status)
	assert.False(t, ran, "runner must not be invoked when the lock is held elsewhere")
}

func TestCoordinator_RecordsFailedExecutionAndReleasesLock(t *testing.T) {
	store := &fakeStore{due: []scanschedule.Schedule{{ID: "s1", Domain: "example.com"}}}
	locker := scanlock.NewMemoryLocker()
	runner := scanschedule.RunnerFunc(func(ctx context.Context, sched scanschedule.Schedule) (string, error) {
		return "", errors.New("navigation failed")
	})
	coord := scanschedule.NewCoordinator(store, locker, runner, time.Minute, "instance-a", nil)

	execs, err := coord.Tick(context.Background())
	require.NoError(t, err)
	require.Len(t, execs, 1)
	assert.Equal(t, scanschedule.StatusFailed, execs[0].Status)

	held, err := locker.Exists(context.Background(), "lock:schedule:s1")
	require.NoError(t, err)
	assert.False(t, held, "lock must be released even when the scan fails")
}

func TestCoordinator_PersistsEveryExecution(t *testing.T) {
	store := &fakeStore{due: []scanschedule.Schedule{{ID: "s1"}, {ID: "s2"}}}
	locker := scanlock.NewMemoryLocker()
	runner := scanschedule.RunnerFunc(func(ctx context.Context, sched scanschedule.Schedule) (string, error) {
		return "scan_1", nil
	})
	coord := scanschedule.NewCoordinator(store, locker, runner, time.Minute, "instance-a", nil)

	_, err := coord.Tick(context.Background())
	require.NoError(t, err)
	assert.Len(t, store.updated, 2)
}
