package scanlock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-self/apps/cookie-scan-core/internal/scanlock"
)

func TestMemoryLocker_SecondAcquireFails(t *testing.T) {
	l := scanlock.NewMemoryLocker()
	ctx := context.Background()

	ok, err := l.SetIfAbsent(ctx, "lock:schedule:1", "instance-a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.SetIfAbsent(ctx, "lock:schedule:1", "instance-b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "a second instance must not acquire a held lock")
}

func TestMemoryLocker_CompareAndDelete_RejectsWrongToken(t *testing.T) {
	l := scanlock.NewMemoryLocker()
	ctx := context.Background()

	_, err := l.SetIfAbsent(ctx, "lock:schedule:1", "instance-a", time.Minute)
	require.NoError(t, err)

	ok, err := l.CompareAndDelete(ctx, "lock:schedule:1", "instance-b")
	require.NoError(t, err)
	assert.False(t, ok, "a process must not be able to release someone else's lock")

	ok, err = l.CompareAndDelete(ctx, "lock:schedule:1", "instance-a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLocker_ExpiredLockAutoReleases(t *testing.T) {
	l := scanlock.NewMemoryLocker()
	ctx := context.Background()

	ok, err := l.SetIfAbsent(ctx, "lock:schedule:1", "instance-a", 10*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(25 * time.Millisecond)

	exists, err := l.Exists(ctx, "lock:schedule:1")
	require.NoError(t, err)
	assert.False(t, exists, "TTL elapsed, lock should have auto-released")

	ok, err = l.SetIfAbsent(ctx, "lock:schedule:1", "instance-b", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "another instance should be able to acquire after expiry")
}

func TestMemoryLocker_Extend(t *testing.T) {
	l := scanlock.NewMemoryLocker()
	ctx := context.Background()

	_, err := l.SetIfAbsent(ctx, "lock:schedule:1", "instance-a", 20*time.Millisecond)
	require.NoError(t, err)

	ok, err := l.Extend(ctx, "lock:schedule:1", "instance-a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(30 * time.Millisecond)

	exists, err := l.Exists(ctx, "lock:schedule:1")
	require.NoError(t, err)
	assert.True(t, exists, "extended lock must not have expired on the old TTL")
}
