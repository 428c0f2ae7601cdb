// Package scanlock provides the distributed mutual-exclusion primitive the
// Schedule Coordinator uses to guarantee only one fleet instance runs a
// given schedule at a time (spec §4.6, §6).
package scanlock

import (
	"context"
	"time"
)

// Locker is the distributed lock primitive required of any backend (spec §6).
// All operations are atomic with respect to other callers of the same
// backend, across processes.
type Locker interface {
	// SetIfAbsent atomically creates key=value with the given TTL iff the key
	// does not already exist. Returns true if the lock was acquired.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// CompareAndDelete atomically deletes key iff its current value equals
	// expectedValue. Returns true if the delete happened.
	CompareAndDelete(ctx context.Context, key, expectedValue string) (bool, error)

	// Extend atomically refreshes the TTL of key iff its current value
	// equals expectedValue. Returns true if the extension happened.
	Extend(ctx context.Context, key, expectedValue string, ttl time.Duration) (bool, error)

	// Exists reports whether key is currently held by anyone.
	Exists(ctx context.Context, key string) (bool, error)
}

// ScheduleLockKey builds the `lock:schedule:<id>` key convention from spec §6.
func ScheduleLockKey(scheduleID string) string {
	return "lock:schedule:" + scheduleID
}

// DomainLockKey builds a domain-level gating key, used when a deployment
// wants to serialize all schedules against one domain rather than one
// schedule at a time.
func DomainLockKey(domain string) string {
	return "lock:domain:" + domain
}
