package scanlock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker is an in-process Locker implementation. It satisfies the same
// atomic contract as NATSLocker and is used by tests and by single-node
// deployments that don't run NATS. TTL expiry is evaluated lazily on access,
// mirroring the JetStream backend's own lazy-expiry behaviour.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]memoryLock
}

type memoryLock struct {
	value    string
	deadline time.Time
}

// NewMemoryLocker creates an empty in-process lock table.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]memoryLock)}
}

func (l *MemoryLocker) expire(key string) {
	if lk, ok := l.locks[key]; ok && time.Now().After(lk.deadline) {
		delete(l.locks, key)
	}
}

// SetIfAbsent implements Locker.
func (l *MemoryLocker) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.expire(key)
	if _, held := l.locks[key]; held {
		return false, nil
	}
	l.locks[key] = memoryLock{value: value, deadline: time.Now().Add(ttl)}
	return true, nil
}

// CompareAndDelete implements Locker.
func (l *MemoryLocker) CompareAndDelete(ctx context.Context, key, expectedValue string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.expire(key)
	lk, held := l.locks[key]
	if !held || lk.value != expectedValue {
		return false, nil
	}
	delete(l.locks, key)
	return true, nil
}

// Extend implements Locker.
func (l *MemoryLocker) Extend(ctx context.Context, key, expectedValue string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.expire(key)
	lk, held := l.locks[key]
	if !held || lk.value != expectedValue {
		return false, nil
	}
	lk.deadline = time.Now().Add(ttl)
	l.locks[key] = lk
	return true, nil
}

// Exists implements Locker.
func (l *MemoryLocker) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.expire(key)
	_, held := l.locks[key]
	return held, nil
}
