package enterprise

import (
	"context"
	"sync"
)

// AdaptiveLimiter bounds global in-flight page visits between [P, P*K],
// adjusted chunk-over-chunk by comparing throughput (spec §4.5 Adaptive
// concurrency, optional). It wraps a condition variable rather than a fixed
// channel because its capacity changes at runtime.
type AdaptiveLimiter struct {
	mu      sync.Mutex
	cond    *sync.Cond
	active  int
	limit   int
	minimum int
	maximum int
}

// NewAdaptiveLimiter starts at limit = min(initial, maximum), bounded to
// [minimum, maximum] = [P, P*K].
func NewAdaptiveLimiter(initial, minimum, maximum int) *AdaptiveLimiter {
	if initial < minimum {
		initial = minimum
	}
	if initial > maximum {
		initial = maximum
	}
	l := &AdaptiveLimiter{limit: initial, minimum: minimum, maximum: maximum}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Acquire blocks until a slot under the current limit is available.
func (l *AdaptiveLimiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	for l.active >= l.limit {
		if ctx.Err() != nil {
			l.mu.Unlock()
			return ctx.Err()
		}
		l.cond.Wait()
	}
	l.active++
	l.mu.Unlock()
	return nil
}

// Release frees one in-flight slot.
func (l *AdaptiveLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.cond.Broadcast()
	l.mu.Unlock()
}

// Adjust compares currentRate against priorRate and grows or shrinks the
// limit by 10%, per spec §4.5: declining >20% and above minimum ⟹ shrink;
// rising and below maximum ⟹ grow.
func (l *AdaptiveLimiter) Adjust(priorRate, currentRate float64) {
	if priorRate <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	change := (currentRate - priorRate) / priorRate
	switch {
	case change < -0.20 && l.limit > l.minimum:
		l.limit = maxInt(l.minimum, l.limit-l.limit/10)
	case change > 0 && l.limit < l.maximum:
		l.limit = minInt(l.maximum, l.limit+l.limit/10+1)
	}
	l.cond.Broadcast()
}

// Limit returns the current effective concurrency cap.
func (l *AdaptiveLimiter) Limit() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.limit
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
