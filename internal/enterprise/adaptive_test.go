package enterprise_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-self/apps/cookie-scan-core/internal/enterprise"
)

func TestAdaptiveLimiter_ShrinksOnSteepDecline(t *testing.T) {
	l := enterprise.NewAdaptiveLimiter(10, 2, 10)
	l.Adjust(10.0, 7.0) // -30%, steeper than the -20% threshold
	assert.Less(t, l.Limit(), 10)
	assert.GreaterOrEqual(t, l.Limit(), 2)
}

func TestAdaptiveLimiter_GrowsOnImprovingThroughput(t *testing.T) {
	l := enterprise.NewAdaptiveLimiter(2, 2, 10)
	l.Adjust(5.0, 8.0)
	assert.Greater(t, l.Limit(), 2)
}

func TestAdaptiveLimiter_NeverBelowMinimumOrAboveMaximum(t *testing.T) {
	l := enterprise.NewAdaptiveLimiter(2, 2, 10)
	for i := 0; i < 20; i++ {
		l.Adjust(10.0, 1.0)
	}
	assert.GreaterOrEqual(t, l.Limit(), 2)

	l2 := enterprise.NewAdaptiveLimiter(2, 2, 10)
	for i := 0; i < 20; i++ {
		l2.Adjust(1.0, 10.0)
	}
	assert.LessOrEqual(t, l2.Limit(), 10)
}

func TestAdaptiveLimiter_AcquireReleaseRespectsLimit(t *testing.T) {
	l := enterprise.NewAdaptiveLimiter(1, 1, 1)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))

	acquired := make(chan struct{})
	go func() {
		_ = l.Acquire(ctx)
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire should block while limit is 1 and one slot is held")
	default:
	}

	l.Release()
	<-acquired
}
