package classify_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arc-self/apps/cookie-scan-core/internal/classify"
	"github.com/arc-self/apps/cookie-scan-core/internal/cookiemodel"
)

func epochIn(d time.Duration) string {
	return strconv.FormatInt(time.Now().Add(d).Unix(), 10)
}

func TestBucketDuration(t *testing.T) {
	now := time.Now()

	assert.Equal(t, classify.DurationSession, classify.BucketDuration(cookiemodel.SessionSentinel, now))
	assert.Equal(t, classify.DurationSession, classify.BucketDuration("", now))
	assert.Equal(t, classify.DurationExpired, classify.BucketDuration(strconv.FormatInt(now.Add(-time.Hour).Unix(), 10), now))
	assert.Equal(t, classify.DurationShort, classify.BucketDuration(strconv.FormatInt(now.Add(10*24*time.Hour).Unix(), 10), now))
	assert.Equal(t, classify.DurationMedium, classify.BucketDuration(strconv.FormatInt(now.Add(100*24*time.Hour).Unix(), 10), now))
	assert.Equal(t, classify.DurationLong, classify.BucketDuration(strconv.FormatInt(now.Add(400*24*time.Hour).Unix(), 10), now))
}

func TestExtractFeatures_FlagsExpiredCookieAsExpiredNotLong(t *testing.T) {
	expired := strconv.FormatInt(time.Now().Add(-24*time.Hour).Unix(), 10)

	f := classify.ExtractFeatures(cookiemodel.AggregatedCookie{Expires: expired}, false)

	assert.True(t, f.IsExpired)
	assert.False(t, f.IsSession)
	assert.Equal(t, classify.DurationExpired, f.Bucket)
	assert.Less(t, f.DurationDays, 0.0)
}

func TestExtractFeatures_LongLivedCookieBucketsAsLong(t *testing.T) {
	f := classify.ExtractFeatures(cookiemodel.AggregatedCookie{Expires: epochIn(2 * 365 * 24 * time.Hour)}, true)

	assert.Equal(t, classify.DurationLong, f.Bucket)
	assert.False(t, f.IsExpired)
	assert.Greater(t, f.DurationDays, 365.0)
}
