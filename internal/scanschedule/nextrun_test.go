package scanschedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-self/apps/cookie-scan-core/internal/scanschedule"
)

func TestNextRun_Hourly(t *testing.T) {
	from := time.Date(2026, 3, 5, 10, 40, 0, 0, time.UTC)
	next, err := scanschedule.NextRun(scanschedule.FrequencyHourly, scanschedule.TimeConfig{Minute: 15}, from, "UTC")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 5, 11, 15, 0, 0, time.UTC), next)
}

func TestNextRun_Daily(t *testing.T) {
	from := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	next, err := scanschedule.NextRun(scanschedule.FrequencyDaily, scanschedule.TimeConfig{Hour: 9, Minute: 0}, from, "UTC")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 6, 9, 0, 0, 0, time.UTC), next)
}

func TestNextRun_Daily_LaterTodayIfNotYetPassed(t *testing.T) {
	from := time.Date(2026, 3, 5, 6, 0, 0, 0, time.UTC)
	next, err := scanschedule.NextRun(scanschedule.FrequencyDaily, scanschedule.TimeConfig{Hour: 9, Minute: 0}, from, "UTC")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC), next)
}

func TestNextRun_Weekly(t *testing.T) {
	// 2026-03-05 is a Thursday (weekday 4). Target Monday (weekday 1).
	from := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	next, err := scanschedule.NextRun(scanschedule.FrequencyWeekly, scanschedule.TimeConfig{DayOfWeek: 1, Hour: 9, Minute: 0}, from, "UTC")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, next.Weekday())
	assert.True(t, next.After(from))
}

func TestNextRun_Monthly_ClampsToLastDay(t *testing.T) {
	// February (non-leap 2026) has 28 days; dayOfMonth 31 clamps to 28.
	from := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	next, err := scanschedule.NextRun(scanschedule.FrequencyMonthly, scanschedule.TimeConfig{DayOfMonth: 31, Hour: 0, Minute: 0}, from, "UTC")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), next)

	after := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	nextFeb, err := scanschedule.NextRun(scanschedule.FrequencyMonthly, scanschedule.TimeConfig{DayOfMonth: 31, Hour: 0, Minute: 0}, after, "UTC")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), nextFeb)
}

func TestNextRun_Cron(t *testing.T) {
	from := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	next, err := scanschedule.NextRun(scanschedule.FrequencyCron, scanschedule.TimeConfig{CronExpr: "0 */2 * * *"}, from, "UTC")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC), next)
}

func TestNextRun_RejectsUnknownFrequency(t *testing.T) {
	_, err := scanschedule.NextRun(scanschedule.Frequency("quarterly"), scanschedule.TimeConfig{}, time.Now(), "UTC")
	assert.Error(t, err)
}

func TestNextRun_RejectsBadTimezone(t *testing.T) {
	_, err := scanschedule.NextRun(scanschedule.FrequencyDaily, scanschedule.TimeConfig{}, time.Now(), "Not/A_Zone")
	assert.Error(t, err)
}
