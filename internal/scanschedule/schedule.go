// Package scanschedule implements the Schedule Coordinator: lock-guarded,
// tick-driven dispatch of recurring scans (spec §4.6).
package scanschedule

import (
	"time"

	"github.com/arc-self/apps/cookie-scan-core/internal/cookiemodel"
)

// Frequency selects how nextRun is computed (spec §4.6).
type Frequency string

const (
	FrequencyHourly  Frequency = "hourly"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyCron    Frequency = "cron"
)

// TimeConfig holds the fields nextRun needs, depending on Frequency. Not all
// fields apply to every frequency; each field's comment names the
// frequencies that use it.
type TimeConfig struct {
	Minute     int    // Hourly, Daily, Weekly, Monthly
	Hour       int    // Daily, Weekly, Monthly
	DayOfWeek  int    // Weekly: 0=Sunday .. 6=Saturday
	DayOfMonth int    // Monthly: 1..31, clamped to month length
	CronExpr   string // Cron: standard 5-field expression
}

// ExecutionStatus is the outcome of one ScheduleExecution (spec §4.6, §7).
type ExecutionStatus string

const (
	StatusSucceeded ExecutionStatus = "Succeeded"
	StatusFailed    ExecutionStatus = "Failed"
	StatusSkipped   ExecutionStatus = "Skipped"
)

// Schedule is a recurring scan definition (spec §3 Schedule, §4.6).
type Schedule struct {
	ID         string
	Domain     string
	ScanType   cookiemodel.ScanMode
	Frequency  Frequency
	TimeConfig TimeConfig
	Timezone   string // defaults to UTC
	Enabled    bool
	NextRun    time.Time
	LastRun    time.Time
	LastStatus ExecutionStatus
}

// Execution is one ScheduleExecution record (spec §4.6, §6).
type Execution struct {
	ScheduleID string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     ExecutionStatus
	ScanID     string
	Error      string
}
