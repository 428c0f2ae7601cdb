package scanschedule

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// NextRun is the pure function described in spec §4.6: given a frequency,
// its time configuration, a reference instant, and a timezone, it returns
// the next timestamp strictly after from. It has no side effects and does
// not read the clock itself, so schedule advancement is fully testable.
func NextRun(freq Frequency, cfg TimeConfig, from time.Time, timezone string) (time.Time, error) {
	loc := time.UTC
	if timezone != "" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return time.Time{}, fmt.Errorf("nextRun: bad timezone %q: %w", timezone, err)
		}
		loc = l
	}
	from = from.In(loc)

	switch freq {
	case FrequencyHourly:
		return nextHourly(cfg, from, loc), nil
	case FrequencyDaily:
		return nextDaily(cfg, from, loc), nil
	case FrequencyWeekly:
		return nextWeekly(cfg, from, loc), nil
	case FrequencyMonthly:
		return nextMonthly(cfg, from, loc), nil
	case FrequencyCron:
		return nextCron(cfg, from)
	default:
		return time.Time{}, fmt.Errorf("nextRun: unknown frequency %q", freq)
	}
}

func nextHourly(cfg TimeConfig, from time.Time, loc *time.Location) time.Time {
	candidate := time.Date(from.Year(), from.Month(), from.Day(), from.Hour(), cfg.Minute, 0, 0, loc)
	if !candidate.After(from) {
		candidate = candidate.Add(time.Hour)
	}
	return candidate
}

func nextDaily(cfg TimeConfig, from time.Time, loc *time.Location) time.Time {
	candidate := time.Date(from.Year(), from.Month(), from.Day(), cfg.Hour, cfg.Minute, 0, 0, loc)
	if !candidate.After(from) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

func nextWeekly(cfg TimeConfig, from time.Time, loc *time.Location) time.Time {
	candidate := time.Date(from.Year(), from.Month(), from.Day(), cfg.Hour, cfg.Minute, 0, 0, loc)
	daysUntil := (cfg.DayOfWeek - int(candidate.Weekday()) + 7) % 7
	candidate = candidate.AddDate(0, 0, daysUntil)
	if !candidate.After(from) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}

func nextMonthly(cfg TimeConfig, from time.Time, loc *time.Location) time.Time {
	candidate := monthlyCandidate(from.Year(), int(from.Month()), cfg, loc)
	if !candidate.After(from) {
		year, month := from.Year(), int(from.Month())+1
		if month > 12 {
			month = 1
			year++
		}
		candidate = monthlyCandidate(year, month, cfg, loc)
	}
	return candidate
}

// monthlyCandidate clamps dayOfMonth to the target month's actual length
// (spec §4.6: "if dayOfMonth exceeds month length, clamp to last day").
func monthlyCandidate(year, month int, cfg TimeConfig, loc *time.Location) time.Time {
	lastDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, loc).Day()
	day := cfg.DayOfMonth
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, time.Month(month), day, cfg.Hour, cfg.Minute, 0, 0, loc)
}

func nextCron(cfg TimeConfig, from time.Time) (time.Time, error) {
	schedule, err := cron.ParseStandard(cfg.CronExpr)
	if err != nil {
		return time.Time{}, fmt.Errorf("nextRun: bad cron expression %q: %w", cfg.CronExpr, err)
	}
	return schedule.Next(from), nil
}
