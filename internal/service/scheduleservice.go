package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arc-self/apps/cookie-scan-core/internal/cookiemodel"
	"github.com/arc-self/apps/cookie-scan-core/internal/scanner"
	"github.com/arc-self/apps/cookie-scan-core/internal/scanschedule"
)

// ScheduleService exposes schedule creation and listing on top of a
// scanschedule.PGStore, and builds the Runner the Coordinator dispatches
// through — RunSync on the underlying ScanService.
type ScheduleService struct {
	store *scanschedule.PGStore
	scans *ScanService
}

// NewScheduleService wires a ScheduleService.
func NewScheduleService(store *scanschedule.PGStore, scans *ScanService) *ScheduleService {
	return &ScheduleService{store: store, scans: scans}
}

// CreateSchedule validates the time config by computing its first NextRun
// before persisting, so a caller is rejected immediately instead of
// installing a schedule that silently never fires.
func (s *ScheduleService) CreateSchedule(ctx context.Context, domain string, scanType cookiemodel.ScanMode, freq scanschedule.Frequency, cfg scanschedule.TimeConfig, timezone string) (scanschedule.Schedule, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	next, err := scanschedule.NextRun(freq, cfg, time.Now().UTC(), timezone)
	if err != nil {
		return scanschedule.Schedule{}, fmt.Errorf("schedule: %w", err)
	}

	scheduleID, err := uuid.NewV7()
	if err != nil {
		return scanschedule.Schedule{}, fmt.Errorf("schedule: generate id: %w", err)
	}

	sched := scanschedule.Schedule{
		ID:         scheduleID.String(),
		Domain:     domain,
		ScanType:   scanType,
		Frequency:  freq,
		TimeConfig: cfg,
		Timezone:   timezone,
		Enabled:    true,
		NextRun:    next,
	}
	if err := s.store.CreateSchedule(ctx, sched); err != nil {
		return scanschedule.Schedule{}, err
	}
	return sched, nil
}

// ListSchedules returns every known schedule.
func (s *ScheduleService) ListSchedules(ctx context.Context) ([]scanschedule.Schedule, error) {
	return s.store.ListSchedules(ctx)
}

// Runner adapts ScanService.RunSync into a scanschedule.Runner, the same
// shape scanschedule.DefaultRunner offers but bound to this service's
// already-configured scanners and default per-schedule request shape.
func (s *ScheduleService) Runner() scanschedule.Runner {
	return scanschedule.RunnerFunc(func(ctx context.Context, sched scanschedule.Schedule) (string, error) {
		result, err := s.scans.RunSync(ctx, scanner.RawRequest{
			Domain: sched.Domain,
			Mode:   sched.ScanType,
		})
		return result.ScanID, err
	})
}
