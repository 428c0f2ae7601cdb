package scanschedule

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// tickSummarySubject is where a completed coordinator tick's outcome is
// published for observability.
const tickSummarySubject = "SYSTEM_EVENTS.cron.schedule_tick_completed"

// externalFireSubject is what StartQueueConsumer listens on: an external
// clock (e.g. notification-service's own cron publisher) fires this subject
// to trigger a tick, rather than each scan-core instance running its own
// timer and racing on the same schedule locks.
const externalFireSubject = "SYSTEM_EVENTS.cron.schedule_fire"

// tickPayload is the JSON envelope published for each coordinator tick.
type tickPayload struct {
	Event          string `json:"event"`
	Timestamp      string `json:"timestamp"`
	DueCount       int    `json:"dueCount"`
	SucceededCount int    `json:"succeededCount"`
	FailedCount    int    `json:"failedCount"`
	SkippedCount   int    `json:"skippedCount"`
}

// CronDriver wraps robfig/cron to call Coordinator.Tick on a fixed interval
// and optionally publish a tick summary to NATS, mirroring the notification
// service's own cron-driven event publisher.
type CronDriver struct {
	cron        *cron.Cron
	coordinator *Coordinator
	nc          *nats.Conn
	logger      *zap.Logger
}

// NewCronDriver builds a driver; nc may be nil to disable tick publication.
func NewCronDriver(coordinator *Coordinator, nc *nats.Conn, logger *zap.Logger) *CronDriver {
	return &CronDriver{
		cron:        cron.New(cron.WithSeconds()),
		coordinator: coordinator,
		nc:          nc,
		logger:      logger,
	}
}

// Start registers the tick job at the given standard-5-field-plus-seconds
// cron spec (e.g. "*/30 * * * * *" for every 30s) and starts the scheduler.
func (d *CronDriver) Start(spec string) error {
	_, err := d.cron.AddFunc(spec, d.runTick)
	if err != nil {
		return err
	}
	d.cron.Start()
	if d.logger != nil {
		d.logger.Info("schedule coordinator cron driver started", zap.String("spec", spec))
	}
	return nil
}

// Stop gracefully drains in-flight ticks before returning.
func (d *CronDriver) Stop() {
	ctx := d.cron.Stop()
	<-ctx.Done()
}

func (d *CronDriver) runTick() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	execs, err := d.coordinator.Tick(ctx)
	if err != nil {
		if d.logger != nil {
			d.logger.Error("schedule coordinator tick failed", zap.Error(err))
		}
		return
	}

	summary := tickPayload{
		Event:     "cron.schedule_tick",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DueCount:  len(execs),
	}
	for _, e := range execs {
		switch e.Status {
		case StatusSucceeded:
			summary.SucceededCount++
		case StatusFailed:
			summary.FailedCount++
		case StatusSkipped:
			summary.SkippedCount++
		}
	}

	if d.nc == nil {
		return
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := d.nc.Publish(tickSummarySubject, data); err != nil && d.logger != nil {
		d.logger.Error("failed to publish schedule tick summary", zap.Error(err))
	}
}

// StartQueueConsumer is an alternative entry point to a local cron loop: any
// number of scan-core instances subscribe to externalFireSubject under the
// same queue group, and NATS delivers each external tick signal to exactly one
// of them. This lets an operator drive ticks from a single external clock
// (e.g. notification-service's own cron) instead of running N independent
// timers that race on the same locks.
func StartQueueConsumer(nc *nats.Conn, queueGroup string, coordinator *Coordinator, logger *zap.Logger) (*nats.Subscription, error) {
	return nc.QueueSubscribe(externalFireSubject, queueGroup, func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := coordinator.Tick(ctx); err != nil && logger != nil {
			logger.Error("queue-driven schedule tick failed", zap.Error(err))
		}
	})
}
