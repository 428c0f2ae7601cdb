// Package telemetry bootstraps OpenTelemetry metrics for the scan core and
// exposes the instruments that ScanProgress/EnterpriseMetrics records are
// published through (spec §4.3, §4.5).
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// InitMeterProvider bootstraps the OpenTelemetry MeterProvider with an
// OTLP/gRPC metric exporter targeting the given endpoint (e.g. "otel-collector:4317").
// The caller must defer mp.Shutdown(ctx) to flush pending metrics.
func InitMeterProvider(ctx context.Context, serviceName string, endpoint string) (*sdkmetric.MeterProvider, error) {
	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		)),
	)

	otel.SetMeterProvider(mp)
	return mp, nil
}

// ScanInstruments groups the counters and histogram the scanner and enterprise
// scanner publish to on every batch/chunk boundary.
type ScanInstruments struct {
	PagesScanned  metric.Int64Counter
	PagesFailed   metric.Int64Counter
	CookiesFound  metric.Int64Counter
	BatchDuration metric.Float64Histogram
}

// NewScanInstruments creates the scan core's instrument set on the given
// meter. Safe to call once per process at startup.
func NewScanInstruments(meter metric.Meter) (*ScanInstruments, error) {
	pagesScanned, err := meter.Int64Counter("cookiescan.pages_scanned",
		metric.WithDescription("Pages successfully visited during a scan"))
	if err != nil {
		return nil, err
	}
	pagesFailed, err := meter.Int64Counter("cookiescan.pages_failed",
		metric.WithDescription("Pages that exhausted retries during a scan"))
	if err != nil {
		return nil, err
	}
	cookiesFound, err := meter.Int64Counter("cookiescan.cookies_found",
		metric.WithDescription("Unique cookies aggregated across a scan"))
	if err != nil {
		return nil, err
	}
	batchDuration, err := meter.Float64Histogram("cookiescan.batch_duration_seconds",
		metric.WithDescription("Wall-clock duration of one scan batch or chunk"))
	if err != nil {
		return nil, err
	}

	return &ScanInstruments{
		PagesScanned:  pagesScanned,
		PagesFailed:   pagesFailed,
		CookiesFound:  cookiesFound,
		BatchDuration: batchDuration,
	}, nil
}

// RecordBatch records the outcome of one scan batch/chunk; cookies is the
// number of unique cookies first aggregated in that batch.
func (si *ScanInstruments) RecordBatch(ctx context.Context, succeeded, failed, cookies int, durationSeconds float64) {
	if si == nil {
		return
	}
	si.PagesScanned.Add(ctx, int64(succeeded))
	si.PagesFailed.Add(ctx, int64(failed))
	si.CookiesFound.Add(ctx, int64(cookies))
	si.BatchDuration.Record(ctx, durationSeconds)
}
