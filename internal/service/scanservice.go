// Package service wires the scan core's building blocks (scanner,
// enterprise scanner, schedule coordinator) into the operations an
// embedding caller actually invokes.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arc-self/apps/cookie-scan-core/internal/browser"
	"github.com/arc-self/apps/cookie-scan-core/internal/cookiemodel"
	"github.com/arc-self/apps/cookie-scan-core/internal/enterprise"
	"github.com/arc-self/apps/cookie-scan-core/internal/scanner"
)

// ScanService starts scans and keeps their results addressable by ID for
// the lifetime of the process. A scan's ScanResult is only ever written
// once, by the goroutine that ran it, so reads never race with the write.
type ScanService struct {
	logger     *zap.Logger
	quick      *scanner.Scanner
	enterprise *enterprise.Scanner
	visitOpts  browser.VisitOptions

	mu      sync.RWMutex
	results map[string]cookiemodel.ScanResult
	pending map[string]bool
}

// NewScanService builds a ScanService around already-constructed scanners.
func NewScanService(logger *zap.Logger, quick *scanner.Scanner, ent *enterprise.Scanner, visitOpts browser.VisitOptions) *ScanService {
	return &ScanService{
		logger:     logger,
		quick:      quick,
		enterprise: ent,
		visitOpts:  visitOpts,
		results:    make(map[string]cookiemodel.ScanResult),
		pending:    make(map[string]bool),
	}
}

// StartScan validates the request, reserves a scan ID, and runs the scan on
// a background goroutine: the record is created and async work kicked off
// before this call returns.
func (s *ScanService) StartScan(ctx context.Context, raw scanner.RawRequest) (string, error) {
	req, err := scanner.ParseRequest(raw)
	if err != nil {
		return "", err
	}

	scanID := scanner.NewScanID(req.Domain.String(), time.Now())
	s.mu.Lock()
	s.pending[scanID] = true
	s.mu.Unlock()

	go s.runAsync(scanID, req)
	return scanID, nil
}

func (s *ScanService) runAsync(scanID string, req scanner.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(req.TimeoutMs)*time.Millisecond*50)
	defer cancel()

	var (
		result cookiemodel.ScanResult
		err    error
	)
	switch req.Mode {
	case cookiemodel.ModeEnterprise:
		result, err = s.enterprise.EnterpriseDeepScan(ctx, req, s.visitOpts, nil)
	case cookiemodel.ModeDeep:
		result, err = s.quick.DeepScan(ctx, req, s.visitOpts, scanner.NoopSink)
	default:
		result, err = s.quick.QuickScan(ctx, req, s.visitOpts, scanner.NoopSink)
	}

	if err != nil && s.logger != nil {
		s.logger.Error("scan failed", zap.String("scanId", scanID), zap.Error(err))
	}
	result.ScanID = scanID

	s.mu.Lock()
	delete(s.pending, scanID)
	s.results[scanID] = result
	s.mu.Unlock()
}

// RunSync runs a scan to completion and returns its result directly; the
// Schedule Coordinator's Runner needs this blocking shape rather than the
// fire-and-forget one StartScan exposes.
func (s *ScanService) RunSync(ctx context.Context, raw scanner.RawRequest) (cookiemodel.ScanResult, error) {
	req, err := scanner.ParseRequest(raw)
	if err != nil {
		return cookiemodel.ScanResult{}, err
	}
	switch req.Mode {
	case cookiemodel.ModeEnterprise:
		return s.enterprise.EnterpriseDeepScan(ctx, req, s.visitOpts, nil)
	case cookiemodel.ModeDeep:
		return s.quick.DeepScan(ctx, req, s.visitOpts, scanner.NoopSink)
	default:
		return s.quick.QuickScan(ctx, req, s.visitOpts, scanner.NoopSink)
	}
}

// ErrScanNotFound is returned by GetScan for an unknown or still-running ID.
var ErrScanNotFound = fmt.Errorf("scan not found")

// GetScan returns a completed scan's result. It reports not-found both for
// unknown IDs and for scans still in flight, since callers can't act on a
// partial result either way; they should poll again.
func (s *ScanService) GetScan(scanID string) (cookiemodel.ScanResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if result, ok := s.results[scanID]; ok {
		return result, nil
	}
	if s.pending[scanID] {
		return cookiemodel.ScanResult{}, fmt.Errorf("scan %s still running: %w", scanID, ErrScanNotFound)
	}
	return cookiemodel.ScanResult{}, ErrScanNotFound
}

// ListScans returns every scan result known to this process, newest first
// is not tracked (no ordering guarantee) since this is an in-memory cache,
// not the system of record.
func (s *ScanService) ListScans() []cookiemodel.ScanResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]cookiemodel.ScanResult, 0, len(s.results))
	for _, r := range s.results {
		out = append(out, r)
	}
	return out
}
