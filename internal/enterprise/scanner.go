package enterprise

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arc-self/apps/cookie-scan-core/internal/browser"
	"github.com/arc-self/apps/cookie-scan-core/internal/classify"
	"github.com/arc-self/apps/cookie-scan-core/internal/cookiemodel"
	"github.com/arc-self/apps/cookie-scan-core/internal/scanner"
	"github.com/arc-self/apps/cookie-scan-core/internal/telemetry"
)

// DefaultCheckpointInterval is how many completed pages elapse between
// checkpoint writes (spec §4.5).
const DefaultCheckpointInterval = 100

// Scanner is the Enterprise Scanner: chunked processing against a Browser
// Pool, with optional checkpointing and adaptive concurrency (spec §4.5).
type Scanner struct {
	logger             *zap.Logger
	classifier         *classify.Classifier
	checkpointRoot     string
	checkpointInterval int
	adaptive           bool
	instruments        *telemetry.ScanInstruments
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithCheckpointRoot sets the directory checkpoints are written under.
func WithCheckpointRoot(root string) Option {
	return func(s *Scanner) { s.checkpointRoot = root }
}

// WithCheckpointInterval overrides DefaultCheckpointInterval.
func WithCheckpointInterval(n int) Option {
	return func(s *Scanner) { s.checkpointInterval = n }
}

// WithAdaptiveConcurrency enables the optional throughput-based concurrency
// adjustment described in spec §4.5.
func WithAdaptiveConcurrency() Option {
	return func(s *Scanner) { s.adaptive = true }
}

// WithInstruments attaches OpenTelemetry counters/histograms recorded at
// each chunk boundary.
func WithInstruments(instruments *telemetry.ScanInstruments) Option {
	return func(s *Scanner) { s.instruments = instruments }
}

// New builds an enterprise Scanner.
func New(logger *zap.Logger, overrides *classify.DomainOverrides, opts ...Option) *Scanner {
	s := &Scanner{
		logger:             logger,
		classifier:         classify.NewClassifier(overrides),
		checkpointRoot:     "./scan_checkpoints",
		checkpointInterval: DefaultCheckpointInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnterpriseDeepScan implements spec §4.5's enterpriseDeepScan contract.
func (s *Scanner) EnterpriseDeepScan(ctx context.Context, req scanner.Request, visitOpts browser.VisitOptions, metrics MetricsSink) (cookiemodel.ScanResult, error) {
	started := time.Now()

	scanID, urls, agg, completedCount, priorVisited, err := s.resolveInput(ctx, req, started)
	if err != nil {
		return cookiemodel.ScanResult{}, err
	}

	pool := browser.NewPool(browser.LaunchOptions{Headless: true, UserAgent: req.UserAgent}, s.logger)
	if err := pool.Start(ctx, req.BrowserPoolSize, req.PagesPerBrowser); err != nil {
		return cookiemodel.ScanResult{}, fmt.Errorf("enterprise scanner: start pool: %w", err)
	}
	defer pool.Stop()

	limiter := NewAdaptiveLimiter(req.BrowserPoolSize*req.PagesPerBrowser, req.BrowserPoolSize, req.BrowserPoolSize*req.PagesPerBrowser)

	var pagesFailed []cookiemodel.FailedPage
	pagesVisited := append([]string(nil), priorVisited...)
	var mu sync.Mutex
	scanned := completedCount
	successful := completedCount
	failed := 0
	errorsCount := 0
	priorRate := 0.0
	cookiesRecorded := len(agg.Cookies())

	chunkSize := req.ChunkSize
	for chunkStart := 0; chunkStart < len(urls); chunkStart += chunkSize {
		if ctx.Err() != nil {
			break
		}
		chunkEnd := chunkStart + chunkSize
		if chunkEnd > len(urls) {
			chunkEnd = len(urls)
		}
		chunkURLs := urls[chunkStart:chunkEnd]

		chunkStarted := time.Now()
		results := make([]cookiemodel.PageResult, len(chunkURLs))
		var wg sync.WaitGroup

		for i, u := range chunkURLs {
			wg.Add(1)
			go func(i int, u string, globalIndex int) {
				defer wg.Done()
				if err := limiter.Acquire(ctx); err != nil {
					results[i] = cookiemodel.PageResult{URL: u, Success: false, Error: err.Error()}
					return
				}
				defer limiter.Release()

				inst, release, err := pool.Acquire(ctx, globalIndex)
				if err != nil {
					results[i] = cookiemodel.PageResult{URL: u, Success: false, Error: err.Error()}
					return
				}
				defer release()

				results[i] = browser.Visit(ctx, inst, u, visitOpts)
			}(i, u, chunkStart+i)
		}
		wg.Wait()

		chunkSuccessful, chunkFailed := 0, 0
		mu.Lock()
		for _, r := range results {
			agg.Feed(r)
			scanned++
			if r.Success {
				successful++
				chunkSuccessful++
				pagesVisited = append(pagesVisited, r.URL)
			} else {
				failed++
				chunkFailed++
				errorsCount++
				pagesFailed = append(pagesFailed, cookiemodel.FailedPage{URL: r.URL, Error: r.Error})
			}
		}
		mu.Unlock()

		chunkElapsed := time.Since(chunkStarted).Seconds()
		cookiesNow := len(agg.Cookies())
		s.instruments.RecordBatch(ctx, chunkSuccessful, chunkFailed, cookiesNow-cookiesRecorded, chunkElapsed)
		cookiesRecorded = cookiesNow
		currentRate := float64(len(chunkURLs)) / maxFloat(chunkElapsed, 0.001)
		if s.adaptive {
			limiter.Adjust(priorRate, currentRate)
		}
		priorRate = currentRate

		elapsed := time.Since(started).Seconds()
		remaining := len(urls) - scanned
		estRemaining := 0.0
		if currentRate > 0 {
			estRemaining = float64(remaining) / currentRate
		}

		if metrics != nil {
			metrics.Publish(Metrics{
				TotalPages:         len(urls),
				Scanned:            scanned,
				Successful:         successful,
				Failed:             failed,
				CookiesFound:       len(agg.Cookies()),
				ElapsedSeconds:     elapsed,
				PagesPerSecond:     currentRate,
				EstimatedRemaining: estRemaining,
				ActiveBrowsers:     pool.HealthyCount(),
				CurrentConcurrency: limiter.Limit(),
				ErrorsCount:        errorsCount,
			})
		}

		// Checkpoint granularity tracks chunk boundaries, not individual pages:
		// a checkpoint fires once a chunk crosses the next checkpointInterval
		// multiple of completed pages.
		if req.EnablePersistence && scanned > 0 && scanned%s.checkpointInterval < len(chunkURLs) {
			s.writeCheckpoint(scanID, req.Domain.Hostname(), urls, chunkEnd, agg)
		}
	}

	classified := s.classifier.ClassifyAll(agg.Cookies(), req.Domain.Hostname())

	return cookiemodel.ScanResult{
		ScanID:          scanID,
		Domain:          req.Domain.Hostname(),
		Mode:            cookiemodel.ModeEnterprise,
		Cookies:         classified,
		Storage:         agg.Storage(),
		PagesScanned:    successful,
		PagesVisited:    pagesVisited,
		PagesFailed:     pagesFailed,
		Cancelled:       ctx.Err() != nil,
		StartedAt:       started.UTC().Format(time.RFC3339),
		CompletedAt:     time.Now().UTC().Format(time.RFC3339),
		DurationSeconds: time.Since(started).Seconds(),
	}, nil
}

// resolveInput builds the URL worklist and seed aggregator, handling
// resumption from an existing checkpoint (spec §4.5 Resumption).
func (s *Scanner) resolveInput(ctx context.Context, req scanner.Request, now time.Time) (string, []string, *cookiemodel.Aggregator, int, []string, error) {
	agg := cookiemodel.NewAggregator()

	if req.ResumeScanID != "" && Exists(s.checkpointRoot, req.ResumeScanID) {
		cp, err := Load(s.checkpointRoot, req.ResumeScanID)
		if err != nil {
			return "", nil, nil, 0, nil, fmt.Errorf("enterprise scanner: load checkpoint: %w", err)
		}
		for _, c := range cp.Cookies {
			agg.Feed(cookiemodel.PageResult{
				URL:     firstOrEmpty(c.FoundOnPages),
				Success: true,
				Cookies: []cookiemodel.CookieObservation{{
					Name: c.Name, Domain: c.Domain, Path: c.Path, Expires: c.Expires,
					HTTPOnly: c.HTTPOnly, Secure: c.Secure, SameSite: c.SameSite, HashedValue: c.HashedValue, Size: c.Size,
				}},
			})
		}
		// Completed URLs are injected as empty successful stubs to preserve
		// counts without re-visiting them (spec §4.5 Resumption).
		for _, u := range cp.CompletedUrls {
			agg.Feed(cookiemodel.PageResult{URL: u, Success: true})
		}
		return cp.ScanID, cp.PendingUrls, agg, len(cp.CompletedUrls), append([]string(nil), cp.CompletedUrls...), nil
	}

	urls := []string{req.Domain.String()}
	for _, p := range req.CustomPages {
		urls = append(urls, p)
	}
	if len(urls) < req.MaxPages {
		inst, err := browser.Launch(ctx, browser.DefaultLaunchOptions())
		if err == nil {
			discovered, discErr := scanner.DiscoverLinks(ctx, inst, req.Domain, req.TimeoutMs)
			inst.Close()
			if discErr == nil {
				seen := make(map[string]bool, len(urls))
				for _, u := range urls {
					seen[u] = true
				}
				for _, u := range discovered {
					if len(urls) >= req.MaxPages {
						break
					}
					if seen[u] {
						continue
					}
					seen[u] = true
					urls = append(urls, u)
				}
			}
		}
	}
	if len(urls) > req.MaxPages {
		urls = urls[:req.MaxPages]
	}

	return scanner.NewScanID(req.Domain.String(), now), urls, agg, 0, nil, nil
}

func (s *Scanner) writeCheckpoint(scanID, domain string, allURLs []string, completedThrough int, agg *cookiemodel.Aggregator) {
	cp := Checkpoint{
		ScanID:        scanID,
		Domain:        domain,
		TotalUrls:     len(allURLs),
		CompletedUrls: append([]string(nil), allURLs[:completedThrough]...),
		PendingUrls:   append([]string(nil), allURLs[completedThrough:]...),
		Cookies:       agg.Cookies(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := Write(s.checkpointRoot, cp); err != nil && s.logger != nil {
		s.logger.Warn("checkpoint write failed", zap.String("scanId", scanID), zap.Error(err))
	}
}

func firstOrEmpty(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
