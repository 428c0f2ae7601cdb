package scanner

import (
	"context"
	"crypto/md5"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arc-self/apps/cookie-scan-core/internal/browser"
	"github.com/arc-self/apps/cookie-scan-core/internal/classify"
	"github.com/arc-self/apps/cookie-scan-core/internal/cookiemodel"
	"github.com/arc-self/apps/cookie-scan-core/internal/telemetry"
)

// Scanner is the Parallel Page Scanner: one browser instance, one
// maxConcurrent-sized semaphore, batched execution (spec §4.3).
type Scanner struct {
	logger      *zap.Logger
	classifier  *classify.Classifier
	instruments *telemetry.ScanInstruments
}

// New builds a Scanner. overrides and instruments may both be nil.
func New(logger *zap.Logger, overrides *classify.DomainOverrides, instruments *telemetry.ScanInstruments) *Scanner {
	return &Scanner{logger: logger, classifier: classify.NewClassifier(overrides), instruments: instruments}
}

// NewScanID builds the scan_<unixSeconds>_<8-hex of md5(domain)> identifier
// (spec §4.5), reused here too since quick/deep scans want the same
// correlatable shape.
func NewScanID(domain string, now time.Time) string {
	sum := md5.Sum([]byte(domain))
	return fmt.Sprintf("scan_%d_%x", now.Unix(), sum[:4])
}

// QuickScan visits only the landing page (and any customPages) — no link
// discovery (spec §4.3 quickScan contract).
func (s *Scanner) QuickScan(ctx context.Context, req Request, visitOpts browser.VisitOptions, progress Sink) (cookiemodel.ScanResult, error) {
	urls := s.seedURLs(req)
	return s.run(ctx, req, urls, visitOpts, progress, false)
}

// DeepScan additionally discovers same-origin links from the landing page
// up to maxPages (spec §4.3 deep-scan URL discovery).
func (s *Scanner) DeepScan(ctx context.Context, req Request, visitOpts browser.VisitOptions, progress Sink) (cookiemodel.ScanResult, error) {
	urls := s.seedURLs(req)

	if len(urls) < req.MaxPages {
		inst, err := browser.Launch(ctx, browser.DefaultLaunchOptions())
		if err == nil {
			discovered, discErr := DiscoverLinks(ctx, inst, req.Domain, req.TimeoutMs)
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
			} else if s.logger != nil {
				s.logger.Warn("deep scan link discovery failed, continuing with seed URLs", zap.Error(discErr))
			}
		}
	}

	if len(urls) > req.MaxPages {
		urls = urls[:req.MaxPages]
	}

	return s.run(ctx, req, urls, visitOpts, progress, false)
}

func (s *Scanner) seedURLs(req Request) []string {
	urls := []string{req.Domain.String()}
	for _, p := range req.CustomPages {
		resolved, err := resolveHref(req.Domain, p)
		if err != nil {
			continue
		}
		urls = append(urls, resolved.String())
	}
	return urls
}

// run shares the batched-semaphore execution loop between quick and deep
// scans against a single browser instance (spec §4.3 Topology).
func (s *Scanner) run(ctx context.Context, req Request, urls []string, visitOpts browser.VisitOptions, progress Sink, resume bool) (cookiemodel.ScanResult, error) {
	started := time.Now()
	scanID := NewScanID(req.Domain.String(), started)

	inst, err := browser.Launch(ctx, browser.LaunchOptions{Headless: true, UserAgent: req.UserAgent})
	if err != nil {
		return cookiemodel.ScanResult{}, fmt.Errorf("scanner: launch browser: %w", err)
	}
	defer inst.Close()

	sem := make(chan struct{}, req.Concurrency)
	agg := cookiemodel.NewAggregator()
	var pagesFailed []FailedPage
	var pagesVisited []string
	var mu sync.Mutex

	batchSize := req.Concurrency
	totalBatches := (len(urls) + batchSize - 1) / batchSize
	scannedPages := 0
	succeededPages := 0
	cookiesRecorded := 0
	cancelled := false

	for batch := 0; batch*batchSize < len(urls); batch++ {
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		lo := batch * batchSize
		hi := lo + batchSize
		if hi > len(urls) {
			hi = len(urls)
		}
		batchURLs := urls[lo:hi]

		results := make([]cookiemodel.PageResult, len(batchURLs))
		var wg sync.WaitGroup
		batchStart := time.Now()

		for i, u := range batchURLs {
			wg.Add(1)
			go func(i int, u string) {
				defer wg.Done()
				select {
				case sem <- struct{}{}:
				case <-ctx.Done():
					results[i] = cookiemodel.PageResult{URL: u, Success: false, Error: ctx.Err().Error()}
					return
				}
				defer func() { <-sem }()
				results[i] = browser.Visit(ctx, inst, u, visitOpts)
			}(i, u)
		}
		wg.Wait()

		succeededInBatch, failedInBatch := 0, 0
		mu.Lock()
		for _, r := range results {
			agg.Feed(r)
			if !r.Success {
				pagesFailed = append(pagesFailed, FailedPage{URL: r.URL, Error: r.Error})
				failedInBatch++
			} else {
				pagesVisited = append(pagesVisited, r.URL)
				succeededInBatch++
				succeededPages++
			}
			scannedPages++
		}
		mu.Unlock()

		elapsed := time.Since(started).Seconds()
		batchesRemaining := totalBatches - (batch + 1)
		avgBatchTime := time.Since(batchStart).Seconds()

		cookiesNow := len(agg.Cookies())
		s.instruments.RecordBatch(ctx, succeededInBatch, failedInBatch, cookiesNow-cookiesRecorded, avgBatchTime)
		cookiesRecorded = cookiesNow

		progress.Publish(Progress{
			TotalPages:         len(urls),
			ScannedPages:       scannedPages,
			CurrentBatch:       batch + 1,
			TotalBatches:       totalBatches,
			CookiesFound:       len(agg.Cookies()),
			ElapsedSeconds:     elapsed,
			EstimatedRemaining: avgBatchTime * float64(batchesRemaining),
		})
	}

	classified := s.classifier.ClassifyAll(agg.Cookies(), req.Domain.Hostname())

	result := cookiemodel.ScanResult{
		ScanID:          scanID,
		Domain:          req.Domain.Hostname(),
		Mode:            req.Mode,
		Cookies:         classified,
		Storage:         agg.Storage(),
		PagesScanned:    succeededPages,
		PagesVisited:    pagesVisited,
		PagesFailed:     pagesFailed,
		Cancelled:       cancelled,
		StartedAt:       started.UTC().Format(time.RFC3339),
		CompletedAt:     time.Now().UTC().Format(time.RFC3339),
		DurationSeconds: time.Since(started).Seconds(),
	}
	return result, nil
}

// FailedPage mirrors cookiemodel.FailedPage; kept as a local alias for
// readability at the call sites above.
type FailedPage = cookiemodel.FailedPage
