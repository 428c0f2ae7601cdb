// Package scanner implements the Parallel Page Scanner: quickScan and
// deepScan against a single shared browser instance (spec §4.3).
package scanner

import (
	"fmt"
	"net/url"

	"github.com/arc-self/apps/cookie-scan-core/internal/cookiemodel"
)

// Request is a validated ScanRequest (spec §6). Construct via ParseRequest,
// which applies bounds-checking so downstream code never has to.
type Request struct {
	Domain            *url.URL
	Mode              cookiemodel.ScanMode
	MaxPages          int
	Concurrency       int
	BrowserPoolSize   int
	PagesPerBrowser   int
	ChunkSize         int
	CustomPages       []string
	TimeoutMs         int
	AcceptSelector    string
	UserAgent         string
	EnablePersistence bool
	ResumeScanID      string
}

// RawRequest is the wire-level shape before validation.
type RawRequest struct {
	Domain            string
	Mode              cookiemodel.ScanMode
	MaxPages          int
	Concurrency       int
	BrowserPoolSize   int
	PagesPerBrowser   int
	ChunkSize         int
	CustomPages       []string
	TimeoutMs         int
	AcceptSelector    string
	UserAgent         string
	EnablePersistence bool
	ResumeScanID      string
}

// ParseRequest validates a RawRequest per spec §6: domain must be an
// absolute http/https URL; numeric fields out of bounds are rejected with a
// clear error rather than silently clamped.
func ParseRequest(raw RawRequest) (Request, error) {
	parsed, err := url.Parse(raw.Domain)
	if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return Request{}, fmt.Errorf("scan request: domain %q must be an absolute http(s) URL", raw.Domain)
	}

	req := Request{
		Domain:            parsed,
		Mode:              raw.Mode,
		MaxPages:          orDefault(raw.MaxPages, 1),
		Concurrency:       orDefault(raw.Concurrency, 5),
		BrowserPoolSize:   orDefault(raw.BrowserPoolSize, 2),
		PagesPerBrowser:   orDefault(raw.PagesPerBrowser, 5),
		ChunkSize:         orDefault(raw.ChunkSize, 1000),
		CustomPages:       raw.CustomPages,
		TimeoutMs:         orDefault(raw.TimeoutMs, 30000),
		AcceptSelector:    raw.AcceptSelector,
		UserAgent:         raw.UserAgent,
		EnablePersistence: raw.EnablePersistence,
		ResumeScanID:      raw.ResumeScanID,
	}

	if err := checkBounds("maxPages", req.MaxPages, 1, 20000); err != nil {
		return Request{}, err
	}
	if err := checkBounds("concurrency", req.Concurrency, 1, 20); err != nil {
		return Request{}, err
	}
	if err := checkBounds("browserPoolSize", req.BrowserPoolSize, 1, 10); err != nil {
		return Request{}, err
	}
	if err := checkBounds("pagesPerBrowser", req.PagesPerBrowser, 1, 50); err != nil {
		return Request{}, err
	}
	if err := checkBounds("chunkSize", req.ChunkSize, 100, 2000); err != nil {
		return Request{}, err
	}
	if err := checkBounds("timeoutMs", req.TimeoutMs, 5000, 120000); err != nil {
		return Request{}, err
	}

	return req, nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func checkBounds(field string, v, min, max int) error {
	if v < min || v > max {
		return fmt.Errorf("scan request: %s %d out of bounds [%d,%d]", field, v, min, max)
	}
	return nil
}
