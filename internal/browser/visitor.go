package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/arc-self/apps/cookie-scan-core/internal/cookiemodel"
)

// ErrExtraction marks a visitOnce failure that happened after navigation
// already succeeded (spec §7): retrying won't help since the page state
// that caused it is already loaded, so Visit reports it as a partial
// success instead of burning retries on it.
var ErrExtraction = errors.New("extraction")

// VisitOptions configures one Page Visitor run (spec §4.2).
type VisitOptions struct {
	Timeout          time.Duration
	SettleMin        time.Duration
	SettleMax        time.Duration
	ConsentSelectors []string
	MaxRetries       int
}

// DefaultVisitOptions returns the conservative per-page navigation defaults.
func DefaultVisitOptions() VisitOptions {
	return VisitOptions{
		Timeout:    30 * time.Second,
		SettleMin:  1 * time.Second,
		SettleMax:  2 * time.Second,
		MaxRetries: 2,
		ConsentSelectors: []string{
			`button:has-text("Accept")`,
			`button:has-text("Accept All")`,
			`button:has-text("I Agree")`,
			`#onetrust-accept-btn-handler`,
		},
	}
}

// Visit drives one page through navigate -> consent click -> settle ->
// extract -> release, matching the protocol in spec §4.2. It always returns
// a PageResult and reports every failure in it; a cancelled ctx stops any
// further attempt and is recorded as the result's Error.
func Visit(ctx context.Context, inst *Instance, url string, opts VisitOptions) cookiemodel.PageResult {
	started := time.Now()
	result := cookiemodel.PageResult{URL: url}

	var lastErr error
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			result.Error = ctx.Err().Error()
			result.Retries = attempt
			return result
		}

		cookies, storage, err := visitOnce(ctx, inst, url, opts)
		if err == nil {
			result.Success = true
			result.Cookies = cookies
			result.Storage = storage
			result.Retries = attempt
			result.DurationSeconds = time.Since(started).Seconds()
			return result
		}
		if errors.Is(err, ErrExtraction) {
			// Navigation already succeeded; report what was gathered (possibly
			// nothing) rather than retrying a navigation that wasn't the problem.
			result.Success = true
			result.Cookies = cookies
			result.Storage = storage
			result.Error = err.Error()
			result.Retries = attempt
			result.DurationSeconds = time.Since(started).Seconds()
			return result
		}
		lastErr = err
		result.Retries = attempt
	}

	result.Success = false
	result.Error = lastErr.Error()
	result.DurationSeconds = time.Since(started).Seconds()
	return result
}

func visitOnce(ctx context.Context, inst *Instance, url string, opts VisitOptions) ([]cookiemodel.CookieObservation, cookiemodel.StorageSnapshot, error) {
	pageCtx, cancel := inst.NewPageContext(opts.Timeout)
	defer cancel()

	if err := chromedp.Run(pageCtx, chromedp.Navigate(url)); err != nil {
		return nil, cookiemodel.StorageSnapshot{}, fmt.Errorf("navigation: %w", err)
	}

	attemptConsentClick(pageCtx, opts.ConsentSelectors)

	settle := opts.SettleMin
	if opts.SettleMax > settle {
		settle = opts.SettleMax
	}
	_ = chromedp.Run(pageCtx, chromedp.Sleep(settle))

	var rawCookies []*network.Cookie
	err := chromedp.Run(pageCtx, chromedp.ActionFunc(func(c context.Context) error {
		var err error
		rawCookies, err = network.GetCookies().Do(c)
		return err
	}))
	if err != nil {
		return nil, cookiemodel.StorageSnapshot{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	observations := make([]cookiemodel.CookieObservation, 0, len(rawCookies))
	for _, c := range rawCookies {
		expires := cookiemodel.SessionSentinel
		if c.Expires > 0 {
			expires = fmt.Sprintf("%d", int64(c.Expires))
		}
		obs := cookiemodel.CookieObservation{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: sameSiteFrom(c.SameSite),
		}
		obs.HashValue()
		observations = append(observations, obs)
	}

	storage := extractStorage(pageCtx)
	return observations, storage, nil
}

// attemptConsentClick tries each selector in order, spending at most ~1s per
// attempt, and swallows all failures silently (spec §4.2 step 2).
func attemptConsentClick(ctx context.Context, selectors []string) {
	for _, sel := range selectors {
		clickCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
		_ = chromedp.Run(clickCtx, chromedp.Click(sel, chromedp.ByQuery))
		cancel()
	}
}

// extractStorage reads localStorage and sessionStorage, swallowing
// per-storage access errors (spec §4.2 step 5).
func extractStorage(ctx context.Context) cookiemodel.StorageSnapshot {
	snapshot := cookiemodel.StorageSnapshot{
		LocalStorage:   map[string]string{},
		SessionStorage: map[string]string{},
	}

	_ = chromedp.Run(ctx, chromedp.Evaluate(
		`(() => { const o = {}; for (let i = 0; i < localStorage.length; i++) { const k = localStorage.key(i); o[k] = localStorage.getItem(k); } return o; })()`,
		&snapshot.LocalStorage,
	))
	_ = chromedp.Run(ctx, chromedp.Evaluate(
		`(() => { const o = {}; for (let i = 0; i < sessionStorage.length; i++) { const k = sessionStorage.key(i); o[k] = sessionStorage.getItem(k); } return o; })()`,
		&snapshot.SessionStorage,
	))
	return snapshot
}

func sameSiteFrom(raw network.CookieSameSite) cookiemodel.SameSite {
	switch raw {
	case network.CookieSameSiteStrict:
		return cookiemodel.SameSiteStrict
	case network.CookieSameSiteLax:
		return cookiemodel.SameSiteLax
	case network.CookieSameSiteNone:
		return cookiemodel.SameSiteNone
	default:
		return cookiemodel.SameSiteUnspecified
	}
}
