package scanner

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/arc-self/apps/cookie-scan-core/internal/browser"
	"github.com/arc-self/apps/cookie-scan-core/internal/classify"
)

// DiscoverLinks opens the landing page once, extracts every <a href>,
// resolves it against base, keeps only same-registrable-origin URLs, and
// deduplicates while preserving insertion order (spec §4.3 deep-scan URL
// discovery).
func DiscoverLinks(ctx context.Context, inst *browser.Instance, base *url.URL, timeoutMs int) ([]string, error) {
	pageCtx, cancel := inst.NewPageContext(time.Duration(timeoutMs) * time.Millisecond)
	defer cancel()

	if err := chromedp.Run(pageCtx, chromedp.Navigate(base.String())); err != nil {
		return nil, err
	}

	var rawHrefs []string
	if err := chromedp.Run(pageCtx, chromedp.Evaluate(
		`Array.from(document.querySelectorAll('a[href]')).map(a => a.getAttribute('href'))`,
		&rawHrefs,
	)); err != nil {
		return nil, err
	}

	baseRegistrable := classify.RegistrableDomain(base.Hostname())

	seen := make(map[string]bool)
	var out []string
	for _, href := range rawHrefs {
		resolved, err := resolveHref(base, href)
		if err != nil {
			continue
		}
		if classify.RegistrableDomain(resolved.Hostname()) != baseRegistrable {
			continue
		}
		abs := resolved.String()
		if seen[abs] {
			continue
		}
		seen[abs] = true
		out = append(out, abs)
	}
	return out, nil
}

func resolveHref(base *url.URL, href string) (*url.URL, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return nil, err
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil, errNotHTTP
	}
	return resolved, nil
}

var errNotHTTP = errors.New("resolved href is not http(s)")
