// Package browser manages headless Chrome instances for the Page Visitor
// and Browser Pool (spec §4.2, §4.4), built on chromedp the same way
// cookie-scanner's extractCookies launched a single browser per request.
package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

// LaunchOptions configures one allocator (spec §4.4's per-browser settings).
type LaunchOptions struct {
	Headless  bool
	UserAgent string
}

// DefaultLaunchOptions mirrors the flags cookie-scanner always passed:
// headless, sandboxless (for containerized runners), and a realistic
// desktop user agent to avoid trivial bot-detection short-circuits.
func DefaultLaunchOptions() LaunchOptions {
	return LaunchOptions{
		Headless:  true,
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

// Instance is one launched Chrome process, allocator-scoped, able to host
// several pages (spec §4.4: K pages per browser).
type Instance struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	browserCtx  context.Context
	cancelBrow  context.CancelFunc
}

// Launch starts a new headless Chrome instance. Close must be called to
// release the underlying OS process.
func Launch(ctx context.Context, opts LaunchOptions) (*Instance, error) {
	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(opts.UserAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, execOpts...)
	browserCtx, cancelBrow := chromedp.NewContext(allocCtx)

	// Force the browser process to actually start so a bad binary/path fails
	// at Launch() rather than on the first page visit.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrow()
		cancelAlloc()
		return nil, err
	}

	return &Instance{
		allocCtx:    allocCtx,
		cancelAlloc: cancelAlloc,
		browserCtx:  browserCtx,
		cancelBrow:  cancelBrow,
	}, nil
}

// NewPageContext derives a fresh tab context scoped to this browser,
// independently cancellable per page visit (spec §4.4: pages within a
// browser are reused/recycled without restarting the browser process).
func (i *Instance) NewPageContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	pageCtx, cancelPage := chromedp.NewContext(i.browserCtx)
	pageCtx, cancelTimeout := context.WithTimeout(pageCtx, timeout)
	return pageCtx, func() {
		cancelTimeout()
		cancelPage()
	}
}

// Close tears down the browser process and its allocator.
func (i *Instance) Close() {
	i.cancelBrow()
	i.cancelAlloc()
}
