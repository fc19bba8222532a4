package discogs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserResolver follows client-side redirects with a headless Chrome.
type BrowserResolver struct {
	opts    []chromedp.ExecAllocatorOption
	timeout time.Duration
	logger  *slog.Logger
}

var _ RedirectResolver = (*BrowserResolver)(nil)

// NewBrowserResolver creates a BrowserResolver. An empty chromeBin is looked
// up on the host.
func NewBrowserResolver(chromeBin, userAgent string, timeout time.Duration, logger *slog.Logger) *BrowserResolver {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	return &BrowserResolver{opts: opts, timeout: timeout, logger: logger}
}

// ResolveURL loads url and returns the location the browser ends up on.
func (b *BrowserResolver) ResolveURL(ctx context.Context, url string) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, b.opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, b.timeout)
	defer cancelTimeout()

	var final string
	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.Location(&final),
	); err != nil {
		return "", fmt.Errorf("discogs: browser navigate %s: %w", url, err)
	}

	b.logger.DebugContext(ctx, "resolved redirect",
		slog.String("from", url),
		slog.String("to", final),
	)
	return final, nil
}

func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	for _, name := range []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	for _, p := range []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
