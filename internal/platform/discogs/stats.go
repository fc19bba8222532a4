package discogs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

// ErrStatsPending is returned when a release page was served before its price
// statistics were rendered.
var ErrStatsPending = errors.New("discogs: release stats not rendered")

// RedirectResolver returns the URL a page finally lands on after client-side
// redirects.
type RedirectResolver interface {
	ResolveURL(ctx context.Context, url string) (string, error)
}

// StatsScraper reads the historical sale prices from release pages.
type StatsScraper struct {
	webURL     string
	userAgent  string
	httpClient *http.Client
	resolver   RedirectResolver
	logger     *slog.Logger
}

var _ domain.StatsFetcher = (*StatsScraper)(nil)

// NewStatsScraper creates a StatsScraper. resolver may be nil, in which case
// unrendered statistics are reported as ErrStatsPending.
func NewStatsScraper(webURL, userAgent string, timeout time.Duration, resolver RedirectResolver, logger *slog.Logger) *StatsScraper {
	if webURL == "" {
		webURL = DefaultWebURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &StatsScraper{
		webURL:     strings.TrimRight(webURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		resolver:   resolver,
		logger:     logger,
	}
}

// Stats returns the minimum, median and maximum sale price of a release.
// An empty url selects the canonical release page. When the page shows "--"
// the redirected URL is resolved once and fetched again.
func (s *StatsScraper) Stats(ctx context.Context, releaseID int64, url string) (domain.Stats, error) {
	if url == "" {
		url = releaseURL(s.webURL, releaseID)
	}

	stats, err := s.fetch(ctx, url)
	if !errors.Is(err, ErrStatsPending) {
		return stats, err
	}
	if s.resolver == nil {
		return domain.Stats{}, fmt.Errorf("discogs: stats of %d: %w", releaseID, err)
	}

	resolved, err := s.resolver.ResolveURL(ctx, url)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("discogs: resolve %s: %w", url, err)
	}
	s.logger.DebugContext(ctx, "retrying stats on redirected url",
		slog.Int64("release_id", releaseID),
		slog.String("url", resolved),
	)

	stats, err = s.fetch(ctx, resolved)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("discogs: stats of %d: %w", releaseID, err)
	}
	return stats, nil
}

func (s *StatsScraper) fetch(ctx context.Context, url string) (domain.Stats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("discogs: create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("discogs: get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return domain.Stats{}, fmt.Errorf("discogs: get %s: %w", url, checkHTTPStatus(resp.StatusCode, snippet))
	}
	return parseStats(resp.Body)
}

// parseStats reads the unclassed spans of the release-stats section, which
// hold the rating followed by the lowest, median and highest sale price.
func parseStats(r io.Reader) (domain.Stats, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("discogs: parse html: %w", err)
	}

	section := findFirst(doc, func(n *html.Node) bool {
		id, _ := attr(n, "id")
		return n.Data == "section" && id == "release-stats"
	})
	if section == nil {
		return domain.Stats{}, fmt.Errorf("discogs: release-stats section missing")
	}

	spans := findAll(section, func(n *html.Node) bool {
		class, _ := attr(n, "class")
		return n.Data == "span" && strings.TrimSpace(class) == ""
	})
	if len(spans) < 2 {
		return domain.Stats{}, fmt.Errorf("discogs: release-stats has %d values", len(spans))
	}

	switch firstText(spans[1]) {
	case "Never":
		return domain.NeverSold(), nil
	case "--":
		return domain.Stats{}, ErrStatsPending
	}

	if len(spans) < 4 {
		return domain.Stats{}, fmt.Errorf("discogs: release-stats has %d values", len(spans))
	}
	var prices [3]domain.Price
	for i := range prices {
		p, err := domain.ParsePrice(firstText(spans[i+1]))
		if err != nil {
			return domain.Stats{}, fmt.Errorf("discogs: release-stats value %d: %w", i+1, err)
		}
		prices[i] = p
	}
	return domain.NewStats(prices[0], prices[1], prices[2]), nil
}
