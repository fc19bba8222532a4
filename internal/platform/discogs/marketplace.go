package discogs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

// DefaultPageSize is the number of offers requested per marketplace page.
const DefaultPageSize = 250

// DefaultUserAgent is sent with marketplace requests.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_11_5) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/50.0.2661.102 Safari/537.36"

// Marketplace fetches the offers of a release from the marketplace listing
// pages, sorted by ascending price.
type Marketplace struct {
	webURL     string
	userAgent  string
	pageSize   int
	httpClient *http.Client
	logger     *slog.Logger
}

var _ domain.PageFetcher = (*Marketplace)(nil)

// NewMarketplace creates a Marketplace. Zero values fall back to the
// defaults.
func NewMarketplace(webURL, userAgent string, pageSize int, timeout time.Duration, logger *slog.Logger) *Marketplace {
	if webURL == "" {
		webURL = DefaultWebURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Marketplace{
		webURL:     strings.TrimRight(webURL, "/"),
		userAgent:  userAgent,
		pageSize:   pageSize,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchPage downloads and parses one offers page. A page holding fewer rows
// than the page size is the last one. Rows marked unavailable count towards
// that size but are not returned.
func (m *Marketplace) FetchPage(ctx context.Context, releaseID int64, page int) (domain.Page, error) {
	params := url.Values{}
	params.Set("sort", "price,asc")
	params.Set("limit", strconv.Itoa(m.pageSize))
	params.Set("ev", "rb")
	params.Set("page", strconv.Itoa(page))
	u := fmt.Sprintf("%s/sell/release/%d?%s", m.webURL, releaseID, params.Encode())

	body, err := m.get(ctx, u)
	if err != nil {
		return domain.Page{}, &domain.TransportError{ReleaseID: releaseID, Page: page, Err: err}
	}
	defer body.Close()

	p, err := parseOffersPage(body, m.pageSize, m.webURL)
	if err != nil {
		return domain.Page{}, &domain.TransportError{ReleaseID: releaseID, Page: page, Err: err}
	}
	for i := range p.Rows {
		if p.Rows[i].ReleaseID == 0 {
			p.Rows[i].ReleaseID = releaseID
		}
	}
	return p, nil
}

func (m *Marketplace) get(ctx context.Context, u string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", m.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, checkHTTPStatus(resp.StatusCode, snippet)
	}
	return resp.Body, nil
}

// parseOffersPage extracts the offer rows of a marketplace page.
func parseOffersPage(r io.Reader, pageSize int, base string) (domain.Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return domain.Page{}, fmt.Errorf("parse html: %w", err)
	}

	rows := findAll(doc, func(n *html.Node) bool {
		if n.Data != "tr" || !hasClass(n, "shortcut_navigable") {
			return false
		}
		_, ok := attr(n, "data-release-id")
		return ok
	})

	page := domain.Page{Last: len(rows) < pageSize}
	for _, tr := range rows {
		if hasClass(tr, "unavailable") {
			continue
		}
		page.Rows = append(page.Rows, parseOfferRow(tr, base))
	}
	return page, nil
}

// parseOfferRow reads one offer row. Missing fields are left empty so the
// domain parser rejects the row.
func parseOfferRow(tr *html.Node, base string) domain.RawListing {
	var raw domain.RawListing

	if v, ok := attr(tr, "data-release-id"); ok {
		raw.ReleaseID, _ = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	}

	if n := findFirst(tr, tagWithClass("span", "price")); n != nil {
		raw.PriceNoShipping = cleanPrice(firstText(n))
	}
	if n := findFirst(tr, tagWithClass("span", "converted_price")); n != nil {
		raw.Price = cleanPrice(firstText(n))
	}
	if n := findFirst(tr, tagWithClass("span", "item_sleeve_condition")); n != nil {
		s := firstText(n)
		raw.SleeveCondition = &s
	}
	if n := findFirst(tr, tagWithClass("span", "has-tooltip")); n != nil && n.Parent != nil {
		raw.MediaCondition = firstText(n.Parent)
	}
	if n := findFirst(tr, tagWithClass("a", "item_description_title")); n != nil {
		if href, ok := attr(n, "href"); ok {
			raw.URL = absoluteURL(base, href)
		}
	}
	return raw
}

// cleanPrice strips the annotations the marketplace adds around converted
// totals, e.g. "about €30.50 total" or "+€4.00".
func cleanPrice(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "about")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "+")
	s = strings.TrimSuffix(s, "total")
	return strings.TrimSpace(s)
}

func absoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(href, "/")
}
