// Package discogs adapts the Discogs REST API and the marketplace web pages to
// the domain interfaces.
package discogs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

// DefaultAPIURL is the Discogs API root.
const DefaultAPIURL = "https://api.discogs.com"

// DefaultWebURL is the Discogs site root.
const DefaultWebURL = "https://www.discogs.com"

const wantsPerPage = 100

// ClientConfig holds the parameters of a Client.
type ClientConfig struct {
	APIURL    string
	WebURL    string
	Token     string
	Username  string
	UserAgent string
	Timeout   time.Duration
}

// Client is the REST client for the Discogs API. It serves the want-list,
// writes notes and looks up releases.
type Client struct {
	apiURL     string
	webURL     string
	token      string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger

	mu       sync.Mutex
	username string
}

var (
	_ domain.WantlistSource = (*Client)(nil)
	_ domain.NotesWriter    = (*Client)(nil)
	_ domain.ReleaseLookup  = (*Client)(nil)
)

// NewClient creates a new Discogs API client. When cfg.Username is empty it
// is resolved through the identity endpoint on first use.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.WebURL == "" {
		cfg.WebURL = DefaultWebURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		apiURL:    strings.TrimRight(cfg.APIURL, "/"),
		webURL:    strings.TrimRight(cfg.WebURL, "/"),
		token:     strings.TrimSpace(cfg.Token),
		userAgent: cfg.UserAgent,
		username:  cfg.Username,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// Identity returns the username the token belongs to.
func (c *Client) Identity(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.username != "" {
		return c.username, nil
	}

	body, err := c.do(ctx, http.MethodGet, "/oauth/identity", nil)
	if err != nil {
		return "", fmt.Errorf("discogs: identity: %w", err)
	}
	var id APIIdentity
	if err := json.Unmarshal(body, &id); err != nil {
		return "", fmt.Errorf("discogs: decode identity: %w", err)
	}
	if id.Username == "" {
		return "", fmt.Errorf("discogs: identity: empty username")
	}
	c.username = id.Username
	return c.username, nil
}

// Wantlist returns every want-list entry in API order.
func (c *Client) Wantlist(ctx context.Context) ([]domain.WantlistItem, error) {
	user, err := c.Identity(ctx)
	if err != nil {
		return nil, err
	}

	var items []domain.WantlistItem
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(wantsPerPage))
		path := fmt.Sprintf("/users/%s/wants?%s", url.PathEscape(user), params.Encode())

		body, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, fmt.Errorf("discogs: get wantlist page %d: %w", page, err)
		}

		var wp APIWantlistPage
		if err := json.Unmarshal(body, &wp); err != nil {
			return nil, fmt.Errorf("discogs: decode wantlist page %d: %w", page, err)
		}
		for i := range wp.Wants {
			items = append(items, wp.Wants[i].ToDomainItem(c.webURL))
		}

		if page >= wp.Pagination.Pages || len(wp.Wants) == 0 {
			break
		}
	}

	c.logger.InfoContext(ctx, "loaded wantlist", slog.Int("items", len(items)))
	return items, nil
}

// SetNotes replaces the notes of a want-list entry.
func (c *Client) SetNotes(ctx context.Context, item domain.WantlistItem, notes string) error {
	user, err := c.Identity(ctx)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/users/%s/wants/%d", url.PathEscape(user), item.ReleaseID)
	if _, err := c.do(ctx, http.MethodPost, path, map[string]string{"notes": notes}); err != nil {
		return fmt.Errorf("discogs: set notes of %d: %w", item.ID, err)
	}
	c.logger.DebugContext(ctx, "notes updated",
		slog.Int64("item_id", item.ID),
		slog.String("notes", notes),
	)
	return nil
}

// Release returns the display payload of a release including its tracklist.
func (c *Client) Release(ctx context.Context, releaseID int64) (domain.Release, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/releases/%d", releaseID), nil)
	if err != nil {
		return domain.Release{}, fmt.Errorf("discogs: get release %d: %w", releaseID, err)
	}
	var r APIRelease
	if err := json.Unmarshal(body, &r); err != nil {
		return domain.Release{}, fmt.Errorf("discogs: decode release %d: %w", releaseID, err)
	}
	return r.ToDomainRelease(c.webURL), nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Discogs token="+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := strings.TrimSpace(string(body))
	if len(bodyStr) > 256 {
		bodyStr = bodyStr[:256]
	}
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
