package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

// Default catalog endpoints. The identifier is appended to each.
const (
	DefaultSearchURL = "https://www.catalog.update.microsoft.com/Search.aspx?q="
	DefaultDetailURL = "https://www.catalog.update.microsoft.com/ScopedViewInline.aspx?updateid="
)

// DefaultMaxBodySize bounds how much of a catalog page is read.
const DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

// Client fetches pages from the update catalog.
// It is safe for concurrent use when the underlying http.Client is.
type Client struct {
	// httpClient performs the requests.
	httpClient *http.Client

	// searchURL is the search endpoint prefix.
	searchURL string

	// detailURL is the detail endpoint prefix.
	detailURL string

	// maxBodySize limits the bytes read from a response body.
	maxBodySize int64

	// limiter paces requests when set. Nil means unlimited.
	limiter *rate.Limiter

	// logger receives debug output for each fetch.
	logger *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithSearchURL sets the search endpoint prefix.
func WithSearchURL(u string) ClientOption {
	return func(c *Client) {
		c.searchURL = u
	}
}

// WithDetailURL sets the detail endpoint prefix.
func WithDetailURL(u string) ClientOption {
	return func(c *Client) {
		c.detailURL = u
	}
}

// WithMaxBodySize sets the maximum response body size. Non-positive values are ignored.
func WithMaxBodySize(size int64) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithRateLimit limits fetches to rps requests per second across all
// callers sharing the client. Zero or negative disables the limit.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client that issues requests with httpClient.
// A nil httpClient means http.DefaultClient.
func NewClient(httpClient *http.Client, opts ...ClientOption) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := &Client{
		httpClient:  httpClient,
		searchURL:   DefaultSearchURL,
		detailURL:   DefaultDetailURL,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// SearchURL returns the catalog search page for a KB identifier.
func (c *Client) SearchURL(kbID string) string {
	return c.searchURL + url.QueryEscape(kbID)
}

// DetailURL returns the catalog detail page for a redirect identifier.
func (c *Client) DetailURL(redirectID string) string {
	return c.detailURL + url.QueryEscape(redirectID)
}

// Fetch performs a GET request and returns the response body.
// Any status other than 200 OK yields a *StatusError.
func (c *Client) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug("fetching catalog page", "url", pageURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: pageURL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("fetched catalog page", "url", pageURL, "bytes", len(body))

	return body, nil
}

// FetchDocument fetches pageURL and parses it as HTML.
func (c *Client) FetchDocument(ctx context.Context, pageURL string) (*html.Node, error) {
	body, err := c.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}
	return doc, nil
}
