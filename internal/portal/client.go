// Package portal is the thin HTTP layer in front of an open-data search API.
// It performs exactly one GET per lookup and classifies every failure into
// the single caller-visible lookup error; payload shape is the interpreter's
// concern, not this package's.
package portal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/time/rate"

	"github.com/overschie/brugstatus/internal/bridge"
)

// Config holds the search parameters for one portal client.
type Config struct {
	Endpoint string        // base search URL
	Dataset  string        // dataset id on the portal
	Query    string        // free-text bridge name
	Rows     int           // record count to fetch
	Sort     string        // portal sort parameter, e.g. -record_timestamp
	Timeout  time.Duration // bound on the single request
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithRateLimiter replaces the politeness limiter that spaces out successive
// lookups against the portal. It never causes a second request attempt.
func WithRateLimiter(lim *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = lim
	}
}

// Client queries the open-data search endpoint.
type Client struct {
	cfg       Config
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string

	mu      sync.Mutex
	lastURL string
}

// NewClient creates a portal client for the given search parameters.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	c := &Client{
		cfg:       cfg,
		limiter:   rate.NewLimiter(5, 5),
		userAgent: "brugstatus/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return c
}

// LastURL returns the most recently constructed request URL; the configured
// endpoint before the first search.
func (c *Client) LastURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastURL == "" {
		return c.cfg.Endpoint
	}
	return c.lastURL
}

func (c *Client) setLastURL(u string) {
	c.mu.Lock()
	c.lastURL = u
	c.mu.Unlock()
}

// Search performs the single search request and returns the decoded JSON
// payload without validating its shape. All failures come back as
// *bridge.LookupError.
func (c *Client) Search(ctx context.Context) (any, error) {
	params := url.Values{}
	params.Set("dataset", c.cfg.Dataset)
	params.Set("q", c.cfg.Query)
	params.Set("rows", strconv.Itoa(c.cfg.Rows))
	params.Set("sort", c.cfg.Sort)
	requestURL := c.cfg.Endpoint + "?" + params.Encode()
	c.setLastURL(requestURL)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, networkError(err, "portal: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, networkError(err, "portal: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	zap.L().Debug("portal search", zap.String("url", requestURL))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, networkError(err, "portal: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, bridge.NewLookupError(
			fmt.Sprintf("De open-data bron gaf een foutmelding (%d).", resp.StatusCode),
			eris.Errorf("portal: http %d from %s", resp.StatusCode, requestURL),
		)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err, "portal: read body")
	}

	payload, err := bridge.DecodeJSON(bytes.NewReader(decodeBody(raw)))
	if err != nil {
		return nil, bridge.NewLookupError(bridge.ReasonBadJSON, eris.Wrap(err, "portal: parse body"))
	}
	return payload, nil
}

// decodeBody returns the body as UTF-8 text, falling back to a Latin-1
// reading when the bytes are not valid UTF-8.
func decodeBody(raw []byte) []byte {
	if utf8.Valid(raw) {
		return raw
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func networkError(cause error, msg string) *bridge.LookupError {
	return bridge.NewLookupError(
		fmt.Sprintf("Netwerkfout tijdens ophalen gegevens: %v", cause),
		eris.Wrap(cause, msg),
	)
}
