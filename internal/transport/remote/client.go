// Package remote is the HTTP client for the multi-domain server search endpoint.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storesearch/internal/domain"
	"github.com/kailas-cloud/storesearch/internal/metrics"
)

// Defaults for the search endpoint contract.
const (
	DefaultPath    = "/api/search"
	DefaultLimit   = 24
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 64 << 10
)

// Client calls GET {BaseURL}{Path}?q=&limit= with bearer authorization.
// Safe for concurrent use.
type Client struct {
	endpoint string
	token    string
	limit    int
	http     *http.Client
	logger   *zap.Logger
}

// Config holds the search endpoint settings.
type Config struct {
	BaseURL string
	Path    string
	Token   string
	Limit   int
	Timeout time.Duration
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewClient creates a search client. Zero values fall back to the defaults.
func NewClient(cfg *Config) *Client {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint: strings.TrimSuffix(cfg.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/"),
		token:    cfg.Token,
		limit:    limit,
		http:     hc,
		logger:   logger,
	}
}

type searchResponse struct {
	Items []wireItem `json:"items"`
}

type wireItem struct {
	ID       json.RawMessage `json:"id"`
	Domain   string          `json:"domain"`
	Title    string          `json:"title"`
	Subtitle string          `json:"subtitle"`
	TitleHL  string          `json:"titleHL"`
	Snippet  string          `json:"snippet"`

	// Older backends send the highlight under this name.
	TitleHighlighted string `json:"titleHighlighted"`
}

func (w wireItem) highlight() string {
	if w.TitleHL != "" {
		return w.TitleHL
	}
	return w.TitleHighlighted
}

type errorResponse struct {
	Message string `json:"message"`
}

// Search sends term as q. A cancelled ctx yields domain.ErrAborted and records
// no failure; every other failure is a *domain.SearchError (domain.ErrNetwork).
// The response is atomic: any failure discards all items.
func (c *Client) Search(ctx context.Context, term string) ([]domain.RemoteItem, error) {
	start := time.Now()

	items, err := c.search(ctx, term)

	outcome := metrics.OutcomeOK
	switch {
	case errors.Is(err, domain.ErrAborted):
		outcome = metrics.OutcomeAborted
		c.logger.Debug("remote search aborted", zap.String("term", term))
	case err != nil:
		outcome = metrics.OutcomeError
		c.logger.Warn("remote search failed", zap.String("term", term), zap.Error(err))
	}
	metrics.RemoteSearchRequestsTotal.WithLabelValues(outcome).Inc()
	metrics.RemoteSearchDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) search(ctx context.Context, term string) ([]domain.RemoteItem, error) {
	q := url.Values{}
	q.Set("q", term)
	q.Set("limit", strconv.Itoa(c.limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", domain.NewSearchError(0, ""))
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("remote search: %w", domain.ErrAborted)
		}
		return nil, fmt.Errorf("do request: %w", domain.NewSearchError(0, ""))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, domain.NewSearchError(resp.StatusCode, extractMessage(body))
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("remote search: %w", domain.ErrAborted)
		}
		return nil, fmt.Errorf("decode: %w", domain.NewSearchError(resp.StatusCode, ""))
	}

	return c.toItems(result.Items), nil
}

// HealthCheck probes the search endpoint with a HEAD request. Any response
// below 500 counts as reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("probe search backend: %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return domain.NewSearchError(resp.StatusCode, "")
	}
	return nil
}

// toItems validates wire items. Unknown domains and missing ids are dropped
// here and never reach the palette.
func (c *Client) toItems(wire []wireItem) []domain.RemoteItem {
	out := make([]domain.RemoteItem, 0, len(wire))
	for _, w := range wire {
		d, err := domain.ParseSearchDomain(w.Domain)
		if err != nil {
			metrics.RemoteSearchItemsDropped.WithLabelValues("unknown_domain").Inc()
			c.logger.Debug("remote item dropped", zap.String("domain", w.Domain))
			continue
		}
		id := parseID(w.ID)
		if id == "" {
			metrics.RemoteSearchItemsDropped.WithLabelValues("missing_id").Inc()
			continue
		}
		out = append(out, domain.RemoteItem{
			ID:       id,
			Domain:   d,
			Title:    w.Title,
			Subtitle: w.Subtitle,
			TitleHL:  w.highlight(),
			Snippet:  w.Snippet,
		})
	}
	return out
}

// parseID accepts both string and numeric ids.
func parseID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

// extractMessage extracts the "message" field from a JSON error body.
func extractMessage(body []byte) string {
	var parsed errorResponse
	if json.Unmarshal(body, &parsed) == nil {
		return parsed.Message
	}
	return ""
}
