package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"headlines/internal/metrics"
)

const (
	DefaultBaseURL  = "https://newsapi.org/v2"
	DefaultPageSize = 20

	headlinesPath  = "/top-headlines"
	apiStatusError = "error"
)

// Config holds News API client configuration.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
}

// Client calls the News API top-headlines endpoint. Every call performs at
// most one HTTP request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// New creates a new News API client.
func New(cfg Config, m *metrics.Metrics, logger *slog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: m,
		logger:  logger.With("component", "newsapi"),
	}

	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return c
}

// FetchHeadlines fetches the top headlines of one source. Any failure is
// returned as a *TransportError.
func (c *Client) FetchHeadlines(ctx context.Context, sourceID, apiKey string, pageSize int) (*APIResponse, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Op: "rate limit", Err: err}
		}
	}

	start := time.Now()
	resp, err := c.doRequest(ctx, c.headlinesURL(sourceID, apiKey, pageSize))
	elapsed := time.Since(start)

	if err != nil {
		c.metrics.RecordFetch(metrics.OutcomeFailure, elapsed)
		c.logger.Warn("fetch headlines failed",
			"source_id", sourceID,
			"duration", elapsed,
			"error", err,
		)
		return nil, err
	}

	c.metrics.RecordFetch(metrics.OutcomeSuccess, elapsed)
	c.logger.Debug("fetched headlines",
		"source_id", sourceID,
		"articles", len(resp.Articles),
		"total_results", resp.TotalResults,
		"duration", elapsed,
	)

	return resp, nil
}

func (c *Client) headlinesURL(sourceID, apiKey string, pageSize int) string {
	q := url.Values{}
	q.Set("sources", sourceID)
	q.Set("apiKey", apiKey)
	q.Set("pageSize", strconv.Itoa(pageSize))
	return c.baseURL + headlinesPath + "?" + q.Encode()
}

func (c *Client) doRequest(ctx context.Context, rawURL string) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &TransportError{Op: "create request", Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Headlines/1.0")

	c.logger.Debug("request", "method", req.Method, "url", redact(req.URL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error embeds the request URL, which carries the key
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = redact(req.URL)
		}
		return nil, &TransportError{Op: "execute request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp)
	}

	var apiResp APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, &TransportError{Op: "decode response", StatusCode: resp.StatusCode, Err: err}
	}

	if apiResp.Status == apiStatusError {
		msg := apiResp.Message
		if msg == "" {
			msg = "api returned status error"
		}
		return nil, &TransportError{
			Op:         "decode response",
			StatusCode: resp.StatusCode,
			Code:       apiResp.Code,
			Message:    msg,
		}
	}

	return &apiResp, nil
}

func newStatusError(resp *http.Response) *TransportError {
	te := &TransportError{
		Op:         "unexpected status",
		StatusCode: resp.StatusCode,
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return te
	}

	var apiErr ErrorResponse
	if json.Unmarshal(body, &apiErr) == nil {
		te.Code = apiErr.Code
		te.Message = apiErr.Message
	}

	return te
}

func redact(u *url.URL) string {
	cp := *u
	q := cp.Query()
	if q.Has("apiKey") {
		q.Set("apiKey", "REDACTED")
	}
	cp.RawQuery = q.Encode()
	return cp.String()
}
