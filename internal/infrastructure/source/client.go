package source

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/pricehunt/backend/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 3
	defaultConnections = 10
	maxBodyBytes       = 5 << 20 // 5 MB
)

// DefaultUserAgent is sent when the config does not set one
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// DelayRange is an inclusive range a randomized pause is drawn from
type DelayRange struct {
	Min time.Duration `mapstructure:"min"`
	Max time.Duration `mapstructure:"max"`
}

// DomainDelay overrides the politeness delay for one domain
type DomainDelay struct {
	Domain string        `mapstructure:"domain"`
	Min    time.Duration `mapstructure:"min"`
	Max    time.Duration `mapstructure:"max"`
}

// ClientConfig holds the fetch policy shared by every source client
type ClientConfig struct {
	Enabled           bool
	Timeout           time.Duration
	MaxRetries        int
	MaxConnections    int
	RequestsPerSecond float64
	UserAgent         string
	DefaultDelay      DelayRange
	DomainDelays      []DomainDelay
	RetryBackoff      DelayRange
	RateLimitBackoff  DelayRange
}

// Client fetches raw pages for one source domain.
// It owns its connection pool, pacing and retry budget.
type Client struct {
	httpClient       *http.Client
	rateLimiter      *rate.Limiter
	enabled          bool
	maxRetries       int
	userAgent        string
	delay            DelayRange
	retryBackoff     DelayRange
	rateLimitBackoff DelayRange
	logger           zerolog.Logger
}

// NewClient creates a client for the given domain
func NewClient(domainName string, cfg ClientConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	conns := cfg.MaxConnections
	if conns <= 0 {
		conns = defaultConnections
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxConnsPerHost:     conns,
				MaxIdleConnsPerHost: conns,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		rateLimiter:      rate.NewLimiter(limit, 1),
		enabled:          cfg.Enabled,
		maxRetries:       maxRetries,
		userAgent:        userAgent,
		delay:            delayFor(domainName, cfg.DomainDelays, cfg.DefaultDelay),
		retryBackoff:     cfg.RetryBackoff,
		rateLimitBackoff: cfg.RateLimitBackoff,
		logger:           logger.With().Str("component", "source_client").Str("domain", domainName).Logger(),
	}
}

// delayFor picks the politeness range configured for a domain, else the default
func delayFor(domainName string, overrides []DomainDelay, def DelayRange) DelayRange {
	host := strings.TrimPrefix(strings.ToLower(domainName), "www.")
	for _, o := range overrides {
		d := strings.TrimPrefix(strings.ToLower(o.Domain), "www.")
		if d != "" && (host == d || strings.HasSuffix(host, "."+d)) {
			return DelayRange{Min: o.Min, Max: o.Max}
		}
	}
	return def
}

// Fetch retrieves one page. It never returns an error: exhausting the retry
// budget, cancellation and the disabled flag are reported in the result.
func (c *Client) Fetch(ctx context.Context, reqURL string) FetchResult {
	if !c.enabled {
		return FetchResult{URL: reqURL, Reason: ReasonDisabled, Err: domain.ErrScrapingDisabled}
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := sleepContext(ctx, randomDuration(c.delay)); err != nil {
			return FetchResult{URL: reqURL, Reason: ReasonCanceled, Err: err, Attempts: attempt - 1}
		}
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return FetchResult{URL: reqURL, Reason: ReasonCanceled, Err: err, Attempts: attempt - 1}
		}

		body, status, err := c.doRequest(ctx, reqURL)
		last := attempt == c.maxRetries

		switch {
		case err != nil:
			c.logger.Warn().Err(err).Int("attempt", attempt).Str("url", reqURL).Msg("request error")
			lastErr = err
			if !last {
				_ = sleepContext(ctx, randomDuration(c.retryBackoff))
			}
		case status == http.StatusOK:
			return FetchResult{URL: reqURL, Body: body, StatusCode: status, Attempts: attempt}
		case status == http.StatusTooManyRequests:
			c.logger.Warn().Int("attempt", attempt).Str("url", reqURL).Msg("rate limited")
			lastErr = fmt.Errorf("%w: status %d", domain.ErrRateLimited, status)
			if !last {
				_ = sleepContext(ctx, randomDuration(c.rateLimitBackoff))
			}
		default:
			c.logger.Warn().Int("attempt", attempt).Int("status", status).Str("url", reqURL).Msg("unexpected status")
			lastErr = fmt.Errorf("%w: status %d", domain.ErrSourceUnavailable, status)
			if !last {
				_ = sleepContext(ctx, randomDuration(c.retryBackoff))
			}
		}

		if ctx.Err() != nil {
			return FetchResult{URL: reqURL, Reason: ReasonCanceled, Err: ctx.Err(), Attempts: attempt}
		}
	}

	c.logger.Error().Err(lastErr).Int("attempts", c.maxRetries).Str("url", reqURL).Msg("all retries failed")
	return FetchResult{URL: reqURL, Reason: ReasonExhausted, Err: lastErr, Attempts: c.maxRetries}
}

// doRequest executes one GET and reads a bounded body
func (c *Client) doRequest(ctx context.Context, reqURL string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("DNT", "1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := readLimitedBody(resp.Body, maxBodyBytes)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), resp.StatusCode, nil
}

func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

// randomDuration draws uniformly from [Min, Max]
func randomDuration(r DelayRange) time.Duration {
	if r.Max <= r.Min {
		if r.Min < 0 {
			return 0
		}
		return r.Min
	}
	return r.Min + rand.N(r.Max-r.Min+1)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
