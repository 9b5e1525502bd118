package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// ErrNoAddress is returned when the lookup service answers without an IP.
var ErrNoAddress = errors.New("public ip response has no address")

// PublicIPClient looks up the host's public address and caches it.
type PublicIPClient struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger

	maxRetries   int
	retryBackoff time.Duration
	ttl          time.Duration
	now          func() time.Time

	mu        sync.Mutex
	cached    string
	fetchedAt time.Time
}

// PublicIPOption configures a PublicIPClient.
type PublicIPOption func(*PublicIPClient)

// NewPublicIPClient creates a client for url.
func NewPublicIPClient(url string, opts ...PublicIPOption) *PublicIPClient {
	c := &PublicIPClient{
		url: url,
		httpClient: &http.Client{
			Timeout: 3 * time.Second,
		},
		logger:       slog.Default(),
		retryBackoff: 500 * time.Millisecond,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) PublicIPOption {
	return func(c *PublicIPClient) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) PublicIPOption {
	return func(c *PublicIPClient) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithTTL sets how long a successful lookup is reused. Zero disables caching.
func WithTTL(ttl time.Duration) PublicIPOption {
	return func(c *PublicIPClient) {
		c.ttl = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) PublicIPOption {
	return func(c *PublicIPClient) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) PublicIPOption {
	return func(c *PublicIPClient) {
		c.httpClient = hc
	}
}

// Lookup returns the public IP, from cache when still fresh.
func (c *PublicIPClient) Lookup(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.cached != "" && c.ttl > 0 && c.now().Sub(c.fetchedAt) < c.ttl {
		ip := c.cached
		c.mu.Unlock()
		return ip, nil
	}
	c.mu.Unlock()

	ip, err := c.doWithRetry(ctx)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.cached = ip
	c.fetchedAt = c.now()
	c.mu.Unlock()

	return ip, nil
}

// doRequest performs one lookup.
func (c *PublicIPClient) doRequest(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	var payload struct {
		IP string `json:"ip"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if payload.IP == "" {
		return "", ErrNoAddress
	}
	return payload.IP, nil
}

// doWithRetry performs a lookup with exponential backoff retry.
func (c *PublicIPClient) doWithRetry(ctx context.Context) (string, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Add jitter: backoff * (0.5 to 1.5)
			jitter := backoff/2 + time.Duration(rand.Int63n(int64(backoff)+1))
			c.logger.Debug("retrying public ip lookup",
				"attempt", attempt,
				"backoff", jitter,
			)

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(jitter):
			}

			backoff *= 2
		}

		ip, err := c.doRequest(ctx)
		if err == nil {
			return ip, nil
		}

		lastErr = err

		var httpErr *HTTPError
		if !errors.As(err, &httpErr) || !httpErr.IsRetryable() {
			return "", err
		}
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}
