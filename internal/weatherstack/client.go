package weatherstack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/weatherdeck/weatherdeck/internal/httputil"
	"github.com/weatherdeck/weatherdeck/internal/metrics"
	"github.com/weatherdeck/weatherdeck/internal/storage"
)

// User-facing copy for fetch failures with no cached fallback.
const (
	msgNotFound    = "Weather info not found"
	msgUnavailable = "Unable to load weather data. Check your internet connection and try again later."
)

// Notifier delivers a user-facing message. Severity is "info", "warn" or
// "error".
type Notifier interface {
	Notify(message, severity string)
}

// Client fetches current conditions from the provider with a cache
// fallback. Safe for concurrent use across distinct parameter sets.
type Client struct {
	baseURL  string
	http     *http.Client
	cache    *storage.KV
	notifier Notifier
	breaker  *gobreaker.CircuitBreaker
	logger   *slog.Logger

	// pending cache writes, so Close can wait for fire-and-forget
	// persistence in tests and on shutdown.
	writes sync.WaitGroup
}

// NewClient creates a provider client. The cache is written on every
// successful fetch and read only when a live fetch fails.
func NewClient(baseURL string, cache *storage.KV, notifier Notifier, logger *slog.Logger) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "weatherstack",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		baseURL:  baseURL,
		http:     httputil.NewClient(),
		cache:    cache,
		notifier: notifier,
		breaker:  cb,
		logger:   logger,
	}
}

// FetchWithFallback resolves current conditions for one parameter set.
// It always attempts a live fetch first. On success the raw response is
// cached (fire-and-forget) and returned. On failure the last cached
// response for the same key is returned if present, with no staleness
// check and no notification. When both fail, exactly one toast is emitted
// (warn for the provider's not-found code, error otherwise) and the
// original failure is returned.
func (c *Client) FetchWithFallback(ctx context.Context, endpoint string, params Params) (*Response, error) {
	cacheKey := CacheKey(endpoint, params)

	body, resp, err := c.fetchLive(ctx, endpoint, params)
	if err == nil {
		c.writes.Add(1)
		go func() {
			defer c.writes.Done()
			wctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if werr := c.cache.Set(wctx, cacheKey, body); werr != nil {
				c.logger.Warn("cache write failed", "key", cacheKey, "error", werr)
			}
		}()
		return resp, nil
	}

	cached, cacheErr := c.cache.Get(ctx, cacheKey)
	if cacheErr == nil {
		var fallback Response
		if derr := json.Unmarshal(cached, &fallback); derr == nil {
			metrics.CacheFallbacksTotal.WithLabelValues(endpoint, "hit").Inc()
			c.logger.Info("serving cached response after live failure", "key", cacheKey, "error", err)
			return &fallback, nil
		}
		c.logger.Warn("cached response undecodable", "key", cacheKey)
	}

	metrics.CacheFallbacksTotal.WithLabelValues(endpoint, "miss").Inc()
	c.notifyFailure(err)
	return nil, err
}

// notifyFailure emits the single user notification for a fetch that had no
// fallback.
func (c *Client) notifyFailure(err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.NotFound() {
		c.notifier.Notify(msgNotFound, "warn")
		return
	}
	c.notifier.Notify(msgUnavailable, "error")
}

// FetchMany issues one FetchWithFallback per parameter variant,
// concurrently, and returns results in input order. Entries whose fetch
// failed are nil rather than an error.
func (c *Client) FetchMany(ctx context.Context, endpoint string, variants []Params) []*Response {
	results := make([]*Response, len(variants))

	var wg sync.WaitGroup
	for i, params := range variants {
		wg.Add(1)
		go func(i int, params Params) {
			defer wg.Done()
			resp, err := c.FetchWithFallback(ctx, endpoint, params)
			if err != nil {
				return
			}
			results[i] = resp
		}(i, params)
	}
	wg.Wait()

	return results
}

// fetchLive performs the network GET through the circuit breaker and
// returns the raw body plus the decoded response.
func (c *Client) fetchLive(ctx context.Context, endpoint string, params Params) ([]byte, *Response, error) {
	u := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, QueryString(params))

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, decodeAPIError(resp.StatusCode, body)
		}
		return body, nil
	})
	metrics.ProviderLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ProviderCallsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, nil, err
	}
	metrics.ProviderCallsTotal.WithLabelValues(endpoint, "ok").Inc()

	body := result.([]byte)
	var decoded Response
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, nil, fmt.Errorf("unmarshal %s: %w", endpoint, err)
	}
	return body, &decoded, nil
}

// decodeAPIError extracts the provider's error envelope from a non-2xx
// body, falling back to a bare status error.
func decodeAPIError(status int, body []byte) error {
	var envelope struct {
		Error APIError `json:"error"`
	}
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Code != 0 {
		*apiErr = envelope.Error
		apiErr.StatusCode = status
	}
	return apiErr
}

// Close waits for outstanding fire-and-forget cache writes.
func (c *Client) Close() {
	c.writes.Wait()
}
