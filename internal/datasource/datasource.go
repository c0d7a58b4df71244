// Package datasource fetches the raw material for an analysis: company
// fundamentals and annual statements from Yahoo Finance, and recent news
// from Google News search. The Collector combines both into one
// models.CompanyData per ticker.
package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrTickerNotFound is returned when a ticker cannot be resolved.
	ErrTickerNotFound = errors.New("ticker not found")

	// ErrRateLimited is returned when a source rejects a request with 429.
	ErrRateLimited = errors.New("rate limited by data source")
)

// ErrHTTP is a non-2xx response from an upstream source. The body is
// truncated to the first kilobyte.
type ErrHTTP struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Unwrap maps 429 and 404 onto ErrRateLimited and ErrTickerNotFound.
func (e *ErrHTTP) Unwrap() error {
	switch e.StatusCode {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusNotFound:
		return ErrTickerNotFound
	}
	return nil
}

// DefaultUserAgent is sent with every request; Yahoo rejects the Go default.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// NewHTTPClient returns a client with an explicit overall timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// fetchJSON waits for the limiter, GETs endpoint and decodes the JSON body
// into out.
func fetchJSON(ctx context.Context, client *http.Client, limiter *rate.Limiter, endpoint string, out any) error {
	if err := limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &ErrHTTP{URL: endpoint, StatusCode: resp.StatusCode, Body: string(snippet)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// Cache is a small TTL cache keyed by string. Expired entries are dropped
// on the next write. A non-positive TTL disables it.
type Cache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cached[V]
}

type cached[V any] struct {
	value   V
	expires time.Time
}

// NewCache creates a cache whose entries live for ttl.
func NewCache[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{ttl: ttl, now: time.Now, entries: make(map[string]cached[V])}
}

// Get returns the live value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expires) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key.
func (c *Cache[V]) Set(key string, value V) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cached[V]{value: value, expires: now.Add(c.ttl)}
}

// newLimiter returns a token bucket allowing perSecond requests per second
// with a burst of one. Non-positive rates disable limiting.
func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}
