// Package request provides the shared HTTP layer for all fetchers: a polite
// client with a per-instance minimum delay between calls and bounded
// exponential-backoff retries for transient transport failures.
package request

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// UserAgent identifies the crawler so site operators can rate-limit it.
	UserAgent = "aikc/1.0 (+https://github.com/ai-knowledge-crawler/aikc)"

	defaultTimeout = 30 * time.Second
	maxAttempts    = 3
	maxBackoffWait = 30 * time.Second
)

// StatusError is a non-2xx response that is not worth retrying.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Client issues throttled HTTP requests. Each fetcher owns its own Client so
// rate-limit bookkeeping never crosses sources. Not safe for concurrent use.
type Client struct {
	http        *http.Client
	delay       time.Duration
	lastRequest time.Time

	sleep func(time.Duration)
	now   func() time.Time
}

// NewClient creates a Client that waits at least delay between requests.
func NewClient(delay time.Duration) *Client {
	return &Client{
		http:  &http.Client{Timeout: defaultTimeout},
		delay: delay,
		sleep: time.Sleep,
		now:   time.Now,
	}
}

// throttle suspends until at least c.delay has elapsed since the previous
// request from this instance.
func (c *Client) throttle() {
	if !c.lastRequest.IsZero() {
		if elapsed := c.now().Sub(c.lastRequest); elapsed < c.delay {
			c.sleep(c.delay - elapsed)
		}
	}
	c.lastRequest = c.now()
}

// Get fetches a URL and returns the response body. Transient failures
// (network errors, 5xx) are retried with exponential backoff, up to
// maxAttempts attempts and maxBackoffWait cumulative waiting; other non-2xx
// responses return a *StatusError immediately.
func (c *Client) Get(rawURL string) ([]byte, error) {
	var lastErr error
	var waited time.Duration

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			wait := time.Second << (attempt - 1)
			if waited+wait > maxBackoffWait {
				break
			}
			c.sleep(wait)
			waited += wait
		}

		body, err := c.get(rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if se, ok := err.(*StatusError); ok && se.Code < 500 {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) get(rawURL string) ([]byte, error) {
	c.throttle()

	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, URL: rawURL}
	}

	return io.ReadAll(resp.Body)
}

// GetJSON fetches a URL with optional query parameters and decodes the JSON
// response into v.
func (c *Client) GetJSON(rawURL string, params url.Values, v any) error {
	if len(params) > 0 {
		sep := "?"
		u, err := url.Parse(rawURL)
		if err == nil && u.RawQuery != "" {
			sep = "&"
		}
		rawURL += sep + params.Encode()
	}

	body, err := c.Get(rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding %s: %w", rawURL, err)
	}
	return nil
}
