package httpclient

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/laboro/internal/common"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// userAgents is the pool a client draws from. One is picked at random per
// client so a session keeps a consistent browser fingerprint.
var userAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
}

// maxResponseBytes caps response reads; listing and detail pages are well
// under this.
const maxResponseBytes = 10 << 20

// StatusError reports a non-2xx response that survived all retries
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d", e.URL, e.StatusCode)
}

// Client is a polite HTTP fetcher: bounded concurrency via caller-supplied
// semaphores, a global rate floor, random pre-request jitter, a per-session
// user agent, and exponential backoff on rate-limit responses.
type Client struct {
	http      *http.Client
	config    *common.ScraperConfig
	logger    arbor.ILogger
	limiter   *rate.Limiter
	userAgent string
}

// NewClient creates a polite HTTP client from scraper config
func NewClient(logger arbor.ILogger, config *common.ScraperConfig) *Client {
	// The jitter floor doubles as the global pacing rate: never issue
	// requests faster than one per minimum jitter interval.
	interval := config.JitterMin
	if interval <= 0 {
		interval = time.Second
	}

	return &Client{
		http: &http.Client{
			Timeout: config.RequestTimeout,
		},
		config:    config,
		logger:    logger,
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
		userAgent: userAgents[rand.Intn(len(userAgents))],
	}
}

// RequestWithBackoff fetches a URL under the given semaphore. It sleeps a
// random 1-3s style jitter before the first attempt and backs off
// exponentially (base * 2^attempt) on 429/503, other HTTP errors, and
// transport errors. Returns the response body on success.
// A nil semaphore skips concurrency gating (sequential callers).
func (c *Client) RequestWithBackoff(ctx context.Context, url string, sem *semaphore.Weighted) ([]byte, error) {
	if sem != nil {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer sem.Release(1)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// Random delay to avoid rate limiting
	if err := sleepCtx(ctx, c.jitter()); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.config.BackoffBaseDelay * (1 << (attempt - 1))
			c.logger.Warn().Str("url", url).Int("attempt", attempt).
				Str("delay", delay.String()).Msg("Retrying request")
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, err
			}
		}

		body, err := c.doRequest(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// 4xx responses other than 429 will not improve on retry
		if statusErr, ok := err.(*StatusError); ok {
			if statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 &&
				statusErr.StatusCode != http.StatusTooManyRequests {
				return nil, statusErr
			}
		}
	}

	return nil, fmt.Errorf("failed to fetch %s after %d attempts: %w", url, c.config.MaxRetries, lastErr)
}

// doRequest performs a single GET with the session headers
func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// jitter returns a random duration in [JitterMin, JitterMax]
func (c *Client) jitter() time.Duration {
	min, max := c.config.JitterMin, c.config.JitterMax
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

// sleepCtx sleeps for d unless the context is cancelled first
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
