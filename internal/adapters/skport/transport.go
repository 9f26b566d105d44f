package skport

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"
)

const (
	maxRetries     = 3
	initialDelay   = 1000 * time.Millisecond
	maxDelay       = 10000 * time.Millisecond
	requestTimeout = 30 * time.Second

	maxResponseBytes = 1 << 20
)

// Response is the fully drained result of an HTTP exchange. Bodies are
// read eagerly so retried attempts never leak connections.
type Response struct {
	StatusCode int
	Body       []byte
}

// RetryingClient issues a request up to MaxAttempts times. An attempt is
// retried only when no response was received at all, or when the status
// is 5xx or 429. The final response, whatever its status, is returned to
// the caller for interpretation; an error is returned only when the last
// attempt produced no response.
type RetryingClient struct {
	HTTPClient     *http.Client
	MaxAttempts    int
	RequestTimeout time.Duration
	InitialDelay   time.Duration
	MaxDelay       time.Duration

	// randFloat overrides the jitter source in tests.
	randFloat func() float64
}

func (c *RetryingClient) Do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*Response, error) {
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = maxRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		resp, err := c.doOnce(ctx, build)
		if err == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if err == nil {
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			if attempt == attempts-1 {
				return resp, nil
			}
		} else {
			lastErr = err
			if attempt == attempts-1 {
				break
			}
		}

		if waitErr := c.wait(ctx, backoffDelay(attempt, c.initialDelay(), c.maxDelay(), c.jitterSource())); waitErr != nil {
			return nil, waitErr
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", attempts, lastErr)
}

func (c *RetryingClient) doOnce(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*Response, error) {
	timeout := c.RequestTimeout
	if timeout <= 0 {
		timeout = requestTimeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := build(attemptCtx)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

func (c *RetryingClient) wait(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	select {
	case <-ctx.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *RetryingClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *RetryingClient) jitterSource() func() float64 {
	if c.randFloat != nil {
		return c.randFloat
	}
	return rand.Float64
}

func (c *RetryingClient) initialDelay() time.Duration {
	if c.InitialDelay > 0 {
		return c.InitialDelay
	}
	return initialDelay
}

func (c *RetryingClient) maxDelay() time.Duration {
	if c.MaxDelay > 0 {
		return c.MaxDelay
	}
	return maxDelay
}

func retryableStatus(status int) bool {
	return status >= http.StatusInternalServerError || status == http.StatusTooManyRequests
}

// backoffDelay computes the wait before attempt+1: an exponential base
// capped at max, plus uniform jitter in ±25% of the base, floored to
// whole milliseconds.
func backoffDelay(attempt int, initial, max time.Duration, randFloat func() float64) time.Duration {
	base := initial << attempt
	if base > max || base <= 0 {
		base = max
	}

	jitterFactor := 1 + (randFloat()*2-1)*0.25
	ms := int64(math.Floor(float64(base.Milliseconds()) * jitterFactor))

	return time.Duration(ms) * time.Millisecond
}
