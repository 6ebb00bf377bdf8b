package spotify

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"github.com/avast/retry-go"
)

// statusError is a retryable HTTP status.
type statusError struct {
	status     int
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d", e.status)
}

// doRequestWithRetry sends a body-less request, retrying transport errors,
// 429 and 5xx responses with exponential backoff or the server's Retry-After.
// Other responses are returned to the caller as-is. The request is sent at
// most maxRetries+1 times.
func (c *Client) doRequestWithRetry(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	var resp *http.Response

	err := retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			// #nosec G107 -- URL constructed from the configured Spotify API base URL
			r, err := c.httpClient.Do(req.Clone(ctx))
			if err != nil {
				if ctx.Err() != nil {
					return retry.Unrecoverable(ctx.Err())
				}
				return err
			}
			if retryAfter, ok := shouldRetry(r); ok {
				_ = r.Body.Close()
				return &statusError{status: r.StatusCode, retryAfter: retryAfter}
			}
			resp = r
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)+1),
		retry.Delay(c.baseBackoff),
		retry.DelayType(retryAfterDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.log.Warn("retrying request", logging.Fields{
				"retry":       n + 1,
				"max_retries": c.maxRetries,
				"path":    req.URL.Path,
				"error":   err.Error(),
			})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: request failed after %d attempts: %w", c.maxRetries+1, err)
	}
	return resp, nil
}

func retryAfterDelay(n uint, err error, config *retry.Config) time.Duration {
	var se *statusError
	if errors.As(err, &se) && se.retryAfter > 0 {
		return se.retryAfter
	}
	return retry.BackOffDelay(n, err, config)
}

func shouldRetry(resp *http.Response) (time.Duration, bool) {
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return parseRetryAfter(resp), true
	}
	return 0, false
}

func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if when, err := http.ParseTime(retryAfter); err == nil {
		until := time.Until(when)
		if until > 0 {
			return until
		}
	}

	return 0
}
