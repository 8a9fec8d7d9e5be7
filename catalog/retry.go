package catalog

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/rushteam/gamerec/logging"
)

const (
	defaultMaxRetries = 3
	defaultBackoff    = 500 * time.Millisecond
	maxRetryAfter     = 30 * time.Second
)

// doWithRetry 对网络错误、429、5xx 做指数退避重试，优先使用 Retry-After。
// 返回的响应由调用方关闭。
func (c *Client) doWithRetry(req *http.Request) (*http.Response, error) {
	maxRetries := c.maxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	base := c.backoff
	if base <= 0 {
		base = defaultBackoff
	}

	ctx := req.Context()
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req.Clone(ctx))
		retryAfter, retry := shouldRetry(resp, err)
		if !retry {
			return resp, err
		}

		if err != nil {
			lastErr = err
		} else {
			lastErr = &StatusError{Status: resp.StatusCode}
			_ = resp.Body.Close()
		}
		logging.Ctx(ctx).Warn().Err(lastErr).
			Str("url", req.URL.String()).
			Int("attempt", attempt+1).
			Int("max_retries", maxRetries).
			Msg("catalog request failed")

		if attempt == maxRetries-1 {
			break
		}

		backoff := base * time.Duration(1<<attempt)
		if retryAfter > 0 {
			backoff = retryAfter
		}
		if err := sleepWithContext(ctx, backoff); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func shouldRetry(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		return 0, true
	}
	if resp == nil {
		return 0, false
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return parseRetryAfter(resp), true
	}
	return 0, false
}

func parseRetryAfter(resp *http.Response) time.Duration {
	raw := resp.Header.Get("Retry-After")
	if raw == "" {
		return 0
	}

	var d time.Duration
	if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
		d = time.Duration(seconds) * time.Second
	} else if when, err := http.ParseTime(raw); err == nil {
		d = time.Until(when)
	}
	if d < 0 {
		return 0
	}
	return min(d, maxRetryAfter)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
