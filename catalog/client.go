// Package catalog 从上游目录服务拉取候选池，实现 core.CandidateProvider：
//   - Client：单个接口的 HTTP 拉取，带重试与熔断
//   - Fanout：并发拉取多个接口并按 id 去重合并
//   - CachedProvider：把拉取结果缓存到 core.Store
//   - FileProvider：从本地 JSON 文件读取，开发调试用
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/logging"
	"github.com/rushteam/gamerec/metrics"
)

// DefaultPath 是上游热门游戏接口。
const DefaultPath = "/igdb/popular"

// maxBodySize 单次响应的最大读取字节数。
const maxBodySize = 32 << 20

// ErrUpstream 表示上游请求失败（重试耗尽或返回非 2xx）。
var ErrUpstream = errors.New("catalog: upstream request failed")

// StatusError 上游返回的非 2xx 状态码。
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog: upstream status %d", e.Status)
}

// ClientConfig HTTP 客户端配置。
type ClientConfig struct {
	BaseURL      string
	Path         string        // 默认 /igdb/popular
	Timeout      time.Duration // 单次请求超时，默认 10s
	MaxRetries   int           // 默认 3
	RetryBackoff time.Duration // 指数退避的基数，默认 500ms
	Breaker      BreakerConfig
	HTTPClient   *http.Client
}

// Client 拉取单个上游接口。
type Client struct {
	url        string
	path       string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

var _ core.CandidateProvider = (*Client)(nil)

// NewClient 创建客户端，BaseURL 必须是 http/https 地址。
func NewClient(cfg ClientConfig) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("catalog: invalid base url %q", cfg.BaseURL)
	}

	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		url:        base.String() + path,
		path:       path,
		httpClient: httpClient,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff,
		breaker:    newBreaker("catalog"+path, cfg.Breaker),
	}, nil
}

// Name 返回接口路径，用于日志和指标。
func (c *Client) Name() string {
	return c.path
}

// URL 返回完整请求地址。
func (c *Client) URL() string {
	return c.url
}

// Candidates 拉取并解析候选池。
// 熔断打开时返回 core.ErrCatalogUnavailable，其他上游失败返回 ErrUpstream。
func (c *Client) Candidates(ctx context.Context) ([]*core.Game, error) {
	start := time.Now()
	body, err := c.fetch(ctx)
	if err != nil {
		metrics.RecordCatalogFetch(c.path, time.Since(start), errorType(err))
		return nil, err
	}

	games, skipped, err := DecodeGames(body)
	metrics.RecordCatalogFetch(c.path, time.Since(start), errorType(err))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if skipped > 0 {
		metrics.CatalogSkippedGames.WithLabelValues(c.path).Add(float64(skipped))
		logging.Ctx(ctx).Warn().
			Str("source", c.path).
			Int("skipped", skipped).
			Msg("catalog entries without a usable id skipped")
	}
	return games, nil
}

func (c *Client) fetch(ctx context.Context) ([]byte, error) {
	if c.breaker == nil {
		return c.fetchOnce(ctx)
	}
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.fetchOnce(ctx)
	})
	if isBreakerRejection(err) {
		return nil, fmt.Errorf("%w: %w", core.ErrCatalogUnavailable, err)
	}
	return body, err
}

func (c *Client) fetchOnce(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doWithRetry(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, &StatusError{Status: resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUpstream, err)
	}
	return body, nil
}

func errorType(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return ""
	case core.IsUnavailable(err):
		return "circuit_open"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &statusErr):
		return "status_" + fmt.Sprint(statusErr.Status)
	default:
		return "upstream"
	}
}
