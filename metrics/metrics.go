// Package metrics 定义 Prometheus 指标，覆盖：
//   - 推荐请求（结果、耗时、返回条数、降级游戏数）
//   - Pipeline 各节点耗时
//   - 上游目录服务（拉取耗时、错误、熔断状态、缓存命中）
//   - HTTP 接口
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rushteam/gamerec/core"
)

var (
	// 推荐
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamerec_recommend_requests_total",
			Help: "Total number of recommendation computations by outcome",
		},
		[]string{"outcome"}, // ok / empty_liked_set / empty_candidate_pool / error
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gamerec_recommend_duration_seconds",
			Help:    "Duration of recommendation computations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecommendResultSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gamerec_recommend_result_size",
			Help:    "Number of games returned per recommendation",
			Buckets: []float64{0, 1, 5, 10, 15, 20, 50},
		},
	)

	CandidatePoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gamerec_candidate_pool_size",
			Help:    "Number of candidate games per recommendation",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	DegradedGames = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gamerec_degraded_games_total",
			Help: "Total number of games vectorized as zero vectors because of malformed categories",
		},
	)

	PipelineNodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gamerec_pipeline_node_duration_seconds",
			Help:    "Duration of pipeline nodes in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"node", "kind"},
	)

	PipelineNodeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamerec_pipeline_node_errors_total",
			Help: "Total number of pipeline node errors",
		},
		[]string{"node", "kind"},
	)

	// 上游目录服务
	CatalogFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gamerec_catalog_fetch_duration_seconds",
			Help:    "Duration of candidate pool fetches from the catalog service in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	CatalogFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamerec_catalog_fetch_errors_total",
			Help: "Total number of failed candidate pool fetches",
		},
		[]string{"source", "error_type"},
	)

	CatalogSkippedGames = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamerec_catalog_skipped_games_total",
			Help: "Total number of catalog entries skipped because they could not be decoded",
		},
		[]string{"source"},
	)

	CatalogCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gamerec_catalog_cache_hits_total",
			Help: "Total number of candidate pool cache hits",
		},
	)

	CatalogCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gamerec_catalog_cache_misses_total",
			Help: "Total number of candidate pool cache misses",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gamerec_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamerec_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamerec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gamerec_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gamerec_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)
)

// RecordRecommend 记录一次推荐计算。
func RecordRecommend(outcome string, poolSize, resultSize int, duration time.Duration) {
	RecommendRequests.WithLabelValues(outcome).Inc()
	RecommendDuration.Observe(duration.Seconds())
	CandidatePoolSize.Observe(float64(poolSize))
	if outcome == "ok" {
		RecommendResultSize.Observe(float64(resultSize))
	}
}

// RecordCatalogFetch 记录一次上游拉取。
func RecordCatalogFetch(source string, duration time.Duration, errorType string) {
	CatalogFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if errorType != "" {
		CatalogFetchErrors.WithLabelValues(source, errorType).Inc()
	}
}

// RecordAPIRequest 记录一次 HTTP 请求。
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest 记录进行中的请求数。
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// OnDegraded 记录一个降级为零向量的游戏，签名与 feature.VectorizeNode.OnDegraded 一致。
func OnDegraded(_ context.Context, _ *core.Item, _ error) {
	DegradedGames.Inc()
}
