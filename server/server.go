// Package server 提供推荐服务的 HTTP 接口：
//
//	POST /recommend   推荐（兼容 GET + body）
//	GET  /hello       存活探测
//	GET  /health      健康检查
//	GET  /metrics     Prometheus 指标
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/engine"
)

// Config 是 HTTP 层配置。
type Config struct {
	CORSOrigins []string

	// RateLimit 每个 IP 每分钟请求数，0 表示不限
	RateLimit int

	// TopK 请求 limit 的上限
	TopK int

	// MaxFilterLength 过滤表达式最大长度，0 表示不限
	MaxFilterLength int

	// MaxBodyBytes 请求体上限，默认 1MB
	MaxBodyBytes int64

	// RequestTimeout 单个推荐请求的超时（含拉取候选池），默认 30s
	RequestTimeout time.Duration
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		CORSOrigins:     []string{"*"},
		RateLimit:       120,
		TopK:            core.DefaultTopK,
		MaxFilterLength: 1024,
		MaxBodyBytes:    1 << 20,
		RequestTimeout:  30 * time.Second,
	}
}

// Server 持有推荐引擎和候选池来源。
type Server struct {
	engine   *engine.Engine
	provider core.CandidateProvider
	cfg      Config
}

// New 创建 Server。cfg 中的零值字段使用 DefaultConfig 的值（RateLimit 与 MaxFilterLength 除外，0 表示不限）。
func New(eng *engine.Engine, provider core.CandidateProvider, cfg Config) *Server {
	def := DefaultConfig()
	if cfg.TopK <= 0 {
		cfg.TopK = def.TopK
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = def.MaxBodyBytes
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	return &Server{engine: eng, provider: provider, cfg: cfg}
}

// Router 返回挂载了全部路由和中间件的 handler。
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         86400,
	}))
	r.Use(instrument)

	r.Get("/hello", s.handleHello)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))
		}
		r.Post("/recommend", s.handleRecommend)
		r.Get("/recommend", s.handleRecommend)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})
	return r
}
