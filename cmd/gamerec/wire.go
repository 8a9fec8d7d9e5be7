package main

import (
	"fmt"

	"github.com/rushteam/gamerec/catalog"
	"github.com/rushteam/gamerec/config"
	"github.com/rushteam/gamerec/config/builders"
	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/engine"
	"github.com/rushteam/gamerec/filter"
	"github.com/rushteam/gamerec/metrics"
	"github.com/rushteam/gamerec/pipeline"
)

// buildProvider 组装候选池来源：本地文件，或 上游接口(每个 source 一个 Client) -> Fanout -> 缓存。
func buildProvider(cfg *config.Settings, st core.Store) (core.CandidateProvider, error) {
	if cfg.Catalog.File != "" {
		return &catalog.FileProvider{Path: cfg.Catalog.File}, nil
	}

	breaker := catalog.BreakerConfig{
		FailureThreshold: cfg.Catalog.Breaker.FailureThreshold,
		MaxRequests:      cfg.Catalog.Breaker.MaxRequests,
		Interval:         cfg.Catalog.Breaker.Interval,
		Timeout:          cfg.Catalog.Breaker.Timeout,
	}
	providers := make([]core.CandidateProvider, 0, len(cfg.Catalog.Sources))
	for _, path := range cfg.Catalog.Sources {
		c, err := catalog.NewClient(catalog.ClientConfig{
			BaseURL:      cfg.Catalog.BaseURL,
			Path:         path,
			Timeout:      cfg.Catalog.Timeout,
			MaxRetries:   cfg.Catalog.MaxRetries,
			RetryBackoff: cfg.Catalog.RetryBackoff,
			Breaker:      breaker,
		})
		if err != nil {
			return nil, err
		}
		providers = append(providers, c)
	}

	var provider core.CandidateProvider
	if len(providers) == 1 {
		provider = providers[0]
	} else {
		provider = &catalog.Fanout{Providers: providers, Timeout: cfg.Catalog.Timeout}
	}
	if cfg.Catalog.CacheTTL > 0 {
		provider = &catalog.CachedProvider{Provider: provider, Store: st, TTL: cfg.Catalog.CacheTTL}
	}
	return provider, nil
}

// buildEngine 使用 recommend.pipeline_path 中的 YAML Pipeline，未配置时使用默认 Pipeline。
// 默认 Pipeline 在 liked 过滤之后追加黑名单和请求表达式过滤。
func buildEngine(cfg *config.Settings, st core.Store) (*engine.Engine, error) {
	hooks := engine.WithHooks(metrics.NewPipelineHook())

	if path := cfg.Recommend.PipelinePath; path != "" {
		builders.BindStore(st)
		pc, err := pipeline.LoadFromYAML(path)
		if err != nil {
			return nil, fmt.Errorf("load pipeline %s: %w", path, err)
		}
		if err := config.ValidatePipelineConfig(pc); err != nil {
			return nil, fmt.Errorf("pipeline %s: %w", path, err)
		}
		p, err := pc.BuildPipeline(config.DefaultFactory())
		if err != nil {
			return nil, fmt.Errorf("build pipeline %s: %w", path, err)
		}
		return engine.New(engine.WithPipeline(p), hooks), nil
	}

	var adapter *filter.StoreAdapter
	if cfg.Recommend.BlacklistKey != "" {
		adapter = filter.NewStoreAdapter(st)
	}
	return engine.New(
		engine.WithTopK(cfg.Recommend.TopK),
		engine.WithFilters(
			filter.NewBlacklistFilter(cfg.Recommend.Blacklist, adapter, cfg.Recommend.BlacklistKey),
			&filter.ExprFilter{},
		),
		hooks,
	), nil
}
