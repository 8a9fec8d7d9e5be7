// Package engine 组装默认推荐 Pipeline，并提供唯一的推荐入口：
//
//	games, err := engine.Recommend(liked, pool)
//
// 默认 Pipeline：
//
//	feature.vectorize -> rank.similarity -> filter(liked, blacklist, expr) -> rerank.sort -> rerank.topn(20)
//
// 过滤在打分之后执行，请求表达式可以使用 item.score。
// 无论使用哪种 Pipeline，返回结果都不含 liked 游戏，且不超过 20 个。
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/feature"
	"github.com/rushteam/gamerec/filter"
	"github.com/rushteam/gamerec/logging"
	"github.com/rushteam/gamerec/metrics"
	"github.com/rushteam/gamerec/pipeline"
	"github.com/rushteam/gamerec/rank"
	"github.com/rushteam/gamerec/rerank"
)

// Engine 执行推荐 Pipeline。无状态，可被并发请求共享。
type Engine struct {
	pipeline *pipeline.Pipeline
	topK     int
	filters  []filter.Filter
	hooks    []pipeline.Hook
}

// Option 配置 Engine。
type Option func(*Engine)

// WithPipeline 使用自定义 Pipeline（例如从 YAML 构建），忽略 WithTopK / WithFilters。
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(e *Engine) {
		e.pipeline = p
	}
}

// WithTopK 设置截断长度，取值范围 1..20，超出范围时使用 20。
func WithTopK(n int) Option {
	return func(e *Engine) {
		e.topK = clampTopK(n)
	}
}

func clampTopK(n int) int {
	if n <= 0 || n > core.DefaultTopK {
		return core.DefaultTopK
	}
	return n
}

// WithFilters 在默认 Pipeline 的 liked 过滤之后追加过滤器。
func WithFilters(filters ...filter.Filter) Option {
	return func(e *Engine) {
		e.filters = append(e.filters, filters...)
	}
}

// WithHooks 为 Pipeline 追加 Hook。
func WithHooks(hooks ...pipeline.Hook) Option {
	return func(e *Engine) {
		e.hooks = append(e.hooks, hooks...)
	}
}

// New 创建 Engine。
func New(opts ...Option) *Engine {
	e := &Engine{topK: core.DefaultTopK}
	for _, opt := range opts {
		opt(e)
	}
	if e.pipeline == nil {
		e.pipeline = DefaultPipeline(e.topK, e.filters...)
	}
	e.pipeline.Use(e.hooks...)
	return e
}

// DefaultPipeline 构建默认 Pipeline。extra 过滤器排在 liked 过滤器之后。
func DefaultPipeline(topK int, extra ...filter.Filter) *pipeline.Pipeline {
	filters := append([]filter.Filter{&filter.LikedFilter{}}, extra...)
	return pipeline.New(
		&feature.VectorizeNode{OnDegraded: metrics.OnDegraded},
		&rank.SimilarityNode{},
		&filter.FilterNode{Filters: filters},
		&rerank.SortNode{},
		&rerank.TopNNode{N: clampTopK(topK)},
	)
}

// Pipeline 返回 Engine 使用的 Pipeline。
func (e *Engine) Pipeline() *pipeline.Pipeline {
	return e.pipeline
}

// Recommend 对候选池打分排序，返回不超过 topK 个游戏（原始对象），分数最高的在前。
//
// 错误：
//   - core.ErrEmptyCandidatePool：候选池为空
//   - core.ErrEmptyLikedSet：liked 为空，或没有任何 liked 游戏出现在候选池中
//
// 候选池非空但全部被过滤时返回空切片，不返回错误。输入的游戏对象不会被修改。
func (e *Engine) Recommend(
	ctx context.Context,
	rctx *core.RecommendContext,
	pool []*core.Game,
) ([]*core.Game, error) {
	start := time.Now()
	games, err := e.recommend(ctx, rctx, pool)

	outcome := outcomeOf(err)
	metrics.RecordRecommend(outcome, len(pool), len(games), time.Since(start))
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).
			Str("outcome", outcome).
			Int("pool_size", len(pool)).
			Msg("recommendation failed")
		return nil, err
	}
	return games, nil
}

func (e *Engine) recommend(
	ctx context.Context,
	rctx *core.RecommendContext,
	pool []*core.Game,
) ([]*core.Game, error) {
	items := core.NewItems(pool)
	if len(items) == 0 {
		return nil, core.ErrEmptyCandidatePool
	}
	if rctx == nil || len(rctx.LikedIDs) == 0 {
		return nil, core.ErrEmptyLikedSet
	}

	out, err := e.pipeline.Run(ctx, rctx, items)
	if err != nil {
		return nil, err
	}

	// 自定义 Pipeline 可能缺少 filter 或 topn 节点
	kept := make([]*core.Item, 0, min(len(out), e.topK))
	for _, it := range out {
		if len(kept) == e.topK {
			break
		}
		if it == nil || rctx.IsLiked(it.ID) {
			continue
		}
		kept = append(kept, it)
	}
	return rerank.Games(kept), nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case core.IsEmptyLikedSet(err):
		return "empty_liked_set"
	case core.IsEmptyCandidatePool(err):
		return "empty_candidate_pool"
	default:
		return "error"
	}
}

var (
	defaultEngine     *Engine
	defaultEngineOnce sync.Once
)

// Default 返回使用默认 Pipeline 的共享 Engine。
func Default() *Engine {
	defaultEngineOnce.Do(func() {
		defaultEngine = New()
	})
	return defaultEngine
}

// Recommend 是推荐的唯一边界操作：根据 liked 游戏，从候选池中推荐最多 20 个游戏。
// liked 只按 id 使用，向量取自候选池中的同 id 游戏。
func Recommend(liked, pool []*core.Game) ([]*core.Game, error) {
	return Default().Recommend(context.Background(), core.NewRecommendContext("", liked), pool)
}
