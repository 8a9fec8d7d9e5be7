package pipeline

import (
	"context"

	"github.com/rushteam/gamerec/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindFeature Kind = "feature" // 特征阶段：构建词表并向量化候选
	KindFilter  Kind = "filter"  // 过滤阶段：剔除 liked / 黑名单 / 表达式不通过的候选
	KindRank    Kind = "rank"    // 排序阶段：对候选打分
	KindReRank  Kind = "rerank"  // 重排阶段：排序、截断、多样性
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用"输入 items -> 输出 items"的形态。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}

// Hook 在每个 Node 执行前后被调用，用于打点、日志等旁路逻辑。
// Hook 可以替换 items，返回错误会中断 Pipeline。
type Hook interface {
	BeforeNode(ctx context.Context, rctx *core.RecommendContext, node Node, items []*core.Item) ([]*core.Item, error)
	AfterNode(ctx context.Context, rctx *core.RecommendContext, node Node, items []*core.Item, err error) ([]*core.Item, error)
}
