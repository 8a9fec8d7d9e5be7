package rerank

import (
	"context"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/pipeline"
	"github.com/rushteam/gamerec/pkg/conv"
)

// TopNNode 是一个 Top-N 截断节点，用于在排序后截取前 N 个物品。
// 通常在排序（Rank）节点之后使用，用于限制返回结果数量。
//
// 示例：
//
//	pipeline.New(
//	    &rank.SimilarityNode{},
//	    &rerank.SortNode{},
//	    &rerank.TopNNode{N: 20},
//	)
//
// 请求参数 limit（rctx.Params["limit"]）小于 N 时以 limit 为准。
type TopNNode struct {
	// N 要保留的游戏数量
	// 如果 N <= 0，则返回所有游戏（不截断）
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if rctx != nil {
		if v, ok := rctx.Param("limit"); ok {
			if l, ok := conv.ToInt64(v); ok && l > 0 && (limit <= 0 || int(l) < limit) {
				limit = int(l)
			}
		}
	}

	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
