// Package gamerec 根据用户喜欢的游戏，按类目（genres / themes / platforms）余弦相似度
// 从候选池中推荐最多 20 个游戏。
//
// 设计要点：
// - Pipeline-first: 向量化、过滤、打分、排序、截断都是串联的 Node
// - 请求级词表: 每次请求从候选池构建类目词表，不跨请求复用
// - 原样返回: 结果是上游的原始游戏对象，不附加分数
package gamerec

import (
	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/engine"
	"github.com/rushteam/gamerec/pipeline"
)

// 轻量 facade：便于直接 import "gamerec" 使用核心抽象。
type (
	Game     = core.Game
	Pipeline = pipeline.Pipeline
	Node     = pipeline.Node
	Kind     = pipeline.Kind
)

const (
	KindFeature = pipeline.KindFeature
	KindFilter  = pipeline.KindFilter
	KindRank    = pipeline.KindRank
	KindReRank  = pipeline.KindReRank
)

// TopK 是推荐结果的最大条数。
const TopK = core.DefaultTopK

var (
	ErrEmptyLikedSet      = core.ErrEmptyLikedSet
	ErrEmptyCandidatePool = core.ErrEmptyCandidatePool
)

// Recommend 从 pool 中推荐与 liked 最相似的游戏，分数从高到低，最多 TopK 个，不含 liked 中的游戏。
func Recommend(liked, pool []*Game) ([]*Game, error) {
	return engine.Recommend(liked, pool)
}
