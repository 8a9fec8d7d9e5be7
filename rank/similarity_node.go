package rank

import (
	"context"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/pipeline"
	"github.com/rushteam/gamerec/pkg/utils"
)

// ModelCosineMean 是 SimilarityNode 写入 rank_model 标签的值。
const ModelCosineMean = "cosine_mean"

// SimilarityNode 用 rctx.Liked 的特征向量给每个候选打分（平均余弦相似度）。
// - 写入 item.Score
// - 写入 labels：rank_model
// 不负责排序，排序由 rerank.sort 完成。
type SimilarityNode struct{}

func (n *SimilarityNode) Name() string        { return "rank.similarity" }
func (n *SimilarityNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *SimilarityNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if rctx == nil || len(rctx.Liked) == 0 {
		return nil, core.ErrEmptyLikedSet
	}

	liked := make([][]float64, 0, len(rctx.Liked))
	for _, it := range rctx.Liked {
		liked = append(liked, it.Vector)
	}
	scorer, err := NewScorer(liked)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		it.Score = scorer.Score(it.Vector)
		it.PutLabel(utils.LabelRankModel, utils.NewLabel(ModelCosineMean, "rank"))
	}
	return items, nil
}
