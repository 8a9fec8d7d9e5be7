package feature

import (
	"context"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/logging"
	"github.com/rushteam/gamerec/pipeline"
	"github.com/rushteam/gamerec/pkg/utils"
)

// VectorizeNode 是特征节点：
//  1. 用本次请求的候选池构建词表
//  2. 为每个 Item 写入特征向量，不可读的游戏走降级路径（全零向量 + degraded 标签）
//  3. 在候选池中解析 rctx.LikedIDs，写入 rctx.Liked
//
// 没有任何 liked 游戏能在候选池中找到时返回 core.ErrEmptyLikedSet。
type VectorizeNode struct {
	// OnDegraded 每出现一个降级游戏调用一次（可选，用于打点）
	OnDegraded func(ctx context.Context, item *core.Item, reason error)
}

func (n *VectorizeNode) Name() string {
	return "feature.vectorize"
}

func (n *VectorizeNode) Kind() pipeline.Kind {
	return pipeline.KindFeature
}

func (n *VectorizeNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if rctx == nil || len(rctx.LikedIDs) == 0 {
		return nil, core.ErrEmptyLikedSet
	}

	games := make([]*core.Game, 0, len(items))
	for _, it := range items {
		if it != nil {
			games = append(games, it.Game)
		}
	}
	vec := NewVectorizer(BuildVocabulary(games))

	rctx.Liked = rctx.Liked[:0]
	seen := make(map[int64]struct{}, len(rctx.LikedIDs))
	for _, it := range items {
		if it == nil {
			continue
		}
		res := vec.Vectorize(it.Game)
		it.Vector = res.Vector
		it.Degraded = res.Degraded
		if res.Degraded {
			it.PutLabel(utils.LabelDegraded, utils.NewLabel(res.Reason.Error(), n.Name()))
			logging.Ctx(ctx).Debug().
				Int64("game_id", it.ID).
				Err(res.Reason).
				Msg("game vectorized as zero vector")
			if n.OnDegraded != nil {
				n.OnDegraded(ctx, it, res.Reason)
			}
		}

		if !rctx.IsLiked(it.ID) {
			continue
		}
		it.PutLabel(utils.LabelLiked, utils.NewLabel("true", n.Name()))
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		rctx.Liked = append(rctx.Liked, it)
	}

	if len(rctx.Liked) == 0 {
		return nil, core.ErrEmptyLikedSet
	}
	return items, nil
}
