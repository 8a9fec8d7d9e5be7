package core

import "github.com/rushteam/gamerec/pkg/utils"

// RecommendContext 承载单次请求的用户/参数信息，贯穿整个 Pipeline 透传。
// 每次请求新建，不跨请求复用。
type RecommendContext struct {
	UserID string

	// LikedIDs 是用户已喜欢的游戏 id（请求输入）
	LikedIDs []int64

	// Liked 是在候选池中解析到的已喜欢游戏，由 feature.vectorize 节点写入
	Liked []*Item

	// Params 请求级参数，例如：
	// - filter: CEL 过滤表达式
	// - limit: 返回条数
	Params map[string]any

	// Labels 是请求级标签
	Labels map[string]utils.Label

	likedSet map[int64]struct{}
}

// NewRecommendContext 根据已喜欢的游戏构建上下文。
func NewRecommendContext(userID string, liked []*Game) *RecommendContext {
	ids := make([]int64, 0, len(liked))
	for _, g := range liked {
		if g == nil {
			continue
		}
		ids = append(ids, g.ID)
	}
	return &RecommendContext{
		UserID:   userID,
		LikedIDs: ids,
		Params:   make(map[string]any),
	}
}

// LikedSet 返回 liked id 集合。首次调用时构建，之后不应再修改 LikedIDs。
func (rctx *RecommendContext) LikedSet() map[int64]struct{} {
	if rctx.likedSet == nil {
		set := make(map[int64]struct{}, len(rctx.LikedIDs))
		for _, id := range rctx.LikedIDs {
			set[id] = struct{}{}
		}
		rctx.likedSet = set
	}
	return rctx.likedSet
}

// IsLiked 判断游戏是否在 liked 集合中。
func (rctx *RecommendContext) IsLiked(id int64) bool {
	_, ok := rctx.LikedSet()[id]
	return ok
}

// Param 读取请求参数。
func (rctx *RecommendContext) Param(key string) (any, bool) {
	if rctx.Params == nil {
		return nil, false
	}
	v, ok := rctx.Params[key]
	return v, ok
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
