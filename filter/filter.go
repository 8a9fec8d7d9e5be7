package filter

import (
	"context"

	"github.com/rushteam/gamerec/core"
)

// Filter 是过滤器的抽象接口，用于判断一个 Item 是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断 item 是否应该被过滤
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}

// LikedFilter 过滤掉用户已喜欢的游戏，推荐结果中永远不出现 liked 集合里的 id。
type LikedFilter struct{}

func (f *LikedFilter) Name() string {
	return "filter.liked"
}

func (f *LikedFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if rctx == nil {
		return false, nil
	}
	return rctx.IsLiked(item.ID), nil
}
