package rerank

import (
	"context"
	"sort"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/pipeline"
)

// SortNode 按 Score 降序稳定排序，同分时保持候选池原始顺序。
type SortNode struct{}

func (n *SortNode) Name() string        { return "rerank.sort" }
func (n *SortNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *SortNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil {
			return false
		}
		if items[j] == nil {
			return true
		}
		return items[i].Score > items[j].Score
	})
	return items, nil
}

// Games 去掉分数，按顺序返回游戏对象。
func Games(items []*core.Item) []*core.Game {
	out := make([]*core.Game, 0, len(items))
	for _, it := range items {
		if it == nil || it.Game == nil {
			continue
		}
		out = append(out, it.Game)
	}
	return out
}
