package rerank

import (
	"context"
	"strconv"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/pipeline"
)

// LabelPrimaryGenre 是 Diversity 的默认分组 key：游戏的第一个 genre。
const LabelPrimaryGenre = "primary_genre"

// Diversity 是多样性重排：同一分组最多保留 MaxPerKey 个，超出部分丢弃，保持原有顺序。
// 分组来源优先级：
// - label[LabelKey].Value
// - LabelKey 为 primary_genre 时取 game.Genres[0]
// 取不到分组的游戏不受限制。
type Diversity struct {
	LabelKey  string // 默认 "primary_genre"
	MaxPerKey int    // 默认 1
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	key := n.LabelKey
	if key == "" {
		key = LabelPrimaryGenre
	}
	limit := n.MaxPerKey
	if limit <= 0 {
		limit = 1
	}

	seen := make(map[string]int, 32)
	out := make([]*core.Item, 0, len(items))

	for _, it := range items {
		if it == nil {
			continue
		}

		group := groupOf(it, key)
		if group == "" {
			out = append(out, it)
			continue
		}
		if seen[group] >= limit {
			continue
		}
		seen[group]++
		out = append(out, it)
	}

	return out, nil
}

func groupOf(it *core.Item, key string) string {
	if lbl, ok := it.GetLabel(key); ok && lbl.Value != "" {
		return lbl.Value
	}
	if key == LabelPrimaryGenre && it.Game != nil {
		if ids, err := it.Game.Categories(core.AxisGenre); err == nil && len(ids) > 0 {
			return strconv.FormatInt(ids[0], 10)
		}
	}
	return ""
}
