package core

import "github.com/rushteam/gamerec/pkg/utils"

// Item 是推荐链路中的统一承载结构：游戏、特征向量、分数、标签。
// Labels 用于解释与观测；Score 用于排序决策；Degraded 表示向量走了降级路径。
type Item struct {
	ID       int64
	Game     *Game
	Score    float64
	Vector   []float64
	Degraded bool
	Labels   map[string]utils.Label
}

func NewItem(g *Game) *Item {
	it := &Item{
		Game:   g,
		Labels: make(map[string]utils.Label),
	}
	if g != nil {
		it.ID = g.ID
	}
	return it
}

// NewItems 按候选池原始顺序构建 Item，跳过 nil。
func NewItems(games []*Game) []*Item {
	out := make([]*Item, 0, len(games))
	for _, g := range games {
		if g == nil {
			continue
		}
		out = append(out, NewItem(g))
	}
	return out
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

func (it *Item) GetLabel(key string) (utils.Label, bool) {
	lbl, ok := it.Labels[key]
	return lbl, ok
}
