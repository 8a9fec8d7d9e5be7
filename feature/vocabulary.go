package feature

import (
	"maps"
	"slices"

	"github.com/rushteam/gamerec/core"
)

// Vocabulary 是候选池中出现过的类目 id 集合，每个维度一份，升序、去重。
// 每次请求基于当次候选池重建，不跨请求缓存。
type Vocabulary struct {
	Genres    []int64
	Themes    []int64
	Platforms []int64
}

// BuildVocabulary 对候选池每个维度取并集。
// 缺失字段视为空；某个维度不可读时，该游戏在这个维度上不贡献任何 id，其他维度照常统计。
// 空候选池得到三个空集合。
func BuildVocabulary(games []*core.Game) Vocabulary {
	sets := make(map[core.Axis]map[int64]struct{}, len(core.Axes))
	for _, a := range core.Axes {
		sets[a] = make(map[int64]struct{})
	}

	for _, g := range games {
		if g == nil {
			continue
		}
		for _, a := range core.Axes {
			ids, err := g.Categories(a)
			if err != nil {
				continue
			}
			for _, id := range ids {
				sets[a][id] = struct{}{}
			}
		}
	}

	return Vocabulary{
		Genres:    sortedKeys(sets[core.AxisGenre]),
		Themes:    sortedKeys(sets[core.AxisTheme]),
		Platforms: sortedKeys(sets[core.AxisPlatform]),
	}
}

func sortedKeys(set map[int64]struct{}) []int64 {
	out := slices.AppendSeq(make([]int64, 0, len(set)), maps.Keys(set))
	slices.Sort(out)
	return out
}

// Axis 返回指定维度的词表。
func (v Vocabulary) Axis(axis core.Axis) []int64 {
	switch axis {
	case core.AxisGenre:
		return v.Genres
	case core.AxisTheme:
		return v.Themes
	case core.AxisPlatform:
		return v.Platforms
	default:
		return nil
	}
}

// Size 返回三个维度词表大小之和，即特征向量长度。
func (v Vocabulary) Size() int {
	return len(v.Genres) + len(v.Themes) + len(v.Platforms)
}

// Sizes 按 genres / themes / platforms 顺序返回各维度词表大小。
func (v Vocabulary) Sizes() []int {
	return []int{len(v.Genres), len(v.Themes), len(v.Platforms)}
}
