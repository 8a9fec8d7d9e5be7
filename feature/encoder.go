package feature

import (
	"slices"

	"github.com/rushteam/gamerec/core"
)

// CategoryEncoder 是单个类目维度的多热（multi-hot）编码器。
// Fit 固定 词表成员 -> 向量下标 的映射（升序），Encode 把 id 列表映射为定长 0/1 向量。
type CategoryEncoder struct {
	Axis core.Axis

	vocab []int64
	index map[int64]int
}

// NewCategoryEncoder 创建一个未 fit 的编码器，此时长度为 0。
func NewCategoryEncoder(axis core.Axis) *CategoryEncoder {
	return &CategoryEncoder{
		Axis:  axis,
		index: make(map[int64]int),
	}
}

// Fit 用词表建立下标映射。输入无需有序，重复成员只占一个下标。
func (e *CategoryEncoder) Fit(vocab []int64) *CategoryEncoder {
	sorted := slices.Clone(vocab)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	e.vocab = sorted
	e.index = make(map[int64]int, len(sorted))
	for i, id := range sorted {
		e.index[id] = i
	}
	return e
}

// Len 返回编码长度（词表大小）。
func (e *CategoryEncoder) Len() int {
	return len(e.vocab)
}

// Vocabulary 返回已 fit 的词表（升序）。
func (e *CategoryEncoder) Vocabulary() []int64 {
	return e.vocab
}

// Filter 去掉词表外的 id，保留原顺序。
func (e *CategoryEncoder) Filter(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := e.index[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Encode 返回长度为 Len() 的 0/1 向量。
// 未知 id 直接丢弃；空列表或全是未知 id 时得到全零向量。
func (e *CategoryEncoder) Encode(ids []int64) []float64 {
	vec := make([]float64, e.Len())
	e.encodeInto(vec, ids)
	return vec
}

// encodeInto 写入 dst，len(dst) 必须等于 Len()。
func (e *CategoryEncoder) encodeInto(dst []float64, ids []int64) {
	for _, id := range e.Filter(ids) {
		dst[e.index[id]] = 1
	}
}
