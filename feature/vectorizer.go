package feature

import (
	"fmt"

	"github.com/rushteam/gamerec/core"
)

// Vectorized 是单个游戏的向量化结果。
// Degraded 为 true 时 Vector 是全零向量，Reason 记录降级原因。
type Vectorized struct {
	Vector   []float64
	Degraded bool
	Reason   error
}

// Vectorizer 把三个维度的编码结果按 genres ⧺ themes ⧺ platforms 拼接成一个特征向量。
type Vectorizer struct {
	encoders []*CategoryEncoder
	dim      int
}

// NewVectorizer 用词表 fit 三个维度的编码器。
func NewVectorizer(vocab Vocabulary) *Vectorizer {
	v := &Vectorizer{encoders: make([]*CategoryEncoder, 0, len(core.Axes))}
	for _, axis := range core.Axes {
		enc := NewCategoryEncoder(axis).Fit(vocab.Axis(axis))
		v.encoders = append(v.encoders, enc)
		v.dim += enc.Len()
	}
	return v
}

// Dim 返回特征向量长度。
func (v *Vectorizer) Dim() int {
	return v.dim
}

// Encoder 返回指定维度的编码器。
func (v *Vectorizer) Encoder(axis core.Axis) *CategoryEncoder {
	for _, enc := range v.encoders {
		if enc.Axis == axis {
			return enc
		}
	}
	return nil
}

// Vectorize 编码单个游戏。
// 游戏为 nil 或任一维度不可读时不返回错误，而是返回长度正确的全零向量并标记 Degraded。
func (v *Vectorizer) Vectorize(g *core.Game) Vectorized {
	if g == nil {
		return v.degraded(fmt.Errorf("%w: nil game", core.ErrMalformedGame))
	}

	vec := make([]float64, v.dim)
	offset := 0
	for _, enc := range v.encoders {
		ids, err := g.Categories(enc.Axis)
		if err != nil {
			return v.degraded(err)
		}
		enc.encodeInto(vec[offset:offset+enc.Len()], ids)
		offset += enc.Len()
	}
	return Vectorized{Vector: vec}
}

func (v *Vectorizer) degraded(reason error) Vectorized {
	return Vectorized{
		Vector:   make([]float64, v.dim),
		Degraded: true,
		Reason:   reason,
	}
}
