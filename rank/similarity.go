package rank

import (
	"math"

	"github.com/rushteam/gamerec/core"
)

// Cosine 计算两个向量的余弦相似度 (u·v)/(‖u‖‖v‖)。
// 任一向量模长为 0 或长度不一致时返回 0。
func Cosine(u, v []float64) float64 {
	if len(u) != len(v) {
		return 0
	}
	return cosine(u, norm(u), v, norm(v))
}

func cosine(u []float64, nu float64, v []float64, nv float64) float64 {
	if nu == 0 || nv == 0 {
		return 0
	}
	var dot float64
	for i := range u {
		dot += u[i] * v[i]
	}
	return dot / (nu * nv)
}

func norm(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

// Scorer 对候选向量计算与 liked 集合的平均余弦相似度。
// liked 向量的模长在构建时预先计算。
type Scorer struct {
	liked [][]float64
	norms []float64
}

// NewScorer 创建 Scorer。liked 为空，或所有 liked 向量模长都为 0 时，
// 返回 core.ErrEmptyLikedSet。
// 只要存在一个非零向量，全零的 liked 向量仍计入平均值的分母。
func NewScorer(liked [][]float64) (*Scorer, error) {
	if len(liked) == 0 {
		return nil, core.ErrEmptyLikedSet
	}
	s := &Scorer{
		liked: liked,
		norms: make([]float64, len(liked)),
	}
	valid := 0
	for i, v := range liked {
		s.norms[i] = norm(v)
		if s.norms[i] > 0 {
			valid++
		}
	}
	if valid == 0 {
		return nil, core.ErrEmptyLikedSet
	}
	return s, nil
}

// Score 返回 v 与每个 liked 向量余弦相似度的算术平均。
func (s *Scorer) Score(v []float64) float64 {
	nv := norm(v)
	var sum float64
	for i, l := range s.liked {
		if len(l) != len(v) {
			continue
		}
		sum += cosine(v, nv, l, s.norms[i])
	}
	return sum / float64(len(s.liked))
}

// Len 返回 liked 向量个数。
func (s *Scorer) Len() int {
	return len(s.liked)
}
