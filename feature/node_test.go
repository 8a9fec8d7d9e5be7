package feature

import (
	"context"
	"testing"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/pkg/utils"
)

func TestVectorizeNode(t *testing.T) {
	pool := []*core.Game{
		{ID: 1, Genres: []int64{4}, Themes: []int64{1}},
		{ID: 2, Genres: []int64{4, 5}},
		mustGame(t, `{"id":3,"genres":"broken"}`),
	}
	items := core.NewItems(pool)
	rctx := core.NewRecommendContext("u1", []*core.Game{{ID: 1}, {ID: 42}})

	var degraded []int64
	n := &VectorizeNode{OnDegraded: func(_ context.Context, it *core.Item, _ error) {
		degraded = append(degraded, it.ID)
	}}

	out, err := n.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("len(out) = %d", len(out))
	}
	for _, it := range out {
		if len(it.Vector) != 3 {
			t.Errorf("item %d vector len = %d, want 3", it.ID, len(it.Vector))
		}
	}
	if len(rctx.Liked) != 1 || rctx.Liked[0].ID != 1 {
		t.Errorf("Liked = %v", rctx.Liked)
	}
	if _, ok := out[0].GetLabel(utils.LabelLiked); !ok {
		t.Errorf("liked label missing")
	}
	if !out[2].Degraded || len(degraded) != 1 || degraded[0] != 3 {
		t.Errorf("degraded = %v, item3 = %+v", degraded, out[2])
	}
	if _, ok := out[2].GetLabel(utils.LabelDegraded); !ok {
		t.Errorf("degraded label missing")
	}
}

func TestVectorizeNodeEmptyLikedSet(t *testing.T) {
	pool := core.NewItems([]*core.Game{{ID: 1, Genres: []int64{4}}})

	tests := []struct {
		name string
		rctx *core.RecommendContext
	}{
		{"no liked ids", core.NewRecommendContext("u", nil)},
		{"liked not in pool", core.NewRecommendContext("u", []*core.Game{{ID: 9}})},
		{"nil context", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&VectorizeNode{}).Process(context.Background(), tt.rctx, pool)
			if !core.IsEmptyLikedSet(err) {
				t.Errorf("err = %v, want EmptyLikedSet", err)
			}
		})
	}
}
