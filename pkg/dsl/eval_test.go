package dsl

import (
	"testing"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/pkg/utils"
)

func TestProgramMatch(t *testing.T) {
	item := &core.Item{
		ID:    7,
		Score: 0.8,
		Game: &core.Game{
			ID:        7,
			Name:      "Hollow Knight",
			Genres:    []int64{8, 31},
			Platforms: []int64{6, 130},
		},
	}
	item.PutLabel(utils.LabelRankModel, utils.NewLabel("cosine_mean", "rank"))
	rctx := &core.RecommendContext{UserID: "u1", Params: map[string]any{"region": "eu"}}

	tests := []struct {
		expr string
		want bool
	}{
		{`6 in game.platforms`, true},
		{`48 in game.platforms`, false},
		{`size(game.themes) == 0`, true},
		{`game.name.startsWith("Hollow") && game.id == 7`, true},
		{`item.score > 0.5 && !item.degraded`, true},
		{`label.rank_model == "cosine_mean"`, true},
		{`rctx.user_id == "u1" && rctx.params.region == "eu"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			got, err := p.Match(item, rctx)
			if err != nil {
				t.Fatalf("Match() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	for _, expr := range []string{"", "game.id ==", `"not a bool"`, "1 + 2"} {
		if _, err := Compile(expr); err == nil {
			t.Errorf("Compile(%q) expected error", expr)
		}
	}
}

func TestEval(t *testing.T) {
	ok, err := Eval("", nil, nil)
	if err != nil || !ok {
		t.Errorf("Eval(empty) = %v, %v", ok, err)
	}
	ok, err = Eval(`game.id == 0 && size(game.genres) == 0`, nil, nil)
	if err != nil || !ok {
		t.Errorf("Eval(nil item) = %v, %v", ok, err)
	}
}
