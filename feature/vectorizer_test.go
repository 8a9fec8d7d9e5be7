package feature

import (
	"reflect"
	"testing"

	"github.com/rushteam/gamerec/core"
)

func TestVectorizer(t *testing.T) {
	vocab := Vocabulary{
		Genres:    []int64{4, 5},
		Themes:    []int64{1},
		Platforms: []int64{6, 48},
	}
	v := NewVectorizer(vocab)
	if v.Dim() != 5 {
		t.Fatalf("Dim() = %d, want 5", v.Dim())
	}
	if v.Encoder(core.AxisTheme).Len() != 1 {
		t.Errorf("theme encoder Len() = %d", v.Encoder(core.AxisTheme).Len())
	}

	tests := []struct {
		name         string
		game         *core.Game
		want         []float64
		wantDegraded bool
	}{
		{
			name: "concatenated in axis order",
			game: &core.Game{ID: 1, Genres: []int64{5}, Themes: []int64{1}, Platforms: []int64{48}},
			want: []float64{0, 1, 1, 0, 1},
		},
		{
			name: "missing fields encode to zero",
			game: &core.Game{ID: 2, Platforms: []int64{6}},
			want: []float64{0, 0, 0, 1, 0},
		},
		{
			name: "unknown ids only",
			game: &core.Game{ID: 3, Genres: nil, Themes: []int64{}, Platforms: []int64{99}},
			want: []float64{0, 0, 0, 0, 0},
		},
		{
			name:         "malformed axis degrades whole game",
			game:         mustGame(t, `{"id":4,"genres":[4],"themes":{"x":1}}`),
			want:         []float64{0, 0, 0, 0, 0},
			wantDegraded: true,
		},
		{
			name:         "nil game",
			game:         nil,
			want:         []float64{0, 0, 0, 0, 0},
			wantDegraded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Vectorize(tt.game)
			if !reflect.DeepEqual(got.Vector, tt.want) {
				t.Errorf("Vector = %v, want %v", got.Vector, tt.want)
			}
			if got.Degraded != tt.wantDegraded {
				t.Errorf("Degraded = %v, want %v", got.Degraded, tt.wantDegraded)
			}
			if tt.wantDegraded && !core.IsMalformedGame(got.Reason) {
				t.Errorf("Reason = %v, want malformed game", got.Reason)
			}
		})
	}
}

func TestVectorizerEmptyVocabulary(t *testing.T) {
	v := NewVectorizer(BuildVocabulary(nil))
	got := v.Vectorize(&core.Game{ID: 1, Genres: []int64{1}})
	if v.Dim() != 0 || len(got.Vector) != 0 || got.Degraded {
		t.Errorf("unexpected %+v (dim %d)", got, v.Dim())
	}
}
