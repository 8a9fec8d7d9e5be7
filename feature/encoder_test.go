package feature

import (
	"reflect"
	"testing"

	"github.com/rushteam/gamerec/core"
)

func TestCategoryEncoder(t *testing.T) {
	enc := NewCategoryEncoder(core.AxisGenre).Fit([]int64{31, 5, 12, 5})

	if enc.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", enc.Len())
	}
	if !reflect.DeepEqual(enc.Vocabulary(), []int64{5, 12, 31}) {
		t.Fatalf("Vocabulary() = %v", enc.Vocabulary())
	}

	tests := []struct {
		name string
		ids  []int64
		want []float64
	}{
		{"nil", nil, []float64{0, 0, 0}},
		{"empty", []int64{}, []float64{0, 0, 0}},
		{"known", []int64{31, 5}, []float64{1, 0, 1}},
		{"unknown dropped", []int64{12, 999}, []float64{0, 1, 0}},
		{"only unknown", []int64{998, 999}, []float64{0, 0, 0}},
		{"duplicates", []int64{12, 12}, []float64{0, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := enc.Encode(tt.ids); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Encode(%v) = %v, want %v", tt.ids, got, tt.want)
			}
		})
	}
}

func TestCategoryEncoderFilter(t *testing.T) {
	enc := NewCategoryEncoder(core.AxisTheme).Fit([]int64{1, 2})
	got := enc.Filter([]int64{3, 2, 1, 4})
	if !reflect.DeepEqual(got, []int64{2, 1}) {
		t.Errorf("Filter() = %v", got)
	}
}

func TestCategoryEncoderUnfitted(t *testing.T) {
	enc := NewCategoryEncoder(core.AxisPlatform)
	if enc.Len() != 0 {
		t.Fatalf("Len() = %d", enc.Len())
	}
	if got := enc.Encode([]int64{1}); len(got) != 0 {
		t.Errorf("Encode() = %v", got)
	}
}
