package main

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rushteam/gamerec/catalog"
	"github.com/rushteam/gamerec/config"
	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/store"
)

func testSettings() *config.Settings {
	cfg := config.Defaults()
	cfg.Catalog.BaseURL = "http://catalog.local:8000"
	return cfg
}

func TestBuildProvider(t *testing.T) {
	st := store.NewMemoryStore()
	defer st.Close()

	tests := []struct {
		name   string
		mutate func(*config.Settings)
		check  func(t *testing.T, p core.CandidateProvider)
	}{
		{
			name: "single source cached",
			check: func(t *testing.T, p core.CandidateProvider) {
				cp, ok := p.(*catalog.CachedProvider)
				if !ok {
					t.Fatalf("provider = %T, want *catalog.CachedProvider", p)
				}
				if _, ok := cp.Provider.(*catalog.Client); !ok {
					t.Errorf("inner provider = %T, want *catalog.Client", cp.Provider)
				}
			},
		},
		{
			name: "multiple sources without cache",
			mutate: func(cfg *config.Settings) {
				cfg.Catalog.Sources = []string{"/igdb/popular", "/igdb/recent"}
				cfg.Catalog.CacheTTL = 0
			},
			check: func(t *testing.T, p core.CandidateProvider) {
				f, ok := p.(*catalog.Fanout)
				if !ok {
					t.Fatalf("provider = %T, want *catalog.Fanout", p)
				}
				if len(f.Providers) != 2 {
					t.Errorf("len(Providers) = %d, want 2", len(f.Providers))
				}
			},
		},
		{
			name:   "file",
			mutate: func(cfg *config.Settings) { cfg.Catalog.File = "games.json" },
			check: func(t *testing.T, p core.CandidateProvider) {
				if _, ok := p.(*catalog.FileProvider); !ok {
					t.Errorf("provider = %T, want *catalog.FileProvider", p)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testSettings()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			p, err := buildProvider(cfg, st)
			if err != nil {
				t.Fatalf("buildProvider() error = %v", err)
			}
			tt.check(t, p)
		})
	}
}

func TestBuildEngineDefault(t *testing.T) {
	st := store.NewMemoryStore()
	defer st.Close()

	cfg := testSettings()
	cfg.Recommend.Blacklist = []int64{3}

	eng, err := buildEngine(cfg, st)
	if err != nil {
		t.Fatalf("buildEngine() error = %v", err)
	}
	pool := []*core.Game{
		{ID: 1, Genres: []int64{1}},
		{ID: 2, Genres: []int64{1}},
		{ID: 3, Genres: []int64{1}},
	}
	got, err := eng.Recommend(context.Background(), core.NewRecommendContext("", []*core.Game{{ID: 1}}), pool)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("Recommend() = %v, want [2]", got)
	}
}

func TestBuildEngineFromYAML(t *testing.T) {
	st := store.NewMemoryStore()
	defer st.Close()

	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	yaml := `
pipeline:
  name: diverse
  nodes:
    - type: feature.vectorize
    - type: rank.similarity
    - type: filter
    - type: rerank.sort
    - type: rerank.diversity
    - type: rerank.topn
      config:
        n: 5
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := testSettings()
	cfg.Recommend.PipelinePath = path
	eng, err := buildEngine(cfg, st)
	if err != nil {
		t.Fatalf("buildEngine() error = %v", err)
	}
	want := []string{"feature.vectorize", "rank.similarity", "filter", "rerank.sort", "rerank.diversity", "rerank.topn"}
	if got := eng.Pipeline().NodeNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("NodeNames() = %v, want %v", got, want)
	}

	cfg.Recommend.PipelinePath = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := buildEngine(cfg, st); err == nil {
		t.Error("buildEngine() expected error for missing pipeline file")
	}
}
