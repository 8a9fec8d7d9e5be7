package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWithBaseURL(t *testing.T) {
	t.Setenv(PathEnvVar, "")
	t.Setenv("MAIN_SERVER_API_BASE_URL", "http://catalog:8000")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Catalog.BaseURL != "http://catalog:8000" {
		t.Errorf("BaseURL = %q", cfg.Catalog.BaseURL)
	}
	if want := []string{"/igdb/popular"}; !reflect.DeepEqual(cfg.Catalog.Sources, want) {
		t.Errorf("Sources = %v, want %v", cfg.Catalog.Sources, want)
	}
	if cfg.Recommend.TopK != 20 {
		t.Errorf("TopK = %d, want 20", cfg.Recommend.TopK)
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("Store.Driver = %q, want memory", cfg.Store.Driver)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  write_timeout: 5s
catalog:
  base_url: http://from-file:8000
  sources: [/igdb/popular, /igdb/recent]
  max_retries: 1
recommend:
  top_k: 10
  blacklist: [1, 2]
`)
	t.Setenv("MAIN_SERVER_API_BASE_URL", "http://from-env:8000")
	t.Setenv("PORT", "8081")
	t.Setenv("GAMEREC_BLACKLIST", "7, 8,9")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Catalog.BaseURL != "http://from-env:8000" {
		t.Errorf("BaseURL = %q, want env override", cfg.Catalog.BaseURL)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("Port = %d, want 8081", cfg.Server.Port)
	}
	if cfg.Server.WriteTimeout != 5*time.Second {
		t.Errorf("WriteTimeout = %v, want 5s", cfg.Server.WriteTimeout)
	}
	if want := []string{"/igdb/popular", "/igdb/recent"}; !reflect.DeepEqual(cfg.Catalog.Sources, want) {
		t.Errorf("Sources = %v, want %v", cfg.Catalog.Sources, want)
	}
	if want := []int64{7, 8, 9}; !reflect.DeepEqual(cfg.Recommend.Blacklist, want) {
		t.Errorf("Blacklist = %v, want %v", cfg.Recommend.Blacklist, want)
	}
	if cfg.Recommend.TopK != 10 {
		t.Errorf("TopK = %d, want 10", cfg.Recommend.TopK)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Server.Addr() != "0.0.0.0:8081" {
		t.Errorf("Addr() = %q", cfg.Server.Addr())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{name: "valid", mutate: func(s *Settings) {}},
		{name: "file without base url", mutate: func(s *Settings) {
			s.Catalog.BaseURL = ""
			s.Catalog.File = "games.json"
		}},
		{name: "missing base url", mutate: func(s *Settings) { s.Catalog.BaseURL = "" }, wantErr: "catalog.base_url"},
		{name: "bad base url", mutate: func(s *Settings) { s.Catalog.BaseURL = "not a url" }, wantErr: "catalog.base_url"},
		{name: "relative source", mutate: func(s *Settings) { s.Catalog.Sources = []string{"igdb/popular"} }, wantErr: "must start with /"},
		{name: "no sources", mutate: func(s *Settings) { s.Catalog.Sources = nil }, wantErr: "catalog.sources"},
		{name: "bad port", mutate: func(s *Settings) { s.Server.Port = 0 }, wantErr: "server.port"},
		{name: "redis without addr", mutate: func(s *Settings) { s.Store.Driver = "redis" }, wantErr: "store.addr"},
		{name: "unknown driver", mutate: func(s *Settings) { s.Store.Driver = "etcd" }, wantErr: "store.driver"},
		{name: "bad log format", mutate: func(s *Settings) { s.Log.Format = "xml" }, wantErr: "log.format"},
		{name: "zero top k", mutate: func(s *Settings) { s.Recommend.TopK = 0 }, wantErr: "recommend.top_k"},
		{name: "top k above twenty", mutate: func(s *Settings) { s.Recommend.TopK = 21 }, wantErr: "recommend.top_k"},
		{name: "top k at twenty", mutate: func(s *Settings) { s.Recommend.TopK = 20 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			s.Catalog.BaseURL = "http://localhost:8000"
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"MAIN_SERVER_API_BASE_URL": "catalog.base_url",
		"REDIS_ADDR":               "store.addr",
		"PATH":                     "",
		"HOME":                     "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}
