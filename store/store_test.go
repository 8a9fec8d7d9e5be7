package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rushteam/gamerec/core"
)

func exerciseStore(t *testing.T, s core.Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get(missing) err = %v, want not found", err)
	}

	if err := s.Set(ctx, "a", []byte("1")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "a")
	if err != nil || string(got) != "1" {
		t.Fatalf("Get(a) = %q, %v", got, err)
	}

	if err := s.BatchSet(ctx, map[string][]byte{"b": []byte("2"), "c": []byte("3")}); err != nil {
		t.Fatal(err)
	}
	batch, err := s.BatchGet(ctx, []string{"a", "b", "c", "missing"})
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 3 || string(batch["c"]) != "3" {
		t.Errorf("BatchGet() = %v", batch)
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "a"); !core.IsStoreNotFound(err) {
		t.Errorf("Get(a) after delete err = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseStore(t, s)
}

func TestMemoryStoreTTL(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	_ = s.Set(ctx, "k", []byte("v"), 1)
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("Get() before expiry err = %v", err)
	}

	s.mu.Lock()
	s.data["k"].expire = time.Now().Add(-time.Second)
	s.mu.Unlock()

	if _, err := s.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("Get() after expiry err = %v", err)
	}
	if got, _ := s.BatchGet(ctx, []string{"k"}); len(got) != 0 {
		t.Errorf("BatchGet() after expiry = %v", got)
	}
}

func TestMemoryStoreCloseTwice(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNew(t *testing.T) {
	s, err := New(Config{})
	if err != nil || s.Name() != "memory" {
		t.Fatalf("New(default) = %v, %v", s, err)
	}
	_ = s.Close()

	if _, err := New(Config{Driver: "etcd"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	s, err := NewRedisStore(RedisConfig{Addr: addr, KeyPrefix: "gamerec:test:"})
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}
