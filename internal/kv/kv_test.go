package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "k", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, err := s.Get(ctx, "k")
	if err != nil || string(v) != `{"a":2}` {
		t.Fatalf("get: %q / %v", v, err)
	}
	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove absent key: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryCopiesValues(t *testing.T) {
	m := NewMemory()
	buf := []byte("abc")
	_ = m.Set(context.Background(), "k", buf)
	buf[0] = 'x'
	v, _ := m.Get(context.Background(), "k")
	if string(v) != "abc" {
		t.Fatalf("stored value aliased caller buffer: %q", v)
	}
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	s, err := Open(context.Background(), Options{Driver: "sqlite", DSN: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")
	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set(ctx, "weather-theme", []byte(`"dark"`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	_ = s.Close()

	s, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	v, err := s.Get(ctx, "weather-theme")
	if err != nil || string(v) != `"dark"` {
		t.Fatalf("value lost across reopen: %q / %v", v, err)
	}
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	s, err := Open(context.Background(), Options{Driver: "redis", RedisAddr: addr, RedisPass: os.Getenv("REDIS_PASS")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestPostgres(t *testing.T) {
	dsn := os.Getenv("KV_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("KV_TEST_POSTGRES_DSN not set")
	}
	s, err := Open(context.Background(), Options{Driver: "postgres", DSN: dsn})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "etcd"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
