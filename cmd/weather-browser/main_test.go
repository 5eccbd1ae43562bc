package main

import (
	"context"
	"strings"
	"testing"
)

func TestRunReturnsConfigErrors(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "bogus")

	err := run(context.Background())
	if err == nil || !strings.HasPrefix(err.Error(), "load config:") {
		t.Fatalf("expected a config error, got %v", err)
	}
}

func TestRunReturnsStorageErrors(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("STORAGE_DSN", t.TempDir()+"/missing/dir/weather.db")

	err := run(context.Background())
	if err == nil || !strings.HasPrefix(err.Error(), "open storage:") {
		t.Fatalf("expected a storage error, got %v", err)
	}
}
