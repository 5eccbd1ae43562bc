package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupWriterJSON(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "info")

	var buf bytes.Buffer
	l := SetupWriter(&buf)
	l.Info("favorite_added", "id", "abc")
	l.Debug("dropped")

	out := buf.String()
	if !strings.Contains(out, `"msg":"favorite_added"`) {
		t.Fatalf("expected json record, got %q", out)
	}
	if strings.Contains(out, "dropped") {
		t.Fatalf("debug record should be filtered at info level: %q", out)
	}
	if L() != l {
		t.Fatalf("L() should return the logger installed by SetupWriter")
	}
}
