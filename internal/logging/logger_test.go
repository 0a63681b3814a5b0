package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewHandlerFormats(t *testing.T) {
	tests := []struct {
		format string
		check  func(t *testing.T, out string)
	}{
		{"json", func(t *testing.T, out string) {
			var m map[string]any
			if err := json.Unmarshal([]byte(out), &m); err != nil {
				t.Fatalf("json output did not parse: %v (%q)", err, out)
			}
			if m["msg"] != "layer imported" || m["features"] != float64(2) {
				t.Errorf("json record = %v", m)
			}
		}},
		{"text", func(t *testing.T, out string) {
			if !strings.Contains(out, `msg="layer imported"`) || !strings.Contains(out, "features=2") {
				t.Errorf("text output = %q", out)
			}
		}},
		{"console", func(t *testing.T, out string) {
			if !strings.Contains(out, "layer imported") || !strings.Contains(out, "features") {
				t.Errorf("console output = %q", out)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(newHandler(&buf, "info", tt.format))
			logger.Info("layer imported", "features", 2)
			tt.check(t, buf.String())
		})
	}
}

func TestZerologHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newZerologHandler(&buf, slog.LevelInfo)).With("layer_id", "abc")

	logger.Debug("hidden")
	logger.Warn("import rejected", "bytes", int64(12), "error", errors.New("bad row"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &m); err != nil {
		t.Fatalf("output did not parse: %v", err)
	}
	if m["level"] != "warn" || m["message"] != "import rejected" {
		t.Errorf("record = %v", m)
	}
	if m["layer_id"] != "abc" || m["bytes"] != float64(12) || m["error"] != "bad row" {
		t.Errorf("attributes = %v", m)
	}
}

func TestZerologHandlerWithAttrsDoesNotAlias(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(newZerologHandler(&buf, slog.LevelInfo)).With("a", 1)

	first := base.With("b", 2)
	_ = base.With("c", 3)
	first.Info("x")

	if strings.Contains(buf.String(), `"c"`) {
		t.Errorf("sibling logger attribute leaked: %q", buf.String())
	}
}

func TestFromContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	WithFields(ctx, "layer_id", "abc").Info("hello")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-42"`) || !strings.Contains(out, `"layer_id":"abc"`) {
		t.Errorf("output = %q", out)
	}
}
