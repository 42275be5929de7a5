package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestContextWith_Accumulates(t *testing.T) {
	ctx := ContextWith(context.Background(), "request_id", "r1")
	ctx = ContextWith(ctx, "match_id", "m1")

	attrs, _ := ctx.Value(ctxKey{}).([]any)
	if len(attrs) != 4 || attrs[1] != "r1" || attrs[3] != "m1" {
		t.Fatalf("unexpected attrs: %v", attrs)
	}
	if WithContext(ctx) == nil {
		t.Fatalf("nil logger")
	}
}
