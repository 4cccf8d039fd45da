package logging

import (
	"context"
	"testing"
)

func TestRunIDContext(t *testing.T) {
	ctx := context.Background()
	if got := GetRunID(ctx); got != "" {
		t.Errorf("GetRunID on empty context = %q, want empty", got)
	}

	ctx = WithRunID(ctx, "run-42")
	if got := GetRunID(ctx); got != "run-42" {
		t.Errorf("GetRunID = %q, want run-42", got)
	}
}

func TestInitLoggerReplacesDefault(t *testing.T) {
	before := GetLogger()
	InitLogger(LevelDebug, FormatJSON)
	after := GetLogger()
	if after == nil {
		t.Fatal("GetLogger returned nil after InitLogger")
	}
	if before == after {
		t.Error("InitLogger should install a fresh logger")
	}
}

func TestLoggerFromContextAttachesRunID(t *testing.T) {
	base := GetLogger()
	plain := LoggerFromContext(context.Background())
	if plain != base {
		t.Error("context without a run ID should yield the default logger")
	}
	withID := LoggerFromContext(WithRunID(context.Background(), "r"))
	if withID == base {
		t.Error("context with a run ID should yield a derived logger")
	}
}
