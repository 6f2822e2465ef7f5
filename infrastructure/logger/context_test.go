package logger_test

import (
	"context"
	"testing"

	"github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
)

func newTestLogger(t *testing.T) logger.Logger {
	t.Helper()
	l, err := logger.New(logger.Config{Level: "debug", OutputPaths: []string{"stderr"}})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return l
}

func TestFromContext_ReturnsStoredLogger(t *testing.T) {
	t.Parallel()

	l := newTestLogger(t).With(logger.String("request_id", "abc"))
	ctx := logger.WithContext(context.Background(), l)

	if got := logger.FromContext(ctx); got != l {
		t.Errorf("FromContext returned %v, want stored logger", got)
	}
}

func TestFromContext_FallbackWhenMissing(t *testing.T) {
	t.Parallel()

	got := logger.FromContext(context.Background())
	if got == nil {
		t.Fatal("FromContext returned nil, want fallback logger")
	}
	got.Warn("fallback reachable", logger.Int64("link_id", 7))
}

func TestFromContextOr(t *testing.T) {
	t.Parallel()

	stored := newTestLogger(t)
	def := logger.NewNop()

	if got := logger.FromContextOr(context.Background(), def); got != def {
		t.Error("FromContextOr ignored the default on an empty context")
	}
	ctx := logger.WithContext(context.Background(), stored)
	if got := logger.FromContextOr(ctx, def); got != stored {
		t.Error("FromContextOr preferred the default over the stored logger")
	}
	if logger.FromContextOr(context.Background(), nil) == nil {
		t.Error("FromContextOr returned nil with a nil default")
	}
}

func TestWithContext_LastWriteWins(t *testing.T) {
	t.Parallel()

	first := newTestLogger(t)
	second := newTestLogger(t)

	ctx := logger.WithContext(context.Background(), first)
	ctx = logger.WithContext(ctx, second)

	if logger.FromContext(ctx) != second {
		t.Error("FromContext returned the first logger, want the second")
	}
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	t.Parallel()

	if _, err := logger.New(logger.Config{Level: "verbose", OutputPaths: []string{"stderr"}}); err != nil {
		t.Fatalf("logger.New with unknown level: %v", err)
	}
}
