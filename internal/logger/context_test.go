package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestFromContext_RoundTrip(t *testing.T) {
	base := zap.NewNop().With(zap.String("request_id", "abc"))
	ctx := ContextWithLogger(context.Background(), base)

	if got := FromContext(ctx); got != base {
		t.Error("expected the stored logger back")
	}
}

func TestFromContext_MissingLoggerIsNop(t *testing.T) {
	if got := FromContext(context.Background()); got == nil {
		t.Fatal("expected a non-nil fallback logger")
	}
}
