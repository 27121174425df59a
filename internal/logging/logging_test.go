package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestFromContext(t *testing.T) {
	t.Parallel()

	stored := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	tests := []struct {
		name     string
		ctx      context.Context
		fallback *slog.Logger
		want     *slog.Logger
	}{
		{
			name:     "returns stored logger",
			ctx:      WithLogger(context.Background(), stored),
			fallback: fallback,
			want:     stored,
		},
		{
			name:     "falls back when context has no logger",
			ctx:      context.Background(),
			fallback: fallback,
			want:     fallback,
		},
		{
			name:     "nil context uses fallback",
			ctx:      nil,
			fallback: fallback,
			want:     fallback,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := FromContext(tc.ctx, tc.fallback)
			if got != tc.want {
				t.Fatalf("FromContext returned unexpected logger")
			}
		})
	}
}

func TestFromContext_NeverNil(t *testing.T) {
	t.Parallel()

	logger := FromContext(context.Background(), nil)
	if logger == nil {
		t.Fatal("FromContext returned nil logger")
	}
	// Must be safe to use.
	logger.Info("discarded")
}

func TestMultiHandler_FansOut(t *testing.T) {
	t.Parallel()

	var first, second bytes.Buffer
	handler := MultiHandler(
		slog.NewTextHandler(&first, nil),
		nil,
		slog.NewTextHandler(&second, &slog.HandlerOptions{Level: slog.LevelError}),
	)

	logger := slog.New(handler)
	logger.Info("payment applied")
	logger.Error("payment failed")

	if !strings.Contains(first.String(), "payment applied") || !strings.Contains(first.String(), "payment failed") {
		t.Errorf("first handler missing records: %q", first.String())
	}
	if strings.Contains(second.String(), "payment applied") {
		t.Errorf("second handler received record below its level: %q", second.String())
	}
	if !strings.Contains(second.String(), "payment failed") {
		t.Errorf("second handler missing error record: %q", second.String())
	}
}

func TestMultiHandler_Empty(t *testing.T) {
	t.Parallel()

	handler := MultiHandler()
	if handler == nil {
		t.Fatal("MultiHandler returned nil")
	}
	// Must be safe to log through.
	slog.New(handler).Info("discarded")
}
