package logger

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taskfolio/taskfolio-api/internal/config"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
	}{
		{name: "debug level", logLevel: "debug"},
		{name: "info level", logLevel: "info"},
		{name: "warn level", logLevel: "warn"},
		{name: "error level", logLevel: "error"},
		{name: "mixed case", logLevel: "INFO"},
		{name: "invalid level falls back to info", logLevel: "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := Setup(config.ServerConfig{LogLevel: tt.logLevel})
			assert.NoError(t, err)
			assert.NotNil(t, log)
			assert.Same(t, log, slog.Default(), "Setup should install the logger as default")
		})
	}
}

func TestWithLoggerAndFromContext(t *testing.T) {
	base := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx := context.Background()
	assert.Same(t, slog.Default(), FromContext(ctx), "empty context should yield the default logger")

	ctx = WithLogger(ctx, base)
	assert.Same(t, base, FromContext(ctx))
}

func TestFromContextOrDefault(t *testing.T) {
	base := slog.New(slog.NewTextHandler(os.Stderr, nil))
	fallback := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// No logger in context: fall back to the provided logger.
	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))

	// Nil fallback: fall through to the process default.
	assert.Same(t, slog.Default(), FromContextOrDefault(context.Background(), nil))

	// Logger in context wins over the fallback.
	ctx := WithLogger(context.Background(), base)
	assert.Same(t, base, FromContextOrDefault(ctx, fallback))
}
