// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// contextKey is how we find [*slog.Logger] in a [context.Context].
type contextKey struct{}

var defaultLogger = sync.OnceValue(func() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
})

// NewContext returns a new [context.Context], derived from ctx, which
// carries the provided [*slog.Logger].
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the [*slog.Logger] carried by ctx, or a default
// JSON logger writing to stdout at info level when ctx carries none.
func FromContext(ctx context.Context) *slog.Logger {
	if v, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return v
	}
	return defaultLogger()
}

// With derives a context whose logger carries the given attributes on
// every record it emits.
func With(ctx context.Context, attrs ...any) context.Context {
	return NewContext(ctx, FromContext(ctx).With(attrs...))
}
