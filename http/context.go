package http

import (
	"context"

	"github.com/rs/zerolog"
)

// NewContext returns a new Context that carries the request logger.
func NewContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, valueKey, contextValue{
		logger: logger,
	})
}

// FromContext returns the logger stored in ctx. A no-op logger is
// returned when none is present.
func FromContext(ctx context.Context) zerolog.Logger {
	v, ok := ctx.Value(valueKey).(contextValue)
	if !ok {
		return zerolog.Nop()
	}
	return v.logger
}

// contextValue is the set of data passed with Context.
type contextValue struct {
	logger zerolog.Logger
}

// contextKey is an unexported type for preventing context key collisions.
type contextKey int

// valueKey is the key used to store the context value.
const valueKey contextKey = 0
