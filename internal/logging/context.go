package logging

import (
	"context"
	"slices"

	"github.com/charmbracelet/log"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	fieldsKey
)

// WithLogger attaches logger to ctx. Components that have no logger of
// their own pick it up through FromContext.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// WithFields returns ctx carrying keyvals, which FromContext adds to every
// logger it hands out. Fields accumulate across calls.
func WithFields(ctx context.Context, keyvals ...any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(keyvals) == 0 {
		return ctx
	}
	prev, _ := ctx.Value(fieldsKey).([]any)
	return context.WithValue(ctx, fieldsKey, append(slices.Clip(prev), keyvals...))
}

// FromContext returns the logger for work running under ctx: logger if
// non-nil, else the one attached with WithLogger, else Default. Fields added
// with WithFields are applied to the result.
func FromContext(ctx context.Context, logger *log.Logger) *log.Logger {
	if ctx == nil {
		return OrDefault(logger)
	}
	if logger == nil {
		logger, _ = ctx.Value(loggerKey).(*log.Logger)
	}
	logger = OrDefault(logger)

	if fields, ok := ctx.Value(fieldsKey).([]any); ok && len(fields) > 0 {
		return logger.With(fields...)
	}
	return logger
}
