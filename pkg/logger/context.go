package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// Into stores l in ctx, replacing any logger already there.
func Into(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// With stores the context logger extended with fields.
func With(ctx context.Context, fields ...any) context.Context {
	return Into(ctx, From(ctx).With(fields...))
}

// WithRequestID tags the context logger with the inbound request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return With(ctx, "request_id", requestID)
}

// WithPrincipal tags the context logger with the authenticated caller.
func WithPrincipal(ctx context.Context, userID, role string) context.Context {
	return With(ctx, "user_id", userID, "role", role)
}

// From returns the logger stored in ctx, or the process logger.
func From(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return LoggerWrapper()
	}
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return LoggerWrapper()
}
