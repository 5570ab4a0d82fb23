package company

import (
	"context"
	"log/slog"
)

type contextKey struct{}

func SetID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// ID returns the company the request is scoped to.
func ID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}

// LoggerExtractor adds company_id to log records.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := ID(ctx); ok {
			return slog.String("company_id", id), true
		}
		return slog.Attr{}, false
	}
}
