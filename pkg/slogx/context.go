package slogx

import (
	"context"
	"log/slog"

	"github.com/keybridge-labs/keybridge/pkg/idx"
)

type ctxKey struct{}

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

func WithRequestID(ctx context.Context, reqID string) context.Context {
	l := FromContext(ctx)
	return WithContext(ctx, l.With("req_id", reqID))
}

// WithCorrelation tags the contextual logger with the correlation ID minted
// for one broker operation, so every record the operation emits can be tied
// back to the provider calls it made.
func WithCorrelation(ctx context.Context, id idx.ID) context.Context {
	l := FromContext(ctx)
	return WithContext(ctx, l.With("correlation_id", id.String()))
}
