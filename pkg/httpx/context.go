package httpx

import "context"

type ctxKey string

const (
	// CtxKeyClientName holds the self-reported name of the host application
	// talking to the daemon.
	CtxKeyClientName ctxKey = "client_name"
)

func WithClientName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, CtxKeyClientName, name)
}

// ClientNameFromContext returns the host application name attached by
// ClientNameMiddleware, or "" when the caller did not identify itself.
func ClientNameFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyClientName).(string); ok {
		return v
	}
	return ""
}
