// Package httpx carries the HTTP plumbing shared by the broker daemon:
// middleware chaining, JSON request/response helpers and per-client rate
// limiting.
package httpx

import (
	"net/http"

	"github.com/keybridge-labs/keybridge/pkg/slogx"
)

// Middleware wraps a handler with additional behaviour.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to h so that the first middleware listed is the
// outermost one, i.e. the first to see the request.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Recover converts handler panics into a 500 response instead of tearing
// down the whole connection, logging the panic value.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slogx.FromContext(r.Context()).Error("handler panic",
						"panic", rec,
						"path", r.URL.Path,
					)
					WriteJSON(w, http.StatusInternalServerError, map[string]string{
						"error":             "internal_error",
						"error_description": "The server encountered an unexpected condition.",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// ClientNameMiddleware records the X-Client-Name header, when present, in
// the request context and the contextual logger. Host applications identify
// themselves with it so rate limits and logs can tell callers apart.
func ClientNameMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := r.Header.Get("X-Client-Name")
			if name == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithClientName(r.Context(), name)
			ctx = slogx.WithContext(ctx, slogx.FromContext(ctx).With("client", name))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
