package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/keybridge-labs/keybridge/internal/broker/profile"
	"github.com/keybridge-labs/keybridge/internal/broker/service"
	"github.com/keybridge-labs/keybridge/pkg/httpx"
	"github.com/keybridge-labs/keybridge/pkg/slogx"

	_ "github.com/keybridge-labs/keybridge/api/broker" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	broker       *service.Broker
	profiles     *profile.Store
	pinger       Pinger
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
}

func NewRouter(
	broker *service.Broker,
	profiles *profile.Store,
	pinger Pinger,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		broker:       broker,
		profiles:     profiles,
		pinger:       pinger,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
	}

	// Set default middleware chain. The request logger sits outermost so it
	// records the 500s the recoverer produces.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
		httpx.ClientNameMiddleware(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAccounts()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Keybridge Broker Daemon API
//	@version		0.1.0
//	@description	Local HTTP surface of the keybridge credential broker. Host applications ask the daemon
//	@description	for credentials; the daemon drives the identity provider's silent and interactive flows,
//	@description	enforces per-phase deadlines, and keeps account associations per application.
//	@description
//	@description	The daemon is meant to listen on loopback only. Callers identify themselves with the
//	@description	X-Client-Name header so rate limits and logs can tell host applications apart.
//
//	@contact.name	Keybridge Labs
//	@contact.url	https://github.com/keybridge-labs/keybridge
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8180
//	@BasePath		/
//
//	@schemes		http
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /v1/authenticate - strict rate limit (may pop interactive sign-in UI)
	authHandler := &AuthenticateHandler{Broker: r.broker, Profiles: r.profiles}
	r.Mux.Handle("POST /v1/authenticate",
		httpx.Chain(authHandler,
			httpx.RateLimitByIPAndClient(httpx.StrictLimit),
		),
	)

	// POST /signin/silent - moderate rate limit (no UI, still mints credentials)
	silentHandler := &SignInSilentlyHandler{Broker: r.broker, Profiles: r.profiles}
	r.Mux.Handle("POST /v1/signin/silent",
		httpx.Chain(silentHandler,
			httpx.RateLimitByIPAndClient(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAccounts() {
	// GET /accounts - lenient rate limit, but each call runs a discovery pass
	accountsHandler := &AccountsHandler{Broker: r.broker}
	r.Mux.Handle("GET /v1/accounts",
		httpx.Chain(accountsHandler,
			httpx.RateLimitByIPAndClient(httpx.LenientLimit),
		),
	)

	// POST /logout - moderate rate limit (state-changing but cheap)
	logoutHandler := &LogoutHandler{Broker: r.broker, Profiles: r.profiles}
	r.Mux.Handle("POST /v1/logout",
		httpx.Chain(logoutHandler,
			httpx.RateLimitByIPAndClient(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.broker, r.pinger),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// Prometheus metrics
	r.Mux.Handle("GET /metrics",
		httpx.Chain(promhttp.Handler(),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
