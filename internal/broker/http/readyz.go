package http

import (
	"context"
	"net/http"
	"time"

	"github.com/keybridge-labs/keybridge/internal/broker/service"
	"github.com/keybridge-labs/keybridge/pkg/brokersdk"
	"github.com/keybridge-labs/keybridge/pkg/httpx"
)

// Pinger verifies connectivity to the identity provider's backing resources.
// Providers without a health surface leave it nil, which skips the check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	Includes uptime, version, and status of the broker and the identity provider connection
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	brokersdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	brokersdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	broker *service.Broker,
	pinger Pinger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &brokersdk.HealthChecks{
			Broker:   "ok",
			Provider: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		// Check that broker startup completed
		if !broker.Started() {
			checks.Broker = "error: not started"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		// Check provider connectivity
		if pinger == nil {
			checks.Provider = "skipped"
		} else if err := pinger.Ping(r.Context()); err != nil {
			checks.Provider = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := brokersdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
