package http

import (
	"net/http"

	"github.com/keybridge-labs/keybridge/internal/broker/profile"
	"github.com/keybridge-labs/keybridge/internal/broker/service"
	"github.com/keybridge-labs/keybridge/pkg/slogx"
)

// LogoutHandler handles the application-wide logout endpoint.
type LogoutHandler struct {
	Broker   *service.Broker
	Profiles *profile.Store
}

// ServeHTTP handles POST /v1/logout
//
//	@Summary		Logout
//	@Description	Disassociates every provider account from this application and clears the locally remembered last account.
//	@Description	Logout is best effort: per-account provider failures are logged, not returned, so a started broker always answers 204.
//	@Tags			Accounts
//	@Produce		json
//	@Success		204	"all associations dropped"
//	@Failure		503	{object}	brokersdk.ErrorResponse	"broker not started"
//	@Router			/v1/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := h.Broker.Logout(ctx); err != nil {
		writeError(w, log, err)
		return
	}

	if h.Profiles != nil {
		if err := h.Profiles.Clear(); err != nil {
			log.Warn("failed to clear profile", "error", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
