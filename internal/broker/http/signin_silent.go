package http

import (
	"net/http"

	"github.com/keybridge-labs/keybridge/internal/broker/profile"
	"github.com/keybridge-labs/keybridge/internal/broker/service"
	"github.com/keybridge-labs/keybridge/pkg/httpx"
	"github.com/keybridge-labs/keybridge/pkg/slogx"
)

// SignInSilentlyHandler handles the single-step silent acquisition endpoint.
type SignInSilentlyHandler struct {
	Broker   *service.Broker
	Profiles *profile.Store
}

// ServeHTTP handles POST /v1/signin/silent
//
//	@Summary		Silent Sign-In
//	@Description	Acquires a credential for the provider's default signed-in account without any user interaction.
//	@Description	There is no interactive fallback: when no suitable account is signed in the call fails.
//	@Tags			Authentication
//	@Produce		json
//	@Success		200	{object}	brokersdk.AuthenticateResponse	"account and credential"
//	@Failure		502	{object}	brokersdk.ErrorResponse			"provider failure"
//	@Failure		503	{object}	brokersdk.ErrorResponse			"broker not started"
//	@Failure		504	{object}	brokersdk.ErrorResponse			"silent deadline elapsed"
//	@Router			/v1/signin/silent [post].
func (h *SignInSilentlyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	out := h.Broker.SignInSilently(ctx)
	if !out.Succeeded() {
		writeBrokerError(w, out.Err)
		return
	}

	rememberAccount(log, h.Profiles, out.Account.ID)
	httpx.WriteJSON(w, http.StatusOK, outcomeResponse(out))
}
