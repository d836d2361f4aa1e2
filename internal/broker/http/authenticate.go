package http

import (
	"log/slog"
	"net/http"

	"github.com/keybridge-labs/keybridge/internal/broker/domain"
	"github.com/keybridge-labs/keybridge/internal/broker/profile"
	"github.com/keybridge-labs/keybridge/internal/broker/service"
	"github.com/keybridge-labs/keybridge/pkg/brokersdk"
	"github.com/keybridge-labs/keybridge/pkg/httpx"
	"github.com/keybridge-labs/keybridge/pkg/slogx"
)

// AuthenticateHandler handles the full credential acquisition endpoint.
type AuthenticateHandler struct {
	Broker   *service.Broker
	Profiles *profile.Store
}

// ServeHTTP handles POST /v1/authenticate
//
//	@Summary		Acquire Credential
//	@Description	Runs one full credential acquisition: a silent attempt when an account hint is available, then an interactive fallback when the request allows prompting.
//	@Description	The request may hold the connection for up to one silent and one interactive phase; size client timeouts accordingly.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		brokersdk.AuthenticateRequest	true	"Acquisition request"
//	@Success		200		{object}	brokersdk.AuthenticateResponse	"account and credential"
//	@Failure		400		{object}	brokersdk.ErrorResponse			"error, error_description"
//	@Failure		409		{object}	brokersdk.ErrorResponse			"interaction required but prompting disallowed"
//	@Failure		502		{object}	brokersdk.ErrorResponse			"provider failure"
//	@Failure		503		{object}	brokersdk.ErrorResponse			"broker not started"
//	@Failure		504		{object}	brokersdk.ErrorResponse			"phase deadline elapsed"
//	@Router			/v1/authenticate [post].
func (h *AuthenticateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req brokersdk.AuthenticateRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		brokersdk.NewAPIError(
			http.StatusBadRequest,
			brokersdk.ErrorCodeInvalidRequest,
			"invalid JSON in request body",
		).WriteError(w)
		return
	}

	hint := req.AccountHint
	if hint == "" && req.UseLast {
		hint = h.lastAccountID(log)
	}

	out := h.Broker.Authenticate(ctx, domain.AuthRequest{
		Authority:   req.Authority,
		Scope:       req.Scope,
		AccountHint: hint,
		AllowPrompt: req.AllowPrompt,
	})
	if !out.Succeeded() {
		writeBrokerError(w, out.Err)
		return
	}

	rememberAccount(log, h.Profiles, out.Account.ID)
	httpx.WriteJSON(w, http.StatusOK, outcomeResponse(out))
}

// lastAccountID resolves use_last into an ordinary account hint. A missing
// or unreadable profile simply means no hint.
func (h *AuthenticateHandler) lastAccountID(log *slog.Logger) string {
	if h.Profiles == nil {
		return ""
	}

	p, err := h.Profiles.Load()
	if err != nil {
		log.Warn("failed to load profile", "error", err)
		return ""
	}
	return p.LastAccountID
}
