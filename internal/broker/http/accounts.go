package http

import (
	"net/http"

	"github.com/keybridge-labs/keybridge/internal/broker/service"
	"github.com/keybridge-labs/keybridge/pkg/brokersdk"
	"github.com/keybridge-labs/keybridge/pkg/httpx"
	"github.com/keybridge-labs/keybridge/pkg/slogx"
)

// AccountsHandler handles the account directory endpoint.
type AccountsHandler struct {
	Broker *service.Broker
}

// ServeHTTP handles GET /v1/accounts
//
//	@Summary		List Provider Accounts
//	@Description	Runs a fresh account discovery and returns the provider's current account directory with per-app association annotations.
//	@Description	A discovery timeout yields an error and no accounts, never a partial listing.
//	@Tags			Accounts
//	@Produce		json
//	@Success		200	{object}	brokersdk.ListAccountsResponse	"accounts"
//	@Failure		502	{object}	brokersdk.ErrorResponse			"provider failure"
//	@Failure		503	{object}	brokersdk.ErrorResponse			"broker not started"
//	@Failure		504	{object}	brokersdk.ErrorResponse			"discovery deadline elapsed"
//	@Router			/v1/accounts [get].
func (h *AccountsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accounts, err := h.Broker.ListAccounts(ctx)
	if err != nil {
		writeError(w, log, err)
		return
	}

	resp := brokersdk.ListAccountsResponse{
		Accounts: make([]brokersdk.AccountInfo, 0, len(accounts)),
	}
	for _, acct := range accounts {
		resp.Accounts = append(resp.Accounts, accountInfo(acct))
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
