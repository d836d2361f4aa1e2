package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/keybridge-labs/keybridge/internal/broker/domain"
	"github.com/keybridge-labs/keybridge/internal/broker/profile"
	"github.com/keybridge-labs/keybridge/pkg/brokersdk"
)

// accountInfo converts a domain account into its wire form.
func accountInfo(acct domain.Account) brokersdk.AccountInfo {
	return brokersdk.AccountInfo{
		ID:             acct.ID,
		Username:       acct.Username,
		DisplayName:    acct.DisplayName,
		AssociatedApps: acct.AssociatedWith(),
	}
}

// outcomeResponse converts a successful authentication outcome into its wire
// form. The caller must have checked Succeeded first.
func outcomeResponse(out domain.AuthOutcome) brokersdk.AuthenticateResponse {
	return brokersdk.AuthenticateResponse{
		Account: accountInfo(*out.Account),
		Credential: brokersdk.CredentialInfo{
			Token:     out.Credential.Token,
			ExpiresAt: out.Credential.ExpiresAt,
		},
	}
}

// writeBrokerError maps a broker failure onto the wire, preserving its kind
// and diagnostic text.
func writeBrokerError(w http.ResponseWriter, opErr *domain.OpError) {
	code := string(opErr.Kind)
	brokersdk.NewAPIError(brokersdk.StatusForCode(code), code, opErr.Message).WriteError(w)
}

// writeError maps any broker error onto the wire. Errors that are not broker
// failures become opaque 500s.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var opErr *domain.OpError
	if errors.As(err, &opErr) {
		writeBrokerError(w, opErr)
		return
	}

	log.Error("unclassified broker error", "error", err)
	brokersdk.ErrServerError.WriteError(w)
}

// rememberAccount persists the last successful account so later requests can
// ask for it with use_last. Persistence failures never fail the request.
func rememberAccount(log *slog.Logger, profiles *profile.Store, accountID string) {
	if profiles == nil {
		return
	}
	if err := profiles.Save(profile.Profile{LastAccountID: accountID}); err != nil {
		log.Warn("failed to persist last account", "error", err)
	}
}
