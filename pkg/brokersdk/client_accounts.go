package brokersdk

import (
	"context"
	"net/http"
)

// ListAccounts runs a fresh account discovery on the daemon and returns the
// provider's current account directory. A discovery timeout yields an
// APIError and no accounts, never a partial listing.
func (c *Client) ListAccounts(ctx context.Context) (*ListAccountsResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/accounts", nil, nil)
	if err != nil {
		return nil, err
	}

	var listResp ListAccountsResponse
	if err := decodeJSON(resp, &listResp, http.StatusOK); err != nil {
		return nil, err
	}

	return &listResp, nil
}

// Logout disassociates every provider account from the daemon's application
// and clears the locally remembered last account. The daemon treats logout as
// best effort: per-account provider failures are logged there, not returned
// here, so a reachable daemon always answers 204.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/logout", nil, nil)
	if err != nil {
		return err
	}

	return checkStatusNoContent(resp)
}
