package brokersdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Authenticate runs one full credential acquisition on the daemon: a silent
// attempt when a hint is available, then an interactive fallback when the
// request allows prompting.
//
// Failures come back as *APIError; check the Code against the ErrorCode
// constants. An ErrorCodeInteractionRequired means the silent path could not
// satisfy the request and prompting was disallowed; retry with AllowPrompt
// set once a prompt is acceptable.
func (c *Client) Authenticate(
	ctx context.Context,
	req AuthenticateRequest,
) (*AuthenticateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}

	resp, err := c.doRequest(
		ctx,
		http.MethodPost,
		"/v1/authenticate",
		bytes.NewReader(body),
		headers,
	)
	if err != nil {
		return nil, err
	}

	var authResp AuthenticateResponse
	if err := decodeJSON(resp, &authResp, http.StatusOK); err != nil {
		return nil, err
	}

	return &authResp, nil
}

// SignInSilently acquires a credential for the daemon's default signed-in
// account without any user interaction. Unlike Authenticate there is no
// fallback: when no suitable account is signed in the call fails.
func (c *Client) SignInSilently(ctx context.Context) (*AuthenticateResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/signin/silent", nil, nil)
	if err != nil {
		return nil, err
	}

	var authResp AuthenticateResponse
	if err := decodeJSON(resp, &authResp, http.StatusOK); err != nil {
		return nil, err
	}

	return &authResp, nil
}
