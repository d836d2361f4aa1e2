/*
Package brokersdk provides a client SDK for the keybridge broker daemon.

# Overview

The keybridge daemon brokers credential acquisition between a calling
application and a callback-driven identity provider. This package is the
typed HTTP client for that daemon: every operation maps to one daemon
endpoint, and failures arrive as *APIError values carrying the broker's
error code and diagnostic text.

Create a Client pointed at the daemon's listen address. Setting ClientName
identifies the host application to the daemon's rate limiter and logs:

	client := brokersdk.NewClient("http://127.0.0.1:8180")
	client.ClientName = "settings-app"

	// Acquire a credential, prompting the user if the silent path misses.
	outcome, err := client.Authenticate(ctx, brokersdk.AuthenticateRequest{
		AccountHint: accountID,
		AllowPrompt: true,
	})

	// Acquire without any possibility of UI.
	outcome, err = client.SignInSilently(ctx)

	// Inspect the provider's account directory.
	accounts, err := client.ListAccounts(ctx)

	// Drop every account association for this application.
	err = client.Logout(ctx)

# Error Handling

Daemon failures are *APIError values. The Code field carries the broker's
failure class and Description its human-readable text:

	outcome, err := client.Authenticate(ctx, req)
	var apiErr *brokersdk.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case brokersdk.ErrorCodeInteractionRequired:
			// Retry with AllowPrompt once a prompt is acceptable.
		case brokersdk.ErrorCodeTimeout:
			// A phase deadline elapsed; the provider produced nothing.
		}
	}

A silent-phase failure is never reported through the SDK: the daemon
swallows it and either falls back to the interactive path or returns
ErrorCodeInteractionRequired.

# Timeouts

The default HTTP timeout is DefaultTimeout, sized so that an Authenticate
call can ride out a full silent phase followed by a full interactive phase.
Use a request context for caller-side deadlines rather than lowering the
client timeout below the daemon's phase budget.
*/
package brokersdk
