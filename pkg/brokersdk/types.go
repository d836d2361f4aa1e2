package brokersdk

// ============================================================================
// Internal Response Types (used for JSON unmarshaling)
// ============================================================================

// ErrorResponse is the wire form of a broker failure.
// This is used internally for parsing HTTP error responses.
// Client code should use the APIError type from errors.go instead.
type ErrorResponse struct {
	// Error is the broker error code (e.g., "timeout", "interaction_required")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Authentication Types
// ============================================================================

// AuthenticateRequest describes one credential acquisition.
// All fields are optional; an empty request asks for the daemon's configured
// default authority and scope with prompting disabled.
type AuthenticateRequest struct {
	// Authority is the identity authority to authenticate against.
	// Empty means the daemon's configured default.
	Authority string `json:"authority,omitempty"`

	// Scope is the access scope the credential must carry.
	// Empty means the daemon's configured default.
	Scope string `json:"scope,omitempty"`

	// AccountHint is the identifier of the account to try silently first.
	// Without a hint the broker skips straight to the interactive decision.
	AccountHint string `json:"account_hint,omitempty"`

	// AllowPrompt permits the broker to fall back to an interactive sign-in
	// when the silent path cannot produce a credential.
	AllowPrompt bool `json:"allow_prompt"`

	// UseLast asks the daemon to fill AccountHint from the locally remembered
	// last successful account. An explicit AccountHint takes precedence.
	UseLast bool `json:"use_last,omitempty"`
}

// CredentialInfo is an acquired credential.
type CredentialInfo struct {
	// Token is the opaque credential material
	Token string `json:"token"`

	// ExpiresAt is the credential expiry as a Unix timestamp in seconds
	ExpiresAt int64 `json:"expires_at"`
}

// AccountInfo describes one provider account as the broker sees it.
type AccountInfo struct {
	// ID is the provider's stable identifier for the account
	ID string `json:"id"`

	// Username is the account's sign-in name
	Username string `json:"username"`

	// DisplayName is the human-readable account name
	DisplayName string `json:"display_name,omitempty"`

	// AssociatedApps lists the application IDs this account is associated with
	AssociatedApps []string `json:"associated_apps,omitempty"`
}

// AuthenticateResponse is the successful outcome of an authentication:
// the resolved account together with its freshly acquired credential.
type AuthenticateResponse struct {
	Account    AccountInfo    `json:"account"`
	Credential CredentialInfo `json:"credential"`
}

// ============================================================================
// Account Types
// ============================================================================

// ListAccountsResponse contains the accounts known to the identity provider
// after a fresh discovery pass.
type ListAccountsResponse struct {
	Accounts []AccountInfo `json:"accounts"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
// Used in the /readyz endpoint to indicate the status of each component.
type HealthChecks struct {
	// Broker indicates whether the broker completed startup
	Broker string `json:"broker"`

	// Provider indicates the identity provider connection status
	Provider string `json:"provider"`
}
