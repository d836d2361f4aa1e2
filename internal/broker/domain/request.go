package domain

// AuthRequest describes one credential acquisition.
type AuthRequest struct {
	// Authority and Scope are opaque to the broker and passed through to
	// the provider unexamined.
	Authority string
	Scope     string

	// AccountHint names a previously associated account by its stable
	// identifier. An empty hint skips the silent path entirely.
	AccountHint string

	// AllowPrompt gates the interactive fallback. When false a request the
	// silent path cannot satisfy fails with KindInteractionRequired.
	AllowPrompt bool
}
