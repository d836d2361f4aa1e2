package domain

import "errors"

// ErrorKind classifies broker failures for callers. Account-hint misses are
// deliberately absent: a miss only triggers fallback and is never surfaced.
type ErrorKind string

const (
	// KindStartupFailure is fatal; the broker is unusable afterwards.
	KindStartupFailure ErrorKind = "startup_failure"

	// KindInteractionRequired means the silent path could not satisfy the
	// request and prompting was disallowed.
	KindInteractionRequired ErrorKind = "interaction_required"

	// KindTimeout means a silent, interactive or discovery deadline
	// elapsed before the provider completed.
	KindTimeout ErrorKind = "timeout"

	// KindProviderError carries the provider's own diagnostic text,
	// unmodified.
	KindProviderError ErrorKind = "provider_error"
)

// OpError is a broker failure carried as data, inside an AuthOutcome or
// returned from listing operations.
type OpError struct {
	Kind    ErrorKind
	Message string
}

func (e *OpError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Message
}

// IsKind reports whether err is an OpError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	return errors.As(err, &oe) && oe.Kind == kind
}
