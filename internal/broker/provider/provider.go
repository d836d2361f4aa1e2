// Package provider defines the boundary to the identity-provider subsystem.
// The provider is a black box: it discovers accounts, renews credentials
// silently, runs interactive sign-in and records per-application account
// associations. Its asynchronous operations return immediately and report
// through a callback from a provider-internal goroutine; synchronous reads
// serve the directory as of the last completed discovery.
package provider

import (
	"context"
	"errors"
	"log/slog"

	"github.com/keybridge-labs/keybridge/internal/broker/domain"
	"github.com/keybridge-labs/keybridge/pkg/idx"
)

var (
	// ErrNotStarted reports use of a provider before Startup succeeded.
	ErrNotStarted = errors.New("provider: not started")

	// ErrNotDiscovered reports a directory read before any discovery
	// completed. Callers run DiscoverAccounts first.
	ErrNotDiscovered = errors.New("provider: directory not discovered")

	// ErrNotFound reports an unknown account identifier.
	ErrNotFound = errors.New("provider: account not found")
)

// Config carries the broker's identity into the provider at startup. The
// logger is handed over explicitly; providers must not log through a
// package global.
type Config struct {
	// ClientID identifies the broker installation to the identity system.
	ClientID string

	// AppID is the application identity association state is scoped to.
	AppID string

	// Version of the hosting application, for the provider's diagnostics.
	Version string

	Logger *slog.Logger
}

// UIContext is the host surface an interactive sign-in renders on. The
// provider posts UI work, including its own completion dispatch, to it; the
// goroutine that initiated the sign-in services the queue.
type UIContext interface {
	Post(fn func())
}

// TokenParams carry the request parameters of one token acquisition.
// Authority and Scope are opaque strings the broker passes through
// unexamined. Correlation ties the provider's diagnostics to the broker
// operation that issued the call.
type TokenParams struct {
	Authority   string
	Scope       string
	Correlation idx.ID
}

// CompletionFunc receives the outcome of an asynchronous operation. The
// provider invokes it exactly once, possibly after every waiter has timed
// out; implementations must stay safe to call at any point.
type CompletionFunc func(domain.AuthOutcome)

// Provider is the closed identity subsystem the broker orchestrates.
//
// Asynchronous operations (DiscoverAccounts, AcquireSilently,
// SignInSilently, SignInInteractively) take no context: there is no
// cancellation at this boundary. The deadline lives entirely on the waiting
// side, and a completion that arrives late must still be deliverable.
type Provider interface {
	// Startup initialises the provider. Fatal on failure; no other method
	// may be used unless it returned nil.
	Startup(cfg Config) error

	// Shutdown releases provider resources. Safe to call once after a
	// successful Startup.
	Shutdown() error

	// DiscoverAccounts refreshes the account directory. done receives the
	// discovery error, nil on success.
	DiscoverAccounts(correlation idx.ID, done func(error))

	// AssociatedAccounts lists accounts associated with the configured
	// application identity. Valid only after a completed discovery.
	AssociatedAccounts(ctx context.Context) ([]domain.Account, error)

	// AllAccounts lists every account in the directory. Valid only after a
	// completed discovery.
	AllAccounts(ctx context.Context) ([]domain.Account, error)

	// AccountByID fetches a single account snapshot.
	AccountByID(ctx context.Context, id string) (domain.Account, error)

	// AcquireSilently renews a credential for a known account without UI.
	AcquireSilently(account domain.Account, p TokenParams, done CompletionFunc)

	// SignInSilently acquires a credential for the provider's default
	// account without UI and without a caller-supplied account.
	SignInSilently(p TokenParams, done CompletionFunc)

	// SignInInteractively runs the UI sign-in flow. hint preselects an
	// account. Completion may be dispatched through ui, so the caller must
	// pump it; validation failures may complete directly before any UI
	// work is posted.
	SignInInteractively(ui UIContext, hint string, p TokenParams, done CompletionFunc)

	// Associate records the account as usable by the configured
	// application identity. Idempotent.
	Associate(ctx context.Context, account domain.Account) error

	// Disassociate removes the association between the account and the
	// given application identity only.
	Disassociate(ctx context.Context, account domain.Account, appID string) error
}
