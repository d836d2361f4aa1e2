// Package service implements the credential-acquisition orchestration: the
// silent-then-interactive state machine, deadline-bounded waiting on the
// provider's asynchronous completions, and the account bookkeeping around
// them.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/keybridge-labs/keybridge/internal/broker/domain"
	"github.com/keybridge-labs/keybridge/internal/broker/metrics"
	"github.com/keybridge-labs/keybridge/internal/broker/provider"
	"github.com/keybridge-labs/keybridge/pkg/eventloop"
	"github.com/keybridge-labs/keybridge/pkg/idx"
	"github.com/keybridge-labs/keybridge/pkg/oneshot"
	"github.com/keybridge-labs/keybridge/pkg/slogx"
)

const (
	// DefaultOperationDeadline bounds each wait phase independently: the
	// silent attempt, the interactive attempt and the discovery wait each
	// get their own full budget.
	DefaultOperationDeadline = 60 * time.Second
)

// Fixed user-visible texts. Provider failures carry the provider's own
// diagnostic text instead.
const (
	MsgInteractionRequired = "interactive sign-in required but prompting is disabled; retry with prompting allowed"
	MsgLoginTimeout        = "timed out waiting for login"
	MsgSilentTimeout       = "timed out waiting for silent sign-in"
	MsgDiscoveryTimeout    = "timed out waiting for account discovery"
	MsgNotStarted          = "broker is not started"
)

// Broker orchestrates credential acquisition over the asynchronous
// provider. Each operation owns its ResultCell and correlation ID, so
// distinct invocations are safe concurrently; ordering between concurrent
// operations on the same account is the caller's to arrange.
type Broker struct {
	Provider provider.Provider
	Accounts *AccountService

	// Pump services host event work while an interactive attempt waits.
	// When it also implements provider.UIContext its queue is handed to
	// the provider for completion dispatch.
	Pump eventloop.Pump

	Metrics *metrics.Metrics

	// Deadline overrides DefaultOperationDeadline when positive.
	Deadline time.Duration

	// DefaultAuthority and DefaultScope parameterize SignInSilently,
	// which takes no per-call token parameters.
	DefaultAuthority string
	DefaultScope     string

	mu      sync.Mutex
	started bool
	appID   string
}

// Startup initialises the provider with the broker's identity and log sink.
// Fatal on failure: no other operation is usable unless it returned nil.
func (b *Broker) Startup(clientID, appID, version string, log *slog.Logger) error {
	cfg := provider.Config{
		ClientID: clientID,
		AppID:    appID,
		Version:  version,
		Logger:   log,
	}
	if err := b.Provider.Startup(cfg); err != nil {
		return &domain.OpError{Kind: domain.KindStartupFailure, Message: err.Error()}
	}

	b.mu.Lock()
	b.started = true
	b.appID = appID
	b.mu.Unlock()
	return nil
}

// Shutdown releases the provider. Safe to call once after a successful
// Startup; calls before that are no-ops.
func (b *Broker) Shutdown() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return nil
	}
	b.started = false
	return b.Provider.Shutdown()
}

// Authenticate acquires a credential for the request: a silent attempt when
// the hint resolves to an associated account, then interactive sign-in when
// allowed. Exactly one outcome is returned; a provider completion landing
// after a phase's deadline is accepted by its cell but never observed.
func (b *Broker) Authenticate(ctx context.Context, req domain.AuthRequest) domain.AuthOutcome {
	if !b.isStarted() {
		return domain.Failure(domain.KindStartupFailure, MsgNotStarted)
	}

	correlation := idx.New()
	ctx = slogx.WithCorrelation(ctx, correlation)
	l := slogx.FromContext(ctx)
	d := b.deadline()

	params := provider.TokenParams{
		Authority:   req.Authority,
		Scope:       req.Scope,
		Correlation: correlation,
	}
	if params.Authority == "" {
		params.Authority = b.DefaultAuthority
	}
	if params.Scope == "" {
		params.Scope = b.DefaultScope
	}

	if out, ok := b.trySilent(ctx, req, params, d); ok {
		b.associateBestEffort(ctx, out)
		b.Metrics.IncrementOutcome("silent_success")
		return out
	}
	b.Metrics.IncrementSilentFallback()

	if !req.AllowPrompt {
		l.Info("interaction required, prompting disallowed")
		b.Metrics.IncrementOutcome("interaction_required")
		return domain.Failure(domain.KindInteractionRequired, MsgInteractionRequired)
	}

	out := b.signInInteractive(ctx, req.AccountHint, params, d)
	if out.Succeeded() {
		b.associateBestEffort(ctx, out)
		b.Metrics.IncrementOutcome("interactive_success")
		return out
	}
	b.Metrics.IncrementOutcome(string(out.Err.Kind))
	return out
}

// trySilent runs the hint lookup and silent acquisition. ok is true only
// for a completed success; every other state, and why it happened, is
// collapsed into "silent did not satisfy the request".
func (b *Broker) trySilent(ctx context.Context, req domain.AuthRequest, params provider.TokenParams, d time.Duration) (domain.AuthOutcome, bool) {
	l := slogx.FromContext(ctx)

	if req.AccountHint == "" {
		return domain.AuthOutcome{}, false
	}

	account, found, err := b.Accounts.FindByHint(ctx, params.Correlation, req.AccountHint, d)
	if err != nil {
		l.Warn("hint lookup failed, treating as miss", "error", err)
		return domain.AuthOutcome{}, false
	}
	if !found {
		l.Debug("account hint unmatched")
		return domain.AuthOutcome{}, false
	}

	// Silent means no UI, so nothing needs pumping; a plain bounded wait
	// on the cell is the whole bridge.
	start := time.Now()
	cell := oneshot.NewCell[domain.AuthOutcome]()
	b.Provider.AcquireSilently(account, params, func(out domain.AuthOutcome) { cell.Complete(out) })

	out, ready := cell.Await(d)
	b.Metrics.ObservePhase("silent", time.Since(start))

	switch {
	case !ready:
		l.Info("silent attempt timed out, falling back", "deadline", d)
	case !out.Succeeded():
		l.Info("silent attempt failed, falling back", "reason", out.Err.Message)
	default:
		return out, true
	}
	return domain.AuthOutcome{}, false
}

// signInInteractive runs the provider's UI flow with a fresh deadline
// budget, pumping host event work until the completion lands.
func (b *Broker) signInInteractive(ctx context.Context, hint string, params provider.TokenParams, d time.Duration) domain.AuthOutcome {
	l := slogx.FromContext(ctx)
	start := time.Now()

	cell := oneshot.NewCell[domain.AuthOutcome]()
	b.Provider.SignInInteractively(b.uiContext(), hint, params, func(out domain.AuthOutcome) { cell.Complete(out) })

	// The provider may complete before posting any UI work (validation
	// failures); in that case there is nothing to pump and a blocking
	// fetch would wait on an event that never comes.
	if out, ok := cell.TryGet(); ok {
		b.Metrics.ObservePhase("interactive", time.Since(start))
		return out
	}

	b.Metrics.PumpStarted()
	ready := b.Pump.PumpUntil(cell.Done(), d)
	b.Metrics.PumpFinished()
	b.Metrics.ObservePhase("interactive", time.Since(start))

	if !ready {
		l.Warn("interactive sign-in timed out", "deadline", d)
		return domain.Failure(domain.KindTimeout, MsgLoginTimeout)
	}

	out, _ := cell.TryGet()
	return out
}

// SignInSilently acquires a credential for the provider's default identity.
// Single step: no hint, no interactive fallback, no association.
func (b *Broker) SignInSilently(ctx context.Context) domain.AuthOutcome {
	if !b.isStarted() {
		return domain.Failure(domain.KindStartupFailure, MsgNotStarted)
	}

	correlation := idx.New()
	ctx = slogx.WithCorrelation(ctx, correlation)
	l := slogx.FromContext(ctx)
	d := b.deadline()

	params := provider.TokenParams{
		Authority:   b.DefaultAuthority,
		Scope:       b.DefaultScope,
		Correlation: correlation,
	}

	start := time.Now()
	cell := oneshot.NewCell[domain.AuthOutcome]()
	b.Provider.SignInSilently(params, func(out domain.AuthOutcome) { cell.Complete(out) })

	out, ready := cell.Await(d)
	b.Metrics.ObservePhase("signin_silent", time.Since(start))

	if !ready {
		l.Warn("silent sign-in timed out", "deadline", d)
		return domain.Failure(domain.KindTimeout, MsgSilentTimeout)
	}
	return out
}

// ListAccounts refreshes the directory and returns every account annotated
// with its associations. A discovery timeout yields zero accounts and an
// error, never a partial list.
func (b *Broker) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	if !b.isStarted() {
		return nil, &domain.OpError{Kind: domain.KindStartupFailure, Message: MsgNotStarted}
	}

	correlation := idx.New()
	ctx = slogx.WithCorrelation(ctx, correlation)
	d := b.deadline()

	start := time.Now()
	accounts, err := b.Accounts.DiscoverAndList(ctx, correlation, d)
	b.Metrics.ObservePhase("discovery", time.Since(start))
	if err != nil {
		return nil, err
	}

	b.Metrics.SetAccountsDiscovered(len(accounts))
	return accounts, nil
}

// Logout removes this application's association from every associated
// account. Always succeeds locally: per-account provider failures are
// logged, never aggregated into the return value.
func (b *Broker) Logout(ctx context.Context) error {
	if !b.isStarted() {
		return &domain.OpError{Kind: domain.KindStartupFailure, Message: MsgNotStarted}
	}

	correlation := idx.New()
	ctx = slogx.WithCorrelation(ctx, correlation)

	b.mu.Lock()
	appID := b.appID
	b.mu.Unlock()

	removed := b.Accounts.DisassociateAll(ctx, correlation, appID, b.deadline())
	slogx.FromContext(ctx).Info("logout completed", "accounts_disassociated", removed)
	return nil
}

// associateBestEffort records the association so future calls with the same
// hint can go silently. Failure here does not fail the acquisition.
func (b *Broker) associateBestEffort(ctx context.Context, out domain.AuthOutcome) {
	if out.Account == nil {
		return
	}
	if err := b.Accounts.Associate(ctx, *out.Account); err != nil {
		slogx.FromContext(ctx).Warn("account association failed",
			"account_id", out.Account.ID, "error", err)
	}
}

// uiContext exposes the pump's dispatch queue to the provider when it has
// one. A plain bounded wait has no queue; the provider then completes
// directly.
func (b *Broker) uiContext() provider.UIContext {
	if ui, ok := b.Pump.(provider.UIContext); ok {
		return ui
	}
	return nil
}

func (b *Broker) deadline() time.Duration {
	if b.Deadline > 0 {
		return b.Deadline
	}
	return DefaultOperationDeadline
}

func (b *Broker) isStarted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.started
}

// Started reports whether Startup has completed successfully and Shutdown
// has not yet been called. Readiness probes use it.
func (b *Broker) Started() bool {
	return b.isStarted()
}
