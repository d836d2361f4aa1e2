package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/keybridge-labs/keybridge/internal/broker/domain"
	"github.com/keybridge-labs/keybridge/internal/broker/provider"
	"github.com/keybridge-labs/keybridge/pkg/eventloop"
	"github.com/keybridge-labs/keybridge/pkg/idx"
)

const (
	testClientID = "client-under-test"
	testAppID    = "app-under-test"
	otherAppID   = "some-other-app"
)

// fakeProvider is a scripted provider: tests choose each operation's
// outcome, latency and dispatch route, and assert on recorded calls.
type fakeProvider struct {
	mu sync.Mutex

	startErr error
	cfg      provider.Config

	directory   []domain.Account
	discovered  bool
	discoverErr error

	discoverDelay    time.Duration
	silentDelay      time.Duration
	interactiveDelay time.Duration

	// nil outcome means the operation never completes.
	silentOutcome       *domain.AuthOutcome
	signInSilentOutcome *domain.AuthOutcome
	interactiveOutcome  *domain.AuthOutcome

	// interactiveDirect completes the interactive attempt synchronously
	// instead of posting through the UI queue.
	interactiveDirect bool

	associateErr error

	startupCalls      int
	shutdownCalls     int
	discoverCalls     int
	silentCalls       int
	signInSilentCalls int
	interactiveCalls  int
	associateCalls    int
	disassociations   map[string][]string // account ID -> app IDs removed

	lastSilentParams provider.TokenParams
	lastSilentHint   string
	completedSilent  int
}

func newFakeProvider(accounts ...domain.Account) *fakeProvider {
	return &fakeProvider{
		directory:       accounts,
		disassociations: make(map[string][]string),
	}
}

// associatedAccount builds a directory entry already associated with the
// application under test.
func associatedAccount(id, username string) domain.Account {
	return domain.Account{
		ID:       id,
		Username: username,
		Associations: map[string]domain.AssociationStatus{
			testAppID: domain.Associated,
		},
	}
}

func (f *fakeProvider) Startup(cfg provider.Config) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startupCalls++
	if f.startErr != nil {
		return f.startErr
	}
	f.cfg = cfg
	return nil
}

func (f *fakeProvider) Shutdown() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdownCalls++
	return nil
}

func (f *fakeProvider) DiscoverAccounts(correlation idx.ID, done func(error)) {
	f.mu.Lock()
	f.discoverCalls++
	delay := f.discoverDelay
	discoverErr := f.discoverErr
	f.mu.Unlock()

	go func() {
		if delay > 0 {
			time.Sleep(delay)
		}
		if discoverErr == nil {
			f.mu.Lock()
			f.discovered = true
			f.mu.Unlock()
		}
		done(discoverErr)
	}()
}

func (f *fakeProvider) AssociatedAccounts(ctx context.Context) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.discovered {
		return nil, provider.ErrNotDiscovered
	}
	var out []domain.Account
	for _, acct := range f.directory {
		if acct.IsAssociatedWith(f.cfg.AppID) {
			out = append(out, acct)
		}
	}
	return out, nil
}

func (f *fakeProvider) AllAccounts(ctx context.Context) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.discovered {
		return nil, provider.ErrNotDiscovered
	}
	return append([]domain.Account(nil), f.directory...), nil
}

func (f *fakeProvider) AccountByID(ctx context.Context, id string) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.discovered {
		return domain.Account{}, provider.ErrNotDiscovered
	}
	for _, acct := range f.directory {
		if acct.ID == id {
			return acct, nil
		}
	}
	return domain.Account{}, provider.ErrNotFound
}

func (f *fakeProvider) AcquireSilently(account domain.Account, p provider.TokenParams, done provider.CompletionFunc) {
	f.mu.Lock()
	f.silentCalls++
	f.lastSilentParams = p
	outcome := f.silentOutcome
	delay := f.silentDelay
	f.mu.Unlock()

	if outcome == nil {
		return // never completes; the waiting side owns the deadline
	}
	go func() {
		if delay > 0 {
			time.Sleep(delay)
		}
		done(*outcome)
		f.mu.Lock()
		f.completedSilent++
		f.mu.Unlock()
	}()
}

func (f *fakeProvider) SignInSilently(p provider.TokenParams, done provider.CompletionFunc) {
	f.mu.Lock()
	f.signInSilentCalls++
	f.lastSilentParams = p
	outcome := f.signInSilentOutcome
	f.mu.Unlock()

	if outcome == nil {
		return
	}
	go func() { done(*outcome) }()
}

func (f *fakeProvider) SignInInteractively(ui provider.UIContext, hint string, p provider.TokenParams, done provider.CompletionFunc) {
	f.mu.Lock()
	f.interactiveCalls++
	f.lastSilentHint = hint
	outcome := f.interactiveOutcome
	direct := f.interactiveDirect
	delay := f.interactiveDelay
	f.mu.Unlock()

	if outcome == nil {
		return
	}
	if direct {
		done(*outcome)
		return
	}
	go func() {
		if delay > 0 {
			time.Sleep(delay)
		}
		if ui != nil {
			ui.Post(func() { done(*outcome) })
		} else {
			done(*outcome)
		}
	}()
}

func (f *fakeProvider) Associate(ctx context.Context, account domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.associateCalls++
	if f.associateErr != nil {
		return f.associateErr
	}
	for i := range f.directory {
		if f.directory[i].ID == account.ID {
			f.directory[i].Associations[f.cfg.AppID] = domain.Associated
		}
	}
	return nil
}

func (f *fakeProvider) Disassociate(ctx context.Context, account domain.Account, appID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disassociations[account.ID] = append(f.disassociations[account.ID], appID)
	for i := range f.directory {
		if f.directory[i].ID == account.ID {
			f.directory[i].Associations[appID] = domain.NotAssociated
		}
	}
	return nil
}

func (f *fakeProvider) counts() (discover, silent, interactive, associate int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.discoverCalls, f.silentCalls, f.interactiveCalls, f.associateCalls
}

func successOutcome(acct domain.Account) *domain.AuthOutcome {
	out := domain.Success(acct, domain.Credential{
		Token:     "token-" + acct.ID,
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})
	return &out
}

func failureOutcome(kind domain.ErrorKind, msg string) *domain.AuthOutcome {
	out := domain.Failure(kind, msg)
	return &out
}

func newTestBroker(t *testing.T, fake *fakeProvider, deadline time.Duration) *Broker {
	t.Helper()

	b := &Broker{
		Provider:         fake,
		Accounts:         &AccountService{Provider: fake},
		Pump:             eventloop.NewLoop(),
		Deadline:         deadline,
		DefaultAuthority: "https://login.example.test/common",
		DefaultScope:     "user.read",
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, b.Startup(testClientID, testAppID, "0.0.0-test", log))
	t.Cleanup(func() { _ = b.Shutdown() })
	return b
}

func TestAuthenticateNoHintPromptDisallowed(t *testing.T) {
	fake := newFakeProvider()
	b := newTestBroker(t, fake, time.Second)

	out := b.Authenticate(context.Background(), domain.AuthRequest{
		Authority:   "https://idp.example/org",
		Scope:       "svc.default",
		AccountHint: "",
		AllowPrompt: false,
	})

	require.False(t, out.Succeeded())
	require.Equal(t, domain.KindInteractionRequired, out.Err.Kind)
	require.Equal(t, MsgInteractionRequired, out.Err.Message)

	// No hint means no silent attempt, and the gate blocks interactive:
	// the provider must not have been called at all.
	discover, silent, interactive, _ := fake.counts()
	require.Zero(t, discover)
	require.Zero(t, silent)
	require.Zero(t, interactive)
}

func TestAuthenticateSilentSuccess(t *testing.T) {
	alice := associatedAccount("acct-1", "alice")
	fake := newFakeProvider(alice)
	fake.silentOutcome = successOutcome(alice)
	b := newTestBroker(t, fake, 2*time.Second)

	out := b.Authenticate(context.Background(), domain.AuthRequest{
		Authority:   "https://idp.example/org",
		Scope:       "svc.default",
		AccountHint: "acct-1",
		AllowPrompt: true,
	})

	require.True(t, out.Succeeded())
	require.Equal(t, "token-acct-1", out.Credential.Token)
	require.Nil(t, out.Err)
	require.Equal(t, "acct-1", out.Account.ID)

	_, silent, interactive, associate := fake.counts()
	require.Equal(t, 1, silent)
	require.Zero(t, interactive, "silent success must not reach the interactive path")
	require.Equal(t, 1, associate, "re-association is idempotent, not skipped")

	require.Equal(t, "https://idp.example/org", fake.lastSilentParams.Authority)
	require.Equal(t, "svc.default", fake.lastSilentParams.Scope)
	require.False(t, fake.lastSilentParams.Correlation.IsZero())
}

func TestAuthenticateUnmatchedHint(t *testing.T) {
	alice := associatedAccount("acct-1", "alice")

	t.Run("falls back to interactive when prompting allowed", func(t *testing.T) {
		fake := newFakeProvider(alice)
		fake.interactiveOutcome = successOutcome(alice)
		b := newTestBroker(t, fake, 2*time.Second)

		out := b.Authenticate(context.Background(), domain.AuthRequest{
			AccountHint: "no-such-account",
			AllowPrompt: true,
		})

		require.True(t, out.Succeeded())
		_, silent, interactive, _ := fake.counts()
		require.Zero(t, silent, "unmatched hint must never produce a silent attempt")
		require.Equal(t, 1, interactive)
		require.Equal(t, "no-such-account", fake.lastSilentHint,
			"the hint still reaches the interactive flow for preselection")
	})

	t.Run("returns InteractionRequired when prompting disallowed", func(t *testing.T) {
		fake := newFakeProvider(alice)
		b := newTestBroker(t, fake, 2*time.Second)

		out := b.Authenticate(context.Background(), domain.AuthRequest{
			AccountHint: "no-such-account",
			AllowPrompt: false,
		})

		require.False(t, out.Succeeded())
		require.Equal(t, domain.KindInteractionRequired, out.Err.Kind)
		_, silent, interactive, _ := fake.counts()
		require.Zero(t, silent)
		require.Zero(t, interactive)
	})
}

func TestAuthenticateSilentTimeoutFallsBack(t *testing.T) {
	alice := associatedAccount("acct-1", "alice")
	fake := newFakeProvider(alice)
	fake.silentOutcome = nil // silent attempt hangs forever
	fake.interactiveOutcome = successOutcome(alice)
	b := newTestBroker(t, fake, 150*time.Millisecond)

	start := time.Now()
	out := b.Authenticate(context.Background(), domain.AuthRequest{
		AccountHint: "acct-1",
		AllowPrompt: true,
	})
	elapsed := time.Since(start)

	require.True(t, out.Succeeded(), "timeout of the silent phase is not an error, it is a fallback")
	_, silent, interactive, _ := fake.counts()
	require.Equal(t, 1, silent)
	require.Equal(t, 1, interactive)

	// Discovery + silent each get their own budget; the sum stays well
	// clear of an unbounded wait.
	require.Less(t, elapsed, 2*time.Second)
}

func TestAuthenticateSilentFailureIsSwallowed(t *testing.T) {
	alice := associatedAccount("acct-1", "alice")
	fake := newFakeProvider(alice)
	fake.silentOutcome = failureOutcome(domain.KindProviderError, "credential cache corrupt")
	fake.interactiveOutcome = successOutcome(alice)
	b := newTestBroker(t, fake, 2*time.Second)

	out := b.Authenticate(context.Background(), domain.AuthRequest{
		AccountHint: "acct-1",
		AllowPrompt: true,
	})

	require.True(t, out.Succeeded())
	require.Nil(t, out.Err, "the silent failure reason must not leak into the final outcome")
}

func TestAuthenticateSilentFailurePromptDisallowed(t *testing.T) {
	alice := associatedAccount("acct-1", "alice")
	fake := newFakeProvider(alice)
	fake.silentOutcome = failureOutcome(domain.KindProviderError, "refresh token revoked")
	b := newTestBroker(t, fake, 2*time.Second)

	out := b.Authenticate(context.Background(), domain.AuthRequest{
		AccountHint: "acct-1",
		AllowPrompt: false,
	})

	// The caller sees the fixed gate message, not the silent failure.
	require.Equal(t, domain.KindInteractionRequired, out.Err.Kind)
	require.Equal(t, MsgInteractionRequired, out.Err.Message)
}

func TestAuthenticateInteractiveTimeout(t *testing.T) {
	fake := newFakeProvider()
	fake.interactiveOutcome = nil // sign-in never completes
	b := newTestBroker(t, fake, 200*time.Millisecond)

	start := time.Now()
	out := b.Authenticate(context.Background(), domain.AuthRequest{AllowPrompt: true})
	elapsed := time.Since(start)

	require.False(t, out.Succeeded())
	require.Equal(t, domain.KindTimeout, out.Err.Kind)
	require.Equal(t, MsgLoginTimeout, out.Err.Message)
	require.Nil(t, out.Credential, "no partial credential next to a timeout")

	require.GreaterOrEqual(t, elapsed, 200*time.Millisecond)
	require.Less(t, elapsed, 2*time.Second)
}

func TestAuthenticateInteractiveThroughPumpedQueue(t *testing.T) {
	alice := associatedAccount("acct-1", "alice")
	fake := newFakeProvider(alice)
	fake.interactiveOutcome = successOutcome(alice)
	fake.interactiveDelay = 30 * time.Millisecond
	b := newTestBroker(t, fake, 2*time.Second)

	// The completion is posted to the UI queue; only the caller's pump
	// can deliver it.
	out := b.Authenticate(context.Background(), domain.AuthRequest{AllowPrompt: true})
	require.True(t, out.Succeeded())
	require.Equal(t, "acct-1", out.Account.ID)
}

func TestAuthenticateInteractiveFastFail(t *testing.T) {
	fake := newFakeProvider()
	fake.interactiveOutcome = failureOutcome(domain.KindProviderError, "authority unreachable")
	fake.interactiveDirect = true
	b := newTestBroker(t, fake, 10*time.Second)

	start := time.Now()
	out := b.Authenticate(context.Background(), domain.AuthRequest{AllowPrompt: true})
	elapsed := time.Since(start)

	require.False(t, out.Succeeded())
	require.Equal(t, domain.KindProviderError, out.Err.Kind)
	require.Equal(t, "authority unreachable", out.Err.Message)

	// Completion arrived before any UI work existed; the readiness
	// pre-check must return without waiting out the 10s budget.
	require.Less(t, elapsed, time.Second)
}

func TestAuthenticateAssociatesOnInteractiveSuccess(t *testing.T) {
	bob := domain.Account{ID: "acct-2", Username: "bob",
		Associations: map[string]domain.AssociationStatus{}}
	fake := newFakeProvider(bob)
	fake.interactiveOutcome = successOutcome(bob)
	b := newTestBroker(t, fake, 2*time.Second)

	out := b.Authenticate(context.Background(), domain.AuthRequest{AllowPrompt: true})
	require.True(t, out.Succeeded())

	_, _, _, associate := fake.counts()
	require.Equal(t, 1, associate)

	// The association makes the account visible to the silent path next
	// time around.
	accounts, err := b.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Contains(t, accounts[0].AssociatedWith(), testAppID)
}

func TestAuthenticateAssociationFailureNotSurfaced(t *testing.T) {
	alice := associatedAccount("acct-1", "alice")
	fake := newFakeProvider(alice)
	fake.silentOutcome = successOutcome(alice)
	fake.associateErr = errors.New("association store busy")
	b := newTestBroker(t, fake, 2*time.Second)

	out := b.Authenticate(context.Background(), domain.AuthRequest{
		AccountHint: "acct-1",
		AllowPrompt: true,
	})

	require.True(t, out.Succeeded(), "best-effort association must not fail the acquisition")
}

func TestAuthenticateLateSilentCompletionIsDiscarded(t *testing.T) {
	alice := associatedAccount("acct-1", "alice")
	fake := newFakeProvider(alice)
	fake.silentOutcome = successOutcome(alice)
	fake.silentDelay = 350 * time.Millisecond // lands after the deadline
	b := newTestBroker(t, fake, 150*time.Millisecond)

	out := b.Authenticate(context.Background(), domain.AuthRequest{
		AccountHint: "acct-1",
		AllowPrompt: false,
	})

	// The silent phase timed out, so the gate decides the outcome.
	require.Equal(t, domain.KindInteractionRequired, out.Err.Kind)

	// The provider's late completion must still be deliverable: it lands
	// in the abandoned cell without anyone observing it.
	require.Eventually(t, func() bool {
		fake.mu.Lock()
		defer fake.mu.Unlock()
		return fake.completedSilent == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSignInSilently(t *testing.T) {
	t.Run("success carries the configured defaults", func(t *testing.T) {
		alice := associatedAccount("acct-1", "alice")
		fake := newFakeProvider(alice)
		fake.signInSilentOutcome = successOutcome(alice)
		b := newTestBroker(t, fake, 2*time.Second)

		out := b.SignInSilently(context.Background())
		require.True(t, out.Succeeded())

		require.Equal(t, "https://login.example.test/common", fake.lastSilentParams.Authority)
		require.Equal(t, "user.read", fake.lastSilentParams.Scope)
	})

	t.Run("timeout has no interactive fallback", func(t *testing.T) {
		fake := newFakeProvider()
		fake.signInSilentOutcome = nil
		b := newTestBroker(t, fake, 100*time.Millisecond)

		out := b.SignInSilently(context.Background())
		require.Equal(t, domain.KindTimeout, out.Err.Kind)
		require.Equal(t, MsgSilentTimeout, out.Err.Message)

		_, _, interactive, _ := fake.counts()
		require.Zero(t, interactive)
	})

	t.Run("provider failure passes through verbatim", func(t *testing.T) {
		fake := newFakeProvider()
		fake.signInSilentOutcome = failureOutcome(domain.KindProviderError, "no signed-in account available")
		b := newTestBroker(t, fake, time.Second)

		out := b.SignInSilently(context.Background())
		require.Equal(t, domain.KindProviderError, out.Err.Kind)
		require.Equal(t, "no signed-in account available", out.Err.Message)
	})
}

func TestListAccounts(t *testing.T) {
	t.Run("annotates associations", func(t *testing.T) {
		alice := associatedAccount("acct-1", "alice")
		bob := domain.Account{ID: "acct-2", Username: "bob",
			Associations: map[string]domain.AssociationStatus{otherAppID: domain.Associated}}
		fake := newFakeProvider(alice, bob)
		b := newTestBroker(t, fake, 2*time.Second)

		accounts, err := b.ListAccounts(context.Background())
		require.NoError(t, err)
		require.Len(t, accounts, 2)
		require.Equal(t, []string{testAppID}, accounts[0].AssociatedWith())
		require.Equal(t, []string{otherAppID}, accounts[1].AssociatedWith())
	})

	t.Run("discovery timeout returns zero accounts and an error", func(t *testing.T) {
		fake := newFakeProvider(associatedAccount("acct-1", "alice"))
		fake.discoverDelay = 500 * time.Millisecond
		b := newTestBroker(t, fake, 100*time.Millisecond)

		accounts, err := b.ListAccounts(context.Background())
		require.Error(t, err)
		require.True(t, domain.IsKind(err, domain.KindTimeout))
		require.Empty(t, accounts, "a timed-out discovery must never yield a partial list")
	})

	t.Run("discovery failure surfaces the provider text", func(t *testing.T) {
		fake := newFakeProvider()
		fake.discoverErr = errors.New("directory service offline")
		b := newTestBroker(t, fake, time.Second)

		_, err := b.ListAccounts(context.Background())
		require.True(t, domain.IsKind(err, domain.KindProviderError))
		require.Contains(t, err.Error(), "directory service offline")
	})
}

func TestLogout(t *testing.T) {
	alice := associatedAccount("acct-1", "alice")
	bob := associatedAccount("acct-2", "bob")
	carol := domain.Account{ID: "acct-3", Username: "carol",
		Associations: map[string]domain.AssociationStatus{otherAppID: domain.Associated}}
	fake := newFakeProvider(alice, bob, carol)
	b := newTestBroker(t, fake, 2*time.Second)

	require.NoError(t, b.Logout(context.Background()))

	t.Run("only this application's associations are touched", func(t *testing.T) {
		fake.mu.Lock()
		defer fake.mu.Unlock()
		require.Equal(t, []string{testAppID}, fake.disassociations["acct-1"])
		require.Equal(t, []string{testAppID}, fake.disassociations["acct-2"])
		require.NotContains(t, fake.disassociations, "acct-3")
	})

	t.Run("a previously valid hint now misses", func(t *testing.T) {
		out := b.Authenticate(context.Background(), domain.AuthRequest{
			AccountHint: "acct-1",
			AllowPrompt: false,
		})
		require.Equal(t, domain.KindInteractionRequired, out.Err.Kind)

		_, silent, _, _ := fake.counts()
		require.Zero(t, silent, "logout must remove the account from silent eligibility")
	})
}

func TestLogoutSwallowsPerAccountFailures(t *testing.T) {
	// Discovery never completing means there is nothing to enumerate;
	// logout still reports local success.
	fake := newFakeProvider(associatedAccount("acct-1", "alice"))
	fake.discoverDelay = time.Second
	b := newTestBroker(t, fake, 50*time.Millisecond)

	require.NoError(t, b.Logout(context.Background()))
}

func TestOperationsBeforeStartup(t *testing.T) {
	b := &Broker{
		Provider: newFakeProvider(),
		Accounts: &AccountService{Provider: newFakeProvider()},
		Pump:     eventloop.WaitPump{},
	}

	out := b.Authenticate(context.Background(), domain.AuthRequest{AllowPrompt: true})
	require.Equal(t, domain.KindStartupFailure, out.Err.Kind)

	out = b.SignInSilently(context.Background())
	require.Equal(t, domain.KindStartupFailure, out.Err.Kind)

	_, err := b.ListAccounts(context.Background())
	require.True(t, domain.IsKind(err, domain.KindStartupFailure))

	err = b.Logout(context.Background())
	require.True(t, domain.IsKind(err, domain.KindStartupFailure))
}

func TestStartupFailureIsFatal(t *testing.T) {
	fake := newFakeProvider()
	fake.startErr = errors.New("platform component unavailable")

	b := &Broker{
		Provider: fake,
		Accounts: &AccountService{Provider: fake},
		Pump:     eventloop.WaitPump{},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := b.Startup(testClientID, testAppID, "0.0.0-test", log)
	require.True(t, domain.IsKind(err, domain.KindStartupFailure))
	require.Contains(t, err.Error(), "platform component unavailable")

	out := b.Authenticate(context.Background(), domain.AuthRequest{AllowPrompt: true})
	require.Equal(t, domain.KindStartupFailure, out.Err.Kind)
}

func TestShutdownIsIdempotent(t *testing.T) {
	fake := newFakeProvider()
	b := newTestBroker(t, fake, time.Second)

	require.NoError(t, b.Shutdown())
	require.NoError(t, b.Shutdown())

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Equal(t, 1, fake.shutdownCalls)
}

func TestFindByHintMatchesExactly(t *testing.T) {
	alice := associatedAccount("acct-1", "alice")
	fake := newFakeProvider(alice)
	svc := &AccountService{Provider: fake}
	require.NoError(t, fake.Startup(provider.Config{ClientID: testClientID, AppID: testAppID}))

	ctx := context.Background()

	t.Run("exact identifier hits", func(t *testing.T) {
		acct, found, err := svc.FindByHint(ctx, idx.New(), "acct-1", time.Second)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "alice", acct.Username)
	})

	t.Run("prefixes and usernames do not match", func(t *testing.T) {
		for _, hint := range []string{"acct", "acct-", "alice", "ACCT-1"} {
			_, found, err := svc.FindByHint(ctx, idx.New(), hint, time.Second)
			require.NoError(t, err)
			require.False(t, found, "hint %q must not match", hint)
		}
	})

	t.Run("empty hint is an immediate miss without discovery", func(t *testing.T) {
		before, _, _, _ := fake.counts()
		_, found, err := svc.FindByHint(ctx, idx.New(), "", time.Second)
		require.NoError(t, err)
		require.False(t, found)
		after, _, _, _ := fake.counts()
		require.Equal(t, before, after)
	})

	t.Run("non-associated accounts are invisible by default", func(t *testing.T) {
		fake.mu.Lock()
		fake.directory = append(fake.directory, domain.Account{ID: "acct-9", Username: "eve",
			Associations: map[string]domain.AssociationStatus{}})
		fake.mu.Unlock()

		_, found, err := svc.FindByHint(ctx, idx.New(), "acct-9", time.Second)
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("MatchAllAccounts widens the search", func(t *testing.T) {
		wide := &AccountService{Provider: fake, MatchAllAccounts: true}
		acct, found, err := wide.FindByHint(ctx, idx.New(), "acct-9", time.Second)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "eve", acct.Username)
	})
}
