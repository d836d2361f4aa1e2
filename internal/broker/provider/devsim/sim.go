// Package devsim is an in-process identity provider used for local
// development and tests. It keeps its account directory in sqlite, mints
// Ed25519-signed JWT credentials and reproduces the behavioural contract of
// the real provider boundary: asynchronous completion from provider-owned
// goroutines, interactive outcomes dispatched through the caller's UI
// queue, and directory reads served from the last completed discovery.
package devsim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/keybridge-labs/keybridge/internal/broker/domain"
	"github.com/keybridge-labs/keybridge/internal/broker/provider"
	"github.com/keybridge-labs/keybridge/pkg/cryptox"
	"github.com/keybridge-labs/keybridge/pkg/idx"
)

const (
	defaultSessionTTL    = 8 * time.Hour
	defaultCredentialTTL = time.Hour

	totpIssuer = "keybridge-devsim"
)

// SeedAccount describes one directory entry created at startup.
type SeedAccount struct {
	Username    string
	DisplayName string

	// Password for interactive sign-in with a CredentialApprover. Empty
	// means a random password is generated and logged once at startup.
	Password string

	// TOTP provisions a one-time-code secret for the account.
	TOTP bool
}

// Options tune the simulator. The zero value runs an in-memory directory
// with no artificial latency and an auto-approving login screen.
type Options struct {
	// DSN is the sqlite data source. Defaults to an in-memory database.
	DSN string

	// SessionTTL bounds how long an interactive sign-in keeps the account
	// silently renewable.
	SessionTTL time.Duration

	// CredentialTTL is the lifetime of minted credentials.
	CredentialTTL time.Duration

	// DiscoveryDelay, SilentDelay and InteractiveDelay add artificial
	// latency to the asynchronous operations, for exercising timeouts.
	DiscoveryDelay   time.Duration
	SilentDelay      time.Duration
	InteractiveDelay time.Duration

	// Approver rules on interactive sign-in attempts. Defaults to
	// AutoApprover.
	Approver Approver

	// SigningKeyPEM is an Ed25519 private key in PKCS8 PEM form. Empty
	// means an ephemeral key is generated at startup.
	SigningKeyPEM []byte

	// DefaultAccount is the username preselected when an interactive
	// sign-in has no hint, and the account SignInSilently targets.
	DefaultAccount string

	// Seed lists accounts created at startup when missing.
	Seed []SeedAccount
}

// Sim implements the provider boundary against a local sqlite directory.
type Sim struct {
	opts   Options
	store  *Store
	signer *credentialSigner
	log    *slog.Logger
	cfg    provider.Config

	mu         sync.RWMutex
	started    bool
	discovered bool
	directory  map[string]domain.Account
	order      []string
}

var _ provider.Provider = (*Sim)(nil)

// New builds a simulator with the given options. Nothing is opened until
// Startup.
func New(opts Options) *Sim {
	if opts.DSN == "" {
		opts.DSN = ":memory:"
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}
	if opts.CredentialTTL <= 0 {
		opts.CredentialTTL = defaultCredentialTTL
	}
	if opts.Approver == nil {
		opts.Approver = AutoApprover{}
	}
	return &Sim{opts: opts}
}

// Startup opens the directory store, applies migrations, seeds accounts and
// prepares the credential signer.
func (s *Sim) Startup(cfg provider.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.New("devsim: already started")
	}
	if cfg.ClientID == "" || cfg.AppID == "" {
		return errors.New("devsim: client and application identity are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	store, err := NewStore(s.opts.DSN)
	if err != nil {
		return fmt.Errorf("open account store: %w", err)
	}
	if err := store.ApplyMigrations(); err != nil {
		store.Close()
		return fmt.Errorf("migrate account store: %w", err)
	}

	signer, err := newCredentialSigner(s.opts.SigningKeyPEM, s.opts.CredentialTTL)
	if err != nil {
		store.Close()
		return err
	}

	s.store = store
	s.signer = signer
	s.cfg = cfg
	s.log = cfg.Logger.With("component", "devsim")

	ctx := context.Background()
	if err := s.seed(ctx); err != nil {
		store.Close()
		return fmt.Errorf("seed accounts: %w", err)
	}
	if n, err := store.DeleteExpiredSessions(ctx, time.Now().UTC()); err == nil && n > 0 {
		s.log.Debug("pruned expired sessions", "count", n)
	}

	s.started = true
	s.log.Info("provider started", "app_id", cfg.AppID, "accounts_seeded", len(s.opts.Seed))
	return nil
}

// Shutdown closes the directory store. In-flight asynchronous operations
// finish with a failure outcome once the store rejects their queries.
func (s *Sim) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false
	s.discovered = false
	s.directory = nil
	s.order = nil
	return s.store.Close()
}

// Ping verifies the directory store connection. Readiness probes use it.
func (s *Sim) Ping(ctx context.Context) error {
	if !s.isStarted() {
		return provider.ErrNotStarted
	}
	return s.store.Ping(ctx)
}

// SweepExpiredSessions deletes sessions past their expiry and reports how
// many were removed. Housekeeping calls it periodically.
func (s *Sim) SweepExpiredSessions(ctx context.Context) (int64, error) {
	if !s.isStarted() {
		return 0, provider.ErrNotStarted
	}
	return s.store.DeleteExpiredSessions(ctx, time.Now().UTC())
}

func (s *Sim) seed(ctx context.Context) error {
	for _, sa := range s.opts.Seed {
		if sa.Username == "" {
			continue
		}

		_, err := s.store.GetAccountByUsername(ctx, sa.Username)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNoRecord) {
			return err
		}

		password := sa.Password
		generated := false
		if password == "" {
			password, err = cryptox.GeneratePassword()
			if err != nil {
				return err
			}
			generated = true
		}
		hash, err := cryptox.HashPassword(password)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		rec := AccountRecord{
			ID:           idx.New().String(),
			Username:     sa.Username,
			DisplayName:  sa.DisplayName,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if sa.TOTP {
			key, err := totp.Generate(totp.GenerateOpts{
				Issuer:      totpIssuer,
				AccountName: sa.Username,
			})
			if err != nil {
				return err
			}
			secret := key.Secret()
			rec.TOTPSecret = &secret
		}

		if err := s.store.CreateAccount(ctx, rec); err != nil {
			return err
		}

		if generated {
			// Logged so a developer can actually sign in as the account.
			s.log.Info("seeded account with generated password",
				"username", sa.Username, "password", password)
		} else {
			s.log.Info("seeded account", "username", sa.Username)
		}
	}
	return nil
}

// DiscoverAccounts reloads the directory snapshot from the store. The
// callback runs on a simulator goroutine, after the configured delay.
func (s *Sim) DiscoverAccounts(correlation idx.ID, done func(error)) {
	if !s.isStarted() {
		done(provider.ErrNotStarted)
		return
	}

	go func() {
		s.pause(s.opts.DiscoveryDelay)

		dir, order, err := s.loadDirectory(context.Background())
		if err != nil {
			s.log.Error("account discovery failed",
				"correlation_id", correlation.String(), "error", err)
			done(fmt.Errorf("discover accounts: %w", err))
			return
		}

		s.mu.Lock()
		s.directory = dir
		s.order = order
		s.discovered = true
		s.mu.Unlock()

		s.log.Debug("directory refreshed",
			"correlation_id", correlation.String(), "accounts", len(order))
		done(nil)
	}()
}

func (s *Sim) loadDirectory(ctx context.Context) (map[string]domain.Account, []string, error) {
	recs, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, nil, err
	}
	assocs, err := s.store.ListAssociations(ctx)
	if err != nil {
		return nil, nil, err
	}

	dir := make(map[string]domain.Account, len(recs))
	order := make([]string, 0, len(recs))
	for _, rec := range recs {
		assoc := assocs[rec.ID]
		if assoc == nil {
			assoc = make(map[string]domain.AssociationStatus)
		}
		dir[rec.ID] = domain.Account{
			ID:           rec.ID,
			Username:     rec.Username,
			DisplayName:  rec.DisplayName,
			Associations: assoc,
		}
		order = append(order, rec.ID)
	}
	return dir, order, nil
}

// AssociatedAccounts lists snapshot accounts associated with the configured
// application identity.
func (s *Sim) AssociatedAccounts(ctx context.Context) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, provider.ErrNotStarted
	}
	if !s.discovered {
		return nil, provider.ErrNotDiscovered
	}

	var out []domain.Account
	for _, id := range s.order {
		if acct := s.directory[id]; acct.IsAssociatedWith(s.cfg.AppID) {
			out = append(out, cloneAccount(acct))
		}
	}
	return out, nil
}

// AllAccounts lists every snapshot account.
func (s *Sim) AllAccounts(ctx context.Context) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, provider.ErrNotStarted
	}
	if !s.discovered {
		return nil, provider.ErrNotDiscovered
	}

	out := make([]domain.Account, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneAccount(s.directory[id]))
	}
	return out, nil
}

// AccountByID fetches one snapshot account.
func (s *Sim) AccountByID(ctx context.Context, id string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return domain.Account{}, provider.ErrNotStarted
	}
	if !s.discovered {
		return domain.Account{}, provider.ErrNotDiscovered
	}

	acct, ok := s.directory[id]
	if !ok {
		return domain.Account{}, provider.ErrNotFound
	}
	return cloneAccount(acct), nil
}

// AcquireSilently mints a credential for the account when it holds an
// unexpired sign-in session, and fails without any UI when it does not.
func (s *Sim) AcquireSilently(account domain.Account, p provider.TokenParams, done provider.CompletionFunc) {
	if !s.isStarted() {
		done(domain.Failure(domain.KindProviderError, provider.ErrNotStarted.Error()))
		return
	}

	go func() {
		s.pause(s.opts.SilentDelay)
		done(s.acquireForAccount(account.ID, p))
	}()
}

func (s *Sim) acquireForAccount(accountID string, p provider.TokenParams) domain.AuthOutcome {
	ctx := context.Background()

	rec, err := s.store.GetAccountByID(ctx, accountID)
	if errors.Is(err, ErrNoRecord) {
		return domain.Failure(domain.KindProviderError, "unknown account "+accountID)
	}
	if err != nil {
		return domain.Failure(domain.KindProviderError, err.Error())
	}

	now := time.Now().UTC()
	sess, err := s.store.LiveSessionForAccount(ctx, rec.ID, now)
	if errors.Is(err, ErrNoRecord) {
		return domain.Failure(domain.KindProviderError, "no active session for "+rec.Username)
	}
	if err != nil {
		return domain.Failure(domain.KindProviderError, err.Error())
	}

	return s.mintOutcome(ctx, rec, sess.ID, p, now)
}

// SignInSilently signs in the default account, or, when no default is
// configured, the single account that both holds a live session and is
// associated with the application. No UI and no new session.
func (s *Sim) SignInSilently(p provider.TokenParams, done provider.CompletionFunc) {
	if !s.isStarted() {
		done(domain.Failure(domain.KindProviderError, provider.ErrNotStarted.Error()))
		return
	}

	go func() {
		s.pause(s.opts.SilentDelay)
		done(s.signInDefault(p))
	}()
}

func (s *Sim) signInDefault(p provider.TokenParams) domain.AuthOutcome {
	ctx := context.Background()
	now := time.Now().UTC()

	if s.opts.DefaultAccount != "" {
		rec, err := s.store.GetAccountByUsername(ctx, s.opts.DefaultAccount)
		if errors.Is(err, ErrNoRecord) {
			return domain.Failure(domain.KindProviderError,
				fmt.Sprintf("default account %q does not exist", s.opts.DefaultAccount))
		}
		if err != nil {
			return domain.Failure(domain.KindProviderError, err.Error())
		}
		return s.acquireForAccount(rec.ID, p)
	}

	ids, err := s.store.LiveAssociatedAccountIDs(ctx, s.cfg.AppID, now)
	if err != nil {
		return domain.Failure(domain.KindProviderError, err.Error())
	}
	switch len(ids) {
	case 0:
		return domain.Failure(domain.KindProviderError, "no signed-in account available")
	case 1:
		return s.acquireForAccount(ids[0], p)
	default:
		return domain.Failure(domain.KindProviderError,
			"multiple signed-in accounts, configure a default account")
	}
}

// SignInInteractively resolves the hinted account, puts the attempt to the
// approver and, on approval, records a fresh sign-in session before minting
// a credential. The outcome is dispatched through ui when one is attached;
// hint resolution failures complete directly before any UI work is posted.
func (s *Sim) SignInInteractively(ui provider.UIContext, hint string, p provider.TokenParams, done provider.CompletionFunc) {
	if !s.isStarted() {
		done(domain.Failure(domain.KindProviderError, provider.ErrNotStarted.Error()))
		return
	}

	rec, err := s.resolveSignInAccount(context.Background(), hint)
	if err != nil {
		done(domain.Failure(domain.KindProviderError, err.Error()))
		return
	}

	go func() {
		s.pause(s.opts.InteractiveDelay)

		req := ApprovalRequest{Account: rec, Authority: p.Authority, Scope: p.Scope}
		if err := s.opts.Approver.Approve(req); err != nil {
			s.log.Info("interactive sign-in rejected",
				"correlation_id", p.Correlation.String(),
				"username", rec.Username, "reason", err.Error())
			s.dispatch(ui, done, domain.Failure(domain.KindProviderError, err.Error()))
			return
		}

		s.dispatch(ui, done, s.establishSession(context.Background(), rec, p))
	}()
}

func (s *Sim) resolveSignInAccount(ctx context.Context, hint string) (AccountRecord, error) {
	if hint != "" {
		rec, err := s.store.GetAccountByID(ctx, hint)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, ErrNoRecord) {
			return AccountRecord{}, err
		}
		// Hints typed by people are usually usernames.
		rec, err = s.store.GetAccountByUsername(ctx, hint)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, ErrNoRecord) {
			return AccountRecord{}, err
		}
		return AccountRecord{}, fmt.Errorf("no account matches hint %q", hint)
	}

	if s.opts.DefaultAccount != "" {
		rec, err := s.store.GetAccountByUsername(ctx, s.opts.DefaultAccount)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, ErrNoRecord) {
			return AccountRecord{}, err
		}
		return AccountRecord{}, fmt.Errorf("default account %q does not exist", s.opts.DefaultAccount)
	}

	recs, err := s.store.ListAccounts(ctx)
	if err != nil {
		return AccountRecord{}, err
	}
	if len(recs) == 0 {
		return AccountRecord{}, errors.New("account directory is empty")
	}
	// A login screen preselects somebody; the first directory entry
	// stands in for the user's choice.
	return recs[0], nil
}

func (s *Sim) establishSession(ctx context.Context, rec AccountRecord, p provider.TokenParams) domain.AuthOutcome {
	now := time.Now().UTC()
	token := cryptox.MustGenerateToken(cryptox.TokenSize256)

	sess := SessionRecord{
		ID:          idx.New().String(),
		AccountID:   rec.ID,
		Fingerprint: cryptox.FingerprintToken(token),
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.opts.SessionTTL),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return domain.Failure(domain.KindProviderError, err.Error())
	}

	s.log.Info("interactive sign-in completed",
		"correlation_id", p.Correlation.String(), "username", rec.Username)
	return s.mintOutcome(ctx, rec, sess.ID, p, now)
}

func (s *Sim) mintOutcome(ctx context.Context, rec AccountRecord, sessionID string, p provider.TokenParams, now time.Time) domain.AuthOutcome {
	cred, err := s.signer.Mint(rec, sessionID, p.Authority, p.Scope, now)
	if err != nil {
		return domain.Failure(domain.KindProviderError, err.Error())
	}

	assoc, err := s.store.AssociationsForAccount(ctx, rec.ID)
	if err != nil {
		return domain.Failure(domain.KindProviderError, err.Error())
	}

	acct := domain.Account{
		ID:           rec.ID,
		Username:     rec.Username,
		DisplayName:  rec.DisplayName,
		Associations: assoc,
	}
	return domain.Success(acct, cred)
}

// Associate marks the account usable by the configured application.
func (s *Sim) Associate(ctx context.Context, account domain.Account) error {
	if !s.isStarted() {
		return provider.ErrNotStarted
	}

	if _, err := s.store.GetAccountByID(ctx, account.ID); err != nil {
		if errors.Is(err, ErrNoRecord) {
			return provider.ErrNotFound
		}
		return err
	}

	if err := s.store.UpsertAssociation(ctx, account.ID, s.cfg.AppID, domain.Associated); err != nil {
		return err
	}
	s.updateSnapshotStatus(account.ID, s.cfg.AppID, domain.Associated)
	return nil
}

// Disassociate clears the association between the account and the given
// application identity. A no-op when none was ever recorded.
func (s *Sim) Disassociate(ctx context.Context, account domain.Account, appID string) error {
	if !s.isStarted() {
		return provider.ErrNotStarted
	}

	_, err := s.store.GetAssociation(ctx, account.ID, appID)
	if errors.Is(err, ErrNoRecord) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.store.UpsertAssociation(ctx, account.ID, appID, domain.NotAssociated); err != nil {
		return err
	}
	s.updateSnapshotStatus(account.ID, appID, domain.NotAssociated)
	return nil
}

// updateSnapshotStatus keeps the in-memory directory aligned with explicit
// association writes, so reads between discoveries see them.
func (s *Sim) updateSnapshotStatus(accountID, appID string, status domain.AssociationStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.discovered {
		return
	}
	acct, ok := s.directory[accountID]
	if !ok {
		return
	}
	acct = cloneAccount(acct)
	acct.Associations[appID] = status
	s.directory[accountID] = acct
}

// dispatch delivers the outcome on the UI queue when one is attached, the
// same way real sign-in UI completion callbacks arrive.
func (s *Sim) dispatch(ui provider.UIContext, done provider.CompletionFunc, out domain.AuthOutcome) {
	if ui == nil {
		done(out)
		return
	}
	ui.Post(func() { done(out) })
}

func (s *Sim) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

func (s *Sim) pause(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

func cloneAccount(a domain.Account) domain.Account {
	assoc := make(map[string]domain.AssociationStatus, len(a.Associations))
	for app, status := range a.Associations {
		assoc[app] = status
	}
	a.Associations = assoc
	return a
}
