package service

import (
	"context"
	"time"

	"github.com/keybridge-labs/keybridge/internal/broker/domain"
	"github.com/keybridge-labs/keybridge/internal/broker/provider"
	"github.com/keybridge-labs/keybridge/pkg/idx"
	"github.com/keybridge-labs/keybridge/pkg/oneshot"
	"github.com/keybridge-labs/keybridge/pkg/slogx"
)

// AccountService is the read-through view over the provider's account
// directory. Every read runs a discovery first: the provider only guarantees
// its directory after a completed discovery, and the deadline bounds that
// wait. Results are provider-owned snapshots valid for the current
// operation.
type AccountService struct {
	Provider provider.Provider

	// MatchAllAccounts widens hint matching from associated accounts to
	// the whole directory.
	MatchAllAccounts bool
}

// DiscoverAndList refreshes the directory and returns every account,
// annotated with its association statuses. A discovery timeout returns zero
// accounts and a timeout error, never a partial directory.
func (s *AccountService) DiscoverAndList(ctx context.Context, correlation idx.ID, d time.Duration) ([]domain.Account, error) {
	if err := s.discover(ctx, correlation, d); err != nil {
		return nil, err
	}

	accounts, err := s.Provider.AllAccounts(ctx)
	if err != nil {
		return nil, &domain.OpError{Kind: domain.KindProviderError, Message: err.Error()}
	}
	return accounts, nil
}

// FindByHint resolves hint against the directory by exact identifier
// equality, first match in enumeration order. found=false is a miss, not an
// error; the error reports discovery failures only.
func (s *AccountService) FindByHint(ctx context.Context, correlation idx.ID, hint string, d time.Duration) (domain.Account, bool, error) {
	if hint == "" {
		return domain.Account{}, false, nil
	}

	if err := s.discover(ctx, correlation, d); err != nil {
		return domain.Account{}, false, err
	}

	var (
		accounts []domain.Account
		err      error
	)
	if s.MatchAllAccounts {
		accounts, err = s.Provider.AllAccounts(ctx)
	} else {
		accounts, err = s.Provider.AssociatedAccounts(ctx)
	}
	if err != nil {
		return domain.Account{}, false, &domain.OpError{Kind: domain.KindProviderError, Message: err.Error()}
	}

	for _, acct := range accounts {
		if acct.ID == hint {
			return acct, true, nil
		}
	}
	return domain.Account{}, false, nil
}

// Associate marks the account usable by the configured application.
// Idempotent: associating an already-associated account is a no-op.
func (s *AccountService) Associate(ctx context.Context, account domain.Account) error {
	return s.Provider.Associate(ctx, account)
}

// DisassociateAll removes appID's association from every currently
// associated account and reports how many were removed. Per-account
// failures are logged and skipped, never aggregated into an error.
func (s *AccountService) DisassociateAll(ctx context.Context, correlation idx.ID, appID string, d time.Duration) int {
	l := slogx.FromContext(ctx)

	if err := s.discover(ctx, correlation, d); err != nil {
		l.Warn("discovery failed, nothing to disassociate", "error", err)
		return 0
	}

	accounts, err := s.Provider.AssociatedAccounts(ctx)
	if err != nil {
		l.Warn("listing associated accounts failed, nothing to disassociate", "error", err)
		return 0
	}

	removed := 0
	for _, acct := range accounts {
		if err := s.Provider.Disassociate(ctx, acct, appID); err != nil {
			l.Warn("disassociation failed", "account_id", acct.ID, "error", err)
			continue
		}
		removed++
	}
	return removed
}

// discover runs one provider discovery and waits out the deadline. The
// directory is not read on timeout; a late completion still refreshes the
// provider's snapshot for later operations.
func (s *AccountService) discover(ctx context.Context, correlation idx.ID, d time.Duration) error {
	cell := oneshot.NewCell[error]()
	s.Provider.DiscoverAccounts(correlation, func(err error) { cell.Complete(err) })

	err, ready := cell.Await(d)
	if !ready {
		slogx.FromContext(ctx).Warn("account discovery timed out", "deadline", d)
		return &domain.OpError{Kind: domain.KindTimeout, Message: MsgDiscoveryTimeout}
	}
	if err != nil {
		return &domain.OpError{Kind: domain.KindProviderError, Message: err.Error()}
	}
	return nil
}
