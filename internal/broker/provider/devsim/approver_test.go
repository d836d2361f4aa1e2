package devsim

import (
	"errors"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/keybridge-labs/keybridge/pkg/cryptox"
)

func approvalRequest(t *testing.T, password string, withTOTP bool) ApprovalRequest {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	rec := AccountRecord{
		ID:           "acct-1",
		Username:     "alice",
		DisplayName:  "Alice Example",
		PasswordHash: hash,
	}
	if withTOTP {
		key, err := totp.Generate(totp.GenerateOpts{Issuer: totpIssuer, AccountName: "alice"})
		require.NoError(t, err)
		secret := key.Secret()
		rec.TOTPSecret = &secret
	}

	return ApprovalRequest{
		Account:   rec,
		Authority: "https://login.example.test/common",
		Scope:     "user.read",
	}
}

func TestAutoApprover(t *testing.T) {
	t.Parallel()

	require.NoError(t, AutoApprover{}.Approve(ApprovalRequest{}))

	start := time.Now()
	require.NoError(t, AutoApprover{Delay: 20 * time.Millisecond}.Approve(ApprovalRequest{}))
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestDenyApprover(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, DenyApprover{}.Approve(ApprovalRequest{}), ErrSignInDeclined)
}

func TestCredentialApprover(t *testing.T) {
	t.Parallel()

	t.Run("correct password approves", func(t *testing.T) {
		req := approvalRequest(t, "hunter2-example", false)
		approver := CredentialApprover{
			Prompt: func(ApprovalRequest) (string, string, error) {
				return "hunter2-example", "", nil
			},
		}
		require.NoError(t, approver.Approve(req))
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		req := approvalRequest(t, "hunter2-example", false)
		approver := CredentialApprover{
			Prompt: func(ApprovalRequest) (string, string, error) {
				return "wrong", "", nil
			},
		}
		require.ErrorIs(t, approver.Approve(req), ErrBadPassword)
	})

	t.Run("one-time code checked when enrolled", func(t *testing.T) {
		req := approvalRequest(t, "hunter2-example", true)
		code, err := totp.GenerateCode(*req.Account.TOTPSecret, time.Now())
		require.NoError(t, err)

		approver := CredentialApprover{
			Prompt: func(ApprovalRequest) (string, string, error) {
				return "hunter2-example", code, nil
			},
		}
		require.NoError(t, approver.Approve(req))
	})

	t.Run("bad one-time code rejected", func(t *testing.T) {
		req := approvalRequest(t, "hunter2-example", true)
		approver := CredentialApprover{
			Prompt: func(ApprovalRequest) (string, string, error) {
				return "hunter2-example", "000000", nil
			},
		}
		require.ErrorIs(t, approver.Approve(req), ErrBadOneTimeCode)
	})

	t.Run("prompt error propagates", func(t *testing.T) {
		req := approvalRequest(t, "hunter2-example", false)
		cancelled := errors.New("user closed the prompt")
		approver := CredentialApprover{
			Prompt: func(ApprovalRequest) (string, string, error) {
				return "", "", cancelled
			},
		}
		require.ErrorIs(t, approver.Approve(req), cancelled)
	})

	t.Run("missing prompt handler", func(t *testing.T) {
		req := approvalRequest(t, "hunter2-example", false)
		require.ErrorIs(t, CredentialApprover{}.Approve(req), ErrNoPromptHandler)
	})
}
