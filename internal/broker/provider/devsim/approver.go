package devsim

import (
	"errors"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/keybridge-labs/keybridge/pkg/cryptox"
)

// Approver errors surfaced through the interactive sign-in outcome.
var (
	ErrSignInDeclined  = errors.New("devsim: sign-in declined")
	ErrBadPassword     = errors.New("devsim: invalid password")
	ErrBadOneTimeCode  = errors.New("devsim: invalid one-time code")
	ErrNoPromptHandler = errors.New("devsim: no credential prompt configured")
)

// ApprovalRequest carries everything an Approver needs to rule on an
// interactive sign-in attempt.
type ApprovalRequest struct {
	Account   AccountRecord
	Authority string
	Scope     string
}

// Approver decides interactive sign-in attempts. It stands in for the login
// screen a hosted authority would render: a nil return approves the attempt,
// any error rejects it with that reason.
type Approver interface {
	Approve(req ApprovalRequest) error
}

// AutoApprover waves every attempt through, optionally after a delay to
// simulate a human at the keyboard.
type AutoApprover struct {
	Delay time.Duration
}

func (a AutoApprover) Approve(ApprovalRequest) error {
	if a.Delay > 0 {
		time.Sleep(a.Delay)
	}
	return nil
}

// DenyApprover rejects every attempt. Useful for exercising the interactive
// failure paths without a real login screen.
type DenyApprover struct{}

func (DenyApprover) Approve(ApprovalRequest) error {
	return ErrSignInDeclined
}

// CredentialApprover checks a password, and a one-time code when the account
// has one enrolled, against the directory record. Prompt supplies the
// values, usually by asking a person.
type CredentialApprover struct {
	Prompt func(req ApprovalRequest) (password, otpCode string, err error)
}

func (a CredentialApprover) Approve(req ApprovalRequest) error {
	if a.Prompt == nil {
		return ErrNoPromptHandler
	}

	password, otpCode, err := a.Prompt(req)
	if err != nil {
		return err
	}

	if err := cryptox.VerifyPassword(password, req.Account.PasswordHash); err != nil {
		return ErrBadPassword
	}

	if req.Account.TOTPSecret != nil && *req.Account.TOTPSecret != "" {
		if !totp.Validate(otpCode, *req.Account.TOTPSecret) {
			return ErrBadOneTimeCode
		}
	}

	return nil
}
