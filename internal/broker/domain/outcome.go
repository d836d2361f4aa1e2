package domain

// Credential is a bearer token minted by the provider.
type Credential struct {
	Token     string
	ExpiresAt int64 // seconds since epoch
}

// AuthOutcome is the tagged result of one authentication attempt. After any
// completed attempt exactly one of Credential or Err is set; Account rides
// along only next to a credential.
type AuthOutcome struct {
	Account    *Account
	Credential *Credential
	Err        *OpError
}

// Succeeded reports whether the outcome carries a credential.
func (o AuthOutcome) Succeeded() bool {
	return o.Credential != nil && o.Err == nil
}

// Success builds the outcome of a completed attempt.
func Success(account Account, cred Credential) AuthOutcome {
	return AuthOutcome{Account: &account, Credential: &cred}
}

// Failure builds an error outcome of the given kind.
func Failure(kind ErrorKind, message string) AuthOutcome {
	return AuthOutcome{Err: &OpError{Kind: kind, Message: message}}
}
