package service

import "errors"

// Outcomes the handlers map onto the HTTP status contract.
var (
	// ErrUnknownIdentity: the email has never been used and the caller
	// did not ask to create an account.
	ErrUnknownIdentity = errors.New("unknown identity")
	// ErrDanglingAccount: an identity pointed at a deleted vault login.
	ErrDanglingAccount = errors.New("identity points at a deleted account")
	// ErrNonPrimaryDisabled: the account forbids non-primary logins.
	ErrNonPrimaryDisabled = errors.New("non-primary login is disabled")
	// ErrIllegalIdentity: a session exists that should never have been
	// created for a non-primary identity.
	ErrIllegalIdentity = errors.New("illegal identity")

	// ErrLoginFailed: unknown username or wrong password. Deliberately
	// one error for both, to avoid an oracle.
	ErrLoginFailed = errors.New("login failed")
	// ErrAlreadyClaimed: the game account is owned by some vault account.
	ErrAlreadyClaimed = errors.New("account already claimed")
	// ErrNotOwned: the caller does not own the referenced account or
	// identity.
	ErrNotOwned = errors.New("not owned by caller")
	// ErrAlreadyMigrated: the legacy account already has an evol
	// counterpart.
	ErrAlreadyMigrated = errors.New("account already migrated")
	// ErrNameTaken: the requested username exists on the evol server.
	ErrNameTaken = errors.New("username already exists")

	// ErrIdentityTaken: the email is already bound to some vault account.
	ErrIdentityTaken = errors.New("identity already assigned")
	// ErrIdentityPending: a confirmation for this (vault, email) pair is
	// already outstanding.
	ErrIdentityPending = errors.New("identity confirmation already pending")
	// ErrTooManyIdentities: the account holds the identity limit.
	ErrTooManyIdentities = errors.New("too many identities")
	// ErrLinkExpired: the emailed confirmation token is gone or does not
	// match the claimed email.
	ErrLinkExpired = errors.New("confirmation link expired")
)
