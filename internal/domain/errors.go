package domain

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist
	ErrNotFound = errors.New("not found")

	// ErrTransient marks an external call failure worth retrying (timeout, rate limit, 5xx)
	ErrTransient = errors.New("transient failure")

	// ErrInvalidEvent is returned when a ledger event cannot be decoded into a mutation
	ErrInvalidEvent = errors.New("invalid ledger event")

	// ErrUnknownEventType is returned when a ledger event carries a type with no mutation
	ErrUnknownEventType = errors.New("unknown event type")

	// ErrInsufficientEscrow is returned when a payout or refund would drive escrow negative
	ErrInsufficientEscrow = errors.New("insufficient escrowed balance")

	// ErrInsufficientBalance is returned when a payout reservation exceeds the available treasury balance
	ErrInsufficientBalance = errors.New("insufficient available balance")

	// ErrInvalidTransition is returned when an intent is not in the status a transition consumes
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrSignerMismatch is returned when a recovered signer differs from the expected principal
	ErrSignerMismatch = errors.New("signer mismatch")

	// ErrInvalidSignature is returned when a signature is malformed
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrTickInProgress is returned when an orchestrator tick is requested while another one runs
	ErrTickInProgress = errors.New("tick already in progress")

	// ErrIdentityNotVerified is returned when a payout authorization is requested without a verified identity
	ErrIdentityNotVerified = errors.New("identity not verified")

	// ErrAuthorizationExpired is returned when a pending authorization is read after its expiry
	ErrAuthorizationExpired = errors.New("authorization expired")
)

// IsTransient reports whether err is worth retrying
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
