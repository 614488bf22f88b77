package apperr

import "errors"

var (
	// ErrInvalidInput marks malformed or missing user input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized marks a missing, invalid or expired credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound marks an absent entity.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a hard uniqueness conflict (duplicate email).
	ErrConflict = errors.New("conflict")
	// ErrAlreadySettled marks a transaction whose payment flag is already
	// true. Benign for reconciliation: the caller lost the settle race and
	// must not touch the balance.
	ErrAlreadySettled = errors.New("transaction already settled")
	// ErrInsufficientCredit marks a spend attempt with no credits left.
	ErrInsufficientCredit = errors.New("insufficient credit")
	// ErrPaymentNotConfirmed marks a reconcile attempt for an order the
	// gateway does not report as paid.
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")
	// ErrUpstream marks a payment gateway or generation provider failure.
	// Retryable by the caller.
	ErrUpstream = errors.New("upstream failure")
)
