package storage

import "errors"

// Every error below leaves the store unchanged; callers pick the user-facing
// message and redirect. Anything else coming out of this package is a
// database failure and should surface as a 5xx.
var (
	ErrAlreadyEnrolled = errors.New("storage: already enrolled in this course")
	ErrNotYetPaid      = errors.New("storage: enrollment has no submitted payment")
	ErrNotEnrolled     = errors.New("storage: no confirmed enrollment for this course")
	ErrNotEligible     = errors.New("storage: certificate requirements not met")
	ErrInvalidProof    = errors.New("storage: missing or disallowed proof of payment")
	ErrDuplicateKey    = errors.New("storage: unique constraint violated")
	ErrNotFound        = errors.New("storage: record not found")
	ErrUsernameTaken   = errors.New("storage: username already in use")
	ErrEmailTaken      = errors.New("storage: email already registered")
	ErrInvalidInput    = errors.New("storage: validation failed")
)
