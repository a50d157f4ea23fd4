package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	ErrUserNotFound = errors.New("user not found")

	// Verification lifecycle.
	ErrInvalidToken = errors.New("verification token does not exist")
	ErrExpiredToken = errors.New("verification token has expired")

	// Delivery pipeline.
	ErrMalformedInput     = errors.New("malformed verification request")
	ErrSecretFetch        = errors.New("secret fetch failed")
	ErrMailProvider       = errors.New("mail provider rejected message")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrEnqueueFailed      = errors.New("verification request not scheduled")
)
