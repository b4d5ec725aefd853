package session

import "errors"

// Externally visible error kinds. Handlers map these to HTTP status codes with
// errors.Is; everything else is an internal persistence failure.
var (
	// ErrInvalidInput reports a username, password, or token shape that fails
	// policy before any persistence is touched.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyExists reports a registration uniqueness violation.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidCredentials reports a failed login. Unknown username and wrong
	// password produce this same error so usernames cannot be enumerated.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized reports any refresh or logout failure. Bad signature,
	// expired token, unknown record, revoked record, hash mismatch, missing
	// user and nothing-to-revoke all collapse into this one kind; the specific
	// cause is logged internally but never returned to the caller.
	ErrUnauthorized = errors.New("unauthorized")
)
