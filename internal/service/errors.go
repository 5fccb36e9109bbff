// Package service contains the token lifecycle and OTP verification state
// machines. Handlers stay thin: every flow's semantics, invariants and
// failure taxonomy live here, behind narrow store interfaces so the logic is
// testable without MySQL or Redis.
package service

import "errors"

// Failure taxonomy for the auth and OTP flows. Handlers map these to HTTP
// status codes with errors.Is.
var (
	// ErrValidation: missing or malformed input, rejected before any state
	// change.
	ErrValidation = errors.New("invalid input")

	// ErrEmailTaken: registration conflict on an existing email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials: login failure. Deliberately undifferentiated;
	// the caller cannot tell whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Refresh token lifecycle failures. All of them mean the client must
	// reauthenticate. Structurally invalid access tokens never reach this
	// taxonomy: the middleware rejects them and logout treats them as an
	// outcome, not an error.
	ErrTokenNotFound = errors.New("refresh token not found")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenRevoked  = errors.New("refresh token revoked")

	// OTP flow failures.
	ErrOtpNotPending        = errors.New("no pending verification code")
	ErrOtpExpired           = errors.New("verification code expired")
	ErrOtpMismatch          = errors.New("verification code mismatch")
	ErrOtpAttemptsExhausted = errors.New("verification attempts exhausted")

	// ErrRoleNotSeeded: a required seed role is missing. This is a fatal
	// misconfiguration of the deployment, not a user error.
	ErrRoleNotSeeded = errors.New("required role not seeded")
)
