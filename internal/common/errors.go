// Package common defines shared constants and sentinel errors used across
// the identity service. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound     = errors.New("not found")
	ErrStoreFailure = errors.New("store failure")

	// Credential and registration errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")

	// Token errors. ErrInvalidToken covers malformed structure and bad
	// signatures; the caller never learns which.
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrUnknownSubject = errors.New("unknown subject")

	// ErrSigningFailure indicates a misconfigured issuer (e.g. empty signing
	// secret). It is raised at construction time and should abort startup.
	ErrSigningFailure = errors.New("signing failure")

	// ErrPolicyDenied means the presented claim set does not satisfy the
	// required policy.
	ErrPolicyDenied = errors.New("policy denied")

	// Generic internal flow control.
	ErrInternal = errors.New("internal error")
)
