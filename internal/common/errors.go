// Package common defines shared constants and sentinel errors used across
// PassVault components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Identity errors.
	ErrEmailTaken         = errors.New("email already in use")
	ErrOwnerNotFound      = errors.New("owner not found")
	ErrUnresolvedIdentity = errors.New("token carries no usable identity claim")

	// Vault errors. An entry that exists but belongs to another owner is
	// reported exactly as a missing entry.
	ErrEntryNotFound = errors.New("entry not found")

	// Crypto errors. Decryption failure on read means data corruption or a
	// key mismatch and must never be downgraded to an empty secret.
	ErrCrypto = errors.New("crypto failure")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
