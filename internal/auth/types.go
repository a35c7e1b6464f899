package auth

import (
	"errors"
	"fmt"
	"time"
)

// Field length limits enforced by the credential policies and mirrored
// by the database schema CHECK constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 32
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// usernameCharset is the set of characters allowed in usernames. Length
// requirements are enforced by separate rules, so the pattern itself
// carries no bounds.
const usernameCharset = `[a-zA-Z0-9._-]+`

// User represents an account that can authenticate against the system.
//
// PasswordHash is owned by the credential service: it is only ever
// written by SetPassword or the rehash-on-verify path, and there is no
// accessor for the plaintext anywhere — the plaintext exists only on the
// call stack during set/verify.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never serialised
	IsAdmin      bool      `json:"is_admin"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sentinel errors for credential and token operations.
var (
	// ErrInvalidCredentials covers password mismatch, malformed stored
	// hashes, and any other state where verification cannot succeed.
	// These deliberately collapse to one kind: the caller's response
	// (reject the login) is identical either way.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenInvalid covers bad signature, expiry, not-yet-valid, and
	// malformed claims. The wrapped reason is diagnostic only.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrEncoding indicates input that cannot be represented for
	// hashing (not valid UTF-8 text).
	ErrEncoding = errors.New("input is not valid text")

	// ErrPasswordPolicy wraps the first violated password rule.
	ErrPasswordPolicy = errors.New("password rejected by policy")

	// ErrUserNotFound is returned when a referenced user does not
	// exist, including a valid token whose subject has been deleted.
	ErrUserNotFound = errors.New("user not found")

	// ErrDataIntegrity is the kind for store-level constraint
	// violations, kept separate from validation errors.
	ErrDataIntegrity = errors.New("data integrity violation")
)

// ErrUsernameExists is the uniqueness violation surfaced by the user
// store. It wraps ErrDataIntegrity so callers can match either kind.
var ErrUsernameExists = fmt.Errorf("%w: username already exists", ErrDataIntegrity)
