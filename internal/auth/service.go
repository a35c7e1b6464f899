package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lumakit/lights-core/internal/validate"
)

// UserStore is the minimal persistence surface the credential service
// needs. The full repository implements it; tests substitute an
// in-memory fake. Concurrency discipline (locking, transactions) is the
// store's responsibility, not this service's.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// CredentialService orchestrates the password set/verify/rehash
// lifecycle and token issuance/resolution against a user store.
//
// The service holds no mutable state; all public methods are safe for
// concurrent use.
type CredentialService struct {
	store          UserStore
	hasher         *Hasher
	tokens         *TokenIssuer
	passwordPolicy validate.Policy
	usernamePolicy validate.Policy
	logger         *slog.Logger
}

// CredentialServiceDeps holds the collaborators for a CredentialService.
type CredentialServiceDeps struct {
	Store   UserStore
	Hasher  *Hasher
	Tokens  *TokenIssuer
	Breach  *BreachChecker // optional: nil disables breach checking
	Logger  *slog.Logger
}

// NewCredentialService creates the service from its dependencies.
func NewCredentialService(deps CredentialServiceDeps) *CredentialService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialService{
		store:          deps.Store,
		hasher:         deps.Hasher,
		tokens:         deps.Tokens,
		passwordPolicy: PasswordPolicy(deps.Breach),
		usernamePolicy: UsernamePolicy(),
		logger:         logger,
	}
}

// ValidateUsername applies the username policy to a candidate name.
func (s *CredentialService) ValidateUsername(ctx context.Context, username string) error {
	return s.usernamePolicy.Apply(ctx, username)
}

// SetPassword validates the plaintext against the password policy,
// hashes it, and assigns the result to the user record. When the user
// already has an ID the new hash is persisted through the store; for a
// not-yet-created user the caller persists via Create.
//
// Policy failures wrap ErrPasswordPolicy (and validate.ErrValidation).
// The plaintext is never retained after this call returns.
func (s *CredentialService) SetPassword(ctx context.Context, user *User, plaintext string) error {
	if err := s.passwordPolicy.Apply(ctx, plaintext); err != nil {
		return fmt.Errorf("%w: %w", ErrPasswordPolicy, err)
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	if user.ID != "" {
		if err := s.store.UpdatePassword(ctx, user.ID, hash); err != nil {
			return fmt.Errorf("persisting password: %w", err)
		}
	}
	return nil
}

// VerifyPassword checks the plaintext against the user's stored hash,
// returning ErrInvalidCredentials on any mismatch or unverifiable hash.
//
// On success, a stored hash with stale parameters is transparently
// upgraded: exactly one rehash of the plaintext and one store write.
// A failed upgrade write is logged and does not fail the login — the
// user presented correct credentials and the old hash still verifies.
func (s *CredentialService) VerifyPassword(ctx context.Context, user *User, plaintext string) error {
	if err := s.hasher.Verify(user.PasswordHash, plaintext); err != nil {
		return err
	}

	if !s.hasher.NeedsRehash(user.PasswordHash) {
		return nil
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		s.logger.Warn("password rehash failed", "user_id", user.ID, "error", err)
		return nil
	}
	if err := s.store.UpdatePassword(ctx, user.ID, hash); err != nil {
		s.logger.Warn("persisting rehashed password failed", "user_id", user.ID, "error", err)
		return nil
	}
	user.PasswordHash = hash
	return nil
}

// IssueToken creates a signed token identifying the user. A ttl <= 0
// uses the issuer's configured default.
func (s *CredentialService) IssueToken(user *User, ttl time.Duration) (string, error) {
	return s.tokens.Issue(user.ID, ttl)
}

// ResolveToken verifies a token string and loads the user it identifies.
//
// An invalid token returns ErrTokenInvalid. A valid token whose subject
// no longer exists returns ErrUserNotFound — the two are deliberately
// distinct: the token itself was well-formed and correctly signed, the
// account behind it is simply gone.
func (s *CredentialService) ResolveToken(ctx context.Context, tokenString string) (*User, error) {
	subject, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetByID(ctx, subject)
	if err != nil {
		return nil, err
	}
	return user, nil
}
