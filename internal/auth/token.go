package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// defaultTokenTTL is used when a caller does not specify a lifetime.
const defaultTokenTTL = 24 * time.Hour

// TokenIssuer creates and verifies signed, time-bounded identity tokens.
//
// Tokens are standard compact JWTs (HS256) carrying {iss, sub, iat, nbf,
// exp} with whole-second timestamps, so any standard verifier holding
// the secret can validate them. The issuer is fully stateless: there is
// no revocation list, and sign-out is simply the token expiring.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenIssuer creates a token issuer. A zero defaultTTL selects the
// package default of 24 hours.
func NewTokenIssuer(secret []byte, issuer string, defaultTTL time.Duration) *TokenIssuer {
	if defaultTTL <= 0 {
		defaultTTL = defaultTokenTTL
	}
	return &TokenIssuer{secret: secret, issuer: issuer, ttl: defaultTTL}
}

// Issue creates a signed token for the given subject. The validity
// window is [now, now+ttl]; iat and nbf are both set to now. A ttl <= 0
// uses the issuer's default.
func (t *TokenIssuer) Issue(subjectID string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = t.ttl
	}

	// Whole seconds only: fractional timestamps make token payloads
	// non-canonical and comparisons inexact.
	now := time.Now().Truncate(time.Second)

	claims := jwt.RegisteredClaims{
		Issuer:    t.issuer,
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl.Truncate(time.Second))),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks a token's signature and validity window and returns the
// subject ID. Every failure mode — bad signature, expired, not yet
// valid, wrong issuer, malformed claims — wraps ErrTokenInvalid; the
// wrapped reason exists for diagnostics, not for differing caller
// behaviour.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(_ *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", ErrTokenInvalid
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	return claims.Subject, nil
}
