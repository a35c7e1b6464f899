package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"
)

// HasherConfig holds Argon2id cost parameters. Defaults follow the
// OWASP recommendation; they are explicit rather than ambient so tests
// and deployments can inject their own.
type HasherConfig struct {
	Time       uint32 // iterations
	Memory     uint32 // KiB
	Threads    uint8  // parallelism
	KeyLength  uint32 // output digest length in bytes
	SaltLength uint32 // salt length in bytes
}

// DefaultHasherConfig returns the current recommended parameters.
func DefaultHasherConfig() HasherConfig {
	return HasherConfig{
		Time:       3,
		Memory:     64 * 1024, // 64 MiB
		Threads:    1,
		KeyLength:  32,
		SaltLength: 16,
	}
}

// EncodedHashLength is the exact length of a PHC string produced by a
// hasher running DefaultHasherConfig. The users table CHECK constraint
// relies on this value; it changes whenever the default parameters do.
const EncodedHashLength = 97

// Hasher produces and verifies Argon2id password hashes in PHC string
// format: $argon2id$v=19$m=65536,t=3,p=1$<salt>$<hash>
//
// Hasher is pure and stateless: the rehash-on-verify side effect is the
// credential service's job, not this type's.
type Hasher struct {
	cfg HasherConfig
}

// NewHasher creates a Hasher with the given parameters. Zero-valued
// fields fall back to the defaults.
func NewHasher(cfg HasherConfig) *Hasher {
	def := DefaultHasherConfig()
	if cfg.Time == 0 {
		cfg.Time = def.Time
	}
	if cfg.Memory == 0 {
		cfg.Memory = def.Memory
	}
	if cfg.Threads == 0 {
		cfg.Threads = def.Threads
	}
	if cfg.KeyLength == 0 {
		cfg.KeyLength = def.KeyLength
	}
	if cfg.SaltLength == 0 {
		cfg.SaltLength = def.SaltLength
	}
	return &Hasher{cfg: cfg}
}

// Hash hashes a plaintext password with a fresh random salt and returns
// the PHC-encoded result. It fails with ErrEncoding when the input is
// not valid UTF-8 text.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if !utf8.ValidString(plaintext) {
		return "", fmt.Errorf("%w: password is not valid UTF-8", ErrEncoding)
	}

	salt := make([]byte, h.cfg.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	digest := argon2.IDKey([]byte(plaintext), salt, h.cfg.Time, h.cfg.Memory, h.cfg.Threads, h.cfg.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.cfg.Memory, h.cfg.Time, h.cfg.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// Verify checks a plaintext password against a PHC-encoded hash.
//
// A mismatch, a malformed hash, and an unverifiable hash all return
// ErrInvalidCredentials — one error kind on purpose, since the caller
// rejects the login identically in every case.
func (h *Hasher) Verify(encodedHash, plaintext string) error {
	salt, digest, params, err := decodePHC(encodedHash)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	candidate := argon2.IDKey([]byte(plaintext), salt, params.time, params.memory, params.threads, uint32(len(digest))) //nolint:gosec // digest length always fits uint32

	if subtle.ConstantTimeCompare(digest, candidate) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}

// NeedsRehash reports whether a stored hash was produced with parameters
// that differ from this hasher's configuration. A hash that cannot be
// parsed also reports true; Verify rejects it before a rehash could run.
func (h *Hasher) NeedsRehash(encodedHash string) bool {
	salt, digest, params, err := decodePHC(encodedHash)
	if err != nil {
		return true
	}
	return params.version != argon2.Version ||
		params.time != h.cfg.Time ||
		params.memory != h.cfg.Memory ||
		params.threads != h.cfg.Threads ||
		uint32(len(digest)) != h.cfg.KeyLength || //nolint:gosec // digest length always fits uint32
		uint32(len(salt)) != h.cfg.SaltLength //nolint:gosec // salt length always fits uint32
}

type phcParams struct {
	version int
	time    uint32
	memory  uint32
	threads uint8
}

// decodePHC parses an Argon2id PHC string into its components.
func decodePHC(encoded string) (salt, digest []byte, params phcParams, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 { //nolint:mnd // PHC format has exactly 6 $-delimited parts
		return nil, nil, params, fmt.Errorf("invalid PHC hash format")
	}

	if parts[1] != "argon2id" {
		return nil, nil, params, fmt.Errorf("unsupported algorithm: %s", parts[1])
	}

	if _, err := fmt.Sscanf(parts[2], "v=%d", &params.version); err != nil { //nolint:govet // shadow: err re-declared in nested scope
		return nil, nil, params, fmt.Errorf("parsing version: %w", err)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.time, &params.threads); err != nil { //nolint:govet // shadow: err re-declared in nested scope
		return nil, nil, params, fmt.Errorf("parsing parameters: %w", err)
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, params, fmt.Errorf("decoding salt: %w", err)
	}

	digest, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, params, fmt.Errorf("decoding hash: %w", err)
	}

	return salt, digest, params, nil
}
