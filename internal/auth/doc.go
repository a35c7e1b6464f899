// Package auth implements the user credential subsystem for Lights Core.
//
// It provides:
//   - Argon2id password hashing with explicit, injectable parameters and
//     transparent rehash-on-verify when stored parameters go stale
//   - Breach checking against a k-anonymity range service (best-effort:
//     an unreachable service never blocks account operations)
//   - Stateless HS256 token issuance and verification
//   - A credential service orchestrating validation, hashing, and token
//     resolution against an injected user store
//
// The package holds no shared mutable state of its own; all durable
// state lives in the user store. Every public operation is safe to call
// from concurrent request handlers.
package auth
