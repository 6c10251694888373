// Package account provides JWT issuance and verification backed by
// asymmetric key pairs, plus the account lifecycle state machine the
// tokens authenticate against.
//
// Token subsystem:
//   - KeyProvider loads an RSA or EC key pair from PEM resources, validates
//     key strength, and supports atomic hot reload.
//   - TokenCodec signs and parses tokens without evaluating expiry; policy
//     decisions live one layer up.
//   - TokenService issues access/refresh pairs, validates presented tokens
//     (fail closed), and exchanges refresh tokens for fresh access tokens.
//
// Lifecycle subsystem:
//   - Lifecycle implements registration, profile updates, password change,
//     deactivation/reactivation, and the two-phase deletion flow (mark, then
//     sweep after the retention window).
//   - SweepScheduler runs the deletion sweep on an interval; overlapping
//     runs collapse via a single flight guard.
//
// The middleware/authgate package mounts the request gate: it extracts a
// bearer token, resolves the subject's identity, and either attaches a
// Principal to the request context or rejects with 401.
package account
