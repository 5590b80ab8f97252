// Package locktoken mints and verifies problem-statement lock tokens.
//
// A lock token is a stateless, signed, time-boxed claim ticket binding a
// resource id to a holder id. Nothing is persisted: possession of a token that
// verifies is the only state.
//
// Wire format:
//
//	base64url(json(payload)) "." base64url(HMAC-SHA256(encoded payload, secret))
//
// Verification checks, in this order: shape, signature, payload decoding,
// version, holder, resource, expiry. Content is never inspected before the
// signature has been checked.
package locktoken
