// Package token provides the signing primitives behind Foundathon lock tokens.
//
// It is the single source of truth for how the server-held secret is read and
// how signatures are produced and compared.
//
// Design goals:
// - HMAC-SHA256 over the exact encoded bytes handed to the caller.
// - URL-safe, unpadded base64 signatures so tokens survive query strings and JSON.
// - Constant-time comparison of encoded signatures (no early exit on prefix match).
//
// Environment:
// - FOUNDATHON_LOCK_SECRET: the signing secret. There is no unsigned fallback.
package token
