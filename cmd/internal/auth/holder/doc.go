// Package holder resolves the calling holder's stable identity from an access
// token issued by the external identity provider.
//
// Two token families are supported:
//   - HS256 JWTs as issued by hosted auth providers (holder id in "sub").
//   - PASETO v4.public tokens (holder id in "sub", or "uid" for tokens minted
//     by a first-party session service).
//
// The resolved id is opaque: callers only compare it for equality.
package holder
