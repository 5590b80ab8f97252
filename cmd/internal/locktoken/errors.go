package locktoken

import "errors"

var (
	// ErrConfiguration is returned when no signing secret is available.
	ErrConfiguration = errors.New("lock token: signing secret not configured")

	// ErrInvalidInput is returned when Mint is called without a resource or holder id.
	ErrInvalidInput = errors.New("lock token: invalid input")

	// ErrMalformed is returned when the token does not have two non-empty halves.
	ErrMalformed = errors.New("lock token: malformed")

	// ErrSignatureMismatch is returned when the signature does not match the payload.
	ErrSignatureMismatch = errors.New("lock token: signature mismatch")

	// ErrPayloadCorrupt is returned when a correctly signed payload cannot be decoded.
	ErrPayloadCorrupt = errors.New("lock token: payload corrupt")

	// ErrUnsupportedVersion is returned for payloads minted with another schema version.
	ErrUnsupportedVersion = errors.New("lock token: unsupported version")

	// ErrIdentityMismatch is returned when the token was minted for another holder.
	ErrIdentityMismatch = errors.New("lock token: holder mismatch")

	// ErrResourceMismatch is returned when the token was minted for another resource.
	ErrResourceMismatch = errors.New("lock token: resource mismatch")

	// ErrExpired is returned at or after the token's expiry instant.
	ErrExpired = errors.New("lock token: expired")
)

// IsUntrusted reports whether err means the token itself cannot be trusted
// (malformed, forged, corrupt or from an unknown schema). Callers treat all of
// these the same way: reject and require a fresh lock.
func IsUntrusted(err error) bool {
	return errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrSignatureMismatch) ||
		errors.Is(err, ErrPayloadCorrupt) ||
		errors.Is(err, ErrUnsupportedVersion)
}

// IsNotApplicable reports whether err means the token is authentic but was
// minted for a different holder or resource.
func IsNotApplicable(err error) bool {
	return errors.Is(err, ErrIdentityMismatch) || errors.Is(err, ErrResourceMismatch)
}
