package holder

import "errors"

var (
	// ErrUnauthenticated is returned when no valid access token was presented.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid holder auth config")
)
