package token

import "errors"

// Public, stable errors for callers.
var (
	ErrSecretMissing  = errors.New("lock signing secret missing")
	ErrSecretTooShort = errors.New("lock signing secret too short")
)
