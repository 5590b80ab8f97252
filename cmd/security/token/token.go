package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"os"
	"strings"
)

const (
	// SecretEnvKey is the env var name for the lock signing secret.
	// #nosec G101 -- not a credential; it's an environment variable name.
	SecretEnvKey = "FOUNDATHON_LOCK_SECRET"

	// MinSecretBytes is the recommended minimum secret size for HMAC-SHA256.
	MinSecretBytes = 32
)

// SignHMACSHA256 returns the raw HMAC-SHA256 of msg under key.
func SignHMACSHA256(msg, key []byte) []byte {
	m := hmac.New(sha256.New, key)
	_, _ = m.Write(msg)
	return m.Sum(nil)
}

// SignBase64URL returns the HMAC-SHA256 of msg under key, encoded as unpadded base64url.
func SignBase64URL(msg string, key []byte) string {
	return base64.RawURLEncoding.EncodeToString(SignHMACSHA256([]byte(msg), key))
}

// EqualSignatures compares two encoded signatures in constant time.
// Strings of different length never match; the comparison does not leak
// how many leading characters agree.
func EqualSignatures(expected, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) == 1
}

// SecretFromEnv returns the configured secret bytes (trimmed), enforcing a minimum byte length.
// If the env var is missing/blank -> ErrSecretMissing.
// If too short -> ErrSecretTooShort.
func SecretFromEnv(minBytes int) ([]byte, error) {
	return ParseSecret(os.Getenv(SecretEnvKey), minBytes)
}

// ParseSecret validates a raw secret value the same way SecretFromEnv does.
func ParseSecret(raw string, minBytes int) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrSecretMissing
	}
	b := []byte(raw)
	if minBytes > 0 && len(b) < minBytes {
		return nil, ErrSecretTooShort
	}
	return b, nil
}

// SecretConfigured reports whether the env secret is present (non-empty after trim).
// Note: This does not enforce minimum length. Use SecretFromEnv for policy checks.
func SecretConfigured() bool {
	return strings.TrimSpace(os.Getenv(SecretEnvKey)) != ""
}
