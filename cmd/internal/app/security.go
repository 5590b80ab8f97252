package app

import (
	"errors"

	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/locktoken"
	"github.com/yatinannam/foundathon-landing-sub000/cmd/security/token"
)

// LoadLockSecret enforces the lock secret policy at startup.
//
// With RequireStrongSecret the server refuses to start unless
// FOUNDATHON_LOCK_SECRET holds at least token.MinSecretBytes bytes.
// Without it a missing secret is allowed: the server starts and every lock
// operation fails with locktoken.ErrConfiguration. There is no unsigned mode.
func LoadLockSecret(cfg Config, log Logger) ([]byte, error) {
	if cfg.RequireStrongSecret {
		key, err := token.SecretFromEnv(token.MinSecretBytes)
		switch {
		case errors.Is(err, token.ErrSecretMissing):
			return nil, errors.New("security policy: FOUNDATHON_REQUIRE_STRONG_SECRET=true but FOUNDATHON_LOCK_SECRET is missing")
		case errors.Is(err, token.ErrSecretTooShort):
			return nil, errors.New("security policy: FOUNDATHON_REQUIRE_STRONG_SECRET=true but FOUNDATHON_LOCK_SECRET is too short (min 32 bytes)")
		case err != nil:
			return nil, err
		}
		return key, nil
	}

	key, err := token.SecretFromEnv(0)
	if errors.Is(err, token.ErrSecretMissing) {
		log.Warn("security.lock_secret.missing", "effect", "lock requests fail until FOUNDATHON_LOCK_SECRET is set")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(key) < token.MinSecretBytes {
		log.Warn("security.lock_secret.short", "bytes", len(key), "min", token.MinSecretBytes)
	}
	return key, nil
}

// newLockCodec builds the codec, or nil when no secret is configured.
func newLockCodec(secret []byte, cfg Config) (*locktoken.Codec, error) {
	if len(secret) == 0 {
		return nil, nil
	}
	return locktoken.NewCodec(secret, locktoken.WithDefaultTTL(cfg.LockTTL))
}
