package holder

import (
	"os"
	"strings"
	"time"
)

const (
	ModeJWT    = "jwt"
	ModePaseto = "paseto"
)

// Config selects and parameterizes the access token verifier.
type Config struct {
	// Mode is ModeJWT or ModePaseto.
	Mode string

	JWTSecret string

	// Audience is required in JWTs when set.
	Audience string

	// Issuer is enforced when set.
	Issuer string

	PasetoPublicKeyHex string

	ClockSkew time.Duration
}

// DefaultConfig returns the hosted-auth defaults.
func DefaultConfig() Config {
	return Config{
		Mode:      ModeJWT,
		Audience:  "authenticated",
		ClockSkew: 30 * time.Second,
	}
}

// LoadConfigFromEnv loads holder auth configuration.
//
// Variables:
//   - FOUNDATHON_AUTH_MODE (jwt|paseto, default jwt)
//   - FOUNDATHON_AUTH_JWT_SECRET (required for jwt)
//   - FOUNDATHON_AUTH_JWT_AUDIENCE (default "authenticated"; "-" disables)
//   - FOUNDATHON_AUTH_PASETO_PUBLIC_KEY_HEX (required for paseto)
//   - FOUNDATHON_AUTH_ISSUER
//   - FOUNDATHON_AUTH_CLOCK_SKEW
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("FOUNDATHON_AUTH_MODE")); v != "" {
		cfg.Mode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("FOUNDATHON_AUTH_JWT_AUDIENCE")); v != "" {
		cfg.Audience = v
		if v == "-" {
			cfg.Audience = ""
		}
	}
	cfg.Issuer = strings.TrimSpace(os.Getenv("FOUNDATHON_AUTH_ISSUER"))

	if v := os.Getenv("FOUNDATHON_AUTH_CLOCK_SKEW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, ErrConfig
		}
		cfg.ClockSkew = d
	}

	switch cfg.Mode {
	case ModeJWT:
		cfg.JWTSecret = os.Getenv("FOUNDATHON_AUTH_JWT_SECRET")
		if cfg.JWTSecret == "" {
			return Config{}, ErrConfig
		}
	case ModePaseto:
		cfg.PasetoPublicKeyHex = strings.TrimSpace(os.Getenv("FOUNDATHON_AUTH_PASETO_PUBLIC_KEY_HEX"))
		if cfg.PasetoPublicKeyHex == "" {
			return Config{}, ErrConfig
		}
	default:
		return Config{}, ErrConfig
	}
	return cfg, nil
}

// New builds the Resolver selected by cfg.Mode.
func New(cfg Config) (Resolver, error) {
	switch cfg.Mode {
	case ModeJWT:
		r, err := NewJWTResolver(cfg)
		if err != nil {
			return nil, err
		}
		return r, nil
	case ModePaseto:
		r, err := NewPasetoResolver(cfg)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, ErrConfig
	}
}
