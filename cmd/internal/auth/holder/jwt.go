package holder

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTResolver verifies HS256 access tokens signed with a shared secret.
type JWTResolver struct {
	secret    []byte
	audience  string
	issuer    string
	clockSkew time.Duration
}

// NewJWTResolver builds a JWTResolver from cfg.
func NewJWTResolver(cfg Config) (*JWTResolver, error) {
	if len(cfg.JWTSecret) == 0 {
		return nil, ErrConfig
	}
	return &JWTResolver{
		secret:    []byte(cfg.JWTSecret),
		audience:  cfg.Audience,
		issuer:    cfg.Issuer,
		clockSkew: cfg.ClockSkew,
	}, nil
}

func (j *JWTResolver) Resolve(ctx context.Context, token string, now time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(j.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}
	if j.audience != "" {
		opts = append(opts, jwt.WithAudience(j.audience))
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return "", ErrUnauthenticated
	}

	sub := strings.TrimSpace(claims.Subject)
	if sub == "" {
		return "", ErrUnauthenticated
	}
	return sub, nil
}
