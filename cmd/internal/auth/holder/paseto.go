package holder

import (
	"context"
	"strings"
	"time"

	paseto "aidanwoods.dev/go-paseto"
)

// PasetoResolver verifies PASETO v4.public access tokens.
type PasetoResolver struct {
	issuer    string
	clockSkew time.Duration
	public    paseto.V4AsymmetricPublicKey
}

// NewPasetoResolver builds a PasetoResolver from cfg.
func NewPasetoResolver(cfg Config) (*PasetoResolver, error) {
	public, err := paseto.NewV4AsymmetricPublicKeyFromHex(cfg.PasetoPublicKeyHex)
	if err != nil {
		return nil, ErrConfig
	}
	return &PasetoResolver{
		issuer:    cfg.Issuer,
		clockSkew: cfg.ClockSkew,
		public:    public,
	}, nil
}

func (p *PasetoResolver) Resolve(ctx context.Context, token string, now time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	// Time claims are checked against now below; the default parser would
	// read the wall clock.
	parser := paseto.NewParserWithoutExpiryCheck()
	if p.issuer != "" {
		parser.AddRule(paseto.IssuedBy(p.issuer))
	}

	parsed, err := parser.ParseV4Public(p.public, token, nil)
	if err != nil {
		return "", ErrUnauthenticated
	}
	if !p.validAt(parsed, now) {
		return "", ErrUnauthenticated
	}

	if sub, err := parsed.GetSubject(); err == nil && strings.TrimSpace(sub) != "" {
		return strings.TrimSpace(sub), nil
	}
	if uid, err := parsed.GetString("uid"); err == nil && strings.TrimSpace(uid) != "" {
		return strings.TrimSpace(uid), nil
	}
	return "", ErrUnauthenticated
}

// validAt requires exp and tolerates clockSkew on every time claim.
func (p *PasetoResolver) validAt(tok *paseto.Token, now time.Time) bool {
	exp, err := tok.GetExpiration()
	if err != nil || !now.Add(-p.clockSkew).Before(exp) {
		return false
	}
	if nbf, err := tok.GetNotBefore(); err == nil && nbf.After(now.Add(p.clockSkew)) {
		return false
	}
	if iat, err := tok.GetIssuedAt(); err == nil && iat.After(now.Add(p.clockSkew)) {
		return false
	}
	return true
}
