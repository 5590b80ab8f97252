package locktoken

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/yatinannam/foundathon-landing-sub000/cmd/security/token"
)

const (
	// Version is the payload schema version minted and accepted by this codec.
	Version = 1

	// DefaultTTL is the lock lifetime used when Mint is called without one.
	DefaultTTL = 30 * time.Minute

	separator = "."
)

// Payload is the signed content of a lock token.
type Payload struct {
	ResourceID  string `json:"resourceId"`
	HolderID    string `json:"holderId"`
	IssuedAtMs  int64  `json:"issuedAtMs"`
	ExpiresAtMs int64  `json:"expiresAtMs"`
	Version     int    `json:"version"`
}

// IssuedAt returns the issue instant in UTC.
func (p Payload) IssuedAt() time.Time { return time.UnixMilli(p.IssuedAtMs).UTC() }

// ExpiresAt returns the expiry instant in UTC.
func (p Payload) ExpiresAt() time.Time { return time.UnixMilli(p.ExpiresAtMs).UTC() }

// Token is a freshly minted lock token together with its decoded payload.
type Token struct {
	Value   string
	Payload Payload
}

// ExpiresAt is a display helper for the token's expiry.
func (t Token) ExpiresAt() time.Time { return t.Payload.ExpiresAt() }

// Codec mints and verifies lock tokens with a server-held secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Codec.
type Option func(*Codec) error

// WithDefaultTTL overrides DefaultTTL for Mint calls that pass ttl <= 0.
// Lifetimes are carried in milliseconds, so d must be at least one.
func WithDefaultTTL(d time.Duration) Option {
	return func(c *Codec) error {
		if d < time.Millisecond {
			return ErrInvalidInput
		}
		c.ttl = d
		return nil
	}
}

// WithClock sets the time source used by Mint and by Verify when now is zero.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) error {
		if now == nil {
			return ErrInvalidInput
		}
		c.now = now
		return nil
	}
}

// NewCodec constructs a Codec. An empty secret fails closed with ErrConfiguration.
func NewCodec(secret []byte, opts ...Option) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrConfiguration
	}
	c := &Codec{
		secret: append([]byte(nil), secret...),
		ttl:    DefaultTTL,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Mint issues a token for (resourceID, holderID) valid for ttl, or for the
// codec's default lifetime when ttl <= 0. A positive ttl below one
// millisecond is rejected with ErrInvalidInput.
func (c *Codec) Mint(resourceID, holderID string, ttl time.Duration) (Token, error) {
	if c == nil || len(c.secret) == 0 {
		return Token{}, ErrConfiguration
	}
	if resourceID == "" || holderID == "" {
		return Token{}, ErrInvalidInput
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	if ttl < time.Millisecond {
		return Token{}, ErrInvalidInput
	}

	issued := c.now().UnixMilli()
	p := Payload{
		ResourceID:  resourceID,
		HolderID:    holderID,
		IssuedAtMs:  issued,
		ExpiresAtMs: issued + ttl.Milliseconds(),
		Version:     Version,
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return Token{}, err
	}
	encoded := base64.RawURLEncoding.EncodeToString(raw)
	sig := token.SignBase64URL(encoded, c.secret)

	return Token{Value: encoded + separator + sig, Payload: p}, nil
}

// Verify checks tok against (resourceID, holderID) at now and returns its
// payload. A zero now means the codec's clock.
func (c *Codec) Verify(tok, resourceID, holderID string, now time.Time) (Payload, error) {
	if c == nil || len(c.secret) == 0 {
		return Payload{}, ErrConfiguration
	}

	encoded, sig, ok := strings.Cut(tok, separator)
	if !ok || encoded == "" || sig == "" {
		return Payload{}, ErrMalformed
	}

	if !token.EqualSignatures(token.SignBase64URL(encoded, c.secret), sig) {
		return Payload{}, ErrSignatureMismatch
	}

	p, err := decodePayload(encoded)
	if err != nil {
		return Payload{}, ErrPayloadCorrupt
	}
	if p.Version != Version {
		return Payload{}, ErrUnsupportedVersion
	}
	if p.HolderID != holderID {
		return Payload{}, ErrIdentityMismatch
	}
	if p.ResourceID != resourceID {
		return Payload{}, ErrResourceMismatch
	}

	if now.IsZero() {
		now = c.now()
	}
	if now.UnixMilli() >= p.ExpiresAtMs {
		return Payload{}, ErrExpired
	}
	return p, nil
}

func decodePayload(encoded string) (Payload, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return Payload{}, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var p Payload
	if err := dec.Decode(&p); err != nil {
		return Payload{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return Payload{}, ErrPayloadCorrupt
	}
	return p, nil
}
