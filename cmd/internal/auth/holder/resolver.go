package holder

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Resolver turns an access token into a holder id.
type Resolver interface {
	Resolve(ctx context.Context, token string, now time.Time) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, token string, now time.Time) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context, token string, now time.Time) (string, error) {
	return f(ctx, token, now)
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// FromRequest resolves the holder of r. Every failure is ErrUnauthenticated
// so callers cannot tell which check failed.
func FromRequest(r *http.Request, res Resolver, now time.Time) (string, error) {
	if res == nil {
		return "", ErrUnauthenticated
	}
	tok := BearerToken(r)
	if tok == "" {
		return "", ErrUnauthenticated
	}
	id, err := res.Resolve(r.Context(), tok, now)
	if err != nil || strings.TrimSpace(id) == "" {
		return "", ErrUnauthenticated
	}
	return id, nil
}

// Static resolves a fixed token table. It backs tests and local development.
type Static map[string]string

func (s Static) Resolve(_ context.Context, token string, _ time.Time) (string, error) {
	id, ok := s[token]
	if !ok {
		return "", ErrUnauthenticated
	}
	return id, nil
}
