// Package auth verifies bearer credentials issued by the external identity
// provider and carries the verified identity through the request context.
//
// The provider signs tokens with RS256 and publishes its public keys as a
// JWKS document. This package only verifies — it never issues tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoCredential means the Authorization header was absent or not of
	// the Bearer scheme. Callers use this to produce an unauthenticated
	// response rather than treating the request as a forgery attempt.
	ErrNoCredential = errors.New("auth: no credential")

	// ErrInvalidCredential is the single outcome for every verification
	// failure: bad signature, expired token, wrong audience, unknown key
	// id, malformed token, or a key fetch that failed. The wrapped cause
	// is kept for diagnostics only — behavior never branches on it.
	ErrInvalidCredential = errors.New("auth: invalid credential")
)

const bearerPrefix = "Bearer "

// Verifier resolves a raw Authorization header value into a verified
// Identity. It is safe for concurrent use; the only shared state is the
// signing-key cache.
type Verifier struct {
	audience string
	parser   *jwt.Parser
	keys     *keySet
}

// NewVerifier creates a Verifier that checks tokens against the JWKS
// published at jwksURL and requires the given audience claim.
//
// If client is nil a default client with a bounded timeout is used — the
// key fetch is network I/O and must not hang a request indefinitely.
func NewVerifier(jwksURL, audience string, client *http.Client) (*Verifier, error) {
	if strings.TrimSpace(jwksURL) == "" {
		return nil, errors.New("auth: JWKS URL is required")
	}
	if strings.TrimSpace(audience) == "" {
		return nil, errors.New("auth: audience is required")
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Verifier{
		audience: audience,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"RS256"}),
			jwt.WithAudience(audience),
			jwt.WithExpirationRequired(),
		),
		keys: newKeySet(jwksURL, client),
	}, nil
}

// Verify resolves the raw Authorization header value into an Identity.
//
// An absent header or one without the Bearer scheme yields ErrNoCredential.
// Every other failure yields an error matching ErrInvalidCredential. On
// success the returned Identity wraps the token's subject claim.
func (v *Verifier) Verify(ctx context.Context, header string) (Identity, error) {
	if header == "" || !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrNoCredential
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if raw == "" {
		return "", fmt.Errorf("%w: empty token", ErrInvalidCredential)
	}

	claims := &jwt.RegisteredClaims{}
	token, err := v.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if strings.TrimSpace(kid) == "" {
			return nil, errors.New("token missing kid header")
		}
		return v.keys.get(ctx, kid)
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if !token.Valid {
		return "", fmt.Errorf("%w: token invalid", ErrInvalidCredential)
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrInvalidCredential)
	}

	return Identity(claims.Subject), nil
}
