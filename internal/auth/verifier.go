// Package auth verifies bearer tokens issued by an external identity
// provider against its published key material.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotConfigured is returned when the identity provider domain or
// audience is absent from configuration.
var ErrNotConfigured = errors.New("auth domain or audience is not configured")

// ErrInvalidToken covers every verification failure; callers map it to
// a 401-class rejection.
var ErrInvalidToken = errors.New("invalid token")

// Config holds verifier configuration.
type Config struct {
	Domain     string // identity provider domain, e.g. "tenant.auth.example.com"
	Audience   string
	HTTPClient *http.Client // Optional (tests)
	JWKSURL    string       // Optional override (tests)
	Logger     *slog.Logger
}

// Verifier validates bearer tokens: signature against provider JWKS,
// audience, and issuer.
type Verifier struct {
	domain   string
	audience string
	issuer   string
	keys     *KeySet
	logger   *slog.Logger
}

// NewVerifier creates a token verifier.
func NewVerifier(cfg Config) *Verifier {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	jwksURL := cfg.JWKSURL
	if jwksURL == "" && cfg.Domain != "" {
		jwksURL = fmt.Sprintf("https://%s/.well-known/jwks.json", cfg.Domain)
	}
	return &Verifier{
		domain:   cfg.Domain,
		audience: cfg.Audience,
		issuer:   fmt.Sprintf("https://%s/", cfg.Domain),
		keys:     NewKeySet(jwksURL, cfg.HTTPClient),
		logger:   cfg.Logger,
	}
}

// Configured reports whether the verifier has a domain and audience.
func (v *Verifier) Configured() bool {
	return v.domain != "" && v.audience != ""
}

// Verify validates a raw bearer token and returns its claim set.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (map[string]any, error) {
	if !v.Configured() {
		return nil, ErrNotConfigured
	}
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, fmt.Errorf("%w: missing token", ErrInvalidToken)
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(rawToken, claims,
		func(token *jwt.Token) (any, error) {
			kid, _ := token.Header["kid"].(string)
			return v.keys.Key(ctx, kid)
		},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.audience),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		v.logger.Debug("token verification failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return map[string]any(claims), nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	return header[len(prefix):], true
}
