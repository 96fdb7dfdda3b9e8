package middlewares

import (
	"errors"

	"github.com/sciocoder/FastEndpoints/internal"
	"github.com/sciocoder/FastEndpoints/pkg/authn"
	"github.com/sciocoder/FastEndpoints/pkg/authz"
)

// TokenVerifier turns a bearer token into the principal it carries.
// *authn.Service implements it.
type TokenVerifier interface {
	Verify(token string) (*authz.Principal, error)
}

// AuthConfig configures the authentication middleware.
type AuthConfig struct {
	Extractor    internal.Extractor
	extractorSet bool
	optional     bool
}

// AuthOption configures AuthConfig.
type AuthOption func(*AuthConfig)

// WithAuthExtractor sets a custom token extractor chain.
func WithAuthExtractor(ext internal.Extractor) AuthOption {
	return func(cfg *AuthConfig) {
		cfg.Extractor = ext
		cfg.extractorSet = true
	}
}

// OptionalAuth lets requests without a token continue anonymously.
// Requests that do present a token are still verified and rejected on
// failure.
func OptionalAuth() AuthOption {
	return func(cfg *AuthConfig) {
		cfg.optional = true
	}
}

// Auth returns middleware that extracts a bearer token from the request,
// verifies it, and stores the resulting principal for the authorization
// stage and claim-bound request fields.
func Auth(verifier TokenVerifier, opts ...AuthOption) internal.Middleware {
	cfg := &AuthConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	// Default extractor: Bearer token from Authorization header
	if !cfg.extractorSet {
		cfg.Extractor = internal.NewExtractor(
			internal.FromBearerToken(),
		)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			token, ok := cfg.Extractor.Extract(c)
			if !ok || token == "" {
				if cfg.optional {
					return next(c)
				}
				return internal.ErrUnauthorized("missing authentication token")
			}

			principal, err := verifier.Verify(token)
			if err != nil {
				if errors.Is(err, authn.ErrExpiredToken) {
					return internal.ErrUnauthorized("token expired")
				}
				return internal.ErrUnauthorized("invalid token")
			}

			c.Set(internal.PrincipalKey{}, principal)

			return next(c)
		}
	}
}
