// Package oauth signs users in through external identity providers.
// A Provider runs the authorization-code flow and returns normalized
// profile data; Identity.Principal bridges the result into the
// framework's security model so authn.Service can issue a token for it.
package oauth

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/sciocoder/FastEndpoints/pkg/authz"
)

var (
	ErrMissingClientID     = errors.New("oauth: missing client ID")
	ErrMissingClientSecret = errors.New("oauth: missing client secret")
	ErrEmailNotVerified    = errors.New("oauth: email not verified")
	ErrFetchFailed         = errors.New("oauth: provider request failed")
	ErrDecodeFailed        = errors.New("oauth: failed to decode provider response")
)

// Identity is the provider-agnostic profile returned after a completed
// authorization-code flow. The email is always verified; providers
// return ErrEmailNotVerified otherwise.
type Identity struct {
	Provider string
	ID       string
	Email    string
	Name     string
	Picture  string
}

// Principal converts the identity into a principal the token service
// can issue for. The subject is "{provider}:{id}" so identities from
// different providers never collide.
func (i *Identity) Principal(roles ...string) *authz.Principal {
	return &authz.Principal{
		Subject: i.Provider + ":" + i.ID,
		Roles:   roles,
		Claims: map[string]string{
			"email":    i.Email,
			"name":     i.Name,
			"provider": i.Provider,
		},
	}
}

// Provider runs the OAuth authorization-code flow for one identity
// provider.
type Provider interface {
	// Name returns the provider identifier, e.g. "google".
	Name() string

	// AuthCodeURL builds the URL the browser is redirected to; state is
	// the caller's CSRF token.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for a token and fetches the
	// user's verified identity with it.
	Exchange(ctx context.Context, code string) (*Identity, error)
}

// Option adjusts provider construction.
type Option func(*settings)

type settings struct {
	httpClient *http.Client
}

// WithHTTPClient overrides the HTTP client used for token exchange and
// profile requests. Intended for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) {
		s.httpClient = c
	}
}

func (s *settings) context(ctx context.Context) context.Context {
	if s.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}
	return ctx
}
