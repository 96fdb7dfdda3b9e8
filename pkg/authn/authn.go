package authn

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sciocoder/FastEndpoints/pkg/authz"
	"github.com/sciocoder/FastEndpoints/pkg/id"
)

// minKeyLength guards against brute-forceable HMAC keys.
const minKeyLength = 32

// reservedClaims are the registered JWT claim names plus the payload keys
// the service writes itself. Principal claims with these names are skipped
// during issuance so they cannot spoof the token envelope.
var reservedClaims = map[string]struct{}{
	"iss": {}, "sub": {}, "aud": {}, "exp": {},
	"nbf": {}, "iat": {}, "jti": {},
	"roles": {}, "perms": {},
}

// Service issues and verifies HMAC-signed bearer tokens that carry a
// principal's identity, roles, permissions, and custom claims.
type Service struct {
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
	now        func() time.Time
}

// Option configures the token service.
type Option func(*Service)

// WithIssuer sets the iss claim on issued tokens and requires it on
// verified ones.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		s.issuer = issuer
	}
}

// WithTokenTTL sets the token lifetime. Defaults to one hour.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a token service signing with the given key.
func New(signingKey string, opts ...Option) (*Service, error) {
	if len(signingKey) < minKeyLength {
		return nil, ErrKeyTooShort
	}
	s := &Service{
		signingKey: []byte(signingKey),
		tokenTTL:   time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token for the principal. The subject, roles, permissions,
// and custom claims all round-trip through Verify; claims that would
// collide with the token envelope are dropped.
func (s *Service) Issue(p *authz.Principal) (string, error) {
	if p == nil || p.Subject == "" {
		return "", ErrNoSubject
	}

	now := s.now()
	claims := jwt.MapClaims{
		"sub": p.Subject,
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(now.Add(s.tokenTTL)),
		"jti": id.NewULID(),
	}
	if s.issuer != "" {
		claims["iss"] = s.issuer
	}
	if len(p.Roles) > 0 {
		claims["roles"] = p.Roles
	}
	if len(p.Permissions) > 0 {
		claims["perms"] = p.Permissions
	}
	for name, value := range p.Claims {
		if _, reserved := reservedClaims[name]; reserved {
			continue
		}
		claims[name] = value
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("authn: sign token: %w", err)
	}
	return token, nil
}

// Verify parses and validates a token and rebuilds the principal it
// carries. Expired tokens return ErrExpiredToken; every other failure
// returns ErrInvalidToken.
func (s *Service) Verify(token string) (*authz.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	return principalFromClaims(claims), nil
}

// principalFromClaims rebuilds the principal from a verified payload. The
// subject is mirrored into the claims map so claim-based checks and
// claim-bound request fields can reach it by name.
func principalFromClaims(claims jwt.MapClaims) *authz.Principal {
	p := &authz.Principal{Claims: make(map[string]string, len(claims))}
	for name, value := range claims {
		switch name {
		case "sub":
			if sub, ok := value.(string); ok {
				p.Subject = sub
				p.Claims["sub"] = sub
			}
		case "roles":
			p.Roles = stringSlice(value)
		case "perms":
			p.Permissions = stringSlice(value)
		case "iss", "aud", "exp", "nbf", "iat", "jti":
			// Envelope, not identity.
		default:
			p.Claims[name] = claimString(value)
		}
	}
	return p
}

func stringSlice(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// claimString renders the JSON claim values that survive a decode round
// trip. Custom claims are issued as strings, but tokens minted elsewhere
// may carry numbers or booleans.
func claimString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
