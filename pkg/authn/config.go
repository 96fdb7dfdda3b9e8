package authn

import "time"

// Config holds token service configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	// SigningKey is the HMAC secret. Must be at least 32 bytes.
	SigningKey string `env:"AUTHN_SIGNING_KEY,required"`

	// Issuer is stamped on issued tokens and enforced during verification
	// when set.
	Issuer string `env:"AUTHN_ISSUER"`

	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration `env:"AUTHN_TOKEN_TTL" envDefault:"1h"`
}

// NewFromConfig creates a token service from environment-derived
// configuration.
func NewFromConfig(cfg Config) (*Service, error) {
	opts := []Option{WithTokenTTL(cfg.TokenTTL)}
	if cfg.Issuer != "" {
		opts = append(opts, WithIssuer(cfg.Issuer))
	}
	return New(cfg.SigningKey, opts...)
}
