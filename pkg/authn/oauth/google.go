package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

const defaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleConfig holds Google OAuth settings, populated from the
// environment via pkg/config.
type GoogleConfig struct {
	ClientID     string   `env:"GOOGLE_OAUTH_CLIENT_ID,required"`
	ClientSecret string   `env:"GOOGLE_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string   `env:"GOOGLE_OAUTH_REDIRECT_URL"`
	Scopes       []string `env:"GOOGLE_OAUTH_SCOPES" envSeparator:","`
}

// Google implements Provider for Google accounts.
type Google struct {
	config      *oauth2.Config
	settings    settings
	userInfoURL string
}

// NewGoogle creates a Google provider. Scopes default to email and
// profile when the config leaves them empty.
func NewGoogle(cfg GoogleConfig, opts ...Option) (*Google, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if cfg.ClientSecret == "" {
		return nil, ErrMissingClientSecret
	}

	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		}
	}

	return &Google{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     googleoauth.Endpoint,
		},
		settings:    s,
		userInfoURL: defaultGoogleUserInfoURL,
	}, nil
}

func (p *Google) Name() string { return "google" }

func (p *Google) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange trades the code for a token and fetches the profile from the
// userinfo endpoint. Unverified emails are rejected.
func (p *Google) Exchange(ctx context.Context, code string) (*Identity, error) {
	ctx = p.settings.context(ctx)

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, err)
	}

	resp, err := p.config.Client(ctx, token).Get(p.userInfoURL)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("userinfo status %d", resp.StatusCode))
	}

	var profile struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
		VerifiedEmail bool   `json:"verified_email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, errors.Join(ErrDecodeFailed, err)
	}
	if !profile.VerifiedEmail {
		return nil, ErrEmailNotVerified
	}

	return &Identity{
		Provider: p.Name(),
		ID:       profile.ID,
		Email:    profile.Email,
		Name:     profile.Name,
		Picture:  profile.Picture,
	}, nil
}
