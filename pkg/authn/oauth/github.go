package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

const (
	defaultGitHubUserURL   = "https://api.github.com/user"
	defaultGitHubEmailsURL = "https://api.github.com/user/emails"
)

// GitHubConfig holds GitHub OAuth settings, populated from the
// environment via pkg/config.
type GitHubConfig struct {
	ClientID     string   `env:"GITHUB_OAUTH_CLIENT_ID,required"`
	ClientSecret string   `env:"GITHUB_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string   `env:"GITHUB_OAUTH_REDIRECT_URL"`
	Scopes       []string `env:"GITHUB_OAUTH_SCOPES" envSeparator:","`
}

// GitHub implements Provider for GitHub accounts.
type GitHub struct {
	config    *oauth2.Config
	settings  settings
	userURL   string
	emailsURL string
}

// NewGitHub creates a GitHub provider. Scopes default to read:user and
// user:email when the config leaves them empty.
func NewGitHub(cfg GitHubConfig, opts ...Option) (*GitHub, error) {
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
		scopes = []string{"read:user", "user:email"}
	}

	return &GitHub{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     githuboauth.Endpoint,
		},
		settings:  s,
		userURL:   defaultGitHubUserURL,
		emailsURL: defaultGitHubEmailsURL,
	}, nil
}

func (p *GitHub) Name() string { return "github" }

func (p *GitHub) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange trades the code for a token, then fetches the profile and
// the verified primary email. GitHub does not return emails on the user
// endpoint when the profile email is private, hence the second call.
func (p *GitHub) Exchange(ctx context.Context, code string) (*Identity, error) {
	ctx = p.settings.context(ctx)

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, err)
	}
	client := p.config.Client(ctx, token)

	var profile struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := getJSON(client, p.userURL, &profile); err != nil {
		return nil, err
	}

	email, err := p.verifiedEmail(client)
	if err != nil {
		return nil, err
	}

	return &Identity{
		Provider: p.Name(),
		ID:       strconv.FormatInt(profile.ID, 10),
		Email:    email,
		Name:     profile.Name,
		Picture:  profile.AvatarURL,
	}, nil
}

// verifiedEmail prefers the primary verified address, then any verified
// one.
func (p *GitHub) verifiedEmail(client *http.Client) (string, error) {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := getJSON(client, p.emailsURL, &emails); err != nil {
		return "", err
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, nil
		}
	}
	return "", ErrEmailNotVerified
}

func getJSON(client *http.Client, url string, out any) error {
	resp, err := client.Get(url)
	if err != nil {
		return errors.Join(ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Join(ErrFetchFailed, fmt.Errorf("%s: status %d", url, resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Join(ErrDecodeFailed, err)
	}
	return nil
}
