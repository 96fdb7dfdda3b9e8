package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": "test-token",
		"token_type":   "bearer",
	})
}

func TestNewGoogleValidation(t *testing.T) {
	t.Parallel()

	_, err := NewGoogle(GoogleConfig{ClientSecret: "s"})
	require.ErrorIs(t, err, ErrMissingClientID)

	_, err = NewGoogle(GoogleConfig{ClientID: "c"})
	require.ErrorIs(t, err, ErrMissingClientSecret)
}

func TestNewGitHubValidation(t *testing.T) {
	t.Parallel()

	_, err := NewGitHub(GitHubConfig{ClientSecret: "s"})
	require.ErrorIs(t, err, ErrMissingClientID)

	_, err = NewGitHub(GitHubConfig{ClientID: "c"})
	require.ErrorIs(t, err, ErrMissingClientSecret)
}

func TestGoogleAuthCodeURL(t *testing.T) {
	t.Parallel()

	p, err := NewGoogle(GoogleConfig{ClientID: "c", ClientSecret: "s", RedirectURL: "https://app.example.com/cb"})
	require.NoError(t, err)

	u := p.AuthCodeURL("state-123")
	assert.Contains(t, u, "client_id=c")
	assert.Contains(t, u, "state=state-123")
}

func TestGoogleExchange(t *testing.T) {
	t.Parallel()

	t.Run("verified email", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/token", tokenHandler)
		mux.HandleFunc("/userinfo", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":             "g-1",
				"email":          "ada@example.com",
				"name":           "Ada",
				"verified_email": true,
			})
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		p, err := NewGoogle(GoogleConfig{ClientID: "c", ClientSecret: "s"},
			WithHTTPClient(srv.Client()))
		require.NoError(t, err)
		p.config.Endpoint = oauth2.Endpoint{TokenURL: srv.URL + "/token"}
		p.userInfoURL = srv.URL + "/userinfo"

		identity, err := p.Exchange(context.Background(), "code")
		require.NoError(t, err)
		assert.Equal(t, "google", identity.Provider)
		assert.Equal(t, "g-1", identity.ID)
		assert.Equal(t, "ada@example.com", identity.Email)
	})

	t.Run("unverified email rejected", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/token", tokenHandler)
		mux.HandleFunc("/userinfo", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":             "g-2",
				"email":          "eve@example.com",
				"verified_email": false,
			})
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		p, err := NewGoogle(GoogleConfig{ClientID: "c", ClientSecret: "s"},
			WithHTTPClient(srv.Client()))
		require.NoError(t, err)
		p.config.Endpoint = oauth2.Endpoint{TokenURL: srv.URL + "/token"}
		p.userInfoURL = srv.URL + "/userinfo"

		_, err = p.Exchange(context.Background(), "code")
		require.ErrorIs(t, err, ErrEmailNotVerified)
	})
}

func TestGitHubExchange(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", tokenHandler)
	mux.HandleFunc("/user", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":   12345,
			"name": "Grace",
		})
	})
	mux.HandleFunc("/emails", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"email": "old@example.com", "primary": false, "verified": true},
			{"email": "grace@example.com", "primary": true, "verified": true},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p, err := NewGitHub(GitHubConfig{ClientID: "c", ClientSecret: "s"},
		WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	p.config.Endpoint = oauth2.Endpoint{TokenURL: srv.URL + "/token"}
	p.userURL = srv.URL + "/user"
	p.emailsURL = srv.URL + "/emails"

	identity, err := p.Exchange(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "github", identity.Provider)
	assert.Equal(t, "12345", identity.ID)
	assert.Equal(t, "grace@example.com", identity.Email, "primary verified email wins")
}

func TestIdentityPrincipal(t *testing.T) {
	t.Parallel()

	identity := &Identity{Provider: "google", ID: "g-1", Email: "ada@example.com", Name: "Ada"}
	p := identity.Principal("member")

	assert.Equal(t, "google:g-1", p.Subject)
	assert.Equal(t, []string{"member"}, p.Roles)
	assert.Equal(t, "ada@example.com", p.Claims["email"])
	assert.Equal(t, "google", p.Claims["provider"])
}
