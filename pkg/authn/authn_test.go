package authn_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sciocoder/FastEndpoints/pkg/authn"
	"github.com/sciocoder/FastEndpoints/pkg/authz"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("rejects short keys", func(t *testing.T) {
		t.Parallel()

		svc, err := authn.New("too-short")
		require.ErrorIs(t, err, authn.ErrKeyTooShort)
		assert.Nil(t, svc)
	})

	t.Run("accepts a 32-byte key", func(t *testing.T) {
		t.Parallel()

		svc, err := authn.New(testKey)
		require.NoError(t, err)
		require.NotNil(t, svc)
	})
}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	svc, err := authn.New(testKey, authn.WithIssuer("orders-api"))
	require.NoError(t, err)

	p := &authz.Principal{
		Subject:     "user_123",
		Roles:       []string{"admin", "support"},
		Permissions: []string{"orders:read", "orders:write"},
		Claims: map[string]string{
			"tenant_id": "t_42",
			"exp":       "9999999999", // must not override the envelope
		},
	}

	token, err := svc.Issue(p)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := svc.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, "user_123", got.Subject)
	assert.Equal(t, []string{"admin", "support"}, got.Roles)
	assert.Equal(t, []string{"orders:read", "orders:write"}, got.Permissions)
	assert.Equal(t, "t_42", got.Claims["tenant_id"])
	assert.Equal(t, "user_123", got.Claims["sub"], "subject is exposed as a claim")
	assert.NotContains(t, got.Claims, "exp", "reserved claims are dropped at issuance")
	assert.False(t, got.IsAnonymous())

	second, err := svc.Issue(p)
	require.NoError(t, err)
	assert.NotEqual(t, token, second, "every token carries a fresh jti")
}

func TestIssueRequiresSubject(t *testing.T) {
	t.Parallel()

	svc, err := authn.New(testKey)
	require.NoError(t, err)

	_, err = svc.Issue(nil)
	require.ErrorIs(t, err, authn.ErrNoSubject)

	_, err = svc.Issue(authz.Anonymous())
	require.ErrorIs(t, err, authn.ErrNoSubject)
}

func TestVerifyFailures(t *testing.T) {
	t.Parallel()

	t.Run("garbage token", func(t *testing.T) {
		t.Parallel()

		svc, err := authn.New(testKey)
		require.NoError(t, err)

		_, err = svc.Verify("not-a-token")
		require.ErrorIs(t, err, authn.ErrInvalidToken)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		t.Parallel()

		issuer, err := authn.New(testKey)
		require.NoError(t, err)
		verifier, err := authn.New("ffffffffffffffffffffffffffffffff")
		require.NoError(t, err)

		token, err := issuer.Issue(&authz.Principal{Subject: "user_123"})
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, authn.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()

		current := time.Now()
		svc, err := authn.New(testKey,
			authn.WithTokenTTL(time.Minute),
			authn.WithClock(func() time.Time { return current }),
		)
		require.NoError(t, err)

		token, err := svc.Issue(&authz.Principal{Subject: "user_123"})
		require.NoError(t, err)

		_, err = svc.Verify(token)
		require.NoError(t, err, "fresh token verifies")

		current = current.Add(2 * time.Minute)
		_, err = svc.Verify(token)
		require.ErrorIs(t, err, authn.ErrExpiredToken)
	})

	t.Run("issuer mismatch", func(t *testing.T) {
		t.Parallel()

		billing, err := authn.New(testKey, authn.WithIssuer("billing"))
		require.NoError(t, err)
		orders, err := authn.New(testKey, authn.WithIssuer("orders"))
		require.NoError(t, err)

		token, err := billing.Issue(&authz.Principal{Subject: "user_123"})
		require.NoError(t, err)

		_, err = orders.Verify(token)
		require.ErrorIs(t, err, authn.ErrInvalidToken)
	})

	t.Run("missing expiry", func(t *testing.T) {
		t.Parallel()

		svc, err := authn.New(testKey)
		require.NoError(t, err)

		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "user_123",
		}).SignedString([]byte(testKey))
		require.NoError(t, err)

		_, err = svc.Verify(token)
		require.ErrorIs(t, err, authn.ErrInvalidToken)
	})

	t.Run("unsigned algorithm", func(t *testing.T) {
		t.Parallel()

		svc, err := authn.New(testKey)
		require.NoError(t, err)

		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "user_123",
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.Verify(token)
		require.ErrorIs(t, err, authn.ErrInvalidToken)
	})
}

func TestVerifyForeignToken(t *testing.T) {
	t.Parallel()

	svc, err := authn.New(testKey)
	require.NoError(t, err)

	// Tokens minted by other services may carry non-string claims.
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    "user_123",
		"exp":    time.Now().Add(time.Hour).Unix(),
		"level":  42,
		"active": true,
		"score":  9.5,
	}).SignedString([]byte(testKey))
	require.NoError(t, err)

	got, err := svc.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, "user_123", got.Subject)
	assert.Equal(t, "42", got.Claims["level"])
	assert.Equal(t, "true", got.Claims["active"])
	assert.Equal(t, "9.5", got.Claims["score"])
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("builds a working service", func(t *testing.T) {
		t.Parallel()

		svc, err := authn.NewFromConfig(authn.Config{
			SigningKey: testKey,
			Issuer:     "orders-api",
			TokenTTL:   30 * time.Minute,
		})
		require.NoError(t, err)

		token, err := svc.Issue(&authz.Principal{Subject: "user_123"})
		require.NoError(t, err)

		got, err := svc.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user_123", got.Subject)
	})

	t.Run("propagates key validation", func(t *testing.T) {
		t.Parallel()

		_, err := authn.NewFromConfig(authn.Config{SigningKey: "short"})
		require.ErrorIs(t, err, authn.ErrKeyTooShort)
	})
}
