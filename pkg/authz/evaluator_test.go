package authz_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sciocoder/FastEndpoints/pkg/authz"
)

func TestEvaluator_Authorize(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ev := authz.NewEvaluator(
		authz.WithPolicyFunc("always_pass", func(context.Context, *authz.Principal) (bool, error) {
			return true, nil
		}),
		authz.WithPolicyFunc("always_deny", func(context.Context, *authz.Principal) (bool, error) {
			return false, nil
		}),
		authz.WithPolicyFunc("broken", func(context.Context, *authz.Principal) (bool, error) {
			return false, errors.New("backend down")
		}),
	)

	admin := &authz.Principal{
		Subject:     "user-1",
		Roles:       []string{"admin"},
		Permissions: []string{"orders:read", "orders:write"},
		Claims:      map[string]string{"tenant": "acme"},
	}

	t.Run("empty set allows unconditionally", func(t *testing.T) {
		t.Parallel()
		d := ev.Authorize(ctx, nil, authz.RequirementSet{})
		assert.True(t, d.Allowed)
		assert.Equal(t, authz.CheckNone, d.Check)
	})

	t.Run("any role grants the role check", func(t *testing.T) {
		t.Parallel()
		d := ev.Authorize(ctx, admin, authz.Requirements(authz.Roles("support", "admin")))
		assert.True(t, d.Allowed)
	})

	t.Run("missing role denies with role reason", func(t *testing.T) {
		t.Parallel()
		manager := &authz.Principal{Subject: "user-2", Roles: []string{"Manager"}}
		d := ev.Authorize(ctx, manager, authz.Requirements(authz.Roles("Admin")))
		require.False(t, d.Allowed)
		assert.Equal(t, authz.CheckRoles, d.Check)
		assert.Contains(t, d.Reason, "Admin")
	})

	t.Run("all permissions required", func(t *testing.T) {
		t.Parallel()
		d := ev.Authorize(ctx, admin, authz.Requirements(authz.Permissions("orders:read", "orders:write")))
		assert.True(t, d.Allowed)

		d = ev.Authorize(ctx, admin, authz.Requirements(authz.Permissions("orders:read", "orders:delete")))
		require.False(t, d.Allowed)
		assert.Equal(t, authz.CheckPermissions, d.Check)
		assert.Contains(t, d.Reason, "orders:delete")
	})

	t.Run("permissions fail before claims are evaluated", func(t *testing.T) {
		t.Parallel()
		d := ev.Authorize(ctx, admin, authz.Requirements(
			authz.Permissions("orders:delete"),
			authz.Claims("missing_claim"),
		))
		require.False(t, d.Allowed)
		assert.Equal(t, authz.CheckPermissions, d.Check)
	})

	t.Run("all policies must pass", func(t *testing.T) {
		t.Parallel()
		d := ev.Authorize(ctx, admin, authz.Requirements(authz.Policies("always_pass")))
		assert.True(t, d.Allowed)

		d = ev.Authorize(ctx, admin, authz.Requirements(authz.Policies("always_pass", "always_deny")))
		require.False(t, d.Allowed)
		assert.Equal(t, authz.CheckPolicies, d.Check)
		assert.Contains(t, d.Reason, "always_deny")
	})

	t.Run("unregistered policy denies", func(t *testing.T) {
		t.Parallel()
		d := ev.Authorize(ctx, admin, authz.Requirements(authz.Policies("nonexistent")))
		require.False(t, d.Allowed)
		assert.Equal(t, authz.CheckPolicies, d.Check)
		assert.ErrorIs(t, d.Err, authz.ErrUnknownPolicy)
	})

	t.Run("policy evaluation error denies and carries the error", func(t *testing.T) {
		t.Parallel()
		d := ev.Authorize(ctx, admin, authz.Requirements(authz.Policies("broken")))
		require.False(t, d.Allowed)
		assert.Equal(t, authz.CheckPolicies, d.Check)
		assert.EqualError(t, d.Err, "backend down")
	})

	t.Run("claim presence is value-agnostic", func(t *testing.T) {
		t.Parallel()
		d := ev.Authorize(ctx, admin, authz.Requirements(authz.Claims("tenant")))
		assert.True(t, d.Allowed)

		d = ev.Authorize(ctx, admin, authz.Requirements(authz.Claims("tenant", "plan")))
		require.False(t, d.Allowed)
		assert.Equal(t, authz.CheckClaims, d.Check)
		assert.Contains(t, d.Reason, "plan")
	})

	t.Run("nil principal fails non-empty sets", func(t *testing.T) {
		t.Parallel()
		d := ev.Authorize(ctx, nil, authz.Requirements(authz.Roles("admin")))
		require.False(t, d.Allowed)
		assert.Equal(t, authz.CheckRoles, d.Check)
	})

	t.Run("evaluation mutates nothing", func(t *testing.T) {
		t.Parallel()
		p := &authz.Principal{Subject: "s", Roles: []string{"a"}, Claims: map[string]string{"k": "v"}}
		rs := authz.Requirements(authz.Roles("a"), authz.Claims("k"))
		_ = ev.Authorize(ctx, p, rs)
		assert.Equal(t, []string{"a"}, p.Roles)
		assert.Equal(t, map[string]string{"k": "v"}, p.Claims)
		assert.Equal(t, []string{"a"}, rs.Roles)
	})
}

func TestRequirementSet(t *testing.T) {
	t.Parallel()

	t.Run("IsEmpty", func(t *testing.T) {
		t.Parallel()
		assert.True(t, authz.RequirementSet{}.IsEmpty())
		assert.False(t, authz.Requirements(authz.Roles("admin")).IsEmpty())
		assert.False(t, authz.Requirements(authz.Claims("tenant")).IsEmpty())
	})

	t.Run("Merge dedupes and keeps order", func(t *testing.T) {
		t.Parallel()
		a := authz.Requirements(authz.Roles("admin"), authz.Permissions("x"))
		b := authz.Requirements(authz.Roles("admin", "support"), authz.Claims("tenant"))
		m := a.Merge(b)
		assert.Equal(t, []string{"admin", "support"}, m.Roles)
		assert.Equal(t, []string{"x"}, m.Permissions)
		assert.Equal(t, []string{"tenant"}, m.ClaimTypes)
	})

	t.Run("Clone is deep", func(t *testing.T) {
		t.Parallel()
		a := authz.Requirements(authz.Roles("admin"))
		c := a.Clone()
		c.Roles[0] = "changed"
		assert.Equal(t, "admin", a.Roles[0])
	})
}

func TestPrincipal(t *testing.T) {
	t.Parallel()

	t.Run("nil principal answers false everywhere", func(t *testing.T) {
		t.Parallel()
		var p *authz.Principal
		assert.False(t, p.HasRole("admin"))
		assert.False(t, p.HasPermission("x"))
		assert.False(t, p.HasClaim("tenant"))
		assert.True(t, p.IsAnonymous())
		v, ok := p.Claim("tenant")
		assert.Empty(t, v)
		assert.False(t, ok)
	})

	t.Run("anonymous", func(t *testing.T) {
		t.Parallel()
		assert.True(t, authz.Anonymous().IsAnonymous())
		assert.False(t, (&authz.Principal{Subject: "u"}).IsAnonymous())
	})
}
