package authz

import "slices"

// Principal is the evaluator's read-only view of an authenticated caller.
// Authentication middleware builds one from a verified token; the evaluator
// and handlers only read it.
type Principal struct {
	// Claims holds key-value facts about the caller (subject, tenant,
	// email, custom attributes). Values are kept as strings the way they
	// arrive in tokens; policies parse them as needed.
	Claims map[string]string

	// Subject identifies the caller, typically the token's sub claim.
	Subject string

	Roles       []string
	Permissions []string
}

// Anonymous returns a principal with no identity. Evaluating requirements
// against it fails every non-empty check.
func Anonymous() *Principal {
	return &Principal{}
}

// HasRole reports whether the principal holds the role.
func (p *Principal) HasRole(role string) bool {
	return p != nil && slices.Contains(p.Roles, role)
}

// HasAnyRole reports whether the principal holds at least one of the roles.
func (p *Principal) HasAnyRole(roles ...string) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if slices.Contains(p.Roles, r) {
			return true
		}
	}
	return false
}

// HasPermission reports whether the principal holds the permission.
func (p *Principal) HasPermission(perm string) bool {
	return p != nil && slices.Contains(p.Permissions, perm)
}

// HasClaim reports whether the claim type is present, regardless of value.
func (p *Principal) HasClaim(name string) bool {
	if p == nil {
		return false
	}
	_, ok := p.Claims[name]
	return ok
}

// ClaimValue returns the claim's value, or "" when absent.
func (p *Principal) ClaimValue(name string) string {
	if p == nil {
		return ""
	}
	return p.Claims[name]
}

// Claim returns the claim's value and whether it is present.
func (p *Principal) Claim(name string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p.Claims[name]
	return v, ok
}

// IsAnonymous reports whether the principal carries no identity.
func (p *Principal) IsAnonymous() bool {
	return p == nil || (p.Subject == "" && len(p.Claims) == 0 && len(p.Roles) == 0 && len(p.Permissions) == 0)
}
