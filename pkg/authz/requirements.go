package authz

import "slices"

// RequirementSet is the declarative security metadata attached to an
// endpoint definition. It is immutable after registration and evaluated
// read-only per request.
//
// Semantics per group:
//   - Roles: any listed role grants the check (OR).
//   - Permissions: every listed permission must be held (AND).
//   - Policies: every named policy must pass (AND).
//   - ClaimTypes: every listed claim type must be present (AND),
//     value-agnostic; use a policy for value constraints.
type RequirementSet struct {
	Roles       []string
	Permissions []string
	Policies    []string
	ClaimTypes  []string
}

// Requirement mutates a RequirementSet under construction.
type Requirement func(*RequirementSet)

// Requirements builds a RequirementSet from the given groups.
func Requirements(reqs ...Requirement) RequirementSet {
	var rs RequirementSet
	for _, r := range reqs {
		r(&rs)
	}
	return rs
}

// Roles requires any one of the given roles.
func Roles(roles ...string) Requirement {
	return func(rs *RequirementSet) {
		rs.Roles = append(rs.Roles, roles...)
	}
}

// Permissions requires all of the given permissions.
func Permissions(perms ...string) Requirement {
	return func(rs *RequirementSet) {
		rs.Permissions = append(rs.Permissions, perms...)
	}
}

// Policies requires all of the named policies to pass.
func Policies(names ...string) Requirement {
	return func(rs *RequirementSet) {
		rs.Policies = append(rs.Policies, names...)
	}
}

// Claims requires all of the given claim types to be present.
func Claims(types ...string) Requirement {
	return func(rs *RequirementSet) {
		rs.ClaimTypes = append(rs.ClaimTypes, types...)
	}
}

// IsEmpty reports whether the set declares nothing. Empty sets allow
// unconditionally.
func (rs RequirementSet) IsEmpty() bool {
	return len(rs.Roles) == 0 && len(rs.Permissions) == 0 && len(rs.Policies) == 0 && len(rs.ClaimTypes) == 0
}

// Merge returns the union of rs and other. Duplicate entries are dropped,
// first occurrence wins the position.
func (rs RequirementSet) Merge(other RequirementSet) RequirementSet {
	return RequirementSet{
		Roles:       mergeDistinct(rs.Roles, other.Roles),
		Permissions: mergeDistinct(rs.Permissions, other.Permissions),
		Policies:    mergeDistinct(rs.Policies, other.Policies),
		ClaimTypes:  mergeDistinct(rs.ClaimTypes, other.ClaimTypes),
	}
}

// Clone returns a deep copy so registered definitions cannot be mutated
// through shared slices.
func (rs RequirementSet) Clone() RequirementSet {
	return RequirementSet{
		Roles:       slices.Clone(rs.Roles),
		Permissions: slices.Clone(rs.Permissions),
		Policies:    slices.Clone(rs.Policies),
		ClaimTypes:  slices.Clone(rs.ClaimTypes),
	}
}

func mergeDistinct(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, s := range append(slices.Clone(a), b...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
