package authz

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPolicy is returned inside a Forbidden decision when a
// requirement names a policy that was never registered. Registration
// mistakes surface as denied requests, never as allowed ones.
var ErrUnknownPolicy = errors.New("authz: unknown policy")

// Check identifies the evaluation stage that produced a decision.
type Check string

const (
	CheckNone        Check = ""
	CheckRoles       Check = "roles"
	CheckPermissions Check = "permissions"
	CheckPolicies    Check = "policies"
	CheckClaims      Check = "claims"
)

// Decision is the outcome of evaluating a RequirementSet. When denied,
// Check names the first failing stage and Reason explains it; checks after
// the failing one are never evaluated.
type Decision struct {
	Err     error
	Check   Check
	Reason  string
	Allowed bool
}

// Allow is the decision for requests with nothing to check.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Forbid builds a denial for the given stage.
func Forbid(check Check, reason string) Decision {
	return Decision{Check: check, Reason: reason}
}

// Policy is a named, reusable authorization predicate. Implementations must
// be side-effect free and safe for concurrent use.
type Policy interface {
	Evaluate(ctx context.Context, p *Principal) (bool, error)
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc func(ctx context.Context, p *Principal) (bool, error)

// Evaluate implements Policy.
func (f PolicyFunc) Evaluate(ctx context.Context, p *Principal) (bool, error) {
	return f(ctx, p)
}

// Evaluator checks requirement sets against principals. Policies are
// registered at construction; the evaluator is immutable afterwards and
// safe for unsynchronized concurrent use.
type Evaluator struct {
	policies map[string]Policy
}

// EvaluatorOption configures an Evaluator during construction.
type EvaluatorOption func(*Evaluator)

// WithPolicy registers a named policy predicate.
func WithPolicy(name string, p Policy) EvaluatorOption {
	return func(e *Evaluator) {
		e.policies[name] = p
	}
}

// WithPolicyFunc registers a named policy from a plain function.
func WithPolicyFunc(name string, fn func(ctx context.Context, p *Principal) (bool, error)) EvaluatorOption {
	return WithPolicy(name, PolicyFunc(fn))
}

// NewEvaluator builds an evaluator with the given policies.
func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{policies: make(map[string]Policy)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the named policy, if registered.
func (e *Evaluator) Policy(name string) (Policy, bool) {
	p, ok := e.policies[name]
	return p, ok
}

// Authorize evaluates the requirement set against the principal.
//
// Order is fixed: empty set allows unconditionally, then roles (any-of),
// permissions (all-of), policies (all-of), claim presence (all-of). The
// first failing check produces the decision; later checks are skipped.
// A nil principal is treated as anonymous. Authorize performs no side
// effects and never mutates the principal or the set.
func (e *Evaluator) Authorize(ctx context.Context, p *Principal, rs RequirementSet) Decision {
	if rs.IsEmpty() {
		return Allow()
	}
	if p == nil {
		p = Anonymous()
	}

	if len(rs.Roles) > 0 && !p.HasAnyRole(rs.Roles...) {
		return Forbid(CheckRoles, fmt.Sprintf("requires any of roles [%s]", strings.Join(rs.Roles, ", ")))
	}

	for _, perm := range rs.Permissions {
		if !p.HasPermission(perm) {
			return Forbid(CheckPermissions, fmt.Sprintf("missing permission %q", perm))
		}
	}

	for _, name := range rs.Policies {
		policy, ok := e.policies[name]
		if !ok {
			d := Forbid(CheckPolicies, fmt.Sprintf("policy %q is not registered", name))
			d.Err = fmt.Errorf("%w: %s", ErrUnknownPolicy, name)
			return d
		}
		ok, err := policy.Evaluate(ctx, p)
		if err != nil {
			d := Forbid(CheckPolicies, fmt.Sprintf("policy %q failed to evaluate", name))
			d.Err = err
			return d
		}
		if !ok {
			return Forbid(CheckPolicies, fmt.Sprintf("policy %q denied", name))
		}
	}

	for _, claim := range rs.ClaimTypes {
		if !p.HasClaim(claim) {
			return Forbid(CheckClaims, fmt.Sprintf("missing claim %q", claim))
		}
	}

	return Allow()
}
