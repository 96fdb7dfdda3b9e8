// Package authz evaluates declarative endpoint security requirements
// against authenticated principals.
//
// A RequirementSet declares what an endpoint demands: roles (any of them
// grants access), permissions (all must be held), named policies (all must
// pass), and claim types (all must be present). The Evaluator checks them
// in exactly that order and stops at the first failing check:
//
//	ev := authz.NewEvaluator(
//	    authz.WithPolicy("is_adult", authz.PolicyFunc(func(ctx context.Context, p *authz.Principal) (bool, error) {
//	        age, _ := strconv.Atoi(p.ClaimValue("age"))
//	        return age >= 18, nil
//	    })),
//	)
//
//	d := ev.Authorize(ctx, principal, authz.Requirements(
//	    authz.Roles("admin", "support"),
//	    authz.Permissions("orders:write"),
//	    authz.Policies("is_adult"),
//	))
//	if !d.Allowed {
//	    // d.Check names the failing stage, d.Reason explains it.
//	}
//
// An empty RequirementSet always allows: authentication alone is enforced
// upstream by the transport layer. Evaluation is side-effect free and safe
// for concurrent use once the evaluator is built.
package authz
