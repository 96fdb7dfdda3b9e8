package authz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/open-policy-agent/opa/ast"
	"github.com/open-policy-agent/opa/rego"
)

// RegoPolicy evaluates a compiled Rego rule as a Policy. The principal is
// exposed to the module as input:
//
//	{
//	    "subject":     "user-1",
//	    "roles":       ["admin"],
//	    "permissions": ["orders:write"],
//	    "claims":      {"tenant": "acme", "age": "34"}
//	}
//
// The queried rule must evaluate to a boolean; an undefined result denies.
type RegoPolicy struct {
	prepared rego.PreparedEvalQuery
	query    string
}

// NewRegoPolicy compiles source (Rego v1 syntax) and prepares the query
// "data.<entrypoint>", where entrypoint uses slash or dot separators, e.g.
// "endpoint/policies/is_adult". Compilation errors surface at startup, not
// per request.
func NewRegoPolicy(ctx context.Context, source, entrypoint string) (*RegoPolicy, error) {
	entry := strings.TrimSpace(entrypoint)
	if entry == "" {
		return nil, errors.New("authz: rego policy requires an entrypoint")
	}
	if strings.TrimSpace(source) == "" {
		return nil, errors.New("authz: rego policy requires a module source")
	}

	module, err := ast.ParseModuleWithOpts("policy.rego", source, ast.ParserOptions{RegoVersion: ast.RegoV1})
	if err != nil {
		return nil, fmt.Errorf("authz: parse rego module: %w", err)
	}

	query := "data." + strings.ReplaceAll(strings.ReplaceAll(entry, "/", "."), "..", ".")

	prepared, err := rego.New(
		rego.Query(query),
		rego.ParsedModule(module),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("authz: compile rego module: %w", err)
	}

	return &RegoPolicy{prepared: prepared, query: query}, nil
}

// Evaluate implements Policy.
func (p *RegoPolicy) Evaluate(ctx context.Context, principal *Principal) (bool, error) {
	if principal == nil {
		principal = Anonymous()
	}

	claims := make(map[string]any, len(principal.Claims))
	for k, v := range principal.Claims {
		claims[k] = v
	}

	input := map[string]any{
		"subject":     principal.Subject,
		"roles":       principal.Roles,
		"permissions": principal.Permissions,
		"claims":      claims,
	}

	results, err := p.prepared.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Errorf("authz: rego eval: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, nil
	}

	allowed, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("authz: rego rule %s returned %T, want boolean", p.query, results[0].Expressions[0].Value)
	}
	return allowed, nil
}
