package privacy

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/ast"
	"github.com/open-policy-agent/opa/rego"
	"github.com/open-policy-agent/opa/storage/inmem"
)

// Policy is an embedded OPA/Rego privacy policy.
//
// The Rego policy must define, in package privacy:
//
//	allow: bool — whether the activity may be tracked
//
// Input available to the policy:
//
//	input.app: string
//	input.path: string
type Policy struct {
	query rego.PreparedEvalQuery
}

// LoadPolicy creates a policy from a .rego file.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading privacy policy file: %w", err)
	}
	return NewPolicyFromSource(string(data))
}

// NewPolicyFromSource creates a policy from raw Rego source.
func NewPolicyFromSource(source string) (*Policy, error) {
	_, err := ast.ParseModuleWithOpts("privacy.rego", source, ast.ParserOptions{RegoVersion: ast.RegoV1})
	if err != nil {
		return nil, fmt.Errorf("parsing Rego policy: %w", err)
	}

	r := rego.New(
		rego.Query("data.privacy.allow"),
		rego.Module("privacy.rego", source),
		rego.Store(inmem.New()),
	)
	query, err := r.PrepareForEval(context.Background())
	if err != nil {
		return nil, fmt.Errorf("preparing privacy policy query: %w", err)
	}
	return &Policy{query: query}, nil
}

// Allow evaluates the policy for one activity. An undefined result denies.
func (p *Policy) Allow(ctx context.Context, app, path string) (bool, error) {
	rs, err := p.query.Eval(ctx, rego.EvalInput(map[string]any{
		"app":  app,
		"path": path,
	}))
	if err != nil {
		return false, fmt.Errorf("privacy policy evaluation failed: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, nil
	}
	allow, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("privacy policy returned non-boolean allow")
	}
	return allow, nil
}
