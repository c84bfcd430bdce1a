package policy

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/licensegate/licensegate/pkg/model"
)

// celRule is one compiled expression rule. Rules are compiled once at
// evaluator construction and shared by all evaluations.
type celRule struct {
	source  string
	program cel.Program
}

func compileRules(sources []string) ([]celRule, error) {
	if len(sources) == 0 {
		return nil, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("name", cel.StringType),
		cel.Variable("version", cel.StringType),
		cel.Variable("author", cel.StringType),
		cel.Variable("licenses", cel.ListType(cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("cel environment: %w", err)
	}

	rules := make([]celRule, 0, len(sources))
	for _, src := range sources {
		ast, issues := env.Compile(src)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("rule %q: %w", src, issues.Err())
		}
		prg, err := env.Program(ast,
			cel.InterruptCheckFrequency(100),
			cel.CostLimit(10000),
		)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", src, err)
		}
		rules = append(rules, celRule{source: src, program: prg})
	}
	return rules, nil
}

// violatedRule returns the first rule the package does not satisfy.
// Evaluation errors and non-boolean results fail closed: an expression
// the engine cannot decide never lets a package through.
func (e *Evaluator) violatedRule(pkg *model.ResolvedPackage) (string, bool) {
	if len(e.rules) == 0 {
		return "", false
	}
	ids := make([]string, len(pkg.Licenses))
	for i, lic := range pkg.Licenses {
		ids[i] = string(lic.ID)
	}
	input := map[string]any{
		"name":     pkg.Name,
		"version":  pkg.Version,
		"author":   pkg.Author,
		"licenses": ids,
	}
	for _, rule := range e.rules {
		out, _, err := rule.program.Eval(input)
		if err != nil {
			return rule.source, true
		}
		allowed, ok := out.Value().(bool)
		if !ok || !allowed {
			return rule.source, true
		}
	}
	return "", false
}
