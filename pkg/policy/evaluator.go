package policy

import (
	"fmt"
	"strings"

	"github.com/licensegate/licensegate/pkg/model"
	"github.com/licensegate/licensegate/pkg/normalize"
)

// Evaluator applies one policy snapshot to resolved packages.
// Evaluation is pure and stateless per package: the verdict depends
// only on the package and the snapshot taken at construction time.
type Evaluator struct {
	cfg    Config
	deny   map[string]model.LicenseID
	allow  map[string]bool
	ignore map[string]bool
	rules  []celRule
}

// New builds an evaluator, failing fast on a contradictory
// configuration or an uncompilable rule expression.
func New(cfg Config) (*Evaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rules, err := compileRules(cfg.Rules)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	e := &Evaluator{
		cfg:    cfg,
		deny:   make(map[string]model.LicenseID, len(cfg.Deny)),
		ignore: make(map[string]bool, len(cfg.IgnorePackages)),
		rules:  rules,
	}
	for _, id := range cfg.Deny {
		e.deny[id.Normalized()] = id
	}
	if cfg.AllowOnly != nil {
		e.allow = make(map[string]bool, len(cfg.AllowOnly))
		for _, id := range cfg.AllowOnly {
			e.allow[id.Normalized()] = true
		}
	}
	for _, name := range cfg.IgnorePackages {
		e.ignore[normalizeIgnoreEntry(name)] = true
	}
	return e, nil
}

// normalizeIgnoreEntry canonicalizes "name" or "name:version" entries.
func normalizeIgnoreEntry(entry string) string {
	name, version, ok := strings.Cut(entry, ":")
	n := normalize.NormalizeName(strings.TrimSpace(name))
	if !ok {
		return n
	}
	return n + ":" + strings.ToLower(strings.TrimSpace(version))
}

// Evaluate produces the verdict for one package. Exactly one rule
// fires, in fixed precedence: ignore bypass, deny, allow-only,
// unknown rejection, expression rules, pass.
func (e *Evaluator) Evaluate(pkg *model.ResolvedPackage) model.PolicyVerdict {
	if e.ignored(pkg) {
		return model.PolicyVerdict{Package: pkg, Passed: true, Reason: model.ReasonNone}
	}

	if violating := e.deniedLicenses(pkg); len(violating) > 0 {
		return model.PolicyVerdict{
			Package:           pkg,
			Passed:            false,
			ViolatingLicenses: violating,
			Reason:            model.ReasonDenied,
		}
	}

	if e.allow != nil {
		if violating := e.disallowedLicenses(pkg); len(violating) > 0 {
			return model.PolicyVerdict{
				Package:           pkg,
				Passed:            false,
				ViolatingLicenses: violating,
				Reason:            model.ReasonNotAllowed,
			}
		}
	}

	if e.cfg.FailOnUnknown && pkg.Unlicensed() {
		// The violation is the absence of information, not a license.
		return model.PolicyVerdict{
			Package: pkg,
			Passed:  false,
			Reason:  model.ReasonUnknownRejected,
		}
	}

	if source, ok := e.violatedRule(pkg); ok {
		return model.PolicyVerdict{
			Package:    pkg,
			Passed:     false,
			Reason:     model.ReasonDenied,
			RuleSource: source,
		}
	}

	return model.PolicyVerdict{Package: pkg, Passed: true, Reason: model.ReasonNone}
}

func (e *Evaluator) ignored(pkg *model.ResolvedPackage) bool {
	name := normalize.NormalizeName(pkg.Name)
	if e.ignore[name] {
		return true
	}
	return e.ignore[name+":"+strings.ToLower(pkg.Version)]
}

func (e *Evaluator) deniedLicenses(pkg *model.ResolvedPackage) []model.CanonicalLicense {
	var out []model.CanonicalLicense
	for _, lic := range pkg.Licenses {
		if _, hit := e.deny[lic.ID.Normalized()]; hit {
			out = append(out, lic)
			continue
		}
		if e.cfg.PartialMatch && containsAny(lic, e.cfg.Deny) {
			out = append(out, lic)
		}
	}
	return out
}

func (e *Evaluator) disallowedLicenses(pkg *model.ResolvedPackage) []model.CanonicalLicense {
	var out []model.CanonicalLicense
	for _, lic := range pkg.Licenses {
		if e.allow[lic.ID.Normalized()] {
			continue
		}
		if e.cfg.PartialMatch && containsAny(lic, e.cfg.AllowOnly) {
			continue
		}
		out = append(out, lic)
	}
	return out
}

// containsAny reports whether any configured entry is contained in the
// license identifier or display name, case-insensitively.
func containsAny(lic model.CanonicalLicense, entries []model.LicenseID) bool {
	id := strings.ToLower(string(lic.ID))
	display := strings.ToLower(lic.Display)
	for _, entry := range entries {
		needle := strings.ToLower(strings.TrimSpace(string(entry)))
		if needle == "" {
			continue
		}
		if strings.Contains(id, needle) || strings.Contains(display, needle) {
			return true
		}
	}
	return false
}
