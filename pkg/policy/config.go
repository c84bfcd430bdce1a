// Package policy evaluates resolved packages against an audit policy:
// deny lists, allow-only lists, unknown-license rejection, ignore
// bypass, and optional CEL expression rules.
package policy

import (
	"errors"
	"fmt"

	"github.com/licensegate/licensegate/pkg/model"
)

// ErrInvalidConfig marks a policy configuration the engine refuses to
// evaluate. Contradictory configurations are rejected up front rather
// than producing contradictory verdicts per package.
var ErrInvalidConfig = errors.New("invalid policy configuration")

// Config is the fully-resolved policy for one audit run. It must be
// complete before evaluation starts; there is no partial or streaming
// configuration.
type Config struct {
	// Deny fails any package holding at least one listed license.
	Deny []model.LicenseID `yaml:"deny" json:"deny,omitempty"`
	// AllowOnly, when non-nil, fails any package holding a license
	// outside the list. Every resolved license must be allowed.
	AllowOnly []model.LicenseID `yaml:"allow_only" json:"allow_only,omitempty"`
	// FailOnUnknown fails packages whose resolved set is exactly {UNKNOWN}.
	FailOnUnknown bool `yaml:"fail_on_unknown" json:"fail_on_unknown,omitempty"`
	// IgnorePackages always pass, short-circuiting every other rule.
	// Entries match a normalized package name or "name:version".
	IgnorePackages []string `yaml:"ignore_packages" json:"ignore_packages,omitempty"`
	// PartialMatch switches Deny/AllowOnly comparison to
	// case-insensitive substring containment against the resolved
	// license names, in addition to canonical-ID equality.
	PartialMatch bool `yaml:"partial_match" json:"partial_match,omitempty"`
	// Rules are CEL expressions over the package
	// ({name, version, author, licenses}); a rule evaluating to false
	// fails the package.
	Rules []string `yaml:"rules" json:"rules,omitempty"`
}

// Validate rejects contradictory configurations. Rule expressions are
// checked separately when the evaluator compiles them.
func (c Config) Validate() error {
	if c.AllowOnly != nil {
		allowed := make(map[string]bool, len(c.AllowOnly))
		for _, id := range c.AllowOnly {
			allowed[id.Normalized()] = true
		}
		for _, id := range c.Deny {
			if allowed[id.Normalized()] {
				return fmt.Errorf("%w: license %q is both denied and allow-listed", ErrInvalidConfig, id)
			}
		}
		if c.FailOnUnknown && allowed[model.LicenseUnknown.Normalized()] {
			return fmt.Errorf("%w: fail_on_unknown contradicts allow_only containing %s",
				ErrInvalidConfig, model.LicenseUnknown)
		}
	}
	return nil
}
