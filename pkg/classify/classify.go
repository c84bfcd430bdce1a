// Package classify maps raw license tokens onto the canonical taxonomy.
// Classification is total: arbitrary input degrades to UNKNOWN, never
// to an error or an empty set.
package classify

import (
	"strings"

	"github.com/licensegate/licensegate/pkg/model"
	"github.com/licensegate/licensegate/pkg/normalize"
	"github.com/licensegate/licensegate/pkg/taxonomy"
)

// maxExpressionDepth bounds SPDX expression recursion. Real-world
// expressions nest one or two levels; anything deeper is noise.
const maxExpressionDepth = 8

// Classify resolves a token list to its canonical license set.
//
// Per-token precedence: exact alias match, then SPDX expression
// decomposition, then longest-alias containment. Weak tokens (from the
// license-file heuristic) are consulted only when no strong token
// matched anything: weak evidence fills a total gap, it never
// supplements stronger evidence.
func Classify(tokens []normalize.Token) []model.CanonicalLicense {
	strong := classifyPass(tokens, false)
	if len(strong) > 0 {
		return strong
	}
	if weak := classifyPass(tokens, true); len(weak) > 0 {
		return weak
	}
	return []model.CanonicalLicense{taxonomy.Unknown}
}

func classifyPass(tokens []normalize.Token, weak bool) []model.CanonicalLicense {
	var out []model.CanonicalLicense
	for _, t := range tokens {
		if t.Weak != weak {
			continue
		}
		for _, lic := range classifyToken(t.Text, 0) {
			out = appendUnique(out, lic)
		}
	}
	return out
}

// classifyToken resolves one token. Expression handling recurses over
// sub-terms and unions the results: "MIT OR Apache-2.0" resolves to
// both, since the policy layer must see every license the package may
// be distributed under.
func classifyToken(text string, depth int) []model.CanonicalLicense {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if hits := taxonomy.Lookup(text); len(hits) > 0 {
		return hits
	}

	if depth < maxExpressionDepth && isExpression(text) {
		var out []model.CanonicalLicense
		for _, sub := range splitExpression(text) {
			for _, lic := range classifyToken(sub, depth+1) {
				out = appendUnique(out, lic)
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	return taxonomy.Match(text)
}

func isExpression(text string) bool {
	if strings.ContainsAny(text, "()") {
		return true
	}
	lower := strings.ToLower(text)
	return strings.Contains(lower, " or ") || strings.Contains(lower, " and ")
}

// splitExpression breaks an SPDX-style expression into its license
// terms. Operators and parentheses are treated as separators; operator
// semantics are irrelevant here because both AND and OR contribute
// every named license to the resolved set.
func splitExpression(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '(' || r == ')'
	})
	var terms []string
	for _, f := range fields {
		for _, part := range splitOperators(f) {
			part = strings.TrimSpace(part)
			if part != "" {
				terms = append(terms, part)
			}
		}
	}
	return terms
}

func splitOperators(s string) []string {
	var (
		parts []string
		cur   []string
	)
	for _, w := range strings.Fields(s) {
		switch strings.ToLower(w) {
		case "or", "and":
			parts = append(parts, strings.Join(cur, " "))
			cur = cur[:0]
		default:
			cur = append(cur, w)
		}
	}
	return append(parts, strings.Join(cur, " "))
}

func appendUnique(list []model.CanonicalLicense, lic model.CanonicalLicense) []model.CanonicalLicense {
	for _, l := range list {
		if l.Equal(lic) {
			return list
		}
	}
	return append(list, lic)
}

// Resolve is the normalize-then-classify convenience used by the
// engine: one raw record in, one immutable ResolvedPackage out.
func Resolve(raw model.RawPackageRecord, src normalize.Source) *model.ResolvedPackage {
	fields := normalize.Normalize(raw, src)
	return &model.ResolvedPackage{
		Name:     fields.Name,
		Version:  fields.Version,
		Licenses: Classify(fields.Tokens),
		Author:   fields.Author,
		HomePage: fields.HomePage,
		Requires: fields.Requires,
	}
}
