//go:build property
// +build property

// Package report_test property tests: report construction must be
// deterministic regardless of input permutation, and classification
// must stay total under arbitrary token noise.
package report_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/licensegate/licensegate/pkg/classify"
	"github.com/licensegate/licensegate/pkg/model"
	"github.com/licensegate/licensegate/pkg/normalize"
	"github.com/licensegate/licensegate/pkg/report"
)

// TestReportDeterminism verifies the ordering and hash are functions
// of the verdict set alone.
// Property: Build(perm(vs)).ContentHash == Build(vs).ContentHash
func TestReportDeterminism(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("content hash survives input permutation", prop.ForAll(
		func(names []string, rotate int) bool {
			verdicts := make([]model.PolicyVerdict, 0, len(names))
			seen := map[string]bool{}
			for _, name := range names {
				if name == "" || seen[name] {
					continue
				}
				seen[name] = true
				verdicts = append(verdicts, model.PolicyVerdict{
					Package: &model.ResolvedPackage{
						Name:     name,
						Version:  "1.0.0",
						Licenses: []model.CanonicalLicense{{ID: "MIT", Display: "MIT License"}},
					},
					Passed: true,
					Reason: model.ReasonNone,
				})
			}
			if len(verdicts) == 0 {
				return true
			}

			rotated := make([]model.PolicyVerdict, len(verdicts))
			pivot := rotate % len(verdicts)
			if pivot < 0 {
				pivot += len(verdicts)
			}
			copy(rotated, verdicts[pivot:])
			copy(rotated[len(verdicts)-pivot:], verdicts[:pivot])

			rep1 := report.Build(verdicts, nil, report.BuildOptions{})
			rep2 := report.Build(rotated, nil, report.BuildOptions{})
			return rep1.ContentHash == rep2.ContentHash
		},
		gen.SliceOf(gen.AlphaString()),
		gen.Int(),
	))

	properties.TestingRun(t)
}

// TestClassifyTotal verifies classification never yields an empty set.
// Property: len(Classify(tokens)) >= 1 for any token list
func TestClassifyTotal(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("classification is total", prop.ForAll(
		func(texts []string) bool {
			tokens := make([]normalize.Token, len(texts))
			for i, text := range texts {
				tokens[i] = normalize.Token{Text: text}
			}
			return len(classify.Classify(tokens)) >= 1
		},
		gen.SliceOf(gen.AnyString()),
	))

	properties.TestingRun(t)
}
