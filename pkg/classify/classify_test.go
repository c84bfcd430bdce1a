package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licensegate/licensegate/pkg/classify"
	"github.com/licensegate/licensegate/pkg/model"
	"github.com/licensegate/licensegate/pkg/normalize"
)

func ids(licenses []model.CanonicalLicense) []model.LicenseID {
	out := make([]model.LicenseID, len(licenses))
	for i, l := range licenses {
		out[i] = l.ID
	}
	return out
}

// TestClassify_NeverEmpty verifies classification is total: any input,
// including none at all, yields a non-empty set.
func TestClassify_NeverEmpty(t *testing.T) {
	cases := [][]normalize.Token{
		nil,
		{},
		{{Text: "Proprietary"}},
		{{Text: "see LICENSE.txt"}},
	}
	for _, tokens := range cases {
		got := classify.Classify(tokens)
		require.Len(t, got, 1)
		assert.True(t, got[0].ID.Equal(model.LicenseUnknown))
	}
}

// TestClassify_ExactAlias verifies the first precedence level.
func TestClassify_ExactAlias(t *testing.T) {
	got := classify.Classify([]normalize.Token{{Text: "Apache Software License"}})
	assert.Equal(t, []model.LicenseID{"Apache-2.0"}, ids(got))
}

// TestClassify_SPDXExpression verifies expression decomposition unions
// every named license: the policy layer must see all of them.
func TestClassify_SPDXExpression(t *testing.T) {
	got := classify.Classify([]normalize.Token{{Text: "MIT OR Apache-2.0"}})
	assert.Equal(t, []model.LicenseID{"MIT", "Apache-2.0"}, ids(got))

	got = classify.Classify([]normalize.Token{{Text: "(MIT AND ISC) OR GPL-3.0"}})
	assert.Equal(t, []model.LicenseID{"MIT", "ISC", "GPL-3.0"}, ids(got))
}

// TestClassify_ExpressionWithUnknownTerm verifies recognized terms
// survive even when a sibling term is garbage.
func TestClassify_ExpressionWithUnknownTerm(t *testing.T) {
	got := classify.Classify([]normalize.Token{{Text: "MIT OR SomeCustomLicense"}})
	assert.Equal(t, []model.LicenseID{"MIT"}, ids(got))
}

// TestClassify_Containment verifies the longest-alias fallback for
// free-text tokens no exact alias covers.
func TestClassify_Containment(t *testing.T) {
	got := classify.Classify([]normalize.Token{
		{Text: "Licensed under the Apache License, Version 2.0"},
	})
	assert.Equal(t, []model.LicenseID{"Apache-2.0"}, ids(got))
}

// TestClassify_Deduplicates verifies two tokens resolving to the same
// entry produce one set member.
func TestClassify_Deduplicates(t *testing.T) {
	got := classify.Classify([]normalize.Token{
		{Text: "MIT"},
		{Text: "MIT License"},
	})
	assert.Equal(t, []model.LicenseID{"MIT"}, ids(got))
}

// TestClassify_WeakSuppression verifies weak tokens only fill a total
// gap: one strong match suppresses every weak token.
func TestClassify_WeakSuppression(t *testing.T) {
	got := classify.Classify([]normalize.Token{
		{Text: "ISC"},
		{Text: "MIT License", Weak: true},
	})
	assert.Equal(t, []model.LicenseID{"ISC"}, ids(got))

	got = classify.Classify([]normalize.Token{
		{Text: "Proprietary"},
		{Text: "MIT License", Weak: true},
	})
	assert.Equal(t, []model.LicenseID{"MIT"}, ids(got))
}

// TestResolve verifies the record-to-package convenience end to end.
func TestResolve(t *testing.T) {
	raw := model.RawPackageRecord{
		Name:        "Requests",
		Version:     "2.31.0",
		Classifiers: []string{"License :: OSI Approved :: Apache Software License"},
		Author:      "Kenneth",
		HomePage:    "https://requests.example.com",
	}
	pkg := classify.Resolve(raw, normalize.SourceMixed)

	assert.Equal(t, "Requests", pkg.Name)
	assert.Equal(t, "2.31.0", pkg.Version)
	assert.Equal(t, []model.LicenseID{"Apache-2.0"}, ids(pkg.Licenses))
	assert.False(t, pkg.Unlicensed())
	assert.True(t, pkg.HasLicense("apache-2.0"))
}

// TestResolve_NoEvidence verifies the UNKNOWN fallback flows through
// to the resolved package.
func TestResolve_NoEvidence(t *testing.T) {
	pkg := classify.Resolve(model.RawPackageRecord{Name: "mystery"}, normalize.SourceMixed)
	assert.True(t, pkg.Unlicensed())
}
