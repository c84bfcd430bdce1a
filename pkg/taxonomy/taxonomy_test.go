package taxonomy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licensegate/licensegate/pkg/model"
	"github.com/licensegate/licensegate/pkg/taxonomy"
)

// TestNormalize verifies the comparison form: case, punctuation and
// noise words must never distinguish two spellings of the same license.
func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"MIT License":            "mit",
		"The MIT Licence":        "mit",
		"Apache-2.0":             "apache 2 0",
		"  GPLv3+ ":              "gplv3+",
		"BSD (3-Clause) License": "bsd 3 clause",
	}
	for in, want := range cases {
		assert.Equal(t, want, taxonomy.Normalize(in), "input %q", in)
	}
}

// TestLookup_Exact verifies exact alias resolution across the surface
// forms that show up in real metadata.
func TestLookup_Exact(t *testing.T) {
	cases := map[string]model.LicenseID{
		"MIT":                                "MIT",
		"mit license":                        "MIT",
		"Expat":                              "MIT",
		"Apache Software License":            "Apache-2.0",
		"Apache License 2.0":                 "Apache-2.0",
		"GPLv3":                              "GPL-3.0",
		"ISC License (ISCL)":                 "ISC",
		"zlib/libpng License":                "Zlib",
		"Python Software Foundation License": "Python-2.0",
	}
	for token, want := range cases {
		hits := taxonomy.Lookup(token)
		require.Len(t, hits, 1, "token %q", token)
		assert.Equal(t, want, hits[0].ID, "token %q", token)
	}
}

// TestLookup_AmbiguousAlias verifies that a shared alias yields every
// entry it belongs to. Plain "BSD" cannot decide between the 2-clause
// and 3-clause variants, so both must be kept.
func TestLookup_AmbiguousAlias(t *testing.T) {
	hits := taxonomy.Lookup("BSD License")
	require.Len(t, hits, 2)

	ids := []model.LicenseID{hits[0].ID, hits[1].ID}
	assert.Contains(t, ids, model.LicenseID("BSD-2-Clause"))
	assert.Contains(t, ids, model.LicenseID("BSD-3-Clause"))
}

// TestLookup_Miss verifies that unrecognized tokens return nothing
// rather than a guess.
func TestLookup_Miss(t *testing.T) {
	assert.Empty(t, taxonomy.Lookup("Proprietary"))
	assert.Empty(t, taxonomy.Lookup(""))
}

// TestMatch_LongestAliasWins verifies containment matching prefers the
// most specific alias present in the token.
func TestMatch_LongestAliasWins(t *testing.T) {
	hits := taxonomy.Match("Licensed under the Apache License, Version 2.0 (the License)")
	require.Len(t, hits, 1)
	assert.Equal(t, model.LicenseID("Apache-2.0"), hits[0].ID)

	hits = taxonomy.Match("GNU Lesser General Public License v3 (LGPLv3)")
	require.Len(t, hits, 1)
	assert.Equal(t, model.LicenseID("LGPL-3.0"), hits[0].ID)
}

// TestMatch_TieKeepsAll verifies equal-length alias ties surface every
// candidate instead of dropping one arbitrarily.
func TestMatch_TieKeepsAll(t *testing.T) {
	hits := taxonomy.Match("released under a BSD license")
	require.Len(t, hits, 2)
}

// TestByID verifies identifier resolution tolerates case differences
// and that UNKNOWN is a valid member of the taxonomy.
func TestByID(t *testing.T) {
	lic, ok := taxonomy.ByID("mit")
	require.True(t, ok)
	assert.Equal(t, "MIT License", lic.Display)

	unknown, ok := taxonomy.ByID(model.LicenseUnknown)
	require.True(t, ok)
	assert.True(t, unknown.Equal(taxonomy.Unknown))

	_, ok = taxonomy.ByID("NOT-A-LICENSE")
	assert.False(t, ok)
}

// TestAll_Immutable verifies callers cannot corrupt the shared taxonomy
// through the returned slice.
func TestAll_Immutable(t *testing.T) {
	first := taxonomy.All()
	require.NotEmpty(t, first)
	first[0] = model.CanonicalLicense{ID: "CORRUPTED"}

	second := taxonomy.All()
	assert.NotEqual(t, model.LicenseID("CORRUPTED"), second[0].ID)
}
