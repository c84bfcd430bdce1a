package normalize_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licensegate/licensegate/pkg/model"
	"github.com/licensegate/licensegate/pkg/normalize"
)

// TestNormalizeName verifies canonical package naming: runs of
// separators collapse to a single dash, lower-cased.
func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"Django":            "django",
		"zope.interface":    "zope-interface",
		"ruamel.yaml.clib":  "ruamel-yaml-clib",
		"Foo__Bar":          "foo-bar",
		"typing_extensions": "typing-extensions",
		"a.-_b":             "a-b",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalize.NormalizeName(in), "input %q", in)
	}
}

// TestParseSource verifies the source names, including the default.
func TestParseSource(t *testing.T) {
	for _, name := range []string{"meta", "classifier", "mixed", "all", "", " Mixed "} {
		_, ok := normalize.ParseSource(name)
		assert.True(t, ok, "source %q", name)
	}
	_, ok := normalize.ParseSource("setup")
	assert.False(t, ok)
}

// TestNormalize_LicenseFieldSplitting verifies the free-text field is
// split on the recognized separators only.
func TestNormalize_LicenseFieldSplitting(t *testing.T) {
	raw := model.RawPackageRecord{
		Name:         "pkg",
		LicenseField: "MIT, Apache-2.0; BSD or ISC",
	}
	fields := normalize.Normalize(raw, normalize.SourceMeta)

	var texts []string
	for _, tok := range fields.Tokens {
		assert.False(t, tok.Weak)
		texts = append(texts, tok.Text)
	}
	assert.Equal(t, []string{"MIT", "Apache-2.0", "BSD", "ISC"}, texts)
}

// TestNormalize_Classifiers verifies classifier extraction: only the
// trailing segment of license classifiers counts, and the bare
// "OSI Approved" category carries no information.
func TestNormalize_Classifiers(t *testing.T) {
	raw := model.RawPackageRecord{
		Name: "pkg",
		Classifiers: []string{
			"Development Status :: 5 - Production/Stable",
			"License :: OSI Approved",
			"License :: OSI Approved :: MIT License",
			"License :: OSI Approved :: Apache Software License",
			"Programming Language :: Python :: 3",
		},
	}
	fields := normalize.Normalize(raw, normalize.SourceClassifier)

	require.Len(t, fields.Tokens, 2)
	assert.Equal(t, "MIT License", fields.Tokens[0].Text)
	assert.Equal(t, "Apache Software License", fields.Tokens[1].Text)
}

// TestNormalize_MixedPrefersClassifier verifies the default source:
// classifiers win when present, the license field is the fallback.
func TestNormalize_MixedPrefersClassifier(t *testing.T) {
	raw := model.RawPackageRecord{
		Name:         "pkg",
		LicenseField: "BSD",
		Classifiers:  []string{"License :: OSI Approved :: MIT License"},
	}

	mixed := normalize.Normalize(raw, normalize.SourceMixed)
	require.Len(t, mixed.Tokens, 1)
	assert.Equal(t, "MIT License", mixed.Tokens[0].Text)

	raw.Classifiers = nil
	fallback := normalize.Normalize(raw, normalize.SourceMixed)
	require.Len(t, fallback.Tokens, 1)
	assert.Equal(t, "BSD", fallback.Tokens[0].Text)
}

// TestNormalize_AllUnionsSources verifies "all" keeps both surfaces.
func TestNormalize_AllUnionsSources(t *testing.T) {
	raw := model.RawPackageRecord{
		Name:         "pkg",
		LicenseField: "BSD",
		Classifiers:  []string{"License :: OSI Approved :: MIT License"},
	}
	fields := normalize.Normalize(raw, normalize.SourceAll)
	require.Len(t, fields.Tokens, 2)
	assert.Equal(t, "MIT License", fields.Tokens[0].Text)
	assert.Equal(t, "BSD", fields.Tokens[1].Text)
}

// TestNormalize_LicenseFileHint verifies the weak fallback: it fires
// only when the metadata surfaces are empty and the file header names
// exactly one known license.
func TestNormalize_LicenseFileHint(t *testing.T) {
	raw := model.RawPackageRecord{
		Name:            "pkg",
		LicenseFileText: "The MIT License (MIT)\n\nCopyright (c) 2020\n",
	}
	fields := normalize.Normalize(raw, normalize.SourceMixed)
	require.Len(t, fields.Tokens, 1)
	assert.True(t, fields.Tokens[0].Weak)
	assert.Equal(t, "MIT License", fields.Tokens[0].Text)
}

// TestNormalize_LicenseFileHint_Suppressed verifies the two
// suppression rules: metadata evidence wins, and an ambiguous file
// header is no evidence at all.
func TestNormalize_LicenseFileHint_Suppressed(t *testing.T) {
	withMeta := model.RawPackageRecord{
		Name:            "pkg",
		LicenseField:    "ISC",
		LicenseFileText: "The MIT License (MIT)\n",
	}
	fields := normalize.Normalize(withMeta, normalize.SourceMixed)
	require.Len(t, fields.Tokens, 1)
	assert.Equal(t, "ISC", fields.Tokens[0].Text)

	ambiguous := model.RawPackageRecord{
		Name:            "pkg",
		LicenseFileText: "Dual licensed.\nMIT License\nApache License 2.0\n",
	}
	fields = normalize.Normalize(ambiguous, normalize.SourceMixed)
	assert.Empty(t, fields.Tokens)
}

// TestNormalize_LicenseFileHint_HeaderOnly verifies the heuristic never
// reads past the file header.
func TestNormalize_LicenseFileHint_HeaderOnly(t *testing.T) {
	text := strings.Repeat("boilerplate\n", 30) + "MIT License\n"
	raw := model.RawPackageRecord{Name: "pkg", LicenseFileText: text}
	fields := normalize.Normalize(raw, normalize.SourceMixed)
	assert.Empty(t, fields.Tokens)
}

// TestNormalize_HomePagePriority verifies the Project-URL fallback
// order when the record carries no Home-page value.
func TestNormalize_HomePagePriority(t *testing.T) {
	raw := model.RawPackageRecord{
		Name: "pkg",
		ProjectURLs: []string{
			"Bug Tracker, https://example.com/issues",
			"Source, https://example.com/src",
			"Homepage, https://example.com",
		},
	}
	fields := normalize.Normalize(raw, normalize.SourceMixed)
	assert.Equal(t, "https://example.com", fields.HomePage)

	raw.HomePage = "https://direct.example.com"
	fields = normalize.Normalize(raw, normalize.SourceMixed)
	assert.Equal(t, "https://direct.example.com", fields.HomePage)
}

// TestNormalize_AuthorFallback verifies Maintainer fills in for a
// missing Author.
func TestNormalize_AuthorFallback(t *testing.T) {
	raw := model.RawPackageRecord{Name: "pkg", Maintainer: "Jane"}
	assert.Equal(t, "Jane", normalize.Normalize(raw, normalize.SourceMixed).Author)

	raw.Author = "Alex"
	assert.Equal(t, "Alex", normalize.Normalize(raw, normalize.SourceMixed).Author)
}
