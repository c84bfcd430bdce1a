// Package normalize turns raw provider records into the canonical
// fields the classifier consumes: a clean token list with per-token
// confidence, a normalized package name, and resolved author/homepage
// values. Normalization is a pure function; missing data degrades to an
// empty token list, never to an error.
package normalize

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/licensegate/licensegate/pkg/model"
	"github.com/licensegate/licensegate/pkg/taxonomy"
)

// Source selects which metadata surfaces contribute license tokens.
type Source string

const (
	// SourceMeta uses only the free-text license field.
	SourceMeta Source = "meta"
	// SourceClassifier uses only license-bearing classifiers.
	SourceClassifier Source = "classifier"
	// SourceMixed prefers classifiers and falls back to the license
	// field when no classifier carries a license. Default.
	SourceMixed Source = "mixed"
	// SourceAll unions both surfaces.
	SourceAll Source = "all"
)

// ParseSource maps a user-supplied source name onto a Source.
func ParseSource(s string) (Source, bool) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceMeta:
		return SourceMeta, true
	case SourceClassifier:
		return SourceClassifier, true
	case SourceMixed, "":
		return SourceMixed, true
	case SourceAll:
		return SourceAll, true
	}
	return "", false
}

// Token is one raw license candidate. Weak tokens come from the
// license-file heuristic and never override stronger evidence.
type Token struct {
	Text string
	Weak bool
}

// Fields is the normalized projection of one RawPackageRecord.
type Fields struct {
	Name           string
	NormalizedName string
	Version        string
	Tokens         []Token
	Author         string
	HomePage       string
	Requires       []string
}

var (
	namePattern  = regexp.MustCompile(`[-_.]+`)
	fieldSplit   = regexp.MustCompile(`(?i)[,;]|\s+or\s+`)
	classifierNS = " :: "
)

// NormalizeName returns the canonical package name: runs of `-`, `_`
// and `.` collapse to a single `-` and the result is lower-cased.
// Uniqueness, ignore matching and sorting all operate on this form.
func NormalizeName(name string) string {
	return strings.ToLower(namePattern.ReplaceAllString(name, "-"))
}

// Normalize derives the canonical fields for one record. src decides
// which metadata surfaces feed the token list; the license-file
// heuristic only runs when both surfaces came up empty.
func Normalize(raw model.RawPackageRecord, src Source) Fields {
	meta := splitLicenseField(raw.LicenseField)
	classifier := licenseClassifiers(raw.Classifiers)

	var tokens []Token
	switch src {
	case SourceMeta:
		tokens = meta
	case SourceClassifier:
		tokens = classifier
	case SourceAll:
		tokens = append(append([]Token{}, classifier...), meta...)
	default: // mixed
		if len(classifier) > 0 {
			tokens = classifier
		} else {
			tokens = meta
		}
	}

	if len(tokens) == 0 && raw.LicenseFileText != "" {
		if t, ok := licenseFileHint(raw.LicenseFileText); ok {
			tokens = append(tokens, t)
		}
	}

	return Fields{
		Name:           raw.Name,
		NormalizedName: NormalizeName(raw.Name),
		Version:        raw.Version,
		Tokens:         tokens,
		Author:         author(raw),
		HomePage:       homePage(raw),
		Requires:       append([]string(nil), raw.Requires...),
	}
}

// splitLicenseField breaks a free-text license field on the recognized
// separators (comma, semicolon, "or") and trims the pieces.
func splitLicenseField(field string) []Token {
	var out []Token
	for _, part := range fieldSplit.Split(field, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, Token{Text: part})
	}
	return out
}

// licenseClassifiers extracts the license display phrase from each
// license-category classifier. The bare "OSI Approved" category carries
// no license name and is skipped.
func licenseClassifiers(classifiers []string) []Token {
	var out []Token
	for _, c := range classifiers {
		if !strings.HasPrefix(c, "License") {
			continue
		}
		segments := strings.Split(c, classifierNS)
		phrase := strings.TrimSpace(segments[len(segments)-1])
		if phrase == "" || phrase == "OSI Approved" {
			continue
		}
		out = append(out, Token{Text: phrase})
	}
	return out
}

// hintLines bounds how far into a bundled license file the fallback
// heuristic reads. License names appear in the first lines or not at all.
const hintLines = 20

// licenseFileHint scans the head of a bundled license file for a known
// license name. The hint is emitted only when exactly one taxonomy
// entry matches: an ambiguous header is no evidence at all.
func licenseFileHint(text string) (Token, bool) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	var (
		found model.CanonicalLicense
		count int
	)
	for i := 0; scanner.Scan() && i < hintLines; i++ {
		for _, lic := range taxonomy.Match(scanner.Text()) {
			if count == 0 || !found.Equal(lic) {
				count++
				found = lic
			}
			if count > 1 {
				return Token{}, false
			}
		}
	}
	if count != 1 {
		return Token{}, false
	}
	return Token{Text: found.Display, Weak: true}, true
}

func author(raw model.RawPackageRecord) string {
	if raw.Author != "" {
		return raw.Author
	}
	return raw.Maintainer
}

// homePagePriority orders the Project-URL labels used as a fallback
// when the record carries no Home-page value.
var homePagePriority = []string{"homepage", "source", "repository", "changelog", "bug tracker"}

func homePage(raw model.RawPackageRecord) string {
	if raw.HomePage != "" {
		return raw.HomePage
	}
	candidates := map[string]string{}
	for _, entry := range raw.ProjectURLs {
		key, value, ok := strings.Cut(entry, ",")
		if !ok {
			continue
		}
		candidates[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	for _, key := range homePagePriority {
		if url, ok := candidates[key]; ok && url != "" {
			return url
		}
	}
	return ""
}
