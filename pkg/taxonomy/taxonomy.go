// Package taxonomy holds the fixed set of canonical licenses the engine
// recognizes, together with the alias index mapping the many surface
// forms found in package metadata onto canonical identifiers.
//
// The index is built once at process start from the static table below
// and is immutable afterwards.
package taxonomy

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/licensegate/licensegate/pkg/model"
)

// Unknown is the fallback entry returned when nothing matches.
var Unknown = model.CanonicalLicense{ID: model.LicenseUnknown, Display: "UNKNOWN"}

type entry struct {
	id      model.LicenseID
	display string
	aliases []string
}

// The alias lists collect the spellings observed in real package
// metadata: SPDX identifiers, trove classifier phrases, and the loose
// free-text forms of the License field. Aliases shared by two entries
// (e.g. plain "BSD") deliberately map to both: the classifier keeps
// every candidate rather than dropping one arbitrarily.
var table = []entry{
	{"MIT", "MIT License", []string{"mit", "mit license", "expat", "x11"}},
	{"Apache-2.0", "Apache License 2.0", []string{
		"apache-2.0", "apache 2.0", "apache2", "apache",
		"apache license 2.0", "apache license, version 2.0",
		"apache software license", "asl 2",
	}},
	{"GPL-2.0", "GNU General Public License v2.0", []string{
		"gpl-2.0", "gplv2", "gpl v2", "gpl-2.0-only", "gpl-2.0-or-later", "gplv2+",
		"gnu general public license v2 (gplv2)",
		"gnu general public license v2 or later (gplv2+)",
	}},
	{"GPL-3.0", "GNU General Public License v3.0", []string{
		"gpl-3.0", "gplv3", "gpl v3", "gpl-3.0-only", "gpl-3.0-or-later", "gplv3+",
		"gnu general public license v3 (gplv3)",
		"gnu general public license v3 or later (gplv3+)",
	}},
	{"LGPL-2.1", "GNU Lesser General Public License v2.1", []string{
		"lgpl-2.1", "lgplv2.1", "lgpl-2.1-only", "lgpl-2.1-or-later", "lgpl",
		"gnu lesser general public license v2 (lgplv2)",
		"gnu lesser general public license v2 or later (lgplv2+)",
		"gnu library or lesser general public license (lgpl)",
	}},
	{"LGPL-3.0", "GNU Lesser General Public License v3.0", []string{
		"lgpl-3.0", "lgplv3", "lgpl-3.0-only", "lgpl-3.0-or-later", "lgpl",
		"gnu lesser general public license v3 (lgplv3)",
		"gnu lesser general public license v3 or later (lgplv3+)",
	}},
	{"AGPL-3.0", "GNU Affero General Public License v3.0", []string{
		"agpl-3.0", "agplv3", "agpl-3.0-only", "agpl-3.0-or-later",
		"gnu affero general public license v3",
		"gnu affero general public license v3 or later (agplv3+)",
	}},
	{"BSD-2-Clause", "BSD 2-Clause License", []string{
		"bsd-2-clause", "bsd 2-clause license", "simplified bsd", "freebsd",
		"bsd", "bsd license",
	}},
	{"BSD-3-Clause", "BSD 3-Clause License", []string{
		"bsd-3-clause", "bsd 3-clause license", "new bsd", "modified bsd",
		"bsd", "bsd license",
	}},
	{"0BSD", "BSD Zero Clause License", []string{"0bsd", "zero-clause bsd", "bsd zero clause license"}},
	{"ISC", "ISC License", []string{"isc", "isc license (iscl)"}},
	{"MPL-2.0", "Mozilla Public License 2.0", []string{
		"mpl-2.0", "mpl2", "mozilla public license 2.0", "mozilla public license 2.0 (mpl 2.0)",
	}},
	{"EPL-1.0", "Eclipse Public License 1.0", []string{"epl-1.0", "eclipse public license 1.0 (epl-1.0)"}},
	{"EPL-2.0", "Eclipse Public License 2.0", []string{"epl-2.0", "eclipse public license 2.0 (epl-2.0)"}},
	{"CDDL-1.0", "Common Development and Distribution License 1.0", []string{
		"cddl-1.0", "common development and distribution license 1.0 (cddl-1.0)",
	}},
	{"Unlicense", "The Unlicense", []string{"unlicense", "the unlicense (unlicense)"}},
	{"Zlib", "zlib License", []string{"zlib", "zlib/libpng license"}},
	{"WTFPL", "Do What The F*ck You Want To Public License", []string{"wtfpl"}},
	{"CC0-1.0", "Creative Commons Zero v1.0 Universal", []string{
		"cc0-1.0", "cc0", "cc0 1.0 universal (cc0 1.0) public domain dedication",
	}},
	{"CC-BY-4.0", "Creative Commons Attribution 4.0", []string{
		"cc-by-4.0", "creative commons attribution 4.0",
	}},
	{"Artistic-2.0", "Artistic License 2.0", []string{"artistic-2.0", "artistic license 2.0"}},
	{"BSL-1.0", "Boost Software License 1.0", []string{
		"bsl-1.0", "boost software license 1.0 (bsl-1.0)", "boost software license",
	}},
	{"Python-2.0", "Python Software Foundation License", []string{
		"python-2.0", "psf", "psf-2.0", "python software foundation license",
	}},
	{"PostgreSQL", "PostgreSQL License", []string{"postgresql", "postgresql license"}},
	{"EUPL-1.2", "European Union Public License 1.2", []string{
		"eupl-1.2", "european union public licence 1.2 (eupl 1.2)",
	}},
}

// noise words removed during normalization. "License" itself is noise:
// "MIT License" and "MIT" must land on the same key.
var noiseWords = map[string]bool{
	"license": true,
	"licence": true,
	"the":     true,
}

// Normalize reduces a raw license token to its comparison form: NFC,
// lower case, punctuation folded to spaces, noise words removed.
func Normalize(s string) string {
	s = strings.ToLower(norm.NFC.String(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '+':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	fields := strings.Fields(b.String())
	out := fields[:0]
	for _, f := range fields {
		if !noiseWords[f] {
			out = append(out, f)
		}
	}
	return strings.Join(out, " ")
}

type indexedAlias struct {
	norm    string
	license model.CanonicalLicense
}

var (
	byID      map[string]model.CanonicalLicense
	exact     map[string][]model.CanonicalLicense
	byLength  []indexedAlias // normalized aliases, longest first
	canonical []model.CanonicalLicense
)

func init() {
	byID = make(map[string]model.CanonicalLicense, len(table)+1)
	exact = make(map[string][]model.CanonicalLicense)
	for _, e := range table {
		lic := model.CanonicalLicense{ID: e.id, Display: e.display}
		byID[e.id.Normalized()] = lic
		canonical = append(canonical, lic)
		seen := map[string]bool{}
		for _, a := range append([]string{string(e.id), e.display}, e.aliases...) {
			n := Normalize(a)
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			exact[n] = appendUnique(exact[n], lic)
			byLength = append(byLength, indexedAlias{norm: n, license: lic})
		}
	}
	byID[model.LicenseUnknown.Normalized()] = Unknown
	sort.SliceStable(byLength, func(i, j int) bool {
		if len(byLength[i].norm) != len(byLength[j].norm) {
			return len(byLength[i].norm) > len(byLength[j].norm)
		}
		return byLength[i].norm < byLength[j].norm
	})
}

func appendUnique(list []model.CanonicalLicense, lic model.CanonicalLicense) []model.CanonicalLicense {
	for _, l := range list {
		if l.Equal(lic) {
			return list
		}
	}
	return append(list, lic)
}

// All returns every canonical license in the taxonomy, excluding UNKNOWN.
func All() []model.CanonicalLicense {
	out := make([]model.CanonicalLicense, len(canonical))
	copy(out, canonical)
	return out
}

// ByID resolves a canonical identifier, tolerating case and whitespace
// differences.
func ByID(id model.LicenseID) (model.CanonicalLicense, bool) {
	lic, ok := byID[id.Normalized()]
	return lic, ok
}

// Lookup returns the canonical licenses whose alias set contains the
// token exactly (after normalization). An ambiguous alias yields every
// entry it belongs to.
func Lookup(token string) []model.CanonicalLicense {
	hits := exact[Normalize(token)]
	if len(hits) == 0 {
		return nil
	}
	out := make([]model.CanonicalLicense, len(hits))
	copy(out, hits)
	return out
}

// Match scans the token for contained aliases and returns the entries
// of the longest one found. When several aliases of that same length
// match, all of their entries are returned: the policy layer must not
// silently lose a possible match.
func Match(token string) []model.CanonicalLicense {
	n := Normalize(token)
	if n == "" {
		return nil
	}
	padded := " " + n + " "
	best := 0
	var out []model.CanonicalLicense
	for _, a := range byLength {
		if best > 0 && len(a.norm) < best {
			break
		}
		if strings.Contains(padded, " "+a.norm+" ") {
			best = len(a.norm)
			out = appendUnique(out, a.license)
		}
	}
	return out
}
