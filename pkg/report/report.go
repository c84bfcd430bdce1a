// Package report aggregates per-package verdicts into the final,
// stably-ordered Report. Filtering selects among already-computed
// verdicts (it never re-evaluates policy), sorting is the sole ordering
// authority for the run, and the summary counts cover the filtered set.
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/gowebpki/jcs"

	"github.com/licensegate/licensegate/pkg/model"
	"github.com/licensegate/licensegate/pkg/normalize"
)

// SortKey selects the primary report ordering. Ties always break on the
// normalized package name so the ordering is total and reproducible.
type SortKey string

const (
	SortByName    SortKey = "name"
	SortByLicense SortKey = "license"
	SortByAuthor  SortKey = "author"
	SortByURL     SortKey = "url"
	SortByVersion SortKey = "version"
)

// ParseSortKey maps a user-supplied column name onto a SortKey.
func ParseSortKey(s string) (SortKey, bool) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortByName, "":
		return SortByName, true
	case SortByLicense:
		return SortByLicense, true
	case SortByAuthor:
		return SortByAuthor, true
	case SortByURL:
		return SortByURL, true
	case SortByVersion:
		return SortByVersion, true
	}
	return "", false
}

// Filter selects which verdicts a report includes. The zero value
// keeps everything.
type Filter struct {
	// NameContains keeps packages whose normalized name contains the
	// normalized pattern.
	NameContains string
	// Author keeps packages whose author contains the value,
	// case-insensitively.
	Author string
	// OnlyLicensed keeps packages with at least one resolved license
	// other than UNKNOWN; OnlyUnlicensed keeps the complement.
	OnlyLicensed   bool
	OnlyUnlicensed bool
	// FailedOnly keeps failing verdicts.
	FailedOnly bool
}

func (f Filter) keep(v model.PolicyVerdict) bool {
	if f.NameContains != "" &&
		!strings.Contains(normalize.NormalizeName(v.Package.Name), normalize.NormalizeName(f.NameContains)) {
		return false
	}
	if f.Author != "" &&
		!strings.Contains(strings.ToLower(v.Package.Author), strings.ToLower(f.Author)) {
		return false
	}
	if f.OnlyLicensed && v.Package.Unlicensed() {
		return false
	}
	if f.OnlyUnlicensed && !v.Package.Unlicensed() {
		return false
	}
	if f.FailedOnly && v.Passed {
		return false
	}
	return true
}

// BuildOptions configures one report build.
type BuildOptions struct {
	SortKey SortKey
	Filter  Filter
}

// Build assembles a new immutable Report from the full verdict
// sequence. Input order carries no meaning: the configured sort key is
// the only ordering authority.
func Build(verdicts []model.PolicyVerdict, recordErrors []model.RecordError, opts BuildOptions) *model.Report {
	kept := make([]model.PolicyVerdict, 0, len(verdicts))
	for _, v := range verdicts {
		if opts.Filter.keep(v) {
			kept = append(kept, v)
		}
	}

	key := opts.SortKey
	if key == "" {
		key = SortByName
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return less(key, kept[i].Package, kept[j].Package)
	})

	summary := model.Summary{Total: len(kept)}
	for _, v := range kept {
		if !v.Passed {
			summary.Failed++
		}
		if v.Package.Unlicensed() {
			summary.Unknown++
		}
	}

	errs := append([]model.RecordError(nil), recordErrors...)
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Index < errs[j].Index })

	return &model.Report{
		RunID:       uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
		Verdicts:    kept,
		Errors:      errs,
		Summary:     summary,
		ContentHash: contentHash(kept, errs, summary),
	}
}

func less(key SortKey, a, b *model.ResolvedPackage) bool {
	nameA := normalize.NormalizeName(a.Name)
	nameB := normalize.NormalizeName(b.Name)
	switch key {
	case SortByLicense:
		la := strings.ToLower(licenseSortValue(a))
		lb := strings.ToLower(licenseSortValue(b))
		if la != lb {
			return la < lb
		}
	case SortByAuthor:
		aa := strings.ToLower(a.Author)
		ab := strings.ToLower(b.Author)
		if aa != ab {
			return aa < ab
		}
	case SortByURL:
		ua := strings.ToLower(a.HomePage)
		ub := strings.ToLower(b.HomePage)
		if ua != ub {
			return ua < ub
		}
	case SortByVersion:
		if c := compareVersions(a.Version, b.Version); c != 0 {
			return c < 0
		}
	}
	return nameA < nameB
}

// licenseSortValue joins the sorted display names, matching how
// formatters render the license column.
func licenseSortValue(p *model.ResolvedPackage) string {
	displays := p.LicenseDisplays()
	sort.Strings(displays)
	return strings.Join(displays, "; ")
}

// compareVersions orders semantic versions numerically and falls back
// to plain string comparison for anything semver cannot parse.
func compareVersions(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}
	return strings.Compare(a, b)
}

// hashEnvelope is the projection fed into the content hash. Run ID and
// timestamp are excluded: identical inputs must hash identically
// across runs.
type hashEnvelope struct {
	Verdicts []model.PolicyVerdict `json:"verdicts"`
	Errors   []model.RecordError   `json:"errors"`
	Summary  model.Summary         `json:"summary"`
}

func contentHash(verdicts []model.PolicyVerdict, errs []model.RecordError, summary model.Summary) string {
	raw, err := json.Marshal(hashEnvelope{Verdicts: verdicts, Errors: errs, Summary: summary})
	if err != nil {
		return ""
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(canonical)
	return "sha256:" + hex.EncodeToString(sum[:])
}
