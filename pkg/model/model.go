// Package model defines the intermediate representation shared by every
// stage of the audit pipeline: the raw provider records going in, the
// resolved packages and verdicts in the middle, and the Report handed to
// formatters at the end.
package model

import (
	"strings"
	"time"
)

// LicenseID identifies one canonical license in the taxonomy.
// Comparison is case-insensitive and whitespace-normalized.
type LicenseID string

// LicenseUnknown is the fallback identifier used when no source yields
// a recognizable license. It is a valid member of every resolved set.
const LicenseUnknown LicenseID = "UNKNOWN"

// Normalized returns the comparison form of the identifier.
func (id LicenseID) Normalized() string {
	return strings.ToUpper(strings.Join(strings.Fields(string(id)), " "))
}

// Equal reports identifier equality under the canonical comparison rules.
func (id LicenseID) Equal(other LicenseID) bool {
	return id.Normalized() == other.Normalized()
}

// CanonicalLicense is one entry of the fixed license taxonomy.
type CanonicalLicense struct {
	ID      LicenseID `json:"id"`
	Display string    `json:"display"`
}

// Equal reports whether two canonical licenses denote the same taxonomy
// entry. Only the identifier participates in equality.
func (l CanonicalLicense) Equal(other CanonicalLicense) bool {
	return l.ID.Equal(other.ID)
}

// RawPackageRecord is one installed package exactly as the metadata
// provider reported it. Records are immutable inputs; the pipeline never
// writes back into them.
type RawPackageRecord struct {
	Name            string   `json:"name"`
	Version         string   `json:"version"`
	LicenseField    string   `json:"license_field,omitempty"`
	Classifiers     []string `json:"classifiers,omitempty"`
	LicenseFilePath string   `json:"license_file_path,omitempty"`
	LicenseFileText string   `json:"license_file_text,omitempty"`
	NoticeFilePath  string   `json:"notice_file_path,omitempty"`
	NoticeText      string   `json:"notice_text,omitempty"`
	Author          string   `json:"author,omitempty"`
	Maintainer      string   `json:"maintainer,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	HomePage        string   `json:"home_page,omitempty"`
	ProjectURLs     []string `json:"project_urls,omitempty"`
	Requires        []string `json:"requires,omitempty"`
}

// ResolvedPackage is the canonical view of one package after
// normalization and classification. Licenses is an ordered set: it is
// never empty and holds exactly {UNKNOWN} when no source matched.
type ResolvedPackage struct {
	Name     string             `json:"name"`
	Version  string             `json:"version"`
	Licenses []CanonicalLicense `json:"licenses"`
	Author   string             `json:"author,omitempty"`
	HomePage string             `json:"home_page,omitempty"`
	Requires []string           `json:"requires,omitempty"`
}

// HasLicense reports whether the resolved set contains id.
func (p *ResolvedPackage) HasLicense(id LicenseID) bool {
	for _, l := range p.Licenses {
		if l.ID.Equal(id) {
			return true
		}
	}
	return false
}

// Unlicensed reports whether the resolved set is exactly {UNKNOWN}.
func (p *ResolvedPackage) Unlicensed() bool {
	return len(p.Licenses) == 1 && p.Licenses[0].ID.Equal(LicenseUnknown)
}

// LicenseDisplays returns the display names of the resolved set, in set order.
func (p *ResolvedPackage) LicenseDisplays() []string {
	out := make([]string, len(p.Licenses))
	for i, l := range p.Licenses {
		out[i] = l.Display
	}
	return out
}

// VerdictReason explains why a package failed (or NONE when it passed).
type VerdictReason string

const (
	ReasonNone            VerdictReason = "NONE"
	ReasonDenied          VerdictReason = "DENIED"
	ReasonNotAllowed      VerdictReason = "NOT_ALLOWED"
	ReasonUnknownRejected VerdictReason = "UNKNOWN_LICENSE_REJECTED"
)

// PolicyVerdict is the policy outcome for one package. Package is a
// shared back-reference, never mutated after creation.
type PolicyVerdict struct {
	Package           *ResolvedPackage   `json:"package"`
	Passed            bool               `json:"passed"`
	ViolatingLicenses []CanonicalLicense `json:"violating_licenses,omitempty"`
	Reason            VerdictReason      `json:"reason"`
	// RuleSource carries the text of the custom rule that produced a
	// DENIED verdict, empty for built-in checks.
	RuleSource string `json:"rule_source,omitempty"`
}

// RecordError describes one provider record the pipeline rejected.
// Rejected records are reported alongside resolved packages, never in
// place of them.
type RecordError struct {
	Index  int    `json:"index"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}

// Summary holds the aggregate counts over the filtered verdict set.
type Summary struct {
	Total   int `json:"total"`
	Failed  int `json:"failed"`
	Unknown int `json:"unknown_count"`
}

// Report is the stably-ordered result of one audit run. It is built
// once by the aggregator and read-only thereafter.
type Report struct {
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Verdicts    []PolicyVerdict `json:"verdicts"`
	Errors      []RecordError   `json:"errors,omitempty"`
	Summary     Summary         `json:"summary"`
	// ContentHash is a sha256 over the canonical JSON of the verdict
	// sequence. Identical inputs and configuration produce identical
	// hashes across runs.
	ContentHash string `json:"content_hash"`
}

// AnyFailures reports whether at least one verdict failed. The mapping
// from this boolean to a process exit code belongs to the caller.
func (r *Report) AnyFailures() bool {
	return r.Summary.Failed > 0
}
