package report

import (
	"sort"
	"strings"

	"github.com/licensegate/licensegate/pkg/model"
)

// LicenseGroup is one row of the license summary: how many packages in
// the report resolved to the same license set.
type LicenseGroup struct {
	Count    int    `json:"count"`
	Licenses string `json:"licenses"`
}

// GroupOrder selects the summary ordering.
type GroupOrder string

const (
	GroupByCount   GroupOrder = "count"
	GroupByLicense GroupOrder = "license"
)

// GroupByLicenseSet collapses the report into per-license-set counts.
// Grouping keys on the rendered license column (sorted display names
// joined by "; "), so two packages with the same set always share a row.
func GroupByLicenseSet(rep *model.Report, order GroupOrder) []LicenseGroup {
	counts := make(map[string]int)
	for _, v := range rep.Verdicts {
		counts[licenseSortValue(v.Package)]++
	}

	groups := make([]LicenseGroup, 0, len(counts))
	for lic, n := range counts {
		groups = append(groups, LicenseGroup{Count: n, Licenses: lic})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if order == GroupByCount && groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return strings.ToLower(groups[i].Licenses) < strings.ToLower(groups[j].Licenses)
	})
	return groups
}
