// Package render formats a Report for humans and machines. Every
// formatter is a pure projection: none mutates, re-filters, or
// re-orders the report it is handed.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/licensegate/licensegate/pkg/model"
	"github.com/licensegate/licensegate/pkg/report"
)

// Format names one output dialect.
type Format string

const (
	FormatPlain             Format = "plain"
	FormatPlainVertical     Format = "plain-vertical"
	FormatMarkdown          Format = "markdown"
	FormatRST               Format = "rst"
	FormatCSV               Format = "csv"
	FormatJSON              Format = "json"
	FormatJSONLicenseFinder Format = "json-license-finder"
)

// ParseFormat maps a user-supplied format name onto a Format.
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatPlain, "":
		return FormatPlain, true
	case FormatPlainVertical:
		return FormatPlainVertical, true
	case FormatMarkdown, "md":
		return FormatMarkdown, true
	case FormatRST, "rest":
		return FormatRST, true
	case FormatCSV:
		return FormatCSV, true
	case FormatJSON:
		return FormatJSON, true
	case FormatJSONLicenseFinder:
		return FormatJSONLicenseFinder, true
	}
	return "", false
}

// Columns selects the optional report columns. Name and the license
// column are always present.
type Columns struct {
	Version bool
	Authors bool
	URLs    bool
	Verdict bool
}

// DefaultColumns matches the default table layout: name, version, license.
func DefaultColumns() Columns { return Columns{Version: true} }

func (c Columns) headers() []string {
	out := []string{"Name"}
	if c.Version {
		out = append(out, "Version")
	}
	out = append(out, "License")
	if c.Authors {
		out = append(out, "Author")
	}
	if c.URLs {
		out = append(out, "URL")
	}
	if c.Verdict {
		out = append(out, "Verdict")
	}
	return out
}

func (c Columns) row(v model.PolicyVerdict) []string {
	out := []string{v.Package.Name}
	if c.Version {
		out = append(out, v.Package.Version)
	}
	out = append(out, licenseColumn(v.Package))
	if c.Authors {
		out = append(out, v.Package.Author)
	}
	if c.URLs {
		out = append(out, v.Package.HomePage)
	}
	if c.Verdict {
		out = append(out, verdictColumn(v))
	}
	return out
}

// licenseColumn renders the resolved set the way every formatter and
// the license sort key see it: sorted display names joined by "; ".
func licenseColumn(p *model.ResolvedPackage) string {
	displays := p.LicenseDisplays()
	sort.Strings(displays)
	return strings.Join(displays, "; ")
}

func verdictColumn(v model.PolicyVerdict) string {
	if v.Passed {
		return "PASS"
	}
	return "FAIL (" + string(v.Reason) + ")"
}

// Render writes the report in the requested format.
func Render(w io.Writer, rep *model.Report, f Format, cols Columns) error {
	switch f {
	case FormatPlainVertical:
		return renderPlainVertical(w, rep, cols)
	case FormatMarkdown:
		return renderTable(w, tableRows(rep, cols), markdownStyle)
	case FormatRST:
		return renderTable(w, tableRows(rep, cols), rstStyle)
	case FormatCSV:
		return renderCSV(w, rep, cols)
	case FormatJSON:
		return renderJSON(w, rep, cols)
	case FormatJSONLicenseFinder:
		return renderJSONLicenseFinder(w, rep)
	default:
		return renderTable(w, tableRows(rep, cols), plainStyle)
	}
}

// RenderSummary writes the per-license-set counts in the requested
// format. Only the tabular dialects apply to summaries.
func RenderSummary(w io.Writer, groups []report.LicenseGroup, f Format) error {
	rows := [][]string{{"Count", "License"}}
	for _, g := range groups {
		rows = append(rows, []string{fmt.Sprintf("%d", g.Count), g.Licenses})
	}
	switch f {
	case FormatMarkdown:
		return renderTable(w, rows, markdownStyle)
	case FormatRST:
		return renderTable(w, rows, rstStyle)
	case FormatCSV:
		return writeCSVRows(w, rows)
	case FormatJSON:
		return writeJSONValue(w, groups)
	default:
		return renderTable(w, rows, plainStyle)
	}
}

func tableRows(rep *model.Report, cols Columns) [][]string {
	rows := [][]string{cols.headers()}
	for _, v := range rep.Verdicts {
		rows = append(rows, cols.row(v))
	}
	return rows
}

func renderPlainVertical(w io.Writer, rep *model.Report, cols Columns) error {
	for _, v := range rep.Verdicts {
		for _, cell := range cols.row(v) {
			if _, err := fmt.Fprintln(w, cell); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
