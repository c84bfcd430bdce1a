package render

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"

	"github.com/licensegate/licensegate/pkg/model"
)

func renderCSV(w io.Writer, rep *model.Report, cols Columns) error {
	return writeCSVRows(w, tableRows(rep, cols))
}

func writeCSVRows(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// jsonEntry is the machine-readable projection of one verdict.
type jsonEntry struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Licenses []string `json:"licenses"`
	Author   string   `json:"author,omitempty"`
	URL      string   `json:"url,omitempty"`
	Passed   bool     `json:"passed"`
	Reason   string   `json:"reason"`
}

func renderJSON(w io.Writer, rep *model.Report, cols Columns) error {
	entries := make([]jsonEntry, 0, len(rep.Verdicts))
	for _, v := range rep.Verdicts {
		entry := jsonEntry{
			Name:     v.Package.Name,
			Version:  v.Package.Version,
			Licenses: sortedDisplays(v.Package),
			Passed:   v.Passed,
			Reason:   string(v.Reason),
		}
		if cols.Authors {
			entry.Author = v.Package.Author
		}
		if cols.URLs {
			entry.URL = v.Package.HomePage
		}
		entries = append(entries, entry)
	}
	return writeJSONValue(w, entries)
}

// renderJSONLicenseFinder emits the LicenseFinder interchange shape:
// name, version, and a license name array per package.
func renderJSONLicenseFinder(w io.Writer, rep *model.Report) error {
	type entry struct {
		Name     string   `json:"name"`
		Version  string   `json:"version"`
		Licenses []string `json:"licenses"`
	}
	entries := make([]entry, 0, len(rep.Verdicts))
	for _, v := range rep.Verdicts {
		entries = append(entries, entry{
			Name:     v.Package.Name,
			Version:  v.Package.Version,
			Licenses: sortedDisplays(v.Package),
		})
	}
	return writeJSONValue(w, entries)
}

func writeJSONValue(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func sortedDisplays(p *model.ResolvedPackage) []string {
	displays := p.LicenseDisplays()
	sort.Strings(displays)
	return displays
}
