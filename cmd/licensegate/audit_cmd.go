package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/licensegate/licensegate/pkg/audit"
	"github.com/licensegate/licensegate/pkg/config"
	"github.com/licensegate/licensegate/pkg/engine"
	"github.com/licensegate/licensegate/pkg/model"
	"github.com/licensegate/licensegate/pkg/normalize"
	"github.com/licensegate/licensegate/pkg/policy"
	"github.com/licensegate/licensegate/pkg/render"
	"github.com/licensegate/licensegate/pkg/report"
)

// runAuditCmd implements `licensegate audit`.
func runAuditCmd(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()

	cmd := flag.NewFlagSet("audit", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		path       string
		input      string
		snapshotDB string
		from       string
		order      string
		format     string
		outputFile string

		withAuthors bool
		withURLs    bool
		noVersion   bool
		withVerdict bool

		withSystem bool
		packages   multiFlag
		ignore     multiFlag

		policyFile    string
		failOn        multiFlag
		allowOnly     multiFlag
		rules         multiFlag
		failOnUnknown bool
		partialMatch  bool

		filterName   string
		filterAuthor string
		failedOnly   bool

		auditTrail bool
		workers    int
	)

	cmd.StringVar(&path, "path", "", "Site-packages directory to scan for *.dist-info metadata")
	cmd.StringVar(&input, "input", "", "JSON file holding a package record array")
	cmd.StringVar(&snapshotDB, "snapshot", cfg.SnapshotDB, "SQLite snapshot database (saved when scanning, read when sole source)")
	cmd.StringVar(&from, "from", "mixed", "License metadata source: meta, classifier, mixed, all")
	cmd.StringVar(&order, "order", "name", "Sort column: name, license, author, url, version")
	cmd.StringVar(&format, "format", cfg.Format, "Output format: plain, plain-vertical, markdown, rst, csv, json, json-license-finder")
	cmd.StringVar(&outputFile, "output-file", "", "Write the report to a file instead of stdout")

	cmd.BoolVar(&withAuthors, "with-authors", false, "Include the author column")
	cmd.BoolVar(&withURLs, "with-urls", false, "Include the project URL column")
	cmd.BoolVar(&noVersion, "no-version", false, "Omit the version column")
	cmd.BoolVar(&withVerdict, "with-verdict", false, "Include the verdict column even without policy flags")

	cmd.BoolVar(&withSystem, "with-system", false, "Include packaging-tool packages (pip, setuptools, ...)")
	cmd.Var(&packages, "packages", "Audit only the named package (repeatable)")
	cmd.Var(&ignore, "ignore", "Ignore a package, by name or name:version (repeatable)")

	cmd.StringVar(&policyFile, "policy", "", "YAML policy file")
	cmd.Var(&failOn, "fail-on", "Deny a license (repeatable)")
	cmd.Var(&allowOnly, "allow-only", "Allow only this license (repeatable)")
	cmd.Var(&rules, "rule", "CEL policy rule over {name, version, author, licenses} (repeatable)")
	cmd.BoolVar(&failOnUnknown, "fail-on-unknown", false, "Fail packages whose license cannot be resolved")
	cmd.BoolVar(&partialMatch, "partial-match", false, "Match deny/allow-only entries by substring")

	cmd.StringVar(&filterName, "filter-name", "", "Keep only packages whose name contains this value")
	cmd.StringVar(&filterAuthor, "filter-author", "", "Keep only packages whose author contains this value")
	cmd.BoolVar(&failedOnly, "failed-only", false, "Report only failing packages")

	cmd.BoolVar(&auditTrail, "audit-trail", false, "Emit structured audit events to stderr")
	cmd.IntVar(&workers, "workers", cfg.Workers, "Parallel resolution workers (0 = one per CPU)")

	if err := cmd.Parse(args); err != nil {
		return 2
	}

	source, ok := normalize.ParseSource(from)
	if !ok {
		_, _ = fmt.Fprintf(stderr, "Error: unknown source %q (valid: meta, classifier, mixed, all)\n", from)
		return 2
	}
	sortKey, ok := report.ParseSortKey(order)
	if !ok {
		_, _ = fmt.Fprintf(stderr, "Error: unknown sort column %q\n", order)
		return 2
	}
	outFormat, ok := render.ParseFormat(format)
	if !ok {
		_, _ = fmt.Fprintf(stderr, "Error: unknown format %q\n", format)
		return 2
	}

	pol, err := buildPolicy(policyFile, failOn, allowOnly, rules, ignore, failOnUnknown, partialMatch)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	ctx := context.Background()
	records, err := loadRecords(ctx, path, input, snapshotDB)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	trail := audit.Nop()
	if auditTrail {
		trail = audit.NewLoggerWithWriter(stderr, "")
	}
	eng := engine.New(newLogger(cfg.LogLevel, stderr), trail)

	rep, err := eng.Run(ctx, records, pol, engine.Options{
		Source:          source,
		WithSystem:      withSystem,
		IncludePackages: packages,
		Workers:         workers,
		Report: report.BuildOptions{
			SortKey: sortKey,
			Filter: report.Filter{
				NameContains: filterName,
				Author:       filterAuthor,
				FailedOnly:   failedOnly,
			},
		},
	})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	cols := render.Columns{
		Version: !noVersion,
		Authors: withAuthors,
		URLs:    withURLs,
		Verdict: withVerdict || policyActive(pol),
	}

	out := stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	if err := render.Render(out, rep, outFormat, cols); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: render: %v\n", err)
		return 2
	}

	for _, recErr := range rep.Errors {
		_, _ = fmt.Fprintf(stderr, "warning: record %d (%s): %s\n", recErr.Index, recErr.Name, recErr.Reason)
	}
	if rep.AnyFailures() {
		return 1
	}
	return 0
}

// buildPolicy merges the YAML policy file with the flag overrides.
// Flag values append to the file's lists; booleans are OR'd.
func buildPolicy(policyFile string, failOn, allowOnly, rules, ignore []string, failOnUnknown, partialMatch bool) (policy.Config, error) {
	var pol policy.Config
	if policyFile != "" {
		loaded, err := config.LoadPolicyFile(policyFile)
		if err != nil {
			return policy.Config{}, err
		}
		pol = loaded
	}
	for _, lic := range failOn {
		pol.Deny = append(pol.Deny, model.LicenseID(lic))
	}
	if len(allowOnly) > 0 && pol.AllowOnly == nil {
		pol.AllowOnly = []model.LicenseID{}
	}
	for _, lic := range allowOnly {
		pol.AllowOnly = append(pol.AllowOnly, model.LicenseID(lic))
	}
	pol.Rules = append(pol.Rules, rules...)
	pol.IgnorePackages = append(pol.IgnorePackages, ignore...)
	pol.FailOnUnknown = pol.FailOnUnknown || failOnUnknown
	pol.PartialMatch = pol.PartialMatch || partialMatch
	if err := pol.Validate(); err != nil {
		return policy.Config{}, err
	}
	return pol, nil
}

// policyActive reports whether any constraint can fail a package, which
// decides whether the verdict column appears by default.
func policyActive(pol policy.Config) bool {
	return len(pol.Deny) > 0 || pol.AllowOnly != nil || pol.FailOnUnknown || len(pol.Rules) > 0
}

// multiFlag allows repeatable flag values (e.g. --ignore a --ignore b).
type multiFlag []string

func (f *multiFlag) String() string { return fmt.Sprintf("%v", *f) }
func (f *multiFlag) Set(value string) error {
	*f = append(*f, value)
	return nil
}
