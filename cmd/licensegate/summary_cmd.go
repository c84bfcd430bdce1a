package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/licensegate/licensegate/pkg/audit"
	"github.com/licensegate/licensegate/pkg/config"
	"github.com/licensegate/licensegate/pkg/engine"
	"github.com/licensegate/licensegate/pkg/normalize"
	"github.com/licensegate/licensegate/pkg/policy"
	"github.com/licensegate/licensegate/pkg/render"
	"github.com/licensegate/licensegate/pkg/report"
)

// runSummaryCmd implements `licensegate summary`: per-license-set
// package counts instead of the per-package table.
func runSummaryCmd(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()

	cmd := flag.NewFlagSet("summary", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		path       string
		input      string
		snapshotDB string
		from       string
		order      string
		format     string
		withSystem bool
		packages   multiFlag
	)

	cmd.StringVar(&path, "path", "", "Site-packages directory to scan for *.dist-info metadata")
	cmd.StringVar(&input, "input", "", "JSON file holding a package record array")
	cmd.StringVar(&snapshotDB, "snapshot", cfg.SnapshotDB, "SQLite snapshot database")
	cmd.StringVar(&from, "from", "mixed", "License metadata source: meta, classifier, mixed, all")
	cmd.StringVar(&order, "order", "count", "Summary ordering: count, license")
	cmd.StringVar(&format, "format", cfg.Format, "Output format: plain, markdown, rst, csv, json")
	cmd.BoolVar(&withSystem, "with-system", false, "Include packaging-tool packages")
	cmd.Var(&packages, "packages", "Summarize only the named package (repeatable)")

	if err := cmd.Parse(args); err != nil {
		return 2
	}

	source, ok := normalize.ParseSource(from)
	if !ok {
		_, _ = fmt.Fprintf(stderr, "Error: unknown source %q (valid: meta, classifier, mixed, all)\n", from)
		return 2
	}
	var groupOrder report.GroupOrder
	switch order {
	case "count", "":
		groupOrder = report.GroupByCount
	case "license":
		groupOrder = report.GroupByLicense
	default:
		_, _ = fmt.Fprintf(stderr, "Error: unknown summary order %q (valid: count, license)\n", order)
		return 2
	}
	outFormat, ok := render.ParseFormat(format)
	if !ok {
		_, _ = fmt.Fprintf(stderr, "Error: unknown format %q\n", format)
		return 2
	}

	ctx := context.Background()
	records, err := loadRecords(ctx, path, input, snapshotDB)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	eng := engine.New(newLogger(cfg.LogLevel, stderr), audit.Nop())
	rep, err := eng.Run(ctx, records, policy.Config{}, engine.Options{
		Source:          source,
		WithSystem:      withSystem,
		IncludePackages: packages,
	})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	groups := report.GroupByLicenseSet(rep, groupOrder)
	if err := render.RenderSummary(stdout, groups, outFormat); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: render: %v\n", err)
		return 2
	}
	return 0
}
