package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/licensegate/licensegate/pkg/provider"
)

// runSnapshotCmd implements `licensegate snapshot`: read an environment
// once and persist the records, so later audits replay the exact bytes
// this scan saw.
func runSnapshotCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		path  string
		input string
		db    string
	)

	cmd.StringVar(&path, "path", "", "Site-packages directory to scan for *.dist-info metadata")
	cmd.StringVar(&input, "input", "", "JSON file holding a package record array")
	cmd.StringVar(&db, "db", "", "SQLite snapshot database to write (REQUIRED)")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if db == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --db is required")
		cmd.Usage()
		return 2
	}
	if path == "" && input == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --path or --input is required")
		cmd.Usage()
		return 2
	}

	ctx := context.Background()
	records, err := loadRecords(ctx, path, input, "")
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	store, err := provider.OpenSnapshotStore(db)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer func() { _ = store.Close() }()

	if err := store.Save(ctx, records); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: save snapshot: %v\n", err)
		return 2
	}
	takenAt, err := store.TakenAt(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	_, _ = fmt.Fprintf(stdout, "Snapshot saved: %s (%d packages, %s)\n",
		db, len(records), takenAt.Format("2006-01-02T15:04:05Z"))
	return 0
}
