package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const version = "v0.1.0"

// Dispatcher
func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the entrypoint for testing.
//
// Exit codes:
//
//	0 = no policy failures
//	1 = at least one failing verdict
//	2 = runtime or configuration error
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		// Default to audit
		return runAuditCmd(nil, stdout, stderr)
	}

	switch args[1] {
	case "audit":
		return runAuditCmd(args[2:], stdout, stderr)
	case "summary":
		return runSummaryCmd(args[2:], stdout, stderr)
	case "snapshot":
		return runSnapshotCmd(args[2:], stdout, stderr)
	case "version", "--version", "-v":
		_, _ = fmt.Fprintf(stdout, "licensegate %s\n", version)
		return 0
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		if args[1][0] == '-' {
			// Bare flags mean audit
			return runAuditCmd(args[1:], stdout, stderr)
		}
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", args[1])
		printUsage(stderr)
		return 2
	}
}

// ANSI Colors
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorGreen = "\033[32m"
	ColorBlue  = "\033[34m"
	ColorCyan  = "\033[36m"
	ColorGray  = "\033[37m"
)

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "%slicensegate %s%s\n", ColorBold+ColorBlue, version, ColorReset)
	fmt.Fprintf(w, "%sResolve package licenses. Gate the build.%s\n", ColorGray, ColorReset)
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "%sUSAGE:%s\n", ColorBold, ColorReset)
	fmt.Fprintln(w, "  licensegate <command> [flags]")
	fmt.Fprintln(w, "")

	printSection(w, "AUDIT")
	printCommand(w, "audit", "Resolve licenses and evaluate policy (default)")
	printCommand(w, "summary", "Count packages per resolved license set")

	printSection(w, "SNAPSHOTS")
	printCommand(w, "snapshot", "Save an environment snapshot for later audits")

	printSection(w, "UTILITIES")
	printCommand(w, "version", "Show version information")
	printCommand(w, "help", "Show this help")
	fmt.Fprintln(w, "")
}

func printSection(w io.Writer, title string) {
	fmt.Fprintf(w, "%s%s:%s\n", ColorBold+ColorCyan, title, ColorReset)
}

func printCommand(w io.Writer, name, desc string) {
	fmt.Fprintf(w, "  %s%-12s%s %s\n", ColorGreen, name, ColorReset, desc)
}

// newLogger builds the operational logger for one command invocation.
// Audit-trail events go through pkg/audit instead.
func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
