// Package engine orchestrates one audit run: select records from the
// snapshot, resolve each to its canonical license set, evaluate policy,
// and aggregate the verdicts into a Report.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/licensegate/licensegate/pkg/audit"
	"github.com/licensegate/licensegate/pkg/classify"
	"github.com/licensegate/licensegate/pkg/model"
	"github.com/licensegate/licensegate/pkg/normalize"
	"github.com/licensegate/licensegate/pkg/policy"
	"github.com/licensegate/licensegate/pkg/provider"
	"github.com/licensegate/licensegate/pkg/report"
)

// Options configures one run.
type Options struct {
	// Source selects which metadata surfaces feed classification.
	Source normalize.Source
	// WithSystem includes packaging-tool packages in the audit.
	WithSystem bool
	// IncludePackages restricts the audit to the named packages
	// (normalized name match). Empty means all.
	IncludePackages []string
	// Workers bounds the parallel resolution fan-out. Zero or
	// negative means one worker per CPU.
	Workers int
	// Report configures filtering and ordering of the result.
	Report report.BuildOptions
}

// Engine runs audits. Safe for reuse across runs; each run takes its
// own policy and snapshot.
type Engine struct {
	log   *slog.Logger
	audit audit.Logger
}

// New creates an engine. Nil arguments fall back to the default slog
// logger and a no-op audit trail.
func New(log *slog.Logger, auditLog audit.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if auditLog == nil {
		auditLog = audit.Nop()
	}
	return &Engine{log: log, audit: auditLog}
}

// Run executes the pipeline over one snapshot. The policy is validated
// up front: a contradictory configuration aborts before any package is
// evaluated. Per-record problems never abort the run; they are
// collected into the report's error list.
func (e *Engine) Run(ctx context.Context, records []model.RawPackageRecord, pol policy.Config, opts Options) (*model.Report, error) {
	evaluator, err := policy.New(pol)
	if err != nil {
		return nil, err
	}

	selected, recordErrors := e.selectRecords(ctx, records, opts)

	verdicts := make([]model.PolicyVerdict, len(selected))
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Resolution and evaluation are pure and share no state, so the
	// fan-out is safe. Slot-indexed results keep execution order out
	// of the picture; the aggregator's sort is the only ordering
	// authority for the report.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rec := range selected {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			resolved := classify.Resolve(rec, opts.Source)
			verdicts[i] = evaluator.Evaluate(resolved)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := report.Build(verdicts, recordErrors, opts.Report)

	e.log.Info("audit complete",
		"packages", rep.Summary.Total,
		"failed", rep.Summary.Failed,
		"unknown", rep.Summary.Unknown,
		"rejected_records", len(rep.Errors),
	)
	_ = e.audit.Record(ctx, audit.EventPolicy, "audit.complete", "", map[string]any{
		"run_id":       rep.RunID,
		"total":        rep.Summary.Total,
		"failed":       rep.Summary.Failed,
		"unknown":      rep.Summary.Unknown,
		"content_hash": rep.ContentHash,
	})

	return rep, nil
}

// selectRecords applies record-level screening: malformed-name
// rejection, duplicate-name rejection, system-package exclusion, and
// the include filter.
func (e *Engine) selectRecords(ctx context.Context, records []model.RawPackageRecord, opts Options) ([]model.RawPackageRecord, []model.RecordError) {
	system := make(map[string]bool, len(provider.SystemPackages))
	if !opts.WithSystem {
		for _, name := range provider.SystemPackages {
			system[normalize.NormalizeName(name)] = true
		}
	}
	include := make(map[string]bool, len(opts.IncludePackages))
	for _, name := range opts.IncludePackages {
		include[normalize.NormalizeName(name)] = true
	}

	seen := make(map[string]bool, len(records))
	selected := make([]model.RawPackageRecord, 0, len(records))
	var recordErrors []model.RecordError

	for i, rec := range records {
		name := normalize.NormalizeName(rec.Name)
		switch {
		case rec.Name == "":
			recordErrors = append(recordErrors, model.RecordError{
				Index:  i,
				Reason: "missing package name",
			})
			e.recordRejected(ctx, i, rec, "missing package name")
			continue
		case seen[name]:
			recordErrors = append(recordErrors, model.RecordError{
				Index:  i,
				Name:   rec.Name,
				Reason: fmt.Sprintf("duplicate of package %q", name),
			})
			e.recordRejected(ctx, i, rec, "duplicate package name")
			continue
		case system[name]:
			continue
		case len(include) > 0 && !include[name]:
			continue
		}
		seen[name] = true
		selected = append(selected, rec)
	}
	return selected, recordErrors
}

func (e *Engine) recordRejected(ctx context.Context, index int, rec model.RawPackageRecord, reason string) {
	e.log.Warn("record rejected", "index", index, "name", rec.Name, "reason", reason)
	_ = e.audit.Record(ctx, audit.EventRecord, "record.rejected", rec.Name, map[string]any{
		"index":  index,
		"reason": reason,
	})
}
