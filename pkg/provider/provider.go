// Package provider supplies the raw package metadata the engine
// consumes. Providers hand over one immutable snapshot per run; the
// engine never re-queries mid-evaluation.
package provider

import (
	"context"

	"github.com/licensegate/licensegate/pkg/model"
)

// Provider is the metadata boundary: one call, one snapshot.
type Provider interface {
	Packages(ctx context.Context) ([]model.RawPackageRecord, error)
}

// SystemPackages are the packaging-tool packages excluded from audits
// unless explicitly requested: they ship with every environment and
// only add noise to compliance reports.
var SystemPackages = []string{
	"pip",
	"setuptools",
	"wheel",
	"distribute",
	"licensegate",
}
