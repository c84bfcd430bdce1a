package main

import (
	"context"
	"fmt"

	"github.com/licensegate/licensegate/pkg/model"
	"github.com/licensegate/licensegate/pkg/provider"
)

// loadRecords resolves the metadata source for a command. Exactly one
// of path or input may be set; either can be combined with snapshotDB
// to persist what was read, and snapshotDB alone re-reads the stored
// snapshot.
func loadRecords(ctx context.Context, path, input, snapshotDB string) ([]model.RawPackageRecord, error) {
	if path != "" && input != "" {
		return nil, fmt.Errorf("--path and --input are mutually exclusive")
	}

	var prov provider.Provider
	switch {
	case path != "":
		prov = &provider.DistInfo{Root: path}
	case input != "":
		prov = &provider.JSONFile{Path: input}
	case snapshotDB != "":
		store, err := provider.OpenSnapshotStore(snapshotDB)
		if err != nil {
			return nil, err
		}
		defer func() { _ = store.Close() }()
		return store.Load(ctx)
	default:
		return nil, fmt.Errorf("no metadata source: provide --path, --input, or --snapshot")
	}

	records, err := prov.Packages(ctx)
	if err != nil {
		return nil, err
	}

	if snapshotDB != "" {
		store, err := provider.OpenSnapshotStore(snapshotDB)
		if err != nil {
			return nil, err
		}
		defer func() { _ = store.Close() }()
		if err := store.Save(ctx, records); err != nil {
			return nil, fmt.Errorf("save snapshot: %w", err)
		}
	}
	return records, nil
}
