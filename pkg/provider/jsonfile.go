package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/licensegate/licensegate/pkg/model"
)

// JSONFile reads a pre-exported snapshot: a JSON array of raw package
// records. CI pipelines use this to feed metadata collected elsewhere
// without giving the auditor access to the environment itself.
type JSONFile struct {
	Path string
}

func (j *JSONFile) Packages(ctx context.Context) ([]model.RawPackageRecord, error) {
	data, err := os.ReadFile(j.Path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", j.Path, err)
	}
	var records []model.RawPackageRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", j.Path, err)
	}
	return records, nil
}
