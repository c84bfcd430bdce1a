package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licensegate/licensegate/pkg/config"
	"github.com/licensegate/licensegate/pkg/model"
	"github.com/licensegate/licensegate/pkg/policy"
)

// TestLoad_Defaults verifies the environment defaults with nothing set.
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LICENSEGATE_LOG_LEVEL", "")
	t.Setenv("LICENSEGATE_FORMAT", "")
	t.Setenv("LICENSEGATE_WORKERS", "")

	cfg := config.Load()
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "plain", cfg.Format)
	assert.Equal(t, 0, cfg.Workers)
}

// TestLoad_Env verifies the environment overrides.
func TestLoad_Env(t *testing.T) {
	t.Setenv("LICENSEGATE_LOG_LEVEL", "DEBUG")
	t.Setenv("LICENSEGATE_FORMAT", "json")
	t.Setenv("LICENSEGATE_SNAPSHOT_DB", "/tmp/snap.db")
	t.Setenv("LICENSEGATE_WORKERS", "4")

	cfg := config.Load()
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "/tmp/snap.db", cfg.SnapshotDB)
	assert.Equal(t, 4, cfg.Workers)
}

// TestLoad_BadWorkers verifies an unparsable worker count falls back
// to the default instead of failing startup.
func TestLoad_BadWorkers(t *testing.T) {
	t.Setenv("LICENSEGATE_WORKERS", "many")
	assert.Equal(t, 0, config.Load().Workers)
}

// TestParsePolicy verifies schema-validated YAML decoding end to end.
func TestParsePolicy(t *testing.T) {
	doc := []byte(`
deny:
  - GPL-3.0
  - AGPL-3.0
allow_only:
  - MIT
  - Apache-2.0
fail_on_unknown: true
ignore_packages:
  - legacy-tool
  - pinned:2.0.0
partial_match: true
rules:
  - 'name != "forbidden"'
`)
	cfg, err := config.ParsePolicy(doc)
	require.NoError(t, err)

	assert.Equal(t, []model.LicenseID{"GPL-3.0", "AGPL-3.0"}, cfg.Deny)
	assert.Equal(t, []model.LicenseID{"MIT", "Apache-2.0"}, cfg.AllowOnly)
	assert.True(t, cfg.FailOnUnknown)
	assert.True(t, cfg.PartialMatch)
	assert.Equal(t, []string{"legacy-tool", "pinned:2.0.0"}, cfg.IgnorePackages)
	assert.Equal(t, []string{`name != "forbidden"`}, cfg.Rules)
}

// TestParsePolicy_Empty verifies an empty document is a valid,
// unrestricted policy.
func TestParsePolicy_Empty(t *testing.T) {
	cfg, err := config.ParsePolicy(nil)
	require.NoError(t, err)
	assert.Nil(t, cfg.AllowOnly)
	assert.NoError(t, cfg.Validate())
}

// TestParsePolicy_SchemaViolations verifies structural mistakes are
// caught by the schema with the configuration sentinel.
func TestParsePolicy_SchemaViolations(t *testing.T) {
	cases := map[string]string{
		"unknown key": "denyy:\n  - MIT\n",
		"wrong type":  "deny: GPL-3.0\n",
		"empty entry": "deny:\n  - \"\"\n",
	}
	for name, doc := range cases {
		_, err := config.ParsePolicy([]byte(doc))
		require.Error(t, err, name)
		assert.ErrorIs(t, err, policy.ErrInvalidConfig, name)
	}
}

// TestParsePolicy_SemanticContradiction verifies the semantic check
// still runs after schema validation passes.
func TestParsePolicy_SemanticContradiction(t *testing.T) {
	doc := []byte("deny:\n  - MIT\nallow_only:\n  - MIT\n")
	_, err := config.ParsePolicy(doc)
	assert.ErrorIs(t, err, policy.ErrInvalidConfig)
}

// TestLoadPolicyFile_Missing verifies a useful error for a bad path.
func TestLoadPolicyFile_Missing(t *testing.T) {
	_, err := config.LoadPolicyFile("/nonexistent/policy.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load policy")
}
