package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/licensegate/licensegate/pkg/policy"
)

// policySchema constrains the shape of a policy file. Structural
// mistakes (wrong types, unknown keys) are caught here with a precise
// message; semantic contradictions are caught by policy.Config.Validate.
const policySchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "deny":            {"type": "array", "items": {"type": "string", "minLength": 1}},
    "allow_only":      {"type": "array", "items": {"type": "string", "minLength": 1}},
    "fail_on_unknown": {"type": "boolean"},
    "ignore_packages": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "partial_match":   {"type": "boolean"},
    "rules":           {"type": "array", "items": {"type": "string", "minLength": 1}}
  }
}`

var compiledPolicySchema = mustCompileSchema(policySchema)

func mustCompileSchema(raw string) *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	const url = "https://licensegate.schemas.local/policy.schema.json"
	if err := c.AddResource(url, strings.NewReader(raw)); err != nil {
		panic(err)
	}
	return c.MustCompile(url)
}

// LoadPolicyFile reads and validates a YAML policy document.
func LoadPolicyFile(path string) (policy.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return policy.Config{}, fmt.Errorf("load policy %q: %w", path, err)
	}
	return ParsePolicy(data)
}

// ParsePolicy validates a YAML policy document against the schema and
// decodes it. Validation happens on the JSON view of the document so
// the schema semantics match exactly.
func ParsePolicy(data []byte) (policy.Config, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return policy.Config{}, fmt.Errorf("parse policy: %w", err)
	}
	if doc == nil {
		return policy.Config{}, nil
	}

	jsonView, err := json.Marshal(doc)
	if err != nil {
		return policy.Config{}, fmt.Errorf("policy document: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(jsonView, &decoded); err != nil {
		return policy.Config{}, fmt.Errorf("policy document: %w", err)
	}
	if err := compiledPolicySchema.Validate(decoded); err != nil {
		return policy.Config{}, fmt.Errorf("%w: %v", policy.ErrInvalidConfig, err)
	}

	var cfg policy.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return policy.Config{}, fmt.Errorf("parse policy: %w", err)
	}
	return cfg, cfg.Validate()
}
