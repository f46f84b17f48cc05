// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const yamlConfig = `
global_config:
  default_confidence_threshold: 0.6
  default_case_sensitive: false

clause_definitions:
  termination:
    primary_keywords: [termination, terminate]
    secondary_keywords: [expiration]
    negative_keywords: ["terminal illness"]
    patterns:
      - "right to terminate"
      - regex: "terminat\\w+"
    context_clues: [notice, breach]
    minimum_confidence_threshold: 0.4
  confidentiality:
    primary_keywords: [confidential]
`

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "defs.yaml", yamlConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.6, cfg.Global.DefaultConfidenceThreshold)
	require.Len(t, cfg.Definitions, 2)

	term := cfg.Definitions["termination"]
	assert.Equal(t, []string{"termination", "terminate"}, term.PrimaryKeywords)
	assert.Equal(t, 0.4, term.MinimumConfidence)
	require.Len(t, term.Patterns, 2)
	assert.Equal(t, "right to terminate", term.Patterns[0].Literal)
	assert.Equal(t, `terminat\w+`, term.Patterns[1].Regex)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeFile(t, "defs.yaml", yamlConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	// confidentiality sets nothing optional, so it inherits the global
	// threshold and the stock weights
	conf := cfg.Definitions["confidentiality"]
	assert.Equal(t, 0.6, conf.MinimumConfidence)
	assert.Equal(t, DefaultPrimaryWeight, conf.Weights.Primary)
	assert.Equal(t, DefaultSecondaryWeight, conf.Weights.Secondary)
	assert.Equal(t, DefaultPatternWeight, conf.Weights.Pattern)
	assert.Equal(t, DefaultContextWeight, conf.Weights.Context)
	assert.False(t, conf.CaseSensitive)
}

func TestLoadPartialWeightsKeepDefaults(t *testing.T) {
	path := writeFile(t, "weights.yaml", `
clause_definitions:
  termination:
    primary_keywords: [termination]
    confidence_weights:
      pattern_match: 0.3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	// only pattern_match is overridden; the other three weights must
	// keep their stock values
	w := cfg.Definitions["termination"].Weights
	assert.Equal(t, 0.3, w.Pattern)
	assert.Equal(t, DefaultPrimaryWeight, w.Primary)
	assert.Equal(t, DefaultSecondaryWeight, w.Secondary)
	assert.Equal(t, DefaultContextWeight, w.Context)
}

func TestLoadExplicitZeroThreshold(t *testing.T) {
	path := writeFile(t, "zero.yaml", `
global_config:
  default_confidence_threshold: 0
clause_definitions:
  termination:
    primary_keywords: [termination]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.0, cfg.Global.DefaultConfidenceThreshold)
	assert.Equal(t, 0.0, cfg.Definitions["termination"].MinimumConfidence)
}

func TestLoadJSONEquivalent(t *testing.T) {
	jsonConfig := `{
  "global_config": {"default_confidence_threshold": 0.6},
  "clause_definitions": {
    "termination": {
      "primary_keywords": ["termination", "terminate"],
      "patterns": ["right to terminate", {"regex": "terminat\\w+"}],
      "minimum_confidence_threshold": 0.4
    }
  }
}`
	path := writeFile(t, "defs.json", jsonConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	term := cfg.Definitions["termination"]
	assert.Equal(t, []string{"termination", "terminate"}, term.PrimaryKeywords)
	assert.Equal(t, 0.4, term.MinimumConfidence)
	require.Len(t, term.Patterns, 2)
	assert.Equal(t, "right to terminate", term.Patterns[0].Literal)
	assert.Equal(t, `terminat\w+`, term.Patterns[1].Regex)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/clause-definitions.yaml")
	require.Error(t, err)
}

func TestLoadRejectsWrongShape(t *testing.T) {
	path := writeFile(t, "bad.yaml", `
clause_definitions:
  termination:
    primary_keywords: "not a list"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestLoadRequiresDefinitions(t *testing.T) {
	path := writeFile(t, "empty.yaml", `global_config: {default_confidence_threshold: 0.5}`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadThresholdOutOfRange(t *testing.T) {
	path := writeFile(t, "range.yaml", `
clause_definitions:
  termination:
    minimum_confidence_threshold: 1.5
`)

	_, err := Load(path)
	require.Error(t, err)
}
