// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config loads the clause-definition configuration. The table is
// loaded once at process start and is read-only afterward; reloading
// requires a restart.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Default scoring parameters applied when the configuration leaves them
// unset.
const (
	DefaultConfidenceThreshold = 0.5
	DefaultPrimaryWeight       = 0.4
	DefaultSecondaryWeight     = 0.2
	DefaultPatternWeight       = 0.2
	DefaultContextWeight       = 0.1
)

// GlobalConfig holds process-wide scoring defaults.
type GlobalConfig struct {
	DefaultConfidenceThreshold float64 `yaml:"default_confidence_threshold" json:"default_confidence_threshold"`
	DefaultCaseSensitive       bool    `yaml:"default_case_sensitive" json:"default_case_sensitive"`
}

// Weights holds the per-evidence-kind scoring weights for one clause
// type.
type Weights struct {
	Primary   float64 `yaml:"primary_keyword_match" json:"primary_keyword_match"`
	Secondary float64 `yaml:"secondary_keyword_match" json:"secondary_keyword_match"`
	Pattern   float64 `yaml:"pattern_match" json:"pattern_match"`
	Context   float64 `yaml:"context_clue_match" json:"context_clue_match"`
}

// Pattern is one configured clause pattern: either a literal phrase
// (matched whitespace-flexibly with word bounds) or an explicit regex.
// In configuration a pattern is written as a plain string or as a
// {"regex": "..."} mapping.
type Pattern struct {
	Literal string
	Regex   string
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (p *Pattern) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		p.Literal = value.Value
		return nil
	case yaml.MappingNode:
		var m struct {
			Regex string `yaml:"regex"`
		}
		if err := value.Decode(&m); err != nil {
			return err
		}
		if m.Regex == "" {
			return fmt.Errorf("pattern object must carry a regex key")
		}
		p.Regex = m.Regex
		return nil
	}
	return fmt.Errorf("pattern must be a string or a regex object")
}

// UnmarshalJSON accepts both the scalar and the object form.
func (p *Pattern) UnmarshalJSON(data []byte) error {
	var literal string
	if err := json.Unmarshal(data, &literal); err == nil {
		p.Literal = literal
		return nil
	}
	var m struct {
		Regex string `json:"regex"`
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("pattern must be a string or a regex object")
	}
	if m.Regex == "" {
		return fmt.Errorf("pattern object must carry a regex key")
	}
	p.Regex = m.Regex
	return nil
}

// Definition is the resolved rule set for one clause type. Optional
// fields absent from the file are filled from the global defaults, so a
// loaded Definition always carries concrete values.
type Definition struct {
	PrimaryKeywords   []string
	SecondaryKeywords []string
	NegativeKeywords  []string
	Patterns          []Pattern
	ContextClues      []string
	Weights           Weights
	MinimumConfidence float64
	CaseSensitive     bool
}

// Config is the full clause-definition table.
type Config struct {
	Global      GlobalConfig
	Definitions map[string]Definition
}

// fileDefinition is the on-disk shape of a Definition; optional scoring
// fields are pointers so absence is distinguishable from zero.
type fileDefinition struct {
	PrimaryKeywords   []string     `yaml:"primary_keywords" json:"primary_keywords"`
	SecondaryKeywords []string     `yaml:"secondary_keywords" json:"secondary_keywords"`
	NegativeKeywords  []string     `yaml:"negative_keywords" json:"negative_keywords"`
	Patterns          []Pattern    `yaml:"patterns" json:"patterns"`
	ContextClues      []string     `yaml:"context_clues" json:"context_clues"`
	Weights           *fileWeights `yaml:"confidence_weights" json:"confidence_weights"`
	MinimumConfidence *float64     `yaml:"minimum_confidence_threshold" json:"minimum_confidence_threshold"`
	CaseSensitive     *bool        `yaml:"case_sensitive" json:"case_sensitive"`
}

// fileWeights is the on-disk shape of Weights. Every key is independently
// optional; a key left out keeps its default.
type fileWeights struct {
	Primary   *float64 `yaml:"primary_keyword_match" json:"primary_keyword_match"`
	Secondary *float64 `yaml:"secondary_keyword_match" json:"secondary_keyword_match"`
	Pattern   *float64 `yaml:"pattern_match" json:"pattern_match"`
	Context   *float64 `yaml:"context_clue_match" json:"context_clue_match"`
}

// fileGlobalConfig is the on-disk shape of GlobalConfig; the threshold is
// a pointer so an explicit zero survives resolution.
type fileGlobalConfig struct {
	DefaultConfidenceThreshold *float64 `yaml:"default_confidence_threshold" json:"default_confidence_threshold"`
	DefaultCaseSensitive       bool     `yaml:"default_case_sensitive" json:"default_case_sensitive"`
}

type fileConfig struct {
	Global      *fileGlobalConfig         `yaml:"global_config" json:"global_config"`
	Definitions map[string]fileDefinition `yaml:"clause_definitions" json:"clause_definitions"`
}

// Load reads and validates the clause-definition file at path. YAML and
// JSON are both accepted, selected by file extension. A missing or
// unparsable file is an error; the process should treat it as fatal.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	isJSON := strings.EqualFold(filepath.Ext(cleanPath), ".json")

	if err := validateSchema(data, isJSON); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	var fc fileConfig
	if isJSON {
		err = json.Unmarshal(data, &fc)
	} else {
		err = yaml.Unmarshal(data, &fc)
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return resolve(&fc), nil
}

// resolve fills defaults into every definition so downstream code never
// needs the file-level optionality.
func resolve(fc *fileConfig) *Config {
	global := GlobalConfig{DefaultConfidenceThreshold: DefaultConfidenceThreshold}
	if fc.Global != nil {
		global.DefaultCaseSensitive = fc.Global.DefaultCaseSensitive
		if fc.Global.DefaultConfidenceThreshold != nil {
			global.DefaultConfidenceThreshold = *fc.Global.DefaultConfidenceThreshold
		}
	}

	cfg := &Config{
		Global:      global,
		Definitions: make(map[string]Definition, len(fc.Definitions)),
	}

	for name, fd := range fc.Definitions {
		def := Definition{
			PrimaryKeywords:   fd.PrimaryKeywords,
			SecondaryKeywords: fd.SecondaryKeywords,
			NegativeKeywords:  fd.NegativeKeywords,
			Patterns:          fd.Patterns,
			ContextClues:      fd.ContextClues,
			Weights: Weights{
				Primary:   DefaultPrimaryWeight,
				Secondary: DefaultSecondaryWeight,
				Pattern:   DefaultPatternWeight,
				Context:   DefaultContextWeight,
			},
			MinimumConfidence: global.DefaultConfidenceThreshold,
			CaseSensitive:     global.DefaultCaseSensitive,
		}
		if fd.Weights != nil {
			if fd.Weights.Primary != nil {
				def.Weights.Primary = *fd.Weights.Primary
			}
			if fd.Weights.Secondary != nil {
				def.Weights.Secondary = *fd.Weights.Secondary
			}
			if fd.Weights.Pattern != nil {
				def.Weights.Pattern = *fd.Weights.Pattern
			}
			if fd.Weights.Context != nil {
				def.Weights.Context = *fd.Weights.Context
			}
		}
		if fd.MinimumConfidence != nil {
			def.MinimumConfidence = *fd.MinimumConfidence
		}
		if fd.CaseSensitive != nil {
			def.CaseSensitive = *fd.CaseSensitive
		}
		cfg.Definitions[name] = def
	}

	return cfg
}

// configSchema constrains the structural shape of the file. Individual
// pattern validity is deliberately not checked here: a malformed regex
// is skipped at compile time instead of aborting the whole load.
const configSchema = `{
  "type": "object",
  "properties": {
    "global_config": {
      "type": "object",
      "properties": {
        "default_confidence_threshold": {"type": "number", "minimum": 0, "maximum": 1},
        "default_case_sensitive": {"type": "boolean"}
      }
    },
    "clause_definitions": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "primary_keywords": {"type": "array", "items": {"type": "string"}},
          "secondary_keywords": {"type": "array", "items": {"type": "string"}},
          "negative_keywords": {"type": "array", "items": {"type": "string"}},
          "patterns": {
            "type": "array",
            "items": {
              "anyOf": [
                {"type": "string"},
                {"type": "object", "properties": {"regex": {"type": "string"}}, "required": ["regex"]}
              ]
            }
          },
          "context_clues": {"type": "array", "items": {"type": "string"}},
          "confidence_weights": {
            "type": "object",
            "additionalProperties": {"type": "number"}
          },
          "minimum_confidence_threshold": {"type": "number", "minimum": 0, "maximum": 1},
          "case_sensitive": {"type": "boolean"}
        }
      }
    }
  },
  "required": ["clause_definitions"]
}`

// validateSchema checks the raw document against the embedded schema
// before typed unmarshaling, so shape errors carry a precise location.
func validateSchema(data []byte, isJSON bool) error {
	var doc any
	var err error
	if isJSON {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return err
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("clause-definitions.schema.json", strings.NewReader(configSchema)); err != nil {
		return err
	}
	schema, err := compiler.Compile("clause-definitions.schema.json")
	if err != nil {
		return err
	}

	return schema.Validate(doc)
}

// FindConfigFile looks for a clause-definition file in standard
// locations. Returns "" when none is found.
func FindConfigFile() string {
	candidates := []string{
		"clause-definitions.yaml",
		"clause-definitions.yml",
		"clause-definitions.json",
		".clause-scan.yaml",
		".clause-scan.yml",
	}
	for _, candidate := range candidates {
		if fileExists(candidate) {
			return candidate
		}
	}

	if dir := userConfigDir(); dir != "" {
		for _, candidate := range candidates[:3] {
			path := filepath.Join(dir, "clause-scan", candidate)
			if fileExists(path) {
				return path
			}
		}
	}
	return ""
}

// userConfigDir resolves the platform configuration directory.
func userConfigDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
