// Package config loads the project configuration file (sable.json). The
// file is validated against an embedded JSON Schema before decoding, so a
// typo'd key or a wrong type fails with a schema path instead of silently
// producing a zero value.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/sable-lang/sable/pkgs/generator"
	"github.com/sable-lang/sable/pkgs/parser"
)

// DefaultFileName is the configuration file sablec looks for.
const DefaultFileName = "sable.json"

// Config holds project-level compiler settings.
type Config struct {
	// DataName is the emitted parameter holding template data.
	DataName string `json:"dataName,omitempty"`
	// InjectedName is the emitted parameter holding injected data.
	InjectedName string `json:"injectedName,omitempty"`
	// RuntimeName is the runtime support namespace helper calls dispatch
	// through.
	RuntimeName string `json:"runtimeName,omitempty"`
	// OutDir is where compiled artifacts are written.
	OutDir string `json:"outDir,omitempty"`
	// Globals lists the dotted global names expressions may reference.
	Globals []string `json:"globals,omitempty"`
	// Functions maps callable function names to their accepted argument
	// counts.
	Functions map[string][]int `json:"functions,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		DataName:     "opt_data",
		InjectedName: "opt_ijData",
		RuntimeName:  "sable",
		OutDir:       "out",
	}
}

const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "sable.json",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "dataName": {"type": "string", "minLength": 1},
    "injectedName": {"type": "string", "minLength": 1},
    "runtimeName": {"type": "string", "minLength": 1},
    "outDir": {"type": "string", "minLength": 1},
    "globals": {
      "type": "array",
      "items": {"type": "string", "minLength": 1}
    },
    "functions": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("sable.schema.json", schemaJSON)
	})
	return schema, schemaErr
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates raw JSON against the schema and decodes it, filling
// unset fields from Default.
func Parse(data []byte) (*Config, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	s, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.DataName == "" {
		cfg.DataName = Default().DataName
	}
	if cfg.InjectedName == "" {
		cfg.InjectedName = Default().InjectedName
	}
	if cfg.RuntimeName == "" {
		cfg.RuntimeName = Default().RuntimeName
	}
	if cfg.OutDir == "" {
		cfg.OutDir = Default().OutDir
	}
	return cfg, nil
}

// Resolver returns the symbol resolver backing parse-time validation, or
// nil when the config declares no symbols, which accepts everything.
func (c *Config) Resolver() *parser.TableResolver {
	if len(c.Globals) == 0 && len(c.Functions) == 0 {
		return nil
	}
	globals := make(map[string]bool, len(c.Globals))
	for _, g := range c.Globals {
		globals[g] = true
	}
	return &parser.TableResolver{Globals: globals, Functions: c.Functions}
}

// GeneratorOptions returns the lowering options this config selects.
func (c *Config) GeneratorOptions() generator.Options {
	return generator.Options{
		DataName:     c.DataName,
		InjectedName: c.InjectedName,
		RuntimeName:  c.RuntimeName,
	}
}
