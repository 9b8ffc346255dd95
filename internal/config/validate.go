package config

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// configSchema constrains the effective configuration: geometry tunables
// must be positive, buffers non-negative, and the port a real TCP port.
const configSchema = `{
  "type": "object",
  "properties": {
    "server": {
      "type": "object",
      "properties": {
        "host": {"type": "string", "minLength": 1},
        "port": {"type": "integer", "minimum": 1, "maximum": 65535}
      },
      "required": ["host", "port"]
    },
    "reader": {
      "type": "object",
      "properties": {
        "estimated_page_height": {"type": "number", "exclusiveMinimum": 0},
        "page_margin": {"type": "number", "minimum": 0},
        "scroll_buffer": {"type": "integer", "minimum": 0},
        "navigation_buffer": {"type": "integer", "minimum": 0},
        "predictive_radius": {"type": "integer", "minimum": 0},
        "settle_delay_ms": {"type": "integer", "exclusiveMinimum": 0},
        "preload_batch_size": {"type": "integer", "exclusiveMinimum": 0},
        "preload_threshold": {"type": "integer", "minimum": 0},
        "chars_per_page": {"type": "integer", "exclusiveMinimum": 0},
        "words_per_page": {"type": "integer", "exclusiveMinimum": 0},
        "default_zoom": {"type": "number", "exclusiveMinimum": 0}
      },
      "required": [
        "estimated_page_height", "scroll_buffer", "navigation_buffer",
        "predictive_radius", "settle_delay_ms", "preload_batch_size",
        "chars_per_page", "words_per_page"
      ]
    },
    "session": {
      "type": "object",
      "properties": {
        "tick_interval_sec": {"type": "integer", "exclusiveMinimum": 0},
        "db_file": {"type": "string", "minLength": 1}
      },
      "required": ["tick_interval_sec", "db_file"]
    }
  },
  "required": ["server", "reader", "session"]
}`

var (
	compiledSchema     *jsonschema.Schema
	compileSchemaOnce  sync.Once
	compileSchemaError error
)

// Validate checks a config against the schema.
func Validate(cfg *Config) error {
	compileSchemaOnce.Do(func() {
		compiledSchema, compileSchemaError = jsonschema.CompileString("config.json", configSchema)
	})
	if compileSchemaError != nil {
		return fmt.Errorf("failed to compile config schema: %w", compileSchemaError)
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode config for validation: %w", err)
	}

	if err := compiledSchema.Validate(doc); err != nil {
		return fmt.Errorf("config does not match schema: %w", err)
	}
	return nil
}
