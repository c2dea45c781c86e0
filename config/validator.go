package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Validate checks a loaded configuration against the embedded schema.
func Validate(cfg *Config) error {
	schemaLoader := gojsonschema.NewStringLoader(embeddedSchema)
	schema, err := gojsonschema.NewSchema(schemaLoader)
	if err != nil {
		return fmt.Errorf("failed to compile config schema: %w", err)
	}

	doc, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}

	if !result.Valid() {
		var errors []string
		for _, err := range result.Errors() {
			errors = append(errors, fmt.Sprintf("- %s", err))
		}
		return fmt.Errorf("config validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}

const embeddedSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Chat Router Configuration Schema",
  "type": "object",
  "required": ["server", "llm", "rag"],
  "properties": {
    "server": {
      "type": "object",
      "properties": {
        "port": {"type": "integer", "minimum": 1, "maximum": 65535},
        "ws_port": {"type": "integer", "minimum": 1, "maximum": 65535},
        "request_timeout_seconds": {"type": "integer", "minimum": 1}
      }
    },
    "llm": {
      "type": "object",
      "properties": {
        "ollama_url": {"type": "string", "minLength": 1},
        "default_model": {"type": "string", "enum": ["mistral", "gpt-oss"]},
        "guard_model": {"type": "string"},
        "num_ctx": {"type": "integer", "minimum": 256},
        "cache_capacity": {"type": "integer", "minimum": 1}
      }
    },
    "rag": {
      "type": "object",
      "properties": {
        "data_dir": {"type": "string"},
        "top_k": {"type": "integer", "minimum": 1}
      }
    }
  }
}`
