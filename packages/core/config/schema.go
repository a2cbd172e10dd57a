package config

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const optionsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "dromus configuration",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "showExceptions":      {"type": "boolean"},
    "showStackTraces":     {"type": "boolean"},
    "showFullStackTraces": {"type": "boolean"},
    "maxStackTraceDepth":  {"type": "integer"},
    "showTimings":         {"type": "boolean"},
    "useColors":           {"type": "boolean"},
    "passSymbol":          {"type": "string"},
    "failSymbol":          {"type": "string"},
    "skipSymbol":          {"type": "string"},
    "interruptedSymbol":   {"type": "string"},
    "showModuleNames":     {"type": "boolean"},
    "showMethodNames":     {"type": "boolean"},
    "terminalWidth":       {"type": "integer"}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(optionsSchema)

// validateDocument checks a decoded config file against the option schema
func validateDocument(doc map[string]any) error {
	if len(doc) == 0 {
		return nil
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
