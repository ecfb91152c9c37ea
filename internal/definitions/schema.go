package definitions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const definitionSchemaURL = "oneconfig://definitions.schema.json"

const definitionSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["commands"],
  "additionalProperties": false,
  "properties": {
    "requires": {"type": "string", "minLength": 1},
    "commands": {"type": "array", "items": {"$ref": "#/$defs/command"}}
  },
  "$defs": {
    "command": {
      "type": "object",
      "required": ["name"],
      "additionalProperties": false,
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "aliases": {"type": "array", "items": {"type": "string", "minLength": 1}},
        "description": {"type": "string"},
        "executables": {"type": "array", "items": {"$ref": "#/$defs/executable"}},
        "subcommands": {"type": "array", "items": {"$ref": "#/$defs/command"}}
      }
    },
    "executable": {
      "type": "object",
      "required": ["action"],
      "additionalProperties": false,
      "properties": {
        "aliases": {"type": "array", "items": {"type": "string", "minLength": 1}},
        "description": {"type": "string"},
        "greedy": {"type": "boolean"},
        "action": {"enum": ["echo", "template"]},
        "template": {"type": "string"},
        "params": {"type": "array", "items": {"$ref": "#/$defs/param"}}
      },
      "if": {"properties": {"action": {"const": "template"}}},
      "then": {"required": ["template"]}
    },
    "param": {
      "type": "object",
      "required": ["name", "type"],
      "additionalProperties": false,
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "description": {"type": "string"},
        "type": {"type": "string", "minLength": 1},
        "arity": {"type": "integer", "minimum": 1}
      }
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(definitionSchemaURL, strings.NewReader(definitionSchema)); err != nil {
		return nil, fmt.Errorf("add definition schema: %w", err)
	}
	return compiler.Compile(definitionSchemaURL)
})

// validateDocument checks raw YAML against the definition schema. The YAML tree is
// re-encoded as JSON so the validator sees JSON numbers and string-keyed objects.
func validateDocument(content []byte) error {
	schema, schemaError := compiledSchema()
	if schemaError != nil {
		return schemaError
	}
	var document any
	if err := yaml.Unmarshal(content, &document); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	encoded, encodeError := json.Marshal(document)
	if encodeError != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDefinition, encodeError)
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	var instance any
	if err := decoder.Decode(&instance); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	return nil
}
