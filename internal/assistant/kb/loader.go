package kb

import (
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// documentSchema validates a knowledge-base YAML document after it has been
// decoded to generic values. Structural errors are caught here so Load can
// report them before New runs its semantic checks.
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["entries"],
  "additionalProperties": false,
  "properties": {
    "entries": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["key", "answer"],
        "additionalProperties": false,
        "properties": {
          "key": {"type": "string", "minLength": 1},
          "answer": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

// document is the root of a knowledge-base YAML file.
type document struct {
	Entries []Entry `yaml:"entries" json:"entries"`
}

var compiledSchema = jsonschema.MustCompileString("kb.schema.json", documentSchema)

// Load reads a knowledge-base YAML file, validates it against the embedded
// schema, and returns the resulting KnowledgeBase. Entry order in the file is
// the lookup precedence order.
func Load(path string) (*KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("kb: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a knowledge-base YAML document.
func Parse(data []byte) (*KnowledgeBase, error) {
	// Decode once to generic values for schema validation, then again into
	// the typed document. The generic pass keeps schema errors positional.
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("kb: parse yaml: %w", err)
	}
	if err := compiledSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("kb: validate document: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("kb: decode document: %w", err)
	}
	return New(doc.Entries)
}
