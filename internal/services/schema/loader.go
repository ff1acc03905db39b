package schema

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/asakaida/datastore/internal/entities"
)

// Load reads, validates and converts the schema file at path
func Load(path string) (*entities.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return Parse(data)
}

// Parse validates and converts a YAML schema document
func Parse(data []byte) (*entities.Schema, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	schema, err := ToSchema(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert schema: %w", err)
	}

	if err := NewValidator(schema).Validate(); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}
	return schema, nil
}

// Marshal renders a schema back to YAML
func Marshal(schema *entities.Schema) ([]byte, error) {
	data, err := yaml.Marshal(FromSchema(schema))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}
