// internal/schema/load.go
package schema

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk register map document.
type File struct {
	Registers []Descriptor `yaml:"registers"`
}

// LoadFile reads a YAML register map and validates it.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML register map. Unknown keys are rejected.
func Parse(data []byte) (*Schema, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("schema: decode: %w", err)
	}
	return New(f.Registers)
}
