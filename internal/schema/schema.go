// internal/schema/schema.go
package schema

import (
	"errors"
	"fmt"
	"math"
)

// MaxReadWords is the protocol limit for one read holding registers request.
const MaxReadWords = 125

// Descriptor maps one named field onto a holding register range.
type Descriptor struct {
	Name      string   `yaml:"name" json:"name"`
	Address   uint16   `yaml:"address" json:"address"`
	WordCount uint16   `yaml:"words" json:"words"`
	Encoding  Encoding `yaml:"type" json:"type"`
	Scale     float64  `yaml:"scale" json:"scale"`
	Writable  bool     `yaml:"writable" json:"writable"`
}

// Schema is the immutable register table.
// It is built once at startup and only read afterwards.
type Schema struct {
	order  []Descriptor
	byName map[string]int
}

// New validates descs and builds a Schema.
// A zero scale is normalized to 1.
func New(descs []Descriptor) (*Schema, error) {
	if len(descs) == 0 {
		return nil, errors.New("schema: at least one register required")
	}

	s := &Schema{
		order:  make([]Descriptor, 0, len(descs)),
		byName: make(map[string]int, len(descs)),
	}

	for i, d := range descs {
		if d.Name == "" {
			return nil, fmt.Errorf("schema: register #%d: name required", i)
		}
		if _, dup := s.byName[d.Name]; dup {
			return nil, fmt.Errorf("schema: duplicate register name %q", d.Name)
		}
		if err := d.Encoding.checkWords(d.WordCount); err != nil {
			return nil, fmt.Errorf("schema: register %q: %v", d.Name, err)
		}
		if d.WordCount > MaxReadWords {
			return nil, fmt.Errorf("schema: register %q: %d words exceeds %d per read", d.Name, d.WordCount, MaxReadWords)
		}
		if uint32(d.Address)+uint32(d.WordCount) > 0x10000 {
			return nil, fmt.Errorf("schema: register %q: range %d+%d exceeds address space", d.Name, d.Address, d.WordCount)
		}
		if math.IsNaN(d.Scale) || math.IsInf(d.Scale, 0) {
			return nil, fmt.Errorf("schema: register %q: scale must be finite", d.Name)
		}
		if d.Scale == 0 {
			d.Scale = 1
		}

		s.byName[d.Name] = len(s.order)
		s.order = append(s.order, d)
	}

	return s, nil
}

// Lookup returns the descriptor for name.
func (s *Schema) Lookup(name string) (Descriptor, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Descriptor{}, false
	}
	return s.order[i], true
}

// All returns every descriptor in schema order.
func (s *Schema) All() []Descriptor {
	out := make([]Descriptor, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Schema) Len() int { return len(s.order) }
