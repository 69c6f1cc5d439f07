// internal/schema/encoding.go
package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Encoding is the closed set of register value encodings.
// Byte order is always big-endian: register[0] holds the most significant word.
type Encoding uint8

const (
	encodingInvalid Encoding = iota
	String
	UInt16
	UInt32
	Int32
	Float32
	UInt16List
)

var encodingNames = map[Encoding]string{
	String:     "string",
	UInt16:     "uint16",
	UInt32:     "uint32",
	Int32:      "int32",
	Float32:    "float32",
	UInt16List: "uint16_list",
}

func (e Encoding) String() string {
	if s, ok := encodingNames[e]; ok {
		return s
	}
	return fmt.Sprintf("encoding(%d)", uint8(e))
}

// Valid reports whether e is one of the declared encodings.
func (e Encoding) Valid() bool {
	_, ok := encodingNames[e]
	return ok
}

// ParseEncoding maps the text form used in register map files.
func ParseEncoding(s string) (Encoding, error) {
	for e, name := range encodingNames {
		if name == s {
			return e, nil
		}
	}
	return encodingInvalid, fmt.Errorf("schema: unknown encoding %q", s)
}

// checkWords validates a word count against the encoding.
func (e Encoding) checkWords(n uint16) error {
	switch e {
	case UInt16:
		if n != 1 {
			return fmt.Errorf("%s requires exactly 1 word, got %d", e, n)
		}
	case UInt32, Int32, Float32:
		if n != 2 {
			return fmt.Errorf("%s requires exactly 2 words, got %d", e, n)
		}
	case String, UInt16List:
		if n < 1 {
			return fmt.Errorf("%s requires at least 1 word", e)
		}
	default:
		return fmt.Errorf("unknown encoding %s", e)
	}
	return nil
}

func (e Encoding) MarshalText() ([]byte, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("schema: cannot marshal %s", e)
	}
	return []byte(e.String()), nil
}

func (e *Encoding) UnmarshalText(b []byte) error {
	v, err := ParseEncoding(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

func (e *Encoding) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := ParseEncoding(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*e = v
	return nil
}
