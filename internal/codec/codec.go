// internal/codec/codec.go
package codec

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tamzrod/modbus-gateway/internal/schema"
)

var (
	// ErrWordCount means the word slice does not fit the encoding.
	ErrWordCount = errors.New("codec: word count does not match encoding")

	// ErrUnsupported means the encoding has no encode direction.
	ErrUnsupported = errors.New("codec: encoding not supported for writes")

	// ErrRange means the value cannot be represented by the encoding.
	ErrRange = errors.New("codec: value out of range")
)

// Decode converts raw register words into a typed value.
//
//	String     -> string
//	UInt16     -> uint16
//	UInt32     -> uint32
//	Int32      -> int32
//	Float32    -> float32
//	UInt16List -> []uint16
func Decode(enc schema.Encoding, words []uint16) (any, error) {
	switch enc {
	case schema.String:
		if len(words) == 0 {
			return nil, wordCountErr(enc, len(words))
		}
		return decodeString(words), nil

	case schema.UInt16:
		if len(words) != 1 {
			return nil, wordCountErr(enc, len(words))
		}
		return words[0], nil

	case schema.UInt32:
		if len(words) != 2 {
			return nil, wordCountErr(enc, len(words))
		}
		return join32(words), nil

	case schema.Int32:
		if len(words) != 2 {
			return nil, wordCountErr(enc, len(words))
		}
		return int32(join32(words)), nil

	case schema.Float32:
		if len(words) != 2 {
			return nil, wordCountErr(enc, len(words))
		}
		return math.Float32frombits(join32(words)), nil

	case schema.UInt16List:
		if len(words) == 0 {
			return nil, wordCountErr(enc, len(words))
		}
		out := make([]uint16, len(words))
		copy(out, words)
		return out, nil

	default:
		return nil, fmt.Errorf("codec: unknown encoding %s", enc)
	}
}

// Encode converts an integer into register words.
// Negative values written as UInt32 wrap into the 32-bit range (two's complement).
// Int32 accepts only [MinInt32, MaxInt32]; larger values are never sign-flipped.
func Encode(enc schema.Encoding, v int64) ([]uint16, error) {
	switch enc {
	case schema.UInt16:
		if v < 0 || v > math.MaxUint16 {
			return nil, fmt.Errorf("%w: %d does not fit %s", ErrRange, v, enc)
		}
		return []uint16{uint16(v)}, nil

	case schema.UInt32:
		if v < math.MinInt32 || v > math.MaxUint32 {
			return nil, fmt.Errorf("%w: %d does not fit %s", ErrRange, v, enc)
		}
		return split32(uint32(v)), nil

	case schema.Int32:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return nil, fmt.Errorf("%w: %d does not fit %s", ErrRange, v, enc)
		}
		return split32(uint32(int32(v))), nil

	case schema.String, schema.Float32, schema.UInt16List:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, enc)

	default:
		return nil, fmt.Errorf("codec: unknown encoding %s", enc)
	}
}

// Encodable reports whether Encode is defined for enc.
func Encodable(enc schema.Encoding) bool {
	switch enc {
	case schema.UInt16, schema.UInt32, schema.Int32:
		return true
	}
	return false
}

// ---- helpers (pure geometry) ----

func wordCountErr(enc schema.Encoding, n int) error {
	return fmt.Errorf("%w: %s got %d words", ErrWordCount, enc, n)
}

// join32 combines two words, most significant first.
func join32(w []uint16) uint32 {
	return uint32(w[0])<<16 | uint32(w[1])
}

func split32(v uint32) []uint16 {
	return []uint16{uint16(v >> 16), uint16(v)}
}

// decodeString unpacks two ASCII bytes per word, high byte first.
// Non-ASCII bytes are dropped; NUL padding and surrounding whitespace are trimmed.
func decodeString(words []uint16) string {
	b := make([]byte, 0, len(words)*2)
	for _, w := range words {
		for _, c := range [2]byte{byte(w >> 8), byte(w)} {
			if c > 0x7F {
				continue
			}
			b = append(b, c)
		}
	}
	return strings.Trim(string(b), "\x00 \t\n\r\v\f")
}
