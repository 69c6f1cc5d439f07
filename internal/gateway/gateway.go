// internal/gateway/gateway.go
package gateway

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tamzrod/modbus-gateway/internal/codec"
	"github.com/tamzrod/modbus-gateway/internal/schema"
	"github.com/tamzrod/modbus-gateway/internal/transport"
)

// Transport is the register-level contract the gateway drives.
// *transport.Client satisfies it.
type Transport interface {
	ReadWords(addr, count uint16) ([]uint16, error)
	WriteWords(addr uint16, values []uint16) error
}

// UnknownFieldPolicy decides what ReadFields does with names absent from the schema.
type UnknownFieldPolicy uint8

const (
	Skip UnknownFieldPolicy = iota
	Reject
)

// ParseUnknownFieldPolicy accepts "skip" or "reject" (empty means skip).
func ParseUnknownFieldPolicy(s string) (UnknownFieldPolicy, error) {
	switch strings.ToLower(s) {
	case "", "skip":
		return Skip, nil
	case "reject":
		return Reject, nil
	default:
		return Skip, fmt.Errorf("gateway: unknown field policy %q", s)
	}
}

// Gateway translates field names into register operations.
// It holds no mutable state; concurrent use is safe when the Transport is.
type Gateway struct {
	schema *schema.Schema
	t      Transport
	policy UnknownFieldPolicy
	log    zerolog.Logger
}

type Option func(*Gateway)

func WithUnknownFieldPolicy(p UnknownFieldPolicy) Option {
	return func(g *Gateway) { g.policy = p }
}

func WithLogger(l zerolog.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

func New(s *schema.Schema, t Transport, opts ...Option) *Gateway {
	g := &Gateway{
		schema: s,
		t:      t,
		policy: Skip,
		log:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Schema returns the register map the gateway serves.
func (g *Gateway) Schema() *schema.Schema { return g.schema }

// ReadFields reads the named fields, or every field when names is empty.
//
// A failed field is reported in its FieldValue and the batch continues.
// When the device is unreachable as a whole the batch stops and that error is returned.
func (g *Gateway) ReadFields(names []string) (map[string]FieldValue, error) {
	descs, err := g.resolve(names)
	if err != nil {
		return nil, err
	}

	out := make(map[string]FieldValue, len(descs))
	for _, d := range descs {
		fv, err := g.readOne(d)
		if err != nil {
			return nil, err
		}
		out[d.Name] = fv
	}
	return out, nil
}

// WriteField writes a physical value into a writable field.
// Caller errors are returned as *FieldError before any wire operation;
// transport errors pass through unchanged.
func (g *Gateway) WriteField(name string, value float64) error {
	d, ok := g.schema.Lookup(name)
	if !ok {
		return fieldErr(name, ErrUnknownField)
	}
	if !d.Writable {
		return fieldErr(name, ErrNotWritable)
	}
	if !codec.Encodable(d.Encoding) {
		return fieldErr(name, fmt.Errorf("%w: %s", ErrEncodingUnsupported, d.Encoding))
	}

	raw, err := codec.Unscale(value, d.Scale)
	if err != nil {
		return fieldErr(name, fmt.Errorf("%w: %v", ErrInvalidValue, err))
	}
	words, err := codec.Encode(d.Encoding, raw)
	if err != nil {
		return fieldErr(name, fmt.Errorf("%w: %v", ErrInvalidValue, err))
	}

	if err := g.t.WriteWords(d.Address, words); err != nil {
		return err
	}

	g.log.Info().
		Str("field", name).
		Float64("value", value).
		Int64("raw", raw).
		Uint16("address", d.Address).
		Msg("field written")
	return nil
}

// ---- internal ----

// resolve maps requested names to descriptors in request order, dropping duplicates.
func (g *Gateway) resolve(names []string) ([]schema.Descriptor, error) {
	if len(names) == 0 {
		return g.schema.All(), nil
	}

	seen := make(map[string]struct{}, len(names))
	descs := make([]schema.Descriptor, 0, len(names))

	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		d, ok := g.schema.Lookup(name)
		if !ok {
			if g.policy == Reject {
				return nil, fieldErr(name, ErrUnknownField)
			}
			g.log.Debug().Str("field", name).Msg("unknown field skipped")
			continue
		}
		descs = append(descs, d)
	}
	return descs, nil
}

// readOne returns a non-nil error only when the whole batch must stop.
func (g *Gateway) readOne(d schema.Descriptor) (FieldValue, error) {
	fv := FieldValue{Name: d.Name}

	words, err := g.t.ReadWords(d.Address, d.WordCount)
	if err != nil {
		if transport.IsConnectionError(err) {
			return fv, err
		}
		g.log.Warn().Err(err).Str("field", d.Name).Msg("field read failed")
		fv.Err = err
		return fv, nil
	}

	v, err := codec.Decode(d.Encoding, words)
	if err != nil {
		fv.Err = fmt.Errorf("gateway: decode %s: %w", d.Name, err)
		return fv, nil
	}

	fv.Value = codec.Scale(v, d.Scale)
	fv.OK = true
	return fv, nil
}
