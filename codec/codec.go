// Package codec centralizes JSON encoding of datums, dataset snapshots and
// tooltip payloads.
//
// Snapshot headers store the codec name, so decoding selects the codec with
// ByName rather than assuming the current default.
package codec

import (
	"fmt"

	"github.com/hupe1980/crossfilter/datum"
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Indenter is implemented by codecs that can produce indented output.
type Indenter interface {
	MarshalIndent(v any, prefix, indent string) ([]byte, error)
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for tests and fixtures.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}

// Plain converts v into JSON-encodable Go values. Identity tokens are
// rendered as their key; NaN and infinities, which JSON cannot carry, as
// their display text.
func Plain(v datum.Value) any {
	switch v.Kind {
	case datum.KindFloat:
		if f := v.F64; f != f || f > maxFloat || f < -maxFloat {
			return datum.FormatFloat(f)
		}
		return v.F64
	case datum.KindArray:
		out := make([]any, len(v.A))
		for i := range v.A {
			out[i] = Plain(v.A[i])
		}
		return out
	case datum.KindMap:
		return PlainDocument(v.M)
	case datum.KindIdentity:
		return v.ID.Key()
	default:
		return datum.ToAny(v)
	}
}

const maxFloat = 1.7976931348623157e308

// PlainDocument is Plain for a document.
func PlainDocument(d datum.Document) map[string]any {
	out := make(map[string]any, len(d))
	for k, v := range d {
		out[k] = Plain(v)
	}
	return out
}

// Indent encodes v with two-space indentation. Codecs that do not implement
// Indenter fall back to compact output.
func Indent(c Codec, v any) ([]byte, error) {
	if c == nil {
		c = Default
	}
	if ind, ok := c.(Indenter); ok {
		return ind.MarshalIndent(v, "", "  ")
	}
	return c.Marshal(v)
}
