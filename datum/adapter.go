package datum

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hupe1980/crossfilter/identity"
)

// FromAny converts a Go value into a typed Value.
//
// This exists as an adapter layer for rendering-engine payloads, decoded JSON
// and YAML, and test fixtures.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case identity.Identity:
		return ID(x), nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case float64:
		return Float(x), nil
	case float32:
		return Float(float64(x)), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return Int(int64(x)), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		if x > uint64(^uint32(0)) {
			// Avoid silently truncating large values.
			return Value{}, fmt.Errorf("datum uint64 out of range: %d", x)
		}
		return Int(int64(x)), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("datum number %q: %w", x, err)
		}
		return Float(f), nil
	case time.Time:
		return Time(x), nil
	case []Value:
		return Array(x), nil
	case Document:
		return Map(x), nil
	case []any:
		arr := make([]Value, len(x))
		for i := range x {
			vv, err := FromAny(x[i])
			if err != nil {
				return Value{}, err
			}
			arr[i] = vv
		}
		return Array(arr), nil
	case []string:
		arr := make([]Value, len(x))
		for i := range x {
			arr[i] = String(x[i])
		}
		return Array(arr), nil
	case []int:
		arr := make([]Value, len(x))
		for i := range x {
			arr[i] = Int(int64(x[i]))
		}
		return Array(arr), nil
	case []float64:
		arr := make([]Value, len(x))
		for i := range x {
			arr[i] = Float(x[i])
		}
		return Array(arr), nil
	case map[string]any:
		d, err := DocumentFromAny(x)
		if err != nil {
			return Value{}, err
		}
		return Map(d), nil
	case []map[string]any:
		arr := make([]Value, len(x))
		for i := range x {
			d, err := DocumentFromAny(x[i])
			if err != nil {
				return Value{}, err
			}
			arr[i] = Map(d)
		}
		return Array(arr), nil
	default:
		return Value{}, fmt.Errorf("unsupported datum value type %T", v)
	}
}

// MustFromAny is FromAny for fixtures; it panics on unsupported input.
func MustFromAny(v any) Value {
	vv, err := FromAny(v)
	if err != nil {
		panic(err)
	}
	return vv
}

// DocumentFromAny converts a map[string]any record to a typed Document.
func DocumentFromAny(m map[string]any) (Document, error) {
	d := make(Document, len(m))
	for k, v := range m {
		vv, err := FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		d[k] = vv
	}
	return d, nil
}

// ToAny converts v back into plain Go values (nil, int64, float64, string,
// bool, time.Time, []any, map[string]any, identity.Identity).
func ToAny(v Value) any {
	switch v.Kind {
	case KindInt:
		return v.I64
	case KindFloat:
		return v.F64
	case KindString:
		return v.s.Value()
	case KindBool:
		return v.B
	case KindTime:
		return v.T
	case KindArray:
		out := make([]any, len(v.A))
		for i := range v.A {
			out[i] = ToAny(v.A[i])
		}
		return out
	case KindMap:
		return DocumentToAny(v.M)
	case KindIdentity:
		return v.ID
	default:
		return nil
	}
}

// DocumentToAny converts a Document into a map[string]any.
func DocumentToAny(d Document) map[string]any {
	out := make(map[string]any, len(d))
	for k, v := range d {
		out[k] = ToAny(v)
	}
	return out
}
