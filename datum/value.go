package datum

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unique"

	"github.com/hupe1980/crossfilter/identity"
)

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	// KindInvalid represents an invalid kind. It never matches anything.
	KindInvalid Kind = iota
	// KindNull represents a null value.
	KindNull
	// KindInt represents an integer value.
	KindInt
	// KindFloat represents a float value.
	KindFloat
	// KindString represents a string value.
	KindString
	// KindBool represents a boolean value.
	KindBool
	// KindTime represents a date/time value.
	KindTime
	// KindArray represents an array value.
	KindArray
	// KindMap represents a nested object.
	KindMap
	// KindIdentity represents an opaque host identity token.
	KindIdentity
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindIdentity:
		return "identity"
	default:
		return "invalid"
	}
}

// Value is a recursive tagged value carried by rendered datums and dataset rows.
//
// Exactly one payload field is meaningful for a given Kind. No reflection is
// involved in comparison or keying.
type Value struct {
	Kind Kind
	I64  int64
	F64  float64
	s    unique.Handle[string]
	B    bool
	T    time.Time
	A    []Value
	M    Document
	ID   identity.Identity
}

// Null returns a null Value.
func Null() Value { return Value{Kind: KindNull} }

// Int returns an int64 Value.
func Int(v int64) Value { return Value{Kind: KindInt, I64: v} }

// Float returns a float64 Value.
func Float(v float64) Value { return Value{Kind: KindFloat, F64: v} }

// String returns a string Value.
func String(v string) Value { return Value{Kind: KindString, s: unique.Make(v)} }

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{Kind: KindBool, B: v} }

// Time returns a date/time Value normalized to UTC at millisecond precision.
func Time(v time.Time) Value {
	return Value{Kind: KindTime, T: time.UnixMilli(v.UnixMilli()).UTC()}
}

// Array returns an array Value.
func Array(v []Value) Value { return Value{Kind: KindArray, A: v} }

// Map returns a nested object Value.
func Map(v Document) Value { return Value{Kind: KindMap, M: v} }

// ID returns a Value wrapping a host identity token.
func ID(v identity.Identity) Value {
	if v == nil {
		return Null()
	}
	return Value{Kind: KindIdentity, ID: v}
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// IsValid reports whether v carries a kind.
func (v Value) IsValid() bool { return v.Kind != KindInvalid }

// IsNumber reports whether v is an int or a float.
func (v Value) IsNumber() bool { return v.Kind == KindInt || v.Kind == KindFloat }

// IsComplex reports whether v is an array or a map.
func (v Value) IsComplex() bool { return v.Kind == KindArray || v.Kind == KindMap }

// StringValue returns the string value if Kind is KindString, otherwise empty string.
func (v Value) StringValue() string {
	if v.Kind == KindString {
		return v.s.Value()
	}
	return ""
}

// AsInt64 returns the int64 value if Kind is KindInt.
func (v Value) AsInt64() (int64, bool) {
	if v.Kind != KindInt {
		return 0, false
	}
	return v.I64, true
}

// AsFloat64 returns the numeric value for ints and floats.
func (v Value) AsFloat64() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.I64), true
	case KindFloat:
		return v.F64, true
	default:
		return 0, false
	}
}

// AsString returns the string value if Kind is KindString.
func (v Value) AsString() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	return v.s.Value(), true
}

// AsBool returns the boolean value if Kind is KindBool.
func (v Value) AsBool() (bool, bool) {
	if v.Kind != KindBool {
		return false, false
	}
	return v.B, true
}

// AsTime returns the time value if Kind is KindTime.
func (v Value) AsTime() (time.Time, bool) {
	if v.Kind != KindTime {
		return time.Time{}, false
	}
	return v.T, true
}

// AsArray returns the array value if Kind is KindArray.
func (v Value) AsArray() ([]Value, bool) {
	if v.Kind != KindArray {
		return nil, false
	}
	return v.A, true
}

// AsMap returns the nested document if Kind is KindMap.
func (v Value) AsMap() (Document, bool) {
	if v.Kind != KindMap {
		return nil, false
	}
	return v.M, true
}

// AsIdentity returns the identity token if Kind is KindIdentity.
func (v Value) AsIdentity() (identity.Identity, bool) {
	if v.Kind != KindIdentity {
		return nil, false
	}
	return v.ID, true
}

// Key returns a stable string representation for use in maps.
//
// Two values that are Equal always share a Key. Ints and integral floats
// share the numeric key space so that a coerced float matches an int column.
func (v Value) Key() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindInt:
		return "n:" + strconv.FormatInt(v.I64, 10)
	case KindFloat:
		return "n:" + formatNumberKey(v.F64)
	case KindString:
		return "s:" + v.s.Value()
	case KindBool:
		if v.B {
			return "b:1"
		}
		return "b:0"
	case KindTime:
		return "t:" + strconv.FormatInt(v.T.UnixMilli(), 10)
	case KindArray:
		if len(v.A) == 0 {
			return "a:"
		}
		parts := make([]string, len(v.A))
		for i := range v.A {
			parts[i] = v.A[i].Key()
		}
		return "a:" + strings.Join(parts, "\x1f")
	case KindMap:
		keys := v.M.Keys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + v.M[k].Key()
		}
		return "m:{" + strings.Join(parts, "\x1f") + "}"
	case KindIdentity:
		return "id:" + v.ID.Key()
	default:
		return "invalid"
	}
}

func formatNumberKey(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Text renders v as plain display text.
//
// Nulls render empty, numbers use the shortest exact decimal form, dates use
// RFC 3339 and arrays are comma separated.
func (v Value) Text() string {
	switch v.Kind {
	case KindNull, KindInvalid:
		return ""
	case KindInt:
		return strconv.FormatInt(v.I64, 10)
	case KindFloat:
		return FormatFloat(v.F64)
	case KindString:
		return v.s.Value()
	case KindBool:
		return strconv.FormatBool(v.B)
	case KindTime:
		return v.T.Format(time.RFC3339)
	case KindArray:
		parts := make([]string, len(v.A))
		for i := range v.A {
			parts[i] = v.A[i].Text()
		}
		return strings.Join(parts, ",")
	case KindMap:
		keys := v.M.Keys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ":" + v.M[k].Text()
		}
		return "{" + strings.Join(parts, ",") + "}"
	case KindIdentity:
		return v.ID.Key()
	}
	return ""
}

// FormatFloat renders f the way a tooltip channel would stringify it.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.Abs(f) >= 1e21:
		return strconv.FormatFloat(f, 'g', -1, 64)
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

// clone creates a deep copy of a Value, including nested arrays and maps.
func (v Value) clone() Value {
	switch v.Kind {
	case KindArray:
		if len(v.A) == 0 {
			return v
		}
		arrayCopy := make([]Value, len(v.A))
		for i := range v.A {
			arrayCopy[i] = v.A[i].clone()
		}
		v.A = arrayCopy
		return v
	case KindMap:
		v.M = v.M.Clone()
		return v
	default:
		return v
	}
}

// Document is a key/value record: a rendered datum or a dataset row.
type Document map[string]Value

// Clone creates a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	clone := make(Document, len(d))
	for k, v := range d {
		clone[k] = v.clone()
	}
	return clone
}

// Copy creates a shallow copy of the document. Nested arrays and maps are shared.
func (d Document) Copy() Document {
	if d == nil {
		return Document{}
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Keys returns the document keys in ascending order.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key is present.
func (d Document) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Pick returns a document restricted to keys present in d.
func (d Document) Pick(keys ...string) Document {
	out := make(Document, len(keys))
	for _, k := range keys {
		if v, ok := d[k]; ok {
			out[k] = v
		}
	}
	return out
}

// RowIndex returns the row-index tag of the document, if any.
func (d Document) RowIndex() (int, bool) {
	v, ok := d[RowKey]
	if !ok {
		return 0, false
	}
	switch v.Kind {
	case KindInt:
		return int(v.I64), true
	case KindFloat:
		if v.F64 == math.Trunc(v.F64) {
			return int(v.F64), true
		}
	}
	return 0, false
}

// Identity returns the identity tag of the document, if any.
func (d Document) Identity() (identity.Identity, bool) {
	v, ok := d[IdentityKey]
	if !ok {
		return nil, false
	}
	return v.AsIdentity()
}
