package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// Role distinguishes grouping columns from aggregated measures.
type Role uint8

const (
	RoleColumn Role = iota
	RoleMeasure
)

// String returns the string representation of the Role.
func (r Role) String() string {
	switch r {
	case RoleColumn:
		return "column"
	case RoleMeasure:
		return "measure"
	default:
		return "unknown"
	}
}

// ParseRole parses "column" or "measure" (case-insensitive).
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(s) {
	case "", "column", "category", "grouping":
		return RoleColumn, nil
	case "measure":
		return RoleMeasure, nil
	default:
		return RoleColumn, fmt.Errorf("unknown field role %q", s)
	}
}

// Type is the semantic type of a field.
type Type uint8

const (
	TypeText Type = iota
	TypeNumeric
	TypeInteger
	TypeDateTime
	TypeBool
)

// String returns the string representation of the Type.
func (t Type) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeNumeric:
		return "numeric"
	case TypeInteger:
		return "integer"
	case TypeDateTime:
		return "dateTime"
	case TypeBool:
		return "bool"
	default:
		return "unknown"
	}
}

// IsNumber reports whether values of this type are numbers.
func (t Type) IsNumber() bool { return t == TypeNumeric || t == TypeInteger }

// ParseType parses a semantic type name (case-insensitive).
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "", "text", "string":
		return TypeText, nil
	case "numeric", "number", "float":
		return TypeNumeric, nil
	case "integer", "int":
		return TypeInteger, nil
	case "datetime", "date":
		return TypeDateTime, nil
	case "bool", "boolean":
		return TypeBool, nil
	default:
		return TypeText, fmt.Errorf("unknown field type %q", s)
	}
}

// Field is the metadata of one dataset column or measure.
//
// Name is the key under which values appear in rows and rendered datums.
type Field struct {
	Name string
	Role Role
	Type Type
	// Format is the host display format string.
	Format string
	// QueryName is the host query reference of a measure.
	QueryName string
	// SourceIndex is the position of the category column a column field was
	// read from.
	SourceIndex int
}

// IsMeasure reports whether the field is a measure.
func (f Field) IsMeasure() bool { return f.Role == RoleMeasure }

// Fields is the field metadata of a dataset, keyed by field name.
type Fields map[string]Field

// Names returns the field names in ascending order.
func (fs Fields) Names() []string {
	names := make([]string, 0, len(fs))
	for n := range fs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Pick returns the subset of fields named in keys. Unknown keys are ignored.
func (fs Fields) Pick(keys ...string) Fields {
	out := make(Fields, len(keys))
	for _, k := range keys {
		if f, ok := fs[k]; ok {
			out[k] = f
		}
	}
	return out
}

// NonMeasures returns the fields that are not measures.
func (fs Fields) NonMeasures() Fields {
	out := make(Fields, len(fs))
	for k, f := range fs {
		if !f.IsMeasure() {
			out[k] = f
		}
	}
	return out
}

// Clone returns a copy of the field map.
func (fs Fields) Clone() Fields {
	out := make(Fields, len(fs))
	for k, f := range fs {
		out[k] = f
	}
	return out
}
