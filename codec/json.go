package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Time values encode as RFC 3339 strings; funcs, channels and complex numbers
// are not supported.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// MarshalIndent encodes the value to indented JSON.
func (JSON) MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(v, prefix, indent)
}

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the default codec used by the library.
//
// NOTE: This affects newly written snapshots. Existing snapshots store the
// codec name in their header and are decoded with that codec.
var Default Codec = GoJSON{}
