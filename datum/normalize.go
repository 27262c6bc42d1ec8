package datum

import "strings"

// Reserved interactivity keys that the dataset or the highlight pipeline adds
// to rows and that can surface in rendered datums.
const (
	// IdentityKey carries the host identity token of a row.
	IdentityKey = "__identity__"
	// RowKey carries the dense row index of a row.
	RowKey = "__row__"
	// SelectedKey carries the selection status (on/off/neutral) of a row.
	SelectedKey = "__selected__"

	// HighlightSuffix marks the highlighted sub-value of a measure.
	HighlightSuffix = "__highlight"
	// HighlightStatusSuffix marks the highlight status of a measure.
	HighlightStatusSuffix = HighlightSuffix + "Status"
	// HighlightComparatorSuffix marks the highlight comparator of a measure.
	HighlightComparatorSuffix = HighlightSuffix + "Comparator"

	// FormatStringSuffix marks the format string companion of a measure.
	FormatStringSuffix = "__format"
	// FormattedValueSuffix marks the pre-formatted companion of a measure.
	FormattedValueSuffix = "__formatted"
)

// IsReserved reports whether key is an interactivity reserved word.
func IsReserved(key string) bool {
	switch key {
	case IdentityKey, RowKey, SelectedKey:
		return true
	}
	return strings.HasSuffix(key, HighlightSuffix) ||
		strings.HasSuffix(key, HighlightStatusSuffix) ||
		strings.HasSuffix(key, HighlightComparatorSuffix)
}

// Item is a rendered mark as handed over by the rendering engine.
//
// Facet is set when the mark is a group/facet container whose payload is
// itself a list of datums; it takes precedence over Datum.
type Item struct {
	Datum   Document
	Facet   []Document
	Tooltip Value
}

// Normalize unwraps an item into a flat list of datums.
//
// Each returned document is a shallow copy, so callers never mutate the
// rendering engine's own records. A nil item yields nil.
func Normalize(item *Item) []Document {
	if item == nil {
		return nil
	}
	if len(item.Facet) > 0 {
		out := make([]Document, len(item.Facet))
		for i, d := range item.Facet {
			out[i] = d.Copy()
		}
		return out
	}
	return []Document{item.Datum.Copy()}
}

// NormalizeValue unwraps a raw value (one object or an array of objects) into
// a flat list of datums. Non-object elements are skipped.
func NormalizeValue(v Value) []Document {
	switch v.Kind {
	case KindMap:
		return []Document{v.M.Copy()}
	case KindArray:
		out := make([]Document, 0, len(v.A))
		for _, e := range v.A {
			if e.Kind == KindMap {
				out = append(out, e.M.Copy())
			}
		}
		return out
	default:
		return nil
	}
}

// Entry is a single key/value pair of a document.
type Entry struct {
	Key   string
	Value Value
}

// StripReserved returns the entries of doc in key order. When filterReserved
// is set, interactivity reserved keys are left out.
func StripReserved(doc Document, filterReserved bool) []Entry {
	out := make([]Entry, 0, len(doc))
	for _, k := range doc.Keys() {
		if filterReserved && IsReserved(k) {
			continue
		}
		out = append(out, Entry{Key: k, Value: doc[k]})
	}
	return out
}

// Redact walks arrays and maps recursively and replaces the value of every
// reserved key with placeholder. All other values are returned untouched.
func Redact(v Value, placeholder string) Value {
	switch v.Kind {
	case KindArray:
		out := make([]Value, len(v.A))
		for i := range v.A {
			out[i] = Redact(v.A[i], placeholder)
		}
		return Array(out)
	case KindMap:
		return Map(RedactDocument(v.M, placeholder))
	default:
		return v
	}
}

// RedactDocument is Redact for a document.
func RedactDocument(d Document, placeholder string) Document {
	out := make(Document, len(d))
	for k, v := range d {
		if IsReserved(k) {
			out[k] = String(placeholder)
			continue
		}
		out[k] = Redact(v, placeholder)
	}
	return out
}
