// Package highlight derives highlight comparator and status companions for
// measures that carry a highlighted sub-value.
package highlight

import (
	"fmt"

	"github.com/hupe1980/crossfilter/dataset"
	"github.com/hupe1980/crossfilter/datum"
	"github.com/hupe1980/crossfilter/selection"
)

// Comparator relates a highlighted sub-value to its base value.
type Comparator string

const (
	// Equal means highlight == base.
	Equal Comparator = "eq"
	// Less means highlight < base.
	Less Comparator = "lt"
	// Greater means highlight > base.
	Greater Comparator = "gt"
	// NotEqual means the highlight is absent or not comparable to the base.
	NotEqual Comparator = "neq"
)

// ParseComparator parses eq, lt, gt or neq.
func ParseComparator(s string) (Comparator, error) {
	switch c := Comparator(s); c {
	case Equal, Less, Greater, NotEqual:
		return c, nil
	default:
		return "", fmt.Errorf("unknown highlight comparator %q", s)
	}
}

// Compare compares the highlighted sub-value hl against base.
func Compare(base, hl datum.Value) Comparator {
	if hl.IsNull() || !hl.IsValid() {
		return NotEqual
	}
	c, ok := datum.Compare(hl, base)
	if !ok {
		if datum.Equal(hl, base) {
			return Equal
		}
		return NotEqual
	}
	switch {
	case c < 0:
		return Less
	case c > 0:
		return Greater
	default:
		return Equal
	}
}

// Status collapses a comparator onto the selection vocabulary: neutral while
// no highlight is active, off when the highlight misses the value, on
// otherwise.
func Status(c Comparator, active bool) selection.Status {
	switch {
	case !active:
		return selection.StatusNeutral
	case c == NotEqual:
		return selection.StatusOff
	default:
		return selection.StatusOn
	}
}

// Derive returns a shallow copy of doc with the status and comparator
// companions added for every measure in fields that has a highlight value.
func Derive(doc datum.Document, fields dataset.Fields, active bool) datum.Document {
	out := doc.Copy()
	for name, f := range fields {
		if !f.IsMeasure() {
			continue
		}
		base, ok := doc[name]
		if !ok {
			continue
		}
		hl, ok := doc[name+datum.HighlightSuffix]
		if !ok {
			continue
		}
		c := Compare(base, hl)
		out[name+datum.HighlightComparatorSuffix] = datum.String(string(c))
		out[name+datum.HighlightStatusSuffix] = datum.String(Status(c, active).String())
	}
	return out
}

// Active reports whether any row of data carries a non-null highlight value
// for a measure in fields.
func Active(data []datum.Document, fields dataset.Fields) bool {
	for _, d := range data {
		for name, f := range fields {
			if !f.IsMeasure() {
				continue
			}
			if hl, ok := d[name+datum.HighlightSuffix]; ok && hl.IsValid() && !hl.IsNull() {
				return true
			}
		}
	}
	return false
}
