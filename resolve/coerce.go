package resolve

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/crossfilter/dataset"
	"github.com/hupe1980/crossfilter/datum"
)

// dateLayouts are tried in order when a dateTime field arrives as a string.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"1/2/2006 15:04:05",
	"1/2/2006",
}

// Coerce converts a channel value back to the semantic type of field.
//
// Rendering channels (tooltips in particular) stringify values, so numeric
// fields parse strings as floats (NaN on failure, which never matches) and
// dateTime fields parse strings with a set of common layouts or interpret
// numbers as epoch milliseconds. A dateTime value that cannot be parsed
// becomes an invalid Value, which never matches. Other types pass through.
func Coerce(v datum.Value, field dataset.Field) datum.Value {
	switch field.Type {
	case dataset.TypeNumeric, dataset.TypeInteger:
		s, ok := v.AsString()
		if !ok {
			return v
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return datum.Float(math.NaN())
		}
		return datum.Float(f)
	case dataset.TypeDateTime:
		switch v.Kind {
		case datum.KindTime:
			return v
		case datum.KindInt, datum.KindFloat:
			ms, _ := v.AsFloat64()
			return datum.Time(time.UnixMilli(int64(ms)))
		case datum.KindString:
			if t, ok := parseDate(v.StringValue()); ok {
				return datum.Time(t)
			}
			return datum.Value{}
		default:
			return v
		}
	default:
		return v
	}
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// reduce builds the match query of a datum: the entries whose key names a
// field in fields, coerced to that field's type.
func reduce(d datum.Document, fields dataset.Fields) datum.Document {
	q := make(datum.Document, len(fields))
	for k, v := range d {
		f, ok := fields[k]
		if !ok {
			continue
		}
		q[k] = Coerce(v, f)
	}
	return q
}
