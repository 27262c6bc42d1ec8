// Package format renders numbers with host display format strings such as
// "#,0.00", "0.0%" or "$#,0;($#,0)".
package format

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/hupe1980/crossfilter/datum"
)

// Pattern is one parsed section of a format string.
type Pattern struct {
	Prefix   string
	Suffix   string
	MinFrac  int
	MaxFrac  int
	Grouping bool
	Percent  bool
	// Scale is the number of trailing thousands separators; each divides the
	// value by 1000.
	Scale int
	// Literal is set when the section has no digit placeholders and renders
	// as its text alone.
	Literal bool
}

// ParsePattern parses a single format section. Literal text before and after
// the digit placeholders is kept; double quotes and backslash escapes are
// removed from it.
func ParsePattern(s string) Pattern {
	var p Pattern

	start := strings.IndexAny(s, "#0")
	if start < 0 {
		p.Prefix = unquote(s)
		p.Literal = true
		return p
	}
	end := start
	for end < len(s) && strings.IndexByte("#0,.", s[end]) >= 0 {
		end++
	}
	core := s[start:end]
	p.Prefix = unquote(s[:start])
	p.Suffix = unquote(s[end:])
	p.Percent = strings.Contains(p.Prefix, "%") || strings.Contains(p.Suffix, "%")

	for strings.HasSuffix(core, ",") {
		core = core[:len(core)-1]
		p.Scale++
	}

	intPart, frac, _ := strings.Cut(core, ".")
	p.Grouping = strings.Contains(intPart, ",")
	for _, c := range frac {
		switch c {
		case '0':
			p.MinFrac++
			p.MaxFrac++
		case '#':
			p.MaxFrac++
		}
	}
	return p
}

func unquote(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Formatter formats numbers for one locale.
type Formatter struct {
	printer *message.Printer
}

// New creates a formatter printing with p. A nil printer selects en-US.
func New(p *message.Printer) *Formatter {
	if p == nil {
		p = message.NewPrinter(language.AmericanEnglish)
	}
	return &Formatter{printer: p}
}

// Format renders v with the format string layout. Sections are separated by
// ';' (positive;negative;zero). An empty layout or "General" renders the
// shortest decimal form.
func (f *Formatter) Format(v float64, layout string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return datum.FormatFloat(v)
	}
	layout = strings.TrimSpace(layout)
	if layout == "" || strings.EqualFold(layout, "General") {
		return datum.FormatFloat(v)
	}

	sections := strings.Split(layout, ";")
	section := sections[0]
	negative := v < 0
	switch {
	case v == 0 && len(sections) > 2:
		section, negative = sections[2], false
	case negative && len(sections) > 1 && sections[1] != "":
		section, v = sections[1], -v
		negative = false
	}

	p := ParsePattern(section)
	if p.Literal {
		return p.Prefix
	}
	if p.Percent {
		v *= 100
	}
	for range p.Scale {
		v /= 1000
	}

	opts := []number.Option{number.MinFractionDigits(p.MinFrac), number.MaxFractionDigits(p.MaxFrac)}
	if !p.Grouping {
		opts = append(opts, number.NoSeparator())
	}

	digits := f.printer.Sprint(number.Decimal(math.Abs(v), opts...))
	sign := ""
	if negative && v != 0 && digits != zeroOf(digits) {
		sign = "-"
	}
	return sign + p.Prefix + digits + p.Suffix
}

// zeroOf returns digits with every digit replaced by 0, so a value that
// rounds to zero is not printed with a sign.
func zeroOf(digits string) string {
	return strings.Map(func(r rune) rune {
		if r >= '1' && r <= '9' {
			return '0'
		}
		return r
	}, digits)
}

// FormatValue formats a number or a numeric string. It reports false when v
// is not numeric.
func (f *Formatter) FormatValue(v datum.Value, layout string) (string, bool) {
	if n, ok := Number(v); ok {
		return f.Format(n, layout), true
	}
	return "", false
}

// Number returns v as a float: numbers directly and strings when they parse
// as a float.
func Number(v datum.Value) (float64, bool) {
	if n, ok := v.AsFloat64(); ok {
		return n, true
	}
	if s, ok := v.AsString(); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil {
			return n, true
		}
	}
	return 0, false
}
