package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hupe1980/crossfilter/datum"
)

func TestFormat(t *testing.T) {
	f := New(nil)

	tests := []struct {
		name   string
		v      float64
		layout string
		want   string
	}{
		{"general", 1234.5, "", "1234.5"},
		{"general keyword", 0.1, "General", "0.1"},
		{"grouping", 1234.5, "#,0.00", "1,234.50"},
		{"no grouping", 1234.4, "0", "1234"},
		{"optional decimals", 2.5, "0.##", "2.5"},
		{"percent", 0.256, "0.0%", "25.6%"},
		{"currency prefix", 5, "$#,0", "$5"},
		{"negative section", -3, "#,0;(#,0)", "(3)"},
		{"zero section", 0, `#,0;(#,0);"zero"`, "zero"},
		{"scaled", 1500000, `#,0.0,," M"`, "1.5 M"},
		{"negative sign", -12.5, "0.0", "-12.5"},
		{"rounds to zero", -0.001, "0.00", "0.00"},
		{"nan", math.NaN(), "0.00", "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Format(tt.v, tt.layout))
		})
	}
}

func TestFormat_Locale(t *testing.T) {
	f := New(message.NewPrinter(language.German))
	assert.Equal(t, "1.234,50", f.Format(1234.5, "#,0.00"))
}

func TestParsePattern(t *testing.T) {
	p := ParsePattern(`"USD "#,0.0#\%`)
	assert.Equal(t, "USD ", p.Prefix)
	assert.Equal(t, "%", p.Suffix)
	assert.True(t, p.Grouping)
	assert.True(t, p.Percent)
	assert.Equal(t, 1, p.MinFrac)
	assert.Equal(t, 2, p.MaxFrac)
}

func TestFormatValue(t *testing.T) {
	f := New(nil)

	s, ok := f.FormatValue(datum.String("1234.5"), "#,0.00")
	assert.True(t, ok)
	assert.Equal(t, "1,234.50", s)

	s, ok = f.FormatValue(datum.Int(0), "0.0")
	assert.True(t, ok)
	assert.Equal(t, "0.0", s)

	_, ok = f.FormatValue(datum.String("abc"), "0")
	assert.False(t, ok)
}
