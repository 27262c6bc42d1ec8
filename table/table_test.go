package table

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/crossfilter/datum"
)

func TestCellTooltip(t *testing.T) {
	d := New(nil)

	tests := []struct {
		name  string
		field string
		value datum.Value
		want  string
	}{
		{"selected on", "__selected__", datum.String("on"), "On (selected)"},
		{"selected neutral", "__selected__", datum.String("neutral"), "Neutral (no selection applied)"},
		{"selected garbage", "__selected__", datum.String("maybe"), ""},
		{"comparator", "Sales__highlightComparator", datum.String("lt"), "Less than (highlight is below the value)"},
		{"highlight status", "Sales__highlightStatus", datum.String("off"), "Off (not highlighted)"},
		{"too long", "Notes", datum.String("{...}"), "The value is too long to display. Inspect the dataset for the full value."},
		{"date", "When", datum.Time(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)), "Fri, 01 Mar 2024 12:00:00 GMT"},
		{"nan", "Sales", datum.Float(math.NaN()), "NaN"},
		{"negative infinity", "Sales", datum.Float(math.Inf(-1)), "-Infinity"},
		{"number", "Sales", datum.Float(12.5), "12.5"},
		{"text", "Region", datum.String("North"), "North"},
		{"object", "Nested", datum.Map(datum.Document{"__row__": datum.Int(1)}), "{\n  \"__row__\": \"[Present]\"\n}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.CellTooltip(tt.field, tt.value))
		})
	}
}

func TestColumnHeaderTooltip(t *testing.T) {
	d := New(nil)

	tests := []struct {
		column string
		want   string
	}{
		{"__row__", "__row__ is the zero-based row number of the dataset."},
		{"__identity__", "__identity__ is the host identity of the row."},
		{"Sales__highlight", "Highlighted value of Sales."},
		{"Region", "Region"},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			assert.Equal(t, tt.want, d.ColumnHeaderTooltip(tt.column))
		})
	}

	assert.Contains(t, d.ColumnHeaderTooltip("__selected__"), "On (selected)")
	assert.Contains(t, d.ColumnHeaderTooltip("Sales__highlightStatus"), "Highlight status of Sales")
	assert.Contains(t, d.ColumnHeaderTooltip("Sales__highlightComparator"), "Equal (highlight equals the value)")
}

func TestColumnHeaderTooltip_UnknownReserved(t *testing.T) {
	d := New(nil, WithReservedColumns("__key__"))
	assert.Equal(t, "__key__", d.ColumnHeaderTooltip("__key__"))
	assert.Equal(t, "__row__", d.ColumnHeaderTooltip("__row__"))
}

func TestBaseMeasureName(t *testing.T) {
	assert.Equal(t, "Sales", BaseMeasureName("Sales__highlightComparator"))
	assert.Equal(t, "Sales", BaseMeasureName("Sales__highlight"))
	assert.Equal(t, "Sales", BaseMeasureName("Sales"))
}

func TestPlaceholders(t *testing.T) {
	p := New(nil).Placeholders()
	assert.Equal(t, "Infinity", p.Infinity)
	assert.Equal(t, "[Present]", p.KeywordPresent)
}
