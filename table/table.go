// Package table describes dataset cells and column headers for tabular
// display, with localized explanations of the interactivity columns.
package table

import (
	"math"
	"slices"
	"strings"

	"github.com/hupe1980/crossfilter/codec"
	"github.com/hupe1980/crossfilter/datum"
	"github.com/hupe1980/crossfilter/highlight"
	"github.com/hupe1980/crossfilter/i18n"
	"github.com/hupe1980/crossfilter/selection"
)

// utcLayout renders dates the way a browser's toUTCString does.
const utcLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// DefaultReservedColumns are the columns that get a reserved column
// description in their header.
var DefaultReservedColumns = []string{datum.SelectedKey, datum.RowKey, datum.IdentityKey}

// Placeholders are the localized texts a table renderer substitutes for
// values it cannot display.
type Placeholders struct {
	Infinity        string `json:"placeholderInfinity"`
	NaN             string `json:"placeholderNaN"`
	TooLong         string `json:"placeholderTooLong"`
	SelectedNeutral string `json:"selectedNeutral"`
	SelectedOn      string `json:"selectedOn"`
	SelectedOff     string `json:"selectedOff"`
	KeywordPresent  string `json:"selectionKeywordPresent"`
}

// Option configures a Describer.
type Option func(*Describer)

// WithReservedColumns replaces DefaultReservedColumns.
func WithReservedColumns(cols ...string) Option {
	return func(d *Describer) { d.reserved = cols }
}

// Describer renders cell and header tooltips for one locale.
type Describer struct {
	l        *i18n.Localizer
	reserved []string
}

// New creates a describer. A nil localizer selects English.
func New(l *i18n.Localizer, opts ...Option) *Describer {
	if l == nil {
		l = i18n.Default()
	}
	d := &Describer{l: l, reserved: DefaultReservedColumns}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Placeholders returns the localized placeholder texts.
func (d *Describer) Placeholders() Placeholders {
	return Placeholders{
		Infinity:        d.l.Text(i18n.TablePlaceholderInfinity),
		NaN:             d.l.Text(i18n.TablePlaceholderNaN),
		TooLong:         d.l.Text(i18n.TablePlaceholderTooLong),
		SelectedNeutral: d.l.Text(i18n.SelectedNeutral),
		SelectedOn:      d.l.Text(i18n.SelectedOn),
		SelectedOff:     d.l.Text(i18n.SelectedOff),
		KeywordPresent:  d.l.Text(i18n.SelectionKeywordPresent),
	}
}

// CellTooltip returns the tooltip for the cell of column field holding value.
func (d *Describer) CellTooltip(field string, value datum.Value) string {
	switch {
	case field == datum.SelectedKey:
		return d.selectionStatus(value)
	case strings.HasSuffix(field, datum.HighlightComparatorSuffix):
		return d.comparator(value)
	case strings.HasSuffix(field, datum.HighlightStatusSuffix):
		return d.highlightStatus(value)
	case d.isComplexPlaceholder(value):
		return d.l.Text(i18n.TableTooltipTooLong)
	case value.Kind == datum.KindTime:
		return value.T.UTC().Format(utcLayout)
	case value.IsNumber():
		return d.number(value)
	default:
		return d.sanitized(value)
	}
}

// ColumnHeaderTooltip returns the tooltip for the header of column.
func (d *Describer) ColumnHeaderTooltip(column string) string {
	switch {
	case slices.Contains(d.reserved, column):
		return d.reservedColumn(column)
	case strings.HasSuffix(column, datum.HighlightComparatorSuffix):
		return d.l.Text(i18n.DatasetHighlightComparatorField,
			BaseMeasureName(column),
			d.l.Text(i18n.HighlightComparatorEq),
			d.l.Text(i18n.HighlightComparatorLt),
			d.l.Text(i18n.HighlightComparatorGt),
			d.l.Text(i18n.HighlightComparatorNeq),
			d.l.Text(i18n.ReferDocumentation))
	case strings.HasSuffix(column, datum.HighlightStatusSuffix):
		return d.l.Text(i18n.DatasetHighlightStatusField,
			BaseMeasureName(column),
			d.l.Text(i18n.HighlightStatusNeutral),
			d.l.Text(i18n.HighlightStatusOn),
			d.l.Text(i18n.HighlightStatusOff),
			d.l.Text(i18n.ReferDocumentation))
	case strings.HasSuffix(column, datum.HighlightSuffix):
		return d.l.Text(i18n.DatasetHighlightField, BaseMeasureName(column))
	default:
		return column
	}
}

// BaseMeasureName strips a highlight suffix from column.
func BaseMeasureName(column string) string {
	for _, suffix := range []string{datum.HighlightComparatorSuffix, datum.HighlightStatusSuffix, datum.HighlightSuffix} {
		if base, ok := strings.CutSuffix(column, suffix); ok {
			return base
		}
	}
	return column
}

func (d *Describer) reservedColumn(column string) string {
	switch column {
	case datum.SelectedKey:
		return d.l.Text(i18n.DatasetSelectedName,
			column,
			d.l.Text(i18n.SelectedNeutral),
			d.l.Text(i18n.SelectedOn),
			d.l.Text(i18n.SelectedOff),
			d.l.Text(i18n.ReferDocumentation))
	case datum.RowKey:
		return d.l.Text(i18n.DatasetRowIdentifier, column)
	case datum.IdentityKey:
		return d.l.Text(i18n.DatasetIdentityName, column)
	default:
		return d.l.Text(i18n.DatasetUnknown, column)
	}
}

func (d *Describer) selectionStatus(v datum.Value) string {
	s, _ := v.AsString()
	st, err := selection.ParseStatus(s)
	if err != nil {
		return ""
	}
	switch st {
	case selection.StatusOn:
		return d.l.Text(i18n.SelectedOn)
	case selection.StatusOff:
		return d.l.Text(i18n.SelectedOff)
	default:
		return d.l.Text(i18n.SelectedNeutral)
	}
}

func (d *Describer) highlightStatus(v datum.Value) string {
	s, _ := v.AsString()
	st, err := selection.ParseStatus(s)
	if err != nil {
		return ""
	}
	switch st {
	case selection.StatusOn:
		return d.l.Text(i18n.HighlightStatusOn)
	case selection.StatusOff:
		return d.l.Text(i18n.HighlightStatusOff)
	default:
		return d.l.Text(i18n.HighlightStatusNeutral)
	}
}

func (d *Describer) comparator(v datum.Value) string {
	s, _ := v.AsString()
	c, err := highlight.ParseComparator(s)
	if err != nil {
		return ""
	}
	switch c {
	case highlight.Equal:
		return d.l.Text(i18n.HighlightComparatorEq)
	case highlight.Less:
		return d.l.Text(i18n.HighlightComparatorLt)
	case highlight.Greater:
		return d.l.Text(i18n.HighlightComparatorGt)
	default:
		return d.l.Text(i18n.HighlightComparatorNeq)
	}
}

func (d *Describer) isComplexPlaceholder(v datum.Value) bool {
	s, ok := v.AsString()
	if !ok {
		return false
	}
	return s == d.l.Text(i18n.TablePlaceholderTooLong) ||
		s == d.l.Text(i18n.TablePlaceholderObject) ||
		s == d.l.Text(i18n.TablePlaceholderCircular)
}

func (d *Describer) number(v datum.Value) string {
	f, _ := v.AsFloat64()
	switch {
	case math.IsNaN(f):
		return d.l.Text(i18n.TablePlaceholderNaN)
	case math.IsInf(f, 1):
		return d.l.Text(i18n.TablePlaceholderInfinity)
	case math.IsInf(f, -1):
		return "-" + d.l.Text(i18n.TablePlaceholderInfinity)
	default:
		return v.Text()
	}
}

func (d *Describer) sanitized(v datum.Value) string {
	if !v.IsComplex() {
		return v.Text()
	}
	redacted := datum.Redact(v, d.l.Text(i18n.SelectionKeywordPresent))
	b, err := codec.Indent(codec.Default, codec.Plain(redacted))
	if err != nil {
		return v.Text()
	}
	return string(b)
}
