// Package tooltip turns rendered tooltip payloads into host display items and
// dispatches them to the host tooltip service.
package tooltip

import (
	"math"

	"golang.org/x/text/unicode/norm"

	"github.com/hupe1980/crossfilter/codec"
	"github.com/hupe1980/crossfilter/dataset"
	"github.com/hupe1980/crossfilter/datum"
	"github.com/hupe1980/crossfilter/format"
	"github.com/hupe1980/crossfilter/i18n"
)

// ScalarName is the display name of the single item built from a tooltip
// payload that is not an object.
const ScalarName = " "

// DisplayItem is one line of a host tooltip.
type DisplayItem struct {
	DisplayName string `json:"displayName"`
	Value       string `json:"value"`
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithNumberFormat toggles automatic formatting of numeric dataset fields.
func WithNumberFormat(enabled bool) Option {
	return func(r *Reconciler) { r.numberFormat = enabled }
}

// WithLocalizer sets the localizer used for placeholders and number formats.
func WithLocalizer(l *i18n.Localizer) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.localizer = l
		}
	}
}

// WithCodec sets the codec complex values are rendered with.
func WithCodec(c codec.Codec) Option {
	return func(r *Reconciler) {
		if c != nil {
			r.codec = c
		}
	}
}

// Reconciler builds display items from tooltip payloads.
type Reconciler struct {
	numberFormat bool
	localizer    *i18n.Localizer
	formatter    *format.Formatter
	codec        codec.Codec
}

// NewReconciler creates a reconciler. Number formatting is off by default.
func NewReconciler(opts ...Option) *Reconciler {
	r := &Reconciler{localizer: i18n.Default(), codec: codec.Default}
	for _, opt := range opts {
		opt(r)
	}
	r.formatter = format.New(r.localizer.Printer())
	return r
}

// Items returns one display item per tooltip entry, in key order. Reserved
// keys are kept and shown with a placeholder.
func (r *Reconciler) Items(tooltip datum.Value, fields dataset.Fields) []DisplayItem {
	doc, ok := tooltip.AsMap()
	if !ok {
		doc = datum.Document{ScalarName: datum.String(tooltip.Text())}
	}

	eligible := r.Eligible(doc, fields)
	entries := datum.StripReserved(doc, false)
	out := make([]DisplayItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, DisplayItem{DisplayName: e.Key, Value: r.render(e, eligible)})
	}
	return out
}

// Eligible returns the fields of doc whose values get the field's format
// string applied, keyed by tooltip key.
func (r *Reconciler) Eligible(doc datum.Document, fields dataset.Fields) map[string]dataset.Field {
	if !r.numberFormat || len(fields) == 0 {
		return nil
	}
	byName := make(map[string]dataset.Field, len(fields))
	for _, f := range fields {
		byName[norm.NFC.String(f.Name)] = f
	}

	out := make(map[string]dataset.Field)
	for k, v := range doc {
		f, ok := byName[norm.NFC.String(k)]
		if !ok || !f.Type.IsNumber() {
			continue
		}
		if n, ok := format.Number(v); ok && !math.IsNaN(n) && !math.IsInf(n, 0) {
			out[k] = f
		}
	}
	return out
}

func (r *Reconciler) render(e datum.Entry, eligible map[string]dataset.Field) string {
	if f, ok := eligible[e.Key]; ok {
		if s, ok := r.formatter.FormatValue(e.Value, f.Format); ok {
			return s
		}
	}
	placeholder := r.localizer.Text(i18n.SelectionKeywordPresent)
	if datum.IsReserved(e.Key) {
		return placeholder
	}
	if e.Value.IsComplex() {
		b, err := codec.Indent(r.codec, codec.Plain(datum.Redact(e.Value, placeholder)))
		if err != nil {
			return e.Value.Text()
		}
		return string(b)
	}
	return e.Value.Text()
}
