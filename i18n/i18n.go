// Package i18n provides the localized messages shown by interactivity
// consumers: cross-filter warnings, redaction placeholders and the data table
// tooltips.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a message.
type Key string

const (
	WarningCrossFilterGeneral Key = "Text_Warning_Invalid_Cross_Filter_General_Error"
	WarningSelectionLimit     Key = "Text_Warning_Selection_Limit_Exceeded"
	SelectionKeywordPresent   Key = "Selection_KW_Present"

	SelectedNeutral Key = "Pivot_Debug_SelectedNeutral"
	SelectedOn      Key = "Pivot_Debug_SelectedOn"
	SelectedOff     Key = "Pivot_Debug_SelectedOff"

	HighlightStatusNeutral Key = "Pivot_Debug_HighlightStatusNeutral"
	HighlightStatusOn      Key = "Pivot_Debug_HighlightStatusOn"
	HighlightStatusOff     Key = "Pivot_Debug_HighlightStatusOff"

	HighlightComparatorEq  Key = "Pivot_Debug_HighlightComparatorEq"
	HighlightComparatorLt  Key = "Pivot_Debug_HighlightComparatorLt"
	HighlightComparatorGt  Key = "Pivot_Debug_HighlightComparatorGt"
	HighlightComparatorNeq Key = "Pivot_Debug_HighlightComparatorNeq"

	ReferDocumentation Key = "Pivot_Debug_Refer_Documentation"

	DatasetSelectedName             Key = "Pivot_Dataset_SelectedName"
	DatasetRowIdentifier            Key = "Pivot_Dataset_RowIdentifier"
	DatasetIdentityName             Key = "Pivot_Dataset_IdentityName"
	DatasetUnknown                  Key = "Pivot_Dataset_Unknown"
	DatasetHighlightField           Key = "Pivot_Dataset_HighlightField"
	DatasetHighlightStatusField     Key = "Pivot_Dataset_HighlightStatusField"
	DatasetHighlightComparatorField Key = "Pivot_Dataset_HighlightComparatorField"

	TableTooltipTooLong      Key = "Table_Tooltip_TooLong"
	TablePlaceholderInfinity Key = "Table_Placeholder_Infinity"
	TablePlaceholderNaN      Key = "Table_Placeholder_NaN"
	TablePlaceholderTooLong  Key = "Table_Placeholder_TooLong"
	TablePlaceholderObject   Key = "Table_Placeholder_Object"
	TablePlaceholderCircular Key = "Table_Placeholder_Circular"
)

var english = map[Key]string{
	WarningCrossFilterGeneral: "The cross-filter could not be applied: %[1]s",
	WarningSelectionLimit:     "You can select a maximum of %[1]d data points at a time.",
	SelectionKeywordPresent:   "[Present]",

	SelectedNeutral: "Neutral (no selection applied)",
	SelectedOn:      "On (selected)",
	SelectedOff:     "Off (not selected)",

	HighlightStatusNeutral: "Neutral (no highlight applied)",
	HighlightStatusOn:      "On (highlighted)",
	HighlightStatusOff:     "Off (not highlighted)",

	HighlightComparatorEq:  "Equal (highlight equals the value)",
	HighlightComparatorLt:  "Less than (highlight is below the value)",
	HighlightComparatorGt:  "Greater than (highlight is above the value)",
	HighlightComparatorNeq: "Not equal (no highlight for the value)",

	ReferDocumentation: "Refer to the documentation for more details.",

	DatasetSelectedName:             "%[1]s is the selection status of the row: %[2]s, %[3]s or %[4]s. %[5]s",
	DatasetRowIdentifier:            "%[1]s is the zero-based row number of the dataset.",
	DatasetIdentityName:             "%[1]s is the host identity of the row.",
	DatasetUnknown:                  "%[1]s",
	DatasetHighlightField:           "Highlighted value of %[1]s.",
	DatasetHighlightStatusField:     "Highlight status of %[1]s: %[2]s, %[3]s or %[4]s. %[5]s",
	DatasetHighlightComparatorField: "Highlight comparator of %[1]s: %[2]s, %[3]s, %[4]s or %[5]s. %[6]s",

	TableTooltipTooLong:      "The value is too long to display. Inspect the dataset for the full value.",
	TablePlaceholderInfinity: "Infinity",
	TablePlaceholderNaN:      "NaN",
	TablePlaceholderTooLong:  "{...}",
	TablePlaceholderObject:   "[object]",
	TablePlaceholderCircular: "[circular]",
}

var german = map[Key]string{
	WarningCrossFilterGeneral: "Der Kreuzfilter konnte nicht angewendet werden: %[1]s",
	WarningSelectionLimit:     "Es können maximal %[1]d Datenpunkte gleichzeitig ausgewählt werden.",
	SelectionKeywordPresent:   "[Vorhanden]",

	SelectedNeutral: "Neutral (keine Auswahl)",
	SelectedOn:      "Ein (ausgewählt)",
	SelectedOff:     "Aus (nicht ausgewählt)",

	HighlightStatusNeutral: "Neutral (keine Hervorhebung)",
	HighlightStatusOn:      "Ein (hervorgehoben)",
	HighlightStatusOff:     "Aus (nicht hervorgehoben)",

	ReferDocumentation: "Weitere Details finden Sie in der Dokumentation.",
}

// Supported lists the locales with a catalog, preferred first.
var Supported = []language.Tag{language.AmericanEnglish, language.German}

var matcher = language.NewMatcher(Supported)

// Localizer renders messages for one locale.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// New creates a localizer for locale (a BCP 47 tag such as "en-US"). Unknown
// locales fall back to English; messages without a translation use their
// English text.
func New(locale string) (*Localizer, error) {
	requested := language.AmericanEnglish
	if locale != "" {
		t, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("i18n: parse locale %q: %w", locale, err)
		}
		requested = t
	}
	_, idx, _ := matcher.Match(requested)
	tag := Supported[idx]

	b := catalog.NewBuilder(catalog.Fallback(language.AmericanEnglish))
	if err := register(b, language.AmericanEnglish, english); err != nil {
		return nil, err
	}
	if err := register(b, language.German, withDefaults(german, english)); err != nil {
		return nil, err
	}

	return &Localizer{tag: tag, printer: message.NewPrinter(tag, message.Catalog(b))}, nil
}

// Default returns an English localizer.
func Default() *Localizer {
	l, err := New("")
	if err != nil {
		panic(err)
	}
	return l
}

func register(b *catalog.Builder, tag language.Tag, msgs map[Key]string) error {
	for k, msg := range msgs {
		if err := b.SetString(tag, string(k), msg); err != nil {
			return fmt.Errorf("i18n: register %s/%s: %w", tag, k, err)
		}
	}
	return nil
}

// withDefaults returns msgs completed with the entries of defaults it lacks.
func withDefaults(msgs, defaults map[Key]string) map[Key]string {
	out := make(map[Key]string, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range msgs {
		out[k] = v
	}
	return out
}

// Tag returns the matched locale.
func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// Text renders the message key with args.
func (l *Localizer) Text(key Key, args ...any) string {
	return l.printer.Sprintf(string(key), args...)
}

// Printer returns the locale-aware printer, for number formatting.
func (l *Localizer) Printer() *message.Printer {
	return l.printer
}
