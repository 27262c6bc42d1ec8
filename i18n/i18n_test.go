package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestLocalizer_English(t *testing.T) {
	l := Default()
	assert.Equal(t, language.AmericanEnglish, l.Tag())

	assert.Equal(t, "[Present]", l.Text(SelectionKeywordPresent))
	assert.Equal(t, "The cross-filter could not be applied: boom", l.Text(WarningCrossFilterGeneral, "boom"))
	assert.Equal(t, "You can select a maximum of 50 data points at a time.", l.Text(WarningSelectionLimit, 50))
	assert.Equal(t, "Highlighted value of Sales.", l.Text(DatasetHighlightField, "Sales"))
}

func TestLocalizer_German(t *testing.T) {
	l, err := New("de-DE")
	require.NoError(t, err)
	assert.Equal(t, language.German, l.Tag())

	assert.Equal(t, "[Vorhanden]", l.Text(SelectionKeywordPresent))
	assert.Equal(t, "NaN", l.Text(TablePlaceholderNaN), "untranslated messages use English")
}

func TestLocalizer_Fallback(t *testing.T) {
	l, err := New("fr-FR")
	require.NoError(t, err)
	assert.Equal(t, language.AmericanEnglish, l.Tag())

	_, err = New("not a locale!")
	assert.Error(t, err)
}

func TestCatalogsComplete(t *testing.T) {
	for k := range german {
		_, ok := english[k]
		assert.True(t, ok, "%s has no English text", k)
	}
}
