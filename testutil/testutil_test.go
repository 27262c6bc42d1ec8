package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/crossfilter/datum"
	"github.com/hupe1980/crossfilter/identity"
	"github.com/hupe1980/crossfilter/selection"
)

var _ selection.Host = (*Host)(nil)

func TestDataset(t *testing.T) {
	ds := Dataset(t)
	assert.Equal(t, 3, ds.Len())
	id, ok := ds.IdentityAt(1)
	require.True(t, ok)
	assert.Equal(t, "B", id.Key())
}

func TestNumberedDataset(t *testing.T) {
	ds := NumberedDataset(t, 10)
	assert.Equal(t, 10, ds.Len())
	assert.Equal(t, []string{"r2", "r3"}, RowKeys(2, 4).Keys())
	assert.Equal(t, 2, ds.Match(datum.Document{"group": datum.String("g1")}).Cardinality())
}

func TestHost(t *testing.T) {
	ctx := context.Background()
	h := NewHost("A")
	assert.Equal(t, []string{"A"}, h.Current().Keys())

	require.NoError(t, h.Select(ctx, identity.NewSet(identity.Key("B")), true))
	assert.Equal(t, []string{"B"}, h.Current().Keys())
	assert.True(t, h.LastMulti())

	h.FailWith(errors.New("rejected"))
	assert.Error(t, h.Clear(ctx))
	assert.Equal(t, []string{"B"}, h.Current().Keys())
	assert.Equal(t, 1, h.Selects())
	assert.Equal(t, 1, h.Clears())

	assert.True(t, h.AllowInteractions())
	h.BlockInteractions(true)
	assert.False(t, h.AllowInteractions())
}

func TestBuilder(t *testing.T) {
	ds := Dataset(t)
	f, _ := ds.Field("cat")
	id := Builder{Dataset: ds}.NewIdentity().WithCategory(f, 1).WithMeasure("Sum(val)").Build()
	assert.Equal(t, "cat=y|Sum(val)", id.Key())
}

func TestRandomRows(t *testing.T) {
	a, b := RandomRows(7, 20), RandomRows(7, 20)
	for i := range a {
		assert.Equal(t, a[i].Values["score"], b[i].Values["score"])
	}
}
