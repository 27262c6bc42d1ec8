package resolve

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/crossfilter/dataset"
	"github.com/hupe1980/crossfilter/datum"
	"github.com/hupe1980/crossfilter/identity"
)

func newDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New([]dataset.Row{
		{Index: 0, Identity: identity.Key("A"), Values: datum.Document{"cat": datum.String("x"), "val": datum.Int(10)}},
		{Index: 1, Identity: identity.Key("B"), Values: datum.Document{"cat": datum.String("y"), "val": datum.Int(20)}},
		{Index: 2, Identity: identity.Key("C"), Values: datum.Document{"cat": datum.String("z"), "val": datum.Int(30)}},
	}, dataset.Fields{
		"cat": {Name: "cat", Role: dataset.RoleColumn, Type: dataset.TypeText},
		"val": {Name: "val", Role: dataset.RoleMeasure, Type: dataset.TypeNumeric, QueryName: "Sum(val)"},
	})
	require.NoError(t, err)
	return ds
}

func rowTag(i int) datum.Document {
	return datum.Document{datum.RowKey: datum.Int(int64(i))}
}

func TestResolve_EmptyDataClears(t *testing.T) {
	r := New()
	ds := newDataset(t)

	assert.Nil(t, r.Identities(ds, nil))
	assert.Nil(t, r.Identities(ds, []datum.Document{}))
}

func TestResolve_MetadataMatchSingleColumn(t *testing.T) {
	r := New()
	res := r.Resolve(newDataset(t), []datum.Document{{"cat": datum.String("y")}})

	require.NotNil(t, res.Identities)
	assert.Equal(t, []string{"B"}, res.Identities.Keys())
	assert.Equal(t, "metadata-match", res.Strategy)
}

func TestResolve_DirectTag(t *testing.T) {
	r := New()
	ds := newDataset(t)

	res := r.Resolve(ds, []datum.Document{{datum.IdentityKey: datum.ID(identity.Key("C")), "cat": datum.String("x")}})
	assert.Equal(t, "direct-tag", res.Strategy)
	assert.Equal(t, []string{"C"}, res.Identities.Keys())

	// A token from another generation never resolves directly.
	res = r.Resolve(ds, []datum.Document{{datum.IdentityKey: datum.ID(identity.Key("stale")), "cat": datum.String("x")}})
	assert.Equal(t, "metadata-match", res.Strategy)
	assert.Equal(t, []string{"A"}, res.Identities.Keys())
}

func TestResolve_BatchTagsKeepTagOrder(t *testing.T) {
	r := New()
	ds := newDataset(t)

	tests := []struct {
		name string
		rows []int
		want []string
	}{
		{"single", []int{1}, []string{"B"}},
		{"ordered", []int{0, 1}, []string{"A", "B"}},
		{"reversed", []int{2, 0}, []string{"C", "A"}},
		{"deduplicated", []int{1, 1, 0}, []string{"B", "A"}},
		{"every row", []int{2, 1, 0}, []string{"C", "B", "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]datum.Document, len(tt.rows))
			for i, row := range tt.rows {
				data[i] = rowTag(row)
			}
			res := r.Resolve(ds, data)
			require.NotNil(t, res.Identities)
			assert.Equal(t, "batch-tags", res.Strategy)
			assert.Equal(t, tt.want, res.Identities.Keys())
		})
	}
}

func TestResolve_BatchTagsRequireEveryTag(t *testing.T) {
	r := New()
	res := r.Resolve(newDataset(t), []datum.Document{
		{datum.RowKey: datum.Int(0), "cat": datum.String("z")},
		{"cat": datum.String("z")},
	})

	assert.Equal(t, "metadata-match", res.Strategy)
	assert.Equal(t, []string{"C"}, res.Identities.Keys())
}

func TestResolve_SingleTaggedDatumWithFieldsMatchesMetadata(t *testing.T) {
	r := New()
	res := r.Resolve(newDataset(t), []datum.Document{{datum.RowKey: datum.Int(0), "cat": datum.String("z")}})

	assert.Equal(t, "metadata-match", res.Strategy)
	assert.Equal(t, []string{"C"}, res.Identities.Keys())
}

func TestResolve_CoverageClears(t *testing.T) {
	r := New()
	ds := newDataset(t)

	res := r.Resolve(ds, []datum.Document{{"other": datum.Int(1)}})
	assert.Nil(t, res.Identities)
	assert.True(t, res.Covered)

	res = r.Resolve(ds, []datum.Document{
		{"cat": datum.String("x")},
		{"cat": datum.String("y")},
		{"cat": datum.String("z")},
	})
	assert.Nil(t, res.Identities)
	assert.True(t, res.Covered)
}

func TestResolve_RetryOnNonMeasures(t *testing.T) {
	r := New()
	res := r.Resolve(newDataset(t), []datum.Document{{"cat": datum.String("x"), "val": datum.Float(15)}})

	require.NotNil(t, res.Identities)
	assert.Equal(t, []string{"A"}, res.Identities.Keys())
}

func TestResolve_CoercesStringNumbers(t *testing.T) {
	r := New()
	res := r.Resolve(newDataset(t), []datum.Document{{"val": datum.String(" 20 ")}})

	require.NotNil(t, res.Identities)
	assert.Equal(t, []string{"B"}, res.Identities.Keys())
}

func TestResolve_Deterministic(t *testing.T) {
	r := New()
	ds := newDataset(t)
	data := []datum.Document{{"cat": datum.String("z")}, {"cat": datum.String("x")}}

	first := r.Identities(ds, data)
	for range 10 {
		assert.Equal(t, first.Keys(), r.Identities(ds, data).Keys())
	}
	assert.Equal(t, []string{"A", "C"}, first.Keys())
}

type fakeBuilder struct{}

func (fakeBuilder) NewIdentity() IdentityBuilder { return &fakeIdentity{} }

type fakeIdentity struct {
	parts []string
}

func (f *fakeIdentity) WithCategory(field dataset.Field, row int) IdentityBuilder {
	f.parts = append(f.parts, field.Name+"#"+string(rune('0'+row)))
	return f
}

func (f *fakeIdentity) WithMeasure(queryName string) IdentityBuilder {
	f.parts = append(f.parts, queryName)
	return f
}

func (f *fakeIdentity) Build() identity.Identity {
	return identity.Key(strings.Join(f.parts, "|"))
}

func TestResolve_Synthesize(t *testing.T) {
	ds := newDataset(t)

	r := New(WithBuilder(fakeBuilder{}))
	res := r.Resolve(ds, []datum.Document{{datum.RowKey: datum.Int(1), "cat": datum.String("nomatch"), "val": datum.Int(99)}})
	require.NotNil(t, res.Identities)
	assert.Equal(t, "synthesize", res.Strategy)
	assert.Equal(t, []string{"cat#1|Sum(val)"}, res.Identities.Keys())

	r = New()
	res = r.Resolve(ds, []datum.Document{{"cat": datum.String("nomatch")}})
	require.NotNil(t, res.Identities)
	assert.True(t, res.Identities.IsEmpty())
}

func TestResolve_CustomStrategies(t *testing.T) {
	r := New(WithStrategies(DirectTag{}))
	assert.Equal(t, []string{"direct-tag"}, r.Strategies())
	assert.Nil(t, r.Identities(newDataset(t), []datum.Document{{"cat": datum.String("y")}}))
}

func TestRowIdentities(t *testing.T) {
	ds := newDataset(t)
	ids := RowIdentities(ds, []datum.Document{rowTag(2), {"cat": datum.String("x")}, rowTag(9), rowTag(2)})
	assert.Equal(t, []string{"C"}, ids.Keys())
	assert.NotNil(t, RowIdentities(ds, nil))
}

func TestCoerce(t *testing.T) {
	num := dataset.Field{Type: dataset.TypeNumeric}
	date := dataset.Field{Type: dataset.TypeDateTime}
	text := dataset.Field{Type: dataset.TypeText}

	assert.Equal(t, datum.Float(1.5), Coerce(datum.String("1.5"), num))
	assert.True(t, math.IsNaN(Coerce(datum.String("abc"), num).F64))
	assert.Equal(t, datum.Int(3), Coerce(datum.Int(3), num))

	want := datum.Time(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, datum.Equal(want, Coerce(datum.String("2024-03-01"), date)))
	assert.True(t, datum.Equal(want, Coerce(datum.Int(want.T.UnixMilli()), date)))
	assert.False(t, Coerce(datum.String("not a date"), date).IsValid())

	assert.Equal(t, datum.String("1.5"), Coerce(datum.String("1.5"), text))
}
