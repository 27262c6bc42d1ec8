package testutil

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/crossfilter/dataset"
	"github.com/hupe1980/crossfilter/datum"
	"github.com/hupe1980/crossfilter/identity"
)

// Fields returns the field metadata of the fixture dataset: one text column
// "cat" and one numeric measure "val".
func Fields() dataset.Fields {
	return dataset.Fields{
		"cat": {Name: "cat", Role: dataset.RoleColumn, Type: dataset.TypeText},
		"val": {Name: "val", Role: dataset.RoleMeasure, Type: dataset.TypeNumeric, QueryName: "Sum(val)", Format: "#,0.00"},
	}
}

// Rows returns the three fixture rows A, B and C.
func Rows() []dataset.Row {
	return []dataset.Row{
		{Index: 0, Identity: identity.Key("A"), Values: datum.Document{"cat": datum.String("x"), "val": datum.Int(10)}},
		{Index: 1, Identity: identity.Key("B"), Values: datum.Document{"cat": datum.String("y"), "val": datum.Int(20)}},
		{Index: 2, Identity: identity.Key("C"), Values: datum.Document{"cat": datum.String("z"), "val": datum.Int(30)}},
	}
}

// Dataset builds the fixture dataset.
func Dataset(tb testing.TB) *dataset.Dataset {
	tb.Helper()
	ds, err := dataset.New(Rows(), Fields())
	require.NoError(tb, err)
	return ds
}

// Registry returns a registry with the fixture dataset published.
func Registry(tb testing.TB) *dataset.Registry {
	tb.Helper()
	return RegistryOf(tb, Rows(), Fields())
}

// RegistryOf returns a registry with rows and fields published.
func RegistryOf(tb testing.TB, rows []dataset.Row, fields dataset.Fields) *dataset.Registry {
	tb.Helper()
	r := dataset.NewRegistry(dataset.NewStaticSource(rows, fields))
	_, err := r.Publish(rows, fields)
	require.NoError(tb, err)
	return r
}

// NumberedRows returns n rows with identities r0..r(n-1), a distinct "n"
// column and a "group" column cycling through g0..g4.
func NumberedRows(n int) []dataset.Row {
	rows := make([]dataset.Row, n)
	for i := range rows {
		rows[i] = dataset.Row{
			Index:    i,
			Identity: RowKey(i),
			Values: datum.Document{
				"n":     datum.Int(int64(i)),
				"group": datum.String(fmt.Sprintf("g%d", i%5)),
			},
		}
	}
	return rows
}

// NumberedFields returns the field metadata of NumberedRows.
func NumberedFields() dataset.Fields {
	return dataset.Fields{
		"n":     {Name: "n", Role: dataset.RoleColumn, Type: dataset.TypeInteger},
		"group": {Name: "group", Role: dataset.RoleColumn, Type: dataset.TypeText, SourceIndex: 1},
	}
}

// NumberedDataset builds a dataset of NumberedRows(n).
func NumberedDataset(tb testing.TB, n int) *dataset.Dataset {
	tb.Helper()
	ds, err := dataset.New(NumberedRows(n), NumberedFields())
	require.NoError(tb, err)
	return ds
}

// RowKey returns the identity of numbered row i.
func RowKey(i int) identity.Key {
	return identity.Key(fmt.Sprintf("r%d", i))
}

// RowKeys returns the identities of numbered rows [from, to).
func RowKeys(from, to int) *identity.Set {
	s := identity.NewSet()
	for i := from; i < to; i++ {
		s.Add(RowKey(i))
	}
	return s
}

// RowTags returns one datum per index carrying only the row-index tag, the
// shape of a multi-point gesture.
func RowTags(indices ...int) []datum.Document {
	out := make([]datum.Document, len(indices))
	for i, idx := range indices {
		out[i] = datum.Document{datum.RowKey: datum.Int(int64(idx))}
	}
	return out
}

// Facet wraps datums into a facet item.
func Facet(data ...datum.Document) *datum.Item {
	return &datum.Item{Facet: data}
}

// RandomRows returns n numbered rows with a random numeric "score" in
// [0, 100), reproducible for seed.
func RandomRows(seed int64, n int) []dataset.Row {
	rng := rand.New(rand.NewSource(seed))
	rows := NumberedRows(n)
	for i := range rows {
		rows[i].Values["score"] = datum.Float(float64(rng.Intn(10000)) / 100)
	}
	return rows
}
