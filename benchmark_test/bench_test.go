package benchmark_test

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/crossfilter"
	"github.com/hupe1980/crossfilter/config"
	"github.com/hupe1980/crossfilter/dataset"
	"github.com/hupe1980/crossfilter/datum"
	"github.com/hupe1980/crossfilter/headless"
	"github.com/hupe1980/crossfilter/resolve"
	"github.com/hupe1980/crossfilter/testutil"
)

var sizes = []int{1_000, 10_000, 100_000}

func scoredFields() dataset.Fields {
	fields := testutil.NumberedFields()
	fields["score"] = dataset.Field{Name: "score", Role: dataset.RoleMeasure, Type: dataset.TypeNumeric, QueryName: "Sum(score)"}
	return fields
}

func scoredDataset(b *testing.B, n int) *dataset.Dataset {
	b.Helper()
	ds, err := dataset.New(testutil.RandomRows(42, n), scoredFields())
	require.NoError(b, err)
	return ds
}

// ============================================================================
// Resolution Benchmarks
// ============================================================================

// BenchmarkResolve measures each resolution tier across dataset sizes.
func BenchmarkResolve(b *testing.B) {
	for _, n := range sizes {
		ds := scoredDataset(b, n)
		r := resolve.New()

		cases := []struct {
			name string
			data []datum.Document
		}{
			{"direct-tag", []datum.Document{{datum.IdentityKey: datum.ID(testutil.RowKey(n / 2))}}},
			{"batch-tags", testutil.RowTags(1, n/3, n/2, n-1)},
			{"metadata-match", []datum.Document{{"group": datum.String("g3"), "n": datum.Int(13)}}},
			{"metadata-match-wide", []datum.Document{{"group": datum.String("g3")}}},
		}

		for _, tc := range cases {
			b.Run(tc.name+"/n="+strconv.Itoa(n), func(b *testing.B) {
				b.ReportAllocs()
				for b.Loop() {
					_ = r.Resolve(ds, tc.data)
				}
			})
		}
	}
}

// ============================================================================
// Cross-Filter Benchmarks
// ============================================================================

// BenchmarkEvaluate measures headless expression filtering.
func BenchmarkEvaluate(b *testing.B) {
	ctx := context.Background()
	ev := headless.New(nil)

	for _, n := range sizes {
		ds := scoredDataset(b, n)
		for _, expr := range []string{"datum.score > 50", "datum.group == 'g1' && datum.score < 25"} {
			b.Run(fmt.Sprintf("n=%d/%s", n, expr), func(b *testing.B) {
				b.ReportAllocs()
				for b.Loop() {
					if _, err := ev.Evaluate(ctx, expr, ds, nil); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

// ============================================================================
// Interaction Benchmarks
// ============================================================================

// BenchmarkInteraction measures a full gesture: resolution, admission and
// commit acknowledgement.
func BenchmarkInteraction(b *testing.B) {
	settings := config.Default()
	settings.EnableSelection = true
	ctx := context.Background()

	for _, n := range sizes {
		b.Run("n="+strconv.Itoa(n), func(b *testing.B) {
			reg := testutil.RegistryOf(b, testutil.RandomRows(42, n), scoredFields())
			xf, err := crossfilter.New(reg, testutil.NewHost(), crossfilter.WithSettings(settings))
			require.NoError(b, err)
			defer xf.Close()

			ev := crossfilter.Event{Type: "click", Modifiers: crossfilter.Modifiers{Ctrl: true}}
			it := testutil.Facet(testutil.RowTags(0, n/4, n/2)...)

			b.ReportAllocs()
			for b.Loop() {
				res, err := xf.HandleInteractionEvent(ctx, ev, it, nil)
				if err != nil {
					b.Fatal(err)
				}
				if res.Ack != nil {
					if err := <-res.Ack; err != nil {
						b.Fatal(err)
					}
				}
			}
		})
	}
}
