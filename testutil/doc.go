// Package testutil provides fixtures and fakes for crossfilter tests.
//
// This package is intended for use in tests and benchmarks only.
//
// # Fixtures
//
//	ds := testutil.Dataset(t)             // rows A, B, C: cat x/y/z, val 10/20/30
//	big := testutil.NumberedDataset(t, 60) // rows r0..r59
//
// # Fakes
//
//	host := testutil.NewHost("A")          // in-memory selection.Host
//	svc := &testutil.TooltipService{}      // records Show/Hide calls
package testutil
