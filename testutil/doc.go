// Package testutil provides testing utilities for mdarena.
//
// This package is intended for use in tests and benchmarks only.
//
// # Instrumented Allocation
//
//	a := testutil.NewAllocator(nil)
//	a.FailOn(2) // fail the second Allocate call
//	b, err := mdarena.Alloc(dims, 8, 8, mdarena.WithAllocator(a))
//	...
//	require.NoError(t, a.CheckLeaks())
//
// # Random Shapes
//
//	rng := testutil.NewRNG(seed)
//	dims := rng.Shape(5, 6) // rank 1..5, extents 1..6
package testutil
