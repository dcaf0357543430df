// Package variable defines the dimensions along which units are binned.
//
// A Variable is a named, ordered partition of a value range. Each element
// of the partition is a Part, one of three variants:
//
//   - Interval: half-open [lo, hi) over exact rationals (continuous variables)
//   - Bucket: a fixed tuple of integer values (discrete variables)
//   - Category: a single scalar (categorical variables)
//
// Index i of a variable always identifies Parts()[i]. Parts are mutually
// exclusive, which is checked once at construction; after that a Variable
// is immutable and Resolve never re-validates.
//
// Partitions are usually generated from declarations:
//
//	vars, err := variable.BuildVariables([]variable.Declaration{
//	    {Name: "year", Class: variable.ClassDiscrete, Min: 1800, Max: 1919, Discretisation: 1, BinSize: 10},
//	    {Name: "quality", Class: variable.ClassContinuous, Min: 0.6, Max: 1, BinSize: 0.1},
//	})
//
// Interval endpoints are math/big rationals so that float inputs such as
// 0.1 never drift at bin boundaries.
package variable
