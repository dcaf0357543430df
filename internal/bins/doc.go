// Package bins implements the stratified binning and weighted selection
// engine.
//
// A Collection is built over a fixed, ordered set of variables (the
// dimensions). Units are assigned with one value per dimension; each value
// is resolved to a partition index and the unit lands in the Bin for that
// combination of indices. Units with any out-of-range value are excluded
// as a whole and, when tracking is enabled, recorded with their values.
//
// # Index structure
//
// Bins live in a nested index with one level per dimension. Every level is
// a Node: a mapping node holds children keyed by partition index, a bin
// node holds the Bin. Paths are created lazily on first assignment and are
// never removed, so a path exists iff some unit was assigned to it.
//
// # Selection
//
// SelectBin walks from the root to a leaf, drawing one key per level with
// probability proportional to its weight. Weights are either
// representative (the unit count below each key) or prescribed per
// dimension by the caller. SelectUnits repeats the walk k times, groups
// the draws by bin and samples each bin without replacement.
//
// All randomness comes from the *rand.Rand passed in. Keys are always
// visited in ascending index order and bin groups in ascending path order,
// so a given seed and population always yield the same sample.
//
// A Collection is not safe for concurrent use. Callers that assign from
// several goroutines must serialise access themselves.
package bins
