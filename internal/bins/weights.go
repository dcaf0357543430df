package bins

import (
	"math"
)

// Weights holds optional prescribed weights, one entry per dimension. A nil
// entry falls back to representative weights for that dimension; a
// non-nil entry has one weight per part of the dimension's full partition.
type Weights [][]float64

// Weight is the weight of one populated partition index.
type Weight struct {
	Index int
	Value float64
}

// WeightTable lists the weights of a node's populated keys in ascending
// index order.
type WeightTable []Weight

// Get returns the weight for partition index i.
func (t WeightTable) Get(i int) (float64, bool) {
	for _, w := range t {
		if w.Index == i {
			return w.Value, true
		}
	}
	return 0, false
}

// Total is the sum of the weights.
func (t WeightTable) Total() float64 {
	total := 0.0
	for _, w := range t {
		total += w.Value
	}
	return total
}

// Normalize returns a copy scaled to sum to one. A zero table is returned
// unchanged.
func (t WeightTable) Normalize() WeightTable {
	total := t.Total()
	out := make(WeightTable, len(t))
	copy(out, t)
	if total == 0 {
		return out
	}
	for i := range out {
		out[i].Value /= total
	}
	return out
}

// RepresentativeWeights weights each populated key of n by the number of
// units below it.
func (c *Collection) RepresentativeWeights(n *Node, normalized bool) WeightTable {
	keys := n.Keys()
	t := make(WeightTable, len(keys))
	for i, k := range keys {
		t[i] = Weight{Index: k, Value: float64(n.children[k].Count())}
	}
	if normalized {
		return t.Normalize()
	}
	return t
}

// PrescribedWeights returns the caller's weights for the populated keys of
// n. weights must have one entry per part of the dimension n indexes; every
// weight must be non-negative, at least one nonzero, and no nonzero weight
// may fall on an index that has no units below n.
func (c *Collection) PrescribedWeights(n *Node, weights []float64, normalized bool) (WeightTable, error) {
	if n.IsBin() {
		return nil, contractError("weights are defined for mapping nodes, not bins")
	}
	dim := c.dims[n.depth]

	if len(weights) != dim.Len() {
		return nil, configError(dim.Name(), "expected %d weights, got %d", dim.Len(), len(weights))
	}

	total := 0.0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, configError(dim.Name(), "invalid weight %v at index %d", w, i)
		}
		total += w
	}
	if total == 0 {
		return nil, configError(dim.Name(), "all weights zero for dimension %s", dim.Name())
	}

	for i, w := range weights {
		if _, ok := n.children[i]; !ok && w != 0 {
			return nil, configError(dim.Name(),
				"cannot prescribe nonzero weight for empty bin: index %d (%s)", i, dim.Part(i))
		}
	}

	keys := n.Keys()
	t := make(WeightTable, len(keys))
	for i, k := range keys {
		t[i] = Weight{Index: k, Value: weights[k]}
	}
	if normalized {
		return t.Normalize(), nil
	}
	return t, nil
}

// levelWeights picks representative or prescribed weights for n.
func (c *Collection) levelWeights(n *Node, weights Weights) (WeightTable, error) {
	if weights == nil || weights[n.depth] == nil {
		return c.RepresentativeWeights(n, true), nil
	}
	return c.PrescribedWeights(n, weights[n.depth], true)
}
