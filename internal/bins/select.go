package bins

import (
	"maps"
	"math/rand/v2"
	"slices"
	"strconv"
)

// SelectBin draws one bin by weighted descent from the root. At each level
// one key is drawn with probability proportional to its weight: prescribed
// if weights has a non-nil entry for that dimension, representative
// otherwise. weights may be nil.
func (c *Collection) SelectBin(rng *rand.Rand, weights Weights) (*Bin, error) {
	if err := c.checkSelection(rng, weights); err != nil {
		return nil, err
	}
	return c.selectBin(rng, weights)
}

// SelectUnits draws k distinct units. It performs k independent bin
// selections, then samples each selected bin without replacement as many
// times as it was drawn. The result is sorted.
//
// If a bin is drawn more often than it has units the selection fails with
// a capacity error rather than returning fewer than k units.
func (c *Collection) SelectUnits(rng *rand.Rand, k int, weights Weights) ([]string, error) {
	if k < 0 {
		return nil, contractError("sample size must not be negative: %d", k)
	}
	if err := c.checkSelection(rng, weights); err != nil {
		return nil, err
	}

	draws := make(map[*Bin]int)
	var selected []*Bin
	for range k {
		b, err := c.selectBin(rng, weights)
		if err != nil {
			return nil, err
		}
		if draws[b] == 0 {
			selected = append(selected, b)
		}
		draws[b]++
	}

	// Sample bins in path order so the draw sequence does not depend on
	// selection order.
	slices.SortFunc(selected, func(a, b *Bin) int {
		return slices.Compare(a.path, b.path)
	})

	result := make(map[string]struct{}, k)
	for _, b := range selected {
		n := draws[b]
		if n > b.Count() {
			return nil, newCapacityError(b, n)
		}
		for _, u := range sampleWithoutReplacement(rng, b.Units(), n) {
			result[u] = struct{}{}
		}
	}

	// Only reachable when one identifier was assigned to two bins.
	if len(result) < k {
		return nil, &Error{
			Code:    ErrCodeCapacity,
			Message: "selected units overlap across bins; sample is short",
			Details: map[string]string{
				"requested": strconv.Itoa(k),
				"distinct":  strconv.Itoa(len(result)),
			},
		}
	}

	return slices.Sorted(maps.Keys(result)), nil
}

func (c *Collection) checkSelection(rng *rand.Rand, weights Weights) error {
	if rng == nil {
		return contractError("selection requires a random source")
	}
	if weights != nil && len(weights) != len(c.dims) {
		return configError("", "weights must have one entry per dimension: got %d for %d dimensions",
			len(weights), len(c.dims))
	}
	return nil
}

func (c *Collection) selectBin(rng *rand.Rand, weights Weights) (*Bin, error) {
	n := c.root
	if len(n.children) == 0 {
		return nil, &Error{Code: ErrCodeCapacity, Message: "cannot select from an empty collection"}
	}
	for !n.IsBin() {
		t, err := c.levelWeights(n, weights)
		if err != nil {
			return nil, err
		}
		n = n.children[draw(rng, t)]
	}
	return n.bin, nil
}

// draw picks an index from t with probability proportional to its weight,
// using exactly one Float64 from rng.
func draw(rng *rand.Rand, t WeightTable) int {
	u := rng.Float64() * t.Total()
	acc := 0.0
	last := -1
	for _, w := range t {
		if w.Value <= 0 {
			continue
		}
		last = w.Index
		acc += w.Value
		if u < acc {
			return w.Index
		}
	}
	// Rounding can leave u just above the final sum.
	return last
}

// sampleWithoutReplacement returns n elements of units chosen by a partial
// Fisher-Yates shuffle. units is reordered in place.
func sampleWithoutReplacement(rng *rand.Rand, units []string, n int) []string {
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(units)-i)
		units[i], units[j] = units[j], units[i]
	}
	return units[:n]
}
