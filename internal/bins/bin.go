package bins

import (
	"slices"
	"strings"

	"github.com/roach88/subsamplr/internal/variable"
)

// Bin holds the units sharing one part in every dimension.
type Bin struct {
	path     []int
	parts    []variable.Part
	contents map[string]struct{}
}

// NewBin creates an empty bin for the given partition indices and parts,
// one of each per dimension.
func NewBin(path []int, parts []variable.Part) *Bin {
	return &Bin{
		path:     slices.Clone(path),
		parts:    slices.Clone(parts),
		contents: make(map[string]struct{}),
	}
}

// Path returns the partition index of the bin in each dimension.
func (b *Bin) Path() []int { return slices.Clone(b.path) }

// Parts returns the bin's defining parts, one per dimension.
func (b *Bin) Parts() []variable.Part { return slices.Clone(b.parts) }

// Count is the number of units in the bin.
func (b *Bin) Count() int { return len(b.contents) }

// Contains reports whether unit has been assigned to the bin.
func (b *Bin) Contains(unit string) bool {
	_, ok := b.contents[unit]
	return ok
}

// Assign adds unit to the bin. It reports false, and changes nothing, if
// the unit is already present.
func (b *Bin) Assign(unit string) bool {
	if b.Contains(unit) {
		return false
	}
	b.contents[unit] = struct{}{}
	return true
}

// Units returns the bin's unit identifiers in ascending order.
func (b *Bin) Units() []string {
	units := make([]string, 0, len(b.contents))
	for u := range b.contents {
		units = append(units, u)
	}
	slices.Sort(units)
	return units
}

func (b *Bin) String() string {
	labels := make([]string, len(b.parts))
	for i, p := range b.parts {
		labels[i] = p.String()
	}
	return strings.Join(labels, " x ")
}
