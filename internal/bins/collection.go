package bins

import (
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"slices"

	"github.com/roach88/subsamplr/internal/variable"
)

// Collection is a nested index of bins over a fixed set of dimensions.
type Collection struct {
	dims   []*variable.Variable
	root   *Node
	logger *slog.Logger

	trackExclusions bool
	exclusions      map[string][]any
}

// Option configures a Collection.
type Option func(*Collection)

// WithExclusionTracking controls whether out-of-range units are recorded.
// Default: true.
func WithExclusionTracking(track bool) Option {
	return func(c *Collection) {
		c.trackExclusions = track
	}
}

// WithLogger sets the logger used for debug output. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collection) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an empty collection over dims.
func New(dims []*variable.Variable, opts ...Option) (*Collection, error) {
	if len(dims) == 0 {
		return nil, contractError("a collection requires at least one dimension")
	}
	for i, d := range dims {
		if d == nil {
			return nil, contractError("dimension %d is nil", i)
		}
	}

	c := &Collection{
		dims:            slices.Clone(dims),
		root:            newMapping(0),
		logger:          slog.Default(),
		trackExclusions: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.trackExclusions {
		c.exclusions = make(map[string][]any)
	}
	return c, nil
}

// Construct builds the variables from declarations and returns an empty
// collection over them.
func Construct(decls []variable.Declaration, opts ...Option) (*Collection, error) {
	dims, err := variable.BuildVariables(decls)
	if err != nil {
		return nil, fmt.Errorf("construct collection: %w", err)
	}
	return New(dims, opts...)
}

// Dimensions returns the collection's variables in order.
func (c *Collection) Dimensions() []*variable.Variable {
	return slices.Clone(c.dims)
}

// Root returns the top-level mapping node.
func (c *Collection) Root() *Node {
	return c.root
}

// Lookup follows a path of partition indices from the root.
func (c *Collection) Lookup(path ...int) (*Node, bool) {
	n := c.root
	for _, i := range path {
		child, ok := n.Child(i)
		if !ok {
			return nil, false
		}
		n = child
	}
	return n, true
}

// Assign places unit in the bin matching values, one value per dimension.
//
// If any value is outside its dimension's partition the unit is excluded
// entirely: it is recorded in the exclusions (when tracking is enabled)
// and no bin is touched. Assigning a unit already in the target bin is a
// no-op. A unit assigned again with different values is not checked
// against its earlier bin.
func (c *Collection) Assign(unit string, values []any) error {
	if len(values) != len(c.dims) {
		return contractError("bin assignment requires one value per dimension: got %d values for %d dimensions",
			len(values), len(c.dims))
	}

	path := make([]int, len(c.dims))
	for d, dim := range c.dims {
		i, ok := dim.Resolve(values[d])
		if !ok {
			c.logger.Debug("unit out of range",
				"unit", unit,
				"dimension", dim.Name(),
				"value", values[d])
			if c.trackExclusions {
				c.exclusions[unit] = slices.Clone(values)
			}
			return nil
		}
		path[d] = i
	}

	n := c.root
	last := len(c.dims) - 1
	for d, i := range path {
		child, ok := n.children[i]
		if !ok {
			if d == last {
				parts := make([]variable.Part, len(c.dims))
				for j, dim := range c.dims {
					parts[j] = dim.Part(path[j])
				}
				child = newLeaf(d+1, NewBin(path, parts))
			} else {
				child = newMapping(d + 1)
			}
			n.children[i] = child
		}
		n = child
	}

	if !n.bin.Assign(unit) {
		c.logger.Debug("bin already contains unit", "unit", unit, "bin", n.bin.String())
	}
	return nil
}

// Bins yields every bin in the collection in ascending path order.
func (c *Collection) Bins() iter.Seq[*Bin] {
	return c.root.Bins()
}

// CountBins is the number of bins created so far.
func (c *Collection) CountBins() int {
	n := 0
	for range c.Bins() {
		n++
	}
	return n
}

// CountUnits is the sum of the bins' unit counts.
func (c *Collection) CountUnits() int {
	return c.root.Count()
}

// CountExclusions is the number of distinct excluded units. It is zero
// when tracking is disabled.
func (c *Collection) CountExclusions() int {
	return len(c.exclusions)
}

// TracksExclusions reports whether out-of-range units are recorded.
func (c *Collection) TracksExclusions() bool {
	return c.trackExclusions
}

// Exclusions returns a copy of the excluded units and their values.
func (c *Collection) Exclusions() map[string][]any {
	out := make(map[string][]any, len(c.exclusions))
	for k, v := range c.exclusions {
		out[k] = slices.Clone(v)
	}
	return out
}

// Units returns the distinct unit identifiers held in bins, sorted.
func (c *Collection) Units() []string {
	set := make(map[string]struct{})
	for b := range c.Bins() {
		for u := range b.contents {
			set[u] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(set))
}
