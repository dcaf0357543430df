package variable

import (
	"math/big"
	"slices"
)

// Variable is a named dimension with an ordered, immutable partition.
type Variable struct {
	name      string
	class     Class
	valueType ValueType
	partition []Part
}

// NewContinuous creates a continuous variable from interval endpoint pairs.
// Intervals must not overlap.
func NewContinuous(name string, t ValueType, endpoints [][2]*big.Rat) (*Variable, error) {
	t, err := resolveType(name, ClassContinuous, t)
	if err != nil {
		return nil, err
	}

	parts := make([]Part, 0, len(endpoints))
	intervals := make([]Interval, 0, len(endpoints))
	for _, ep := range endpoints {
		iv, err := NewInterval(ep[0], ep[1])
		if err != nil {
			return nil, &ConfigError{Variable: name, Message: "invalid interval", Err: err}
		}
		parts = append(parts, iv)
		intervals = append(intervals, iv)
	}

	// Overlap check on a sorted copy; partition order is kept as given.
	slices.SortFunc(intervals, func(a, b Interval) int { return a.lo.Cmp(b.lo) })
	for i := 1; i < len(intervals); i++ {
		if intervals[i-1].hi.Cmp(intervals[i].lo) > 0 {
			return nil, configErrorf(name, "intervals %s and %s overlap",
				intervals[i-1], intervals[i])
		}
	}

	return newVariable(name, ClassContinuous, t, parts)
}

// NewDiscrete creates a discrete variable from bucket contents.
// No value may appear in two buckets.
func NewDiscrete(name string, t ValueType, contents [][]int64) (*Variable, error) {
	t, err := resolveType(name, ClassDiscrete, t)
	if err != nil {
		return nil, err
	}

	parts := make([]Part, 0, len(contents))
	owner := make(map[int64]int)
	for i, c := range contents {
		b, err := NewBucket(c)
		if err != nil {
			return nil, &ConfigError{Variable: name, Message: "invalid bucket", Err: err}
		}
		for _, v := range c {
			if j, dup := owner[v]; dup {
				return nil, configErrorf(name, "value %d appears in buckets %d and %d", v, j, i)
			}
			owner[v] = i
		}
		parts = append(parts, b)
	}

	return newVariable(name, ClassDiscrete, t, parts)
}

// NewCategorical creates a categorical variable with one part per category.
// Categories are coerced to t and must be distinct.
func NewCategorical(name string, t ValueType, categories []any) (*Variable, error) {
	t, err := resolveType(name, ClassCategorical, t)
	if err != nil {
		return nil, err
	}

	parts := make([]Part, 0, len(categories))
	for _, raw := range categories {
		v, err := CoerceScalar(t, raw)
		if err != nil {
			return nil, &ConfigError{Variable: name, Message: "invalid category", Err: err}
		}
		for _, p := range parts {
			if p.Contains(v) {
				return nil, configErrorf(name, "duplicate category %v", v)
			}
		}
		c, err := NewCategory(v)
		if err != nil {
			return nil, &ConfigError{Variable: name, Message: "invalid category", Err: err}
		}
		parts = append(parts, c)
	}

	return newVariable(name, ClassCategorical, t, parts)
}

func newVariable(name string, class Class, t ValueType, parts []Part) (*Variable, error) {
	if name == "" {
		return nil, &ConfigError{Message: "variable name must not be empty"}
	}
	if len(parts) == 0 {
		return nil, configErrorf(name, "empty partition")
	}
	return &Variable{name: name, class: class, valueType: t, partition: parts}, nil
}

func resolveType(name string, class Class, t ValueType) (ValueType, error) {
	if t == "" {
		return class.defaultType(), nil
	}
	if !t.Valid() {
		return "", configErrorf(name, "invalid value type %q", t)
	}
	return t, nil
}

func (v *Variable) Name() string { return v.name }

func (v *Variable) Class() Class { return v.class }

func (v *Variable) Type() ValueType { return v.valueType }

// Len is the number of parts in the partition.
func (v *Variable) Len() int { return len(v.partition) }

// Part returns partition element i.
func (v *Variable) Part(i int) Part { return v.partition[i] }

// Parts returns a copy of the partition.
func (v *Variable) Parts() []Part { return slices.Clone(v.partition) }

// Resolve returns the index of the first part containing value, or false
// if no part does.
func (v *Variable) Resolve(value any) (int, bool) {
	for i, p := range v.partition {
		if p.Contains(value) {
			return i, true
		}
	}
	return 0, false
}

// IndexOf looks up a part by its defining data rather than identity.
// part may be a Part of this variable's variant or its raw descriptor:
// a [2]*big.Rat endpoint pair, a []int64 bucket, or a category scalar.
func (v *Variable) IndexOf(part any) (int, bool) {
	match := func(p Part) bool { return false }

	switch d := part.(type) {
	case Interval:
		match = func(p Part) bool {
			iv, ok := p.(Interval)
			return ok && d.lo != nil && iv.equalEndpoints(d.lo, d.hi)
		}
	case [2]*big.Rat:
		if d[0] == nil || d[1] == nil {
			return 0, false
		}
		match = func(p Part) bool {
			iv, ok := p.(Interval)
			return ok && iv.equalEndpoints(d[0], d[1])
		}
	case Bucket:
		match = func(p Part) bool {
			b, ok := p.(Bucket)
			return ok && slices.Equal(b.contents, d.contents)
		}
	case []int64:
		match = func(p Part) bool {
			b, ok := p.(Bucket)
			return ok && slices.Equal(b.contents, d)
		}
	case Category:
		match = func(p Part) bool {
			c, ok := p.(Category)
			return ok && scalarEqual(c.content, d.content)
		}
	default:
		if !isScalar(part) {
			return 0, false
		}
		match = func(p Part) bool {
			c, ok := p.(Category)
			return ok && scalarEqual(c.content, part)
		}
	}

	for i, p := range v.partition {
		if match(p) {
			return i, true
		}
	}
	return 0, false
}

func (v *Variable) String() string {
	return v.name
}
