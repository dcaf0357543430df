package variable

import (
	"fmt"
	"math/big"
	"slices"
	"strings"
)

// Part is one element of a variable's partition.
type Part interface {
	// Contains reports whether value falls in this part.
	Contains(value any) bool

	// Width is the extent of the part along its variable's axis.
	Width() *big.Rat

	String() string
}

var (
	_ Part = Interval{}
	_ Part = Bucket{}
	_ Part = Category{}
)

// Interval is the half-open range [Lo, Hi) of a continuous variable.
type Interval struct {
	lo, hi *big.Rat
}

// NewInterval creates the interval [lo, hi). It requires lo < hi.
func NewInterval(lo, hi *big.Rat) (Interval, error) {
	if lo == nil || hi == nil {
		return Interval{}, fmt.Errorf("interval endpoints must not be nil")
	}
	if lo.Cmp(hi) >= 0 {
		return Interval{}, fmt.Errorf("interval endpoints must be in order but %s >= %s",
			lo.RatString(), hi.RatString())
	}
	return Interval{lo: new(big.Rat).Set(lo), hi: new(big.Rat).Set(hi)}, nil
}

// Endpoints returns copies of the lower and upper endpoints.
func (iv Interval) Endpoints() (lo, hi *big.Rat) {
	return new(big.Rat).Set(iv.lo), new(big.Rat).Set(iv.hi)
}

// Contains reports whether lo <= value < hi using exact arithmetic.
// Non-numeric values are never contained.
func (iv Interval) Contains(value any) bool {
	r, ok := toRat(value)
	if !ok {
		return false
	}
	return r.Cmp(iv.lo) >= 0 && r.Cmp(iv.hi) < 0
}

func (iv Interval) Width() *big.Rat {
	return new(big.Rat).Sub(iv.hi, iv.lo)
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s)", iv.lo.RatString(), iv.hi.RatString())
}

func (iv Interval) equalEndpoints(lo, hi *big.Rat) bool {
	return iv.lo.Cmp(lo) == 0 && iv.hi.Cmp(hi) == 0
}

// Bucket is a fixed tuple of integer values of a discrete variable. The
// zero Bucket is empty: it contains nothing and has width zero.
type Bucket struct {
	contents []int64
}

// NewBucket creates a bucket holding contents. Members must be distinct.
func NewBucket(contents []int64) (Bucket, error) {
	if len(contents) == 0 {
		return Bucket{}, fmt.Errorf("bucket contents must not be empty")
	}
	seen := make(map[int64]struct{}, len(contents))
	for _, c := range contents {
		if _, dup := seen[c]; dup {
			return Bucket{}, fmt.Errorf("bucket contents repeat value %d", c)
		}
		seen[c] = struct{}{}
	}
	return Bucket{contents: slices.Clone(contents)}, nil
}

// Contents returns a copy of the bucket's values in declaration order.
func (b Bucket) Contents() []int64 {
	return slices.Clone(b.contents)
}

// Contains reports whether value is integral and a member of the bucket.
func (b Bucket) Contains(value any) bool {
	n, ok := asInt64(value)
	if !ok {
		return false
	}
	return slices.Contains(b.contents, n)
}

// Width is max-min, plus the common step when the members are evenly
// spaced, so that a bucket of ten consecutive years has width 10.
func (b Bucket) Width() *big.Rat {
	c := b.contents
	if len(c) == 0 {
		return new(big.Rat)
	}
	w := slices.Max(c) - slices.Min(c)
	if len(c) > 1 {
		step := c[1] - c[0]
		even := true
		for i := 2; i < len(c); i++ {
			if c[i]-c[i-1] != step {
				even = false
				break
			}
		}
		if even {
			if step < 0 {
				step = -step
			}
			w += step
		}
	}
	return new(big.Rat).SetInt64(w)
}

func (b Bucket) String() string {
	switch len(b.contents) {
	case 0:
		return "{}"
	case 1:
		return fmt.Sprintf("{%d}", b.contents[0])
	}
	return fmt.Sprintf("{%d, ..., %d}", b.contents[0], b.contents[len(b.contents)-1])
}

// Category is a single scalar value of a categorical variable.
type Category struct {
	content any
}

// NewCategory creates a category. Content must be a string, bool or number.
func NewCategory(content any) (Category, error) {
	if !isScalar(content) {
		return Category{}, fmt.Errorf("category content must be a scalar, got %T", content)
	}
	return Category{content: content}, nil
}

// Content returns the category's scalar value.
func (c Category) Content() any {
	return c.content
}

func (c Category) Contains(value any) bool {
	return scalarEqual(c.content, value)
}

// Width is always zero: every category is a single point.
func (c Category) Width() *big.Rat {
	return new(big.Rat)
}

func (c Category) String() string {
	return fmt.Sprint(c.content)
}

// Label is the short name of a part used on plot axes: the lower endpoint
// of an interval, the first member of a bucket or the category itself.
func Label(p Part) string {
	switch v := p.(type) {
	case Interval:
		return v.lo.RatString()
	case Bucket:
		if len(v.contents) == 0 {
			return v.String()
		}
		return fmt.Sprint(v.contents[0])
	case Category:
		return strings.TrimSpace(fmt.Sprint(v.content))
	}
	return p.String()
}
