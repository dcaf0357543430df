package variable

import (
	"fmt"
	"math"
	"math/big"
)

// Tolerance absorbs float noise in the divisibility checks, so that
// (0.9-0.6)/0.1 = 3.0000000000000004 counts as an integer.
const Tolerance = 1e-6

// Declaration describes one variable as written in a configuration file.
type Declaration struct {
	Name  string    `yaml:"name" json:"name" validate:"required"`
	Class Class     `yaml:"class" json:"class" validate:"required"`
	Type  ValueType `yaml:"type,omitempty" json:"type,omitempty" validate:"omitempty,oneof=int float str"`

	// Range parameters for continuous and discrete variables.
	Min            float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max            float64 `yaml:"max,omitempty" json:"max,omitempty"`
	BinSize        float64 `yaml:"bin_size,omitempty" json:"bin_size,omitempty" validate:"omitempty,gt=0"`
	Discretisation float64 `yaml:"discretisation,omitempty" json:"discretisation,omitempty" validate:"omitempty,gt=0"`

	// Categories lists the values of a categorical variable in index order.
	Categories []any `yaml:"categories,omitempty" json:"categories,omitempty"`
}

// BuildVariables constructs variables from declarations, in order.
func BuildVariables(decls []Declaration) ([]*Variable, error) {
	vars := make([]*Variable, 0, len(decls))
	for _, d := range decls {
		var (
			v   *Variable
			err error
		)
		switch d.Class {
		case ClassContinuous:
			var endpoints [][2]*big.Rat
			endpoints, err = ContinuousEndpoints(d.Min, d.Max, d.BinSize, d.Name)
			if err == nil {
				v, err = NewContinuous(d.Name, d.Type, endpoints)
			}
		case ClassDiscrete:
			var contents [][]int64
			contents, err = DiscreteContents(d.Min, d.Max, d.Discretisation, d.BinSize, d.Name)
			if err == nil {
				v, err = NewDiscrete(d.Name, d.Type, contents)
			}
		case ClassCategorical:
			v, err = NewCategorical(d.Name, d.Type, d.Categories)
		default:
			err = configErrorf(d.Name, "invalid variable class %q", d.Class)
		}
		if err != nil {
			return nil, err
		}
		vars = append(vars, v)
	}
	return vars, nil
}

// ContinuousEndpoints partitions [min, max) into intervals of width binSize.
//
// (max-min)/binSize and min/binSize must be integers, and either binSize or
// 1/binSize must be an integer. The endpoints are exact rationals with a
// common denominator, so no boundary inherits float error from the inputs.
func ContinuousEndpoints(min, max, binSize float64, name string) ([][2]*big.Rat, error) {
	if !isFinite(min) || !isFinite(max) || !isFinite(binSize) {
		return nil, configErrorf(name, "non-finite range parameter")
	}
	if binSize <= 0 {
		return nil, configErrorf(name, "non-positive bin size %v", binSize)
	}
	if max <= min {
		return nil, configErrorf(name, "empty range [%v, %v)", min, max)
	}

	r := max - min
	binCount := r / binSize
	if !isIntegral(binCount) {
		return nil, configErrorf(name, "non-integer bin count")
	}
	if !isIntegral(min / binSize) {
		return nil, configErrorf(name, "non-integer (min/bin_size)")
	}
	n := int64(math.Round(binCount))

	// With denominator n*k every endpoint numerator is an integer.
	var k int64
	switch {
	case isIntegral(binSize) && math.Round(binSize) >= 1:
		k = 1
	case isIntegral(1 / binSize):
		k = int64(math.Round(1 / binSize))
	default:
		return nil, configErrorf(name, "invalid bin size %v", binSize)
	}

	denom := n * k
	width := int64(math.Round(binSize * float64(denom)))
	start := int64(math.Round(min * float64(denom)))
	step := int64(math.Round(r * float64(k)))

	ret := make([][2]*big.Rat, 0, n)
	for i := int64(0); i < n; i++ {
		a := start + i*step
		ret = append(ret, [2]*big.Rat{
			big.NewRat(a, denom),
			big.NewRat(a+width, denom),
		})
	}
	return ret, nil
}

// DiscreteContents partitions the inclusive range [min, max] into buckets
// of binSize/discretisation consecutive values stepping by discretisation.
//
// binSize must be a multiple of discretisation and max+discretisation-min a
// multiple of binSize. All parameters must be integral.
func DiscreteContents(min, max, discretisation, binSize float64, name string) ([][]int64, error) {
	for _, p := range []struct {
		label string
		value float64
	}{
		{"min", min}, {"max", max}, {"discretisation", discretisation}, {"bin_size", binSize},
	} {
		if !isFinite(p.value) || !isIntegral(p.value) {
			return nil, configErrorf(name, "non-integer %s %v", p.label, p.value)
		}
	}

	lo := int64(math.Round(min))
	hi := int64(math.Round(max))
	disc := int64(math.Round(discretisation))
	size := int64(math.Round(binSize))
	if disc <= 0 || size <= 0 {
		return nil, configErrorf(name, "non-positive bin_size or discretisation")
	}
	if hi < lo {
		return nil, configErrorf(name, "empty range [%d, %d]", lo, hi)
	}
	if size%disc != 0 {
		return nil, configErrorf(name, "non-integer bin_size/discretisation")
	}
	span := hi + disc - lo
	if span%size != 0 {
		return nil, configErrorf(name, "non-integer (max + discretisation - min)/bin_size")
	}

	perBucket := size / disc
	ret := make([][]int64, 0, span/size)
	for start := lo; start <= hi; start += size {
		t := make([]int64, 0, perBucket)
		for j := int64(0); j < size; j += disc {
			t = append(t, start+j)
		}
		ret = append(ret, t)
	}
	return ret, nil
}

func isIntegral(x float64) bool {
	return math.Abs(x-math.Round(x)) < Tolerance
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func (d Declaration) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Class)
}
