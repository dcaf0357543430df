package testutil

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/subsamplr/internal/bins"
	"github.com/roach88/subsamplr/internal/variable"
)

// Locations are the categories of the synthetic location dimension.
var Locations = []string{"N", "E", "S", "W", "NE", "SE", "SW", "NW"}

// Unit is one synthetic unit: an identifier and one value per dimension.
type Unit struct {
	ID     string
	Values []any
}

// Declarations returns the three dimensions of the synthetic population:
// OCR quality in [0, 1) by tenths, year 1800-1899 by decade, and location.
func Declarations() []variable.Declaration {
	cats := make([]any, len(Locations))
	for i, l := range Locations {
		cats[i] = l
	}
	return []variable.Declaration{
		{Name: "Mean OCR quality", Class: variable.ClassContinuous, Type: variable.TypeFloat, Min: 0, Max: 1, BinSize: 0.1},
		{Name: "Year", Class: variable.ClassDiscrete, Type: variable.TypeInt, Min: 1800, Max: 1899, Discretisation: 1, BinSize: 10},
		{Name: "Location", Class: variable.ClassCategorical, Type: variable.TypeString, Categories: cats},
	}
}

// Population generates n units whose values are drawn uniformly from the
// ranges of Declarations. The same seed yields the same population.
func Population(seed uint64, n int) []Unit {
	rng := rand.New(rand.NewPCG(seed, seed))
	units := make([]Unit, n)
	for i := range units {
		units[i] = Unit{
			ID: fmt.Sprintf("unit-%05d", i),
			Values: []any{
				rng.Float64(),
				int64(1800 + rng.IntN(100)),
				Locations[rng.IntN(len(Locations))],
			},
		}
	}
	return units
}

// Collection builds a collection over Declarations and assigns the
// population to it.
func Collection(t testing.TB, units []Unit, opts ...bins.Option) *bins.Collection {
	t.Helper()
	c, err := bins.Construct(Declarations(), opts...)
	require.NoError(t, err)
	for _, u := range units {
		require.NoError(t, c.Assign(u.ID, u.Values))
	}
	return c
}

// NewRand returns a seeded random source.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}
