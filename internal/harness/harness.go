package harness

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/roach88/subsamplr/internal/bins"
	"github.com/roach88/subsamplr/internal/config"
	"github.com/roach88/subsamplr/internal/variable"
)

// outOfRangeCategory is never a declared category.
const outOfRangeCategory = "\x00out-of-range"

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Build the collection from the declared variables
// 2. Generate the population and assign it, then the listed units
// 3. Make the single-bin draws, if any
// 4. Select the sample
// 5. Check the expected error or evaluate the assertions
//
// Errors a scenario can expect are reported in the result. Any other
// error is returned.
func Run(scenario *Scenario) (*Result, error) {
	logger := slog.New(slog.DiscardHandler) // Suppress logs in tests
	result := NewResult()

	err := execute(scenario, logger, result)
	if err != nil {
		kind := errorKind(err)
		if kind == "" {
			return nil, err
		}
		result.ErrorKind = kind
		if scenario.ExpectError != kind {
			result.AddError(fmt.Sprintf("unexpected %s error: %v", kind, err))
		}
		return result, nil
	}

	if scenario.ExpectError != "" {
		result.AddError(fmt.Sprintf("expected %s error, selection succeeded", scenario.ExpectError))
		return result, nil
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func execute(scenario *Scenario, logger *slog.Logger, result *Result) error {
	c, err := bins.Construct(scenario.Variables,
		bins.WithLogger(logger),
		bins.WithExclusionTracking(scenario.Sample.Tracking()))
	if err != nil {
		return err
	}
	dims := c.Dimensions()
	for _, d := range dims {
		result.dims = append(result.dims, d.Name())
	}

	units := scenario.Units
	if scenario.Population != nil {
		units = append(generate(scenario.Population, scenario.Variables), units...)
	}
	for _, u := range units {
		if err := c.Assign(u.ID, u.Values); err != nil {
			return fmt.Errorf("assign %s: %w", u.ID, err)
		}
	}

	labels := make(map[string]string)
	for b := range c.Bins() {
		parts := b.Parts()
		names := make([]string, len(parts))
		for i, p := range parts {
			names[i] = variable.Label(p)
		}
		label := strings.Join(names, " x ")
		for _, u := range b.Units() {
			result.paths[u] = b.Path()
			labels[u] = label
		}
	}
	result.Units = c.CountUnits()
	result.Bins = c.CountBins()
	result.Exclusions = c.CountExclusions()

	cfg := &config.Config{Variables: scenario.Variables, Sample: scenario.Sample}
	weights, err := cfg.Weights(dims)
	if err != nil {
		return err
	}

	seed := scenario.Sample.Seed
	if scenario.Draws > 0 {
		rng := rand.New(rand.NewPCG(seed, seed+1))
		result.DrawCounts = make([]map[int]int, len(dims))
		for d := range dims {
			result.DrawCounts[d] = make(map[int]int)
		}
		for range scenario.Draws {
			b, err := c.SelectBin(rng, weights)
			if err != nil {
				return err
			}
			for d, i := range b.Path() {
				result.DrawCounts[d][i]++
			}
		}
	}

	selected, err := c.SelectUnits(rand.New(rand.NewPCG(seed, seed)), scenario.Sample.Size, weights)
	if err != nil {
		return err
	}
	if selected != nil {
		result.Selected = selected
	}
	for _, u := range selected {
		result.Strata[labels[u]]++
	}
	return nil
}

// errorKind classifies the errors a scenario can expect.
func errorKind(err error) string {
	switch {
	case bins.IsCapacityError(err):
		return ExpectCapacity
	case bins.IsContractError(err):
		return ExpectContract
	case bins.IsConfigError(err), config.IsLoadError(err):
		return ExpectConfig
	}
	return ""
}

// generate draws p.Count units uniformly over the declared ranges, then
// p.OutOfRange units whose first value misses its partition.
func generate(p *Population, decls []variable.Declaration) []UnitSpec {
	rng := rand.New(rand.NewPCG(p.Seed, p.Seed))
	units := make([]UnitSpec, 0, p.Count+p.OutOfRange)
	for i := range p.Count {
		values := make([]any, len(decls))
		for d, decl := range decls {
			values[d] = drawValue(rng, decl)
		}
		units = append(units, UnitSpec{ID: fmt.Sprintf("pop-%05d", i), Values: values})
	}
	for i := range p.OutOfRange {
		values := make([]any, len(decls))
		values[0] = outOfRange(decls[0])
		for d := 1; d < len(decls); d++ {
			values[d] = drawValue(rng, decls[d])
		}
		units = append(units, UnitSpec{ID: fmt.Sprintf("out-%03d", i), Values: values})
	}
	return units
}

func drawValue(rng *rand.Rand, d variable.Declaration) any {
	switch d.Class {
	case variable.ClassContinuous:
		return d.Min + (d.Max-d.Min)*rng.Float64()
	case variable.ClassDiscrete:
		n := int(math.Round((d.Max-d.Min)/d.Discretisation)) + 1
		v := d.Min + d.Discretisation*float64(rng.IntN(n))
		if d.Type == variable.TypeFloat {
			return v
		}
		return int64(math.Round(v))
	default:
		return d.Categories[rng.IntN(len(d.Categories))]
	}
}

func outOfRange(d variable.Declaration) any {
	switch d.Class {
	case variable.ClassContinuous:
		return d.Max + d.BinSize
	case variable.ClassDiscrete:
		if d.Type == variable.TypeFloat {
			return d.Max + d.Discretisation
		}
		return int64(math.Round(d.Max + d.Discretisation))
	default:
		return outOfRangeCategory
	}
}
