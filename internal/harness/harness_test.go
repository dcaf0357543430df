package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/subsamplr/internal/config"
	"github.com/roach88/subsamplr/internal/variable"
)

func decades() []variable.Declaration {
	return []variable.Declaration{
		{Name: "Year", Class: variable.ClassDiscrete, Type: variable.TypeInt, Min: 1800, Max: 1819, Discretisation: 1, BinSize: 10},
		{Name: "Location", Class: variable.ClassCategorical, Type: variable.TypeString, Categories: []any{"N", "S"}},
	}
}

func decadeUnits() []UnitSpec {
	return []UnitSpec{
		{ID: "a", Values: []any{1800, "N"}},
		{ID: "b", Values: []any{1805, "N"}},
		{ID: "c", Values: []any{1812, "S"}},
		{ID: "d", Values: []any{1815, "S"}},
		{ID: "e", Values: []any{1819, "N"}},
	}
}

func TestRun_ExpectedCapacityError(t *testing.T) {
	scenario := &Scenario{
		Name:        "overdrawn",
		Description: "Draw five from a decade of three",
		Variables:   decades(),
		Units:       decadeUnits(),
		Sample:      config.Sample{Size: 5, Seed: 1, Weights: map[string][]float64{"Year": {0, 1}}},
		ExpectError: ExpectCapacity,
	}

	// Year weights put all five draws in the second decade, which holds three.
	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, ExpectCapacity, result.ErrorKind)
}

func TestRun_ConfinedSelection(t *testing.T) {
	scenario := &Scenario{
		Name:        "confined",
		Description: "Weights confine the sample to one bin",
		Variables:   decades(),
		Units:       decadeUnits(),
		Sample: config.Sample{Size: 2, Seed: 4, Weights: map[string][]float64{
			"Year":     {0, 1},
			"Location": {0, 1},
		}},
		Assertions: []Assertion{
			{Type: AssertSelectedCount, Count: 2},
			{Type: AssertSelectedWithin, Dimension: "Location", Parts: []int{1}},
			{Type: AssertBins, Count: 3},
			{Type: AssertExclusions, Count: 0},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, []string{"c", "d"}, result.Selected)
	assert.Equal(t, map[string]int{"1810 x S": 2}, result.Strata)
	assert.Equal(t, 5, result.Units)
	assert.Empty(t, result.ErrorKind)
}

func TestRun_ZeroSize(t *testing.T) {
	scenario := &Scenario{
		Name:        "zero",
		Description: "An empty sample",
		Variables:   decades(),
		Units:       decadeUnits(),
		Assertions:  []Assertion{{Type: AssertSelectedCount, Count: 0}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, []string{}, result.Selected)
	assert.Empty(t, result.Strata)
}

func TestRun_FailingAssertion(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing",
		Description: "Wrong count",
		Variables:   decades(),
		Units:       decadeUnits(),
		Sample:      config.Sample{Size: 1, Seed: 2},
		Assertions:  []Assertion{{Type: AssertSelectedCount, Count: 3}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "assertions[0]")
	assert.Contains(t, result.Errors[0], "Expected: 3 selected units")
	assert.Contains(t, result.Errors[0], "Actual: 1 selected units")
}

func TestRun_ExpectedErrorMissing(t *testing.T) {
	scenario := &Scenario{
		Name:        "no_error",
		Description: "Capacity error expected but selection fits",
		Variables:   decades(),
		Units:       decadeUnits(),
		Sample:      config.Sample{Size: 1, Seed: 2},
		ExpectError: ExpectCapacity,
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{"expected capacity error, selection succeeded"}, result.Errors)
}

func TestRun_UnexpectedErrorKind(t *testing.T) {
	scenario := &Scenario{
		Name:        "weights_arity",
		Description: "Three weights for two categories",
		Variables:   decades(),
		Units:       decadeUnits(),
		Sample:      config.Sample{Size: 1, Seed: 2, Weights: map[string][]float64{"Location": {1, 1, 1}}},
		ExpectError: ExpectCapacity,
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, ExpectConfig, result.ErrorKind)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unexpected config error")
}

func TestRun_ConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		scenario *Scenario
	}{
		{"uneven partition", &Scenario{
			Variables: []variable.Declaration{
				{Name: "Year", Class: variable.ClassDiscrete, Type: variable.TypeInt, Min: 1800, Max: 1819, Discretisation: 1, BinSize: 7},
			},
			Units: []UnitSpec{{ID: "a", Values: []any{1801}}},
		}},
		{"unknown weight variable", &Scenario{
			Variables: decades(),
			Units:     decadeUnits(),
			Sample:    config.Sample{Size: 1, Weights: map[string][]float64{"Decade": {1, 1}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.scenario.Name = "config"
			tt.scenario.Description = tt.name
			tt.scenario.ExpectError = ExpectConfig

			result, err := Run(tt.scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, result.Errors)
			assert.Equal(t, ExpectConfig, result.ErrorKind)
		})
	}
}

func TestRun_ContractError(t *testing.T) {
	scenario := &Scenario{
		Name:        "arity",
		Description: "A unit with too few values",
		Variables:   decades(),
		Units:       []UnitSpec{{ID: "a", Values: []any{1801}}},
		ExpectError: ExpectContract,
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, ExpectContract, result.ErrorKind)
}

func TestRun_Exclusions(t *testing.T) {
	scenario := &Scenario{
		Name:        "excluded",
		Description: "Out of range units are excluded",
		Variables:   decades(),
		Population:  &Population{Seed: 3, Count: 40, OutOfRange: 4},
		Units:       []UnitSpec{{ID: "late", Values: []any{1820, "S"}}},
		Assertions: []Assertion{
			{Type: AssertExclusions, Count: 5},
			{Type: AssertBins, Count: 4},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, 40, result.Units)
}

func TestRun_RepositoryScenarios(t *testing.T) {
	tests := []struct {
		path      string
		errorKind string
	}{
		{"../../testdata/scenarios/one_stratum.yaml", ""},
		{"../../testdata/scenarios/over_capacity.yaml", ExpectCapacity},
		{"../../testdata/scenarios/representative_decades.yaml", ""},
		{"../../testdata/scenarios/prescribed_decade.yaml", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			scenario, err := LoadScenario(tt.path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, result.Errors)
			assert.Equal(t, tt.errorKind, result.ErrorKind)
		})
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	p := &Population{Seed: 8, Count: 20, OutOfRange: 2}
	first := generate(p, decades())
	second := generate(p, decades())

	require.Len(t, first, 22)
	assert.Equal(t, first, second)
	assert.Equal(t, "pop-00000", first[0].ID)
	assert.Equal(t, "out-001", first[21].ID)
	assert.Equal(t, int64(1820), first[20].Values[0])

	for _, u := range first[:20] {
		year := u.Values[0].(int64)
		assert.GreaterOrEqual(t, year, int64(1800))
		assert.LessOrEqual(t, year, int64(1819))
		assert.Contains(t, []any{"N", "S"}, u.Values[1])
	}
}
