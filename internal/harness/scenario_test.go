package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/subsamplr/internal/variable"
)

const validScenario = `
name: test_scenario
description: "Test scenario for validation"
variables:
  - name: Year
    class: discrete
    type: int
    min: 1800
    max: 1819
    discretisation: 1
    bin_size: 10
units:
  - id: a
    values: [1801]
sample:
  size: 1
  seed: 9
assertions:
  - type: selected_count
    count: 1
`

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	scenario, err := LoadScenario(writeScenario(t, validScenario))
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	require.Len(t, scenario.Variables, 1)
	assert.Equal(t, variable.ClassDiscrete, scenario.Variables[0].Class)
	assert.Equal(t, float64(10), scenario.Variables[0].BinSize)
	require.Len(t, scenario.Units, 1)
	assert.Equal(t, "a", scenario.Units[0].ID)
	assert.Equal(t, []any{1801}, scenario.Units[0].Values)
	assert.Equal(t, 1, scenario.Sample.Size)
	assert.Equal(t, uint64(9), scenario.Sample.Seed)
	require.Len(t, scenario.Assertions, 1)
	assert.Equal(t, AssertSelectedCount, scenario.Assertions[0].Type)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	_, err := LoadScenario(writeScenario(t, validScenario+"assertion: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_RepositoryScenarios(t *testing.T) {
	paths, err := filepath.Glob("../../testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := LoadScenario(path)
			require.NoError(t, err)
		})
	}
}

func TestValidateScenario(t *testing.T) {
	base := func() *Scenario {
		return &Scenario{
			Name:        "s",
			Description: "d",
			Variables: []variable.Declaration{
				{Name: "Location", Class: variable.ClassCategorical, Categories: []any{"N", "S"}},
			},
			Units:      []UnitSpec{{ID: "a", Values: []any{"N"}}},
			Draws:      10,
			Assertions: []Assertion{{Type: AssertSelectedCount, Count: 1}},
		}
	}

	tests := []struct {
		name   string
		modify func(s *Scenario)
		errMsg string
	}{
		{"valid", func(s *Scenario) {}, ""},
		{"missing name", func(s *Scenario) { s.Name = "" }, "name is required"},
		{"missing description", func(s *Scenario) { s.Description = "" }, "description is required"},
		{"no variables", func(s *Scenario) { s.Variables = nil }, "variables list is required"},
		{"no units", func(s *Scenario) { s.Units = nil }, "population or units is required"},
		{"negative population", func(s *Scenario) {
			s.Population = &Population{Count: -1}
		}, "population.count must be non-negative"},
		{"negative draws", func(s *Scenario) { s.Draws = -1 }, "draws must be non-negative"},
		{"no assertions", func(s *Scenario) { s.Assertions = nil }, "assertions list is required"},
		{"expected error needs no assertions", func(s *Scenario) {
			s.Assertions = nil
			s.ExpectError = ExpectCapacity
		}, ""},
		{"unknown expected error", func(s *Scenario) { s.ExpectError = "timeout" }, `unknown expect_error "timeout"`},
		{"unit without id", func(s *Scenario) { s.Units[0].ID = "" }, "units[0]: id is required"},
		{"unit arity", func(s *Scenario) {
			s.Units[0].Values = []any{"N", 1}
		}, "units[0]: got 2 values for 1 variables"},
		{"assertion without type", func(s *Scenario) {
			s.Assertions = []Assertion{{}}
		}, "assertions[0]: type is required"},
		{"unknown assertion", func(s *Scenario) {
			s.Assertions = []Assertion{{Type: "trace_contains"}}
		}, `assertions[0]: unknown assertion type "trace_contains"`},
		{"negative count", func(s *Scenario) {
			s.Assertions = []Assertion{{Type: AssertBins, Count: -2}}
		}, "count must be non-negative for bins"},
		{"within without dimension", func(s *Scenario) {
			s.Assertions = []Assertion{{Type: AssertSelectedWithin, Parts: []int{0}}}
		}, "dimension is required for selected_within"},
		{"within without parts", func(s *Scenario) {
			s.Assertions = []Assertion{{Type: AssertSelectedWithin, Dimension: "Location"}}
		}, "parts list is required for selected_within"},
		{"proportion without draws", func(s *Scenario) {
			s.Draws = 0
			s.Assertions = []Assertion{{Type: AssertDrawProportion, Dimension: "Location", Tolerance: 0.1}}
		}, "draw_proportion requires draws"},
		{"proportion without tolerance", func(s *Scenario) {
			s.Assertions = []Assertion{{Type: AssertDrawProportion, Dimension: "Location"}}
		}, "tolerance must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.modify(s)
			err := validateScenario(s)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
