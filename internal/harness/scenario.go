package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/subsamplr/internal/config"
	"github.com/roach88/subsamplr/internal/variable"
)

// Scenario defines a sampling scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Variables declare the dimensions of the bin space, in order.
	Variables []variable.Declaration `yaml:"variables"`

	// Population generates units with uniformly drawn values.
	Population *Population `yaml:"population,omitempty"`

	// Units are assigned after the generated population, in order.
	Units []UnitSpec `yaml:"units,omitempty"`

	// Sample holds the selection parameters.
	Sample config.Sample `yaml:"sample"`

	// Draws is the number of single-bin draws made for draw_proportion
	// assertions. Zero disables them.
	Draws int `yaml:"draws,omitempty"`

	// ExpectError names the error kind selection must fail with:
	// "config", "contract" or "capacity".
	ExpectError string `yaml:"expect_error,omitempty"`

	// Assertions validate the selection.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Population describes a generated population. Each unit draws a value
// uniformly from each variable's declared range or categories.
type Population struct {
	Seed  uint64 `yaml:"seed"`
	Count int    `yaml:"count"`

	// OutOfRange adds units whose first value lies outside its partition.
	OutOfRange int `yaml:"out_of_range,omitempty"`
}

// UnitSpec is one explicitly listed unit.
type UnitSpec struct {
	ID     string `yaml:"id"`
	Values []any  `yaml:"values"`
}

// Assertion validates a selection or the population it was drawn from.
type Assertion struct {
	// Type specifies the assertion type: selected_count, selected_within,
	// draw_proportion, exclusions or bins.
	Type string `yaml:"type"`

	// Count is the expected number (selected_count, exclusions, bins).
	Count int `yaml:"count,omitempty"`

	// Dimension names a variable (selected_within, draw_proportion).
	Dimension string `yaml:"dimension,omitempty"`

	// Parts are the allowed part indices (selected_within).
	Parts []int `yaml:"parts,omitempty"`

	// Part, Proportion and Tolerance configure draw_proportion.
	Part       int     `yaml:"part,omitempty"`
	Proportion float64 `yaml:"proportion,omitempty"`
	Tolerance  float64 `yaml:"tolerance,omitempty"`
}

// Assertion type constants.
const (
	AssertSelectedCount  = "selected_count"
	AssertSelectedWithin = "selected_within"
	AssertDrawProportion = "draw_proportion"
	AssertExclusions     = "exclusions"
	AssertBins           = "bins"
)

// Expected error kinds.
const (
	ExpectConfig   = "config"
	ExpectContract = "contract"
	ExpectCapacity = "capacity"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Variables) == 0 {
		return fmt.Errorf("variables list is required and must be non-empty")
	}
	if s.Population == nil && len(s.Units) == 0 {
		return fmt.Errorf("population or units is required")
	}
	if s.Population != nil && s.Population.Count < 0 {
		return fmt.Errorf("population.count must be non-negative")
	}
	if s.Draws < 0 {
		return fmt.Errorf("draws must be non-negative")
	}

	switch s.ExpectError {
	case "":
		if len(s.Assertions) == 0 {
			return fmt.Errorf("assertions list is required unless expect_error is set")
		}
	case ExpectConfig, ExpectContract, ExpectCapacity:
	default:
		return fmt.Errorf("unknown expect_error %q", s.ExpectError)
	}

	for i, u := range s.Units {
		if u.ID == "" {
			return fmt.Errorf("units[%d]: id is required", i)
		}
		if len(u.Values) != len(s.Variables) {
			return fmt.Errorf("units[%d]: got %d values for %d variables", i, len(u.Values), len(s.Variables))
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, s); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, s *Scenario) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertSelectedCount, AssertExclusions, AssertBins:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertSelectedWithin:
		if a.Dimension == "" {
			return fmt.Errorf("assertions[%d]: dimension is required for selected_within", index)
		}
		if len(a.Parts) == 0 {
			return fmt.Errorf("assertions[%d]: parts list is required for selected_within", index)
		}
	case AssertDrawProportion:
		if a.Dimension == "" {
			return fmt.Errorf("assertions[%d]: dimension is required for draw_proportion", index)
		}
		if s.Draws == 0 {
			return fmt.Errorf("assertions[%d]: draw_proportion requires draws", index)
		}
		if a.Tolerance <= 0 {
			return fmt.Errorf("assertions[%d]: tolerance must be positive for draw_proportion", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
