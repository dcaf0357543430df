// Package config loads subsampling configurations from YAML or CUE.
//
// A configuration declares the variables that span the bin space, where
// to read units from, and how to sample them:
//
//	variables:
//	  - name: Year
//	    class: discrete
//	    min: 1800
//	    max: 1919
//	    discretisation: 1
//	    bin_size: 10
//	source:
//	  kind: csv
//	  path: issues.csv
//	  unit_id: issue_id
//	sample:
//	  size: 500
//	  seed: 42
//	  weights:
//	    Year: [0, 0, 0, 0, 0, 1, 2, 10, 0, 0, 0, 0]
//
// CUE configurations are unified with the embedded #Config schema before
// decoding. Both formats are then checked with struct validation tags.
package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/subsamplr/internal/bins"
	"github.com/roach88/subsamplr/internal/variable"
)

// Source kinds.
const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

// Config is a complete subsampling configuration.
type Config struct {
	Variables []variable.Declaration `yaml:"variables" json:"variables" validate:"required,min=1,dive"`
	Source    Source                 `yaml:"source,omitempty" json:"source,omitempty"`
	Sample    Sample                 `yaml:"sample,omitempty" json:"sample,omitempty"`
}

// Source locates the population.
type Source struct {
	Kind   string `yaml:"kind" json:"kind" validate:"omitempty,oneof=csv sqlite"`
	Path   string `yaml:"path" json:"path" validate:"required_with=Kind"`
	UnitID string `yaml:"unit_id" json:"unit_id" validate:"required_with=Kind"`
	Query  string `yaml:"query,omitempty" json:"query,omitempty" validate:"required_if=Kind sqlite"`
}

// Sample holds the selection parameters.
type Sample struct {
	Size            int                  `yaml:"size,omitempty" json:"size,omitempty" validate:"gte=0"`
	Seed            uint64               `yaml:"seed,omitempty" json:"seed,omitempty"`
	TrackExclusions *bool                `yaml:"track_exclusions,omitempty" json:"track_exclusions,omitempty"`
	Weights         map[string][]float64 `yaml:"weights,omitempty" json:"weights,omitempty" validate:"dive,keys,required,endkeys"`
}

// Tracking reports whether exclusions should be recorded. Default: true.
func (s Sample) Tracking() bool {
	return s.TrackExclusions == nil || *s.TrackExclusions
}

var validate = validator.New()

// Validate checks the struct tags and that variable names are unique.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return validationError(err)
	}
	seen := make(map[string]struct{}, len(c.Variables))
	for _, d := range c.Variables {
		if _, dup := seen[d.Name]; dup {
			return &LoadError{Field: "variables", Message: fmt.Sprintf("duplicate variable name %q", d.Name)}
		}
		seen[d.Name] = struct{}{}
	}
	return nil
}

// Weights arranges the named sample weights in dimension order. Dimensions
// without weights get a nil entry. It returns nil when no weights are set.
func (c *Config) Weights(dims []*variable.Variable) (bins.Weights, error) {
	if len(c.Sample.Weights) == 0 {
		return nil, nil
	}
	index := make(map[string]int, len(dims))
	for i, d := range dims {
		index[d.Name()] = i
	}

	w := make(bins.Weights, len(dims))
	for _, name := range slices.Sorted(maps.Keys(c.Sample.Weights)) {
		i, ok := index[name]
		if !ok {
			return nil, &LoadError{
				Field:   "sample.weights." + name,
				Message: fmt.Sprintf("no variable named %q", name),
			}
		}
		w[i] = slices.Clone(c.Sample.Weights[name])
	}
	return w, nil
}

// validationError converts the first validator failure into a LoadError.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &LoadError{Message: err.Error(), Err: err}
	}
	fe := verrs[0]
	msg := fmt.Sprintf("failed %q validation", fe.Tag())
	if fe.Param() != "" {
		msg = fmt.Sprintf("failed %q validation (%s)", fe.Tag(), fe.Param())
	}
	return &LoadError{Field: fe.Namespace(), Message: msg, Err: err}
}
