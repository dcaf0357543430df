package harness

import (
	"maps"
	"slices"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/subsamplr/internal/fingerprint"
)

// Snapshot captures the observable outcome of a scenario.
// It serializes as canonical JSON for deterministic comparison.
type Snapshot struct {
	ScenarioName  string         `json:"scenario_name"`
	SelectionHash string         `json:"selection_hash"`
	Selected      []string       `json:"selected"`
	Strata        map[string]int `json:"strata"`
	Units         int            `json:"units"`
	Bins          int            `json:"bins"`
	Exclusions    int            `json:"exclusions"`
	ErrorKind     string         `json:"error_kind,omitempty"`
}

// NewSnapshot builds the snapshot of a result.
func NewSnapshot(name string, r *Result) Snapshot {
	return Snapshot{
		ScenarioName:  name,
		SelectionHash: fingerprint.SelectionHash(r.Selected),
		Selected:      slices.Clone(r.Selected),
		Strata:        maps.Clone(r.Strata),
		Units:         r.Units,
		Bins:          r.Bins,
		Exclusions:    r.Exclusions,
		ErrorKind:     r.ErrorKind,
	}
}

// toCanonicalMap converts a Snapshot to the value types canonical JSON
// accepts.
func (s Snapshot) toCanonicalMap() map[string]any {
	strata := make(map[string]any, len(s.Strata))
	for k, v := range s.Strata {
		strata[k] = v
	}
	m := map[string]any{
		"scenario_name":  s.ScenarioName,
		"selection_hash": s.SelectionHash,
		"selected":       s.Selected,
		"strata":         strata,
		"units":          s.Units,
		"bins":           s.Bins,
		"exclusions":     s.Exclusions,
	}
	if s.ErrorKind != "" {
		m["error_kind"] = s.ErrorKind
	}
	return m
}

// MarshalCanonical encodes the snapshot as canonical JSON.
func (s Snapshot) MarshalCanonical() ([]byte, error) {
	return fingerprint.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's snapshot against a golden
// file without re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(name, result).MarshalCanonical()
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
