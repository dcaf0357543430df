package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_OneStratum(t *testing.T) {
	scenario, err := LoadScenario("../../testdata/scenarios/one_stratum.yaml")
	require.NoError(t, err)

	// First run with -update to create golden file:
	//   go test ./internal/harness -run TestRunWithGolden_OneStratum -update
	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestSnapshot_MarshalCanonical(t *testing.T) {
	r := NewResult()
	r.Selected = []string{"b", "a"}
	r.Strata = map[string]int{"1800 x N": 2}
	r.Units = 4
	r.Bins = 2
	r.ErrorKind = ExpectCapacity

	snap := NewSnapshot("snap", r)
	data, err := snap.MarshalCanonical()
	require.NoError(t, err)

	assert.Equal(t,
		`{"bins":2,"error_kind":"capacity","exclusions":0,"scenario_name":"snap","selected":["b","a"],`+
			`"selection_hash":"`+snap.SelectionHash+`","strata":{"1800 x N":2},"units":4}`,
		string(data))
}

func TestSnapshot_SelectionHashIgnoresOrder(t *testing.T) {
	a := NewResult()
	a.Selected = []string{"x", "y"}
	b := NewResult()
	b.Selected = []string{"y", "x"}

	assert.Equal(t, NewSnapshot("a", a).SelectionHash, NewSnapshot("b", b).SelectionHash)
}

func TestSnapshot_CopiesResult(t *testing.T) {
	r := NewResult()
	r.Selected = []string{"a"}
	r.Strata["1800 x N"] = 1

	snap := NewSnapshot("copy", r)
	r.Selected[0] = "z"
	r.Strata["1800 x N"] = 9

	assert.Equal(t, []string{"a"}, snap.Selected)
	assert.Equal(t, 1, snap.Strata["1800 x N"])
}
