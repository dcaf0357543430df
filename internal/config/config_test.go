package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/subsamplr/internal/variable"
)

const validYAML = `
variables:
  - name: Mean OCR quality
    class: continuous
    min: 0
    max: 1
    bin_size: 0.1
  - name: Year
    class: discrete
    type: int
    min: 1800
    max: 1919
    discretisation: 1
    bin_size: 10
  - name: Location
    class: categorical
    categories: [N, E, S, W]
source:
  kind: csv
  path: issues.csv
  unit_id: issue_id
sample:
  size: 500
  seed: 42
  weights:
    Year: [0, 0, 0, 0, 0, 1, 2, 10, 0, 0, 0, 0]
`

const validCUE = `
variables: [
	{name: "Mean OCR quality", class: "continuous", min: 0, max: 1, bin_size: 0.1},
	{name: "Year", class: "discrete", type: "int", min: 1800, max: 1919, discretisation: 1, bin_size: 10},
	{name: "Location", class: "categorical", categories: ["N", "E", "S", "W"]},
]
source: {
	kind:    "csv"
	path:    "issues.csv"
	unit_id: "issue_id"
}
sample: {
	size: 500
	seed: 42
	weights: Year: [0, 0, 0, 0, 0, 1, 2, 10, 0, 0, 0, 0]
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func assertValid(t *testing.T, cfg *Config) {
	t.Helper()
	require.Len(t, cfg.Variables, 3)
	assert.Equal(t, "Mean OCR quality", cfg.Variables[0].Name)
	assert.Equal(t, variable.ClassContinuous, cfg.Variables[0].Class)
	assert.InDelta(t, 0.1, cfg.Variables[0].BinSize, 1e-12)
	assert.Equal(t, variable.TypeInt, cfg.Variables[1].Type)
	assert.InDelta(t, 1919, cfg.Variables[1].Max, 1e-12)
	assert.Len(t, cfg.Variables[2].Categories, 4)

	assert.Equal(t, SourceCSV, cfg.Source.Kind)
	assert.Equal(t, "issue_id", cfg.Source.UnitID)
	assert.Equal(t, 500, cfg.Sample.Size)
	assert.Equal(t, uint64(42), cfg.Sample.Seed)
	assert.True(t, cfg.Sample.Tracking())
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 1, 2, 10, 0, 0, 0, 0}, cfg.Sample.Weights["Year"])

	dims, err := variable.BuildVariables(cfg.Variables)
	require.NoError(t, err)
	assert.Equal(t, 12, dims[1].Len())
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(writeFile(t, dir, "config.yaml", validYAML))
	require.NoError(t, err)
	assertValid(t, cfg)
	assert.Equal(t, filepath.Join(dir, "issues.csv"), cfg.Source.Path)
}

func TestLoadCUEFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(writeFile(t, dir, "config.cue", validCUE))
	require.NoError(t, err)
	assertValid(t, cfg)
	assert.Equal(t, filepath.Join(dir, "issues.csv"), cfg.Source.Path)
}

func TestLoadCUEDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "variables.cue", `package subsample

variables: [
	{name: "Year", class: "discrete", min: 1800, max: 1899, discretisation: 1, bin_size: 10},
]
`)
	writeFile(t, dir, "sample.cue", `package subsample

sample: size: 10
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, cfg.Variables, 1)
	assert.Equal(t, 10, cfg.Sample.Size)
}

func TestLoadAbsoluteSourcePathIsKept(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere.db")
	cfg, err := Load(writeFile(t, dir, "config.yaml", `
variables:
  - {name: Location, class: categorical, categories: [N]}
source: {kind: sqlite, path: `+abs+`, unit_id: id, query: "SELECT * FROM issues"}
`))
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.Source.Path)
}

func TestParseYAMLRejectsUnknownFields(t *testing.T) {
	_, err := ParseYAML([]byte(`
variables:
  - name: Year
    class: discrete
    binsize: 10
`))
	require.Error(t, err)
	assert.True(t, IsLoadError(err))
	assert.Contains(t, err.Error(), "binsize")
}

func TestParseYAMLValidation(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{
			name:  "no variables",
			yaml:  "sample: {size: 3}\n",
			field: "Config.Variables",
		},
		{
			name:  "missing class",
			yaml:  "variables: [{name: Year}]\n",
			field: "Config.Variables[0].Class",
		},
		{
			name:  "bad type",
			yaml:  "variables: [{name: Year, class: discrete, type: double}]\n",
			field: "Config.Variables[0].Type",
		},
		{
			name:  "negative bin size",
			yaml:  "variables: [{name: Q, class: continuous, min: 0, max: 1, bin_size: -0.1}]\n",
			field: "Config.Variables[0].BinSize",
		},
		{
			name:  "bad source kind",
			yaml:  "variables: [{name: L, class: categorical, categories: [a]}]\nsource: {kind: parquet, path: x, unit_id: id}\n",
			field: "Config.Source.Kind",
		},
		{
			name:  "sqlite without query",
			yaml:  "variables: [{name: L, class: categorical, categories: [a]}]\nsource: {kind: sqlite, path: x.db, unit_id: id}\n",
			field: "Config.Source.Query",
		},
		{
			name:  "negative size",
			yaml:  "variables: [{name: L, class: categorical, categories: [a]}]\nsample: {size: -1}\n",
			field: "Config.Sample.Size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.yaml))
			require.Error(t, err)
			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.field, le.Field)
		})
	}
}

func TestParseYAMLDuplicateNames(t *testing.T) {
	_, err := ParseYAML([]byte(`
variables:
  - {name: L, class: categorical, categories: [a]}
  - {name: L, class: categorical, categories: [b]}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate variable name "L"`)
}

func TestParseCUESchemaViolation(t *testing.T) {
	_, err := ParseCUE([]byte(`
variables: [
	{name: "Q", class: "continuous", min: 0, max: 1, bin_size: -1},
]
`), "bad.cue")
	require.Error(t, err)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.True(t, le.Pos.IsValid())
}

func TestParseCUERejectsUnknownFields(t *testing.T) {
	_, err := ParseCUE([]byte(`
variables: [{name: "L", class: "categorical", categories: ["a"]}]
extra: 1
`), "extra.cue")
	require.Error(t, err)
	assert.True(t, IsLoadError(err))
}

func TestParseCUESyntaxError(t *testing.T) {
	_, err := ParseCUE([]byte(`variables: [`), "broken.cue")
	require.Error(t, err)
	assert.True(t, IsLoadError(err))
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load(writeFile(t, t.TempDir(), "config.toml", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported configuration format")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTrackingCanBeDisabled(t *testing.T) {
	cfg, err := ParseYAML([]byte(`
variables: [{name: L, class: categorical, categories: [a]}]
sample: {track_exclusions: false}
`))
	require.NoError(t, err)
	assert.False(t, cfg.Sample.Tracking())
}

func TestWeights(t *testing.T) {
	cfg, err := ParseYAML([]byte(validYAML))
	require.NoError(t, err)
	dims, err := variable.BuildVariables(cfg.Variables)
	require.NoError(t, err)

	w, err := cfg.Weights(dims)
	require.NoError(t, err)
	require.Len(t, w, 3)
	assert.Nil(t, w[0])
	assert.Equal(t, cfg.Sample.Weights["Year"], w[1])
	assert.Nil(t, w[2])

	cfg.Sample.Weights = nil
	w, err = cfg.Weights(dims)
	require.NoError(t, err)
	assert.Nil(t, w)

	cfg.Sample.Weights = map[string][]float64{"Decade": {1}}
	_, err = cfg.Weights(dims)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no variable named "Decade"`)
}

func TestLoadWeights(t *testing.T) {
	path := writeFile(t, t.TempDir(), "weights.yaml", "Year: [0, 1, 2]\nLocation: [1, 1]\n")
	w, err := LoadWeights(path)
	require.NoError(t, err)
	assert.Equal(t, map[string][]float64{"Year": {0, 1, 2}, "Location": {1, 1}}, w)

	_, err = LoadWeights(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
