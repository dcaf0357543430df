package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// LoadError describes a configuration that could not be read, parsed or
// validated.
type LoadError struct {
	Path    string
	Field   string    // offending field, if known
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Path != "" {
		return e.Path + ": " + msg
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsLoadError returns true if the error is a *LoadError.
func IsLoadError(err error) bool {
	var e *LoadError
	return errors.As(err, &e)
}

// Load reads a configuration from a YAML file, a CUE file or a directory
// of CUE files. A relative source path is resolved against the
// configuration's directory.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "cannot read configuration", Err: err}
	}

	var (
		cfg  *Config
		base string
	)
	switch {
	case info.IsDir():
		cfg, err = loadCUEDir(path)
		base = path
	case filepath.Ext(path) == ".cue":
		var data []byte
		if data, err = os.ReadFile(path); err == nil {
			cfg, err = ParseCUE(data, path)
		}
		base = filepath.Dir(path)
	case filepath.Ext(path) == ".yaml", filepath.Ext(path) == ".yml":
		var data []byte
		if data, err = os.ReadFile(path); err == nil {
			cfg, err = ParseYAML(data)
		}
		base = filepath.Dir(path)
	default:
		return nil, &LoadError{Path: path, Message: "unsupported configuration format (want .yaml, .yml, .cue or a directory)"}
	}
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			if le.Path == "" {
				le.Path = path
			}
			return nil, le
		}
		return nil, &LoadError{Path: path, Message: "cannot read configuration", Err: err}
	}

	if cfg.Source.Path != "" && !filepath.IsAbs(cfg.Source.Path) {
		cfg.Source.Path = filepath.Join(base, cfg.Source.Path)
	}
	return cfg, nil
}

// ParseYAML decodes and validates a YAML configuration. Unknown fields are
// rejected.
func ParseYAML(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("parse YAML: %v", err), Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseCUE compiles a single CUE file, unifies it with the schema and
// decodes it.
func ParseCUE(data []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return decodeCUE(ctx, v)
}

func loadCUEDir(dir string) (*Config, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}

	ctx := cuecontext.New()
	v := ctx.BuildInstance(inst)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return decodeCUE(ctx, v)
}

func decodeCUE(ctx *cue.Context, v cue.Value) (*Config, error) {
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile embedded schema: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return nil, formatCUEError(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Message: err.Error(), Err: err}
	}
	first := errs[0]
	le := &LoadError{Message: first.Error(), Err: err}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}

// LoadWeights reads a YAML mapping from variable name to weights, as
// accepted by the sample command's --weights flag.
func LoadWeights(path string) (map[string][]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "cannot read weights", Err: err}
	}
	var w map[string][]float64
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, &LoadError{Path: path, Message: fmt.Sprintf("parse weights: %v", err), Err: err}
	}
	return w, nil
}
