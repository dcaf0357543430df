package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/subsamplr/internal/config"
	"github.com/roach88/subsamplr/internal/variable"
)

// VariablesOptions holds flags for the variables command.
type VariablesOptions struct {
	*RootOptions
	Config string
}

// VariableInfo describes one declared variable and its partition.
type VariableInfo struct {
	Name  string   `json:"name"`
	Class string   `json:"class"`
	Type  string   `json:"type"`
	Parts []string `json:"parts"`
}

// VariablesResult holds the variables of a configuration in dimension
// order.
type VariablesResult struct {
	Variables []VariableInfo `json:"variables"`
}

// WriteText lists each variable followed by its indexed parts.
func (r VariablesResult) WriteText(w io.Writer) error {
	for i, v := range r.Variables {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%s, %s): %d parts\n", v.Name, v.Class, v.Type, len(v.Parts))
		for j, p := range v.Parts {
			fmt.Fprintf(w, "  %3d  %s\n", j, p)
		}
	}
	return nil
}

// NewVariablesCommand creates the variables command.
func NewVariablesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VariablesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "variables",
		Short: "Show the partition of each declared variable",
		Long: `Build the variables declared in a configuration and print every part of
their partitions, in index order. The unit source is not read.

Exit codes:
  0 - Variables built
  2 - Configuration or partition error

Examples:
  subsamplr variables --config subsample.yaml
  subsamplr variables --config ./design --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVariables(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "configuration file or CUE directory (required)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runVariables(opts *VariablesOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return f.Fail("failed to load configuration", err)
	}
	vars, err := variable.BuildVariables(cfg.Variables)
	if err != nil {
		return f.Fail("failed to build variables", err)
	}

	result := VariablesResult{Variables: make([]VariableInfo, len(vars))}
	for i, v := range vars {
		info := VariableInfo{
			Name:  v.Name(),
			Class: string(v.Class()),
			Type:  string(v.Type()),
			Parts: make([]string, v.Len()),
		}
		for j, p := range v.Parts() {
			info.Parts[j] = p.String()
		}
		result.Variables[i] = info
	}
	return f.Success(result)
}
