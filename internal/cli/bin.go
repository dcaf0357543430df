package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/subsamplr/internal/metrics"
	"github.com/roach88/subsamplr/internal/report"
)

// BinOptions holds flags for the bin command.
type BinOptions struct {
	*RootOptions
	Config      string
	MetricsFile string
}

// BinResult holds the diagnostics of a populated collection.
type BinResult struct {
	Summary   report.Summary    `json:"summary"`
	Histogram *report.Histogram `json:"histogram"`
}

// WriteText renders the summary followed by the histogram.
func (r BinResult) WriteText(w io.Writer) error {
	if err := r.Summary.WriteText(w); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return r.Histogram.WriteText(w)
}

// NewBinCommand creates the bin command.
func NewBinCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BinOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bin",
		Short: "Assign the population to bins and summarise it",
		Long: `Read every unit of the configured source, assign it to its bin and report
unit, bin and exclusion counts together with a histogram over the first
two variables.

Exit codes:
  0 - Population binned
  2 - Configuration, source or ingestion error

Examples:
  subsamplr bin --config subsample.yaml
  subsamplr bin --config subsample.yaml --metrics-file /var/lib/node_exporter/subsamplr.prom`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBin(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "configuration file or CUE directory (required)")
	_ = cmd.MarkFlagRequired("config")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")

	return cmd
}

func runBin(opts *BinOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	f := opts.formatter(cmd)
	logger := opts.Logger(cmd.ErrOrStderr())
	rec := metrics.New()

	pop, err := loadPopulation(ctx, opts.Config, logger, rec)
	if err != nil {
		return f.Fail("failed to bin population", err)
	}

	result := BinResult{
		Summary:   report.Summarize(pop.collection),
		Histogram: report.NewHistogram(pop.collection),
	}
	rec.ObserveSummary(result.Summary)
	if opts.MetricsFile != "" {
		if err := rec.WriteTextfile(opts.MetricsFile); err != nil {
			return f.Fail("failed to write metrics", err)
		}
	}
	return f.Success(result)
}
