package cli

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/roach88/subsamplr/internal/config"
	"github.com/roach88/subsamplr/internal/fingerprint"
	"github.com/roach88/subsamplr/internal/metrics"
	"github.com/roach88/subsamplr/internal/report"
	"github.com/roach88/subsamplr/internal/store"
)

// SampleOptions holds flags for the sample command.
type SampleOptions struct {
	*RootOptions
	Config      string
	Size        int
	Seed        uint64
	Weights     string
	Store       string
	MetricsFile string
}

// SampleResult holds one selection.
type SampleResult struct {
	RunID         string   `json:"run_id,omitempty"`
	Seq           int64    `json:"seq,omitempty"`
	ConfigHash    string   `json:"config_hash"`
	SelectionHash string   `json:"selection_hash"`
	Seed          uint64   `json:"seed"`
	Size          int      `json:"size"`
	Units         []string `json:"units"`
}

// WriteText prints the selected identifiers, one per line.
func (r SampleResult) WriteText(w io.Writer) error {
	for _, u := range r.Units {
		if _, err := fmt.Fprintln(w, u); err != nil {
			return err
		}
	}
	return nil
}

// NewSampleCommand creates the sample command.
func NewSampleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SampleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Draw a weighted subsample of the population",
		Long: `Bin the configured population, then draw a subsample of distinct units.
Each draw descends the bin tree choosing one part per variable, using the
configured weights where given and the population's own proportions
elsewhere. The same configuration, seed and population always select the
same units.

--size, --seed and --weights override the configuration's sample section.
The weights file is a YAML mapping from variable name to one weight per
part.

Exit codes:
  0 - Subsample drawn
  1 - The population cannot supply the requested units
  2 - Configuration, source, weights or store error

Examples:
  subsamplr sample --config subsample.yaml
  subsamplr sample --config subsample.yaml --size 200 --seed 7
  subsamplr sample --config subsample.yaml --weights decades.yaml --store runs.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSample(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "configuration file or CUE directory (required)")
	_ = cmd.MarkFlagRequired("config")
	cmd.Flags().IntVarP(&opts.Size, "size", "n", 0, "number of units to select")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed")
	cmd.Flags().StringVar(&opts.Weights, "weights", "", "YAML file of weights by variable name")
	cmd.Flags().StringVar(&opts.Store, "store", "", "record the run in this SQLite database")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")

	return cmd
}

func runSample(opts *SampleOptions, cmd *cobra.Command) error {
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
	cfg := pop.cfg
	if err := applySampleFlags(opts, cmd, cfg); err != nil {
		return f.Fail("invalid sample parameters", err)
	}

	c := pop.collection
	weights, err := cfg.Weights(c.Dimensions())
	if err != nil {
		return f.Fail("invalid weights", err)
	}

	rng := rand.New(rand.NewPCG(cfg.Sample.Seed, cfg.Sample.Seed))
	stop := rec.Time(metrics.PhaseSelect)
	selected, err := c.SelectUnits(rng, cfg.Sample.Size, weights)
	stop()
	if err != nil {
		return f.Fail("failed to select units", err)
	}
	if selected == nil {
		selected = []string{}
	}

	summary := report.Summarize(c)
	rec.ObserveSummary(summary)
	rec.ObserveSelection(len(selected))

	configHash, err := fingerprint.ConfigHash(cfg)
	if err != nil {
		return f.Fail("failed to fingerprint configuration", err)
	}
	result := SampleResult{
		ConfigHash:    configHash,
		SelectionHash: fingerprint.SelectionHash(selected),
		Seed:          cfg.Sample.Seed,
		Size:          cfg.Sample.Size,
		Units:         selected,
	}

	if opts.Store != "" {
		run, err := recordRun(ctx, opts.Store, cfg, summary, result)
		if err != nil {
			return f.Fail("failed to record run", err)
		}
		result.RunID, result.Seq = run.ID, run.Seq
		f.Notice("recorded run %s (seq %d)", run.ID, run.Seq)
	}

	if opts.MetricsFile != "" {
		if err := rec.WriteTextfile(opts.MetricsFile); err != nil {
			return f.Fail("failed to write metrics", err)
		}
	}
	return f.Success(result)
}

// applySampleFlags overrides the configuration's sample section with the
// flags set on the command line, then revalidates it.
func applySampleFlags(opts *SampleOptions, cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("size") {
		cfg.Sample.Size = opts.Size
	}
	if flags.Changed("seed") {
		cfg.Sample.Seed = opts.Seed
	}
	if opts.Weights != "" {
		w, err := config.LoadWeights(opts.Weights)
		if err != nil {
			return err
		}
		cfg.Sample.Weights = w
	}
	return cfg.Validate()
}

func recordRun(ctx context.Context, path string, cfg *config.Config, summary report.Summary, result SampleResult) (*store.Run, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, storeError(err)
	}
	defer st.Close()

	run := &store.Run{
		ID:             store.NewRunID(),
		ConfigHash:     result.ConfigHash,
		SelectionHash:  result.SelectionHash,
		Seed:           result.Seed,
		Size:           result.Size,
		Weights:        cfg.Sample.Weights,
		UnitCount:      summary.Units,
		ExclusionCount: summary.Exclusions,
		BinCount:       summary.Bins,
		Units:          result.Units,
	}
	if err := st.WriteRun(ctx, run); err != nil {
		return nil, storeError(err)
	}
	return run, nil
}
