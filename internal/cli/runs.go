package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/subsamplr/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Store      string
	ConfigHash string
	Show       string
}

// RunInfo is the CLI view of a recorded run.
type RunInfo struct {
	ID             string               `json:"id"`
	Seq            int64                `json:"seq"`
	ConfigHash     string               `json:"config_hash"`
	SelectionHash  string               `json:"selection_hash"`
	Seed           uint64               `json:"seed"`
	Size           int                  `json:"size"`
	Weights        map[string][]float64 `json:"weights,omitempty"`
	UnitCount      int                  `json:"unit_count"`
	ExclusionCount int                  `json:"exclusion_count"`
	BinCount       int                  `json:"bin_count"`
	Units          []string             `json:"units,omitempty"`
}

func runInfo(r store.Run) RunInfo {
	return RunInfo{
		ID:             r.ID,
		Seq:            r.Seq,
		ConfigHash:     r.ConfigHash,
		SelectionHash:  r.SelectionHash,
		Seed:           r.Seed,
		Size:           r.Size,
		Weights:        r.Weights,
		UnitCount:      r.UnitCount,
		ExclusionCount: r.ExclusionCount,
		BinCount:       r.BinCount,
		Units:          r.Units,
	}
}

// RunsResult holds a listing of runs.
type RunsResult struct {
	Runs []RunInfo `json:"runs"`
}

// WriteText renders one row per run. Hashes are shortened to twelve hex
// digits.
func (r RunsResult) WriteText(w io.Writer) error {
	if len(r.Runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tID\tCONFIG\tSEED\tSIZE\tPOPULATION")
	for _, run := range r.Runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\n",
			run.Seq, run.ID, short(run.ConfigHash), run.Seed, run.Size, run.UnitCount)
	}
	return tw.Flush()
}

// WriteText renders a single run with its selected units.
func (r RunInfo) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "run:\t%s\n", r.ID)
	fmt.Fprintf(tw, "seq:\t%d\n", r.Seq)
	fmt.Fprintf(tw, "config:\t%s\n", r.ConfigHash)
	fmt.Fprintf(tw, "selection:\t%s\n", r.SelectionHash)
	fmt.Fprintf(tw, "seed:\t%s\n", strconv.FormatUint(r.Seed, 10))
	fmt.Fprintf(tw, "size:\t%d\n", r.Size)
	fmt.Fprintf(tw, "population:\t%d units, %d bins, %d exclusions\n", r.UnitCount, r.BinCount, r.ExclusionCount)
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, u := range r.Units {
		fmt.Fprintf(w, "  %s\n", u)
	}
	return nil
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List or show recorded sample runs",
		Long: `List the runs recorded by "sample --store" in the order they were made,
or show one run with its selected units.

Exit codes:
  0 - Listing printed
  2 - Store error or run not found

Examples:
  subsamplr runs --store runs.db
  subsamplr runs --store runs.db --config-hash 3f2a...
  subsamplr runs --store runs.db --show 0192f0c1-...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Store, "store", "", "path to the run database (required)")
	_ = cmd.MarkFlagRequired("store")
	cmd.Flags().StringVar(&opts.ConfigHash, "config-hash", "", "list only runs of this configuration")
	cmd.Flags().StringVar(&opts.Show, "show", "", "show one run and its units")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	f := opts.formatter(cmd)

	st, err := store.Open(opts.Store)
	if err != nil {
		return f.Fail("failed to open run store", storeError(err))
	}
	defer st.Close()

	if opts.Show != "" {
		run, err := st.ReadRun(ctx, opts.Show)
		if err != nil {
			return f.Fail("failed to read run", err)
		}
		return f.Success(runInfo(*run))
	}

	runs, err := st.ListRuns(ctx, opts.ConfigHash)
	if err != nil {
		return f.Fail("failed to list runs", storeError(err))
	}
	result := RunsResult{Runs: make([]RunInfo, len(runs))}
	for i, r := range runs {
		result.Runs[i] = runInfo(r)
	}
	return f.Success(result)
}
