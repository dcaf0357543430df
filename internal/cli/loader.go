package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/subsamplr/internal/bins"
	"github.com/roach88/subsamplr/internal/config"
	"github.com/roach88/subsamplr/internal/metrics"
	"github.com/roach88/subsamplr/internal/store"
	"github.com/roach88/subsamplr/internal/units"
)

// Error code constants, unified across all CLI commands.
const (
	ErrCodeGeneric  = "E001" // Generic/unknown error
	ErrCodeConfig   = "E002" // Configuration unreadable or invalid
	ErrCodeDesign   = "E003" // Partition or weights rejected
	ErrCodeIngest   = "E004" // Source column missing or value not coercible
	ErrCodeCapacity = "E005" // Population cannot satisfy the request
	ErrCodeNotFound = "E006" // File or run not found
	ErrCodeStore    = "E007" // Run store failure
)

// errRunStore marks failures of the run database.
var errRunStore = errors.New("run store")

func storeError(err error) error {
	return fmt.Errorf("%w: %w", errRunStore, err)
}

// classify maps an error to its CLI error code and exit code. Only a
// population too small for the request is a failure; everything else is
// a command error.
func classify(err error) (code string, exit int) {
	switch {
	case bins.IsCapacityError(err):
		return ErrCodeCapacity, ExitFailure
	case config.IsLoadError(err):
		return ErrCodeConfig, ExitCommandError
	case bins.IsConfigError(err):
		return ErrCodeDesign, ExitCommandError
	case units.IsMissingColumnError(err), units.IsCoercionError(err):
		return ErrCodeIngest, ExitCommandError
	case errors.Is(err, store.ErrRunNotFound), errors.Is(err, os.ErrNotExist):
		return ErrCodeNotFound, ExitCommandError
	case errors.Is(err, errRunStore):
		return ErrCodeStore, ExitCommandError
	}
	return ErrCodeGeneric, ExitCommandError
}

// errorDetails returns the structured context carried by err, if any.
func errorDetails(err error) any {
	var be *bins.Error
	if errors.As(err, &be) {
		details := map[string]string{"kind": string(be.Code)}
		if be.Dimension != "" {
			details["dimension"] = be.Dimension
		}
		for k, v := range be.Details {
			details[k] = v
		}
		return details
	}
	var ce *units.CoercionError
	if errors.As(err, &ce) {
		return map[string]string{"unit": ce.Unit, "column": ce.Column}
	}
	var le *config.LoadError
	if errors.As(err, &le) && le.Field != "" {
		return map[string]string{"field": le.Field}
	}
	return nil
}

// population is a configuration and the collection built from its source.
type population struct {
	cfg        *config.Config
	collection *bins.Collection
}

// loadPopulation reads the configuration at path, builds its collection
// and ingests every unit of the configured source.
func loadPopulation(ctx context.Context, path string, logger *slog.Logger, rec *metrics.Recorder) (*population, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	c, err := bins.Construct(cfg.Variables,
		bins.WithLogger(logger),
		bins.WithExclusionTracking(cfg.Sample.Tracking()))
	if err != nil {
		return nil, err
	}

	src, closeSource, err := openSource(cfg, c, logger)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	stop := rec.Time(metrics.PhaseIngest)
	n, err := units.Ingest(ctx, src, c)
	stop()
	if err != nil {
		return nil, err
	}
	logger.Debug("population ingested",
		"assigned", n,
		"units", c.CountUnits(),
		"bins", c.CountBins(),
		"exclusions", c.CountExclusions())

	return &population{cfg: cfg, collection: c}, nil
}

// openSource returns the unit source named by the configuration and a
// function releasing it.
func openSource(cfg *config.Config, c *bins.Collection, logger *slog.Logger) (units.Source, func() error, error) {
	cols := units.Columns(c.Dimensions())
	switch cfg.Source.Kind {
	case config.SourceCSV:
		return &units.CSVSource{
			Path:     cfg.Source.Path,
			IDColumn: cfg.Source.UnitID,
			Columns:  cols,
			Logger:   logger,
		}, func() error { return nil }, nil
	case config.SourceSQLite:
		db, err := units.OpenSQLite(cfg.Source.Path)
		if err != nil {
			return nil, nil, err
		}
		return &units.SQLSource{
			DB:       db,
			Query:    cfg.Source.Query,
			IDColumn: cfg.Source.UnitID,
			Columns:  cols,
			Logger:   logger,
		}, db.Close, nil
	}
	return nil, nil, &config.LoadError{Field: "source.kind", Message: fmt.Sprintf("no unit source configured (kind %q)", cfg.Source.Kind)}
}
