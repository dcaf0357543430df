package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/subsamplr/internal/fingerprint"
)

// Run is one recorded selection.
type Run struct {
	ID            string
	Seq           int64
	ConfigHash    string
	SelectionHash string
	Seed          uint64
	Size          int

	// Weights are the prescribed weights by variable name; nil when the
	// run used representative weights throughout.
	Weights map[string][]float64

	UnitCount      int
	ExclusionCount int
	BinCount       int

	// Units are the selected identifiers, sorted. ListRuns leaves them nil.
	Units []string
}

// WriteRun records run and its units in one transaction, assigning the
// next seq and setting run.Seq. Writing an ID that already exists changes
// nothing and sets run.Seq to the stored value.
func (s *Store) WriteRun(ctx context.Context, run *Run) error {
	weights, err := marshalWeights(run.Weights)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx, `SELECT seq FROM runs WHERE id = ?`, run.ID).Scan(&existing)
	switch {
	case err == nil:
		run.Seq = existing
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("write run: lookup: %w", err)
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, config_hash, selection_hash, seed, size, weights, unit_count, exclusion_count, bin_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		seq,
		run.ConfigHash,
		run.SelectionHash,
		strconv.FormatUint(run.Seed, 10),
		run.Size,
		weights,
		run.UnitCount,
		run.ExclusionCount,
		run.BinCount,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_units (run_id, unit_id) VALUES (?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write run units: %w", err)
	}
	defer stmt.Close()

	for _, u := range run.Units {
		if _, err := stmt.ExecContext(ctx, run.ID, u); err != nil {
			return fmt.Errorf("write run unit %s: %w", u, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	run.Seq = seq
	return nil
}

func marshalWeights(w map[string][]float64) (string, error) {
	obj := make(map[string]any, len(w))
	for name, ws := range w {
		obj[name] = ws
	}
	data, err := fingerprint.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal weights: %w", err)
	}
	return string(data), nil
}
