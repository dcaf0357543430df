package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrRunNotFound is returned by ReadRun for an unknown ID.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, seq, config_hash, selection_hash, seed, size, weights, unit_count, exclusion_count, bin_count`

// ReadRun returns a run and its units.
func (s *Store) ReadRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT unit_id FROM run_units
		WHERE run_id = ?
		ORDER BY unit_id COLLATE BINARY ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query run units: %w", err)
	}
	defer rows.Close()

	run.Units = []string{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan run unit: %w", err)
		}
		run.Units = append(run.Units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run units: %w", err)
	}
	return &run, nil
}

// ListRuns returns runs without their units, ordered by seq. A non-empty
// configHash restricts the listing to runs of that design.
//
// Returns an empty slice (not nil) if there are no runs.
func (s *Store) ListRuns(ctx context.Context, configHash string) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if configHash != "" {
		query += ` WHERE config_hash = ?`
		args = append(args, configHash)
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run     Run
		seed    string
		weights string
	)
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&run.ConfigHash,
		&run.SelectionHash,
		&seed,
		&run.Size,
		&weights,
		&run.UnitCount,
		&run.ExclusionCount,
		&run.BinCount,
	)
	if err != nil {
		return Run{}, err
	}

	if run.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
		return Run{}, fmt.Errorf("run %s: parse seed: %w", run.ID, err)
	}
	var w map[string][]float64
	if err := json.Unmarshal([]byte(weights), &w); err != nil {
		return Run{}, fmt.Errorf("run %s: parse weights: %w", run.ID, err)
	}
	if len(w) > 0 {
		run.Weights = w
	}
	return run, nil
}
