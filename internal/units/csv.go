package units

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"strings"
)

// CSVSource reads units from a CSV file with a header row.
type CSVSource struct {
	Path     string
	IDColumn string
	Columns  []Column
	Logger   *slog.Logger
}

// Units opens the file and yields one unit per data row.
func (s *CSVSource) Units(ctx context.Context) iter.Seq2[Unit, error] {
	return func(yield func(Unit, error) bool) {
		f, err := os.Open(s.Path)
		if err != nil {
			yield(Unit{}, fmt.Errorf("open csv source: %w", err))
			return
		}
		defer f.Close()

		s.read(ctx, csv.NewReader(f), yield)
	}
}

func (s *CSVSource) read(ctx context.Context, r *csv.Reader, yield func(Unit, error) bool) {
	logger := loggerOrDefault(s.Logger)

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("missing header row")
		}
		yield(Unit{}, fmt.Errorf("read csv header: %w", err))
		return
	}
	// A UTF-8 byte order mark would otherwise become part of the first name.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	idPos, pos, err := columnIndex(header, s.IDColumn, s.Columns)
	if err != nil {
		yield(Unit{}, err)
		return
	}

	raw := make([]any, len(pos))
	for {
		if err := ctx.Err(); err != nil {
			yield(Unit{}, err)
			return
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			yield(Unit{}, fmt.Errorf("read csv: %w", err))
			return
		}

		for i, p := range pos {
			raw[i] = rec[p]
		}
		u, ok, err := buildUnit(logger, rec[idPos], s.Columns, raw)
		if err != nil {
			yield(Unit{}, err)
			return
		}
		if !ok {
			continue
		}
		if !yield(u, nil) {
			return
		}
	}
}
