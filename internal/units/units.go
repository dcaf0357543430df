// Package units streams population units from tabular sources into a bin
// collection.
//
// A Source yields one Unit per row: an identifier and one value per
// declared variable, already coerced to the variable's value type. Rows
// with a missing identifier or value are skipped and logged. A value that
// cannot be coerced without loss stops the stream with a *CoercionError.
package units

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/roach88/subsamplr/internal/variable"
)

// Unit is one row of a source.
type Unit struct {
	ID     string
	Values []any
}

// Source yields units. Each call to Units starts a fresh pass; the
// sequence stops after the first error.
type Source interface {
	Units(ctx context.Context) iter.Seq2[Unit, error]
}

// Column names a source column holding one variable's values.
type Column struct {
	Name string
	Type variable.ValueType
}

// Columns returns one column per variable, named after the variable.
func Columns(dims []*variable.Variable) []Column {
	cols := make([]Column, len(dims))
	for i, d := range dims {
		cols[i] = Column{Name: d.Name(), Type: d.Type()}
	}
	return cols
}

// Assigner receives units. *bins.Collection implements it.
type Assigner interface {
	Assign(unit string, values []any) error
}

// CoercionError reports a value that could not be converted to its
// column's type.
type CoercionError struct {
	Unit   string
	Column string
	Err    error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("unit %s: column %q: %v", e.Unit, e.Column, e.Err)
}

func (e *CoercionError) Unwrap() error { return e.Err }

// MissingColumnError reports a declared column absent from the source.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("source has no column %q", e.Column)
}

// IsCoercionError returns true if the error is a *CoercionError.
func IsCoercionError(err error) bool {
	var e *CoercionError
	return errors.As(err, &e)
}

// IsMissingColumnError returns true if the error is a *MissingColumnError.
func IsMissingColumnError(err error) bool {
	var e *MissingColumnError
	return errors.As(err, &e)
}

// Ingest assigns every unit of src to dst and returns the number of units
// passed to Assign.
func Ingest(ctx context.Context, src Source, dst Assigner) (int, error) {
	n := 0
	for u, err := range src.Units(ctx) {
		if err != nil {
			return n, fmt.Errorf("ingest: %w", err)
		}
		if err := dst.Assign(u.ID, u.Values); err != nil {
			return n, fmt.Errorf("ingest unit %s: %w", u.ID, err)
		}
		n++
	}
	return n, nil
}

// columnIndex maps the id column and each declared column to its position
// in a header.
func columnIndex(header []string, idColumn string, cols []Column) (id int, pos []int, err error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	id, ok := index[idColumn]
	if !ok {
		return 0, nil, &MissingColumnError{Column: idColumn}
	}
	pos = make([]int, len(cols))
	for i, c := range cols {
		p, ok := index[c.Name]
		if !ok {
			return 0, nil, &MissingColumnError{Column: c.Name}
		}
		pos[i] = p
	}
	return id, pos, nil
}

// buildUnit coerces one row. ok is false when the row has a missing
// identifier or value and should be skipped.
func buildUnit(logger *slog.Logger, rawID any, cols []Column, raw []any) (u Unit, ok bool, err error) {
	if missing(rawID) {
		logger.Debug("skipping row with missing identifier")
		return Unit{}, false, nil
	}
	id, err := variable.CoerceScalar(variable.TypeString, rawID)
	if err != nil {
		return Unit{}, false, fmt.Errorf("unit identifier: %w", err)
	}
	u.ID = id.(string)

	u.Values = make([]any, len(cols))
	for i, c := range cols {
		if missing(raw[i]) {
			logger.Debug("skipping unit with missing value", "unit", u.ID, "column", c.Name)
			return Unit{}, false, nil
		}
		v, err := variable.CoerceScalar(c.Type, trim(raw[i]))
		if err != nil {
			return Unit{}, false, &CoercionError{Unit: u.ID, Column: c.Name, Err: err}
		}
		u.Values[i] = v
	}
	return u, true, nil
}

func missing(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []byte:
		return strings.TrimSpace(string(val)) == ""
	}
	return false
}

func trim(v any) any {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []byte:
		return strings.TrimSpace(string(val))
	}
	return v
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
