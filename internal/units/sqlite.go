package units

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"log/slog"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

// OpenSQLite opens an existing SQLite database read-only.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := "file:" + (&url.URL{Path: path}).EscapedPath() + "?mode=ro&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite source: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to sqlite source: %w", err)
	}
	return db, nil
}

// SQLSource reads units from the result set of a query. The result must
// include IDColumn and every declared column; other columns are ignored.
type SQLSource struct {
	DB       *sql.DB
	Query    string
	Args     []any
	IDColumn string
	Columns  []Column
	Logger   *slog.Logger
}

// Units runs the query and yields one unit per row.
func (s *SQLSource) Units(ctx context.Context) iter.Seq2[Unit, error] {
	return func(yield func(Unit, error) bool) {
		logger := loggerOrDefault(s.Logger)

		rows, err := s.DB.QueryContext(ctx, s.Query, s.Args...)
		if err != nil {
			yield(Unit{}, fmt.Errorf("query sqlite source: %w", err))
			return
		}
		defer rows.Close()

		names, err := rows.Columns()
		if err != nil {
			yield(Unit{}, fmt.Errorf("read result columns: %w", err))
			return
		}
		idPos, pos, err := columnIndex(names, s.IDColumn, s.Columns)
		if err != nil {
			yield(Unit{}, err)
			return
		}

		dest := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		raw := make([]any, len(pos))

		for rows.Next() {
			if err := rows.Scan(ptrs...); err != nil {
				yield(Unit{}, fmt.Errorf("scan row: %w", err))
				return
			}
			for i, p := range pos {
				raw[i] = dest[p]
			}
			u, ok, err := buildUnit(logger, dest[idPos], s.Columns, raw)
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
		if err := rows.Err(); err != nil {
			yield(Unit{}, fmt.Errorf("iterate rows: %w", err))
		}
	}
}
