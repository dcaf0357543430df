package units

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/subsamplr/internal/bins"
	"github.com/roach88/subsamplr/internal/testutil"
	"github.com/roach88/subsamplr/internal/variable"
)

var discard = slog.New(slog.DiscardHandler)

var testColumns = []Column{
	{Name: "Mean OCR quality", Type: variable.TypeFloat},
	{Name: "Year", Type: variable.TypeInt},
	{Name: "Location", Type: variable.TypeString},
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "units.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func collect(t *testing.T, src Source) ([]Unit, error) {
	t.Helper()
	var out []Unit
	for u, err := range src.Units(context.Background()) {
		if err != nil {
			return out, err
		}
		out = append(out, u)
	}
	return out, nil
}

func TestCSVSource(t *testing.T) {
	path := writeCSV(t, "id,Year,Mean OCR quality,Location,Title\n"+
		"a,1805,0.91,N,First\n"+
		"b, 1850 ,0.5,SW,Second\n"+
		"c,1899.0,0.05,NW,Third\n")

	src := &CSVSource{Path: path, IDColumn: "id", Columns: testColumns, Logger: discard}
	got, err := collect(t, src)
	require.NoError(t, err)

	assert.Equal(t, []Unit{
		{ID: "a", Values: []any{0.91, int64(1805), "N"}},
		{ID: "b", Values: []any{0.5, int64(1850), "SW"}},
		{ID: "c", Values: []any{0.05, int64(1899), "NW"}},
	}, got)
}

func TestCSVSourceSkipsMissingValues(t *testing.T) {
	path := writeCSV(t, "id,Mean OCR quality,Year,Location\n"+
		"a,0.5,1805,N\n"+
		"b,,1805,N\n"+
		",0.5,1805,N\n"+
		"d,0.5,1805,  \n"+
		"e,0.6,1806,S\n")

	src := &CSVSource{Path: path, IDColumn: "id", Columns: testColumns, Logger: discard}
	got, err := collect(t, src)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "e", got[1].ID)
}

func TestCSVSourceLossyCast(t *testing.T) {
	path := writeCSV(t, "id,Mean OCR quality,Year,Location\n"+
		"a,0.5,1805,N\n"+
		"b,0.5,1805.5,N\n")

	src := &CSVSource{Path: path, IDColumn: "id", Columns: testColumns, Logger: discard}
	got, err := collect(t, src)
	require.Error(t, err)
	assert.Len(t, got, 1)
	assert.True(t, IsCoercionError(err))

	var ce *CoercionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "b", ce.Unit)
	assert.Equal(t, "Year", ce.Column)

	var lossy *variable.LossyCastError
	assert.ErrorAs(t, err, &lossy)
}

func TestCSVSourceMissingColumn(t *testing.T) {
	path := writeCSV(t, "id,Mean OCR quality,Location\na,0.5,N\n")

	src := &CSVSource{Path: path, IDColumn: "id", Columns: testColumns, Logger: discard}
	_, err := collect(t, src)
	require.Error(t, err)
	assert.True(t, IsMissingColumnError(err))
	assert.Contains(t, err.Error(), `"Year"`)
}

func TestCSVSourceByteOrderMark(t *testing.T) {
	path := writeCSV(t, "\ufeffid,Mean OCR quality,Year,Location\na,0.5,1805,N\n")

	src := &CSVSource{Path: path, IDColumn: "id", Columns: testColumns, Logger: discard}
	got, err := collect(t, src)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCSVSourceEmptyFile(t *testing.T) {
	src := &CSVSource{Path: writeCSV(t, ""), IDColumn: "id", Columns: testColumns, Logger: discard}
	_, err := collect(t, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing header row")
}

func TestCSVSourceNoFile(t *testing.T) {
	src := &CSVSource{Path: filepath.Join(t.TempDir(), "absent.csv"), IDColumn: "id", Columns: testColumns}
	_, err := collect(t, src)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCSVSourceHonoursCancellation(t *testing.T) {
	path := writeCSV(t, "id,Mean OCR quality,Year,Location\na,0.5,1805,N\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &CSVSource{Path: path, IDColumn: "id", Columns: testColumns, Logger: discard}
	for _, err := range src.Units(ctx) {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestIngest(t *testing.T) {
	path := writeCSV(t, "id,Mean OCR quality,Year,Location\n"+
		"a,0.5,1805,N\n"+
		"b,0.5,1805,N\n"+
		"c,0.5,1700,N\n"+
		"a,0.5,1805,N\n")

	c := testutil.Collection(t, nil, bins.WithLogger(discard))
	src := &CSVSource{Path: path, IDColumn: "id", Columns: Columns(c.Dimensions()), Logger: discard}

	n, err := Ingest(context.Background(), src, c)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 2, c.CountUnits())
	assert.Equal(t, 1, c.CountExclusions())
}

func TestIngestStopsOnError(t *testing.T) {
	path := writeCSV(t, "id,Mean OCR quality,Year,Location\n"+
		"a,0.5,1805,N\n"+
		"b,high,1805,N\n")

	c := testutil.Collection(t, nil, bins.WithLogger(discard))
	src := &CSVSource{Path: path, IDColumn: "id", Columns: testColumns, Logger: discard}

	n, err := Ingest(context.Background(), src, c)
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, IsCoercionError(err))
}

func TestColumns(t *testing.T) {
	dims, err := variable.BuildVariables(testutil.Declarations())
	require.NoError(t, err)
	assert.Equal(t, testColumns, Columns(dims))
}

func TestSQLSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "units.db")

	rw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = rw.Exec(`CREATE TABLE issues (
		issue_id TEXT PRIMARY KEY,
		year INTEGER,
		quality REAL,
		place TEXT
	)`)
	require.NoError(t, err)
	_, err = rw.Exec(`INSERT INTO issues VALUES
		('x1', 1805, 0.5, 'N'),
		('x2', 1890, 0.25, 'caf` + "\u00e9" + `'),
		('x3', NULL, 0.25, 'S'),
		('x4', 1850, 0.75, 'E')`)
	require.NoError(t, err)
	require.NoError(t, rw.Close())

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	src := &SQLSource{
		DB:       db,
		Query:    `SELECT issue_id, year AS "Year", quality AS "Mean OCR quality", place AS "Location" FROM issues WHERE year IS NULL OR year < ? ORDER BY issue_id`,
		Args:     []any{1880},
		IDColumn: "issue_id",
		Columns:  testColumns,
		Logger:   discard,
	}
	got, err := collect(t, src)
	require.NoError(t, err)
	assert.Equal(t, []Unit{
		{ID: "x1", Values: []any{0.5, int64(1805), "N"}},
		{ID: "x4", Values: []any{0.75, int64(1850), "E"}},
	}, got)

	src.Args = []any{2000}
	got, err = collect(t, src)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "caf\u00e9", got[1].Values[2])
}

func TestOpenSQLiteIsReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "units.db")
	rw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = rw.Exec(`CREATE TABLE t (id TEXT)`)
	require.NoError(t, err)
	require.NoError(t, rw.Close())

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO t VALUES ('a')`)
	assert.Error(t, err)
}

func TestSQLSourceMissingColumn(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	src := &SQLSource{
		DB:       db,
		Query:    `SELECT 'a' AS id, 1805 AS "Year"`,
		IDColumn: "id",
		Columns:  testColumns,
		Logger:   discard,
	}
	_, err = collect(t, src)
	require.Error(t, err)
	assert.True(t, IsMissingColumnError(err))
}
