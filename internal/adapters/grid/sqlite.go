package grid

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/acmx/sheetboard/pkg/metrics"
)

// SQLiteGrid implements Grid over a shared SQLite database, one logical
// sheet per grid. It persists cells sparsely as (sheet, row, col, value)
// tuples; empty cells are absent. Intended for local and single-node
// deployments; the remote spreadsheet driver lives outside this module.
type SQLiteGrid struct {
	db    *sql.DB
	sheet string
}

const cellsSchema = `
CREATE TABLE IF NOT EXISTS cells (
    sheet TEXT NOT NULL,
    row   INTEGER NOT NULL,
    col   INTEGER NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (sheet, row, col)
);
`

// OpenSQLiteDB opens (creating if needed) the cells database at path.
func OpenSQLiteDB(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: storage path is required", ErrBackendUnavailable)
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite db: %w", ErrBackendUnavailable, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping sqlite db: %w", ErrBackendUnavailable, err)
	}
	if _, err := db.Exec(cellsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create schema: %w", ErrBackendUnavailable, err)
	}
	return db, nil
}

// NewSQLiteGrid returns a grid bound to one named sheet of db.
func NewSQLiteGrid(db *sql.DB, sheet string) *SQLiteGrid {
	return &SQLiteGrid{db: db, sheet: sheet}
}

func (g *SQLiteGrid) observe(op string, start time.Time, err error) {
	metrics.RecordBackendCall(op)
	metrics.RecordBackendLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordBackendError(op)
	}
}

func (g *SQLiteGrid) ReadCell(ctx context.Context, row, col int) (_ string, err error) {
	start := time.Now()
	defer func() { g.observe("read_cell", start, err) }()
	if row < 1 || col < 1 {
		return "", fmt.Errorf("%w: (%d,%d)", ErrBadCoordinate, row, col)
	}
	var v string
	err = g.db.QueryRowContext(ctx,
		`SELECT value FROM cells WHERE sheet = ? AND row = ? AND col = ?`,
		g.sheet, row, col).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: read cell: %w", ErrBackendUnavailable, err)
	}
	return v, nil
}

func (g *SQLiteGrid) WriteCell(ctx context.Context, row, col int, value string) (err error) {
	start := time.Now()
	defer func() { g.observe("write_cell", start, err) }()
	if row < 1 || col < 1 {
		return fmt.Errorf("%w: (%d,%d)", ErrBadCoordinate, row, col)
	}
	if value == "" {
		_, err = g.db.ExecContext(ctx,
			`DELETE FROM cells WHERE sheet = ? AND row = ? AND col = ?`,
			g.sheet, row, col)
	} else {
		_, err = g.db.ExecContext(ctx,
			`INSERT INTO cells (sheet, row, col, value) VALUES (?, ?, ?, ?)
			 ON CONFLICT (sheet, row, col) DO UPDATE SET value = excluded.value`,
			g.sheet, row, col, value)
	}
	if err != nil {
		return fmt.Errorf("%w: write cell: %w", ErrBackendUnavailable, err)
	}
	return nil
}

func (g *SQLiteGrid) ReadRow(ctx context.Context, n int) (_ []string, err error) {
	start := time.Now()
	defer func() { g.observe("read_row", start, err) }()
	if n < 1 {
		return nil, fmt.Errorf("%w: row %d", ErrBadCoordinate, n)
	}
	rows, err := g.db.QueryContext(ctx,
		`SELECT col, value FROM cells WHERE sheet = ? AND row = ? ORDER BY col`,
		g.sheet, n)
	if err != nil {
		return nil, fmt.Errorf("%w: read row: %w", ErrBackendUnavailable, err)
	}
	defer rows.Close()
	return scanLine(rows)
}

func (g *SQLiteGrid) ReadCol(ctx context.Context, n int) (_ []string, err error) {
	start := time.Now()
	defer func() { g.observe("read_col", start, err) }()
	if n < 1 {
		return nil, fmt.Errorf("%w: col %d", ErrBadCoordinate, n)
	}
	rows, err := g.db.QueryContext(ctx,
		`SELECT row, value FROM cells WHERE sheet = ? AND col = ? ORDER BY row`,
		g.sheet, n)
	if err != nil {
		return nil, fmt.Errorf("%w: read col: %w", ErrBackendUnavailable, err)
	}
	defer rows.Close()
	return scanLine(rows)
}

// scanLine builds a dense line from (index, value) pairs, trimming
// trailing empties by construction.
func scanLine(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var idx int
		var v string
		if err := rows.Scan(&idx, &v); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrBackendUnavailable, err)
		}
		for len(out) < idx-1 {
			out = append(out, "")
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate: %w", ErrBackendUnavailable, err)
	}
	return trimTrailing(out), nil
}

func (g *SQLiteGrid) InsertRow(ctx context.Context, after int, values []string) (err error) {
	start := time.Now()
	defer func() { g.observe("insert_row", start, err) }()
	return g.insertLine(ctx, "row", after, values)
}

func (g *SQLiteGrid) InsertCol(ctx context.Context, after int, values []string) (err error) {
	start := time.Now()
	defer func() { g.observe("insert_col", start, err) }()
	return g.insertLine(ctx, "col", after, values)
}

// insertLine shifts every cell past `after` along axis by one and writes
// values into the vacated line. The shift negates indexes first so the
// primary key stays unique mid-update.
func (g *SQLiteGrid) insertLine(ctx context.Context, axis string, after int, values []string) error {
	if after < 0 {
		return fmt.Errorf("%w: after %d", ErrBadCoordinate, after)
	}
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrBackendUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	shift := fmt.Sprintf(`UPDATE cells SET %[1]s = -(%[1]s + 1) WHERE sheet = ? AND %[1]s > ?`, axis)
	if _, err := tx.ExecContext(ctx, shift, g.sheet, after); err != nil {
		return fmt.Errorf("%w: shift: %w", ErrBackendUnavailable, err)
	}
	unshift := fmt.Sprintf(`UPDATE cells SET %[1]s = -%[1]s WHERE sheet = ? AND %[1]s < 0`, axis)
	if _, err := tx.ExecContext(ctx, unshift, g.sheet); err != nil {
		return fmt.Errorf("%w: unshift: %w", ErrBackendUnavailable, err)
	}

	for i, v := range values {
		if v == "" {
			continue
		}
		var row, col int
		if axis == "row" {
			row, col = after+1, i+1
		} else {
			row, col = i+1, after+1
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cells (sheet, row, col, value) VALUES (?, ?, ?, ?)`,
			g.sheet, row, col, v); err != nil {
			return fmt.Errorf("%w: insert line: %w", ErrBackendUnavailable, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrBackendUnavailable, err)
	}
	return nil
}

func (g *SQLiteGrid) AppendRow(ctx context.Context, values []string) (err error) {
	start := time.Now()
	defer func() { g.observe("append_row", start, err) }()
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrBackendUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	var last int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(row), 0) FROM cells WHERE sheet = ?`, g.sheet).Scan(&last); err != nil {
		return fmt.Errorf("%w: last row: %w", ErrBackendUnavailable, err)
	}
	for i, v := range values {
		if v == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cells (sheet, row, col, value) VALUES (?, ?, ?, ?)`,
			g.sheet, last+1, i+1, v); err != nil {
			return fmt.Errorf("%w: append row: %w", ErrBackendUnavailable, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrBackendUnavailable, err)
	}
	return nil
}

func (g *SQLiteGrid) Find(ctx context.Context, value string) (_ []Pos, err error) {
	start := time.Now()
	defer func() { g.observe("find", start, err) }()
	if value == "" {
		return nil, nil
	}
	rows, err := g.db.QueryContext(ctx,
		`SELECT row, col FROM cells WHERE sheet = ? AND value = ? ORDER BY row, col`,
		g.sheet, value)
	if err != nil {
		return nil, fmt.Errorf("%w: find: %w", ErrBackendUnavailable, err)
	}
	defer rows.Close()
	var out []Pos
	for rows.Next() {
		var p Pos
		if err := rows.Scan(&p.Row, &p.Col); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrBackendUnavailable, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate: %w", ErrBackendUnavailable, err)
	}
	return out, nil
}

func (g *SQLiteGrid) ReadAll(ctx context.Context) (_ [][]string, err error) {
	start := time.Now()
	defer func() { g.observe("read_all", start, err) }()
	rows, err := g.db.QueryContext(ctx,
		`SELECT row, col, value FROM cells WHERE sheet = ? ORDER BY row, col`,
		g.sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read all: %w", ErrBackendUnavailable, err)
	}
	defer rows.Close()

	type cell struct {
		row, col int
		value    string
	}
	var cells []cell
	var maxRow, maxCol int
	for rows.Next() {
		var c cell
		if err := rows.Scan(&c.row, &c.col, &c.value); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrBackendUnavailable, err)
		}
		if c.row > maxRow {
			maxRow = c.row
		}
		if c.col > maxCol {
			maxCol = c.col
		}
		cells = append(cells, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate: %w", ErrBackendUnavailable, err)
	}
	out := make([][]string, maxRow)
	for i := range out {
		out[i] = make([]string, maxCol)
	}
	for _, c := range cells {
		out[c.row-1][c.col-1] = c.value
	}
	return out, nil
}

// SQLiteWorkbook owns the shared database handle behind a Workbook.
type SQLiteWorkbook struct {
	Workbook
	db *sql.DB
}

// OpenSQLiteWorkbook opens the workbook at path with problems answer
// sheets (p1..pN).
func OpenSQLiteWorkbook(path string, problems int) (*SQLiteWorkbook, error) {
	db, err := OpenSQLiteDB(path)
	if err != nil {
		return nil, err
	}
	wb := &SQLiteWorkbook{
		Workbook: Workbook{
			Scoreboard:  NewSQLiteGrid(db, "scoreboard"),
			Log:         NewSQLiteGrid(db, "log"),
			Tokens:      NewSQLiteGrid(db, "tokens"),
			Roster:      NewSQLiteGrid(db, "roster"),
			Submissions: NewSQLiteGrid(db, "submissions"),
			Flags:       NewSQLiteGrid(db, "flags"),
			CTF:         NewSQLiteGrid(db, "ctf"),
		},
		db: db,
	}
	for i := 1; i <= problems; i++ {
		wb.Problems = append(wb.Problems, NewSQLiteGrid(db, fmt.Sprintf("p%d", i)))
	}
	return wb, nil
}

// Close closes the underlying database handle.
func (w *SQLiteWorkbook) Close() error {
	if w == nil || w.db == nil {
		return nil
	}
	return w.db.Close()
}
