// Package grid defines the tabular backend contract and its drivers.
//
// A Grid is a remote, label-addressed 2-D sheet of string cells with
// 1-based coordinates. Every call is assumed to be a network round trip
// with no atomicity across calls; multi-cell operations composed from
// these primitives are best effort by design.
package grid

import "context"

// Pos addresses a single cell. Row and Col are 1-based.
type Pos struct {
	Row int
	Col int
}

// Grid provides per-cell read/write, row/column access, structural
// inserts, and content search over one sheet.
type Grid interface {
	// ReadCell returns the value at (row, col). Cells that were never
	// written read as the empty string.
	ReadCell(ctx context.Context, row, col int) (string, error)

	// WriteCell sets the value at (row, col), growing the sheet as needed.
	WriteCell(ctx context.Context, row, col int, value string) error

	// ReadRow returns row n with trailing empty cells trimmed.
	ReadRow(ctx context.Context, n int) ([]string, error)

	// ReadCol returns column n with trailing empty cells trimmed.
	ReadCol(ctx context.Context, n int) ([]string, error)

	// InsertRow inserts values as a new row immediately after row `after`.
	// after == 0 inserts before the first row.
	InsertRow(ctx context.Context, after int, values []string) error

	// InsertCol inserts values as a new column immediately after column
	// `after`. after == 0 inserts before the first column.
	InsertCol(ctx context.Context, after int, values []string) error

	// AppendRow appends values after the last non-empty row.
	AppendRow(ctx context.Context, values []string) error

	// Find returns the positions of every cell whose value equals value,
	// in row-major order. An empty result is not an error.
	Find(ctx context.Context, value string) ([]Pos, error)

	// ReadAll returns the full sheet as a dense matrix.
	ReadAll(ctx context.Context) ([][]string, error)
}

// Workbook bundles the named sheets the service operates on, mirroring
// the tabs of the backing document.
type Workbook struct {
	Scoreboard  Grid
	Log         Grid
	Tokens      Grid
	Roster      Grid
	Submissions Grid
	Flags       Grid
	CTF         Grid
	Problems    []Grid // p1..pN answer sheets
}
