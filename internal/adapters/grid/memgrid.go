package grid

import (
	"context"
	"fmt"
	"sync"

	"github.com/acmx/sheetboard/pkg/metrics"
)

// MemGrid implements Grid with an in-process matrix. It backs the
// "memory" driver and doubles as the backend stand-in for tests.
// All methods are safe for concurrent use.
type MemGrid struct {
	mu    sync.RWMutex
	cells [][]string
}

// NewMemGrid creates an empty in-memory grid.
func NewMemGrid() *MemGrid {
	return &MemGrid{}
}

// NewMemGridFrom creates a grid pre-populated with rows. The input is
// copied so callers can keep mutating their slice.
func NewMemGridFrom(rows [][]string) *MemGrid {
	g := &MemGrid{cells: make([][]string, len(rows))}
	for i, r := range rows {
		g.cells[i] = append([]string(nil), r...)
	}
	return g
}

func (g *MemGrid) ReadCell(_ context.Context, row, col int) (string, error) {
	metrics.RecordBackendCall("read_cell")
	if row < 1 || col < 1 {
		return "", fmt.Errorf("%w: (%d,%d)", ErrBadCoordinate, row, col)
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if row > len(g.cells) || col > len(g.cells[row-1]) {
		return "", nil
	}
	return g.cells[row-1][col-1], nil
}

func (g *MemGrid) WriteCell(_ context.Context, row, col int, value string) error {
	metrics.RecordBackendCall("write_cell")
	if row < 1 || col < 1 {
		return fmt.Errorf("%w: (%d,%d)", ErrBadCoordinate, row, col)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.grow(row, col)
	g.cells[row-1][col-1] = value
	return nil
}

func (g *MemGrid) ReadRow(_ context.Context, n int) ([]string, error) {
	metrics.RecordBackendCall("read_row")
	if n < 1 {
		return nil, fmt.Errorf("%w: row %d", ErrBadCoordinate, n)
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n > len(g.cells) {
		return nil, nil
	}
	return trimTrailing(append([]string(nil), g.cells[n-1]...)), nil
}

func (g *MemGrid) ReadCol(_ context.Context, n int) ([]string, error) {
	metrics.RecordBackendCall("read_col")
	if n < 1 {
		return nil, fmt.Errorf("%w: col %d", ErrBadCoordinate, n)
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	col := make([]string, len(g.cells))
	for i, row := range g.cells {
		if n <= len(row) {
			col[i] = row[n-1]
		}
	}
	return trimTrailing(col), nil
}

func (g *MemGrid) InsertRow(_ context.Context, after int, values []string) error {
	metrics.RecordBackendCall("insert_row")
	if after < 0 {
		return fmt.Errorf("%w: after %d", ErrBadCoordinate, after)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if after > len(g.cells) {
		after = len(g.cells)
	}
	row := append([]string(nil), values...)
	g.cells = append(g.cells, nil)
	copy(g.cells[after+1:], g.cells[after:])
	g.cells[after] = row
	return nil
}

func (g *MemGrid) InsertCol(_ context.Context, after int, values []string) error {
	metrics.RecordBackendCall("insert_col")
	if after < 0 {
		return fmt.Errorf("%w: after %d", ErrBadCoordinate, after)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for len(g.cells) < len(values) {
		g.cells = append(g.cells, nil)
	}
	for i := range g.cells {
		at := after
		if at > len(g.cells[i]) {
			// Pad short rows so the new column lines up.
			pad := make([]string, at-len(g.cells[i]))
			g.cells[i] = append(g.cells[i], pad...)
		}
		var v string
		if i < len(values) {
			v = values[i]
		}
		g.cells[i] = append(g.cells[i], "")
		copy(g.cells[i][at+1:], g.cells[i][at:])
		g.cells[i][at] = v
	}
	return nil
}

func (g *MemGrid) AppendRow(_ context.Context, values []string) error {
	metrics.RecordBackendCall("append_row")
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cells = append(g.cells, append([]string(nil), values...))
	return nil
}

func (g *MemGrid) Find(_ context.Context, value string) ([]Pos, error) {
	metrics.RecordBackendCall("find")
	if value == "" {
		return nil, nil
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []Pos
	for r, row := range g.cells {
		for c, v := range row {
			if v == value {
				out = append(out, Pos{Row: r + 1, Col: c + 1})
			}
		}
	}
	return out, nil
}

func (g *MemGrid) ReadAll(_ context.Context) ([][]string, error) {
	metrics.RecordBackendCall("read_all")
	g.mu.RLock()
	defer g.mu.RUnlock()
	width := 0
	for _, row := range g.cells {
		if len(row) > width {
			width = len(row)
		}
	}
	out := make([][]string, len(g.cells))
	for i, row := range g.cells {
		out[i] = make([]string, width)
		copy(out[i], row)
	}
	return out, nil
}

// grow extends the matrix so (row, col) is addressable. Caller holds the lock.
func (g *MemGrid) grow(row, col int) {
	for len(g.cells) < row {
		g.cells = append(g.cells, nil)
	}
	for len(g.cells[row-1]) < col {
		g.cells[row-1] = append(g.cells[row-1], "")
	}
}

func trimTrailing(s []string) []string {
	for len(s) > 0 && s[len(s)-1] == "" {
		s = s[:len(s)-1]
	}
	return s
}

// NewMemWorkbook creates a workbook of empty in-memory sheets with
// problems answer sheets (p1..pN).
func NewMemWorkbook(problems int) *Workbook {
	wb := &Workbook{
		Scoreboard:  NewMemGrid(),
		Log:         NewMemGrid(),
		Tokens:      NewMemGrid(),
		Roster:      NewMemGrid(),
		Submissions: NewMemGrid(),
		Flags:       NewMemGrid(),
		CTF:         NewMemGrid(),
	}
	for i := 0; i < problems; i++ {
		wb.Problems = append(wb.Problems, NewMemGrid())
	}
	return wb
}
