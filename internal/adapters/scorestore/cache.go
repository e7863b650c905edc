package scorestore

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/acmx/sheetboard/internal/adapters/grid"
	"github.com/acmx/sheetboard/pkg/metrics"
)

// snapshot is one immutable full read of the score matrix with
// name -> coordinate indexes rebuilt from it. Lookups off a snapshot
// never touch the backend.
type snapshot struct {
	events   []string       // event names, matrix row order
	teams    []string       // team names, matrix column order
	scores   [][]int        // scores[eventIdx][teamIdx]
	eventRow map[string]int // event name -> sheet row (1-based)
	teamCol  map[string]int // team name -> sheet column (1-based)
}

// matrixCache holds the latest snapshot for a fixed window. Concurrent
// readers inside the window share one snapshot; the swap is a single
// reference replacement, so readers never observe a torn matrix.
type matrixCache struct {
	sheet grid.Grid
	ttl   time.Duration
	clock func() time.Time

	mu        sync.Mutex
	current   *snapshot
	fetchedAt time.Time
}

func newMatrixCache(sheet grid.Grid, ttl time.Duration, clock func() time.Time) *matrixCache {
	return &matrixCache{
		sheet: sheet,
		ttl:   ttl,
		clock: clock,
	}
}

// get returns the cached snapshot, refreshing it when the window has
// lapsed. Staleness inside the window is a documented contract: a
// write between two reads in the same window is invisible to the
// second read.
func (c *matrixCache) get(ctx context.Context) (*snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil && c.clock().Sub(c.fetchedAt) < c.ttl {
		metrics.RecordCacheHit()
		return c.current, nil
	}
	metrics.RecordCacheMiss()
	snap, err := readSnapshot(ctx, c.sheet)
	if err != nil {
		return nil, err
	}
	c.current = snap
	c.fetchedAt = c.clock()
	metrics.UpdateTeamsTotal(len(snap.teams))
	metrics.UpdateEventsTotal(len(snap.events))
	return snap, nil
}

// readSnapshot performs the expensive full-grid read and rebuilds the
// name -> coordinate indexes. First occurrence wins on duplicate
// names; duplicates are a data-integrity bug upstream.
func readSnapshot(ctx context.Context, sheet grid.Grid) (*snapshot, error) {
	table, err := sheet.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read scoreboard: %w", err)
	}
	snap := &snapshot{
		eventRow: make(map[string]int),
		teamCol:  make(map[string]int),
	}
	if len(table) == 0 {
		return snap, nil
	}
	for c := 2; c <= len(table[0]); c++ {
		name := table[0][c-1]
		if name == "" {
			continue
		}
		snap.teams = append(snap.teams, name)
		if _, dup := snap.teamCol[name]; !dup {
			snap.teamCol[name] = c
		}
	}
	for r := 2; r <= len(table); r++ {
		name := table[r-1][0]
		if name == "" {
			continue
		}
		snap.events = append(snap.events, name)
		if _, dup := snap.eventRow[name]; !dup {
			snap.eventRow[name] = r
		}
		row := make([]int, len(snap.teams))
		for i, team := range snap.teams {
			col := snap.teamCol[team]
			if col <= len(table[r-1]) {
				row[i] = parseScore(table[r-1][col-1])
			}
		}
		snap.scores = append(snap.scores, row)
	}
	return snap, nil
}

// parseScore treats empty or malformed cells as zero; the sheet is
// hand-editable and zero is the safe reading.
func parseScore(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
