// Package scorestore wraps the scoreboard sheet as a team x event
// score matrix with a time-boxed snapshot cache, content-addressed
// lookups, and serialized read-modify-write adjustments.
package scorestore

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/acmx/sheetboard/internal/adapters/activity"
	"github.com/acmx/sheetboard/internal/adapters/grid"
	"github.com/acmx/sheetboard/internal/domain/model"
	"github.com/acmx/sheetboard/internal/domain/sanitize"
	"github.com/acmx/sheetboard/internal/domain/token"
	"github.com/acmx/sheetboard/pkg/logger"
	"github.com/acmx/sheetboard/pkg/metrics"
)

// cornerMarker occupies cell (1,1): row 1 holds team names, column 1
// holds event names, and the corner belongs to neither.
const cornerMarker = "-"

const defaultCacheTTL = 10 * time.Second

// Store is the score-matrix abstraction over the scoreboard sheet.
// Multi-step mutations are best-effort sequences of backend calls; a
// failure partway leaves a partial state that is surfaced, not rolled
// back (the backend has no multi-cell transactions).
type Store struct {
	sb       grid.Grid
	roster   grid.Grid
	tokens   *token.Issuer
	activity *activity.Log
	cache    *matrixCache

	clock      func() time.Time
	cacheTTL   time.Duration
	minName    int
	maxName    int
	maxMembers int
	logr       logger.Logger

	// cellLocks serializes read-modify-write per (event, team) cell.
	mu        sync.Mutex
	cellLocks map[string]*sync.Mutex
}

// New creates a Store over the scoreboard and roster sheets.
func New(sb, roster grid.Grid, tokens *token.Issuer, log *activity.Log, opts ...Option) *Store {
	s := &Store{
		sb:         sb,
		roster:     roster,
		tokens:     tokens,
		activity:   log,
		clock:      time.Now,
		cacheTTL:   defaultCacheTTL,
		minName:    2,
		maxName:    32,
		maxMembers: 4,
		cellLocks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = newMatrixCache(sb, s.cacheTTL, s.clock)
	return s
}

// Init ensures the corner marker so row/column counting works on a
// fresh sheet. Safe to call repeatedly.
func (s *Store) Init(ctx context.Context) error {
	v, err := s.sb.ReadCell(ctx, 1, 1)
	if err != nil {
		return fmt.Errorf("read corner: %w", err)
	}
	if v == "" {
		if err := s.sb.WriteCell(ctx, 1, 1, cornerMarker); err != nil {
			return fmt.Errorf("write corner: %w", err)
		}
	}
	return nil
}

// Scoreboard returns the full matrix, served from the snapshot cache
// inside its window. Two calls within the window return the same
// snapshot even if a write landed in between.
func (s *Store) Scoreboard(ctx context.Context) (model.Scoreboard, error) {
	snap, err := s.cache.get(ctx)
	if err != nil {
		return model.Scoreboard{}, err
	}
	out := model.Scoreboard{
		Events: snap.events,
		Teams:  snap.teams,
		Scores: snap.scores,
	}
	return out, nil
}

// FindTeam locates a team column by content scan over the header row.
// First match wins; duplicate names shadow later columns.
func (s *Store) FindTeam(ctx context.Context, name string) (grid.Pos, error) {
	return s.findHeader(ctx, name, true)
}

// FindEvent locates an event row by content scan over the name column.
func (s *Store) FindEvent(ctx context.Context, name string) (grid.Pos, error) {
	return s.findHeader(ctx, name, false)
}

func (s *Store) findHeader(ctx context.Context, name string, team bool) (grid.Pos, error) {
	cells, err := s.sb.Find(ctx, name)
	if err != nil {
		return grid.Pos{}, fmt.Errorf("find %q: %w", name, err)
	}
	for _, p := range cells {
		if team && p.Row == 1 && p.Col > 1 {
			return p, nil
		}
		if !team && p.Col == 1 && p.Row > 1 {
			return p, nil
		}
	}
	kind := "event"
	if team {
		kind = "team"
	}
	return grid.Pos{}, fmt.Errorf("%w: could not find %s %q (names are case-sensitive)", ErrNotFound, kind, name)
}

// CreateTeam appends a zero-initialized team column, issues a token,
// and records the first member in the roster. The three writes are
// sequential with no rollback: a crash partway leaves a partial team.
func (s *Store) CreateTeam(ctx context.Context, teamName, memberName string) (model.CreateResult, error) {
	if !sanitize.NameLength(teamName, s.minName, s.maxName) {
		return invalidResult(fmt.Sprintf("team name must be %d-%d characters", s.minName, s.maxName)), nil
	}
	if !sanitize.NameLength(memberName, s.minName, s.maxName) {
		return invalidResult(fmt.Sprintf("member name must be %d-%d characters", s.minName, s.maxName)), nil
	}

	if _, err := s.FindTeam(ctx, teamName); err == nil {
		return model.CreateResult{
			Message:  fmt.Sprintf("Team %q already exists!", teamName),
			TeamName: teamName,
			Status:   http.StatusNotModified,
		}, nil
	}

	teams, events, err := s.dims(ctx)
	if err != nil {
		return model.CreateResult{}, err
	}
	column := make([]string, 0, events+1)
	column = append(column, teamName)
	for i := 0; i < events; i++ {
		column = append(column, "0")
	}
	if err := s.sb.InsertCol(ctx, teams+1, column); err != nil {
		return model.CreateResult{}, fmt.Errorf("insert team column: %w", err)
	}

	tok, err := s.tokens.Issue(ctx, teamName)
	if err != nil {
		// The team column exists but has no token: a permanent
		// partial-creation state surfaced to the caller.
		return model.CreateResult{}, fmt.Errorf("issue token for %q: %w", teamName, err)
	}

	rosterRow := make([]string, s.maxMembers+1)
	rosterRow[0] = teamName
	rosterRow[1] = memberName
	if err := s.roster.AppendRow(ctx, rosterRow); err != nil {
		return model.CreateResult{}, fmt.Errorf("record roster for %q: %w", teamName, err)
	}

	if err := s.activity.Append(ctx, activity.OpCreateTeam,
		activity.KV("team_name", teamName),
		activity.KV("member_name", memberName),
	); err != nil {
		return model.CreateResult{}, err
	}
	metrics.UpdateTeamsTotal(teams + 1)

	return model.CreateResult{
		Message:  fmt.Sprintf("Team %q created", teamName),
		Token:    tok,
		TeamName: teamName,
		Status:   http.StatusOK,
	}, nil
}

// CreateEvent appends a zero-initialized event row. Duplicate names
// are rejected outright; a duplicate row would be silently shadowed by
// every content lookup afterwards.
func (s *Store) CreateEvent(ctx context.Context, eventName string) (model.CreateResult, error) {
	if !sanitize.NameLength(eventName, s.minName, s.maxName) {
		return invalidResult(fmt.Sprintf("event name must be %d-%d characters", s.minName, s.maxName)), nil
	}
	if _, err := s.FindEvent(ctx, eventName); err == nil {
		return model.CreateResult{
			Message: fmt.Sprintf("Event %q already exists!", eventName),
			Status:  http.StatusNotModified,
		}, nil
	}

	teams, events, err := s.dims(ctx)
	if err != nil {
		return model.CreateResult{}, err
	}
	row := make([]string, 0, teams+1)
	row = append(row, eventName)
	for i := 0; i < teams; i++ {
		row = append(row, "0")
	}
	if err := s.sb.InsertRow(ctx, events+1, row); err != nil {
		return model.CreateResult{}, fmt.Errorf("insert event row: %w", err)
	}
	if err := s.activity.Append(ctx, activity.OpCreateEvent,
		activity.KV("event_name", eventName),
	); err != nil {
		return model.CreateResult{}, err
	}
	metrics.UpdateEventsTotal(events + 1)

	return model.CreateResult{
		Message: fmt.Sprintf("Event %q created", eventName),
		Status:  http.StatusOK,
	}, nil
}

// Scores returns the team's full event -> score row plus the
// event -> matrix-index mapping, resolved via the cached matrix.
func (s *Store) Scores(ctx context.Context, teamName string) (map[string]int, map[string]int, error) {
	snap, err := s.cache.get(ctx)
	if err != nil {
		return nil, nil, err
	}
	teamIdx := -1
	for i, t := range snap.teams {
		if t == teamName {
			teamIdx = i
			break
		}
	}
	if teamIdx < 0 {
		return nil, nil, fmt.Errorf("%w: could not find team %q (names are case-sensitive)", ErrNotFound, teamName)
	}
	scores := make(map[string]int, len(snap.events))
	eventIdx := make(map[string]int, len(snap.events))
	for i, e := range snap.events {
		scores[e] = snap.scores[i][teamIdx]
		eventIdx[e] = i
	}
	return scores, eventIdx, nil
}

// Score reads one cell via the cached matrix.
func (s *Store) Score(ctx context.Context, teamName, eventName string) (int, error) {
	scores, _, err := s.Scores(ctx, teamName)
	if err != nil {
		return 0, err
	}
	v, ok := scores[eventName]
	if !ok {
		return 0, fmt.Errorf("%w: could not find event %q (names are case-sensitive)", ErrNotFound, eventName)
	}
	return v, nil
}

// SetScore writes an absolute value to the resolved cell.
func (s *Store) SetScore(ctx context.Context, eventName, teamName string, score int) error {
	row, col, err := s.cell(ctx, eventName, teamName)
	if err != nil {
		return err
	}
	if err := s.sb.WriteCell(ctx, row, col, strconv.Itoa(score)); err != nil {
		return fmt.Errorf("write score: %w", err)
	}
	return s.activity.Append(ctx, activity.OpSetScore,
		activity.KV("event_name", eventName),
		activity.KV("team_name", teamName),
		activity.KV("score", score),
	)
}

// AdjustScore applies a delta with a read-then-write pair. The backend
// has no compare-and-swap, so the sequence is serialized through a
// per-cell mutex; without it two concurrent adjusts can lose one delta.
func (s *Store) AdjustScore(ctx context.Context, eventName, teamName string, delta int) (int, error) {
	row, col, err := s.cell(ctx, eventName, teamName)
	if err != nil {
		return 0, err
	}

	lock := s.cellLock(eventName, teamName)
	lock.Lock()
	defer lock.Unlock()

	raw, err := s.sb.ReadCell(ctx, row, col)
	if err != nil {
		return 0, fmt.Errorf("read score: %w", err)
	}
	current := parseScore(raw)
	next := current + delta
	if err := s.sb.WriteCell(ctx, row, col, strconv.Itoa(next)); err != nil {
		return 0, fmt.Errorf("write score: %w", err)
	}
	metrics.RecordScoreAdjustment()
	if err := s.activity.Append(ctx, activity.OpAdjustScore,
		activity.KV("event_name", eventName),
		activity.KV("team_name", teamName),
		activity.KV("score_delta", delta),
		activity.KV("old_score", current),
		activity.KV("new_score", next),
	); err != nil {
		return 0, err
	}
	return next, nil
}

// ChangeTeamName rewrites the header cell in place. The token ledger
// keeps the old pairing: existing tokens resolve to the old stored
// name until the ledger is migrated by hand. Known gap, on purpose.
func (s *Store) ChangeTeamName(ctx context.Context, oldName, newName string) (string, error) {
	if !sanitize.NameLength(newName, s.minName, s.maxName) {
		return "", fmt.Errorf("%w: new team name must be %d-%d characters", ErrValidation, s.minName, s.maxName)
	}
	if _, err := s.FindTeam(ctx, newName); err == nil {
		return "", fmt.Errorf("%w: team %q already exists", ErrConflict, newName)
	}
	pos, err := s.FindTeam(ctx, oldName)
	if err != nil {
		return "", err
	}
	if err := s.sb.WriteCell(ctx, pos.Row, pos.Col, newName); err != nil {
		return "", fmt.Errorf("rename team: %w", err)
	}
	if err := s.activity.Append(ctx, activity.OpChangeTeamName,
		activity.KV("old_team_name", oldName),
		activity.KV("new_team_name", newName),
	); err != nil {
		return "", err
	}
	if s.logr != nil {
		s.logr.Warn(ctx, "team renamed; token ledger still holds the old name",
			logger.String("old", oldName),
			logger.String("new", newName),
		)
	}
	return fmt.Sprintf("Successfully changed team %q to %q", oldName, newName), nil
}

// cell resolves (event, team) to sheet coordinates via live content
// search.
func (s *Store) cell(ctx context.Context, eventName, teamName string) (row, col int, err error) {
	teamPos, err := s.FindTeam(ctx, teamName)
	if err != nil {
		return 0, 0, err
	}
	eventPos, err := s.FindEvent(ctx, eventName)
	if err != nil {
		return 0, 0, err
	}
	return eventPos.Row, teamPos.Col, nil
}

// dims counts teams and events from the header row and name column.
func (s *Store) dims(ctx context.Context) (teams, events int, err error) {
	header, err := s.sb.ReadRow(ctx, 1)
	if err != nil {
		return 0, 0, fmt.Errorf("read header row: %w", err)
	}
	names, err := s.sb.ReadCol(ctx, 1)
	if err != nil {
		return 0, 0, fmt.Errorf("read name column: %w", err)
	}
	teams = len(header) - 1
	events = len(names) - 1
	if teams < 0 {
		teams = 0
	}
	if events < 0 {
		events = 0
	}
	return teams, events, nil
}

func (s *Store) cellLock(eventName, teamName string) *sync.Mutex {
	key := eventName + "\x00" + teamName
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.cellLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.cellLocks[key] = lock
	}
	return lock
}

func invalidResult(msg string) model.CreateResult {
	return model.CreateResult{
		Message: msg,
		Status:  http.StatusForbidden,
	}
}
