// Package judge compares team submissions against per-problem answer
// tables and keeps the append-only submissions log that backs the
// one-time-award guarantee.
package judge

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/acmx/sheetboard/internal/adapters/grid"
	"github.com/acmx/sheetboard/internal/domain/model"
	"github.com/acmx/sheetboard/pkg/metrics"
)

// Submission log columns: [id, timestamp, team, problem, result, answer, input_index].
const (
	logColID = iota + 1
	logColTS
	logColTeam
	logColProblem
	logColResult
	logColAnswer
	logColInputIndex
)

const timeFormat = "2006-01-02 15:04:05"

// Judge resolves expected answers from the p1..pN answer sheets.
// Answer sheet layout: one column per problem part (a, b, ...), row 1
// is the header, expected outputs start at row 2.
type Judge struct {
	problems []grid.Grid
	log      grid.Grid
	clock    func() time.Time
}

// Option applies a configuration option to the Judge.
type Option func(*Judge)

// WithClock injects the time source used for submission timestamps.
func WithClock(clock func() time.Time) Option {
	return func(j *Judge) {
		if clock != nil {
			j.clock = clock
		}
	}
}

// New creates a Judge over the answer sheets and the submissions log.
func New(problems []grid.Grid, log grid.Grid, opts ...Option) *Judge {
	j := &Judge{
		problems: problems,
		log:      log,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Problem is a parsed problem id of the form "1a": a 1-based problem
// number and a part letter.
type Problem struct {
	Number int
	Part   byte
}

// ParseProblem splits an id like "4b" into number and part.
func ParseProblem(id string) (Problem, error) {
	i := 0
	for i < len(id) && id[i] >= '0' && id[i] <= '9' {
		i++
	}
	if i == 0 || i != len(id)-1 {
		return Problem{}, fmt.Errorf("%w: %q", ErrBadProblem, id)
	}
	part := id[i]
	if part < 'a' || part > 'z' {
		return Problem{}, fmt.Errorf("%w: %q", ErrBadProblem, id)
	}
	n, err := strconv.Atoi(id[:i])
	if err != nil || n < 1 {
		return Problem{}, fmt.Errorf("%w: %q", ErrBadProblem, id)
	}
	return Problem{Number: n, Part: part}, nil
}

// Judge compares output against the expected answer for problemID at
// row inputIndex and appends a record regardless of outcome. A missing
// answer sheet is a caller error; an out-of-range input index judges
// false but is still recorded, matching the flag validator discipline.
func (j *Judge) Judge(ctx context.Context, problemID string, inputIndex int, output, team string) (bool, error) {
	p, err := ParseProblem(problemID)
	if err != nil {
		return false, err
	}
	if p.Number > len(j.problems) {
		return false, fmt.Errorf("%w: no answer sheet for problem %d", ErrBadProblem, p.Number)
	}
	if inputIndex < 0 {
		return false, fmt.Errorf("%w: negative input index %d", ErrBadProblem, inputIndex)
	}

	sheet := j.problems[p.Number-1]
	col, err := sheet.ReadCol(ctx, int(p.Part-'a')+1)
	if err != nil {
		return false, fmt.Errorf("read answers: %w", err)
	}

	correct := false
	// Row 1 is the column header; answers for input n live at n+1.
	if inputIndex+1 < len(col) {
		correct = col[inputIndex+1] == output
	}

	if err := j.record(ctx, team, problemID, correct, output, inputIndex); err != nil {
		return false, err
	}
	metrics.RecordJudgement("answer", correct)
	return correct, nil
}

// HasPriorSolve scans the full submissions log for an earlier TRUE
// result for the same team and problem. This is the idempotency gate
// that keeps a problem from being awarded twice.
func (j *Judge) HasPriorSolve(ctx context.Context, team, problemID string) (bool, error) {
	rows, err := j.log.ReadAll(ctx)
	if err != nil {
		return false, fmt.Errorf("read submissions: %w", err)
	}
	for _, row := range rows {
		if len(row) < logColResult {
			continue
		}
		if row[logColTeam-1] == team && row[logColProblem-1] == problemID && row[logColResult-1] == "TRUE" {
			return true, nil
		}
	}
	return false, nil
}

// PastSubmissions returns the team's recorded attempts at problemID in
// log order.
func (j *Judge) PastSubmissions(ctx context.Context, team, problemID string) ([]model.SubmissionRecord, error) {
	rows, err := j.log.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read submissions: %w", err)
	}
	var out []model.SubmissionRecord
	for _, row := range rows {
		if len(row) < logColInputIndex {
			continue
		}
		if row[logColTeam-1] != team || row[logColProblem-1] != problemID {
			continue
		}
		rec := model.SubmissionRecord{
			ID:      row[logColID-1],
			Team:    row[logColTeam-1],
			Problem: row[logColProblem-1],
			Correct: row[logColResult-1] == "TRUE",
			Answer:  row[logColAnswer-1],
		}
		if ts, err := time.Parse(timeFormat, row[logColTS-1]); err == nil {
			rec.TS = ts
		}
		if idx, err := strconv.Atoi(row[logColInputIndex-1]); err == nil {
			rec.InputIndex = idx
		}
		out = append(out, rec)
	}
	return out, nil
}

func (j *Judge) record(ctx context.Context, team, problemID string, correct bool, answer string, inputIndex int) error {
	result := "FALSE"
	if correct {
		result = "TRUE"
	}
	row := []string{
		uuid.NewString(),
		j.clock().Format(timeFormat),
		team,
		problemID,
		result,
		answer,
		strconv.Itoa(inputIndex),
	}
	if err := j.log.AppendRow(ctx, row); err != nil {
		return fmt.Errorf("append submission: %w", err)
	}
	return nil
}
