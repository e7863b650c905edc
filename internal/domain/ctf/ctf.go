// Package ctf validates flag-style submissions against a
// category-indexed answer sheet and keeps the append-only flag log.
package ctf

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/acmx/sheetboard/internal/adapters/grid"
	"github.com/acmx/sheetboard/internal/domain/model"
	"github.com/acmx/sheetboard/internal/domain/sanitize"
	"github.com/acmx/sheetboard/pkg/logger"
	"github.com/acmx/sheetboard/pkg/metrics"
)

const timeFormat = "2006-01-02 15:04:05"

// Flag log columns: [id, timestamp, team, flag_id, result, flag, problem_index].
const (
	logColID = iota + 1
	logColTS
	logColTeam
	logColFlagID
	logColResult
	logColFlag
	logColIndex
)

// Validator checks flags by position within a category column.
// Answer sheet layout: one column per category in configured order,
// row 1 is the category header, flags start at row 2.
type Validator struct {
	sheet      grid.Grid
	log        grid.Grid
	categories map[string]int // category -> 0-based column index
	clock      func() time.Time
	logr       logger.Logger
}

// Option applies a configuration option to the Validator.
type Option func(*Validator)

// WithClock injects the time source used for flag log timestamps.
func WithClock(clock func() time.Time) Option {
	return func(v *Validator) {
		if clock != nil {
			v.clock = clock
		}
	}
}

// WithLogger sets a custom logger for the validator.
func WithLogger(l logger.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logr = l
		}
	}
}

// New creates a Validator. categories orders the answer sheet columns;
// the same ordering must be used when reconstructing solved flags.
func New(sheet, log grid.Grid, categories []string, opts ...Option) *Validator {
	v := &Validator{
		sheet:      sheet,
		log:        log,
		categories: make(map[string]int, len(categories)),
		clock:      time.Now,
	}
	for i, c := range categories {
		v.categories[c] = i
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// FlagID renders the log identifier for an attempt: category + index,
// e.g. "web3".
func FlagID(category string, problemIdx int) string {
	return category + strconv.Itoa(problemIdx)
}

// Submit sanitizes the flag, compares it to the expected flag at
// problemIdx within the category column, and appends a record
// regardless of outcome. Bad categories, empty sanitized flags, and
// out-of-range indexes judge false.
func (v *Validator) Submit(ctx context.Context, category string, problemIdx int, flag, team string) (bool, error) {
	flag = sanitize.Flag(flag)
	correct, err := v.check(ctx, category, problemIdx, flag)
	if err != nil {
		return false, err
	}
	if err := v.record(ctx, team, category, problemIdx, correct, flag); err != nil {
		return false, err
	}
	metrics.RecordJudgement("flag", correct)
	return correct, nil
}

func (v *Validator) check(ctx context.Context, category string, problemIdx int, flag string) (bool, error) {
	colIdx, known := v.categories[category]
	if !known || flag == "" || problemIdx < 0 {
		if v.logr != nil {
			v.logr.Info(ctx, "rejected flag attempt",
				logger.String("category", category),
				logger.Int("problemIdx", problemIdx),
			)
		}
		return false, nil
	}
	col, err := v.sheet.ReadCol(ctx, colIdx+1)
	if err != nil {
		return false, fmt.Errorf("read flags: %w", err)
	}
	// Row 1 is the category header.
	flags := col
	if len(flags) > 0 {
		flags = flags[1:]
	}
	if problemIdx > len(flags)-1 {
		if v.logr != nil {
			v.logr.Info(ctx, "flag index out of range",
				logger.String("category", category),
				logger.Int("problemIdx", problemIdx),
				logger.Int("flags", len(flags)),
			)
		}
		return false, nil
	}
	return flags[problemIdx] == flag, nil
}

// SolvedFlags reconstructs the solved problem indexes for a team and
// category by scanning the flag log for TRUE results whose flag id
// carries the category prefix.
func (v *Validator) SolvedFlags(ctx context.Context, team, category string) ([]int, error) {
	rows, err := v.log.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read flag log: %w", err)
	}
	seen := make(map[int]struct{})
	var out []int
	for _, row := range rows {
		if len(row) < logColResult {
			continue
		}
		if row[logColTeam-1] != team || row[logColResult-1] != "TRUE" {
			continue
		}
		id := row[logColFlagID-1]
		if !strings.HasPrefix(id, category) {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimPrefix(id, category))
		if err != nil {
			continue
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, idx)
	}
	return out, nil
}

// PastAttempts returns the team's recorded attempts in a category, in
// log order.
func (v *Validator) PastAttempts(ctx context.Context, team, category string) ([]model.SubmissionRecord, error) {
	rows, err := v.log.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read flag log: %w", err)
	}
	var out []model.SubmissionRecord
	for _, row := range rows {
		if len(row) < logColIndex {
			continue
		}
		if row[logColTeam-1] != team || !strings.HasPrefix(row[logColFlagID-1], category) {
			continue
		}
		rec := model.SubmissionRecord{
			ID:      row[logColID-1],
			Team:    row[logColTeam-1],
			Problem: row[logColFlagID-1],
			Correct: row[logColResult-1] == "TRUE",
			Answer:  row[logColFlag-1],
		}
		if ts, err := time.Parse(timeFormat, row[logColTS-1]); err == nil {
			rec.TS = ts
		}
		if idx, err := strconv.Atoi(row[logColIndex-1]); err == nil {
			rec.InputIndex = idx
		}
		out = append(out, rec)
	}
	return out, nil
}

func (v *Validator) record(ctx context.Context, team, category string, problemIdx int, correct bool, flag string) error {
	result := "FALSE"
	if correct {
		result = "TRUE"
	}
	row := []string{
		uuid.NewString(),
		v.clock().Format(timeFormat),
		team,
		FlagID(category, problemIdx),
		result,
		flag,
		strconv.Itoa(problemIdx),
	}
	if err := v.log.AppendRow(ctx, row); err != nil {
		return fmt.Errorf("append flag attempt: %w", err)
	}
	return nil
}
