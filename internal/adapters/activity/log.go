// Package activity keeps the append-only ledger of every mutating
// operation. The ledger doubles as an audit trail and as the raw
// material for per-team score-over-time reconstruction.
package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/acmx/sheetboard/internal/adapters/grid"
	"github.com/acmx/sheetboard/pkg/metrics"
)

// Operation names as they appear in the ledger. Each mutating call
// site passes its own name explicitly; nothing is derived from the
// call stack.
const (
	OpCreateTeam     = "create_team"
	OpCreateEvent    = "create_event"
	OpSetScore       = "set_score"
	OpAdjustScore    = "adjust_score"
	OpChangeTeamName = "change_team_name"
	OpAddMember      = "add_member"
	OpRemoveMember   = "remove_member"
)

const timeFormat = "2006-01-02 15:04:05"

// Arg is one ordered key=value argument of a logged operation.
type Arg struct {
	Key   string
	Value string
}

// KV renders a single argument.
func KV(key string, value any) Arg {
	return Arg{Key: key, Value: fmt.Sprint(value)}
}

// Log appends ActivityRecords to the log sheet.
// Row layout: [timestamp, operation, k=v, k=v, ...].
type Log struct {
	sheet grid.Grid
	clock func() time.Time
	loc   *time.Location
}

// Option applies a configuration option to the Log.
type Option func(*Log)

// WithClock injects the time source for record timestamps.
func WithClock(clock func() time.Time) Option {
	return func(l *Log) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// WithLocation sets the timezone records are stamped in.
func WithLocation(loc *time.Location) Option {
	return func(l *Log) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// New creates a Log over the log sheet.
func New(sheet grid.Grid, opts ...Option) *Log {
	l := &Log{
		sheet: sheet,
		clock: time.Now,
		loc:   time.UTC,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append writes one immutable record: the operation name followed by
// its arguments in call order, then any extra tagged fields.
func (l *Log) Append(ctx context.Context, op string, args ...Arg) error {
	row := make([]string, 0, len(args)+2)
	row = append(row, l.clock().In(l.loc).Format(timeFormat), op)
	for _, a := range args {
		row = append(row, a.Key+"="+a.Value)
	}
	if err := l.sheet.AppendRow(ctx, row); err != nil {
		return fmt.Errorf("append activity record: %w", err)
	}
	metrics.RecordActivityRecord()
	return nil
}

// Records returns the raw ledger rows in insertion order.
func (l *Log) Records(ctx context.Context) ([][]string, error) {
	rows, err := l.sheet.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read activity log: %w", err)
	}
	return rows, nil
}
