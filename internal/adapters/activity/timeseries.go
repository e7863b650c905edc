package activity

import (
	"context"
	"strconv"
	"strings"

	"github.com/acmx/sheetboard/internal/domain/model"
)

// TimeSeries reconstructs per-team (time, score) sequences from the
// ledger. Only adjust_score records contribute; the new absolute score
// is preferred, with the delta as fallback. Order follows ledger
// insertion order; gaps between events are not filled.
func (l *Log) TimeSeries(ctx context.Context) (model.TimeSeries, error) {
	ts := model.TimeSeries{
		Xs: make(map[string][]string),
		Ys: make(map[string][]int),
	}
	rows, err := l.Records(ctx)
	if err != nil {
		return ts, err
	}
	for _, row := range rows {
		if len(row) < 2 || row[1] != OpAdjustScore {
			continue
		}
		args := parseArgs(row[2:])
		team, ok := args["team_name"]
		if !ok {
			continue
		}
		value, ok := scoreValue(args)
		if !ok {
			continue
		}
		if _, known := ts.Xs[team]; !known {
			ts.Teams = append(ts.Teams, team)
		}
		ts.Xs[team] = append(ts.Xs[team], row[0])
		ts.Ys[team] = append(ts.Ys[team], value)
	}
	return ts, nil
}

// scoreValue prefers the absolute new score over the delta.
func scoreValue(args map[string]string) (int, bool) {
	if v, ok := args["new_score"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	if v, ok := args["score_delta"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}

// parseArgs splits "k=v" cells; values may themselves contain '='.
func parseArgs(cells []string) map[string]string {
	out := make(map[string]string, len(cells))
	for _, c := range cells {
		k, v, ok := strings.Cut(c, "=")
		if !ok {
			continue
		}
		out[k] = v
	}
	return out
}
