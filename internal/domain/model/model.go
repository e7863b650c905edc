// Package model contains domain models passed between layers.
package model

import "time"

// Scoreboard is a full snapshot of the event x team score matrix.
// Rows follow event order, columns follow team order.
type Scoreboard struct {
	Events []string `json:"events"`
	Teams  []string `json:"teams"`
	Scores [][]int  `json:"scores"` // Scores[eventIdx][teamIdx]
}

// CreateResult carries the structured outcome of a creation operation.
// Status follows the HTTP-like convention: 200 created, 304 already
// exists, 403 invalid input.
type CreateResult struct {
	Message  string `json:"message"`
	Token    string `json:"token,omitempty"`
	TeamName string `json:"team_name,omitempty"`
	Status   int    `json:"status"`
}

// SubmissionRecord is one immutable row of a submissions log.
type SubmissionRecord struct {
	ID         string
	TS         time.Time
	Team       string
	Problem    string // problem id ("1a") or category-indexed flag id ("web3")
	Correct    bool
	Answer     string
	InputIndex int
}

// TimeSeries holds per-team score-over-time sequences reconstructed
// from the activity log. Xs and Ys are parallel slices per team,
// in chronological (insertion) order.
type TimeSeries struct {
	Xs    map[string][]string `json:"xs"`
	Ys    map[string][]int    `json:"ys"`
	Teams []string            `json:"teams"`
}
