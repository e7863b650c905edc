package judge

import "errors"

// Sentinel kinds for judging errors.
var (
	ErrBadProblem = errors.New("bad problem id")
)
