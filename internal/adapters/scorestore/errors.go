package scorestore

import "errors"

var (
	// ErrNotFound indicates a team or event name matched no header
	// cell.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates a name failed the length bounds.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates the target name is already taken.
	ErrConflict = errors.New("already exists")
	// ErrRosterFull indicates the team already has the maximum number
	// of members.
	ErrRosterFull = errors.New("roster full")
)
