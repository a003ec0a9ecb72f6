package match

import "errors"

// Sentinel errors returned by the runner.
var (
	ErrEmptyLineup   = errors.New("lineup has no players")
	ErrUnknownPlayer = errors.New("lineup references a player missing from the roster")
	ErrSameTeam      = errors.New("home and away team are the same")
)
