package batch

import "errors"

// Sentinel kinds for orchestration errors.
var (
	ErrFixtureBusy   = errors.New("fixture is already being simulated")
	ErrFixturePlayed = errors.New("fixture already played")
)
