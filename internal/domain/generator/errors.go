package generator

import "errors"

// Sentinel kinds for generation errors.
var (
	ErrNotEnoughTeams = errors.New("at least two teams are required")
	ErrNoReference    = errors.New("reference time is required")
)
