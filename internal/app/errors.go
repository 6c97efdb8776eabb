package app

import "errors"

// Sentinel kinds for run errors.
var (
	ErrDuplicateKey = errors.New("duplicate natural key")
	ErrNoStore      = errors.New("no store configured")
)
