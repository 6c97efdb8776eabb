package batch

import (
	"errors"
	"fmt"
)

// Sentinel kinds for batch write errors.
var (
	ErrRetriesExhausted   = errors.New("max retries exceeded")
	ErrInvalidUnprocessed = errors.New("store returned more unprocessed items than sent")
	ErrIllegalTransition  = errors.New("illegal chunk state transition")
)

// ExhaustedError reports a chunk that still had unprocessed items after its
// last allowed attempt. It wraps ErrRetriesExhausted.
type ExhaustedError struct {
	Partition string
	Chunk     int
	Attempts  int
	Residual  int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("batch write %s chunk %d: %s after %d attempts; %d items unprocessed",
		e.Partition, e.Chunk, ErrRetriesExhausted, e.Attempts, e.Residual)
}

func (e *ExhaustedError) Unwrap() error { return ErrRetriesExhausted }
