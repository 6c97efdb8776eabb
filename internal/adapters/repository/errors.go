package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrBatchTooLarge  = errors.New("batch exceeds store limit")
	ErrEmptyPartition = errors.New("partition name is empty")
	ErrUnknownStore   = errors.New("unknown store backend")
	ErrMarshalItem    = errors.New("item marshal failed")

	ErrUnmatchedUnprocessed = errors.New("store reported unprocessed items that were not sent")
)
