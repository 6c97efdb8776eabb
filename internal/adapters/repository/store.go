// Package repository defines the batch store boundary and its backends.
package repository

import (
	"context"
	"fmt"
)

// MaxBatchItems is the largest batch a single BatchUpsert accepts.
const MaxBatchItems = 25

// Backend names accepted by Open.
const (
	BackendDynamo = "dynamodb"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Item is one record to upsert. Key is the record's natural key within its
// partition; Value is marshaled by the backend.
type Item struct {
	Key   string
	Value any
}

// Store writes batches of items into a named partition (a table, key prefix
// or map).
type Store interface {
	// BatchUpsert writes up to MaxBatchItems items. Writes are idempotent
	// upserts keyed by Item.Key. The returned slice holds the subset of items
	// the store did not commit and may be retried; a non-nil error is a hard
	// failure of the whole call.
	BatchUpsert(ctx context.Context, partition string, items []Item) (unprocessed []Item, err error)
}

// KnownBackend reports whether name is a backend Open can build.
func KnownBackend(name string) bool {
	switch name {
	case BackendDynamo, BackendRedis, BackendMemory:
		return true
	}
	return false
}

func checkBatch(partition string, items []Item) error {
	if partition == "" {
		return ErrEmptyPartition
	}
	if len(items) > MaxBatchItems {
		return fmt.Errorf("%w: %d items, max %d", ErrBatchTooLarge, len(items), MaxBatchItems)
	}
	return nil
}
