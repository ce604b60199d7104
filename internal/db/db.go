package db

import (
	"context"
	"time"
)

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Document is a single record as decoded from the store, with driver-specific
// values already converted to plain Go types (string ids, time.Time, []any).
type Document map[string]any

// Stage is one aggregation pipeline stage.
type Stage map[string]any

// FindQuery is a filtered read with projection and paging.
type FindQuery struct {
	Filter  map[string]any
	Project map[string]int
	Skip    int64
	Limit   int64
}

// DocumentStore provides read access to the game collection.
type DocumentStore interface {
	Pinger
	Find(ctx context.Context, q FindQuery) ([]Document, error)
	Aggregate(ctx context.Context, pipeline []Stage) ([]Document, error)
	Distinct(ctx context.Context, field string, filter map[string]any) ([]any, error)
	Close(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Pinger
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}
