package db

import (
	"context"
	"time"
)

// Store is the database facade used by the favorites/recents repository.
type Store interface {
	Pinger
	ListStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ListStore provides ordered list operations. Index 0 is the head.
type ListStore interface {
	LPush(ctx context.Context, key string, values ...string) error
	LRem(ctx context.Context, key string, count int64, value string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	// MoveToFront removes every value in stale, pushes value to the head and,
	// when limit > 0, trims the list to limit entries, in a single round-trip.
	MoveToFront(ctx context.Context, key, value string, stale []string, limit int64) error
}
