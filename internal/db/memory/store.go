// Package memory is an in-process db.Store for tests, the CLI and
// deployments without Redis. Contents are lost on exit.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/kailas-cloud/storesearch/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Store keeps lists in a mutex-guarded map.
type Store struct {
	mu    sync.Mutex
	lists map[string][]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{lists: make(map[string][]string)}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// WaitForReady always succeeds.
func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }

// LPush prepends values one by one, like Redis: the last value ends up first.
func (s *Store) LPush(_ context.Context, key string, values ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lpush(key, values...)
	return nil
}

// LRem removes count occurrences of value from the head (0 = all, negative = from the tail).
func (s *Store) LRem(_ context.Context, key string, count int64, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lrem(key, count, value)
	return nil
}

// LRange returns elements between start and stop inclusive; negative indexes count from the tail.
func (s *Store) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lists[key]
	from, to, ok := bounds(len(l), start, stop)
	if !ok {
		return nil, nil
	}
	return slices.Clone(l[from : to+1]), nil
}

// MoveToFront applies LREM for stale values, LPUSH and LTRIM atomically.
func (s *Store) MoveToFront(_ context.Context, key, value string, stale []string, limit int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range stale {
		s.lrem(key, 0, v)
	}
	s.lpush(key, value)
	if limit > 0 {
		s.ltrim(key, 0, limit-1)
	}
	return nil
}

func (s *Store) lpush(key string, values ...string) {
	l := s.lists[key]
	for _, v := range values {
		l = append([]string{v}, l...)
	}
	s.lists[key] = l
}

func (s *Store) lrem(key string, count int64, value string) {
	l := slices.Clone(s.lists[key])
	fromTail := count < 0
	if fromTail {
		slices.Reverse(l)
		count = -count
	}
	out := make([]string, 0, len(l))
	var removed int64
	for _, v := range l {
		if v == value && (count == 0 || removed < count) {
			removed++
			continue
		}
		out = append(out, v)
	}
	if fromTail {
		slices.Reverse(out)
	}
	s.setList(key, out)
}

func (s *Store) ltrim(key string, start, stop int64) {
	l := s.lists[key]
	from, to, ok := bounds(len(l), start, stop)
	if !ok {
		delete(s.lists, key)
		return
	}
	s.setList(key, slices.Clone(l[from:to+1]))
}

func (s *Store) setList(key string, l []string) {
	if len(l) == 0 {
		delete(s.lists, key)
		return
	}
	s.lists[key] = l
}

// bounds resolves Redis-style inclusive indexes against a list of length n.
func bounds(n int, start, stop int64) (from, to int, ok bool) {
	size := int64(n)
	if start < 0 {
		start += size
	}
	if stop < 0 {
		stop += size
	}
	if start < 0 {
		start = 0
	}
	if stop >= size {
		stop = size - 1
	}
	if start > stop || start >= size {
		return 0, 0, false
	}
	return int(start), int(stop), true
}
