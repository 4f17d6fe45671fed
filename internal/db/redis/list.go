package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/storesearch/internal/db"
)

// LPush prepends values to a list.
func (s *Store) LPush(ctx context.Context, key string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	cmd := s.b().Lpush().Key(key).Element(values...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpLPush, Err: err}
	}
	return nil
}

// LRem removes count occurrences of value (0 = all).
func (s *Store) LRem(ctx context.Context, key string, count int64, value string) error {
	cmd := s.b().Lrem().Key(key).Count(count).Element(value).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpLRem, Err: err}
	}
	return nil
}

// LRange returns list elements between start and stop inclusive. A missing key is an empty list.
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	cmd := s.b().Lrange().Key(key).Start(start).Stop(stop).Build()
	vals, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, &db.Error{Op: db.OpLRange, Err: err}
	}
	return vals, nil
}

// MoveToFront pipelines LREM for every stale value, LPUSH and LTRIM in a
// single DoMulti round-trip.
func (s *Store) MoveToFront(ctx context.Context, key, value string, stale []string, limit int64) error {
	cmds := make(rueidis.Commands, 0, len(stale)+2)
	ops := make([]string, 0, len(stale)+2)
	for _, v := range stale {
		cmds = append(cmds, s.b().Lrem().Key(key).Count(0).Element(v).Build())
		ops = append(ops, db.OpLRem)
	}
	cmds = append(cmds, s.b().Lpush().Key(key).Element(value).Build())
	ops = append(ops, db.OpLPush)
	if limit > 0 {
		cmds = append(cmds, s.b().Ltrim().Key(key).Start(0).Stop(limit-1).Build())
		ops = append(ops, db.OpLTrim)
	}

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: ops[i], Err: fmt.Errorf("key %s: %w", key, err)}
		}
	}
	return nil
}
