// Package favorites persists per-user favorite and recently opened
// navigation entries, keyed by path.
package favorites

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/storesearch/internal/domain"
)

// Recents list bounds.
const (
	MinRecents     = 15
	MaxRecents     = 30
	DefaultRecents = 20
)

// store is the consumer interface for favorites operations (ISP).
type store interface {
	LPush(ctx context.Context, key string, values ...string) error
	LRem(ctx context.Context, key string, count int64, value string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	MoveToFront(ctx context.Context, key, value string, stale []string, limit int64) error
}

// Store keeps favorites and recents as Redis lists of JSON entries, newest first.
type Store struct {
	store        store
	prefix       string
	recentsLimit int64
}

// New creates a favorites store. recentsLimit is clamped to [MinRecents, MaxRecents];
// zero selects DefaultRecents.
func New(s store, keyPrefix string, recentsLimit int) *Store {
	return &Store{
		store:        s,
		prefix:       keyPrefix,
		recentsLimit: int64(ClampRecents(recentsLimit)),
	}
}

// ClampRecents applies the recents bounds.
func ClampRecents(n int) int {
	switch {
	case n == 0:
		return DefaultRecents
	case n < MinRecents:
		return MinRecents
	case n > MaxRecents:
		return MaxRecents
	}
	return n
}

type storedEntry struct {
	Path        string `json:"path"`
	Title       string `json:"title"`
	Icon        string `json:"icon,omitempty"`
	ParentTitle string `json:"parent_title,omitempty"`
}

func encode(e domain.NavEntry) (string, error) {
	data, err := json.Marshal(storedEntry{
		Path:        e.Path,
		Title:       e.Title,
		Icon:        e.Icon,
		ParentTitle: e.ParentTitle,
	})
	if err != nil {
		return "", fmt.Errorf("encode entry %s: %w", e.Path, err)
	}
	return string(data), nil
}

func decode(raw string) (domain.NavEntry, bool) {
	var s storedEntry
	if err := json.Unmarshal([]byte(raw), &s); err != nil || s.Path == "" {
		return domain.NavEntry{}, false
	}
	return domain.NavEntry{
		ID:          s.Path,
		Title:       s.Title,
		Path:        s.Path,
		Icon:        s.Icon,
		ParentTitle: s.ParentTitle,
	}, true
}

func (s *Store) favoritesKey(user string) string { return s.prefix + "fav:" + user }
func (s *Store) recentsKey(user string) string   { return s.prefix + "recent:" + user }

// Favorites returns the user's favorites, most recently added first.
func (s *Store) Favorites(ctx context.Context, user string) ([]domain.NavEntry, error) {
	return s.list(ctx, s.favoritesKey(user), -1)
}

// Recents returns the user's recently opened entries, newest first.
func (s *Store) Recents(ctx context.Context, user string) ([]domain.NavEntry, error) {
	return s.list(ctx, s.recentsKey(user), s.recentsLimit-1)
}

// ToggleFavorite adds entry when absent and removes it otherwise. Returns the new state.
func (s *Store) ToggleFavorite(ctx context.Context, user string, entry domain.NavEntry) (bool, error) {
	key := s.favoritesKey(user)
	stale, err := s.matching(ctx, key, entry.Path)
	if err != nil {
		return false, err
	}

	if len(stale) > 0 {
		for _, raw := range stale {
			if err := s.store.LRem(ctx, key, 0, raw); err != nil {
				return false, fmt.Errorf("favorites LREM %s: %w", key, err)
			}
		}
		return false, nil
	}

	raw, err := encode(entry)
	if err != nil {
		return false, err
	}
	if err := s.store.LPush(ctx, key, raw); err != nil {
		return false, fmt.Errorf("favorites LPUSH %s: %w", key, err)
	}
	return true, nil
}

// PushRecent moves entry to the head of the recents list and trims it.
func (s *Store) PushRecent(ctx context.Context, user string, entry domain.NavEntry) error {
	key := s.recentsKey(user)
	stale, err := s.matching(ctx, key, entry.Path)
	if err != nil {
		return err
	}
	raw, err := encode(entry)
	if err != nil {
		return err
	}
	if err := s.store.MoveToFront(ctx, key, raw, stale, s.recentsLimit); err != nil {
		return fmt.Errorf("recents push %s: %w", key, err)
	}
	return nil
}

func (s *Store) list(ctx context.Context, key string, stop int64) ([]domain.NavEntry, error) {
	raws, err := s.store.LRange(ctx, key, 0, stop)
	if err != nil {
		return nil, fmt.Errorf("LRANGE %s: %w", key, err)
	}
	out := make([]domain.NavEntry, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	for _, raw := range raws {
		e, ok := decode(raw)
		if !ok {
			continue
		}
		if _, dup := seen[e.Path]; dup {
			continue
		}
		seen[e.Path] = struct{}{}
		out = append(out, e)
	}
	return out, nil
}

// matching returns the raw list values stored for path.
func (s *Store) matching(ctx context.Context, key, path string) ([]string, error) {
	raws, err := s.store.LRange(ctx, key, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("LRANGE %s: %w", key, err)
	}
	var out []string
	for _, raw := range raws {
		if e, ok := decode(raw); ok && e.Path == path {
			out = append(out, raw)
		}
	}
	return out, nil
}
