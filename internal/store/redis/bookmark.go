package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/kompas/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Exists reports whether identifier is in the saved index, the same source
// Count and List read from.
func (s *Store) Exists(ctx context.Context, identifier string) (bool, error) {
	err := s.client.ZScore(ctx, SavedIndexKey(), identifier).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check bookmark: %w", err)
	}
	return true, nil
}

// Insert stores a bookmark and indexes it by SavedAt
func (s *Store) Insert(ctx context.Context, bookmark domain.Bookmark) error {
	data, err := json.Marshal(bookmark)
	if err != nil {
		return fmt.Errorf("failed to marshal bookmark: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		// No TTL: bookmarks live until removed
		pipe.Set(ctx, BookmarkKey(bookmark.Identifier), data, 0)
		pipe.ZAdd(ctx, SavedIndexKey(), redis.Z{
			Score:  savedAtScore(bookmark.SavedAt),
			Member: bookmark.Identifier,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save bookmark: %w", err)
	}

	return nil
}

// Delete removes a bookmark and its index entry, returning the number of rows removed
func (s *Store) Delete(ctx context.Context, identifier string) (int, error) {
	var del *redis.IntCmd

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, BookmarkKey(identifier))
		pipe.ZRem(ctx, SavedIndexKey(), identifier)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete bookmark: %w", err)
	}

	return int(del.Val()), nil
}

// List retrieves all bookmarks, most recently saved first
func (s *Store) List(ctx context.Context) ([]domain.Bookmark, error) {
	ids, err := s.client.ZRevRange(ctx, SavedIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark index: %w", err)
	}

	if len(ids) == 0 {
		return []domain.Bookmark{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = BookmarkKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmarks: %w", err)
	}

	bookmarks := make([]domain.Bookmark, 0, len(values))
	var broken []string
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a value
			broken = append(broken, ids[i])
			continue
		}
		var bookmark domain.Bookmark
		if err := json.Unmarshal([]byte(raw), &bookmark); err != nil {
			broken = append(broken, ids[i])
			continue
		}
		bookmarks = append(bookmarks, bookmark)
	}

	if len(broken) > 0 {
		if err := s.prune(ctx, broken); err != nil {
			return nil, err
		}
	}

	return bookmarks, nil
}

// prune drops index entries whose value is missing or unreadable, so Exists
// and Count agree with List.
func (s *Store) prune(ctx context.Context, ids []string) error {
	keys := make([]string, len(ids))
	members := make([]any, len(ids))
	for i, id := range ids {
		keys[i] = BookmarkKey(id)
		members[i] = id
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, SavedIndexKey(), members...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to prune broken bookmarks: %w", err)
	}
	return nil
}

// Count returns the number of indexed bookmarks
func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, SavedIndexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count bookmarks: %w", err)
	}
	return int(n), nil
}

// savedAtScore keeps microsecond precision, which fits a float64 exactly.
func savedAtScore(t time.Time) float64 {
	return float64(t.UnixMicro())
}
