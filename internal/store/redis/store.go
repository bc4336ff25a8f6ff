package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Store persists bookmarks in Redis.
//
// Each bookmark is a JSON value under BookmarkKey; SavedIndexKey is a sorted
// set giving the list order. Both are written in one MULTI/EXEC so a reader
// never sees one without the other.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Ping checks that Redis answers
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
