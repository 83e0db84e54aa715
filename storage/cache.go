package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"agwakwagan/domain"
)

// Cache wraps an Adapter with Redis-backed caching. Load is read-through
// and Save writes the fresh document through to the cache, so a restarted
// process sharing the Redis instance sees the latest board without hitting
// the base adapter.
type Cache struct {
	base  Adapter
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper using the provided Redis client and TTL.
func NewCache(base Adapter, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base adapter is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

func (c *Cache) Load(ctx context.Context, boardID string) (domain.Board, error) {
	if b, ok := c.loadFromCache(ctx, boardID); ok {
		return b, nil
	}

	b, err := c.base.Load(ctx, boardID)
	if err != nil {
		return domain.Board{}, err
	}

	c.store(ctx, b)
	return b, nil
}

func (c *Cache) Save(ctx context.Context, board domain.Board) error {
	if err := c.base.Save(ctx, board); err != nil {
		return err
	}

	c.store(ctx, board)
	return nil
}

func (c *Cache) loadFromCache(ctx context.Context, boardID string) (domain.Board, bool) {
	if c.redis == nil {
		return domain.Board{}, false
	}
	data, err := c.redis.Get(ctx, boardCacheKey(boardID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the base adapter without failing.
			_ = c.redis.Del(ctx, boardCacheKey(boardID)).Err()
		}
		return domain.Board{}, false
	}
	b, err := DecodeBoard(data)
	if err != nil {
		_ = c.redis.Del(ctx, boardCacheKey(boardID)).Err()
		return domain.Board{}, false
	}
	return b, true
}

func (c *Cache) store(ctx context.Context, board domain.Board) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := EncodeBoard(board)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, boardCacheKey(board.ID), data, c.ttl).Err()
}

func boardCacheKey(boardID string) string {
	return "board:" + boardID
}
