package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskvault/taskvault/internal/domain"
	"github.com/taskvault/taskvault/internal/repository"
	"github.com/taskvault/taskvault/pkg/pagination"
)

const (
	keyPrefix   = "tasks:"
	indexPrefix = "tasks:index:"
)

// ListResult is the cached shape of a task listing: the full response
// envelope, stored and returned verbatim on a hit.
type ListResult = pagination.Result[domain.Task]

// TaskCache is a Redis-backed read-through cache for task listings. Every
// cached key is recorded in a per-user index set so that all of a user's
// cached pages can be dropped in one invalidation.
type TaskCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTaskCache creates a task list cache with the given entry TTL.
func NewTaskCache(client *redis.Client, ttl time.Duration) *TaskCache {
	return &TaskCache{
		client: client,
		ttl:    ttl,
	}
}

// Key builds the deterministic cache key for a user's listing request.
// Absent filters are normalized to "any" so logically identical requests
// share an entry.
func Key(userID string, page, limit int, filter repository.TaskFilter) string {
	priority := "any"
	if filter.Priority != nil {
		priority = string(*filter.Priority)
	}
	completed := "any"
	if filter.Completed != nil {
		completed = fmt.Sprintf("%t", *filter.Completed)
	}
	return fmt.Sprintf("%s%s:page=%d:limit=%d:priority=%s:completed=%s",
		keyPrefix, userID, page, limit, priority, completed)
}

// Get retrieves a cached listing. A miss and any Redis failure both return
// (nil, false); cache trouble must never fail a read.
func (c *TaskCache) Get(ctx context.Context, key string) (*ListResult, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var result ListResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false
	}

	return &result, true
}

// Set stores a listing under the given key and records the key in the
// owner's index set. Both carry the configured TTL.
func (c *TaskCache) Set(ctx context.Context, userID, key string, result *ListResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal task listing: %w", err)
	}

	indexKey := indexPrefix + userID

	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, data, c.ttl)
	pipe.SAdd(ctx, indexKey, key)
	pipe.Expire(ctx, indexKey, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set task listing: %w", err)
	}

	return nil
}

// Invalidate deletes every cached listing recorded for the user, plus the
// index itself.
func (c *TaskCache) Invalidate(ctx context.Context, userID string) error {
	indexKey := indexPrefix + userID

	keys, err := c.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return fmt.Errorf("redis read task index: %w", err)
	}

	pipe := c.client.Pipeline()
	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, indexKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis invalidate task listings: %w", err)
	}

	return nil
}
