package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/redis/go-redis/v9"

	"hotelops/internal/domain/registry"
)

// ResourceRegistryCache is a read-through TTL cache over resource lookups.
// Cache failures are logged and fall through to the inner registry, never
// surfaced. Availability checks and status writes bypass the cache;
// status writes invalidate the cached entry.
type ResourceRegistryCache struct {
	inner registry.ResourceRegistry
	rdb   *redis.Client
	ttl   time.Duration
}

func NewResourceRegistryCache(inner registry.ResourceRegistry, rdb *redis.Client, ttl time.Duration) *ResourceRegistryCache {
	return &ResourceRegistryCache{inner: inner, rdb: rdb, ttl: ttl}
}

func (c *ResourceRegistryCache) GetRoom(ctx context.Context, id string) (*registry.Resource, error) {
	return c.getThrough(ctx, roomKey(id), func(ctx context.Context) (*registry.Resource, error) {
		return c.inner.GetRoom(ctx, id)
	})
}

func (c *ResourceRegistryCache) GetTable(ctx context.Context, id string) (*registry.Resource, error) {
	return c.getThrough(ctx, tableKey(id), func(ctx context.Context) (*registry.Resource, error) {
		return c.inner.GetTable(ctx, id)
	})
}

func (c *ResourceRegistryCache) IsRoomAvailable(ctx context.Context, id string) (bool, error) {
	return c.inner.IsRoomAvailable(ctx, id)
}

func (c *ResourceRegistryCache) IsTableAvailable(ctx context.Context, id string) (bool, error) {
	return c.inner.IsTableAvailable(ctx, id)
}

func (c *ResourceRegistryCache) SetRoomStatus(ctx context.Context, id string, status registry.Status) error {
	c.invalidate(ctx, roomKey(id))
	return c.inner.SetRoomStatus(ctx, id, status)
}

func (c *ResourceRegistryCache) SetTableStatus(ctx context.Context, id string, status registry.Status) error {
	c.invalidate(ctx, tableKey(id))
	return c.inner.SetTableStatus(ctx, id, status)
}

func (c *ResourceRegistryCache) getThrough(
	ctx context.Context,
	key string,
	fetch func(ctx context.Context) (*registry.Resource, error),
) (*registry.Resource, error) {
	cached, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var resource registry.Resource
		if err := json.Unmarshal(cached, &resource); err == nil {
			return &resource, nil
		}
	} else if err != redis.Nil {
		log.FromContext(ctx).WithField("key", key).WithField("error", err).
			Warn("Registry cache read failed")
	}

	resource, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(resource); err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			log.FromContext(ctx).WithField("key", key).WithField("error", err).
				Warn("Registry cache write failed")
		}
	}

	return resource, nil
}

func (c *ResourceRegistryCache) invalidate(ctx context.Context, key string) {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		log.FromContext(ctx).WithField("key", key).WithField("error", err).
			Warn("Registry cache invalidation failed")
	}
}

func roomKey(id string) string {
	return fmt.Sprintf("registry:room:%s", id)
}

func tableKey(id string) string {
	return fmt.Sprintf("registry:table:%s", id)
}
