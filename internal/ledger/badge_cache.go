package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// BadgeCache keeps derived pass badges for dashboard views. Entries are
// written with a TTL on read and invalidated on any pass mutation, so a stale
// badge lives at most until the next ledger write.
type BadgeCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBadgeCache(client *redis.Client, ttl time.Duration) *BadgeCache {
	return &BadgeCache{client: client, ttl: ttl}
}

func (c *BadgeCache) Get(ctx context.Context, memberID string) (string, bool, error) {
	value, err := c.client.Get(ctx, badgeKey(memberID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (c *BadgeCache) Set(ctx context.Context, memberID, badge string) error {
	return c.client.Set(ctx, badgeKey(memberID), badge, c.ttl).Err()
}

func (c *BadgeCache) Invalidate(ctx context.Context, memberID string) error {
	return c.client.Del(ctx, badgeKey(memberID)).Err()
}

func badgeKey(memberID string) string {
	return fmt.Sprintf("pass_badge:%s", memberID)
}
