package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const rememberedKeyPrefix = "remembered:account:"

// RedisIndex is the shared-deployment implementation of RememberedIndex,
// keyed per account with a TTL matching the remembered-token lifetime so
// stale sets age out on their own.
type RedisIndex struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisIndex(client *redis.Client, ttl time.Duration) *RedisIndex {
	return &RedisIndex{client: client, ttl: ttl}
}

func (i *RedisIndex) key(accountID string) string {
	return rememberedKeyPrefix + accountID
}

func (i *RedisIndex) Add(ctx context.Context, accountID, digest string) error {
	key := i.key(accountID)
	pipe := i.client.TxPipeline()
	pipe.SAdd(ctx, key, digest)
	pipe.Expire(ctx, key, i.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (i *RedisIndex) Contains(ctx context.Context, accountID, digest string) (bool, error) {
	return i.client.SIsMember(ctx, i.key(accountID), digest).Result()
}

func (i *RedisIndex) Remove(ctx context.Context, accountID, digest string) error {
	return i.client.SRem(ctx, i.key(accountID), digest).Err()
}
