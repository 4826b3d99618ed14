package wordset

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/tidwall/gjson"
)

// RedisCache stores each word set as a JSON array under a single key.
type RedisCache struct {
	client redis.UniversalClient
}

func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	} else if err != nil {
		return nil, false, errors.Wrapf(err, "redis get %s", key)
	}

	if !gjson.Valid(val) {
		return nil, false, errors.Errorf("redis key %s does not hold JSON", key)
	}
	parsed := gjson.Parse(val)
	if !parsed.IsArray() {
		return nil, false, errors.Errorf("redis key %s does not hold a JSON array", key)
	}

	items := parsed.Array()
	words := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type == gjson.String {
			words = append(words, item.String())
		}
	}
	return words, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, words []string, ttl time.Duration) error {
	if words == nil {
		words = []string{}
	}
	payload, err := json.Marshal(words)
	if err != nil {
		return errors.Wrap(err, "marshal word set")
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", key)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, "redis del")
	}
	return nil
}
